package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"task-manager/backend/middleware"
	"task-manager/backend/models"
	"task-manager/backend/services"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTaskRequest(t *testing.T, method, target, body string, requester models.AuthUser) *http.Request {
	t.Helper()
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	return r.WithContext(middleware.WithRequester(r.Context(), requester))
}

func decodeErrorResponse(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("error response is not JSON: %v", err)
	}
	return body
}

// A non-array assignedTo must be rejected before the service touches any
// collection; the handler is wired with nil collections to prove it.
func TestCreateTaskRejectsNonArrayAssignedTo(t *testing.T) {
	handler := NewTaskHandler(services.NewTaskService(nil, nil, nil))
	admin := models.AuthUser{ID: primitive.NewObjectID(), Role: models.RoleAdmin}

	body := `{"title":"New task","assignedTo":"u1"}`
	r := newTaskRequest(t, http.MethodPost, "/api/tasks", body, admin)
	w := httptest.NewRecorder()

	handler.CreateTask(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	response := decodeErrorResponse(t, w)
	if !strings.Contains(response.Message, "assignedTo") {
		t.Errorf("message = %q, want it to name assignedTo", response.Message)
	}
}

func TestCreateTaskRequiresAdmin(t *testing.T) {
	handler := NewTaskHandler(services.NewTaskService(nil, nil, nil))
	employee := models.AuthUser{ID: primitive.NewObjectID(), Role: models.RoleEmployee}

	body := `{"title":"New task","assignedTo":[]}`
	r := newTaskRequest(t, http.MethodPost, "/api/tasks", body, employee)
	w := httptest.NewRecorder()

	handler.CreateTask(w, r)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
	decodeErrorResponse(t, w)
}

func TestCreateTaskRejectsMalformedBody(t *testing.T) {
	handler := NewTaskHandler(services.NewTaskService(nil, nil, nil))
	admin := models.AuthUser{ID: primitive.NewObjectID(), Role: models.RoleAdmin}

	r := newTaskRequest(t, http.MethodPost, "/api/tasks", "{not json", admin)
	w := httptest.NewRecorder()

	handler.CreateTask(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestGetTasksRequiresAuthentication(t *testing.T) {
	handler := NewTaskHandler(services.NewTaskService(nil, nil, nil))

	r := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	w := httptest.NewRecorder()

	handler.GetTasks(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestGetDashboardDataRequiresAdmin(t *testing.T) {
	handler := NewTaskHandler(services.NewTaskService(nil, nil, nil))
	employee := models.AuthUser{ID: primitive.NewObjectID(), Role: models.RoleEmployee}

	r := newTaskRequest(t, http.MethodGet, "/api/tasks/dashboard-data", "", employee)
	w := httptest.NewRecorder()

	handler.GetDashboardData(w, r)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}
