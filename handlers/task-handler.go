package handlers

import (
	"encoding/json"
	"net/http"

	"task-manager/backend/logging"
	"task-manager/backend/models"
	"task-manager/backend/services"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskHandler struct {
	service *services.TaskService
}

func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

func taskIDFromRequest(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	vars := mux.Vars(r)
	taskID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid task ID format", err)
		return primitive.NilObjectID, false
	}
	return taskID, true
}

// GetTasks lists tasks visible to the requester, optionally filtered by the
// status query parameter, together with the status summary counts.
func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	requester, ok := requireRequester(w, r)
	if !ok {
		return
	}

	status := r.URL.Query().Get("status")
	response, err := h.service.GetTasks(r.Context(), requester, status)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch tasks")
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRequester(w, r); !ok {
		return
	}
	taskID, ok := taskIDFromRequest(w, r)
	if !ok {
		return
	}

	task, err := h.service.GetTaskByID(r.Context(), taskID)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch task")
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	requester, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	var req services.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	task, err := h.service.CreateTask(r.Context(), req, requester.ID)
	if err != nil {
		writeServiceError(w, err, "Failed to create task")
		return
	}

	logging.Logger.Infof("Event ID: TASK_CREATED, Description: Task %s created by %s", task.ID.Hex(), requester.ID.Hex())
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Task created successfully",
		"task":    task,
	})
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRequester(w, r); !ok {
		return
	}
	taskID, ok := taskIDFromRequest(w, r)
	if !ok {
		return
	}

	var req services.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	task, err := h.service.UpdateTask(r.Context(), taskID, req)
	if err != nil {
		writeServiceError(w, err, "Failed to update task")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Task updated successfully",
		"updatedTask": task,
	})
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	requester, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	taskID, ok := taskIDFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteTask(r.Context(), taskID); err != nil {
		writeServiceError(w, err, "Failed to delete task")
		return
	}

	logging.Logger.Infof("Event ID: TASK_DELETED, Description: Task %s deleted by %s", taskID.Hex(), requester.ID.Hex())
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

func (h *TaskHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	requester, ok := requireRequester(w, r)
	if !ok {
		return
	}
	taskID, ok := taskIDFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Status models.TaskStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	task, err := h.service.UpdateTaskStatus(r.Context(), taskID, requester, req.Status)
	if err != nil {
		writeServiceError(w, err, "Failed to update task status")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Task status updated successfully",
		"task":    task,
	})
}

func (h *TaskHandler) UpdateTaskChecklist(w http.ResponseWriter, r *http.Request) {
	requester, ok := requireRequester(w, r)
	if !ok {
		return
	}
	taskID, ok := taskIDFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		TodoChecklist []models.TodoItem `json:"todoChecklist"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	task, err := h.service.UpdateTaskChecklist(r.Context(), taskID, requester, req.TodoChecklist)
	if err != nil {
		writeServiceError(w, err, "Failed to update task checklist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Checklist updated",
		"task":    task,
	})
}

// GetDashboardData serves the global dashboard. Admin only.
func (h *TaskHandler) GetDashboardData(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	data, err := h.service.GetDashboardData(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to fetch dashboard data")
		return
	}

	writeJSON(w, http.StatusOK, data)
}

// GetUserDashboardData serves the dashboard scoped to the requester's
// assigned tasks.
func (h *TaskHandler) GetUserDashboardData(w http.ResponseWriter, r *http.Request) {
	requester, ok := requireRequester(w, r)
	if !ok {
		return
	}

	data, err := h.service.GetUserDashboardData(r.Context(), requester.ID)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch dashboard data")
		return
	}

	writeJSON(w, http.StatusOK, data)
}
