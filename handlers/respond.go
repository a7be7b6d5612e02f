package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"task-manager/backend/middleware"
	"task-manager/backend/models"
	"task-manager/backend/services"
)

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	body := errorResponse{Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	writeJSON(w, status, body)
}

// writeServiceError maps the service error taxonomy onto HTTP statuses;
// anything unrecognized is a 500 with the given message.
func writeServiceError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound), errors.Is(err, services.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error(), err)
	case errors.Is(err, services.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, "Not authorized", err)
	case errors.Is(err, services.ErrAssignedToNotArray), errors.Is(err, services.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error(), err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

// requireRequester pulls the authenticated requester from the context and
// fails the request when the auth middleware did not run.
func requireRequester(w http.ResponseWriter, r *http.Request) (models.AuthUser, bool) {
	requester, ok := middleware.RequesterFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated", nil)
		return models.AuthUser{}, false
	}
	return requester, true
}

func requireAdmin(w http.ResponseWriter, r *http.Request) (models.AuthUser, bool) {
	requester, ok := requireRequester(w, r)
	if !ok {
		return models.AuthUser{}, false
	}
	if !requester.IsAdmin() {
		writeError(w, http.StatusForbidden, "Access forbidden: insufficient permissions", nil)
		return models.AuthUser{}, false
	}
	return requester, true
}
