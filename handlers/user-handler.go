package handlers

import (
	"net/http"

	"task-manager/backend/services"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// GetUsers lists employee accounts with task counts. Admin only.
func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	users, err := h.service.GetUsers(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to fetch users")
		return
	}

	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRequester(w, r); !ok {
		return
	}

	vars := mux.Vars(r)
	userID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID format", err)
		return
	}

	user, err := h.service.GetUserByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}
