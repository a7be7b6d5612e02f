package handlers

import (
	"encoding/json"
	"net/http"

	"task-manager/backend/logging"
	"task-manager/backend/models"
	"task-manager/backend/services"
)

type AuthHandler struct {
	service *services.UserService
}

func NewAuthHandler(service *services.UserService) *AuthHandler {
	return &AuthHandler{service: service}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Name, email and password are required", nil)
		return
	}

	user, token, err := h.service.RegisterUser(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, "Failed to register user")
		return
	}

	logging.Logger.Infof("Event ID: USER_REGISTERED, Description: User %s registered with role %s", user.ID.Hex(), user.Role)
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	user, token, err := h.service.LoginUser(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err, "Failed to log in")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	requester, ok := requireRequester(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetUserByID(r.Context(), requester.ID)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch profile")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	requester, ok := requireRequester(w, r)
	if !ok {
		return
	}

	var req services.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	user, token, err := h.service.UpdateProfile(r.Context(), requester.ID, req)
	if err != nil {
		writeServiceError(w, err, "Failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}
