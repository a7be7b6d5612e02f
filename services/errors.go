package services

import "errors"

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotAuthorized      = errors.New("not authorized")
	ErrAssignedToNotArray = errors.New("assignedTo must be an array of user IDs")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
