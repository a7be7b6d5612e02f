package services

import "task-manager/backend/models"

// CanModifyTask reports whether the requester may mutate the task.
// Admins always can; everyone else must be one of its assignees.
func CanModifyTask(requester models.AuthUser, task *models.Task) bool {
	if requester.IsAdmin() {
		return true
	}
	for _, userID := range task.AssignedTo {
		if userID == requester.ID {
			return true
		}
	}
	return false
}
