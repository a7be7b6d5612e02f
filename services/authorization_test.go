package services

import (
	"testing"

	"task-manager/backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCanModifyTask(t *testing.T) {
	assignee := primitive.NewObjectID()
	other := primitive.NewObjectID()
	task := &models.Task{AssignedTo: []primitive.ObjectID{assignee}}

	tests := []struct {
		name      string
		requester models.AuthUser
		task      *models.Task
		want      bool
	}{
		{"admin not assigned", models.AuthUser{ID: other, Role: models.RoleAdmin}, task, true},
		{"assigned employee", models.AuthUser{ID: assignee, Role: models.RoleEmployee}, task, true},
		{"unassigned employee", models.AuthUser{ID: other, Role: models.RoleEmployee}, task, false},
		{"employee, empty assignment", models.AuthUser{ID: other, Role: models.RoleEmployee}, &models.Task{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanModifyTask(tt.requester, tt.task); got != tt.want {
				t.Errorf("CanModifyTask() = %v, want %v", got, tt.want)
			}
		})
	}
}
