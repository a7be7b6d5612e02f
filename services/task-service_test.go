package services

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"task-manager/backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTaskScopeFilterAdminSeesEverything(t *testing.T) {
	admin := models.AuthUser{ID: primitive.NewObjectID(), Role: models.RoleAdmin}

	filter := taskScopeFilter(admin, "")
	if len(filter) != 0 {
		t.Errorf("admin filter = %v, want empty", filter)
	}

	filter = taskScopeFilter(admin, "Pending")
	if filter["status"] != "Pending" {
		t.Errorf(`filter["status"] = %v, want "Pending"`, filter["status"])
	}
	if _, ok := filter["assignedTo"]; ok {
		t.Error("admin filter must not scope by assignment")
	}
}

func TestTaskScopeFilterEmployeeScopedToAssignment(t *testing.T) {
	employee := models.AuthUser{ID: primitive.NewObjectID(), Role: models.RoleEmployee}

	filter := taskScopeFilter(employee, "Completed")
	if filter["assignedTo"] != employee.ID {
		t.Errorf(`filter["assignedTo"] = %v, want %v`, filter["assignedTo"], employee.ID)
	}
	if filter["status"] != "Completed" {
		t.Errorf(`filter["status"] = %v, want "Completed"`, filter["status"])
	}
}

func TestStatusCountFilterOverwritesStatus(t *testing.T) {
	userID := primitive.NewObjectID()
	base := bson.M{"status": "Completed", "assignedTo": userID}

	filter := statusCountFilter(base, models.StatusPending)

	if filter["status"] != models.StatusPending {
		t.Errorf(`filter["status"] = %v, want %q`, filter["status"], models.StatusPending)
	}
	if filter["assignedTo"] != userID {
		t.Error("scope key lost when pinning status")
	}
	if base["status"] != "Completed" {
		t.Error("base filter mutated")
	}
}

func TestOverdueFilter(t *testing.T) {
	userID := primitive.NewObjectID()
	now := time.Now()

	filter := overdueFilter(bson.M{"assignedTo": userID}, now)

	status, ok := filter["status"].(bson.M)
	if !ok || status["$ne"] != models.StatusCompleted {
		t.Errorf(`filter["status"] = %v, want {"$ne": Completed}`, filter["status"])
	}
	dueDate, ok := filter["dueDate"].(bson.M)
	if !ok || dueDate["$lt"] != now {
		t.Errorf(`filter["dueDate"] = %v, want {"$lt": now}`, filter["dueDate"])
	}
	if filter["assignedTo"] != userID {
		t.Error("scope key lost in overdue filter")
	}
}

func TestDecodeAssignedTo(t *testing.T) {
	id := primitive.NewObjectID()

	tests := []struct {
		name    string
		raw     string
		wantLen int
		wantErr bool
	}{
		{"array of ids", `["` + id.Hex() + `"]`, 1, false},
		{"empty array", `[]`, 0, false},
		{"plain string", `"u1"`, 0, true},
		{"null", `null`, 0, true},
		{"absent", ``, 0, true},
		{"number", `42`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := decodeAssignedTo(json.RawMessage(tt.raw))
			if tt.wantErr {
				if !errors.Is(err, ErrAssignedToNotArray) {
					t.Errorf("error = %v, want ErrAssignedToNotArray", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(ids) != tt.wantLen {
				t.Errorf("got %d ids, want %d", len(ids), tt.wantLen)
			}
			if ids == nil {
				t.Error("accepted input must yield a non-nil slice")
			}
		})
	}
}

func TestApplyTaskUpdateSkipsFalsyFields(t *testing.T) {
	due := time.Now().Add(24 * time.Hour)
	task := models.Task{
		Title:       "Quarterly report",
		Description: "Compile the numbers",
		Priority:    models.PriorityHigh,
		DueDate:     due,
	}

	if err := applyTaskUpdate(&task, UpdateTaskRequest{Title: ""}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if task.Title != "Quarterly report" {
		t.Errorf("empty title overwrote stored value: %q", task.Title)
	}
	if task.Description != "Compile the numbers" || task.Priority != models.PriorityHigh || !task.DueDate.Equal(due) {
		t.Error("absent fields did not retain stored values")
	}
}

func TestApplyTaskUpdateAppliesPresentFields(t *testing.T) {
	task := models.Task{Title: "Old", TodoChecklist: []models.TodoItem{{Text: "a"}}}
	newDue := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	err := applyTaskUpdate(&task, UpdateTaskRequest{
		Title:         "New",
		Priority:      models.PriorityLow,
		DueDate:       newDue,
		TodoChecklist: []models.TodoItem{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if task.Title != "New" {
		t.Errorf("title = %q, want %q", task.Title, "New")
	}
	if task.Priority != models.PriorityLow {
		t.Errorf("priority = %q, want %q", task.Priority, models.PriorityLow)
	}
	if !task.DueDate.Equal(newDue) {
		t.Errorf("dueDate = %v, want %v", task.DueDate, newDue)
	}
	if len(task.TodoChecklist) != 0 {
		t.Error("present empty checklist must overwrite the stored one")
	}
}

func TestApplyTaskUpdateAssignedTo(t *testing.T) {
	original := primitive.NewObjectID()
	replacement := primitive.NewObjectID()
	task := models.Task{AssignedTo: []primitive.ObjectID{original}}

	// Absent assignedTo keeps the stored assignment.
	if err := applyTaskUpdate(&task, UpdateTaskRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(task.AssignedTo) != 1 || task.AssignedTo[0] != original {
		t.Error("absent assignedTo changed the stored assignment")
	}

	// Non-array assignedTo is a validation error and mutates nothing.
	err := applyTaskUpdate(&task, UpdateTaskRequest{AssignedTo: json.RawMessage(`"u1"`)})
	if !errors.Is(err, ErrAssignedToNotArray) {
		t.Errorf("error = %v, want ErrAssignedToNotArray", err)
	}
	if len(task.AssignedTo) != 1 || task.AssignedTo[0] != original {
		t.Error("rejected assignedTo changed the stored assignment")
	}

	// A valid array replaces the assignment.
	raw, _ := json.Marshal([]string{replacement.Hex()})
	if err := applyTaskUpdate(&task, UpdateTaskRequest{AssignedTo: raw}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(task.AssignedTo) != 1 || task.AssignedTo[0] != replacement {
		t.Errorf("assignedTo = %v, want [%v]", task.AssignedTo, replacement)
	}
}
