package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "Pending"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
)

// TaskStatuses lists every status in chart order.
var TaskStatuses = []TaskStatus{StatusPending, StatusInProgress, StatusCompleted}

// ChartKey returns the status as a chart bucket key, e.g. "InProgress".
func (s TaskStatus) ChartKey() string {
	return strings.ReplaceAll(string(s), " ", "")
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

var TaskPriorities = []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh}

// TodoItem is a single checklist entry on a task.
type TodoItem struct {
	Text      string `json:"text" bson:"text"`
	Completed bool   `json:"completed" bson:"completed"`
}

type Task struct {
	ID            primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Title         string               `json:"title" bson:"title"`
	Description   string               `json:"description" bson:"description"`
	Priority      TaskPriority         `json:"priority" bson:"priority"`
	Status        TaskStatus           `json:"status" bson:"status"`
	DueDate       time.Time            `json:"dueDate" bson:"dueDate"`
	AssignedTo    []primitive.ObjectID `json:"assignedTo" bson:"assignedTo"`
	CreatedBy     primitive.ObjectID   `json:"createdBy" bson:"createdBy"`
	TodoChecklist []TodoItem           `json:"todoChecklist" bson:"todoChecklist"`
	Progress      int                  `json:"progress" bson:"progress"`
	Attachments   []string             `json:"attachments" bson:"attachments"`
	CreatedAt     time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// UserSummary is the shape assignedTo is populated to on task responses.
type UserSummary struct {
	ID              primitive.ObjectID `json:"id" bson:"_id"`
	Name            string             `json:"name" bson:"name"`
	Email           string             `json:"email" bson:"email"`
	ProfileImageURL string             `json:"profileImageUrl" bson:"profileImageUrl"`
}

// TaskDetails is a task with assignedTo populated to user summaries.
type TaskDetails struct {
	Task
	AssignedTo []UserSummary `json:"assignedTo"`
}

// TaskListItem augments a populated task with its completed checklist count.
type TaskListItem struct {
	TaskDetails
	CompletedTodoCount int `json:"completedTodoCount"`
}
