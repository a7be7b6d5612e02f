package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

type User struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name            string             `json:"name" bson:"name"`
	Email           string             `json:"email" bson:"email"`
	Password        string             `json:"-" bson:"password"`
	Role            string             `json:"role" bson:"role"`
	ProfileImageURL string             `json:"profileImageUrl" bson:"profileImageUrl"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
}

// UserWithTaskCounts is a user listing entry with per-status assignment counts.
type UserWithTaskCounts struct {
	User
	PendingTasks    int64 `json:"pendingTasks"`
	InProgressTasks int64 `json:"inProgressTasks"`
	CompletedTasks  int64 `json:"completedTasks"`
}

// AuthUser identifies the requester resolved from a bearer token.
type AuthUser struct {
	ID   primitive.ObjectID
	Role string
}

func (u AuthUser) IsAdmin() bool {
	return u.Role == RoleAdmin
}
