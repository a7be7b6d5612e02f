package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DashboardStatistics are the headline counts for a dashboard scope.
type DashboardStatistics struct {
	TotalTasks     int64 `json:"totalTasks"`
	PendingTasks   int64 `json:"pendingTasks"`
	CompletedTasks int64 `json:"completedTasks"`
	OverdueTasks   int64 `json:"overdueTasks"`
}

// DashboardCharts holds the zero-filled distribution maps. taskDistribution
// always carries Pending/InProgress/Completed/All, taskPriorityLevels always
// carries Low/Medium/High.
type DashboardCharts struct {
	TaskDistribution   map[string]int64 `json:"taskDistribution"`
	TaskPriorityLevels map[string]int64 `json:"taskPriorityLevels"`
}

// RecentTask is the projection used for the dashboard recent-task listing.
type RecentTask struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	Title     string             `json:"title" bson:"title"`
	Status    TaskStatus         `json:"status" bson:"status"`
	Priority  TaskPriority       `json:"priority" bson:"priority"`
	DueDate   time.Time          `json:"dueDate" bson:"dueDate"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

type DashboardData struct {
	Statistics  DashboardStatistics `json:"statistics"`
	Charts      DashboardCharts     `json:"charts"`
	RecentTasks []RecentTask        `json:"recentTasks"`
}

// StatusSummary accompanies the task listing. All is scoped to the requester
// but ignores the status filter; the three specific counts carry the filter
// merge from the listing query.
type StatusSummary struct {
	All             int64 `json:"all"`
	PendingTasks    int64 `json:"pendingTasks"`
	InProgressTasks int64 `json:"inProgressTasks"`
	CompletedTasks  int64 `json:"completedTasks"`
}

type TaskListResponse struct {
	Tasks         []TaskListItem `json:"tasks"`
	StatusSummary StatusSummary  `json:"statusSummary"`
}
