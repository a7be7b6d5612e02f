package services

import (
	"math"

	"task-manager/backend/models"
)

// CompletedTodoCount returns how many checklist items are checked off.
func CompletedTodoCount(items []models.TodoItem) int {
	count := 0
	for _, item := range items {
		if item.Completed {
			count++
		}
	}
	return count
}

// ComputeChecklistProgress returns the completion percentage of a checklist,
// rounded to the nearest whole percent. An empty checklist is 0.
func ComputeChecklistProgress(items []models.TodoItem) int {
	if len(items) == 0 {
		return 0
	}
	completed := CompletedTodoCount(items)
	return int(math.Round(float64(completed) / float64(len(items)) * 100))
}

// StatusForProgress maps a progress percentage onto the task status:
// 100 is Completed, anything above zero is In Progress, zero is Pending.
func StatusForProgress(progress int) models.TaskStatus {
	switch {
	case progress == 100:
		return models.StatusCompleted
	case progress > 0:
		return models.StatusInProgress
	default:
		return models.StatusPending
	}
}

// ApplyChecklist replaces the task checklist wholesale and rederives
// progress and status from it.
func ApplyChecklist(task *models.Task, items []models.TodoItem) {
	task.TodoChecklist = items
	task.Progress = ComputeChecklistProgress(items)
	task.Status = StatusForProgress(task.Progress)
}
