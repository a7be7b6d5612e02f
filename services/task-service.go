package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"task-manager/backend/models"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TaskService struct {
	tasksCollection *mongo.Collection
	usersCollection *mongo.Collection
	dbBreaker       *gobreaker.CircuitBreaker
}

func NewTaskService(tasksCollection, usersCollection *mongo.Collection, dbBreaker *gobreaker.CircuitBreaker) *TaskService {
	return &TaskService{
		tasksCollection: tasksCollection,
		usersCollection: usersCollection,
		dbBreaker:       dbBreaker,
	}
}

// CreateTaskRequest carries the create payload. AssignedTo stays raw so the
// non-array case can be rejected with a validation error instead of a
// generic decode failure.
type CreateTaskRequest struct {
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Priority      models.TaskPriority `json:"priority"`
	DueDate       time.Time           `json:"dueDate"`
	AssignedTo    json.RawMessage     `json:"assignedTo"`
	TodoChecklist []models.TodoItem   `json:"todoChecklist"`
	Attachments   []string            `json:"attachments"`
}

// UpdateTaskRequest carries a partial update. Absent or falsy fields retain
// the stored value; a present empty checklist or attachments array does
// overwrite, matching the listing API's historical behavior.
type UpdateTaskRequest struct {
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Priority      models.TaskPriority `json:"priority"`
	DueDate       time.Time           `json:"dueDate"`
	AssignedTo    json.RawMessage     `json:"assignedTo"`
	TodoChecklist []models.TodoItem   `json:"todoChecklist"`
	Attachments   []string            `json:"attachments"`
}

func decodeAssignedTo(raw json.RawMessage) ([]primitive.ObjectID, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, ErrAssignedToNotArray
	}
	var ids []primitive.ObjectID
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, ErrAssignedToNotArray
	}
	if ids == nil {
		ids = []primitive.ObjectID{}
	}
	return ids, nil
}

// applyTaskUpdate copies present, non-falsy fields of the request onto the
// task. An empty title or zero due date leaves the stored value untouched;
// clearing a field through this path is not possible.
func applyTaskUpdate(task *models.Task, req UpdateTaskRequest) error {
	if req.Title != "" {
		task.Title = req.Title
	}
	if req.Description != "" {
		task.Description = req.Description
	}
	if req.Priority != "" {
		task.Priority = req.Priority
	}
	if !req.DueDate.IsZero() {
		task.DueDate = req.DueDate
	}
	if req.TodoChecklist != nil {
		task.TodoChecklist = req.TodoChecklist
	}
	if req.Attachments != nil {
		task.Attachments = req.Attachments
	}
	if len(req.AssignedTo) > 0 && string(req.AssignedTo) != "null" {
		ids, err := decodeAssignedTo(req.AssignedTo)
		if err != nil {
			return err
		}
		task.AssignedTo = ids
	}
	return nil
}

func (s *TaskService) CreateTask(ctx context.Context, req CreateTaskRequest, createdBy primitive.ObjectID) (*models.Task, error) {
	assignedTo, err := decodeAssignedTo(req.AssignedTo)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	checklist := req.TodoChecklist
	if checklist == nil {
		checklist = []models.TodoItem{}
	}
	attachments := req.Attachments
	if attachments == nil {
		attachments = []string{}
	}

	task := &models.Task{
		ID:            primitive.NewObjectID(),
		Title:         req.Title,
		Description:   req.Description,
		Priority:      req.Priority,
		Status:        models.StatusPending,
		DueDate:       req.DueDate,
		AssignedTo:    assignedTo,
		CreatedBy:     createdBy,
		TodoChecklist: checklist,
		Progress:      0,
		Attachments:   attachments,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := s.tasksCollection.InsertOne(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %v", err)
	}

	return task, nil
}

// taskScopeFilter builds the listing filter for a requester: admins see
// everything, employees only tasks they are assigned to.
func taskScopeFilter(requester models.AuthUser, status string) bson.M {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	if !requester.IsAdmin() {
		filter["assignedTo"] = requester.ID
	}
	return filter
}

// statusCountFilter copies the base filter and pins the status key. A status
// already present in the base filter is overwritten, so a filtered listing
// keeps its per-status counts unfiltered.
func statusCountFilter(base bson.M, status models.TaskStatus) bson.M {
	filter := bson.M{}
	for key, value := range base {
		filter[key] = value
	}
	filter["status"] = status
	return filter
}

func (s *TaskService) GetTasks(ctx context.Context, requester models.AuthUser, status string) (*models.TaskListResponse, error) {
	filter := taskScopeFilter(requester, status)

	cursor, err := s.tasksCollection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %v", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %v", err)
	}

	items, err := s.populateTasks(ctx, tasks)
	if err != nil {
		return nil, err
	}

	scope := bson.M{}
	if !requester.IsAdmin() {
		scope["assignedTo"] = requester.ID
	}

	all, err := s.tasksCollection.CountDocuments(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %v", err)
	}

	summary := models.StatusSummary{All: all}
	for _, taskStatus := range models.TaskStatuses {
		count, err := s.tasksCollection.CountDocuments(ctx, statusCountFilter(filter, taskStatus))
		if err != nil {
			return nil, fmt.Errorf("failed to count %s tasks: %v", taskStatus, err)
		}
		switch taskStatus {
		case models.StatusPending:
			summary.PendingTasks = count
		case models.StatusInProgress:
			summary.InProgressTasks = count
		case models.StatusCompleted:
			summary.CompletedTasks = count
		}
	}

	return &models.TaskListResponse{Tasks: items, StatusSummary: summary}, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, taskID primitive.ObjectID) (*models.TaskDetails, error) {
	var task models.Task
	err := s.tasksCollection.FindOne(ctx, bson.M{"_id": taskID}).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve task: %v", err)
	}

	details, err := s.populateTask(ctx, task)
	if err != nil {
		return nil, err
	}
	return details, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, taskID primitive.ObjectID, req UpdateTaskRequest) (*models.Task, error) {
	var task models.Task
	err := s.tasksCollection.FindOne(ctx, bson.M{"_id": taskID}).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve task: %v", err)
	}

	if err := applyTaskUpdate(&task, req); err != nil {
		return nil, err
	}
	task.UpdatedAt = time.Now()

	if _, err := s.tasksCollection.ReplaceOne(ctx, bson.M{"_id": taskID}, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %v", err)
	}

	return &task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, taskID primitive.ObjectID) error {
	result, err := s.tasksCollection.DeleteOne(ctx, bson.M{"_id": taskID})
	if err != nil {
		return fmt.Errorf("failed to delete task: %v", err)
	}
	if result.DeletedCount == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// applyStatus sets the status directly; an empty status keeps the stored
// one. Completing a task checks off the whole checklist and pins progress at
// 100; any other status leaves progress as stored, even when it no longer
// matches the checklist.
func applyStatus(task *models.Task, status models.TaskStatus) {
	if status != "" {
		task.Status = status
	}
	if task.Status == models.StatusCompleted {
		for i := range task.TodoChecklist {
			task.TodoChecklist[i].Completed = true
		}
		task.Progress = 100
	}
}

// UpdateTaskStatus sets the task status directly. Completing a task this way
// checks off the whole checklist and pins progress at 100; any other status
// leaves progress as stored.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, taskID primitive.ObjectID, requester models.AuthUser, status models.TaskStatus) (*models.Task, error) {
	var task models.Task
	err := s.tasksCollection.FindOne(ctx, bson.M{"_id": taskID}).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve task: %v", err)
	}

	if !CanModifyTask(requester, &task) {
		return nil, ErrNotAuthorized
	}

	applyStatus(&task, status)
	task.UpdatedAt = time.Now()

	if _, err := s.tasksCollection.ReplaceOne(ctx, bson.M{"_id": taskID}, task); err != nil {
		return nil, fmt.Errorf("failed to update task status: %v", err)
	}

	return &task, nil
}

// UpdateTaskChecklist replaces the checklist and rederives progress and
// status from it.
func (s *TaskService) UpdateTaskChecklist(ctx context.Context, taskID primitive.ObjectID, requester models.AuthUser, items []models.TodoItem) (*models.TaskDetails, error) {
	var task models.Task
	err := s.tasksCollection.FindOne(ctx, bson.M{"_id": taskID}).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve task: %v", err)
	}

	if !CanModifyTask(requester, &task) {
		return nil, ErrNotAuthorized
	}

	if items == nil {
		items = []models.TodoItem{}
	}
	ApplyChecklist(&task, items)
	task.UpdatedAt = time.Now()

	if _, err := s.tasksCollection.ReplaceOne(ctx, bson.M{"_id": taskID}, task); err != nil {
		return nil, fmt.Errorf("failed to update task checklist: %v", err)
	}

	return s.populateTask(ctx, task)
}

func (s *TaskService) GetDashboardData(ctx context.Context) (*models.DashboardData, error) {
	return s.buildDashboard(ctx, bson.M{})
}

func (s *TaskService) GetUserDashboardData(ctx context.Context, userID primitive.ObjectID) (*models.DashboardData, error) {
	return s.buildDashboard(ctx, bson.M{"assignedTo": userID})
}

// overdueFilter narrows a scope to unfinished tasks whose due date has
// already passed.
func overdueFilter(scope bson.M, now time.Time) bson.M {
	filter := bson.M{}
	for key, value := range scope {
		filter[key] = value
	}
	filter["status"] = bson.M{"$ne": models.StatusCompleted}
	filter["dueDate"] = bson.M{"$lt": now}
	return filter
}

func statusChartKeys() []string {
	keys := make([]string, 0, len(models.TaskStatuses))
	for _, status := range models.TaskStatuses {
		keys = append(keys, status.ChartKey())
	}
	return keys
}

func priorityKeys() []string {
	keys := make([]string, 0, len(models.TaskPriorities))
	for _, priority := range models.TaskPriorities {
		keys = append(keys, string(priority))
	}
	return keys
}

func (s *TaskService) buildDashboard(ctx context.Context, scope bson.M) (*models.DashboardData, error) {
	totalTasks, err := s.tasksCollection.CountDocuments(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %v", err)
	}
	pendingTasks, err := s.tasksCollection.CountDocuments(ctx, statusCountFilter(scope, models.StatusPending))
	if err != nil {
		return nil, fmt.Errorf("failed to count pending tasks: %v", err)
	}
	completedTasks, err := s.tasksCollection.CountDocuments(ctx, statusCountFilter(scope, models.StatusCompleted))
	if err != nil {
		return nil, fmt.Errorf("failed to count completed tasks: %v", err)
	}
	overdueTasks, err := s.tasksCollection.CountDocuments(ctx, overdueFilter(scope, time.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to count overdue tasks: %v", err)
	}

	statusRows, err := s.groupCounts(ctx, scope, "$status")
	if err != nil {
		return nil, err
	}
	taskDistribution := fillBuckets(statusRows, statusChartKeys(), func(raw string) string {
		return models.TaskStatus(raw).ChartKey()
	})
	taskDistribution["All"] = totalTasks

	priorityRows, err := s.groupCounts(ctx, scope, "$priority")
	if err != nil {
		return nil, err
	}
	taskPriorityLevels := fillBuckets(priorityRows, priorityKeys(), func(raw string) string {
		return raw
	})

	recentTasks, err := s.recentTasks(ctx, scope)
	if err != nil {
		return nil, err
	}

	return &models.DashboardData{
		Statistics: models.DashboardStatistics{
			TotalTasks:     totalTasks,
			PendingTasks:   pendingTasks,
			CompletedTasks: completedTasks,
			OverdueTasks:   overdueTasks,
		},
		Charts: models.DashboardCharts{
			TaskDistribution:   taskDistribution,
			TaskPriorityLevels: taskPriorityLevels,
		},
		RecentTasks: recentTasks,
	}, nil
}

// groupCounts runs a $match + $group count pipeline through the circuit
// breaker so a degraded database trips the dashboard fan-out early.
func (s *TaskService) groupCounts(ctx context.Context, match bson.M, field string) ([]bucketRow, error) {
	result, err := s.dbBreaker.Execute(func() (interface{}, error) {
		pipeline := []bson.M{
			{"$match": match},
			{"$group": bson.M{"_id": field, "count": bson.M{"$sum": 1}}},
		}

		cursor, err := s.tasksCollection.Aggregate(ctx, pipeline)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate by %s: %v", field, err)
		}
		defer cursor.Close(ctx)

		var rows []bucketRow
		if err := cursor.All(ctx, &rows); err != nil {
			return nil, fmt.Errorf("failed to decode %s aggregation: %v", field, err)
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]bucketRow), nil
}

func (s *TaskService) recentTasks(ctx context.Context, scope bson.M) ([]models.RecentTask, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(10).
		SetProjection(bson.M{"title": 1, "status": 1, "priority": 1, "dueDate": 1, "createdAt": 1})

	cursor, err := s.tasksCollection.Find(ctx, scope, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve recent tasks: %v", err)
	}
	defer cursor.Close(ctx)

	recentTasks := []models.RecentTask{}
	if err := cursor.All(ctx, &recentTasks); err != nil {
		return nil, fmt.Errorf("failed to decode recent tasks: %v", err)
	}
	return recentTasks, nil
}

func (s *TaskService) populateTask(ctx context.Context, task models.Task) (*models.TaskDetails, error) {
	items, err := s.populateTasks(ctx, []models.Task{task})
	if err != nil {
		return nil, err
	}
	return &items[0].TaskDetails, nil
}

// populateTasks expands assignedTo ids to user summaries and attaches the
// completed checklist count per task. Ids that no longer resolve to a user
// are dropped from the populated list.
func (s *TaskService) populateTasks(ctx context.Context, tasks []models.Task) ([]models.TaskListItem, error) {
	idSet := map[primitive.ObjectID]struct{}{}
	for _, task := range tasks {
		for _, userID := range task.AssignedTo {
			idSet[userID] = struct{}{}
		}
	}

	users := map[primitive.ObjectID]models.UserSummary{}
	if len(idSet) > 0 {
		ids := make([]primitive.ObjectID, 0, len(idSet))
		for userID := range idSet {
			ids = append(ids, userID)
		}

		cursor, err := s.usersCollection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve assigned users: %v", err)
		}
		defer cursor.Close(ctx)

		var summaries []models.UserSummary
		if err := cursor.All(ctx, &summaries); err != nil {
			return nil, fmt.Errorf("failed to decode assigned users: %v", err)
		}
		for _, summary := range summaries {
			users[summary.ID] = summary
		}
	}

	items := make([]models.TaskListItem, 0, len(tasks))
	for _, task := range tasks {
		assigned := make([]models.UserSummary, 0, len(task.AssignedTo))
		for _, userID := range task.AssignedTo {
			if summary, ok := users[userID]; ok {
				assigned = append(assigned, summary)
			}
		}
		items = append(items, models.TaskListItem{
			TaskDetails: models.TaskDetails{
				Task:       task,
				AssignedTo: assigned,
			},
			CompletedTodoCount: CompletedTodoCount(task.TodoChecklist),
		})
	}
	return items, nil
}
