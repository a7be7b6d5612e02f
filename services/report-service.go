package services

import (
	"context"
	"fmt"
	"strings"

	"task-manager/backend/models"

	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ReportService struct {
	tasksCollection *mongo.Collection
	usersCollection *mongo.Collection
}

func NewReportService(tasksCollection, usersCollection *mongo.Collection) *ReportService {
	return &ReportService{
		tasksCollection: tasksCollection,
		usersCollection: usersCollection,
	}
}

var taskReportHeaders = []interface{}{"Task ID", "Title", "Description", "Priority", "Due Date", "Assigned To", "Status"}
var taskReportWidths = []float64{25, 30, 50, 15, 20, 30, 20}

var userReportHeaders = []interface{}{"User Name", "Email", "Total Assigned Tasks", "Pending Tasks", "In Progress Tasks", "Completed Tasks"}
var userReportWidths = []float64{30, 30, 50, 50, 50, 50}

// buildTaskReportRows renders one spreadsheet row per task. The assignee
// column joins "Name (email)" entries, or "Unassigned" when nobody is.
func buildTaskReportRows(tasks []models.Task, users map[primitive.ObjectID]models.User) [][]interface{} {
	rows := make([][]interface{}, 0, len(tasks))
	for _, task := range tasks {
		var assigned []string
		for _, userID := range task.AssignedTo {
			if user, ok := users[userID]; ok {
				assigned = append(assigned, fmt.Sprintf("%s (%s)", user.Name, user.Email))
			}
		}
		assignedTo := strings.Join(assigned, ", ")
		if assignedTo == "" {
			assignedTo = "Unassigned"
		}

		rows = append(rows, []interface{}{
			task.ID.Hex(),
			task.Title,
			task.Description,
			string(task.Priority),
			task.DueDate.Format("2006-01-02"),
			assignedTo,
			string(task.Status),
		})
	}
	return rows
}

type userReportRow struct {
	Name       string
	Email      string
	TaskCount  int64
	Pending    int64
	InProgress int64
	Completed  int64
}

// buildUserReportRows folds every task over the user set, one row per user
// in listing order, counts zero-filled for users with no assignments.
func buildUserReportRows(users []models.User, tasks []models.Task) []userReportRow {
	index := make(map[primitive.ObjectID]int, len(users))
	rows := make([]userReportRow, 0, len(users))
	for i, user := range users {
		index[user.ID] = i
		rows = append(rows, userReportRow{Name: user.Name, Email: user.Email})
	}

	for _, task := range tasks {
		for _, userID := range task.AssignedTo {
			i, ok := index[userID]
			if !ok {
				continue
			}
			rows[i].TaskCount++
			switch task.Status {
			case models.StatusPending:
				rows[i].Pending++
			case models.StatusInProgress:
				rows[i].InProgress++
			case models.StatusCompleted:
				rows[i].Completed++
			}
		}
	}
	return rows
}

func (s *ReportService) allTasks(ctx context.Context) ([]models.Task, error) {
	cursor, err := s.tasksCollection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %v", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %v", err)
	}
	return tasks, nil
}

func newReportSheet(sheet string, headers []interface{}, widths []float64) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to create report sheet: %v", err)
	}

	for i, width := range widths {
		column, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, column, column, width); err != nil {
			return nil, err
		}
	}

	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("failed to write report header: %v", err)
	}
	return f, nil
}

func writeReportRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write report row %d: %v", i+2, err)
		}
	}
	return nil
}

// ExportTasksReport renders every task to an xlsx workbook.
func (s *ReportService) ExportTasksReport(ctx context.Context) (*excelize.File, error) {
	tasks, err := s.allTasks(ctx)
	if err != nil {
		return nil, err
	}

	idSet := map[primitive.ObjectID]struct{}{}
	for _, task := range tasks {
		for _, userID := range task.AssignedTo {
			idSet[userID] = struct{}{}
		}
	}

	users := map[primitive.ObjectID]models.User{}
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

		var assignedUsers []models.User
		if err := cursor.All(ctx, &assignedUsers); err != nil {
			return nil, fmt.Errorf("failed to decode assigned users: %v", err)
		}
		for _, user := range assignedUsers {
			users[user.ID] = user
		}
	}

	f, err := newReportSheet("Tasks Report", taskReportHeaders, taskReportWidths)
	if err != nil {
		return nil, err
	}
	if err := writeReportRows(f, "Tasks Report", buildTaskReportRows(tasks, users)); err != nil {
		return nil, err
	}
	return f, nil
}

// ExportUsersReport renders per-employee assignment counts to an xlsx
// workbook.
func (s *ReportService) ExportUsersReport(ctx context.Context) (*excelize.File, error) {
	cursor, err := s.usersCollection.Find(ctx, bson.M{"role": models.RoleEmployee})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %v", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %v", err)
	}

	tasks, err := s.allTasks(ctx)
	if err != nil {
		return nil, err
	}

	f, err := newReportSheet("User Task Report", userReportHeaders, userReportWidths)
	if err != nil {
		return nil, err
	}

	rows := make([][]interface{}, 0, len(users))
	for _, row := range buildUserReportRows(users, tasks) {
		rows = append(rows, []interface{}{row.Name, row.Email, row.TaskCount, row.Pending, row.InProgress, row.Completed})
	}
	if err := writeReportRows(f, "User Task Report", rows); err != nil {
		return nil, err
	}
	return f, nil
}
