package handlers

import (
	"fmt"
	"net/http"

	"task-manager/backend/logging"
	"task-manager/backend/services"

	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	service *services.ReportService
}

func NewReportHandler(service *services.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

func writeWorkbook(w http.ResponseWriter, f *excelize.File, filename string) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	if err := f.Write(w); err != nil {
		logging.Logger.Errorf("Event ID: REPORT_WRITE_FAILED, Description: Failed to stream %s: %v", filename, err)
	}
}

// ExportTasksReport streams the task report workbook. Admin only.
func (h *ReportHandler) ExportTasksReport(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	f, err := h.service.ExportTasksReport(r.Context())
	if err != nil {
		writeServiceError(w, err, "Error exporting tasks")
		return
	}

	writeWorkbook(w, f, "tasks_report.xlsx")
}

// ExportUsersReport streams the per-user assignment report workbook. Admin
// only.
func (h *ReportHandler) ExportUsersReport(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	f, err := h.service.ExportUsersReport(r.Context())
	if err != nil {
		writeServiceError(w, err, "Error exporting users")
		return
	}

	writeWorkbook(w, f, "users_report.xlsx")
}
