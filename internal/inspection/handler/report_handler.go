package handler

import (
	"github.com/inspeksi/apar-backend/internal/inspection/service"
	"github.com/gin-gonic/gin"
)

// ReportHandler serves the dashboard and exports.
type ReportHandler struct {
	svc *service.ReportService
}

func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// Dashboard GET /api/v1/reports/dashboard
func (h *ReportHandler) Dashboard(c *gin.Context) {
	stats, err := h.svc.GetDashboardStats(c.Request.Context())
	if err != nil {
		InternalError(c, "load dashboard failed: "+err.Error())
		return
	}
	Success(c, stats)
}

// ExportInspections GET /api/v1/reports/inspections/export
func (h *ReportHandler) ExportInspections(c *gin.Context) {
	filters := map[string]string{
		"apar_id":   c.Query("apar_id"),
		"user_id":   c.Query("user_id"),
		"condition": c.Query("condition"),
		"from":      c.Query("from"),
		"to":        c.Query("to"),
	}

	f, filename, err := h.svc.ExportInspections(c.Request.Context(), filters)
	if err != nil {
		InternalError(c, "export failed: "+err.Error())
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "write excel: "+err.Error())
	}
}
