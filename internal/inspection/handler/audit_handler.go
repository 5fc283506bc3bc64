package handler

import (
	"github.com/inspeksi/apar-backend/internal/inspection/repository"
	"github.com/gin-gonic/gin"
)

// AuditHandler exposes the per-entity activity trail.
type AuditHandler struct {
	repo *repository.AuditLogRepository
}

func NewAuditHandler(repo *repository.AuditLogRepository) *AuditHandler {
	return &AuditHandler{repo: repo}
}

// ListByEntity GET /api/v1/audit-logs/:entityType/:entityId
func (h *AuditHandler) ListByEntity(c *gin.Context) {
	page, pageSize := GetPagination(c)

	logs, total, err := h.repo.FindByEntity(c.Request.Context(), c.Param("entityType"), c.Param("entityId"), page, pageSize)
	if err != nil {
		InternalError(c, "list audit logs failed: "+err.Error())
		return
	}
	Success(c, ListResponse{Items: logs, Pagination: NewPagination(page, pageSize, total)})
}
