package handler

import (
	"errors"

	"github.com/inspeksi/apar-backend/internal/inspection/repository"
	"github.com/inspeksi/apar-backend/internal/inspection/service"
	"github.com/gin-gonic/gin"
)

// RepairHandler drives the repair approval workflow.
type RepairHandler struct {
	svc *service.RepairService
}

func NewRepairHandler(svc *service.RepairService) *RepairHandler {
	return &RepairHandler{svc: svc}
}

// List GET /api/v1/repairs
func (h *RepairHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"apar_id":      c.Query("apar_id"),
		"status":       c.Query("status"),
		"severity":     c.Query("severity"),
		"requested_by": c.Query("requested_by"),
	}

	repairs, total, err := h.svc.ListRepairs(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "list repairs failed: "+err.Error())
		return
	}
	Success(c, ListResponse{Items: repairs, Pagination: NewPagination(page, pageSize, total)})
}

// Create POST /api/v1/repairs
func (h *RepairHandler) Create(c *gin.Context) {
	var req service.CreateRepairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	repair, err := h.svc.CreateRepair(c.Request.Context(), GetUserID(c), GetUserName(c), &req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			NotFound(c, "apar not found")
		case errors.Is(err, service.ErrInvalidSeverity):
			BadRequest(c, err.Error())
		default:
			InternalError(c, "create repair failed: "+err.Error())
		}
		return
	}
	Created(c, gin.H{"repair": repair})
}

// Get GET /api/v1/repairs/:id
func (h *RepairHandler) Get(c *gin.Context) {
	repair, err := h.svc.GetRepair(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "repair not found")
			return
		}
		InternalError(c, "get repair failed: "+err.Error())
		return
	}
	Success(c, gin.H{"repair": repair})
}

// Approve PUT /api/v1/repairs/:id/approve
func (h *RepairHandler) Approve(c *gin.Context) {
	var req service.ReviewRepairRequest
	c.ShouldBindJSON(&req) // notes are optional

	repair, err := h.svc.ApproveRepair(c.Request.Context(), GetUserID(c), GetUserName(c), c.Param("id"), &req)
	if err != nil {
		h.reviewError(c, err, "approve")
		return
	}
	Success(c, gin.H{"repair": repair})
}

// Reject PUT /api/v1/repairs/:id/reject
func (h *RepairHandler) Reject(c *gin.Context) {
	var req service.ReviewRepairRequest
	c.ShouldBindJSON(&req)

	repair, err := h.svc.RejectRepair(c.Request.Context(), GetUserID(c), GetUserName(c), c.Param("id"), &req)
	if err != nil {
		h.reviewError(c, err, "reject")
		return
	}
	Success(c, gin.H{"repair": repair})
}

// Complete PUT /api/v1/repairs/:id/complete
func (h *RepairHandler) Complete(c *gin.Context) {
	repair, err := h.svc.CompleteRepair(c.Request.Context(), GetUserID(c), GetUserName(c), c.Param("id"))
	if err != nil {
		h.reviewError(c, err, "complete")
		return
	}
	Success(c, gin.H{"repair": repair})
}

func (h *RepairHandler) reviewError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, "repair not found")
	case errors.Is(err, service.ErrInvalidTransition):
		BadRequest(c, "cannot "+action+" repair in its current status")
	default:
		InternalError(c, action+" repair failed: "+err.Error())
	}
}
