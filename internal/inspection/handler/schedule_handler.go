package handler

import (
	"errors"

	"github.com/inspeksi/apar-backend/internal/inspection/repository"
	"github.com/inspeksi/apar-backend/internal/inspection/service"
	"github.com/gin-gonic/gin"
)

// ScheduleHandler manages inspection schedules.
type ScheduleHandler struct {
	svc *service.ScheduleService
}

func NewScheduleHandler(svc *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{svc: svc}
}

// List GET /api/v1/schedules
func (h *ScheduleHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"apar_id":          c.Query("apar_id"),
		"assigned_user_id": c.Query("assigned_user_id"),
		"frequency":        c.Query("frequency"),
		"date":             c.Query("date"),
		"is_active":        c.Query("is_active"),
		"is_completed":     c.Query("is_completed"),
	}

	schedules, total, err := h.svc.ListSchedules(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "list schedules failed: "+err.Error())
		return
	}
	Success(c, ListResponse{Items: schedules, Pagination: NewPagination(page, pageSize, total)})
}

// Create POST /api/v1/schedules
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req service.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	schedule, err := h.svc.CreateSchedule(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			NotFound(c, "apar or assigned user not found")
		case errors.Is(err, service.ErrInvalidWindow), errors.Is(err, service.ErrInvalidFrequency):
			BadRequest(c, err.Error())
		default:
			InternalError(c, "create schedule failed: "+err.Error())
		}
		return
	}
	Created(c, gin.H{"schedule": schedule})
}

// Get GET /api/v1/schedules/:id
func (h *ScheduleHandler) Get(c *gin.Context) {
	schedule, err := h.svc.GetSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "schedule not found")
			return
		}
		InternalError(c, "get schedule failed: "+err.Error())
		return
	}
	Success(c, gin.H{"schedule": schedule})
}

// Update PUT /api/v1/schedules/:id
func (h *ScheduleHandler) Update(c *gin.Context) {
	var req service.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	schedule, err := h.svc.UpdateSchedule(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			NotFound(c, "schedule not found")
		case errors.Is(err, service.ErrInvalidWindow), errors.Is(err, service.ErrInvalidFrequency):
			BadRequest(c, err.Error())
		default:
			InternalError(c, "update schedule failed: "+err.Error())
		}
		return
	}
	Success(c, gin.H{"schedule": schedule})
}

// Delete DELETE /api/v1/schedules/:id
func (h *ScheduleHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteSchedule(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "schedule not found")
			return
		}
		InternalError(c, "delete schedule failed: "+err.Error())
		return
	}
	Success(c, gin.H{"message": "schedule deleted"})
}

// Complete PUT /api/v1/schedules/:id/complete
//
// Manual completion by a supervisor, outside the submission flow.
func (h *ScheduleHandler) Complete(c *gin.Context) {
	schedule, err := h.svc.CompleteSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "schedule not found")
			return
		}
		InternalError(c, "complete schedule failed: "+err.Error())
		return
	}
	Success(c, gin.H{"schedule": schedule})
}

// MyToday GET /api/v1/schedules/my-today
//
// The technician's work list: schedules open to them today.
func (h *ScheduleHandler) MyToday(c *gin.Context) {
	schedules, err := h.svc.MySchedulesToday(c.Request.Context(), GetUserID(c))
	if err != nil {
		InternalError(c, "load today's schedules failed: "+err.Error())
		return
	}
	Success(c, gin.H{"items": schedules})
}
