package handler

import (
	"errors"

	"github.com/inspeksi/apar-backend/internal/inspection/repository"
	"github.com/inspeksi/apar-backend/internal/inspection/service"
	"github.com/gin-gonic/gin"
)

// AparHandler exposes the extinguisher registry.
type AparHandler struct {
	svc *service.AparService
}

func NewAparHandler(svc *service.AparService) *AparHandler {
	return &AparHandler{svc: svc}
}

// List GET /api/v1/apars
func (h *AparHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status":        c.Query("status"),
		"location_type": c.Query("location_type"),
		"type":          c.Query("type"),
		"search":        c.Query("search"),
	}

	apars, total, err := h.svc.ListApars(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "list apars failed: "+err.Error())
		return
	}
	Success(c, ListResponse{Items: apars, Pagination: NewPagination(page, pageSize, total)})
}

// Create POST /api/v1/apars
func (h *AparHandler) Create(c *gin.Context) {
	var req service.CreateAparRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	apar, err := h.svc.CreateApar(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidLocationType) {
			BadRequest(c, err.Error())
			return
		}
		InternalError(c, "create apar failed: "+err.Error())
		return
	}
	Created(c, gin.H{"apar": apar})
}

// Get GET /api/v1/apars/:id
func (h *AparHandler) Get(c *gin.Context) {
	apar, err := h.svc.GetApar(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "apar not found")
			return
		}
		InternalError(c, "get apar failed: "+err.Error())
		return
	}
	Success(c, gin.H{"apar": apar})
}

// GetByQRCode GET /api/v1/apars/qr/:code
//
// Used by the mobile app after scanning a unit's QR label.
func (h *AparHandler) GetByQRCode(c *gin.Context) {
	apar, err := h.svc.GetAparByQRCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "no apar registered for this QR code")
			return
		}
		InternalError(c, "get apar failed: "+err.Error())
		return
	}
	Success(c, gin.H{"apar": apar})
}

// Update PUT /api/v1/apars/:id
func (h *AparHandler) Update(c *gin.Context) {
	var req service.UpdateAparRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	apar, err := h.svc.UpdateApar(c.Request.Context(), GetUserID(c), c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			NotFound(c, "apar not found")
		case errors.Is(err, service.ErrInvalidLocationType):
			BadRequest(c, err.Error())
		default:
			InternalError(c, "update apar failed: "+err.Error())
		}
		return
	}
	Success(c, gin.H{"apar": apar})
}

// Delete DELETE /api/v1/apars/:id
func (h *AparHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteApar(c.Request.Context(), GetUserID(c), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "apar not found")
			return
		}
		InternalError(c, "delete apar failed: "+err.Error())
		return
	}
	Success(c, gin.H{"message": "apar deleted"})
}

// RefreshExpiry POST /api/v1/apars/refresh-expiry
//
// Sweeps units whose expiry date has passed and marks them expired.
func (h *AparHandler) RefreshExpiry(c *gin.Context) {
	updated, err := h.svc.RefreshExpiryStatuses(c.Request.Context(), GetUserID(c))
	if err != nil {
		InternalError(c, "refresh expiry failed: "+err.Error())
		return
	}
	Success(c, gin.H{"updated": updated})
}
