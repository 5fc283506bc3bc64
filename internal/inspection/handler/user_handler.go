package handler

import (
	"errors"

	"github.com/inspeksi/apar-backend/internal/inspection/repository"
	"github.com/inspeksi/apar-backend/internal/inspection/service"
	"github.com/gin-gonic/gin"
)

// UserHandler exposes the administrative user CRUD.
type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// List GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"role":   c.Query("role"),
		"status": c.Query("status"),
		"search": c.Query("search"),
	}

	users, total, err := h.svc.ListUsers(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "list users failed: "+err.Error())
		return
	}
	Success(c, ListResponse{Items: users, Pagination: NewPagination(page, pageSize, total)})
}

// Create POST /api/v1/users
func (h *UserHandler) Create(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.svc.CreateUser(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRole) {
			BadRequest(c, err.Error())
			return
		}
		InternalError(c, "create user failed: "+err.Error())
		return
	}
	Created(c, gin.H{"user": user})
}

// Get GET /api/v1/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.svc.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "user not found")
			return
		}
		InternalError(c, "get user failed: "+err.Error())
		return
	}
	Success(c, gin.H{"user": user})
}

// Update PUT /api/v1/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.svc.UpdateUser(c.Request.Context(), GetUserID(c), c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			NotFound(c, "user not found")
		case errors.Is(err, service.ErrInvalidRole):
			BadRequest(c, err.Error())
		default:
			InternalError(c, "update user failed: "+err.Error())
		}
		return
	}
	Success(c, gin.H{"user": user})
}

type resetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

// ResetPassword PUT /api/v1/users/:id/password
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "password must be at least 8 characters")
		return
	}

	if err := h.svc.ResetPassword(c.Request.Context(), GetUserID(c), c.Param("id"), req.Password); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "user not found")
			return
		}
		InternalError(c, "reset password failed: "+err.Error())
		return
	}
	Success(c, gin.H{"message": "password updated"})
}

// Delete DELETE /api/v1/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteUser(c.Request.Context(), GetUserID(c), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "user not found")
			return
		}
		InternalError(c, "delete user failed: "+err.Error())
		return
	}
	Success(c, gin.H{"message": "user deleted"})
}
