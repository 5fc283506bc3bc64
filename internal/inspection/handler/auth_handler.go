package handler

import (
	"errors"

	"github.com/inspeksi/apar-backend/internal/inspection/repository"
	"github.com/inspeksi/apar-backend/internal/inspection/service"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc     *service.AuthService
	userSvc *service.UserService
}

func NewAuthHandler(svc *service.AuthService, userSvc *service.UserService) *AuthHandler {
	return &AuthHandler{svc: svc, userSvc: userSvc}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "username and password are required")
		return
	}

	user, tokens, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			Unauthorized(c, "invalid username or password")
			return
		}
		InternalError(c, "login failed: "+err.Error())
		return
	}

	Success(c, gin.H{
		"user":   user,
		"tokens": tokens,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh POST /api/v1/auth/refresh
//
// Refresh tokens are single use; a successful call revokes the
// presented token and returns a fresh pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "refresh_token is required")
		return
	}

	user, tokens, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			Unauthorized(c, "refresh token expired or revoked")
			return
		}
		InternalError(c, "refresh failed: "+err.Error())
		return
	}

	Success(c, gin.H{
		"user":   user,
		"tokens": tokens,
	})
}

// Logout POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "refresh_token is required")
		return
	}

	if err := h.svc.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		InternalError(c, "logout failed: "+err.Error())
		return
	}
	Success(c, gin.H{"message": "logged out"})
}

// Me GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.userSvc.GetUser(c.Request.Context(), GetUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "user not found")
			return
		}
		InternalError(c, "load profile failed: "+err.Error())
		return
	}
	Success(c, gin.H{"user": user})
}
