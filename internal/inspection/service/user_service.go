package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/inspeksi/apar-backend/internal/inspection/entity"
	"github.com/inspeksi/apar-backend/internal/inspection/repository"
	"github.com/google/uuid"
)

var ErrInvalidRole = errors.New("invalid role")

// UserService manages application accounts (admin operations).
type UserService struct {
	repo         *repository.UserRepository
	auditLogRepo *repository.AuditLogRepository
}

func NewUserService(repo *repository.UserRepository, auditLogRepo *repository.AuditLogRepository) *UserService {
	return &UserService{repo: repo, auditLogRepo: auditLogRepo}
}

type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
}

func (s *UserService) CreateUser(ctx context.Context, operatorID string, req *CreateUserRequest) (*entity.User, error) {
	role := req.Role
	if role == "" {
		role = entity.RoleTeknisi
	}
	if !entity.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		ID:           uuid.New().String()[:32],
		Username:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         role,
		Status:       entity.UserStatusActive,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.auditLogRepo.LogActivity(ctx, "user", user.ID, user.Username,
		"create", "", entity.UserStatusActive, "User account created", operatorID, "")

	return user, nil
}

type UpdateUserRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Phone  *string `json:"phone"`
	Role   *string `json:"role"`
	Status *string `json:"status"`
}

func (s *UserService) UpdateUser(ctx context.Context, operatorID, id string, req *UpdateUserRequest) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Role != nil {
		if !entity.ValidRole(*req.Role) {
			return nil, ErrInvalidRole
		}
		user.Role = *req.Role
	}
	if req.Status != nil {
		user.Status = *req.Status
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.auditLogRepo.LogActivity(ctx, "user", user.ID, user.Username,
		"update", "", user.Status, "User account updated", operatorID, "")

	return user, nil
}

func (s *UserService) ResetPassword(ctx context.Context, operatorID, id, newPassword string) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash

	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	s.auditLogRepo.LogActivity(ctx, "user", user.ID, user.Username,
		"reset_password", "", "", "Password reset by administrator", operatorID, "")

	return nil
}

func (s *UserService) ListUsers(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.User, int64, error) {
	return s.repo.FindAll(ctx, page, pageSize, filters)
}

func (s *UserService) GetUser(ctx context.Context, id string) (*entity.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) DeleteUser(ctx context.Context, operatorID, id string) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.auditLogRepo.LogActivity(ctx, "user", id, "",
		"delete", "", "", "User account deleted", operatorID, "")
	return nil
}
