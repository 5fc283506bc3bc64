package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inspeksi/apar-backend/internal/inspection/entity"
	"github.com/inspeksi/apar-backend/internal/inspection/repository"
	"github.com/google/uuid"
)

var (
	ErrInvalidWindow    = errors.New("start_time must be before end_time")
	ErrInvalidFrequency = errors.New("invalid frequency")
)

// ScheduleService manages inspection schedule windows.
type ScheduleService struct {
	repo     *repository.ScheduleRepository
	aparRepo *repository.AparRepository
	userRepo *repository.UserRepository
}

func NewScheduleService(repo *repository.ScheduleRepository, aparRepo *repository.AparRepository, userRepo *repository.UserRepository) *ScheduleService {
	return &ScheduleService{repo: repo, aparRepo: aparRepo, userRepo: userRepo}
}

type CreateScheduleRequest struct {
	AparID         string  `json:"apar_id" binding:"required"`
	AssignedUserID *string `json:"assigned_user_id"`
	ScheduledDate  string  `json:"scheduled_date" binding:"required"` // YYYY-MM-DD
	StartTime      string  `json:"start_time" binding:"required"`     // HH:MM
	EndTime        string  `json:"end_time" binding:"required"`       // HH:MM
	Frequency      string  `json:"frequency"`
	Notes          string  `json:"notes"`
}

func (s *ScheduleService) CreateSchedule(ctx context.Context, operatorID string, req *CreateScheduleRequest) (*entity.InspectionSchedule, error) {
	if _, err := s.aparRepo.FindByID(ctx, req.AparID); err != nil {
		return nil, fmt.Errorf("apar: %w", err)
	}
	if req.AssignedUserID != nil {
		if _, err := s.userRepo.FindByID(ctx, *req.AssignedUserID); err != nil {
			return nil, fmt.Errorf("assigned user: %w", err)
		}
	}

	date, err := time.Parse("2006-01-02", req.ScheduledDate)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduled_date: %w", err)
	}
	start, err := time.Parse("15:04", req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("invalid start_time: %w", err)
	}
	end, err := time.Parse("15:04", req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("invalid end_time: %w", err)
	}
	if !start.Before(end) {
		return nil, ErrInvalidWindow
	}

	frequency := req.Frequency
	if frequency == "" {
		frequency = entity.FrequencyOnce
	}
	if !entity.ValidFrequency(frequency) {
		return nil, ErrInvalidFrequency
	}

	schedule := &entity.InspectionSchedule{
		ID:             uuid.New().String()[:32],
		AparID:         req.AparID,
		AssignedUserID: req.AssignedUserID,
		ScheduledDate:  date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Frequency:      frequency,
		IsActive:       true,
		Notes:          req.Notes,
		CreatedBy:      operatorID,
	}

	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, fmt.Errorf("create schedule: %w", err)
	}
	return schedule, nil
}

type UpdateScheduleRequest struct {
	AssignedUserID *string `json:"assigned_user_id"`
	ScheduledDate  *string `json:"scheduled_date"`
	StartTime      *string `json:"start_time"`
	EndTime        *string `json:"end_time"`
	Frequency      *string `json:"frequency"`
	IsActive       *bool   `json:"is_active"`
	Notes          *string `json:"notes"`
}

func (s *ScheduleService) UpdateSchedule(ctx context.Context, id string, req *UpdateScheduleRequest) (*entity.InspectionSchedule, error) {
	schedule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.AssignedUserID != nil {
		if *req.AssignedUserID == "" {
			schedule.AssignedUserID = nil
		} else {
			if _, err := s.userRepo.FindByID(ctx, *req.AssignedUserID); err != nil {
				return nil, fmt.Errorf("assigned user: %w", err)
			}
			schedule.AssignedUserID = req.AssignedUserID
		}
	}
	if req.ScheduledDate != nil {
		date, err := time.Parse("2006-01-02", *req.ScheduledDate)
		if err != nil {
			return nil, fmt.Errorf("invalid scheduled_date: %w", err)
		}
		schedule.ScheduledDate = date
	}
	if req.StartTime != nil {
		if _, err := time.Parse("15:04", *req.StartTime); err != nil {
			return nil, fmt.Errorf("invalid start_time: %w", err)
		}
		schedule.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		if _, err := time.Parse("15:04", *req.EndTime); err != nil {
			return nil, fmt.Errorf("invalid end_time: %w", err)
		}
		schedule.EndTime = *req.EndTime
	}
	if schedule.StartTime >= schedule.EndTime {
		return nil, ErrInvalidWindow
	}
	if req.Frequency != nil {
		if !entity.ValidFrequency(*req.Frequency) {
			return nil, ErrInvalidFrequency
		}
		schedule.Frequency = *req.Frequency
	}
	if req.IsActive != nil {
		schedule.IsActive = *req.IsActive
	}
	if req.Notes != nil {
		schedule.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, schedule); err != nil {
		return nil, fmt.Errorf("update schedule: %w", err)
	}
	return schedule, nil
}

func (s *ScheduleService) ListSchedules(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.InspectionSchedule, int64, error) {
	return s.repo.FindAll(ctx, page, pageSize, filters)
}

func (s *ScheduleService) GetSchedule(ctx context.Context, id string) (*entity.InspectionSchedule, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ScheduleService) DeleteSchedule(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// MySchedulesToday lists today's open or assigned windows for a teknisi.
func (s *ScheduleService) MySchedulesToday(ctx context.Context, userID string) ([]entity.InspectionSchedule, error) {
	return s.repo.FindForUserOnDate(ctx, userID, time.Now())
}

// CompleteSchedule manually closes a window without an inspection,
// e.g. when a unit was removed mid-cycle.
func (s *ScheduleService) CompleteSchedule(ctx context.Context, id string) (*entity.InspectionSchedule, error) {
	schedule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !schedule.IsCompleted {
		now := time.Now()
		if _, err := s.repo.MarkCompleted(ctx, id, now); err != nil {
			return nil, fmt.Errorf("complete schedule: %w", err)
		}
		schedule.IsCompleted = true
		schedule.CompletedAt = &now
	}
	return schedule, nil
}
