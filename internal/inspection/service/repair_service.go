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
	ErrInvalidSeverity   = errors.New("invalid severity")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// RepairService manages the repair approval workflow. Status moves
// through pending -> approved -> completed, with rejected as the
// terminal branch off pending.
type RepairService struct {
	repo         *repository.RepairRepository
	aparRepo     *repository.AparRepository
	auditLogRepo *repository.AuditLogRepository
	notification *NotificationService
}

func NewRepairService(
	repo *repository.RepairRepository,
	aparRepo *repository.AparRepository,
	auditLogRepo *repository.AuditLogRepository,
	notification *NotificationService,
) *RepairService {
	return &RepairService{
		repo:         repo,
		aparRepo:     aparRepo,
		auditLogRepo: auditLogRepo,
		notification: notification,
	}
}

type CreateRepairRequest struct {
	AparID       string  `json:"apar_id" binding:"required"`
	InspectionID *string `json:"inspection_id"`
	Description  string  `json:"description" binding:"required"`
	Severity     string  `json:"severity" binding:"required"`
}

func (s *RepairService) CreateRepair(ctx context.Context, requesterID, requesterName string, req *CreateRepairRequest) (*entity.RepairRequest, error) {
	switch req.Severity {
	case entity.SeverityCritical, entity.SeverityMajor, entity.SeverityMinor:
	default:
		return nil, ErrInvalidSeverity
	}

	apar, err := s.aparRepo.FindByID(ctx, req.AparID)
	if err != nil {
		return nil, fmt.Errorf("apar: %w", err)
	}

	code, err := s.repo.GenerateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}

	repair := &entity.RepairRequest{
		ID:           uuid.New().String()[:32],
		Code:         code,
		AparID:       apar.ID,
		InspectionID: req.InspectionID,
		RequestedBy:  requesterID,
		Description:  req.Description,
		Severity:     req.Severity,
		Status:       entity.RepairStatusPending,
	}
	if err := s.repo.Create(ctx, repair); err != nil {
		return nil, err
	}

	s.auditLogRepo.LogActivity(ctx, "repair", repair.ID, repair.Code,
		"create", "", entity.RepairStatusPending,
		fmt.Sprintf("Repair requested for %s: %s", apar.Code, req.Description), requesterID, requesterName)

	// Supervisors act on pending requests; broadcast so any of them can
	// pick it up.
	s.notification.Dispatch(ctx, "",
		fmt.Sprintf("Repair %s awaiting review", repair.Code),
		fmt.Sprintf("%s (%s severity): %s", apar.Code, req.Severity, req.Description),
		entity.NotifyCategoryRepair, "repair", repair.ID)

	return repair, nil
}

type ReviewRepairRequest struct {
	Notes string `json:"notes"`
}

// ApproveRepair moves a pending request to approved and flips the unit
// into in_repair so it stops matching eligibility checks.
func (s *RepairService) ApproveRepair(ctx context.Context, reviewerID, reviewerName, id string, req *ReviewRepairRequest) (*entity.RepairRequest, error) {
	return s.review(ctx, reviewerID, reviewerName, id, entity.RepairStatusApproved, req.Notes)
}

// RejectRepair moves a pending request to rejected. The unit keeps its
// current status.
func (s *RepairService) RejectRepair(ctx context.Context, reviewerID, reviewerName, id string, req *ReviewRepairRequest) (*entity.RepairRequest, error) {
	return s.review(ctx, reviewerID, reviewerName, id, entity.RepairStatusRejected, req.Notes)
}

func (s *RepairService) review(ctx context.Context, reviewerID, reviewerName, id, toStatus, notes string) (*entity.RepairRequest, error) {
	repair, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !entity.CanTransitionRepair(repair.Status, toStatus) {
		return nil, ErrInvalidTransition
	}

	from := repair.Status
	now := time.Now()
	repair.Status = toStatus
	repair.ReviewedBy = &reviewerID
	repair.ReviewedAt = &now
	repair.ReviewNotes = notes
	if err := s.repo.Update(ctx, repair); err != nil {
		return nil, err
	}

	if toStatus == entity.RepairStatusApproved {
		if apar, err := s.aparRepo.FindByID(ctx, repair.AparID); err == nil {
			apar.Status = entity.AparStatusInRepair
			if err := s.aparRepo.Update(ctx, apar); err != nil {
				return nil, fmt.Errorf("mark apar in repair: %w", err)
			}
		}
	}

	s.auditLogRepo.LogActivity(ctx, "repair", repair.ID, repair.Code,
		"review", from, toStatus, notes, reviewerID, reviewerName)

	s.notification.Dispatch(ctx, repair.RequestedBy,
		fmt.Sprintf("Repair %s %s", repair.Code, toStatus),
		notes, entity.NotifyCategoryRepair, "repair", repair.ID)

	return repair, nil
}

// CompleteRepair closes an approved request and returns the unit to
// active.
func (s *RepairService) CompleteRepair(ctx context.Context, operatorID, operatorName, id string) (*entity.RepairRequest, error) {
	repair, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !entity.CanTransitionRepair(repair.Status, entity.RepairStatusCompleted) {
		return nil, ErrInvalidTransition
	}

	from := repair.Status
	now := time.Now()
	repair.Status = entity.RepairStatusCompleted
	repair.CompletedAt = &now
	if err := s.repo.Update(ctx, repair); err != nil {
		return nil, err
	}

	if apar, err := s.aparRepo.FindByID(ctx, repair.AparID); err == nil {
		apar.Status = entity.AparStatusActive
		if err := s.aparRepo.Update(ctx, apar); err != nil {
			return nil, fmt.Errorf("restore apar status: %w", err)
		}
	}

	s.auditLogRepo.LogActivity(ctx, "repair", repair.ID, repair.Code,
		"complete", from, entity.RepairStatusCompleted, "", operatorID, operatorName)

	s.notification.Dispatch(ctx, repair.RequestedBy,
		fmt.Sprintf("Repair %s completed", repair.Code),
		"The unit is back in service.", entity.NotifyCategoryRepair, "repair", repair.ID)

	return repair, nil
}

func (s *RepairService) ListRepairs(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.RepairRequest, int64, error) {
	return s.repo.FindAll(ctx, page, pageSize, filters)
}

func (s *RepairService) GetRepair(ctx context.Context, id string) (*entity.RepairRequest, error) {
	return s.repo.FindByID(ctx, id)
}
