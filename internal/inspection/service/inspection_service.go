package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/inspeksi/apar-backend/internal/inspection/eligibility"
	"github.com/inspeksi/apar-backend/internal/inspection/entity"
	"github.com/inspeksi/apar-backend/internal/inspection/repository"
	"github.com/google/uuid"
)

var (
	ErrInvalidCondition  = errors.New("invalid condition")
	ErrMissingAttachment = errors.New("photo and selfie are required")
)

// InspectionService records inspections. The accept/reject decision is
// delegated to the eligibility package; this service owns the
// side effects around an accepted submission.
type InspectionService struct {
	repo         *repository.InspectionRepository
	aparRepo     *repository.AparRepository
	scheduleRepo *repository.ScheduleRepository
	userRepo     *repository.UserRepository
	storage      *StorageService
	auditLogRepo *repository.AuditLogRepository
	notification *NotificationService

	usable eligibility.UsablePredicate
}

func NewInspectionService(
	repo *repository.InspectionRepository,
	aparRepo *repository.AparRepository,
	scheduleRepo *repository.ScheduleRepository,
	userRepo *repository.UserRepository,
	storage *StorageService,
	auditLogRepo *repository.AuditLogRepository,
	notification *NotificationService,
) *InspectionService {
	return &InspectionService{
		repo:         repo,
		aparRepo:     aparRepo,
		scheduleRepo: scheduleRepo,
		userRepo:     userRepo,
		storage:      storage,
		auditLogRepo: auditLogRepo,
		notification: notification,
	}
}

// SetUsablePredicate overrides the default schedule assignment policy.
func (s *InspectionService) SetUsablePredicate(p eligibility.UsablePredicate) {
	s.usable = p
}

// SubmitInspectionRequest is the parsed multipart form of one submission.
type SubmitInspectionRequest struct {
	AparID     string
	QRCode     string
	Condition  string
	PressureOK bool
	HoseOK     bool
	PinOK      bool
	SealOK     bool
	Notes      string
	Latitude   *float64
	Longitude  *float64
}

// Attachment is an uploaded file handed through from the handler.
type Attachment struct {
	Reader      io.Reader
	FileName    string
	Size        int64
	ContentType string
}

// SubmitResult carries either the created inspection or the rejection.
type SubmitResult struct {
	Decision   eligibility.Decision
	Inspection *entity.Inspection
}

// Submit resolves the submission, runs the eligibility check against a
// snapshot of the unit's schedules, and on acceptance stores the
// attachments and creates the inspection row.
func (s *InspectionService) Submit(ctx context.Context, userID string, req *SubmitInspectionRequest, photo, selfie *Attachment) (*SubmitResult, error) {
	if !entity.ValidCondition(req.Condition) {
		return nil, ErrInvalidCondition
	}
	if photo == nil || selfie == nil {
		return nil, ErrMissingAttachment
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("submitting user: %w", err)
	}

	apar, err := s.aparRepo.FindByID(ctx, req.AparID)
	if err != nil {
		return nil, fmt.Errorf("apar by id: %w", err)
	}
	aparByQR, err := s.aparRepo.FindByQRCode(ctx, req.QRCode)
	if err != nil {
		return nil, fmt.Errorf("apar by qr code: %w", err)
	}

	schedules, err := s.scheduleRepo.FindByApar(ctx, apar.ID)
	if err != nil {
		return nil, fmt.Errorf("snapshot schedules: %w", err)
	}

	var location *eligibility.Location
	if req.Latitude != nil && req.Longitude != nil {
		location = &eligibility.Location{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}

	now := time.Now()
	decision, err := eligibility.Evaluate(eligibility.Input{
		Submission: eligibility.Submission{
			AparID:   apar.ID,
			QRAparID: aparByQR.ID,
			Location: location,
		},
		Apar:      apar,
		Schedules: schedules,
		User:      user,
		Now:       now,
		Usable:    s.usable,
	})
	if err != nil {
		return nil, fmt.Errorf("evaluate eligibility: %w", err)
	}

	if !decision.Accepted {
		return &SubmitResult{Decision: decision}, nil
	}

	// Claim the matched window before writing anything. For a teknisi a
	// lost claim means another submission already consumed the window,
	// which is the duplicate-submission case.
	if decision.ScheduleID != nil {
		claimed, err := s.scheduleRepo.MarkCompleted(ctx, *decision.ScheduleID, now)
		if err != nil {
			return nil, fmt.Errorf("claim schedule: %w", err)
		}
		if !claimed && !entity.IsOverrideRole(user.Role) {
			return &SubmitResult{
				Decision: eligibility.Decision{Reason: eligibility.ReasonOutsideScheduleWindow},
			}, nil
		}
	}

	photoURL, err := s.storage.Upload(ctx, "photos", photo.FileName, photo.Reader, photo.Size, photo.ContentType)
	if err != nil {
		return nil, err
	}
	selfieURL, err := s.storage.Upload(ctx, "selfies", selfie.FileName, selfie.Reader, selfie.Size, selfie.ContentType)
	if err != nil {
		return nil, err
	}

	code, err := s.repo.GenerateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}

	inspection := &entity.Inspection{
		ID:          uuid.New().String()[:32],
		Code:        code,
		AparID:      apar.ID,
		ScheduleID:  decision.ScheduleID,
		UserID:      user.ID,
		Condition:   req.Condition,
		PressureOK:  req.PressureOK,
		HoseOK:      req.HoseOK,
		PinOK:       req.PinOK,
		SealOK:      req.SealOK,
		Notes:       req.Notes,
		PhotoURL:    photoURL,
		SelfieURL:   selfieURL,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		InspectedAt: now,
	}

	if err := s.repo.Create(ctx, inspection); err != nil {
		return nil, fmt.Errorf("create inspection: %w", err)
	}

	s.auditLogRepo.LogActivity(ctx, "inspection", inspection.ID, inspection.Code,
		"inspect", "", req.Condition,
		fmt.Sprintf("Inspection recorded for %s (%s)", apar.Code, apar.Name), user.ID, user.Name)

	if req.Condition != entity.ConditionGood {
		s.notification.Dispatch(ctx, "",
			fmt.Sprintf("Unit %s reported %s", apar.Code, req.Condition),
			fmt.Sprintf("Inspection %s by %s: %s", inspection.Code, user.Name, req.Notes),
			entity.NotifyCategoryInspection, "inspection", inspection.ID)
	}

	return &SubmitResult{Decision: decision, Inspection: inspection}, nil
}

func (s *InspectionService) ListInspections(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Inspection, int64, error) {
	return s.repo.FindAll(ctx, page, pageSize, filters)
}

func (s *InspectionService) GetInspection(ctx context.Context, id string) (*entity.Inspection, error) {
	return s.repo.FindByID(ctx, id)
}

// DeleteInspection is the administrative delete; inspections are
// otherwise immutable.
func (s *InspectionService) DeleteInspection(ctx context.Context, operatorID, id string) error {
	inspection, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.auditLogRepo.LogActivity(ctx, "inspection", inspection.ID, inspection.Code,
		"delete", "", "", "Inspection removed by administrator", operatorID, "")
	return nil
}
