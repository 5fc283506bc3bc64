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

var ErrInvalidLocationType = errors.New("location_type must be fixed or mobile")

// AparService manages fire extinguisher units.
type AparService struct {
	repo         *repository.AparRepository
	auditLogRepo *repository.AuditLogRepository
}

func NewAparService(repo *repository.AparRepository, auditLogRepo *repository.AuditLogRepository) *AparService {
	return &AparService{repo: repo, auditLogRepo: auditLogRepo}
}

type CreateAparRequest struct {
	Name            string     `json:"name" binding:"required"`
	QRCode          string     `json:"qr_code" binding:"required"`
	Location        string     `json:"location"`
	LocationType    string     `json:"location_type" binding:"required"`
	Latitude        *float64   `json:"latitude"`
	Longitude       *float64   `json:"longitude"`
	ValidRadius     *float64   `json:"valid_radius"`
	Type            string     `json:"type"`
	CapacityKg      float64    `json:"capacity_kg"`
	ManufactureDate *time.Time `json:"manufacture_date"`
	ExpiryDate      *time.Time `json:"expiry_date"`
}

func (s *AparService) CreateApar(ctx context.Context, operatorID string, req *CreateAparRequest) (*entity.Apar, error) {
	if req.LocationType != entity.AparLocationFixed && req.LocationType != entity.AparLocationMobile {
		return nil, ErrInvalidLocationType
	}

	code, err := s.repo.GenerateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}

	apar := &entity.Apar{
		ID:              uuid.New().String()[:32],
		Code:            code,
		QRCode:          req.QRCode,
		Name:            req.Name,
		Location:        req.Location,
		LocationType:    req.LocationType,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		ValidRadius:     50,
		Type:            req.Type,
		CapacityKg:      req.CapacityKg,
		ManufactureDate: req.ManufactureDate,
		ExpiryDate:      req.ExpiryDate,
		Status:          entity.AparStatusActive,
		CreatedBy:       operatorID,
	}
	if req.ValidRadius != nil && *req.ValidRadius > 0 {
		apar.ValidRadius = *req.ValidRadius
	}

	if err := s.repo.Create(ctx, apar); err != nil {
		return nil, fmt.Errorf("create apar: %w", err)
	}

	s.auditLogRepo.LogActivity(ctx, "apar", apar.ID, apar.Code,
		"create", "", entity.AparStatusActive, "Unit registered: "+apar.Name, operatorID, "")

	return apar, nil
}

type UpdateAparRequest struct {
	Name            *string    `json:"name"`
	Location        *string    `json:"location"`
	LocationType    *string    `json:"location_type"`
	Latitude        *float64   `json:"latitude"`
	Longitude       *float64   `json:"longitude"`
	ValidRadius     *float64   `json:"valid_radius"`
	Type            *string    `json:"type"`
	CapacityKg      *float64   `json:"capacity_kg"`
	ManufactureDate *time.Time `json:"manufacture_date"`
	ExpiryDate      *time.Time `json:"expiry_date"`
	Status          *string    `json:"status"`
}

func (s *AparService) UpdateApar(ctx context.Context, operatorID, id string, req *UpdateAparRequest) (*entity.Apar, error) {
	apar, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	fromStatus := apar.Status

	if req.Name != nil {
		apar.Name = *req.Name
	}
	if req.Location != nil {
		apar.Location = *req.Location
	}
	if req.LocationType != nil {
		if *req.LocationType != entity.AparLocationFixed && *req.LocationType != entity.AparLocationMobile {
			return nil, ErrInvalidLocationType
		}
		apar.LocationType = *req.LocationType
	}
	if req.Latitude != nil {
		apar.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		apar.Longitude = req.Longitude
	}
	if req.ValidRadius != nil && *req.ValidRadius > 0 {
		apar.ValidRadius = *req.ValidRadius
	}
	if req.Type != nil {
		apar.Type = *req.Type
	}
	if req.CapacityKg != nil {
		apar.CapacityKg = *req.CapacityKg
	}
	if req.ManufactureDate != nil {
		apar.ManufactureDate = req.ManufactureDate
	}
	if req.ExpiryDate != nil {
		apar.ExpiryDate = req.ExpiryDate
	}
	if req.Status != nil {
		apar.Status = *req.Status
	}

	if err := s.repo.Update(ctx, apar); err != nil {
		return nil, fmt.Errorf("update apar: %w", err)
	}

	s.auditLogRepo.LogActivity(ctx, "apar", apar.ID, apar.Code,
		"update", fromStatus, apar.Status, "Unit updated: "+apar.Name, operatorID, "")

	return apar, nil
}

func (s *AparService) ListApars(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Apar, int64, error) {
	return s.repo.FindAll(ctx, page, pageSize, filters)
}

func (s *AparService) GetApar(ctx context.Context, id string) (*entity.Apar, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *AparService) GetAparByQRCode(ctx context.Context, qrCode string) (*entity.Apar, error) {
	return s.repo.FindByQRCode(ctx, qrCode)
}

func (s *AparService) DeleteApar(ctx context.Context, operatorID, id string) error {
	apar, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.auditLogRepo.LogActivity(ctx, "apar", apar.ID, apar.Code,
		"delete", apar.Status, "", "Unit removed: "+apar.Name, operatorID, "")
	return nil
}

// RefreshExpiryStatuses marks active units past their expiry date as
// expired. Invoked from the admin endpoint and at startup.
func (s *AparService) RefreshExpiryStatuses(ctx context.Context, operatorID string) (int64, error) {
	updated, err := s.repo.MarkExpired(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("mark expired: %w", err)
	}
	if updated > 0 {
		s.auditLogRepo.LogActivity(ctx, "apar", "batch", "",
			"expire_sweep", entity.AparStatusActive, entity.AparStatusExpired,
			fmt.Sprintf("%d unit(s) marked expired", updated), operatorID, "")
	}
	return updated, nil
}
