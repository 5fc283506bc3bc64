package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inspeksi/apar-backend/internal/inspection/entity"
	"gorm.io/gorm"
)

// RepairRepository persists repair requests.
type RepairRepository struct {
	db *gorm.DB
}

func NewRepairRepository(db *gorm.DB) *RepairRepository {
	return &RepairRepository{db: db}
}

func (r *RepairRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.RepairRequest, int64, error) {
	var items []entity.RepairRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.RepairRequest{})

	if aparID := filters["apar_id"]; aparID != "" {
		query = query.Where("apar_id = ?", aparID)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if severity := filters["severity"]; severity != "" {
		query = query.Where("severity = ?", severity)
	}
	if requestedBy := filters["requested_by"]; requestedBy != "" {
		query = query.Where("requested_by = ?", requestedBy)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Apar").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

func (r *RepairRepository) FindByID(ctx context.Context, id string) (*entity.RepairRequest, error) {
	var repair entity.RepairRequest
	err := r.db.WithContext(ctx).
		Preload("Apar").
		Where("id = ?", id).
		First(&repair).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &repair, nil
}

func (r *RepairRepository) Create(ctx context.Context, repair *entity.RepairRequest) error {
	return r.db.WithContext(ctx).Create(repair).Error
}

func (r *RepairRepository) Update(ctx context.Context, repair *entity.RepairRequest) error {
	return r.db.WithContext(ctx).Save(repair).Error
}

func (r *RepairRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.RepairRequest{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// GenerateCode produces the next repair code RPR-{year}-{4 digit seq}.
func (r *RepairRepository) GenerateCode(ctx context.Context) (string, error) {
	year := time.Now().Format("2006")
	prefix := fmt.Sprintf("RPR-%s-", year)

	var maxCode string
	err := r.db.WithContext(ctx).
		Model(&entity.RepairRequest{}).
		Select("COALESCE(MAX(code), '')").
		Where("code LIKE ?", prefix+"%").
		Scan(&maxCode).Error
	if err != nil {
		return "", err
	}

	var seq int
	if maxCode != "" {
		fmt.Sscanf(maxCode, "RPR-"+year+"-%04d", &seq)
	}
	seq++
	return fmt.Sprintf("RPR-%s-%04d", year, seq), nil
}
