package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inspeksi/apar-backend/internal/inspection/entity"
	"gorm.io/gorm"
)

// InspectionRepository persists recorded inspections.
type InspectionRepository struct {
	db *gorm.DB
}

func NewInspectionRepository(db *gorm.DB) *InspectionRepository {
	return &InspectionRepository{db: db}
}

func (r *InspectionRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Inspection, int64, error) {
	var items []entity.Inspection
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Inspection{})

	if aparID := filters["apar_id"]; aparID != "" {
		query = query.Where("apar_id = ?", aparID)
	}
	if userID := filters["user_id"]; userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if condition := filters["condition"]; condition != "" {
		query = query.Where("condition = ?", condition)
	}
	if from := filters["from"]; from != "" {
		query = query.Where("inspected_at >= ?", from)
	}
	if to := filters["to"]; to != "" {
		query = query.Where("inspected_at <= ?", to)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Apar").
		Preload("User").
		Order("inspected_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

func (r *InspectionRepository) FindByID(ctx context.Context, id string) (*entity.Inspection, error) {
	var inspection entity.Inspection
	err := r.db.WithContext(ctx).
		Preload("Apar").
		Preload("User").
		Where("id = ?", id).
		First(&inspection).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inspection, nil
}

func (r *InspectionRepository) Create(ctx context.Context, inspection *entity.Inspection) error {
	return r.db.WithContext(ctx).Create(inspection).Error
}

func (r *InspectionRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&entity.Inspection{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountSince counts inspections recorded at or after the given instant.
func (r *InspectionRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Inspection{}).
		Where("inspected_at >= ?", since).
		Count(&count).Error
	return count, err
}

// GenerateCode produces the next inspection code INS-{year}-{4 digit seq}.
func (r *InspectionRepository) GenerateCode(ctx context.Context) (string, error) {
	year := time.Now().Format("2006")
	prefix := fmt.Sprintf("INS-%s-", year)

	var maxCode string
	err := r.db.WithContext(ctx).
		Model(&entity.Inspection{}).
		Select("COALESCE(MAX(code), '')").
		Where("code LIKE ?", prefix+"%").
		Scan(&maxCode).Error
	if err != nil {
		return "", err
	}

	var seq int
	if maxCode != "" {
		fmt.Sscanf(maxCode, "INS-"+year+"-%04d", &seq)
	}
	seq++
	return fmt.Sprintf("INS-%s-%04d", year, seq), nil
}
