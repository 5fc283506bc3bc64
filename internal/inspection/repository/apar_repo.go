package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inspeksi/apar-backend/internal/inspection/entity"
	"gorm.io/gorm"
)

// AparRepository persists fire extinguisher units.
type AparRepository struct {
	db *gorm.DB
}

func NewAparRepository(db *gorm.DB) *AparRepository {
	return &AparRepository{db: db}
}

// FindAll lists units with pagination and optional filters.
func (r *AparRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Apar, int64, error) {
	var items []entity.Apar
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Apar{}).Where("deleted_at IS NULL")

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if locationType := filters["location_type"]; locationType != "" {
		query = query.Where("location_type = ?", locationType)
	}
	if aparType := filters["type"]; aparType != "" {
		query = query.Where("type = ?", aparType)
	}
	if search := filters["search"]; search != "" {
		like := "%" + search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ? OR location ILIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

func (r *AparRepository) FindByID(ctx context.Context, id string) (*entity.Apar, error) {
	var apar entity.Apar
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&apar).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &apar, nil
}

func (r *AparRepository) FindByQRCode(ctx context.Context, qrCode string) (*entity.Apar, error) {
	var apar entity.Apar
	err := r.db.WithContext(ctx).
		Where("qr_code = ? AND deleted_at IS NULL", qrCode).
		First(&apar).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &apar, nil
}

func (r *AparRepository) Create(ctx context.Context, apar *entity.Apar) error {
	return r.db.WithContext(ctx).Create(apar).Error
}

func (r *AparRepository) Update(ctx context.Context, apar *entity.Apar) error {
	return r.db.WithContext(ctx).Save(apar).Error
}

// SoftDelete marks a unit deleted without dropping its inspection history.
func (r *AparRepository) SoftDelete(ctx context.Context, id string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&entity.Apar{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkExpired flips active units whose expiry date has passed to expired.
// Returns the number of units updated.
func (r *AparRepository) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.Apar{}).
		Where("status = ? AND expiry_date IS NOT NULL AND expiry_date < ? AND deleted_at IS NULL",
			entity.AparStatusActive, now).
		Update("status", entity.AparStatusExpired)
	return result.RowsAffected, result.Error
}

// CountExpiringWithin counts active units expiring in the next n days.
func (r *AparRepository) CountExpiringWithin(ctx context.Context, now time.Time, days int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Apar{}).
		Where("status = ? AND expiry_date IS NOT NULL AND expiry_date BETWEEN ? AND ? AND deleted_at IS NULL",
			entity.AparStatusActive, now, now.AddDate(0, 0, days)).
		Count(&count).Error
	return count, err
}

// GenerateCode produces the next unit code APAR-{4 digit seq}.
func (r *AparRepository) GenerateCode(ctx context.Context) (string, error) {
	var maxCode string
	err := r.db.WithContext(ctx).
		Model(&entity.Apar{}).
		Select("COALESCE(MAX(code), '')").
		Where("code LIKE ?", "APAR-%").
		Scan(&maxCode).Error
	if err != nil {
		return "", err
	}

	var seq int
	if maxCode != "" {
		fmt.Sscanf(maxCode, "APAR-%04d", &seq)
	}
	seq++
	return fmt.Sprintf("APAR-%04d", seq), nil
}
