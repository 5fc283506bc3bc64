package repository

import (
	"context"
	"errors"
	"time"

	"github.com/inspeksi/apar-backend/internal/inspection/entity"
	"gorm.io/gorm"
)

// ScheduleRepository persists inspection schedule windows.
type ScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.InspectionSchedule, int64, error) {
	var items []entity.InspectionSchedule
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.InspectionSchedule{})

	if aparID := filters["apar_id"]; aparID != "" {
		query = query.Where("apar_id = ?", aparID)
	}
	if userID := filters["assigned_user_id"]; userID != "" {
		query = query.Where("assigned_user_id = ?", userID)
	}
	if date := filters["date"]; date != "" {
		query = query.Where("scheduled_date = ?", date)
	}
	if frequency := filters["frequency"]; frequency != "" {
		query = query.Where("frequency = ?", frequency)
	}
	if active := filters["is_active"]; active != "" {
		query = query.Where("is_active = ?", active == "true")
	}
	if completed := filters["is_completed"]; completed != "" {
		query = query.Where("is_completed = ?", completed == "true")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Apar").
		Preload("AssignedUser").
		Order("scheduled_date DESC, start_time ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*entity.InspectionSchedule, error) {
	var schedule entity.InspectionSchedule
	err := r.db.WithContext(ctx).
		Preload("Apar").
		Where("id = ?", id).
		First(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &schedule, nil
}

// FindByApar returns every schedule of one unit, active or not. This is
// the snapshot the eligibility checker evaluates against.
func (r *ScheduleRepository) FindByApar(ctx context.Context, aparID string) ([]entity.InspectionSchedule, error) {
	var items []entity.InspectionSchedule
	err := r.db.WithContext(ctx).
		Where("apar_id = ?", aparID).
		Order("scheduled_date ASC, start_time ASC").
		Find(&items).Error
	return items, err
}

// FindForUserOnDate lists the active, uncompleted schedules a teknisi
// should work on a given date (assigned to them or open).
func (r *ScheduleRepository) FindForUserOnDate(ctx context.Context, userID string, date time.Time) ([]entity.InspectionSchedule, error) {
	var items []entity.InspectionSchedule
	err := r.db.WithContext(ctx).
		Preload("Apar").
		Where("scheduled_date = ? AND is_active = true AND is_completed = false", date.Format("2006-01-02")).
		Where("assigned_user_id IS NULL OR assigned_user_id = ?", userID).
		Order("start_time ASC").
		Find(&items).Error
	return items, err
}

// CountOverdue counts active, uncompleted schedules whose date has passed.
func (r *ScheduleRepository) CountOverdue(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.InspectionSchedule{}).
		Where("is_active = true AND is_completed = false AND scheduled_date < ?", now.Format("2006-01-02")).
		Count(&count).Error
	return count, err
}

func (r *ScheduleRepository) Create(ctx context.Context, schedule *entity.InspectionSchedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

func (r *ScheduleRepository) Update(ctx context.Context, schedule *entity.InspectionSchedule) error {
	return r.db.WithContext(ctx).Save(schedule).Error
}

func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&entity.InspectionSchedule{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkCompleted flips a schedule to completed exactly once. RowsAffected
// zero means it was already completed by a concurrent submission.
func (r *ScheduleRepository) MarkCompleted(ctx context.Context, id string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entity.InspectionSchedule{}).
		Where("id = ? AND is_completed = false", id).
		Updates(map[string]interface{}{
			"is_completed": true,
			"completed_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
