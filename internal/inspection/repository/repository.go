package repository

import (
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

// Repositories bundles every repository for dependency wiring.
type Repositories struct {
	User         *UserRepository
	Apar         *AparRepository
	Schedule     *ScheduleRepository
	Inspection   *InspectionRepository
	Repair       *RepairRepository
	Notification *NotificationRepository
	AuditLog     *AuditLogRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Apar:         NewAparRepository(db),
		Schedule:     NewScheduleRepository(db),
		Inspection:   NewInspectionRepository(db),
		Repair:       NewRepairRepository(db),
		Notification: NewNotificationRepository(db),
		AuditLog:     NewAuditLogRepository(db),
	}
}
