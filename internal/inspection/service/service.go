package service

import (
	"github.com/inspeksi/apar-backend/internal/config"
	"github.com/inspeksi/apar-backend/internal/inspection/repository"
	"github.com/inspeksi/apar-backend/internal/shared/notify"
	"github.com/inspeksi/apar-backend/internal/shared/sse"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services bundles every service for dependency wiring.
type Services struct {
	Auth         *AuthService
	User         *UserService
	Apar         *AparService
	Schedule     *ScheduleService
	Inspection   *InspectionService
	Repair       *RepairService
	Notification *NotificationService
	Report       *ReportService
	Storage      *StorageService
}

// Deps carries the external collaborators services depend on. Nil
// members degrade gracefully (no object storage, no webhook, no cache).
type Deps struct {
	DB      *gorm.DB
	Redis   *redis.Client
	MinIO   *minio.Client
	Hub     *sse.Hub
	Webhook *notify.Client
	Logger  *zap.Logger
}

func NewServices(repos *repository.Repositories, deps Deps, cfg *config.Config) *Services {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	storage := NewStorageService(deps.MinIO, cfg.MinIO.Bucket)
	notification := NewNotificationService(repos.Notification, deps.Hub, deps.Webhook, logger)

	inspection := NewInspectionService(
		repos.Inspection, repos.Apar, repos.Schedule, repos.User,
		storage, repos.AuditLog, notification,
	)

	repair := NewRepairService(repos.Repair, repos.Apar, repos.AuditLog, notification)

	return &Services{
		Auth:         NewAuthService(repos.User, deps.Redis, cfg),
		User:         NewUserService(repos.User, repos.AuditLog),
		Apar:         NewAparService(repos.Apar, repos.AuditLog),
		Schedule:     NewScheduleService(repos.Schedule, repos.Apar, repos.User),
		Inspection:   inspection,
		Repair:       repair,
		Notification: notification,
		Report:       NewReportService(deps.DB, deps.Redis, repos.Inspection, repos.Apar, repos.Schedule, repos.Repair),
		Storage:      storage,
	}
}
