package service

import (
	"context"
	"time"

	"github.com/inspeksi/apar-backend/internal/inspection/entity"
	"github.com/inspeksi/apar-backend/internal/inspection/repository"
	"github.com/inspeksi/apar-backend/internal/shared/notify"
	"github.com/inspeksi/apar-backend/internal/shared/sse"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationService persists in-app notifications and fans them out
// over SSE and the chat webhook.
type NotificationService struct {
	repo    *repository.NotificationRepository
	hub     *sse.Hub
	webhook *notify.Client
	logger  *zap.Logger
}

func NewNotificationService(repo *repository.NotificationRepository, hub *sse.Hub, webhook *notify.Client, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		repo:    repo,
		hub:     hub,
		webhook: webhook,
		logger:  logger,
	}
}

// Dispatch stores a notification and pushes it to SSE clients and the
// webhook. Empty userID broadcasts. Push failures are logged, never
// returned: the triggering operation has already succeeded.
func (s *NotificationService) Dispatch(ctx context.Context, userID, title, body, category, entityType, entityID string) {
	n := &entity.Notification{
		ID:         uuid.New().String()[:32],
		UserID:     userID,
		Title:      title,
		Body:       body,
		Category:   category,
		EntityType: entityType,
		EntityID:   entityID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("Failed to store notification", zap.Error(err), zap.String("title", title))
		return
	}

	if s.hub != nil {
		s.hub.PublishNotification(userID, n.ID, category, title)
	}

	if s.webhook != nil {
		// Detached context: webhook delivery must outlive the request.
		go func() {
			wctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.webhook.Send(wctx, notify.Message{
				Title: title,
				Text:  body,
				Fields: map[string]string{
					"category": category,
				},
			}); err != nil {
				s.logger.Warn("Webhook notification failed", zap.Error(err), zap.String("title", title))
			}
		}()
	}
}

// ListForUser returns a user's notifications plus broadcasts.
func (s *NotificationService) ListForUser(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) ([]entity.Notification, int64, error) {
	return s.repo.FindForUser(ctx, userID, page, pageSize, unreadOnly)
}

func (s *NotificationService) CountUnread(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}
