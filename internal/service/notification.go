package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"talentflow/internal/domain"
	"talentflow/internal/repository"
	"talentflow/pkg/logger"
)

const notificationListLimit = 50

type NotificationService interface {
	Notify(ctx context.Context, userID uuid.UUID, notifType, title, message string, metadata map[string]interface{}) error
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	log              logger.Logger
}

func NewNotificationService(notificationRepo repository.NotificationRepository, log logger.Logger) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		log:              log,
	}
}

func (s *notificationService) Notify(ctx context.Context, userID uuid.UUID, notifType, title, message string, metadata map[string]interface{}) error {
	notification := &domain.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      notifType,
		Title:     title,
		Message:   message,
		Metadata:  metadata,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.log.Error("Failed to send notification", "error", err, "user_id", userID, "type", notifType)
		return err
	}

	return nil
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	return s.notificationRepo.ListForUser(ctx, userID, notificationListLimit)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.notificationRepo.MarkRead(ctx, id, userID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}
