package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"talentflow/internal/domain"
	"talentflow/internal/repository"
	"talentflow/pkg/logger"
)

type AuditService interface {
	RecordEvent(ctx context.Context, actorID *uuid.UUID, actorRole string, threadID *uuid.UUID, eventType string, payload map[string]interface{})
}

type auditService struct {
	auditRepo repository.AuditRepository
	log       logger.Logger
}

func NewAuditService(auditRepo repository.AuditRepository, log logger.Logger) AuditService {
	return &auditService{auditRepo: auditRepo, log: log}
}

// RecordEvent пишет событие в журнал. Ошибка записи не прерывает основную операцию.
func (s *auditService) RecordEvent(ctx context.Context, actorID *uuid.UUID, actorRole string, threadID *uuid.UUID, eventType string, payload map[string]interface{}) {
	entry := &domain.AuditLog{
		EventTime:   time.Now(),
		ActorUserID: actorID,
		ActorRole:   actorRole,
		ThreadID:    threadID,
		EventType:   eventType,
		Payload:     payload,
	}

	if err := s.auditRepo.Record(ctx, entry); err != nil {
		s.log.Warn("Failed to record audit event", "error", err, "event_type", eventType)
	}
}
