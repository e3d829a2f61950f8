package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"talentflow/internal/config"
	"talentflow/internal/domain"
	"talentflow/internal/repository"
	"talentflow/pkg/changefeed"
	apperrors "talentflow/pkg/errors"
	"talentflow/pkg/logger"
)

type ChatService interface {
	OpenThread(ctx context.Context, recruiter *domain.User, candidateID uuid.UUID) (*domain.Thread, error)
	GetThreads(ctx context.Context, user *domain.User) ([]*domain.Thread, error)
	GetThread(ctx context.Context, user *domain.User, threadID uuid.UUID) (*domain.Thread, error)
	GetMessages(ctx context.Context, user *domain.User, threadID uuid.UUID) ([]*domain.Message, error)
	SendMessage(ctx context.Context, sender *domain.User, threadID uuid.UUID, content string) (*domain.Message, error)
	ReportMessage(ctx context.Context, reporter *domain.User, messageID uuid.UUID, reason string) (*domain.MessageReport, error)
	DeactivateThread(ctx context.Context, actor *domain.User, threadID uuid.UUID) error
}

type chatService struct {
	threadRepo      repository.ThreadRepository
	messageRepo     repository.MessageRepository
	applicationRepo repository.ApplicationRepository
	feed            changefeed.Publisher
	notifications   NotificationService
	audit           AuditService
	cfg             config.ChatConfig
	log             logger.Logger
}

func NewChatService(
	threadRepo repository.ThreadRepository,
	messageRepo repository.MessageRepository,
	applicationRepo repository.ApplicationRepository,
	feed changefeed.Publisher,
	notifications NotificationService,
	audit AuditService,
	cfg config.ChatConfig,
	log logger.Logger,
) ChatService {
	return &chatService{
		threadRepo:      threadRepo,
		messageRepo:     messageRepo,
		applicationRepo: applicationRepo,
		feed:            feed,
		notifications:   notifications,
		audit:           audit,
		cfg:             cfg,
		log:             log,
	}
}

// OpenThread открывает (или возвращает существующий) тред рекрутера с кандидатом.
// Рекрутер может написать кандидату только после того, как кандидат прошёл
// хотя бы в стадию shortlisted по одной из вакансий.
func (s *chatService) OpenThread(ctx context.Context, recruiter *domain.User, candidateID uuid.UUID) (*domain.Thread, error) {
	if recruiter.Role != domain.RoleRecruiter {
		return nil, apperrors.ErrForbidden
	}

	allowed, err := s.applicationRepo.CandidateInAdvancedStage(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.ErrChatRestricted
	}

	thread, err := s.threadRepo.GetOrCreate(ctx, recruiter.ID, candidateID)
	if err != nil {
		return nil, err
	}

	s.audit.RecordEvent(ctx, &recruiter.ID, recruiter.Role, &thread.ID, domain.EventTypeThreadCreated, map[string]interface{}{
		"candidate_id": candidateID.String(),
	})

	if err := s.notifications.Notify(ctx, candidateID, domain.NotificationTypeThreadOpened,
		"New conversation", "A recruiter started a conversation with you",
		map[string]interface{}{"thread_id": thread.ID.String()},
	); err != nil {
		s.log.Warn("Failed to notify candidate about new thread", "error", err)
	}

	return thread, nil
}

func (s *chatService) GetThreads(ctx context.Context, user *domain.User) ([]*domain.Thread, error) {
	return s.threadRepo.ListForUser(ctx, user.ID, user.Role)
}

func (s *chatService) GetThread(ctx context.Context, user *domain.User, threadID uuid.UUID) (*domain.Thread, error) {
	thread, err := s.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !s.isParticipant(user, thread) {
		return nil, apperrors.ErrForbidden
	}
	return thread, nil
}

func (s *chatService) GetMessages(ctx context.Context, user *domain.User, threadID uuid.UUID) ([]*domain.Message, error) {
	thread, err := s.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !s.isParticipant(user, thread) {
		return nil, apperrors.ErrForbidden
	}

	return s.messageRepo.ListByThread(ctx, threadID, s.cfg.HistoryLimit)
}

func (s *chatService) SendMessage(ctx context.Context, sender *domain.User, threadID uuid.UUID, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: message content is empty", apperrors.ErrBadRequest)
	}
	if len(content) > s.cfg.MaxContentChars {
		return nil, fmt.Errorf("%w: message content is too long", apperrors.ErrBadRequest)
	}

	thread, err := s.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !s.isParticipant(sender, thread) {
		return nil, apperrors.ErrForbidden
	}
	if !thread.IsActive {
		return nil, apperrors.ErrThreadInactive
	}

	message := &domain.Message{
		ID:        uuid.New(),
		ThreadID:  threadID,
		SenderID:  sender.ID,
		Content:   content,
		CreatedAt: time.Now(),
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	if err := s.threadRepo.TouchLastMessage(ctx, threadID, message.CreatedAt); err != nil {
		s.log.Warn("Failed to bump thread activity", "error", err, "thread_id", threadID)
	}

	// Публикуем вставку в ленту изменений: подписчики треда получат сообщение
	err = s.feed.Publish(ctx, "chat_messages", "thread_id", threadID.String(), changefeed.EventInsert, message)
	if err != nil {
		s.log.Error("Failed to publish message event", "error", err, "thread_id", threadID)
	}

	recipient := thread.CandidateID
	if sender.ID == thread.CandidateID {
		recipient = thread.RecruiterID
	}
	if err := s.notifications.Notify(ctx, recipient, domain.NotificationTypeNewMessage,
		"New message", "You have a new message from "+sender.FullName,
		map[string]interface{}{"thread_id": threadID.String(), "message_id": message.ID.String()},
	); err != nil {
		s.log.Warn("Failed to notify recipient", "error", err)
	}

	s.audit.RecordEvent(ctx, &sender.ID, sender.Role, &threadID, domain.EventTypeMessageSent, map[string]interface{}{
		"message_id": message.ID.String(),
	})

	return message, nil
}

func (s *chatService) ReportMessage(ctx context.Context, reporter *domain.User, messageID uuid.UUID, reason string) (*domain.MessageReport, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: report reason is required", apperrors.ErrBadRequest)
	}

	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	thread, err := s.threadRepo.GetByID(ctx, message.ThreadID)
	if err != nil {
		return nil, err
	}
	if !s.isParticipant(reporter, thread) {
		return nil, apperrors.ErrForbidden
	}
	if message.SenderID == reporter.ID {
		return nil, fmt.Errorf("%w: cannot report your own message", apperrors.ErrBadRequest)
	}

	report := &domain.MessageReport{
		ID:         uuid.New(),
		MessageID:  messageID,
		ReporterID: reporter.ID,
		Reason:     reason,
		Status:     domain.ReportStatusPending,
		CreatedAt:  time.Now(),
	}

	if err := s.messageRepo.CreateReport(ctx, report); err != nil {
		return nil, err
	}

	s.audit.RecordEvent(ctx, &reporter.ID, reporter.Role, &thread.ID, domain.EventTypeMessageReported, map[string]interface{}{
		"message_id": messageID.String(),
		"report_id":  report.ID.String(),
	})

	return report, nil
}

func (s *chatService) DeactivateThread(ctx context.Context, actor *domain.User, threadID uuid.UUID) error {
	thread, err := s.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		return err
	}
	if actor.Role != domain.RoleAdmin && !s.isParticipant(actor, thread) {
		return apperrors.ErrForbidden
	}

	if err := s.threadRepo.Deactivate(ctx, threadID); err != nil {
		return err
	}

	s.audit.RecordEvent(ctx, &actor.ID, actor.Role, &threadID, domain.EventTypeThreadDeactivated, nil)
	return nil
}

func (s *chatService) isParticipant(user *domain.User, thread *domain.Thread) bool {
	return user.ID == thread.CandidateID || user.ID == thread.RecruiterID
}
