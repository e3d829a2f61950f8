package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"talentflow/internal/domain"
	apperrors "talentflow/pkg/errors"
	"talentflow/pkg/logger"
)

type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	ListByThread(ctx context.Context, threadID uuid.UUID, limit int) ([]*domain.Message, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	CreateReport(ctx context.Context, report *domain.MessageReport) error
}

type messageRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewMessageRepository(db *pgxpool.Pool, log logger.Logger) MessageRepository {
	return &messageRepository{db: db, log: log}
}

func (r *messageRepository) Create(ctx context.Context, message *domain.Message) error {
	query := `
		INSERT INTO chat_messages (id, thread_id, sender_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query,
		message.ID, message.ThreadID, message.SenderID, message.Content, message.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create message", "error", err, "thread_id", message.ThreadID)
		return err
	}

	return nil
}

func (r *messageRepository) ListByThread(ctx context.Context, threadID uuid.UUID, limit int) ([]*domain.Message, error) {
	// Берём последние limit сообщений, но отдаём их в хронологическом порядке
	query := `
		SELECT id, thread_id, sender_id, content, created_at
		FROM (
			SELECT id, thread_id, sender_id, content, created_at
			FROM chat_messages
			WHERE thread_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query, threadID, limit)
	if err != nil {
		r.log.Error("Failed to list messages", "error", err, "thread_id", threadID)
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		message := &domain.Message{}
		err := rows.Scan(
			&message.ID, &message.ThreadID, &message.SenderID,
			&message.Content, &message.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan message", "error", err)
			return nil, err
		}
		messages = append(messages, message)
	}

	return messages, nil
}

func (r *messageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	query := `
		SELECT id, thread_id, sender_id, content, created_at
		FROM chat_messages
		WHERE id = $1
	`

	message := &domain.Message{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&message.ID, &message.ThreadID, &message.SenderID,
		&message.Content, &message.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMessageNotFound
		}
		r.log.Error("Failed to get message", "error", err)
		return nil, err
	}

	return message, nil
}

func (r *messageRepository) CreateReport(ctx context.Context, report *domain.MessageReport) error {
	query := `
		INSERT INTO chat_reports (id, message_id, reporter_id, reason, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		report.ID, report.MessageID, report.ReporterID, report.Reason, report.Status, report.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create report", "error", err, "message_id", report.MessageID)
		return err
	}

	return nil
}
