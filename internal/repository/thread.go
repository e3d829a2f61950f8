package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"talentflow/internal/domain"
	apperrors "talentflow/pkg/errors"
	"talentflow/pkg/logger"
)

type ThreadRepository interface {
	GetOrCreate(ctx context.Context, recruiterID, candidateID uuid.UUID) (*domain.Thread, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Thread, error)
	ListForUser(ctx context.Context, userID uuid.UUID, role string) ([]*domain.Thread, error)
	TouchLastMessage(ctx context.Context, id uuid.UUID, at time.Time) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type threadRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewThreadRepository(db *pgxpool.Pool, log logger.Logger) ThreadRepository {
	return &threadRepository{db: db, log: log}
}

func (r *threadRepository) GetOrCreate(ctx context.Context, recruiterID, candidateID uuid.UUID) (*domain.Thread, error) {
	// Сначала ищем существующий тред пары рекрутер-кандидат
	query := `
		SELECT id, candidate_id, recruiter_id, last_message_at, is_active, created_at
		FROM chat_threads
		WHERE recruiter_id = $1 AND candidate_id = $2
	`

	thread := &domain.Thread{}
	err := r.db.QueryRow(ctx, query, recruiterID, candidateID).Scan(
		&thread.ID, &thread.CandidateID, &thread.RecruiterID,
		&thread.LastMessageAt, &thread.IsActive, &thread.CreatedAt,
	)
	if err == nil {
		return thread, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		r.log.Error("Failed to look up thread", "error", err)
		return nil, err
	}

	insert := `
		INSERT INTO chat_threads (id, candidate_id, recruiter_id, last_message_at, is_active, created_at)
		VALUES ($1, $2, $3, $4, TRUE, $4)
		RETURNING id, candidate_id, recruiter_id, last_message_at, is_active, created_at
	`

	now := time.Now()
	err = r.db.QueryRow(ctx, insert, uuid.New(), candidateID, recruiterID, now).Scan(
		&thread.ID, &thread.CandidateID, &thread.RecruiterID,
		&thread.LastMessageAt, &thread.IsActive, &thread.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create thread", "error", err)
		return nil, err
	}

	return thread, nil
}

func (r *threadRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Thread, error) {
	query := `
		SELECT id, candidate_id, recruiter_id, last_message_at, is_active, created_at
		FROM chat_threads
		WHERE id = $1
	`

	thread := &domain.Thread{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&thread.ID, &thread.CandidateID, &thread.RecruiterID,
		&thread.LastMessageAt, &thread.IsActive, &thread.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrThreadNotFound
		}
		r.log.Error("Failed to get thread", "error", err)
		return nil, err
	}

	return thread, nil
}

func (r *threadRepository) ListForUser(ctx context.Context, userID uuid.UUID, role string) ([]*domain.Thread, error) {
	// Тред виден пользователю только если он один из двух участников
	field := "candidate_id"
	if role == domain.RoleRecruiter {
		field = "recruiter_id"
	}

	query := `
		SELECT id, candidate_id, recruiter_id, last_message_at, is_active, created_at
		FROM chat_threads
		WHERE ` + field + ` = $1 AND is_active = TRUE
		ORDER BY last_message_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to list threads", "error", err)
		return nil, err
	}
	defer rows.Close()

	var threads []*domain.Thread
	for rows.Next() {
		thread := &domain.Thread{}
		err := rows.Scan(
			&thread.ID, &thread.CandidateID, &thread.RecruiterID,
			&thread.LastMessageAt, &thread.IsActive, &thread.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan thread", "error", err)
			return nil, err
		}
		threads = append(threads, thread)
	}

	return threads, nil
}

func (r *threadRepository) TouchLastMessage(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE chat_threads
		SET last_message_at = $2
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query, id, at)
	if err != nil {
		r.log.Error("Failed to touch thread", "error", err, "thread_id", id)
		return err
	}

	return nil
}

func (r *threadRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE chat_threads
		SET is_active = FALSE
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to deactivate thread", "error", err, "thread_id", id)
		return err
	}

	return nil
}
