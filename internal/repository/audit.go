package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"talentflow/internal/domain"
	"talentflow/pkg/logger"
)

type AuditRepository interface {
	Record(ctx context.Context, entry *domain.AuditLog) error
}

type auditRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewAuditRepository(db *pgxpool.Pool, log logger.Logger) AuditRepository {
	return &auditRepository{db: db, log: log}
}

func (r *auditRepository) Record(ctx context.Context, entry *domain.AuditLog) error {
	query := `
		INSERT INTO audit_log (event_time, actor_user_id, actor_role, thread_id, event_type, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	payload, err := json.Marshal(entry.Payload)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query,
		entry.EventTime, entry.ActorUserID, entry.ActorRole,
		entry.ThreadID, entry.EventType, payload,
	)
	if err != nil {
		r.log.Error("Failed to record audit event", "error", err, "event_type", entry.EventType)
		return err
	}

	return nil
}
