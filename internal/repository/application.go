package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"talentflow/internal/domain"
	"talentflow/pkg/logger"
)

type ApplicationRepository interface {
	CandidateInAdvancedStage(ctx context.Context, candidateID uuid.UUID) (bool, error)
}

type applicationRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewApplicationRepository(db *pgxpool.Pool, log logger.Logger) ApplicationRepository {
	return &applicationRepository{db: db, log: log}
}

func (r *applicationRepository) CandidateInAdvancedStage(ctx context.Context, candidateID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM job_applications
			WHERE candidate_id = $1 AND status = ANY($2)
		)
	`

	var exists bool
	err := r.db.QueryRow(ctx, query, candidateID, domain.AdvancedApplicationStatuses).Scan(&exists)
	if err != nil {
		r.log.Error("Failed to check application stage", "error", err, "candidate_id", candidateID)
		return false, err
	}

	return exists, nil
}
