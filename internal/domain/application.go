package domain

import (
	"time"

	"github.com/google/uuid"
)

type JobApplication struct {
	ID          uuid.UUID `json:"id"`
	JobID       uuid.UUID `json:"job_id"`
	CandidateID uuid.UUID `json:"candidate_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

const (
	ApplicationStatusApplied            = "applied"
	ApplicationStatusShortlisted        = "shortlisted"
	ApplicationStatusInterviewScheduled = "interview_scheduled"
	ApplicationStatusOffered            = "offered"
	ApplicationStatusRejected           = "rejected"
)

// Стадии, после которых рекрутеру разрешено писать кандидату
var AdvancedApplicationStatuses = []string{
	ApplicationStatusShortlisted,
	ApplicationStatusInterviewScheduled,
	ApplicationStatusOffered,
}
