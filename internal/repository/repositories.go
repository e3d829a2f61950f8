package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"talentflow/pkg/logger"
)

type Repositories struct {
	User         UserRepository
	Thread       ThreadRepository
	Message      MessageRepository
	Application  ApplicationRepository
	Notification NotificationRepository
	Audit        AuditRepository
	RateLimit    RateLimitRepository
}

func NewRepositories(db *pgxpool.Pool, redis *redis.Client, log logger.Logger) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db, log),
		Thread:       NewThreadRepository(db, log),
		Message:      NewMessageRepository(db, log),
		Application:  NewApplicationRepository(db, log),
		Notification: NewNotificationRepository(db, log),
		Audit:        NewAuditRepository(db, log),
		RateLimit:    NewRateLimitRepository(redis, log),
	}
}
