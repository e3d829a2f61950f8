package service

import (
	"talentflow/internal/config"
	"talentflow/internal/repository"
	"talentflow/pkg/changefeed"
	"talentflow/pkg/logger"
)

type Services struct {
	Auth         AuthService
	User         UserService
	Chat         ChatService
	Notification NotificationService
	RateLimit    RateLimitService
	Audit        AuditService
}

func NewServices(repos *repository.Repositories, feed changefeed.Publisher, cfg *config.Config, log logger.Logger) *Services {
	audit := NewAuditService(repos.Audit, log)
	notification := NewNotificationService(repos.Notification, log)

	return &Services{
		Auth:         NewAuthService(repos.User, cfg.JWT, log),
		User:         NewUserService(repos.User, log),
		Chat:         NewChatService(repos.Thread, repos.Message, repos.Application, feed, notification, audit, cfg.Chat, log),
		Notification: notification,
		RateLimit:    NewRateLimitService(repos.RateLimit, log),
		Audit:        audit,
	}
}
