package handler

import (
	"talentflow/internal/service"
	"talentflow/pkg/changefeed"
	"talentflow/pkg/logger"
)

type Handlers struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	User         *UserHandler
	Chat         *ChatHandler
	Notification *NotificationHandler
	WebSocket    *WebSocketHandler
}

func NewHandlers(services *service.Services, feed changefeed.Feed, log logger.Logger) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(),
		Auth:         NewAuthHandler(services.Auth, log),
		User:         NewUserHandler(services.User, log),
		Chat:         NewChatHandler(services.Chat, log),
		Notification: NewNotificationHandler(services.Notification, log),
		WebSocket:    NewWebSocketHandler(services.Chat, feed, log),
	}
}
