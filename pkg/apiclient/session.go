package apiclient

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// SessionProvider - единственный источник текущего токена сессии.
// Логика получения данных не дергает "текущую сессию" сама по себе,
// а читает ее из внедренного провайдера
type SessionProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken - фиксированный токен, без обновления
type StaticToken string

func (t StaticToken) Token(ctx context.Context) (string, error) {
	return string(t), nil
}

// RefreshFunc получает новый токен и срок его действия
type RefreshFunc func(ctx context.Context) (token string, expiresAt time.Time, err error)

// Запас до истечения токена, после которого запрашиваем новый
const refreshMargin = 30 * time.Second

// RefreshingSession кеширует токен и обновляет его по истечении срока
type RefreshingSession struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
	refresh   RefreshFunc
}

func NewRefreshingSession(refresh RefreshFunc) *RefreshingSession {
	return &RefreshingSession{refresh: refresh}
}

func (s *RefreshingSession) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Until(s.expiresAt) > refreshMargin {
		return s.token, nil
	}

	token, expiresAt, err := s.refresh(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to refresh session: %w", err)
	}

	s.token = token
	s.expiresAt = expiresAt
	return token, nil
}
