package chatsync

import (
	"context"

	"github.com/google/uuid"

	"talentflow/pkg/apiclient"
)

// HTTPAPI адаптирует REST-клиент под интерфейс источника данных синхронизатора
type HTTPAPI struct {
	client *apiclient.Client
}

func NewHTTPAPI(client *apiclient.Client) *HTTPAPI {
	return &HTTPAPI{client: client}
}

func (a *HTTPAPI) Threads(ctx context.Context) ([]Thread, error) {
	var threads []Thread
	if err := a.client.Get(ctx, "/api/v1/chat/threads", &threads); err != nil {
		return nil, err
	}
	return threads, nil
}

func (a *HTTPAPI) Messages(ctx context.Context, threadID uuid.UUID) ([]Message, error) {
	var messages []Message
	if err := a.client.Get(ctx, "/api/v1/chat/messages/"+threadID.String(), &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (a *HTTPAPI) Send(ctx context.Context, threadID uuid.UUID, content string) error {
	body := map[string]string{
		"thread_id": threadID.String(),
		"content":   content,
	}
	return a.client.Post(ctx, "/api/v1/chat/send", body, nil)
}
