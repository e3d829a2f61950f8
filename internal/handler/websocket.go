package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"talentflow/internal/middleware"
	"talentflow/internal/service"
	"talentflow/pkg/changefeed"
	apperrors "talentflow/pkg/errors"
	"talentflow/pkg/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // В продакшене нужно проверять origin
	},
}

type WebSocketHandler struct {
	chatService service.ChatService
	feed        changefeed.Feed
	log         logger.Logger
}

func NewWebSocketHandler(chatService service.ChatService, feed changefeed.Feed, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		chatService: chatService,
		feed:        feed,
		log:         log,
	}
}

// HandleThread транслирует новые сообщения треда в открытый WebSocket.
// Подписка живёт, пока клиент держит соединение.
func (h *WebSocketHandler) HandleThread(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	threadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid thread ID"})
		return
	}

	// Доступ проверяем до апгрейда, чтобы вернуть нормальный HTTP-статус
	if _, err := h.chatService.GetThread(c.Request.Context(), user, threadID); err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	events := make(chan changefeed.Event, 32)
	sub, err := h.feed.Subscribe(c.Request.Context(), changefeed.Filter{
		Table:  "chat_messages",
		Column: "thread_id",
		Value:  threadID.String(),
		Event:  changefeed.EventInsert,
	}, func(event changefeed.Event) {
		select {
		case events <- event:
		default:
			h.log.Warn("Dropping event, slow websocket consumer", "thread_id", threadID)
		}
	})
	if err != nil {
		h.log.Error("Failed to subscribe to thread feed", "error", err, "thread_id", threadID)
		return
	}
	defer sub.Close()

	// Читаем из сокета только ради обнаружения разрыва
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case event := <-events:
			payload, err := json.Marshal(event)
			if err != nil {
				h.log.Error("Failed to encode event", "error", err)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}
}
