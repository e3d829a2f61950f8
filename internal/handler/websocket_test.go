package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentflow/internal/domain"
	"talentflow/pkg/changefeed"
	"talentflow/pkg/logger"
)

type wsFakeSub struct {
	mu     sync.Mutex
	closed bool
}

func (s *wsFakeSub) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *wsFakeSub) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type wsFakeFeed struct {
	mu      sync.Mutex
	filter  changefeed.Filter
	handler changefeed.Handler
	sub     *wsFakeSub
}

func (f *wsFakeFeed) Subscribe(_ context.Context, filter changefeed.Filter, handler changefeed.Handler) (changefeed.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter = filter
	f.handler = handler
	f.sub = &wsFakeSub{}
	return f.sub, nil
}

func (f *wsFakeFeed) emit(t *testing.T, record interface{}) {
	t.Helper()
	payload, err := json.Marshal(record)
	require.NoError(t, err)

	f.mu.Lock()
	handler := f.handler
	f.mu.Unlock()
	require.NotNil(t, handler)
	handler(changefeed.Event{Type: changefeed.EventInsert, Table: "chat_messages", Record: payload})
}

func (f *wsFakeFeed) subscription() *wsFakeSub {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sub
}

func (f *wsFakeFeed) waitSubscribed(t *testing.T) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		f.mu.Lock()
		subscribed := f.handler != nil
		f.mu.Unlock()
		if subscribed {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("websocket handler never subscribed to the feed")
}

func TestWebSocketForwardsThreadInserts(t *testing.T) {
	gin.SetMode(gin.TestMode)

	user := &domain.User{ID: uuid.New(), Role: domain.RoleCandidate}
	thread := &domain.Thread{ID: uuid.New(), CandidateID: user.ID, RecruiterID: uuid.New(), IsActive: true}
	svc := &fakeChatService{thread: thread}
	feed := &wsFakeFeed{}

	h := NewWebSocketHandler(svc, feed, logger.New("error"))
	router := gin.New()
	router.GET("/ws/threads/:id", setUser(user), h.HandleThread)

	srv := httptest.NewServer(router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/threads/" + thread.ID.String()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	feed.waitSubscribed(t)
	assert.Equal(t, "chat_messages", feed.filter.Table)
	assert.Equal(t, "thread_id", feed.filter.Column)
	assert.Equal(t, thread.ID.String(), feed.filter.Value)
	assert.Equal(t, changefeed.EventInsert, feed.filter.Event)

	message := &domain.Message{
		ID:        uuid.New(),
		ThreadID:  thread.ID,
		SenderID:  thread.RecruiterID,
		Content:   "We'd like to schedule an interview",
		CreatedAt: time.Now(),
	}
	feed.emit(t, message)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var event changefeed.Event
	require.NoError(t, json.Unmarshal(payload, &event))
	assert.Equal(t, changefeed.EventInsert, event.Type)

	var received domain.Message
	require.NoError(t, json.Unmarshal(event.Record, &received))
	assert.Equal(t, message.ID, received.ID)
	assert.Equal(t, message.Content, received.Content)

	// Закрытие соединения освобождает подписку
	require.NoError(t, conn.Close())
	sub := feed.subscription()
	deadline := time.Now().Add(2 * time.Second)
	for !sub.isClosed() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.True(t, sub.isClosed())
}
