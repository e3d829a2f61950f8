package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentflow/internal/domain"
	"talentflow/pkg/apiclient"
	"talentflow/pkg/chatsync"
	apperrors "talentflow/pkg/errors"
	"talentflow/pkg/logger"
)

type fakeChatService struct {
	thread     *domain.Thread
	threadErr  error
	threads    []*domain.Thread
	threadsErr error
	messages   []*domain.Message
	message    *domain.Message
	sendErr    error
	report     *domain.MessageReport
	reportErr  error
}

func (f *fakeChatService) OpenThread(context.Context, *domain.User, uuid.UUID) (*domain.Thread, error) {
	return f.thread, f.threadErr
}

func (f *fakeChatService) GetThreads(context.Context, *domain.User) ([]*domain.Thread, error) {
	return f.threads, f.threadsErr
}

func (f *fakeChatService) GetThread(context.Context, *domain.User, uuid.UUID) (*domain.Thread, error) {
	return f.thread, f.threadErr
}

func (f *fakeChatService) GetMessages(context.Context, *domain.User, uuid.UUID) ([]*domain.Message, error) {
	return f.messages, f.threadErr
}

func (f *fakeChatService) SendMessage(context.Context, *domain.User, uuid.UUID, string) (*domain.Message, error) {
	return f.message, f.sendErr
}

func (f *fakeChatService) ReportMessage(context.Context, *domain.User, uuid.UUID, string) (*domain.MessageReport, error) {
	return f.report, f.reportErr
}

func (f *fakeChatService) DeactivateThread(context.Context, *domain.User, uuid.UUID) error {
	return f.sendErr
}

// setUser подменяет auth middleware в тестах
func setUser(user *domain.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user", user)
		c.Next()
	}
}

func newChatRouter(svc *fakeChatService, user *domain.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewChatHandler(svc, logger.New("error"))

	router := gin.New()
	chat := router.Group("/api/v1/chat", setUser(user))
	{
		chat.GET("/threads", h.GetThreads)
		chat.GET("/messages/:threadId", h.GetMessages)
		chat.POST("/send", h.SendMessage)
	}
	return router
}

func TestSendErrorReachesAPIClientDetail(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Role: domain.RoleRecruiter}
	svc := &fakeChatService{sendErr: apperrors.ErrChatRestricted}

	srv := httptest.NewServer(newChatRouter(svc, user))
	defer srv.Close()

	api := chatsync.NewHTTPAPI(apiclient.New(srv.URL, nil, logger.New("error")))
	err := api.Send(context.Background(), uuid.New(), "hello")
	require.Error(t, err)

	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, apperrors.ErrChatRestricted.Error(), apiErr.Detail)
}

func TestThreadsRoundTripThroughAPIClient(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Role: domain.RoleCandidate}
	thread := &domain.Thread{
		ID:            uuid.New(),
		CandidateID:   user.ID,
		RecruiterID:   uuid.New(),
		LastMessageAt: time.Now().Truncate(time.Second),
		IsActive:      true,
	}
	svc := &fakeChatService{threads: []*domain.Thread{thread}}

	srv := httptest.NewServer(newChatRouter(svc, user))
	defer srv.Close()

	api := chatsync.NewHTTPAPI(apiclient.New(srv.URL, nil, logger.New("error")))
	threads, err := api.Threads(context.Background())
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, thread.ID, threads[0].ID)
	assert.Equal(t, thread.CandidateID, threads[0].CandidateID)
}

func TestUnknownErrorIsMaskedAs500(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Role: domain.RoleCandidate}
	svc := &fakeChatService{threadsErr: errors.New("pgx: connection refused")}

	router := newChatRouter(svc, user)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/threads", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Internal server error", body["error"])
}

func TestValidationErrorStays400WithReason(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Role: domain.RoleCandidate}
	svc := &fakeChatService{
		sendErr: fmt.Errorf("%w: message content is too long", apperrors.ErrBadRequest),
	}

	srv := httptest.NewServer(newChatRouter(svc, user))
	defer srv.Close()

	api := chatsync.NewHTTPAPI(apiclient.New(srv.URL, nil, logger.New("error")))
	err := api.Send(context.Background(), uuid.New(), "way too long")

	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Detail, "message content is too long")
}
