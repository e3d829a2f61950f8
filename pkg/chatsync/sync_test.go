package chatsync_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentflow/pkg/changefeed"
	"talentflow/pkg/chatsync"
	"talentflow/pkg/logger"
)

type fakeAPI struct {
	threads       []chatsync.Thread
	threadsErr    error
	messages      map[uuid.UUID][]chatsync.Message
	messagesCalls []uuid.UUID
	sendErr       error
	sent          []string
}

func (a *fakeAPI) Threads(ctx context.Context) ([]chatsync.Thread, error) {
	return a.threads, a.threadsErr
}

func (a *fakeAPI) Messages(ctx context.Context, threadID uuid.UUID) ([]chatsync.Message, error) {
	a.messagesCalls = append(a.messagesCalls, threadID)
	return a.messages[threadID], nil
}

func (a *fakeAPI) Send(ctx context.Context, threadID uuid.UUID, content string) error {
	a.sent = append(a.sent, content)
	return a.sendErr
}

type fakeSub struct {
	onClose func()
}

func (s *fakeSub) Close() error {
	s.onClose()
	return nil
}

type fakeFeed struct {
	calls    []string
	filters  []changefeed.Filter
	handlers []changefeed.Handler
}

func (f *fakeFeed) Subscribe(ctx context.Context, filter changefeed.Filter, handler changefeed.Handler) (changefeed.Subscription, error) {
	f.calls = append(f.calls, "subscribe:"+filter.Value)
	f.filters = append(f.filters, filter)
	f.handlers = append(f.handlers, handler)
	value := filter.Value
	return &fakeSub{onClose: func() {
		f.calls = append(f.calls, "close:"+value)
	}}, nil
}

// emit доставляет событие вставки в последний зарегистрированный callback
func (f *fakeFeed) emit(t *testing.T, msg chatsync.Message) {
	t.Helper()
	record, err := json.Marshal(msg)
	require.NoError(t, err)
	require.NotEmpty(t, f.handlers)
	f.handlers[len(f.handlers)-1](changefeed.Event{
		Type:   changefeed.EventInsert,
		Table:  "chat_messages",
		Record: record,
	})
}

func newMessage(threadID uuid.UUID, content string, at time.Time) chatsync.Message {
	return chatsync.Message{
		ID:        uuid.New(),
		ThreadID:  threadID,
		SenderID:  uuid.New(),
		Content:   content,
		CreatedAt: at,
	}
}

func newFixture() (*fakeAPI, *fakeFeed, *chatsync.Sync, uuid.UUID, uuid.UUID) {
	threadA := uuid.New()
	threadB := uuid.New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	api := &fakeAPI{
		threads: []chatsync.Thread{
			{ID: threadA, CandidateID: uuid.New(), RecruiterID: uuid.New(), LastMessageAt: base, IsActive: true},
			{ID: threadB, CandidateID: uuid.New(), RecruiterID: uuid.New(), LastMessageAt: base.Add(-time.Hour), IsActive: true},
		},
		messages: map[uuid.UUID][]chatsync.Message{
			threadA: {
				newMessage(threadA, "hello", base),
				newMessage(threadA, "world", base.Add(time.Minute)),
			},
			threadB: {},
		},
	}
	feed := &fakeFeed{}
	s := chatsync.New(api, feed, logger.New("error"))
	return api, feed, s, threadA, threadB
}

func TestLoadThreads(t *testing.T) {
	_, _, s, _, _ := newFixture()

	assert.Equal(t, chatsync.PhaseThreadsLoading, s.ThreadsPhase())
	s.LoadThreads(context.Background())

	assert.Equal(t, chatsync.PhaseThreadsLoaded, s.ThreadsPhase())
	assert.Len(t, s.Threads(), 2)
}

func TestLoadThreadsFailureKeepsEmptyList(t *testing.T) {
	api, feed, _, _, _ := newFixture()
	api.threadsErr = errors.New("network down")
	s := chatsync.New(api, feed, logger.New("error"))

	s.LoadThreads(context.Background())

	assert.Equal(t, chatsync.PhaseThreadsLoaded, s.ThreadsPhase())
	assert.Empty(t, s.Threads())
}

func TestSelectFetchesHistoryAndSubscribesOnce(t *testing.T) {
	api, feed, s, threadA, _ := newFixture()
	s.LoadThreads(context.Background())

	s.Select(context.Background(), threadA)

	require.Len(t, api.messagesCalls, 1)
	assert.Equal(t, threadA, api.messagesCalls[0])

	require.Len(t, feed.filters, 1)
	assert.Equal(t, "chat_messages", feed.filters[0].Table)
	assert.Equal(t, "thread_id", feed.filters[0].Column)
	assert.Equal(t, threadA.String(), feed.filters[0].Value)
	assert.Equal(t, changefeed.EventInsert, feed.filters[0].Event)

	assert.Equal(t, chatsync.PhaseMessagesLoaded, s.MessagesPhase())
	assert.True(t, s.Subscribed())

	messages := s.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "hello", messages[0].Content)
	assert.Equal(t, "world", messages[1].Content)
}

func TestSwitchClosesOldSubscriptionBeforeOpeningNew(t *testing.T) {
	_, feed, s, threadA, threadB := newFixture()
	s.LoadThreads(context.Background())

	s.Select(context.Background(), threadA)
	s.Select(context.Background(), threadB)

	expected := []string{
		"subscribe:" + threadA.String(),
		"close:" + threadA.String(),
		"subscribe:" + threadB.String(),
	}
	assert.Equal(t, expected, feed.calls)
}

func TestInboundEventAppendsInOrder(t *testing.T) {
	_, feed, s, threadA, _ := newFixture()
	s.LoadThreads(context.Background())
	s.Select(context.Background(), threadA)

	base := time.Date(2025, 6, 1, 12, 5, 0, 0, time.UTC)
	feed.emit(t, newMessage(threadA, "third", base))
	feed.emit(t, newMessage(threadA, "fourth", base.Add(time.Second)))

	messages := s.Messages()
	require.Len(t, messages, 4)
	assert.Equal(t, "third", messages[2].Content)
	assert.Equal(t, "fourth", messages[3].Content)

	// Порядок по возрастанию времени создания сохранен
	for i := 1; i < len(messages); i++ {
		assert.False(t, messages[i].CreatedAt.Before(messages[i-1].CreatedAt))
	}
}

func TestForeignThreadEventDoesNotMutateList(t *testing.T) {
	_, feed, s, threadA, threadB := newFixture()
	s.LoadThreads(context.Background())
	s.Select(context.Background(), threadA)

	// Запоздавшее событие из треда B пришло в callback треда A
	feed.emit(t, newMessage(threadB, "stray", time.Now()))

	assert.Len(t, s.Messages(), 2)
}

func TestMalformedEventIsDropped(t *testing.T) {
	_, feed, s, threadA, _ := newFixture()
	s.LoadThreads(context.Background())
	s.Select(context.Background(), threadA)

	// Нет sender_id и created_at - событие отбрасывается
	feed.emit(t, chatsync.Message{ID: uuid.New(), ThreadID: threadA})

	assert.Len(t, s.Messages(), 2)
}

func TestSendBumpsThreadActivityBeforeConfirmation(t *testing.T) {
	api, _, s, threadA, _ := newFixture()
	s.LoadThreads(context.Background())
	s.Select(context.Background(), threadA)

	// Отправка падает, но метка активности уже поднята
	api.sendErr = errors.New("insert failed")

	before := time.Now()
	err := s.Send(context.Background(), "are you there?")
	require.Error(t, err)

	var found bool
	for _, thread := range s.Threads() {
		if thread.ID == threadA {
			found = true
			assert.False(t, thread.LastMessageAt.Before(before))
		}
	}
	require.True(t, found)
}

func TestSendDoesNotAppendLocally(t *testing.T) {
	api, _, s, threadA, _ := newFixture()
	s.LoadThreads(context.Background())
	s.Select(context.Background(), threadA)

	err := s.Send(context.Background(), "  ping  ")
	require.NoError(t, err)

	require.Len(t, api.sent, 1)
	assert.Equal(t, "ping", api.sent[0])

	// Сообщение появится только эхом из ленты
	assert.Len(t, s.Messages(), 2)
}

func TestSendWithoutSelectionIsNoop(t *testing.T) {
	api, _, s, _, _ := newFixture()
	s.LoadThreads(context.Background())

	err := s.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Empty(t, api.sent)
}

func TestCloseReleasesSubscription(t *testing.T) {
	_, feed, s, threadA, _ := newFixture()
	s.LoadThreads(context.Background())
	s.Select(context.Background(), threadA)

	s.Close()

	assert.False(t, s.Subscribed())
	assert.Equal(t, chatsync.PhaseNoThreadSelected, s.MessagesPhase())
	assert.Contains(t, feed.calls, fmt.Sprintf("close:%s", threadA))
}
