package chatsync

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"talentflow/pkg/changefeed"
	"talentflow/pkg/logger"
)

// Таблица сообщений в ленте изменений
const messagesTable = "chat_messages"

// Thread - граничная структура списка диалогов, как ее отдает бэкенд
type Thread struct {
	ID            uuid.UUID `json:"id"`
	CandidateID   uuid.UUID `json:"candidate_id"`
	RecruiterID   uuid.UUID `json:"recruiter_id"`
	LastMessageAt time.Time `json:"last_message_at"`
	IsActive      bool      `json:"is_active"`
}

// Message - граничная структура сообщения. Перед применением события
// проверяются обязательные поля, "сырые" данные в состояние не попадают
type Message struct {
	ID        uuid.UUID `json:"id"`
	ThreadID  uuid.UUID `json:"thread_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (m *Message) validate() error {
	if m.ID == uuid.Nil {
		return errors.New("message id is required")
	}
	if m.ThreadID == uuid.Nil {
		return errors.New("thread id is required")
	}
	if m.SenderID == uuid.Nil {
		return errors.New("sender id is required")
	}
	if m.CreatedAt.IsZero() {
		return errors.New("created_at is required")
	}
	return nil
}

// API - источник данных запрос-ответ для синхронизатора
type API interface {
	// Активные треды текущего пользователя, по убыванию последней активности
	Threads(ctx context.Context) ([]Thread, error)

	// История сообщений треда по возрастанию времени создания
	Messages(ctx context.Context, threadID uuid.UUID) ([]Message, error)

	// Отправка сообщения в тред
	Send(ctx context.Context, threadID uuid.UUID, content string) error
}

type Phase string

const (
	PhaseThreadsLoading Phase = "threads_loading"
	PhaseThreadsLoaded  Phase = "threads_loaded"

	PhaseNoThreadSelected Phase = "no_thread_selected"
	PhaseMessagesLoading  Phase = "messages_loading"
	PhaseMessagesLoaded   Phase = "messages_loaded"
)

// Sync держит локальное представление тредов и сообщений выбранного треда,
// согласованное с удаленным источником без опроса: история загружается один
// раз, дальше список пополняется событиями вставки из ленты изменений.
// Одновременно активна не более одной подписки; при смене треда старая
// подписка закрывается до открытия новой.
type Sync struct {
	api  API
	feed changefeed.Feed
	log  logger.Logger

	mu            sync.Mutex
	threadsPhase  Phase
	messagesPhase Phase
	threads       []Thread
	messages      []Message
	activeThread  uuid.UUID
	sub           changefeed.Subscription
}

func New(api API, feed changefeed.Feed, log logger.Logger) *Sync {
	return &Sync{
		api:           api,
		feed:          feed,
		log:           log,
		threadsPhase:  PhaseThreadsLoading,
		messagesPhase: PhaseNoThreadSelected,
	}
}

// LoadThreads делает одноразовый запрос списка тредов. Ошибка логируется,
// список остается пустым - повторных попыток нет
func (s *Sync) LoadThreads(ctx context.Context) {
	threads, err := s.api.Threads(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.threadsPhase = PhaseThreadsLoaded
	if err != nil {
		s.log.Error("Failed to load threads", "error", err)
		return
	}
	s.threads = threads
}

// Select переключает активный тред: закрывает прежнюю подписку, загружает
// историю и подписывается на вставки сообщений этого треда
func (s *Sync) Select(ctx context.Context, threadID uuid.UUID) {
	s.mu.Lock()
	s.closeSubscriptionLocked()
	s.activeThread = threadID
	s.messagesPhase = PhaseMessagesLoading
	s.messages = nil
	s.mu.Unlock()

	history, err := s.api.Messages(ctx, threadID)
	if err != nil {
		s.log.Error("Failed to load message history", "error", err, "thread_id", threadID)
		history = nil
	}

	s.mu.Lock()
	if s.activeThread != threadID {
		// Пока грузилась история, пользователь выбрал другой тред
		s.mu.Unlock()
		return
	}
	if err == nil {
		s.messages = history
		s.messagesPhase = PhaseMessagesLoaded
	}
	s.mu.Unlock()

	sub, err := s.feed.Subscribe(ctx, changefeed.Filter{
		Table:  messagesTable,
		Column: "thread_id",
		Value:  threadID.String(),
		Event:  changefeed.EventInsert,
	}, s.handleEvent)
	if err != nil {
		s.log.Error("Failed to subscribe to thread", "error", err, "thread_id", threadID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeThread != threadID {
		sub.Close()
		return
	}
	s.sub = sub
}

// handleEvent добавляет вставленное сообщение в конец списка без
// пересортировки: лента обязана сохранять порядок вставки внутри треда
func (s *Sync) handleEvent(event changefeed.Event) {
	var msg Message
	if err := json.Unmarshal(event.Record, &msg); err != nil {
		s.log.Warn("Failed to decode message event", "error", err)
		return
	}
	if err := msg.validate(); err != nil {
		s.log.Warn("Dropping malformed message event", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Запоздавшее событие уже невыбранного треда не трогает видимый список
	if msg.ThreadID != s.activeThread {
		return
	}

	s.messages = append(s.messages, msg)
}

// Send отправляет сообщение в активный тред. Локально сообщение не
// добавляется - оно появится эхом из ленты изменений. Метка последней
// активности треда поднимается оптимистично, до подтверждения отправки
func (s *Sync) Send(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)

	s.mu.Lock()
	threadID := s.activeThread
	if content == "" || threadID == uuid.Nil {
		s.mu.Unlock()
		return nil
	}
	for i := range s.threads {
		if s.threads[i].ID == threadID {
			s.threads[i].LastMessageAt = time.Now()
		}
	}
	s.mu.Unlock()

	if err := s.api.Send(ctx, threadID, content); err != nil {
		s.log.Error("Failed to send message", "error", err, "thread_id", threadID)
		return err
	}

	return nil
}

// Close освобождает подписку; вызывается на каждом пути выхода
func (s *Sync) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closeSubscriptionLocked()
	s.activeThread = uuid.Nil
	s.messages = nil
	s.messagesPhase = PhaseNoThreadSelected
}

func (s *Sync) closeSubscriptionLocked() {
	if s.sub == nil {
		return
	}
	if err := s.sub.Close(); err != nil {
		s.log.Warn("Failed to close subscription", "error", err)
	}
	s.sub = nil
}

func (s *Sync) Threads() []Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Thread, len(s.threads))
	copy(out, s.threads)
	return out
}

func (s *Sync) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Sync) ActiveThread() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeThread
}

func (s *Sync) ThreadsPhase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.threadsPhase
}

func (s *Sync) MessagesPhase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messagesPhase
}

func (s *Sync) Subscribed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sub != nil
}
