package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Filter описывает подписку: таблица + условие равенства по одной колонке,
// опционально ограниченная типом события
type Filter struct {
	Table  string
	Column string
	Value  string
	Event  EventType
}

// Event - уведомление об измененной строке. Record содержит строку как есть,
// декодирование в доменный тип - ответственность подписчика
type Event struct {
	Type   EventType       `json:"type"`
	Table  string          `json:"table"`
	Record json.RawMessage `json:"record"`
}

type Handler func(event Event)

type Subscription interface {
	Close() error
}

// Feed доставляет события вставки строк, подходящих под фильтр,
// зарегистрированному callback до явной отписки
type Feed interface {
	Subscribe(ctx context.Context, filter Filter, handler Handler) (Subscription, error)
}

// Publisher - серверная сторона ленты изменений
type Publisher interface {
	Publish(ctx context.Context, table, column, value string, eventType EventType, record interface{}) error
}

// FeedPublisher объединяет обе стороны ленты для реализаций поверх брокера
type FeedPublisher interface {
	Feed
	Publisher
}

// ChannelName строит имя логического канала: один канал на пару (таблица, фильтр).
// Scoping событий обеспечивается транспортом, а не проверками в callback
func ChannelName(table, column, value string) string {
	return fmt.Sprintf("changefeed:%s:%s=%s", table, column, value)
}
