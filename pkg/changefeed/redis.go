package changefeed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"talentflow/pkg/logger"
)

type redisFeed struct {
	rdb *redis.Client
	log logger.Logger
}

func NewRedisFeed(rdb *redis.Client, log logger.Logger) FeedPublisher {
	return &redisFeed{rdb: rdb, log: log}
}

func (f *redisFeed) Publish(ctx context.Context, table, column, value string, eventType EventType, record interface{}) error {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		f.log.Error("Failed to marshal changefeed record", "error", err, "table", table)
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	event := Event{
		Type:   eventType,
		Table:  table,
		Record: recordJSON,
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := ChannelName(table, column, value)
	if err := f.rdb.Publish(ctx, channel, eventJSON).Err(); err != nil {
		f.log.Error("Failed to publish changefeed event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

func (f *redisFeed) Subscribe(ctx context.Context, filter Filter, handler Handler) (Subscription, error) {
	channel := ChannelName(filter.Table, filter.Column, filter.Value)

	pubsub := f.rdb.Subscribe(ctx, channel)

	// Дожидаемся подтверждения подписки, чтобы не терять события
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		f.log.Error("Failed to subscribe to changefeed", "error", err, "channel", channel)
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	go func() {
		for msg := range pubsub.Channel() {
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				f.log.Warn("Failed to unmarshal changefeed event", "error", err, "channel", channel)
				continue
			}

			if filter.Event != "" && event.Type != filter.Event {
				continue
			}

			handler(event)
		}
	}()

	return &redisSubscription{pubsub: pubsub}, nil
}

type redisSubscription struct {
	pubsub *redis.PubSub
}

func (s *redisSubscription) Close() error {
	return s.pubsub.Close()
}
