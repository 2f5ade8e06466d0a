package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Bus is a Redis backed publish/subscribe channel with JSON payloads.
// A nil Bus (or a Bus without a client) drops publishes silently so
// components stay usable in tests without Redis.
type Bus struct {
	client *redis.Client
	logger *slog.Logger
}

// NewBus constructs a Bus.
func NewBus(client *redis.Client, logger *slog.Logger) *Bus {
	return &Bus{client: client, logger: logger}
}

// Publish marshals the payload and publishes it on the topic.
func (b *Bus) Publish(ctx context.Context, topic string, payload any) error {
	if b == nil || b.client == nil {
		return nil
	}
	if topic == "" {
		return errors.New("events: topic required")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, topic, data).Err()
}

// Subscribe consumes a topic until context cancellation, decoding each
// message into T before invoking the handler. Malformed payloads are
// logged and skipped.
func Subscribe[T any](ctx context.Context, b *Bus, topic string, handler func(context.Context, T)) error {
	if b == nil || b.client == nil {
		return errors.New("events: bus not configured")
	}
	if handler == nil {
		return errors.New("events: handler required")
	}
	pubsub := b.client.Subscribe(ctx, topic)
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var payload T
				if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
					if b.logger != nil {
						b.logger.Warn("events: decode payload", slog.String("topic", topic), slog.Any("error", err))
					}
					continue
				}
				handler(ctx, payload)
			}
		}
	}()
	return nil
}
