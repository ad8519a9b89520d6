package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const payloadField = "payload"

// Redis is a stream-backed bus. Each topic is a Redis stream; consumer groups
// give competing consumers at-least-once delivery with explicit acks.
type Redis struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedis(addr string, logger *slog.Logger) (*Redis, error) {
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &Redis{
		client: client,
		logger: logger,
	}, nil
}

func (b *Redis) Publish(ctx context.Context, topic string, payload []byte) error {
	err := b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: topic,
		Values: map[string]any{payloadField: payload},
	}).Err()
	if err != nil {
		b.logger.Error("event publish failed",
			"event", "eventbus_publish_failed",
			"module", "internal/platform/eventbus",
			"layer", "platform",
			"topic", topic,
			"error", err.Error(),
		)
		return err
	}
	return nil
}

func (b *Redis) Subscribe(ctx context.Context, topic string, consumerGroup string, handler Handler) error {
	err := b.client.XGroupCreateMkStream(ctx, topic, consumerGroup, "$").Err()
	if err != nil && !isBusyGroup(err) {
		return err
	}

	consumer := consumerGroup + "-" + uuid.NewString()
	go b.consumeLoop(ctx, topic, consumerGroup, consumer, handler)

	b.logger.Info("eventbus subscription active",
		"event", "eventbus_subscribed",
		"module", "internal/platform/eventbus",
		"layer", "platform",
		"topic", topic,
		"consumer_group", consumerGroup,
	)
	return nil
}

func (b *Redis) consumeLoop(ctx context.Context, topic string, group string, consumer string, handler Handler) {
	for {
		if ctx.Err() != nil {
			return
		}
		streams, err := b.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    group,
			Consumer: consumer,
			Streams:  []string{topic, ">"},
			Count:    16,
			Block:    5 * time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			b.logger.Error("eventbus read failed",
				"event", "eventbus_read_failed",
				"module", "internal/platform/eventbus",
				"layer", "platform",
				"topic", topic,
				"consumer_group", group,
				"error", err.Error(),
			)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				payload, ok := message.Values[payloadField].(string)
				if !ok {
					// Malformed entry: ack so it never wedges the group.
					_ = b.client.XAck(ctx, topic, group, message.ID).Err()
					continue
				}
				if err := handler(ctx, []byte(payload)); err != nil {
					b.logger.Error("eventbus handler failed",
						"event", "eventbus_handler_failed",
						"module", "internal/platform/eventbus",
						"layer", "platform",
						"topic", topic,
						"consumer_group", group,
						"message_id", message.ID,
						"error", err.Error(),
					)
					continue
				}
				_ = b.client.XAck(ctx, topic, group, message.ID).Err()
			}
		}
	}
}

func (b *Redis) Close() error {
	return b.client.Close()
}

func isBusyGroup(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP")
}

var _ Bus = (*Redis)(nil)
