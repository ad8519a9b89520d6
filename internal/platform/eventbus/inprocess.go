package eventbus

import (
	"context"
	"log/slog"
	"sync"
)

// InProcess is the broker used when no Redis address is configured: single
// process, fan-out per topic, no persistence.
type InProcess struct {
	mu          sync.RWMutex
	subscribers map[string][]chan []byte
	logger      *slog.Logger
}

func NewInProcess(logger *slog.Logger) *InProcess {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcess{
		subscribers: make(map[string][]chan []byte),
		logger:      logger,
	}
}

func (b *InProcess) Publish(ctx context.Context, topic string, payload []byte) error {
	b.mu.RLock()
	subs := append([]chan []byte(nil), b.subscribers[topic]...)
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub <- payload:
		default:
			b.logger.Warn("dropping event for slow subscriber",
				"event", "eventbus_publish_drop",
				"module", "internal/platform/eventbus",
				"layer", "platform",
				"topic", topic,
			)
		}
	}
	return nil
}

func (b *InProcess) Subscribe(ctx context.Context, topic string, consumerGroup string, handler Handler) error {
	ch := make(chan []byte, 128)

	b.mu.Lock()
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	b.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				b.removeSubscriber(topic, ch)
				return
			case payload := <-ch:
				if err := handler(ctx, payload); err != nil {
					b.logger.Error("consumer handler failed",
						"event", "eventbus_consume_failed",
						"module", "internal/platform/eventbus",
						"layer", "platform",
						"topic", topic,
						"consumer_group", consumerGroup,
						"error", err.Error(),
					)
				}
			}
		}
	}()
	return nil
}

func (b *InProcess) removeSubscriber(topic string, target chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := b.subscribers[topic]
	if len(items) == 0 {
		return
	}
	filtered := make([]chan []byte, 0, len(items))
	for _, item := range items {
		if item != target {
			filtered = append(filtered, item)
		}
	}
	b.subscribers[topic] = filtered
}

var _ Bus = (*InProcess)(nil)
