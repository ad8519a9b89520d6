package eventbus

import "context"

// Handler consumes one raw event payload. A non-nil error leaves the message
// unacknowledged so the bus can redeliver it.
type Handler func(ctx context.Context, payload []byte) error

// Bus is the transport between outbox relays and consumers. Module ports keep
// their own typed envelopes; the bus only moves bytes.
type Bus interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string, consumerGroup string, handler Handler) error
}
