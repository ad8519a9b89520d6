package ports

import (
	"context"
	"encoding/json"
	"time"

	"crowdlingo/contexts/translation-quality/review-engine/domain/entities"
)

type ReviewRepository interface {
	SaveReview(ctx context.Context, review entities.Review) error
	GetReview(ctx context.Context, reviewID string) (entities.Review, error)
	GetReviewByIdentity(ctx context.Context, submissionID string, reviewerID string) (entities.Review, bool, error)
	ListReviewsBySubmission(ctx context.Context, submissionID string) ([]entities.Review, error)
	ListReviewsByReviewer(ctx context.Context, reviewerID string) ([]entities.Review, error)
	SupersedeReviewsBySubmission(ctx context.Context, submissionID string, updatedAt time.Time) ([]entities.Review, error)
}

type SubmissionRepository interface {
	GetSubmission(ctx context.Context, submissionID string) (entities.Submission, error)
	SaveSubmission(ctx context.Context, submission entities.Submission) error
	// SaveAggregate persists the aggregate fields only if the stored
	// AggregateVersion still equals expectedVersion, bumping it by one.
	// Stale writers receive ErrAggregationConflict.
	SaveAggregate(ctx context.Context, submission entities.Submission, expectedVersion int64) error
}

type ReputationRepository interface {
	GetReputation(ctx context.Context, userID string) (entities.Reputation, bool, error)
	SaveReputation(ctx context.Context, reputation entities.Reputation) error
	ListReputations(ctx context.Context) ([]entities.Reputation, error)
}

type EventEnvelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventHandler func(ctx context.Context, event EventEnvelope) error

type EventSubscriber interface {
	Subscribe(ctx context.Context, topic string, consumerGroup string, handler EventHandler) error
}

type EventDedupStore interface {
	// ReserveEvent returns true when the event was already processed with the
	// same payload hash; conflicting payloads for a reserved ID error out.
	ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
