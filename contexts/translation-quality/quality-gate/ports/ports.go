package ports

import (
	"context"
	"encoding/json"
	"time"

	"crowdlingo/contexts/translation-quality/quality-gate/domain/entities"
)

// SubmissionProjection is the gate's read model of a reviewed submission,
// owned upstream by the consensus engine.
type SubmissionProjection struct {
	SubmissionID        string
	SubmitterID         string
	SourceText          string
	TargetText          string
	SourceLanguage      string
	TargetLanguage      string
	Domain              string
	Difficulty          string
	Status              string
	ReviewCount         int
	WeightedReviewScore float64
}

type SubmissionReader interface {
	GetSubmission(ctx context.Context, submissionID string) (SubmissionProjection, error)
}

type SignalSource interface {
	// GetSignals returns the objective measurements for a submission; false
	// when none were captured.
	GetSignals(ctx context.Context, submissionID string) (entities.QualitySignals, bool, error)
}

type SignalRecorder interface {
	SaveSignals(ctx context.Context, signals entities.QualitySignals) error
}

// AnomalyProbe answers the historical lookups behind the anomaly rules.
type AnomalyProbe interface {
	CountDuplicateTargetText(ctx context.Context, contributorID string, targetText string, since time.Time) (int, error)
	CountCoordinateUses(ctx context.Context, latitude float64, longitude float64) (int, error)
}

type QualityRepository interface {
	GetQualityRecord(ctx context.Context, submissionID string) (entities.QualityRecord, error)
	SaveQualityRecord(ctx context.Context, record entities.QualityRecord) error
}

// PairFilter narrows export listings. Zero values match everything.
type PairFilter struct {
	OnlyExportable bool
	SourceLanguage string
	TargetLanguage string
	Domain         string
	Limit          int
}

type PairRepository interface {
	GetPair(ctx context.Context, pairID string) (entities.ValidatedPair, error)
	GetPairBySubmission(ctx context.Context, submissionID string) (entities.ValidatedPair, bool, error)
	SavePair(ctx context.Context, pair entities.ValidatedPair) error
	ListPairs(ctx context.Context, filter PairFilter) ([]entities.ValidatedPair, error)
	// IncrementExportCount bumps the counter atomically on the storage side.
	IncrementExportCount(ctx context.Context, pairID string, exportedAt time.Time) error
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
	ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
