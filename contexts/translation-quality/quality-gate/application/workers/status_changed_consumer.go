package workers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "crowdlingo/contexts/translation-quality/quality-gate/application"
	"crowdlingo/contexts/translation-quality/quality-gate/application/commands"
	domainerrors "crowdlingo/contexts/translation-quality/quality-gate/domain/errors"
	"crowdlingo/contexts/translation-quality/quality-gate/ports"
)

const (
	statusChangedTopic = "submission.status.changed"
	defaultQualityCG   = "quality-gate-status-cg"
)

// Evaluator is the slice of the quality use case the consumer needs.
type Evaluator interface {
	EvaluateQuality(ctx context.Context, submissionID string) (commands.EvaluationResult, error)
}

// StatusChangedConsumer re-evaluates submission quality whenever consensus
// moves a submission, keeping validated pairs aligned with review outcomes.
type StatusChangedConsumer struct {
	Subscriber    ports.EventSubscriber
	Dedup         ports.EventDedupStore
	Quality       Evaluator
	Clock         ports.Clock
	ConsumerGroup string
	DedupTTL      time.Duration
	Logger        *slog.Logger
}

// Start subscribes to consensus status changes with dedupe semantics.
func (c StatusChangedConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultQualityCG
	}
	logger.Info("status consumer starting subscription",
		"event", "quality_status_consumer_starting",
		"module", "translation-quality/quality-gate",
		"layer", "worker",
		"topic", statusChangedTopic,
		"consumer_group", group,
	)
	if err := c.Subscriber.Subscribe(ctx, statusChangedTopic, group, c.handleStatusChanged); err != nil {
		logger.Error("status consumer subscribe failed",
			"event", "quality_status_consumer_subscribe_failed",
			"module", "translation-quality/quality-gate",
			"layer", "worker",
			"topic", statusChangedTopic,
			"consumer_group", group,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("status consumer subscription active",
		"event", "quality_status_consumer_started",
		"module", "translation-quality/quality-gate",
		"layer", "worker",
		"consumer_group", group,
	)
	return nil
}

func (c StatusChangedConsumer) handleStatusChanged(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	alreadyProcessed, err := c.Dedup.ReserveEvent(ctx, event.EventID, hashPayload(event.Data), c.now().Add(c.dedupTTL()))
	if err != nil {
		logger.Error("status event dedupe failed",
			"event", "quality_status_event_dedupe_failed",
			"module", "translation-quality/quality-gate",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}
	if alreadyProcessed {
		logger.Debug("status change replay skipped",
			"event", "quality_status_replayed",
			"module", "translation-quality/quality-gate",
			"layer", "worker",
			"event_id", event.EventID,
		)
		return nil
	}

	var payload struct {
		SubmissionID string `json:"submission_id"`
		To           string `json:"to"`
	}
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		logger.Error("status change payload decode failed",
			"event", "quality_status_decode_failed",
			"module", "translation-quality/quality-gate",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}

	if _, err := c.Quality.EvaluateQuality(ctx, payload.SubmissionID); err != nil {
		// The engine can emit status changes before the gate sees the
		// submission projection; those resolve on the next change.
		if errors.Is(err, domainerrors.ErrSubmissionNotFound) {
			logger.Warn("status change for unknown submission skipped",
				"event", "quality_status_unknown_submission",
				"module", "translation-quality/quality-gate",
				"layer", "worker",
				"event_id", event.EventID,
				"submission_id", strings.TrimSpace(payload.SubmissionID),
			)
			return nil
		}
		logger.Error("status change evaluation failed",
			"event", "quality_status_evaluate_failed",
			"module", "translation-quality/quality-gate",
			"layer", "worker",
			"event_id", event.EventID,
			"submission_id", strings.TrimSpace(payload.SubmissionID),
			"error", err.Error(),
		)
		return err
	}

	logger.Info("status change consumed",
		"event", "quality_status_consumed",
		"module", "translation-quality/quality-gate",
		"layer", "worker",
		"event_id", event.EventID,
		"submission_id", strings.TrimSpace(payload.SubmissionID),
		"to", strings.TrimSpace(payload.To),
	)
	return nil
}

func (c StatusChangedConsumer) now() time.Time {
	now := time.Now().UTC()
	if c.Clock != nil {
		now = c.Clock.Now().UTC()
	}
	return now
}

func (c StatusChangedConsumer) dedupTTL() time.Duration {
	if c.DedupTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return c.DedupTTL
}

func hashPayload(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
