package workers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "crowdlingo/contexts/translation-quality/review-engine/application"
	"crowdlingo/contexts/translation-quality/review-engine/application/commands"
	"crowdlingo/contexts/translation-quality/review-engine/domain/entities"
	domainerrors "crowdlingo/contexts/translation-quality/review-engine/domain/errors"
	"crowdlingo/contexts/translation-quality/review-engine/ports"
)

const (
	translationSubmittedTopic = "translation.submission.created"
	defaultIntakeCG           = "review-engine-intake-cg"
)

// SubmissionRegistrar is the slice of the review use case the intake consumer
// needs.
type SubmissionRegistrar interface {
	RegisterSubmission(ctx context.Context, cmd commands.RegisterSubmissionCommand) (entities.Submission, error)
}

// SubmissionIntakeConsumer projects upstream translation submissions into the
// engine so they become reviewable.
type SubmissionIntakeConsumer struct {
	Subscriber    ports.EventSubscriber
	Dedup         ports.EventDedupStore
	Registrar     SubmissionRegistrar
	Clock         ports.Clock
	ConsumerGroup string
	DedupTTL      time.Duration
	Logger        *slog.Logger
}

// Start subscribes to the intake topic with dedupe semantics.
func (c SubmissionIntakeConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultIntakeCG
	}
	logger.Info("intake consumer starting subscription",
		"event", "review_intake_consumer_starting",
		"module", "translation-quality/review-engine",
		"layer", "worker",
		"topic", translationSubmittedTopic,
		"consumer_group", group,
	)
	if err := c.Subscriber.Subscribe(ctx, translationSubmittedTopic, group, c.handleSubmissionCreated); err != nil {
		logger.Error("intake consumer subscribe failed",
			"event", "review_intake_consumer_subscribe_failed",
			"module", "translation-quality/review-engine",
			"layer", "worker",
			"topic", translationSubmittedTopic,
			"consumer_group", group,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("intake consumer subscription active",
		"event", "review_intake_consumer_started",
		"module", "translation-quality/review-engine",
		"layer", "worker",
		"consumer_group", group,
	)
	return nil
}

func (c SubmissionIntakeConsumer) handleSubmissionCreated(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	alreadyProcessed, err := c.Dedup.ReserveEvent(ctx, event.EventID, hashPayload(event.Data), c.now().Add(c.dedupTTL()))
	if err != nil {
		logger.Error("intake event dedupe failed",
			"event", "review_intake_event_dedupe_failed",
			"module", "translation-quality/review-engine",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}
	if alreadyProcessed {
		logger.Debug("submission.created replay skipped",
			"event", "review_intake_replayed",
			"module", "translation-quality/review-engine",
			"layer", "worker",
			"event_id", event.EventID,
		)
		return nil
	}

	var payload struct {
		SubmissionID   string `json:"submission_id"`
		SubmitterID    string `json:"submitter_id"`
		SourceText     string `json:"source_text"`
		TargetText     string `json:"target_text"`
		SourceLanguage string `json:"source_language"`
		TargetLanguage string `json:"target_language"`
		Domain         string `json:"domain"`
		Difficulty     string `json:"difficulty"`
	}
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		logger.Error("submission.created payload decode failed",
			"event", "review_intake_decode_failed",
			"module", "translation-quality/review-engine",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}

	if _, err := c.Registrar.RegisterSubmission(ctx, commands.RegisterSubmissionCommand{
		SubmissionID:   payload.SubmissionID,
		SubmitterID:    payload.SubmitterID,
		SourceText:     payload.SourceText,
		TargetText:     payload.TargetText,
		SourceLanguage: payload.SourceLanguage,
		TargetLanguage: payload.TargetLanguage,
		Domain:         payload.Domain,
		Difficulty:     payload.Difficulty,
	}); err != nil {
		// Malformed upstream payloads are dropped after logging; retrying
		// cannot repair them and would wedge the consumer group.
		if errors.Is(err, domainerrors.ErrInvalidReviewInput) {
			logger.Warn("submission.created payload rejected",
				"event", "review_intake_payload_rejected",
				"module", "translation-quality/review-engine",
				"layer", "worker",
				"event_id", event.EventID,
				"submission_id", strings.TrimSpace(payload.SubmissionID),
				"error", err.Error(),
			)
			return nil
		}
		logger.Error("submission.created registration failed",
			"event", "review_intake_register_failed",
			"module", "translation-quality/review-engine",
			"layer", "worker",
			"event_id", event.EventID,
			"submission_id", strings.TrimSpace(payload.SubmissionID),
			"error", err.Error(),
		)
		return err
	}

	logger.Info("submission.created consumed",
		"event", "review_intake_consumed",
		"module", "translation-quality/review-engine",
		"layer", "worker",
		"event_id", event.EventID,
		"submission_id", strings.TrimSpace(payload.SubmissionID),
	)
	return nil
}

func (c SubmissionIntakeConsumer) now() time.Time {
	now := time.Now().UTC()
	if c.Clock != nil {
		now = c.Clock.Now().UTC()
	}
	return now
}

func (c SubmissionIntakeConsumer) dedupTTL() time.Duration {
	if c.DedupTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return c.DedupTTL
}
