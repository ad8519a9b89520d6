package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "crowdlingo/contexts/translation-quality/quality-gate/application"
	"crowdlingo/contexts/translation-quality/quality-gate/domain/entities"
	domainerrors "crowdlingo/contexts/translation-quality/quality-gate/domain/errors"
	"crowdlingo/contexts/translation-quality/quality-gate/domain/grading"
	"crowdlingo/contexts/translation-quality/quality-gate/ports"
)

const (
	eventQualityEvaluated = "quality.evaluated"
	eventPairValidated    = "pair.validated"
	eventPairInvalidated  = "pair.invalidated"

	submissionStatusApproved = "approved"

	duplicateTextWindow = 24 * time.Hour
)

// EvaluationResult bundles the stored record with the pair action taken.
type EvaluationResult struct {
	Record          entities.QualityRecord
	Pair            entities.ValidatedPair
	PairMaterial    bool
	PairInvalidated bool
}

// QualityUseCase evaluates submission quality and keeps the validated-pair
// table in sync with eligibility.
type QualityUseCase struct {
	Submissions ports.SubmissionReader
	Signals     ports.SignalSource
	Recorder    ports.SignalRecorder
	Probe       ports.AnomalyProbe
	Records     ports.QualityRepository
	Pairs       ports.PairRepository
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Policy      grading.Policy
	Logger      *slog.Logger
}

// EvaluateQuality recomputes the quality record for a submission and
// materializes or invalidates its validated pair accordingly. The operation
// is idempotent: re-running against unchanged inputs rewrites the same state.
func (uc QualityUseCase) EvaluateQuality(ctx context.Context, submissionID string) (EvaluationResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	submissionID = strings.TrimSpace(submissionID)
	if submissionID == "" {
		return EvaluationResult{}, domainerrors.ErrInvalidQualityInput
	}
	logger.Info("quality evaluation started",
		"event", "quality_evaluation_started",
		"module", "translation-quality/quality-gate",
		"layer", "application",
		"submission_id", submissionID,
	)

	submission, err := uc.Submissions.GetSubmission(ctx, submissionID)
	if err != nil {
		return EvaluationResult{}, err
	}
	signals, found, err := uc.Signals.GetSignals(ctx, submissionID)
	if err != nil {
		return EvaluationResult{}, err
	}
	if !found {
		// No captured signals: score from neutral defaults so approval alone
		// never fabricates a training-grade record.
		signals = entities.QualitySignals{
			SubmissionID:  submissionID,
			ContributorID: submission.SubmitterID,
		}
	}

	now := uc.now()
	completeness := uc.Policy.CompletenessScore(signals.CompletedFields, signals.RequiredFields)
	gpsAccuracy := uc.Policy.GPSAccuracyScore(signals)
	photoQuality := uc.Policy.PhotoQualityScore(signals.PhotoCount)
	responseTime := uc.Policy.ResponseTimeScore(signals)
	consistency := uc.Policy.ConsistencyScore(signals.ConsistencyIssues)
	overall := uc.Policy.Overall(completeness, gpsAccuracy, photoQuality, responseTime, consistency)

	isAnomaly, anomalyReason, err := uc.detectAnomalies(ctx, submission, signals, now)
	if err != nil {
		return EvaluationResult{}, err
	}

	approved := strings.EqualFold(strings.TrimSpace(submission.Status), submissionStatusApproved)
	suitable := uc.Policy.SuitableForTraining(overall, completeness, isAnomaly, approved)

	record := entities.QualityRecord{
		SubmissionID:        submissionID,
		OverallScore:        overall,
		CompletenessScore:   completeness,
		GPSAccuracyScore:    gpsAccuracy,
		PhotoQualityScore:   photoQuality,
		ResponseTimeScore:   responseTime,
		ConsistencyScore:    consistency,
		IsAnomaly:           isAnomaly,
		AnomalyReason:       anomalyReason,
		SuitableForTraining: suitable,
		CalculatedAt:        now,
		UpdatedAt:           now,
	}
	if existing, err := uc.Records.GetQualityRecord(ctx, submissionID); err == nil {
		record.CalculatedAt = existing.CalculatedAt
	} else if !errors.Is(err, domainerrors.ErrQualityRecordNotFound) {
		return EvaluationResult{}, err
	}
	if err := uc.Records.SaveQualityRecord(ctx, record); err != nil {
		return EvaluationResult{}, err
	}
	if err := uc.appendEvent(ctx, eventQualityEvaluated, submissionID, now, map[string]any{
		"submission_id":         submissionID,
		"overall_score":         overall,
		"is_anomaly":            isAnomaly,
		"suitable_for_training": suitable,
	}); err != nil {
		return EvaluationResult{}, err
	}

	result := EvaluationResult{Record: record}
	if suitable {
		pair, err := uc.materializePair(ctx, submission, record, now)
		if err != nil {
			return EvaluationResult{}, err
		}
		result.Pair = pair
		result.PairMaterial = true
	} else {
		pair, invalidated, err := uc.invalidatePair(ctx, submissionID, now)
		if err != nil {
			return EvaluationResult{}, err
		}
		result.Pair = pair
		result.PairInvalidated = invalidated
	}

	logger.Info("quality evaluation completed",
		"event", "quality_evaluation_completed",
		"module", "translation-quality/quality-gate",
		"layer", "application",
		"submission_id", submissionID,
		"overall_score", overall,
		"is_anomaly", isAnomaly,
		"suitable_for_training", suitable,
	)
	return result, nil
}

// RecordSignals stores the objective measurements captured alongside a
// submission. When a quality record already exists the submission is
// re-evaluated so the record reflects the new signals.
func (uc QualityUseCase) RecordSignals(ctx context.Context, signals entities.QualitySignals) error {
	logger := application.ResolveLogger(uc.Logger)
	signals.SubmissionID = strings.TrimSpace(signals.SubmissionID)
	signals.ContributorID = strings.TrimSpace(signals.ContributorID)
	if signals.SubmissionID == "" || signals.ContributorID == "" {
		return domainerrors.ErrInvalidQualityInput
	}
	if signals.CompletionSeconds < 0 || signals.RequiredFields < 0 || signals.CompletedFields < 0 ||
		signals.PhotoCount < 0 || signals.ConsistencyIssues < 0 {
		return domainerrors.ErrInvalidQualityInput
	}
	if signals.CapturedAt.IsZero() {
		signals.CapturedAt = uc.now()
	}
	if err := uc.Recorder.SaveSignals(ctx, signals); err != nil {
		return err
	}
	logger.Info("submission signals recorded",
		"event", "quality_signals_recorded",
		"module", "translation-quality/quality-gate",
		"layer", "application",
		"submission_id", signals.SubmissionID,
		"contributor_id", signals.ContributorID,
	)

	if _, err := uc.Records.GetQualityRecord(ctx, signals.SubmissionID); err != nil {
		if errors.Is(err, domainerrors.ErrQualityRecordNotFound) {
			return nil
		}
		return err
	}
	_, err := uc.EvaluateQuality(ctx, signals.SubmissionID)
	return err
}

func (uc QualityUseCase) detectAnomalies(
	ctx context.Context,
	submission ports.SubmissionProjection,
	signals entities.QualitySignals,
	now time.Time,
) (bool, string, error) {
	var reasons []string

	if signals.CompletionSeconds > 0 && signals.CompletionSeconds < uc.Policy.MinCompletionSeconds {
		reasons = append(reasons, fmt.Sprintf("completed suspiciously fast (%.0fs < %.0fs)",
			signals.CompletionSeconds, uc.Policy.MinCompletionSeconds))
	}

	if uc.Probe != nil {
		if len(submission.TargetText) > uc.Policy.DuplicateTextMinLength {
			duplicates, err := uc.Probe.CountDuplicateTargetText(
				ctx,
				submission.SubmitterID,
				submission.TargetText,
				now.Add(-duplicateTextWindow),
			)
			if err != nil {
				return false, "", err
			}
			if duplicates > 1 {
				reasons = append(reasons, fmt.Sprintf("identical target text matches %d recent submissions", duplicates))
			}
		}
		if signals.HasLocation {
			uses, err := uc.Probe.CountCoordinateUses(ctx, signals.Latitude, signals.Longitude)
			if err != nil {
				return false, "", err
			}
			if uses > uc.Policy.MaxCoordinateReuse {
				reasons = append(reasons, "coordinates match multiple previous submissions")
			}
		}
	}

	if len(reasons) == 0 {
		return false, "", nil
	}
	return true, strings.Join(reasons, "; "), nil
}

func (uc QualityUseCase) materializePair(
	ctx context.Context,
	submission ports.SubmissionProjection,
	record entities.QualityRecord,
	now time.Time,
) (entities.ValidatedPair, error) {
	pair, found, err := uc.Pairs.GetPairBySubmission(ctx, submission.SubmissionID)
	if err != nil {
		return entities.ValidatedPair{}, err
	}
	freshlyValidated := !found || !pair.Exportable()
	if !found {
		pairID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return entities.ValidatedPair{}, err
		}
		pair = entities.ValidatedPair{
			PairID:       pairID,
			SubmissionID: submission.SubmissionID,
			CreatedAt:    now,
		}
	}

	pair.SourceText = submission.SourceText
	pair.TargetText = submission.TargetText
	pair.SourceLanguage = submission.SourceLanguage
	pair.TargetLanguage = submission.TargetLanguage
	pair.Domain = submission.Domain
	pair.Difficulty = submission.Difficulty
	pair.ContributorID = submission.SubmitterID
	pair.FinalQualityScore = record.OverallScore
	pair.ReviewCount = submission.ReviewCount
	pair.IsValidated = true
	pair.SuitableForTraining = true
	if pair.ValidatedAt == nil {
		validatedAt := now
		pair.ValidatedAt = &validatedAt
	}
	pair.UpdatedAt = now
	if err := uc.Pairs.SavePair(ctx, pair); err != nil {
		return entities.ValidatedPair{}, err
	}

	if freshlyValidated {
		if err := uc.appendEvent(ctx, eventPairValidated, pair.SubmissionID, now, map[string]any{
			"pair_id":             pair.PairID,
			"submission_id":       pair.SubmissionID,
			"final_quality_score": pair.FinalQualityScore,
			"language_pair":       pair.SourceLanguage + "-" + pair.TargetLanguage,
		}); err != nil {
			return entities.ValidatedPair{}, err
		}
	}
	return pair, nil
}

// invalidatePair flips eligibility off without deleting the row or touching
// the export counter.
func (uc QualityUseCase) invalidatePair(
	ctx context.Context,
	submissionID string,
	now time.Time,
) (entities.ValidatedPair, bool, error) {
	pair, found, err := uc.Pairs.GetPairBySubmission(ctx, submissionID)
	if err != nil {
		return entities.ValidatedPair{}, false, err
	}
	if !found || !pair.Exportable() {
		return pair, false, nil
	}

	pair.IsValidated = false
	pair.SuitableForTraining = false
	pair.UpdatedAt = now
	if err := uc.Pairs.SavePair(ctx, pair); err != nil {
		return entities.ValidatedPair{}, false, err
	}
	if err := uc.appendEvent(ctx, eventPairInvalidated, submissionID, now, map[string]any{
		"pair_id":       pair.PairID,
		"submission_id": submissionID,
	}); err != nil {
		return entities.ValidatedPair{}, false, err
	}
	return pair, true, nil
}

func (uc QualityUseCase) appendEvent(
	ctx context.Context,
	eventType string,
	partitionKey string,
	occurredAt time.Time,
	data map[string]any,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "quality-gate",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "partition_key",
		PartitionKey:     partitionKey,
		Data:             payload,
	})
}

func (uc QualityUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
