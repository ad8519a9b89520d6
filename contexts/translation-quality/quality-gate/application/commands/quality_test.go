package commands_test

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	qualitygate "crowdlingo/contexts/translation-quality/quality-gate"
	"crowdlingo/contexts/translation-quality/quality-gate/domain/entities"
	domainerrors "crowdlingo/contexts/translation-quality/quality-gate/domain/errors"
	"crowdlingo/contexts/translation-quality/quality-gate/ports"
)

func newGateModule(t *testing.T) qualitygate.Module {
	t.Helper()
	return qualitygate.NewInMemoryModule(nil)
}

func seedSubmission(module qualitygate.Module, submissionID string, submitterID string, status string) {
	module.Store.SetSubmission(ports.SubmissionProjection{
		SubmissionID:   submissionID,
		SubmitterID:    submitterID,
		SourceText:     "Where is the nearest clinic?",
		TargetText:     "Iko wapi kliniki ya karibu?",
		SourceLanguage: "en",
		TargetLanguage: "sw",
		Domain:         "healthcare",
		Difficulty:     "medium",
		Status:         status,
		ReviewCount:    3,
	})
}

func strongSignals(submissionID string, contributorID string) entities.QualitySignals {
	return entities.QualitySignals{
		SubmissionID:      submissionID,
		ContributorID:     contributorID,
		CompletionSeconds: 180,
		RequiredFields:    5,
		CompletedFields:   5,
		HasLocation:       true,
		Latitude:          -6.8,
		Longitude:         39.28,
		AccuracyMeters:    4,
		PhotoCount:        3,
		ConsistencyIssues: 0,
		CapturedAt:        time.Now().UTC(),
	}
}

func TestApprovedHighQualitySubmissionMaterializesPair(t *testing.T) {
	module := newGateModule(t)
	ctx := context.Background()
	seedSubmission(module, "sub-1", "user-1", "approved")
	module.Store.SetSignals(strongSignals("sub-1", "user-1"))

	result, err := module.Quality.EvaluateQuality(ctx, "sub-1")
	if err != nil {
		t.Fatalf("EvaluateQuality: %v", err)
	}
	if math.Abs(result.Record.OverallScore-0.97) > 1e-9 {
		t.Fatalf("overall score = %v, want 0.97", result.Record.OverallScore)
	}
	if !result.Record.SuitableForTraining {
		t.Fatal("record should be suitable for training")
	}
	if !result.PairMaterial {
		t.Fatal("expected a validated pair")
	}
	if !result.Pair.Exportable() {
		t.Fatal("pair should be exportable")
	}
	if result.Pair.ValidatedAt == nil {
		t.Fatal("pair should carry a validation timestamp")
	}
	if result.Pair.ContributorID != "user-1" {
		t.Fatalf("pair contributor = %q, want user-1", result.Pair.ContributorID)
	}
}

func TestApprovedButLowQualityYieldsNoPair(t *testing.T) {
	module := newGateModule(t)
	ctx := context.Background()
	seedSubmission(module, "sub-1", "user-1", "approved")
	module.Store.SetSignals(entities.QualitySignals{
		SubmissionID:    "sub-1",
		ContributorID:   "user-1",
		RequiredFields:  5,
		CompletedFields: 2,
		CapturedAt:      time.Now().UTC(),
	})

	result, err := module.Quality.EvaluateQuality(ctx, "sub-1")
	if err != nil {
		t.Fatalf("EvaluateQuality: %v", err)
	}
	if result.Record.SuitableForTraining {
		t.Fatal("incomplete submission must not qualify for training")
	}
	if result.PairMaterial {
		t.Fatal("no pair should be materialized")
	}
	if _, found, err := module.Store.GetPairBySubmission(ctx, "sub-1"); err != nil || found {
		t.Fatalf("pair lookup = found %v err %v, want absent", found, err)
	}
}

func TestPendingSubmissionNeverQualifies(t *testing.T) {
	module := newGateModule(t)
	ctx := context.Background()
	seedSubmission(module, "sub-1", "user-1", "submitted")
	module.Store.SetSignals(strongSignals("sub-1", "user-1"))

	result, err := module.Quality.EvaluateQuality(ctx, "sub-1")
	if err != nil {
		t.Fatalf("EvaluateQuality: %v", err)
	}
	if result.Record.SuitableForTraining {
		t.Fatal("unapproved submission must not qualify")
	}
	if result.PairMaterial {
		t.Fatal("no pair should exist before consensus approval")
	}
}

func TestLaterRejectionInvalidatesPairWithoutTouchingExportCount(t *testing.T) {
	module := newGateModule(t)
	ctx := context.Background()
	seedSubmission(module, "sub-1", "user-1", "approved")
	module.Store.SetSignals(strongSignals("sub-1", "user-1"))

	if _, err := module.Quality.EvaluateQuality(ctx, "sub-1"); err != nil {
		t.Fatalf("EvaluateQuality: %v", err)
	}
	exported, err := module.Exports.ExportTrainingBatch(ctx, ports.PairFilter{})
	if err != nil {
		t.Fatalf("ExportTrainingBatch: %v", err)
	}
	if len(exported) != 1 || exported[0].ExportCount != 1 {
		t.Fatalf("export batch = %+v, want one pair with count 1", exported)
	}

	seedSubmission(module, "sub-1", "user-1", "rejected")
	result, err := module.Quality.EvaluateQuality(ctx, "sub-1")
	if err != nil {
		t.Fatalf("re-evaluation: %v", err)
	}
	if !result.PairInvalidated {
		t.Fatal("pair should be invalidated after rejection")
	}
	pair, found, err := module.Store.GetPairBySubmission(ctx, "sub-1")
	if err != nil || !found {
		t.Fatalf("pair lookup = found %v err %v", found, err)
	}
	if pair.Exportable() {
		t.Fatal("invalidated pair must not be exportable")
	}
	if pair.ExportCount != 1 {
		t.Fatalf("export count = %d, want 1 (invalidation must not reset it)", pair.ExportCount)
	}

	batch, err := module.Exports.ExportTrainingBatch(ctx, ports.PairFilter{})
	if err != nil {
		t.Fatalf("second export: %v", err)
	}
	if len(batch) != 0 {
		t.Fatalf("second export returned %d pairs, want none", len(batch))
	}
}

func TestFastCompletionFlagsAnomaly(t *testing.T) {
	module := newGateModule(t)
	ctx := context.Background()
	seedSubmission(module, "sub-1", "user-1", "approved")
	signals := strongSignals("sub-1", "user-1")
	signals.CompletionSeconds = 9
	module.Store.SetSignals(signals)

	result, err := module.Quality.EvaluateQuality(ctx, "sub-1")
	if err != nil {
		t.Fatalf("EvaluateQuality: %v", err)
	}
	if !result.Record.IsAnomaly {
		t.Fatal("fast completion should be flagged")
	}
	if !strings.Contains(result.Record.AnomalyReason, "suspiciously fast") {
		t.Fatalf("anomaly reason = %q", result.Record.AnomalyReason)
	}
	if result.Record.SuitableForTraining {
		t.Fatal("anomalous submission must not qualify")
	}
}

func TestDuplicateTargetTextFlagsAnomaly(t *testing.T) {
	module := newGateModule(t)
	ctx := context.Background()
	longText := strings.Repeat("maji safi ya kunywa ", 8)
	for _, id := range []string{"sub-1", "sub-2"} {
		module.Store.SetSubmission(ports.SubmissionProjection{
			SubmissionID:   id,
			SubmitterID:    "user-1",
			SourceText:     "clean drinking water",
			TargetText:     longText,
			SourceLanguage: "en",
			TargetLanguage: "sw",
			Status:         "approved",
		})
		signals := strongSignals(id, "user-1")
		signals.HasLocation = false
		module.Store.SetSignals(signals)
	}

	result, err := module.Quality.EvaluateQuality(ctx, "sub-1")
	if err != nil {
		t.Fatalf("EvaluateQuality: %v", err)
	}
	if !result.Record.IsAnomaly {
		t.Fatal("repeated identical target text should be flagged")
	}
	if !strings.Contains(result.Record.AnomalyReason, "identical target text") {
		t.Fatalf("anomaly reason = %q", result.Record.AnomalyReason)
	}
}

func TestCoordinateReuseFlagsAnomaly(t *testing.T) {
	module := newGateModule(t)
	ctx := context.Background()
	for i, id := range []string{"sub-1", "sub-2", "sub-3"} {
		seedSubmission(module, id, "user-1", "approved")
		signals := strongSignals(id, "user-1")
		signals.CompletionSeconds = float64(120 + i)
		module.Store.SetSignals(signals)
	}

	result, err := module.Quality.EvaluateQuality(ctx, "sub-1")
	if err != nil {
		t.Fatalf("EvaluateQuality: %v", err)
	}
	if !result.Record.IsAnomaly {
		t.Fatal("coordinate reuse beyond the limit should be flagged")
	}
	if !strings.Contains(result.Record.AnomalyReason, "coordinates") {
		t.Fatalf("anomaly reason = %q", result.Record.AnomalyReason)
	}
}

func TestRecordSignalsTriggersReEvaluation(t *testing.T) {
	module := newGateModule(t)
	ctx := context.Background()
	seedSubmission(module, "sub-1", "user-1", "approved")

	// No captured signals: the neutral defaults still clear the bar.
	first, err := module.Quality.EvaluateQuality(ctx, "sub-1")
	if err != nil {
		t.Fatalf("EvaluateQuality: %v", err)
	}
	if !first.Record.SuitableForTraining {
		t.Fatalf("neutral-default record = %+v, want suitable", first.Record)
	}

	err = module.Quality.RecordSignals(ctx, entities.QualitySignals{
		SubmissionID:    "sub-1",
		ContributorID:   "user-1",
		RequiredFields:  5,
		CompletedFields: 1,
	})
	if err != nil {
		t.Fatalf("RecordSignals: %v", err)
	}

	record, err := module.Queries.GetQualityRecord(ctx, "sub-1")
	if err != nil {
		t.Fatalf("GetQualityRecord: %v", err)
	}
	if record.SuitableForTraining {
		t.Fatal("weak signals should withdraw training suitability")
	}
	pair, found, err := module.Store.GetPairBySubmission(ctx, "sub-1")
	if err != nil || !found {
		t.Fatalf("pair lookup = found %v err %v", found, err)
	}
	if pair.Exportable() {
		t.Fatal("pair should be invalidated after the signals arrived")
	}
}

func TestRecordSignalsValidation(t *testing.T) {
	module := newGateModule(t)
	ctx := context.Background()

	err := module.Quality.RecordSignals(ctx, entities.QualitySignals{ContributorID: "user-1"})
	if err != domainerrors.ErrInvalidQualityInput {
		t.Fatalf("missing submission id: err = %v", err)
	}
	err = module.Quality.RecordSignals(ctx, entities.QualitySignals{
		SubmissionID:  "sub-1",
		ContributorID: "user-1",
		PhotoCount:    -1,
	})
	if err != domainerrors.ErrInvalidQualityInput {
		t.Fatalf("negative photo count: err = %v", err)
	}
}

func TestEvaluateUnknownSubmission(t *testing.T) {
	module := newGateModule(t)
	if _, err := module.Quality.EvaluateQuality(context.Background(), "missing"); err != domainerrors.ErrSubmissionNotFound {
		t.Fatalf("err = %v, want ErrSubmissionNotFound", err)
	}
}

func TestEvaluationIsIdempotent(t *testing.T) {
	module := newGateModule(t)
	ctx := context.Background()
	seedSubmission(module, "sub-1", "user-1", "approved")
	module.Store.SetSignals(strongSignals("sub-1", "user-1"))

	first, err := module.Quality.EvaluateQuality(ctx, "sub-1")
	if err != nil {
		t.Fatalf("first evaluation: %v", err)
	}
	second, err := module.Quality.EvaluateQuality(ctx, "sub-1")
	if err != nil {
		t.Fatalf("second evaluation: %v", err)
	}
	if second.Pair.PairID != first.Pair.PairID {
		t.Fatalf("pair id changed across evaluations: %q vs %q", first.Pair.PairID, second.Pair.PairID)
	}
	if !second.Pair.ValidatedAt.Equal(*first.Pair.ValidatedAt) {
		t.Fatal("validation timestamp should survive re-evaluation")
	}
	if !second.Record.CalculatedAt.Equal(first.Record.CalculatedAt) {
		t.Fatal("calculated-at should survive re-evaluation")
	}
}

func TestExportBatchIncrementsCounts(t *testing.T) {
	module := newGateModule(t)
	ctx := context.Background()
	for _, id := range []string{"sub-1", "sub-2"} {
		seedSubmission(module, id, "user-"+id, "approved")
		signals := strongSignals(id, "user-"+id)
		signals.HasLocation = false
		signals.Latitude = 0
		signals.Longitude = 0
		module.Store.SetSignals(signals)
		if _, err := module.Quality.EvaluateQuality(ctx, id); err != nil {
			t.Fatalf("EvaluateQuality(%s): %v", id, err)
		}
	}

	first, err := module.Exports.ExportTrainingBatch(ctx, ports.PairFilter{SourceLanguage: "en", TargetLanguage: "sw"})
	if err != nil {
		t.Fatalf("first export: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("first export returned %d pairs, want 2", len(first))
	}
	for _, pair := range first {
		if pair.ExportCount != 1 {
			t.Fatalf("pair %s export count = %d, want 1", pair.PairID, pair.ExportCount)
		}
	}

	second, err := module.Exports.ExportTrainingBatch(ctx, ports.PairFilter{Limit: 1})
	if err != nil {
		t.Fatalf("second export: %v", err)
	}
	if len(second) != 1 || second[0].ExportCount != 2 {
		t.Fatalf("second export = %+v, want one pair with count 2", second)
	}
}
