package queries

import (
	"context"
	"log/slog"
	"strings"

	"crowdlingo/contexts/translation-quality/quality-gate/domain/entities"
	domainerrors "crowdlingo/contexts/translation-quality/quality-gate/domain/errors"
	"crowdlingo/contexts/translation-quality/quality-gate/ports"
)

// QualityQueries serves the gate's read side.
type QualityQueries struct {
	Records ports.QualityRepository
	Pairs   ports.PairRepository
	Logger  *slog.Logger
}

func (q QualityQueries) GetQualityRecord(ctx context.Context, submissionID string) (entities.QualityRecord, error) {
	submissionID = strings.TrimSpace(submissionID)
	if submissionID == "" {
		return entities.QualityRecord{}, domainerrors.ErrInvalidQualityInput
	}
	return q.Records.GetQualityRecord(ctx, submissionID)
}

func (q QualityQueries) GetPair(ctx context.Context, pairID string) (entities.ValidatedPair, error) {
	pairID = strings.TrimSpace(pairID)
	if pairID == "" {
		return entities.ValidatedPair{}, domainerrors.ErrInvalidQualityInput
	}
	return q.Pairs.GetPair(ctx, pairID)
}

func (q QualityQueries) ListPairs(ctx context.Context, filter ports.PairFilter) ([]entities.ValidatedPair, error) {
	return q.Pairs.ListPairs(ctx, filter)
}

// CorpusStats summarizes the validated corpus for operators.
type CorpusStats struct {
	TotalPairs      int
	ExportablePairs int
	TotalExports    int
	AverageQuality  float64
}

func (q QualityQueries) GetCorpusStats(ctx context.Context) (CorpusStats, error) {
	pairs, err := q.Pairs.ListPairs(ctx, ports.PairFilter{})
	if err != nil {
		return CorpusStats{}, err
	}

	stats := CorpusStats{TotalPairs: len(pairs)}
	qualitySum := 0.0
	for _, pair := range pairs {
		if pair.Exportable() {
			stats.ExportablePairs++
		}
		stats.TotalExports += pair.ExportCount
		qualitySum += pair.FinalQualityScore
	}
	if len(pairs) > 0 {
		stats.AverageQuality = qualitySum / float64(len(pairs))
	}
	return stats, nil
}
