package commands

import (
	"context"
	"log/slog"

	application "crowdlingo/contexts/translation-quality/quality-gate/application"
	"crowdlingo/contexts/translation-quality/quality-gate/domain/entities"
	"crowdlingo/contexts/translation-quality/quality-gate/ports"
)

// ExportUseCase hands out training batches and accounts for every handout.
type ExportUseCase struct {
	Pairs  ports.PairRepository
	Clock  ports.Clock
	Logger *slog.Logger
}

// ExportTrainingBatch lists exportable pairs matching the filter and bumps
// each pair's export counter. The increment happens on the storage side so
// concurrent exports never lose counts.
func (uc ExportUseCase) ExportTrainingBatch(
	ctx context.Context,
	filter ports.PairFilter,
) ([]entities.ValidatedPair, error) {
	logger := application.ResolveLogger(uc.Logger)
	filter.OnlyExportable = true
	pairs, err := uc.Pairs.ListPairs(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := uc.Clock.Now().UTC()
	for i := range pairs {
		if err := uc.Pairs.IncrementExportCount(ctx, pairs[i].PairID, now); err != nil {
			return nil, err
		}
		pairs[i].ExportCount++
	}

	logger.Info("training batch exported",
		"event", "training_batch_exported",
		"module", "translation-quality/quality-gate",
		"layer", "application",
		"pair_count", len(pairs),
		"source_language", filter.SourceLanguage,
		"target_language", filter.TargetLanguage,
	)
	return pairs, nil
}
