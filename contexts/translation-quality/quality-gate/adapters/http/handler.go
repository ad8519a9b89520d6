package httpadapter

import (
	"context"
	"log/slog"

	"crowdlingo/contexts/translation-quality/quality-gate/application/commands"
	"crowdlingo/contexts/translation-quality/quality-gate/application/queries"
	"crowdlingo/contexts/translation-quality/quality-gate/domain/entities"
	"crowdlingo/contexts/translation-quality/quality-gate/ports"
	httptransport "crowdlingo/contexts/translation-quality/quality-gate/transport/http"
)

type Handler struct {
	Quality commands.QualityUseCase
	Exports commands.ExportUseCase
	Queries queries.QualityQueries
	Logger  *slog.Logger
}

func (h Handler) RecordSignalsHandler(
	ctx context.Context,
	submissionID string,
	req httptransport.RecordSignalsRequest,
) error {
	return h.Quality.RecordSignals(ctx, entities.QualitySignals{
		SubmissionID:      submissionID,
		ContributorID:     req.ContributorID,
		CompletionSeconds: req.CompletionSeconds,
		RequiredFields:    req.RequiredFields,
		CompletedFields:   req.CompletedFields,
		HasLocation:       req.HasLocation,
		Latitude:          req.Latitude,
		Longitude:         req.Longitude,
		AccuracyMeters:    req.AccuracyMeters,
		PhotoCount:        req.PhotoCount,
		ConsistencyIssues: req.ConsistencyIssues,
	})
}

func (h Handler) EvaluateQualityHandler(ctx context.Context, submissionID string) (httptransport.EvaluationResponse, error) {
	result, err := h.Quality.EvaluateQuality(ctx, submissionID)
	if err != nil {
		return httptransport.EvaluationResponse{}, err
	}
	response := httptransport.EvaluationResponse{
		Record:          recordResponse(result.Record),
		PairInvalidated: result.PairInvalidated,
	}
	if result.PairMaterial {
		pair := pairResponse(result.Pair)
		response.Pair = &pair
	}
	return response, nil
}

func (h Handler) GetQualityRecordHandler(ctx context.Context, submissionID string) (httptransport.QualityRecordResponse, error) {
	record, err := h.Queries.GetQualityRecord(ctx, submissionID)
	if err != nil {
		return httptransport.QualityRecordResponse{}, err
	}
	return recordResponse(record), nil
}

func (h Handler) GetPairHandler(ctx context.Context, pairID string) (httptransport.PairResponse, error) {
	pair, err := h.Queries.GetPair(ctx, pairID)
	if err != nil {
		return httptransport.PairResponse{}, err
	}
	return pairResponse(pair), nil
}

// PairListQuery carries the decoded filter parameters of a pair listing.
type PairListQuery struct {
	OnlyExportable bool
	SourceLanguage string
	TargetLanguage string
	Domain         string
	Limit          int
}

func (h Handler) ListPairsHandler(ctx context.Context, query PairListQuery) (httptransport.PairListResponse, error) {
	pairs, err := h.Queries.ListPairs(ctx, ports.PairFilter{
		OnlyExportable: query.OnlyExportable,
		SourceLanguage: query.SourceLanguage,
		TargetLanguage: query.TargetLanguage,
		Domain:         query.Domain,
		Limit:          query.Limit,
	})
	if err != nil {
		return httptransport.PairListResponse{}, err
	}
	return httptransport.PairListResponse{Items: mapPairs(pairs)}, nil
}

func (h Handler) ExportBatchHandler(ctx context.Context, query PairListQuery) (httptransport.PairListResponse, error) {
	pairs, err := h.Exports.ExportTrainingBatch(ctx, ports.PairFilter{
		SourceLanguage: query.SourceLanguage,
		TargetLanguage: query.TargetLanguage,
		Domain:         query.Domain,
		Limit:          query.Limit,
	})
	if err != nil {
		return httptransport.PairListResponse{}, err
	}
	return httptransport.PairListResponse{Items: mapPairs(pairs)}, nil
}

func (h Handler) GetCorpusStatsHandler(ctx context.Context) (httptransport.CorpusStatsResponse, error) {
	stats, err := h.Queries.GetCorpusStats(ctx)
	if err != nil {
		return httptransport.CorpusStatsResponse{}, err
	}
	return httptransport.CorpusStatsResponse{
		TotalPairs:      stats.TotalPairs,
		ExportablePairs: stats.ExportablePairs,
		TotalExports:    stats.TotalExports,
		AverageQuality:  stats.AverageQuality,
	}, nil
}

func recordResponse(record entities.QualityRecord) httptransport.QualityRecordResponse {
	return httptransport.QualityRecordResponse{
		SubmissionID:        record.SubmissionID,
		OverallScore:        record.OverallScore,
		CompletenessScore:   record.CompletenessScore,
		GPSAccuracyScore:    record.GPSAccuracyScore,
		PhotoQualityScore:   record.PhotoQualityScore,
		ResponseTimeScore:   record.ResponseTimeScore,
		ConsistencyScore:    record.ConsistencyScore,
		IsAnomaly:           record.IsAnomaly,
		AnomalyReason:       record.AnomalyReason,
		SuitableForTraining: record.SuitableForTraining,
	}
}

func pairResponse(pair entities.ValidatedPair) httptransport.PairResponse {
	return httptransport.PairResponse{
		PairID:              pair.PairID,
		SubmissionID:        pair.SubmissionID,
		SourceText:          pair.SourceText,
		TargetText:          pair.TargetText,
		SourceLanguage:      pair.SourceLanguage,
		TargetLanguage:      pair.TargetLanguage,
		Domain:              pair.Domain,
		Difficulty:          pair.Difficulty,
		ContributorID:       pair.ContributorID,
		FinalQualityScore:   pair.FinalQualityScore,
		ReviewCount:         pair.ReviewCount,
		IsValidated:         pair.IsValidated,
		SuitableForTraining: pair.SuitableForTraining,
		ExportCount:         pair.ExportCount,
		ValidatedAt:         pair.ValidatedAt,
	}
}

func mapPairs(pairs []entities.ValidatedPair) []httptransport.PairResponse {
	items := make([]httptransport.PairResponse, 0, len(pairs))
	for _, pair := range pairs {
		items = append(items, pairResponse(pair))
	}
	return items
}
