package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RecordSignalsRequest struct {
	ContributorID     string  `json:"contributor_id"`
	CompletionSeconds float64 `json:"completion_seconds,omitempty"`
	RequiredFields    int     `json:"required_fields,omitempty"`
	CompletedFields   int     `json:"completed_fields,omitempty"`
	HasLocation       bool    `json:"has_location,omitempty"`
	Latitude          float64 `json:"latitude,omitempty"`
	Longitude         float64 `json:"longitude,omitempty"`
	AccuracyMeters    float64 `json:"accuracy_meters,omitempty"`
	PhotoCount        int     `json:"photo_count,omitempty"`
	ConsistencyIssues int     `json:"consistency_issues,omitempty"`
}

type QualityRecordResponse struct {
	SubmissionID        string  `json:"submission_id"`
	OverallScore        float64 `json:"overall_score"`
	CompletenessScore   float64 `json:"completeness_score"`
	GPSAccuracyScore    float64 `json:"gps_accuracy_score"`
	PhotoQualityScore   float64 `json:"photo_quality_score"`
	ResponseTimeScore   float64 `json:"response_time_score"`
	ConsistencyScore    float64 `json:"consistency_score"`
	IsAnomaly           bool    `json:"is_anomaly"`
	AnomalyReason       string  `json:"anomaly_reason,omitempty"`
	SuitableForTraining bool    `json:"suitable_for_training"`
}

type EvaluationResponse struct {
	Record          QualityRecordResponse `json:"record"`
	Pair            *PairResponse         `json:"pair,omitempty"`
	PairInvalidated bool                  `json:"pair_invalidated,omitempty"`
}

type PairResponse struct {
	PairID              string     `json:"pair_id"`
	SubmissionID        string     `json:"submission_id"`
	SourceText          string     `json:"source_text"`
	TargetText          string     `json:"target_text"`
	SourceLanguage      string     `json:"source_language"`
	TargetLanguage      string     `json:"target_language"`
	Domain              string     `json:"domain,omitempty"`
	Difficulty          string     `json:"difficulty,omitempty"`
	ContributorID       string     `json:"contributor_id"`
	FinalQualityScore   float64    `json:"final_quality_score"`
	ReviewCount         int        `json:"review_count"`
	IsValidated         bool       `json:"is_validated"`
	SuitableForTraining bool       `json:"suitable_for_training"`
	ExportCount         int        `json:"export_count"`
	ValidatedAt         *time.Time `json:"validated_at,omitempty"`
}

type PairListResponse struct {
	Items []PairResponse `json:"items"`
}

type CorpusStatsResponse struct {
	TotalPairs      int     `json:"total_pairs"`
	ExportablePairs int     `json:"exportable_pairs"`
	TotalExports    int     `json:"total_exports"`
	AverageQuality  float64 `json:"average_quality"`
}
