package entities

import "time"

// QualitySignals are the objective measurements captured alongside a
// submission. They are inputs to scoring, never outputs: the gate recomputes
// scores from signals on every evaluation.
type QualitySignals struct {
	SubmissionID  string
	ContributorID string

	CompletionSeconds float64
	RequiredFields    int
	CompletedFields   int

	HasLocation    bool
	Latitude       float64
	Longitude      float64
	AccuracyMeters float64

	PhotoCount        int
	ConsistencyIssues int

	CapturedAt time.Time
}

// QualityRecord is the per-submission quality evaluation. One record per
// submission, upserted on every re-evaluation.
type QualityRecord struct {
	SubmissionID string

	OverallScore      float64
	CompletenessScore float64
	GPSAccuracyScore  float64
	PhotoQualityScore float64
	ResponseTimeScore float64
	ConsistencyScore  float64

	IsAnomaly     bool
	AnomalyReason string

	SuitableForTraining bool

	CalculatedAt time.Time
	UpdatedAt    time.Time
}

// ValidatedPair is the ML-export row materialized from an approved,
// quality-passing submission. ExportCount is monotonic: eligibility flips
// never reset it, so downstream training runs keep an honest usage history.
type ValidatedPair struct {
	PairID       string
	SubmissionID string

	SourceText     string
	TargetText     string
	SourceLanguage string
	TargetLanguage string
	Domain         string
	Difficulty     string
	ContributorID  string

	FinalQualityScore float64
	ReviewCount       int

	IsValidated         bool
	SuitableForTraining bool
	ExportCount         int

	ValidatedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Exportable reports whether the pair may appear in a training batch.
func (p ValidatedPair) Exportable() bool {
	return p.IsValidated && p.SuitableForTraining
}
