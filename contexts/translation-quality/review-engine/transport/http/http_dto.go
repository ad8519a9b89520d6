package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ImprovementNotesDTO struct {
	Grammar  int `json:"grammar,omitempty"`
	Accuracy int `json:"accuracy,omitempty"`
	Fluency  int `json:"fluency,omitempty"`
	Cultural int `json:"cultural,omitempty"`
}

type SubmitReviewRequest struct {
	SubmissionID  string              `json:"submission_id"`
	Action        string              `json:"action"`
	QualityRating int                 `json:"quality_rating,omitempty"`
	Feedback      string              `json:"feedback,omitempty"`
	SuggestedEdit string              `json:"suggested_edit,omitempty"`
	Notes         ImprovementNotesDTO `json:"improvement_notes,omitempty"`
}

type UpdateReviewRequest struct {
	Action        string              `json:"action"`
	QualityRating int                 `json:"quality_rating,omitempty"`
	Feedback      string              `json:"feedback,omitempty"`
	SuggestedEdit string              `json:"suggested_edit,omitempty"`
	Notes         ImprovementNotesDTO `json:"improvement_notes,omitempty"`
}

type ReviewResponse struct {
	ReviewID           string              `json:"review_id"`
	SubmissionID       string              `json:"submission_id"`
	ReviewerID         string              `json:"reviewer_id"`
	Action             string              `json:"action"`
	QualityRating      int                 `json:"quality_rating,omitempty"`
	Feedback           string              `json:"feedback,omitempty"`
	SuggestedEdit      string              `json:"suggested_edit,omitempty"`
	Notes              ImprovementNotesDTO `json:"improvement_notes,omitempty"`
	ReviewerReputation float64             `json:"reviewer_reputation"`
	ReviewWeight       float64             `json:"review_weight"`
	WeightedScore      float64             `json:"weighted_score"`
	Superseded         bool                `json:"superseded"`
	SubmissionStatus   string              `json:"submission_status"`
}

type ConsensusResponse struct {
	SubmissionID        string  `json:"submission_id"`
	Status              string  `json:"status"`
	ReviewCount         int     `json:"review_count"`
	WeightedReviewScore float64 `json:"weighted_review_score"`
	Accepts             int     `json:"accepts"`
	Rejects             int     `json:"rejects"`
	SuggestedEdits      int     `json:"suggested_edits"`
	TotalWeight         float64 `json:"total_weight"`
}

type ReviewListResponse struct {
	Items []ReviewResponse `json:"items"`
}

type RegisterSubmissionRequest struct {
	SubmissionID   string `json:"submission_id"`
	SourceText     string `json:"source_text"`
	TargetText     string `json:"target_text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	Domain         string `json:"domain,omitempty"`
	Difficulty     string `json:"difficulty,omitempty"`
}

type ResubmitSubmissionRequest struct {
	SourceText string `json:"source_text,omitempty"`
	TargetText string `json:"target_text"`
}

type SubmissionResponse struct {
	SubmissionID        string  `json:"submission_id"`
	SubmitterID         string  `json:"submitter_id"`
	SourceText          string  `json:"source_text"`
	TargetText          string  `json:"target_text"`
	SourceLanguage      string  `json:"source_language"`
	TargetLanguage      string  `json:"target_language"`
	Domain              string  `json:"domain,omitempty"`
	Difficulty          string  `json:"difficulty,omitempty"`
	Status              string  `json:"status"`
	ReviewCount         int     `json:"review_count"`
	WeightedReviewScore float64 `json:"weighted_review_score"`
	ApprovedBy          string  `json:"approved_by,omitempty"`
	RejectionReason     string  `json:"rejection_reason,omitempty"`
}
