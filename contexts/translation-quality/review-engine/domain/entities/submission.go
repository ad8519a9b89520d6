package entities

import "time"

type SubmissionStatus string

const (
	SubmissionStatusDraft         SubmissionStatus = "draft"
	SubmissionStatusSubmitted     SubmissionStatus = "submitted"
	SubmissionStatusInReview      SubmissionStatus = "in_review"
	SubmissionStatusApproved      SubmissionStatus = "approved"
	SubmissionStatusRejected      SubmissionStatus = "rejected"
	SubmissionStatusNeedsRevision SubmissionStatus = "needs_revision"
)

// Submission is a crowd-submitted translation pair under review. The aggregate
// fields (ReviewCount, WeightedReviewScore, Status past submitted) are owned by
// the consensus aggregator and never written by anything else.
type Submission struct {
	SubmissionID   string
	SubmitterID    string
	SourceText     string
	TargetText     string
	SourceLanguage string
	TargetLanguage string
	Domain         string
	Difficulty     string

	Status              SubmissionStatus
	ReviewCount         int
	WeightedReviewScore float64

	// AggregateVersion guards concurrent aggregate recomputation: every
	// aggregate write must carry the version it read, and stale writers fail.
	AggregateVersion int64

	ApprovedAt      *time.Time
	ApprovedBy      string
	RejectionReason string

	SubmittedAt time.Time
	UpdatedAt   time.Time
}

// Reviewable reports whether new reviews may land on the submission.
func (s Submission) Reviewable() bool {
	return s.Status == SubmissionStatusSubmitted || s.Status == SubmissionStatusInReview
}

// Resolved reports whether the submission carries a consensus outcome.
func (s Submission) Resolved() bool {
	switch s.Status {
	case SubmissionStatusApproved, SubmissionStatusRejected, SubmissionStatusNeedsRevision:
		return true
	default:
		return false
	}
}

// ConsensusSummary is the read model for a submission's live aggregate.
type ConsensusSummary struct {
	SubmissionID        string
	Status              SubmissionStatus
	ReviewCount         int
	WeightedReviewScore float64
	Accepts             int
	Rejects             int
	SuggestedEdits      int
	TotalWeight         float64
}
