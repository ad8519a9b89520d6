package entities

import "time"

type ReviewAction string

const (
	ReviewActionAccept      ReviewAction = "accept"
	ReviewActionReject      ReviewAction = "reject"
	ReviewActionSuggestEdit ReviewAction = "suggest_edit"
)

func (a ReviewAction) Valid() bool {
	switch a {
	case ReviewActionAccept, ReviewActionReject, ReviewActionSuggestEdit:
		return true
	default:
		return false
	}
}

// ImprovementNotes is the structured feedback block attached to a review.
// Sub-scores use the 1-5 scale; zero means the dimension was not rated.
type ImprovementNotes struct {
	Grammar  int `json:"grammar,omitempty"`
	Accuracy int `json:"accuracy,omitempty"`
	Fluency  int `json:"fluency,omitempty"`
	Cultural int `json:"cultural,omitempty"`
}

// Review is one reviewer's decision on one submission. At most one review
// exists per (submission, reviewer) pair; amendments go through update, never
// a second insert.
//
// ReviewerReputation, ReviewWeight and WeightedScore are snapshots taken when
// the decision was recorded. They are part of the audit trail and must never
// be recomputed from the reviewer's live reputation.
type Review struct {
	ReviewID     string
	SubmissionID string
	ReviewerID   string

	Action        ReviewAction
	QualityRating int // 1-5, zero when the reviewer gave no rating
	Feedback      string
	SuggestedEdit string
	Notes         ImprovementNotes

	ReviewerReputation float64
	ReviewWeight       float64
	WeightedScore      float64

	AgreementVotes    int
	DisagreementVotes int

	// Superseded marks reviews from a cycle that ended in resubmission. They
	// stay on the ledger for history but no longer feed the live aggregate.
	Superseded bool

	// SettledConsensus records the consensus status this review was last
	// scored into reputation against. Empty until the first settle; the
	// reputation updater skips reviews already settled for the same outcome.
	SettledConsensus SubmissionStatus

	ReviewedAt time.Time
	UpdatedAt  time.Time
}

// EffectiveScore is the review's contribution to the live aggregate.
func (r Review) EffectiveScore() float64 {
	if r.Superseded {
		return 0
	}
	return r.WeightedScore
}
