package entities

import "time"

type Rank string

const (
	RankNovice       Rank = "novice"
	RankIntermediate Rank = "intermediate"
	RankExpert       Rank = "expert"
	RankMaster       Rank = "master"
	RankGrandmaster  Rank = "grandmaster"
)

// Reputation is one contributor's trust record. Created lazily on first
// contribution and kept for the lifetime of the user. ReviewWeight is always
// a derived function of ReputationScore and never set independently.
type Reputation struct {
	UserID string

	TranslationsSubmitted int
	TranslationsAccepted  int
	TranslationsRejected  int

	ReviewsSubmitted int
	ReviewsUpvoted   int
	ReviewsDownvoted int

	ReputationScore float64
	ReviewWeight    float64
	AccuracyRate    float64

	Rank      Rank
	RankLevel int

	FirstContributionAt *time.Time
	LastContributionAt  *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Contributions is the activity volume that drives K-factor decay: veterans
// move more slowly than newcomers.
func (r Reputation) Contributions() int {
	return r.TranslationsSubmitted + r.ReviewsSubmitted
}
