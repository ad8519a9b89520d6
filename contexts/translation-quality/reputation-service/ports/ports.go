package ports

import (
	"context"
	"strings"
	"time"
)

type Rank string

const (
	RankNovice       Rank = "novice"
	RankIntermediate Rank = "intermediate"
	RankExpert       Rank = "expert"
	RankMaster       Rank = "master"
	RankGrandmaster  Rank = "grandmaster"
)

func ParseRank(raw string) (Rank, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(RankNovice):
		return RankNovice, true
	case string(RankIntermediate):
		return RankIntermediate, true
	case string(RankExpert):
		return RankExpert, true
	case string(RankMaster):
		return RankMaster, true
	case string(RankGrandmaster):
		return RankGrandmaster, true
	default:
		return "", false
	}
}

func IsValidRank(rank Rank) bool {
	switch rank {
	case RankNovice, RankIntermediate, RankExpert, RankMaster, RankGrandmaster:
		return true
	default:
		return false
	}
}

// NextRankScore is the score that opens the next rank; zero for the top rank.
func NextRankScore(rank Rank) float64 {
	switch rank {
	case RankNovice:
		return 150
	case RankIntermediate:
		return 300
	case RankExpert:
		return 500
	case RankMaster:
		return 750
	default:
		return 0
	}
}

type RankProgress struct {
	CurrentScore    float64
	NextRankScore   float64
	ScoreToNextRank float64
}

type ContributorProfile struct {
	UserID string

	ReputationScore float64
	ReviewWeight    float64
	Rank            Rank
	RankLevel       int
	RankProgress    RankProgress

	TranslationsSubmitted int
	TranslationsAccepted  int
	TranslationsRejected  int
	AccuracyRate          float64

	ReviewsSubmitted    int
	ReviewsUpvoted      int
	ReviewsDownvoted    int
	ReviewAgreementRate float64

	FirstContributionAt *time.Time
	LastContributionAt  *time.Time
}

type LeaderboardEntry struct {
	Position        int
	UserID          string
	Rank            Rank
	RankLevel       int
	ReputationScore float64
	ReviewWeight    float64
	AccuracyRate    float64
	Contributions   int
}

type Leaderboard struct {
	Entries           []LeaderboardEntry
	TotalContributors int
	YourPosition      int
}

type LeaderboardFilter struct {
	Rank         Rank
	Limit        int
	Offset       int
	ViewerUserID string
}

type Repository interface {
	GetContributorProfile(ctx context.Context, userID string) (ContributorProfile, error)
	GetLeaderboard(ctx context.Context, filter LeaderboardFilter) (Leaderboard, error)
}
