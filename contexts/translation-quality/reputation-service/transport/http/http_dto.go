package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type LeaderboardRequest struct {
	Rank   string
	Limit  string
	Offset string
}

type RankProgressDTO struct {
	CurrentScore    float64 `json:"current_score"`
	NextRankScore   float64 `json:"next_rank_score"`
	ScoreToNextRank float64 `json:"score_to_next_rank"`
}

type ContributorProfileResponse struct {
	UserID string `json:"user_id"`

	ReputationScore float64         `json:"reputation_score"`
	ReviewWeight    float64         `json:"review_weight"`
	Rank            string          `json:"rank"`
	RankLevel       int             `json:"rank_level"`
	RankProgress    RankProgressDTO `json:"rank_progress"`

	TranslationsSubmitted int     `json:"translations_submitted"`
	TranslationsAccepted  int     `json:"translations_accepted"`
	TranslationsRejected  int     `json:"translations_rejected"`
	AccuracyRate          float64 `json:"accuracy_rate"`

	ReviewsSubmitted    int     `json:"reviews_submitted"`
	ReviewsUpvoted      int     `json:"reviews_upvoted"`
	ReviewsDownvoted    int     `json:"reviews_downvoted"`
	ReviewAgreementRate float64 `json:"review_agreement_rate"`

	FirstContributionAt string `json:"first_contribution_at,omitempty"`
	LastContributionAt  string `json:"last_contribution_at,omitempty"`
}

type LeaderboardEntryDTO struct {
	Position        int     `json:"position"`
	UserID          string  `json:"user_id"`
	Rank            string  `json:"rank"`
	RankLevel       int     `json:"rank_level"`
	ReputationScore float64 `json:"reputation_score"`
	ReviewWeight    float64 `json:"review_weight"`
	AccuracyRate    float64 `json:"accuracy_rate"`
	Contributions   int     `json:"contributions"`
}

type LeaderboardResponse struct {
	Leaderboard       []LeaderboardEntryDTO `json:"leaderboard"`
	TotalContributors int                   `json:"total_contributors"`
	YourPosition      int                   `json:"your_position,omitempty"`
}
