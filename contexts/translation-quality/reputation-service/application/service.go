package application

import (
	"context"
	"log/slog"
	"strings"

	domainerrors "crowdlingo/contexts/translation-quality/reputation-service/domain/errors"
	"crowdlingo/contexts/translation-quality/reputation-service/ports"
)

type Service struct {
	Repo   ports.Repository
	Logger *slog.Logger
}

func (s Service) GetContributorProfile(ctx context.Context, userID string) (ports.ContributorProfile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ports.ContributorProfile{}, domainerrors.ErrInvalidRequest
	}
	return s.Repo.GetContributorProfile(ctx, userID)
}

func (s Service) GetLeaderboard(ctx context.Context, filter ports.LeaderboardFilter) (ports.Leaderboard, error) {
	if filter.Rank != "" && !ports.IsValidRank(filter.Rank) {
		return ports.Leaderboard{}, domainerrors.ErrInvalidRequest
	}
	if filter.Offset < 0 || filter.Limit < 0 {
		return ports.Leaderboard{}, domainerrors.ErrInvalidRequest
	}
	if filter.Limit == 0 {
		filter.Limit = 50
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	filter.ViewerUserID = strings.TrimSpace(filter.ViewerUserID)

	board, err := s.Repo.GetLeaderboard(ctx, filter)
	if err != nil {
		return ports.Leaderboard{}, err
	}

	resolveLogger(s.Logger).Debug("reputation leaderboard served",
		"event", "reputation_leaderboard_served",
		"module", "translation-quality/reputation-service",
		"layer", "application",
		"rank", string(filter.Rank),
		"limit", filter.Limit,
		"offset", filter.Offset,
		"total_contributors", board.TotalContributors,
	)

	return board, nil
}
