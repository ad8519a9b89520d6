package httpadapter

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"crowdlingo/contexts/translation-quality/reputation-service/application"
	domainerrors "crowdlingo/contexts/translation-quality/reputation-service/domain/errors"
	"crowdlingo/contexts/translation-quality/reputation-service/ports"
	httptransport "crowdlingo/contexts/translation-quality/reputation-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) GetContributorProfileHandler(
	ctx context.Context,
	userID string,
) (httptransport.ContributorProfileResponse, error) {
	profile, err := h.Service.GetContributorProfile(ctx, userID)
	if err != nil {
		return httptransport.ContributorProfileResponse{}, err
	}

	resp := httptransport.ContributorProfileResponse{
		UserID:          profile.UserID,
		ReputationScore: profile.ReputationScore,
		ReviewWeight:    profile.ReviewWeight,
		Rank:            string(profile.Rank),
		RankLevel:       profile.RankLevel,
		RankProgress: httptransport.RankProgressDTO{
			CurrentScore:    profile.RankProgress.CurrentScore,
			NextRankScore:   profile.RankProgress.NextRankScore,
			ScoreToNextRank: profile.RankProgress.ScoreToNextRank,
		},
		TranslationsSubmitted: profile.TranslationsSubmitted,
		TranslationsAccepted:  profile.TranslationsAccepted,
		TranslationsRejected:  profile.TranslationsRejected,
		AccuracyRate:          profile.AccuracyRate,
		ReviewsSubmitted:      profile.ReviewsSubmitted,
		ReviewsUpvoted:        profile.ReviewsUpvoted,
		ReviewsDownvoted:      profile.ReviewsDownvoted,
		ReviewAgreementRate:   profile.ReviewAgreementRate,
	}
	if profile.FirstContributionAt != nil {
		resp.FirstContributionAt = profile.FirstContributionAt.UTC().Format(time.RFC3339)
	}
	if profile.LastContributionAt != nil {
		resp.LastContributionAt = profile.LastContributionAt.UTC().Format(time.RFC3339)
	}
	return resp, nil
}

func (h Handler) GetLeaderboardHandler(
	ctx context.Context,
	req httptransport.LeaderboardRequest,
	viewerUserID string,
) (httptransport.LeaderboardResponse, error) {
	filter := ports.LeaderboardFilter{
		ViewerUserID: strings.TrimSpace(viewerUserID),
	}
	if strings.TrimSpace(req.Rank) != "" {
		rank, ok := ports.ParseRank(req.Rank)
		if !ok {
			return httptransport.LeaderboardResponse{}, domainerrors.ErrInvalidRequest
		}
		filter.Rank = rank
	}
	if strings.TrimSpace(req.Limit) != "" {
		limit, err := strconv.Atoi(strings.TrimSpace(req.Limit))
		if err != nil {
			return httptransport.LeaderboardResponse{}, domainerrors.ErrInvalidRequest
		}
		filter.Limit = limit
	}
	if strings.TrimSpace(req.Offset) != "" {
		offset, err := strconv.Atoi(strings.TrimSpace(req.Offset))
		if err != nil {
			return httptransport.LeaderboardResponse{}, domainerrors.ErrInvalidRequest
		}
		filter.Offset = offset
	}

	board, err := h.Service.GetLeaderboard(ctx, filter)
	if err != nil {
		return httptransport.LeaderboardResponse{}, err
	}

	resp := httptransport.LeaderboardResponse{
		Leaderboard:       make([]httptransport.LeaderboardEntryDTO, 0, len(board.Entries)),
		TotalContributors: board.TotalContributors,
		YourPosition:      board.YourPosition,
	}
	for _, entry := range board.Entries {
		resp.Leaderboard = append(resp.Leaderboard, httptransport.LeaderboardEntryDTO{
			Position:        entry.Position,
			UserID:          entry.UserID,
			Rank:            string(entry.Rank),
			RankLevel:       entry.RankLevel,
			ReputationScore: entry.ReputationScore,
			ReviewWeight:    entry.ReviewWeight,
			AccuracyRate:    entry.AccuracyRate,
			Contributions:   entry.Contributions,
		})
	}
	return resp, nil
}
