package memory

import (
	"context"
	"errors"
	"testing"

	domainerrors "crowdlingo/contexts/translation-quality/reputation-service/domain/errors"
	"crowdlingo/contexts/translation-quality/reputation-service/ports"
)

func TestGetContributorProfileDerivesReadFields(t *testing.T) {
	store := NewStore()

	profile, err := store.GetContributorProfile(context.Background(), "user_reviewer")
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if profile.Rank != ports.RankExpert {
		t.Fatalf("expected expert rank for score 320, got %s", profile.Rank)
	}
	if profile.RankLevel != 3 {
		t.Fatalf("expected rank level 3, got %d", profile.RankLevel)
	}
	if profile.ReviewWeight != 3.0 {
		t.Fatalf("expected capped weight 3.0, got %v", profile.ReviewWeight)
	}
	if profile.RankProgress.NextRankScore != 500 || profile.RankProgress.ScoreToNextRank != 180 {
		t.Fatalf("unexpected rank progress: %+v", profile.RankProgress)
	}
	if profile.ReviewAgreementRate <= 0 || profile.ReviewAgreementRate >= 1 {
		t.Fatalf("expected agreement rate in (0,1), got %v", profile.ReviewAgreementRate)
	}
}

func TestGetContributorProfileUnknownUser(t *testing.T) {
	store := NewStore()

	_, err := store.GetContributorProfile(context.Background(), "user_ghost")
	if !errors.Is(err, domainerrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetLeaderboardFiltersByRank(t *testing.T) {
	store := NewStore()

	board, err := store.GetLeaderboard(context.Background(), ports.LeaderboardFilter{
		Rank:         ports.RankExpert,
		Limit:        50,
		ViewerUserID: "user_reviewer",
	})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if board.TotalContributors != 1 {
		t.Fatalf("expected 1 expert contributor, got %d", board.TotalContributors)
	}
	if len(board.Entries) != 1 || board.Entries[0].UserID != "user_reviewer" {
		t.Fatalf("unexpected entries: %+v", board.Entries)
	}
	if board.YourPosition != 1 {
		t.Fatalf("expected viewer position 1, got %d", board.YourPosition)
	}
}

func TestGetLeaderboardOrdersByScore(t *testing.T) {
	store := NewStore()

	board, err := store.GetLeaderboard(context.Background(), ports.LeaderboardFilter{Limit: 3})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if len(board.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(board.Entries))
	}
	if board.Entries[0].UserID != "user_linguist" || board.Entries[1].UserID != "user_veteran" {
		t.Fatalf("unexpected ordering: %+v", board.Entries)
	}
	for i, entry := range board.Entries {
		if entry.Position != i+1 {
			t.Fatalf("entry %d carries position %d", i, entry.Position)
		}
	}
	if board.TotalContributors != 5 {
		t.Fatalf("expected 5 contributors overall, got %d", board.TotalContributors)
	}
}

func TestGetLeaderboardOffsetBeyondEnd(t *testing.T) {
	store := NewStore()

	board, err := store.GetLeaderboard(context.Background(), ports.LeaderboardFilter{Limit: 10, Offset: 50})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if len(board.Entries) != 0 {
		t.Fatalf("expected no entries past the end, got %d", len(board.Entries))
	}
	if board.TotalContributors != 5 {
		t.Fatalf("expected total 5, got %d", board.TotalContributors)
	}
}
