package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domainerrors "crowdlingo/contexts/translation-quality/reputation-service/domain/errors"
	"crowdlingo/contexts/translation-quality/reputation-service/ports"
)

type Store struct {
	mu sync.RWMutex

	// Read-only projection of the review engine's reputation records.
	profiles map[string]ports.ContributorProfile
}

func NewStore() *Store {
	now := time.Now().UTC()
	store := &Store{
		profiles: make(map[string]ports.ContributorProfile),
	}

	store.SetProfile(buildSeedProfile("user_linguist", 820, 412, 395, 11, 640, 590, 38, now.Add(-3*time.Hour)))
	store.SetProfile(buildSeedProfile("user_veteran", 540, 210, 188, 16, 330, 290, 31, now.Add(-5*time.Hour)))
	store.SetProfile(buildSeedProfile("user_reviewer", 320, 64, 55, 7, 280, 231, 40, now.Add(-26*time.Hour)))
	store.SetProfile(buildSeedProfile("user_regular", 180, 42, 33, 8, 55, 39, 12, now.Add(-50*time.Hour)))
	store.SetProfile(buildSeedProfile("user_newcomer", 100, 2, 0, 0, 1, 0, 0, now.Add(-20*time.Minute)))

	return store
}

// SetProfile upserts a projected reputation record, recomputing the derived
// read-side fields from the raw counters and score.
func (s *Store) SetProfile(profile ports.ContributorProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[strings.TrimSpace(profile.UserID)] = normalizeProfile(profile)
}

func (s *Store) GetContributorProfile(_ context.Context, userID string) (ports.ContributorProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[strings.TrimSpace(userID)]
	if !ok {
		return ports.ContributorProfile{}, domainerrors.ErrNotFound
	}
	return profile, nil
}

func (s *Store) GetLeaderboard(_ context.Context, filter ports.LeaderboardFilter) (ports.Leaderboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ordered := s.sortedProfilesLocked()
	allEntries := make([]ports.LeaderboardEntry, 0, len(ordered))
	for _, profile := range ordered {
		if filter.Rank != "" && profile.Rank != filter.Rank {
			continue
		}
		allEntries = append(allEntries, ports.LeaderboardEntry{
			Position:        len(allEntries) + 1,
			UserID:          profile.UserID,
			Rank:            profile.Rank,
			RankLevel:       profile.RankLevel,
			ReputationScore: profile.ReputationScore,
			ReviewWeight:    profile.ReviewWeight,
			AccuracyRate:    profile.AccuracyRate,
			Contributions:   profile.TranslationsSubmitted + profile.ReviewsSubmitted,
		})
	}

	totalContributors := len(allEntries)
	yourPosition := 0
	if viewer := strings.TrimSpace(filter.ViewerUserID); viewer != "" {
		for _, entry := range allEntries {
			if entry.UserID == viewer {
				yourPosition = entry.Position
				break
			}
		}
	}

	if filter.Offset >= totalContributors {
		return ports.Leaderboard{
			Entries:           []ports.LeaderboardEntry{},
			TotalContributors: totalContributors,
			YourPosition:      yourPosition,
		}, nil
	}

	end := filter.Offset + filter.Limit
	if end > totalContributors {
		end = totalContributors
	}
	entries := append([]ports.LeaderboardEntry(nil), allEntries[filter.Offset:end]...)

	return ports.Leaderboard{
		Entries:           entries,
		TotalContributors: totalContributors,
		YourPosition:      yourPosition,
	}, nil
}

func (s *Store) sortedProfilesLocked() []ports.ContributorProfile {
	profiles := make([]ports.ContributorProfile, 0, len(s.profiles))
	for _, profile := range s.profiles {
		profiles = append(profiles, profile)
	}
	sort.SliceStable(profiles, func(i, j int) bool {
		if profiles[i].ReputationScore == profiles[j].ReputationScore {
			return profiles[i].UserID < profiles[j].UserID
		}
		return profiles[i].ReputationScore > profiles[j].ReputationScore
	})
	return profiles
}

func normalizeProfile(profile ports.ContributorProfile) ports.ContributorProfile {
	profile.UserID = strings.TrimSpace(profile.UserID)
	profile.Rank, profile.RankLevel = rankFor(profile.ReputationScore)
	profile.ReviewWeight = weightFor(profile.ReputationScore)
	profile.RankProgress = progressFor(profile.ReputationScore, profile.Rank)

	judged := profile.TranslationsAccepted + profile.TranslationsRejected
	if judged > 0 {
		profile.AccuracyRate = float64(profile.TranslationsAccepted) / float64(judged)
	}
	settled := profile.ReviewsUpvoted + profile.ReviewsDownvoted
	if settled > 0 {
		profile.ReviewAgreementRate = float64(profile.ReviewsUpvoted) / float64(settled)
	}
	return profile
}

func rankFor(score float64) (ports.Rank, int) {
	switch {
	case score >= 750:
		return ports.RankGrandmaster, 5
	case score >= 500:
		return ports.RankMaster, 4
	case score >= 300:
		return ports.RankExpert, 3
	case score >= 150:
		return ports.RankIntermediate, 2
	default:
		return ports.RankNovice, 1
	}
}

func weightFor(score float64) float64 {
	weight := 1.0 + (score-100.0)/100.0
	if weight < 1.0 {
		return 1.0
	}
	if weight > 3.0 {
		return 3.0
	}
	return weight
}

func progressFor(score float64, rank ports.Rank) ports.RankProgress {
	next := ports.NextRankScore(rank)
	progress := ports.RankProgress{
		CurrentScore:  score,
		NextRankScore: next,
	}
	if next > score {
		progress.ScoreToNextRank = next - score
	}
	return progress
}

func buildSeedProfile(
	userID string,
	score float64,
	translationsSubmitted int,
	translationsAccepted int,
	translationsRejected int,
	reviewsSubmitted int,
	reviewsUpvoted int,
	reviewsDownvoted int,
	lastContributionAt time.Time,
) ports.ContributorProfile {
	first := lastContributionAt.Add(-90 * 24 * time.Hour)
	return ports.ContributorProfile{
		UserID:                userID,
		ReputationScore:       score,
		TranslationsSubmitted: translationsSubmitted,
		TranslationsAccepted:  translationsAccepted,
		TranslationsRejected:  translationsRejected,
		ReviewsSubmitted:      reviewsSubmitted,
		ReviewsUpvoted:        reviewsUpvoted,
		ReviewsDownvoted:      reviewsDownvoted,
		FirstContributionAt:   &first,
		LastContributionAt:    &lastContributionAt,
	}
}

var _ ports.Repository = (*Store)(nil)
