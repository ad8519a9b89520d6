package workers

import (
	"context"
	"log/slog"
	"time"

	application "crowdlingo/contexts/translation-quality/review-engine/application"
	"crowdlingo/contexts/translation-quality/review-engine/domain/scoring"
	"crowdlingo/contexts/translation-quality/review-engine/ports"
)

// ReputationDecayJob pulls inactive contributors back toward the baseline
// score. Decay runs as a scheduled batch, never on the synchronous review
// path, so review latency is unaffected by the size of the reputation table.
type ReputationDecayJob struct {
	Reputations ports.ReputationRepository
	Policy      scoring.Policy
	Clock       ports.Clock
	Logger      *slog.Logger
}

// RunOnce applies one decay step to every contributor whose last contribution
// is older than the inactivity window. Each step removes a fixed fraction of
// the distance to baseline, so repeated runs converge without overshooting.
func (j ReputationDecayJob) RunOnce(ctx context.Context) (int, error) {
	logger := application.ResolveLogger(j.Logger)
	now := time.Now().UTC()
	if j.Clock != nil {
		now = j.Clock.Now().UTC()
	}
	cutoff := now.Add(-j.Policy.DecayInactiveAfter)
	logger.Info("reputation decay cycle started",
		"event", "reputation_decay_started",
		"module", "translation-quality/review-engine",
		"layer", "worker",
		"cutoff", cutoff.Format(time.RFC3339),
	)

	reputations, err := j.Reputations.ListReputations(ctx)
	if err != nil {
		logger.Error("reputation decay list failed",
			"event", "reputation_decay_list_failed",
			"module", "translation-quality/review-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return 0, err
	}

	decayed := 0
	for _, reputation := range reputations {
		if reputation.LastContributionAt == nil || !reputation.LastContributionAt.Before(cutoff) {
			continue
		}
		if reputation.ReputationScore == j.Policy.BaselineScore {
			continue
		}
		previous := reputation.ReputationScore
		reputation.ReputationScore = previous - (previous-j.Policy.BaselineScore)*j.Policy.DecayFactor
		reputation.ReviewWeight = j.Policy.ReviewWeight(reputation.ReputationScore)
		reputation.Rank, reputation.RankLevel = scoring.RankFor(reputation.ReputationScore)
		reputation.UpdatedAt = now
		if err := j.Reputations.SaveReputation(ctx, reputation); err != nil {
			logger.Error("reputation decay save failed",
				"event", "reputation_decay_save_failed",
				"module", "translation-quality/review-engine",
				"layer", "worker",
				"user_id", reputation.UserID,
				"error", err.Error(),
			)
			return decayed, err
		}
		decayed++
		logger.Debug("reputation decayed toward baseline",
			"event", "reputation_decay_applied",
			"module", "translation-quality/review-engine",
			"layer", "worker",
			"user_id", reputation.UserID,
			"previous_score", previous,
			"new_score", reputation.ReputationScore,
		)
	}

	logger.Info("reputation decay cycle completed",
		"event", "reputation_decay_completed",
		"module", "translation-quality/review-engine",
		"layer", "worker",
		"scanned", len(reputations),
		"decayed", decayed,
	)
	return decayed, nil
}
