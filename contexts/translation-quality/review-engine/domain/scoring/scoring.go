package scoring

import (
	"math"
	"time"

	"crowdlingo/contexts/translation-quality/review-engine/domain/entities"
)

// Policy bundles every tunable constant of the reputation and consensus
// algorithms. Thresholds and rates are policy, not mechanism: they live here
// so they can be tuned and tested without touching the update code.
type Policy struct {
	// ELO-style reputation update.
	BaselineScore       float64 // new contributors start here
	LogisticScale       float64 // spread of the expected-outcome curve
	BaseKFactor         float64 // learning rate for a brand-new contributor
	MinKFactor          float64 // K never decays below this
	KDecayContributions float64 // contributions that halve the K-factor

	// Review weight derivation.
	WeightFloor float64
	WeightCap   float64

	// Normalized rating per review action.
	AcceptNeutralRating  float64 // accept without an explicit quality rating
	RejectMagnitude      float64
	SuggestEditMagnitude float64

	// suggest_edit settles as partial agreement at this fraction of the
	// consensus magnitude.
	SuggestEditSettleFactor float64

	// Consensus thresholds.
	MinReviews             int
	ApproveThreshold       float64
	RejectThreshold        float64
	StrongOpinionThreshold float64 // per-review |weighted_score| counted as a strong opinion

	// Inactivity decay (batch job, never the synchronous review path).
	DecayInactiveAfter time.Duration
	DecayFactor        float64 // fraction of the distance to baseline removed per run
}

// DefaultPolicy returns the production constants. The rationale for each
// value is documented in DESIGN.md.
func DefaultPolicy() Policy {
	return Policy{
		BaselineScore:       100.0,
		LogisticScale:       400.0,
		BaseKFactor:         16.0,
		MinKFactor:          2.0,
		KDecayContributions: 20.0,

		WeightFloor: 1.0,
		WeightCap:   3.0,

		AcceptNeutralRating:  0.8,
		RejectMagnitude:      1.0,
		SuggestEditMagnitude: 0.25,

		SuggestEditSettleFactor: 0.5,

		MinReviews:             3,
		ApproveThreshold:       2.0,
		RejectThreshold:        -2.0,
		StrongOpinionThreshold: 1.5,

		DecayInactiveAfter: 90 * 24 * time.Hour,
		DecayFactor:        0.10,
	}
}

// NormalizedRating maps a review decision to the unit-scale contribution that
// gets multiplied by the reviewer's weight. Accept scales with the quality
// rating, reject is a fixed negative, suggest_edit is a small positive
// (engagement, not endorsement).
func (p Policy) NormalizedRating(action entities.ReviewAction, rating int) float64 {
	switch action {
	case entities.ReviewActionAccept:
		if rating == 0 {
			return p.AcceptNeutralRating
		}
		return float64(rating) / 5.0
	case entities.ReviewActionReject:
		return -p.RejectMagnitude
	case entities.ReviewActionSuggestEdit:
		return p.SuggestEditMagnitude
	default:
		return 0
	}
}

// ReviewWeight derives the consensus multiplier from a reputation score.
// Weight scales linearly above baseline, floored so nobody counts for less
// than a novice and capped so no single reviewer can dominate consensus.
func (p Policy) ReviewWeight(score float64) float64 {
	return Clamp(1.0+(score-p.BaselineScore)/100.0, p.WeightFloor, p.WeightCap)
}

// ExpectedOutcome is the logistic expectation of agreeing with consensus for
// a contributor at the given score, relative to baseline.
func (p Policy) ExpectedOutcome(score float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (p.BaselineScore-score)/p.LogisticScale))
}

// KFactor shrinks with contribution volume so veteran reputations move more
// slowly than newcomers.
func (p Policy) KFactor(contributions int) float64 {
	if contributions < 0 {
		contributions = 0
	}
	k := p.BaseKFactor / (1.0 + float64(contributions)/p.KDecayContributions)
	return math.Max(k, p.MinKFactor)
}

// NextScore applies one ELO-style update. observed is 1 for agreement and 0
// for disagreement; magnitude in [0,1] scales by consensus strength so a
// unanimous outcome moves reputation more than a narrow majority.
func (p Policy) NextScore(score float64, contributions int, agreed bool, magnitude float64) float64 {
	observed := 0.0
	if agreed {
		observed = 1.0
	}
	magnitude = Clamp(magnitude, 0, 1)
	return score + p.KFactor(contributions)*magnitude*(observed-p.ExpectedOutcome(score))
}

// ConsensusMagnitude measures how one-sided the review set was: the live
// aggregate normalized by the total weight behind it, in [0,1].
func (p Policy) ConsensusMagnitude(weightedScore float64, totalWeight float64) float64 {
	if totalWeight <= 0 {
		return 0
	}
	return Clamp(math.Abs(weightedScore)/totalWeight, 0, 1)
}

// Rank thresholds over reputation score. Documented constants, level 1-5.
var rankBands = []struct {
	min   float64
	rank  entities.Rank
	level int
}{
	{750, entities.RankGrandmaster, 5},
	{500, entities.RankMaster, 4},
	{300, entities.RankExpert, 3},
	{150, entities.RankIntermediate, 2},
	{math.Inf(-1), entities.RankNovice, 1},
}

// RankFor classifies a reputation score into its rank band.
func RankFor(score float64) (entities.Rank, int) {
	for _, band := range rankBands {
		if score >= band.min {
			return band.rank, band.level
		}
	}
	return entities.RankNovice, 1
}

func Clamp(value float64, low float64, high float64) float64 {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}

// NewBaselineReputation is the lazily-created record for a contributor's
// first contribution.
func (p Policy) NewBaselineReputation(userID string, now time.Time) entities.Reputation {
	rank, level := RankFor(p.BaselineScore)
	first := now.UTC()
	return entities.Reputation{
		UserID:              userID,
		ReputationScore:     p.BaselineScore,
		ReviewWeight:        p.ReviewWeight(p.BaselineScore),
		Rank:                rank,
		RankLevel:           level,
		FirstContributionAt: &first,
		LastContributionAt:  &first,
		CreatedAt:           now.UTC(),
		UpdatedAt:           now.UTC(),
	}
}
