package scoring

import (
	"math"
	"testing"
	"time"

	"crowdlingo/contexts/translation-quality/review-engine/domain/entities"
)

func TestNormalizedRating(t *testing.T) {
	policy := DefaultPolicy()

	cases := []struct {
		name   string
		action entities.ReviewAction
		rating int
		want   float64
	}{
		{"accept rated 5", entities.ReviewActionAccept, 5, 1.0},
		{"accept rated 3", entities.ReviewActionAccept, 3, 0.6},
		{"accept unrated is neutral positive", entities.ReviewActionAccept, 0, 0.8},
		{"reject is fixed negative", entities.ReviewActionReject, 4, -1.0},
		{"suggest_edit is small positive", entities.ReviewActionSuggestEdit, 0, 0.25},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := policy.NormalizedRating(tc.action, tc.rating)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("expected %f, got %f", tc.want, got)
			}
		})
	}
}

func TestReviewWeightStaysClamped(t *testing.T) {
	policy := DefaultPolicy()

	for _, score := range []float64{-500, 0, 50, 100, 150, 200, 300, 1000, 1e9} {
		weight := policy.ReviewWeight(score)
		if weight < policy.WeightFloor || weight > policy.WeightCap {
			t.Fatalf("weight %f out of [%f, %f] for score %f",
				weight, policy.WeightFloor, policy.WeightCap, score)
		}
	}
	if got := policy.ReviewWeight(100); got != 1.0 {
		t.Fatalf("baseline score must map to weight 1.0, got %f", got)
	}
	if got := policy.ReviewWeight(200); got != 2.0 {
		t.Fatalf("score 200 must map to weight 2.0, got %f", got)
	}
	if got := policy.ReviewWeight(500); got != 3.0 {
		t.Fatalf("score 500 must cap at weight 3.0, got %f", got)
	}
}

func TestNextScoreMovesTowardOutcome(t *testing.T) {
	policy := DefaultPolicy()

	up := policy.NextScore(100, 0, true, 1.0)
	if up <= 100 {
		t.Fatalf("agreement must raise a baseline score, got %f", up)
	}
	down := policy.NextScore(100, 0, false, 1.0)
	if down >= 100 {
		t.Fatalf("disagreement must lower a baseline score, got %f", down)
	}
	if policy.NextScore(100, 0, true, 0) != 100 {
		t.Fatalf("zero magnitude must be a no-op")
	}

	narrow := policy.NextScore(100, 0, true, 0.3)
	unanimous := policy.NextScore(100, 0, true, 1.0)
	if unanimous-100 <= narrow-100 {
		t.Fatalf("unanimous consensus must move reputation more than a narrow one")
	}
}

func TestKFactorDecaysWithVolume(t *testing.T) {
	policy := DefaultPolicy()

	newcomer := policy.KFactor(0)
	veteran := policy.KFactor(200)
	if veteran >= newcomer {
		t.Fatalf("veteran K (%f) must be below newcomer K (%f)", veteran, newcomer)
	}
	if got := policy.KFactor(1000000); got != policy.MinKFactor {
		t.Fatalf("K must floor at %f, got %f", policy.MinKFactor, got)
	}
}

func TestRankBands(t *testing.T) {
	cases := []struct {
		score float64
		rank  entities.Rank
		level int
	}{
		{0, entities.RankNovice, 1},
		{100, entities.RankNovice, 1},
		{149.99, entities.RankNovice, 1},
		{150, entities.RankIntermediate, 2},
		{300, entities.RankExpert, 3},
		{500, entities.RankMaster, 4},
		{750, entities.RankGrandmaster, 5},
		{10000, entities.RankGrandmaster, 5},
	}
	for _, tc := range cases {
		rank, level := RankFor(tc.score)
		if rank != tc.rank || level != tc.level {
			t.Fatalf("score %f: expected %s/%d, got %s/%d", tc.score, tc.rank, tc.level, rank, level)
		}
	}
}

func TestTenAgreementsApproachWeightCap(t *testing.T) {
	policy := DefaultPolicy()
	rep := policy.NewBaselineReputation("user-1", time.Now().UTC())

	if rep.ReviewWeight != 1.0 {
		t.Fatalf("baseline weight must be 1.0, got %f", rep.ReviewWeight)
	}
	for i := 0; i < 10; i++ {
		before := rep.ReputationScore
		rep.ReputationScore = policy.NextScore(rep.ReputationScore, rep.Contributions(), true, 1.0)
		rep.ReviewsSubmitted++
		rep.ReviewWeight = policy.ReviewWeight(rep.ReputationScore)
		if rep.ReputationScore <= before {
			t.Fatalf("iteration %d: score must strictly increase (%f -> %f)", i, before, rep.ReputationScore)
		}
		if rep.ReviewWeight > policy.WeightCap {
			t.Fatalf("iteration %d: weight %f exceeded cap", i, rep.ReviewWeight)
		}
	}
}

func TestConsensusMagnitude(t *testing.T) {
	policy := DefaultPolicy()

	if got := policy.ConsensusMagnitude(3.0, 3.0); got != 1.0 {
		t.Fatalf("unanimous set must have magnitude 1, got %f", got)
	}
	if got := policy.ConsensusMagnitude(-1.0, 5.0); got != 0.2 {
		t.Fatalf("expected magnitude 0.2, got %f", got)
	}
	if got := policy.ConsensusMagnitude(2.0, 0); got != 0 {
		t.Fatalf("zero weight must yield zero magnitude, got %f", got)
	}
}
