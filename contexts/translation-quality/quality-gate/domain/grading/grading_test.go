package grading

import (
	"math"
	"testing"

	"crowdlingo/contexts/translation-quality/quality-gate/domain/entities"
)

func TestCompletenessScore(t *testing.T) {
	policy := DefaultPolicy()

	if got := policy.CompletenessScore(0, 0); got != 1.0 {
		t.Fatalf("no required fields must score 1.0, got %f", got)
	}
	if got := policy.CompletenessScore(3, 4); got != 0.75 {
		t.Fatalf("expected 0.75, got %f", got)
	}
	if got := policy.CompletenessScore(9, 4); got != 1.0 {
		t.Fatalf("overfilled must clamp to 1.0, got %f", got)
	}
}

func TestGPSAccuracyBands(t *testing.T) {
	policy := DefaultPolicy()

	cases := []struct {
		name    string
		signals entities.QualitySignals
		want    float64
	}{
		{"missing location", entities.QualitySignals{}, 0.0},
		{"invalid latitude", entities.QualitySignals{HasLocation: true, Latitude: 95, Longitude: 10, AccuracyMeters: 5}, 0.0},
		{"tight fix", entities.QualitySignals{HasLocation: true, Latitude: 1, Longitude: 1, AccuracyMeters: 4}, 1.0},
		{"city block", entities.QualitySignals{HasLocation: true, Latitude: 1, Longitude: 1, AccuracyMeters: 40}, 0.6},
		{"very loose", entities.QualitySignals{HasLocation: true, Latitude: 1, Longitude: 1, AccuracyMeters: 400}, 0.2},
		{"unreported accuracy defaults loose", entities.QualitySignals{HasLocation: true, Latitude: 1, Longitude: 1}, 0.4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := policy.GPSAccuracyScore(tc.signals); got != tc.want {
				t.Fatalf("expected %f, got %f", tc.want, got)
			}
		})
	}
}

func TestPhotoAndConsistencyBands(t *testing.T) {
	policy := DefaultPolicy()

	if got := policy.PhotoQualityScore(0); got != 0.5 {
		t.Fatalf("no photos must be neutral, got %f", got)
	}
	if got := policy.PhotoQualityScore(3); got != 1.0 {
		t.Fatalf("three photos must max out, got %f", got)
	}
	if got := policy.ConsistencyScore(0); got != 1.0 {
		t.Fatalf("clean data must score 1.0, got %f", got)
	}
	if got := policy.ConsistencyScore(5); got != 0.4 {
		t.Fatalf("many issues must floor at 0.4, got %f", got)
	}
}

func TestOverallWeighting(t *testing.T) {
	policy := DefaultPolicy()

	if got := policy.Overall(1, 1, 1, 1, 1); got != 1.0 {
		t.Fatalf("all-perfect must score 1.0, got %f", got)
	}
	// 0.35*1 + 0.25*0 + 0.15*0.5 + 0.10*0.7 + 0.15*1 = 0.645 -> 0.65 rounded.
	got := policy.Overall(1, 0, 0.5, 0.7, 1)
	if math.Abs(got-0.65) > 1e-9 {
		t.Fatalf("expected 0.65, got %f", got)
	}
}

func TestSuitableForTraining(t *testing.T) {
	policy := DefaultPolicy()

	if !policy.SuitableForTraining(0.8, 0.9, false, true) {
		t.Fatalf("high-quality approved submission must be suitable")
	}
	if policy.SuitableForTraining(0.8, 0.9, false, false) {
		t.Fatalf("unapproved submission must never be suitable")
	}
	if policy.SuitableForTraining(0.8, 0.7, false, true) {
		t.Fatalf("incomplete submission must not be suitable")
	}
	if policy.SuitableForTraining(0.5, 0.9, false, true) {
		t.Fatalf("low overall must not be suitable")
	}
	if policy.SuitableForTraining(0.9, 0.9, true, true) {
		t.Fatalf("anomalous submission must not be suitable")
	}
}
