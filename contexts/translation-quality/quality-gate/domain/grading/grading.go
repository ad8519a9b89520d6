package grading

import (
	"math"

	"crowdlingo/contexts/translation-quality/quality-gate/domain/entities"
)

// Policy holds the quality gate's scoring weights and eligibility thresholds.
type Policy struct {
	CompletenessWeight float64
	GPSAccuracyWeight  float64
	PhotoQualityWeight float64
	ResponseTimeWeight float64
	ConsistencyWeight  float64

	TrainingOverallThreshold      float64
	TrainingCompletenessThreshold float64

	// Anomaly rules.
	MinCompletionSeconds   float64 // faster completions are flagged
	MaxCoordinateReuse     int     // identical coordinates beyond this are flagged
	DuplicateTextMinLength int     // only long target texts are duplicate-checked
}

// DefaultPolicy returns the production weights. Completeness dominates, GPS
// matters for spatial models, the rest are integrity signals.
func DefaultPolicy() Policy {
	return Policy{
		CompletenessWeight: 0.35,
		GPSAccuracyWeight:  0.25,
		PhotoQualityWeight: 0.15,
		ResponseTimeWeight: 0.10,
		ConsistencyWeight:  0.15,

		TrainingOverallThreshold:      0.6,
		TrainingCompletenessThreshold: 0.8,

		MinCompletionSeconds:   30,
		MaxCoordinateReuse:     2,
		DuplicateTextMinLength: 100,
	}
}

// CompletenessScore is the filled fraction of required fields. A submission
// without required fields is complete by definition.
func (p Policy) CompletenessScore(completed int, required int) float64 {
	if required <= 0 {
		return 1.0
	}
	if completed < 0 {
		completed = 0
	}
	if completed > required {
		completed = required
	}
	return round2(float64(completed) / float64(required))
}

// GPSAccuracyScore bands the reported accuracy radius. Missing or
// out-of-range coordinates score zero.
func (p Policy) GPSAccuracyScore(signals entities.QualitySignals) float64 {
	if !signals.HasLocation {
		return 0.0
	}
	if signals.Latitude < -90 || signals.Latitude > 90 ||
		signals.Longitude < -180 || signals.Longitude > 180 {
		return 0.0
	}
	accuracy := signals.AccuracyMeters
	if accuracy <= 0 {
		accuracy = 100
	}
	switch {
	case accuracy <= 5:
		return 1.0
	case accuracy <= 10:
		return 0.9
	case accuracy <= 20:
		return 0.8
	case accuracy <= 50:
		return 0.6
	case accuracy <= 100:
		return 0.4
	default:
		return 0.2
	}
}

// PhotoQualityScore bands the attachment count; no photos is neutral rather
// than failing, since most text pairs carry none.
func (p Policy) PhotoQualityScore(photoCount int) float64 {
	switch {
	case photoCount <= 0:
		return 0.5
	case photoCount >= 3:
		return 1.0
	case photoCount == 2:
		return 0.8
	default:
		return 0.6
	}
}

// ResponseTimeScore is currently a neutral constant.
// TODO: scale by text length once submission metadata carries it.
func (p Policy) ResponseTimeScore(entities.QualitySignals) float64 {
	return 0.7
}

// ConsistencyScore bands the count of detected logical inconsistencies.
func (p Policy) ConsistencyScore(issues int) float64 {
	switch {
	case issues <= 0:
		return 1.0
	case issues == 1:
		return 0.8
	case issues == 2:
		return 0.6
	default:
		return 0.4
	}
}

// Overall combines the dimension scores with the policy weights.
func (p Policy) Overall(completeness, gpsAccuracy, photoQuality, responseTime, consistency float64) float64 {
	overall := completeness*p.CompletenessWeight +
		gpsAccuracy*p.GPSAccuracyWeight +
		photoQuality*p.PhotoQualityWeight +
		responseTime*p.ResponseTimeWeight +
		consistency*p.ConsistencyWeight
	return round2(overall)
}

// SuitableForTraining is the eligibility gate: quality thresholds plus a
// clean anomaly check plus consensus approval.
func (p Policy) SuitableForTraining(overall float64, completeness float64, isAnomaly bool, approved bool) bool {
	return overall >= p.TrainingOverallThreshold &&
		completeness >= p.TrainingCompletenessThreshold &&
		!isAnomaly &&
		approved
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
