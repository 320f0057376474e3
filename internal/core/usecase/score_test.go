package usecase

import (
	"math"
	"testing"
)

func TestAggregateBounds(t *testing.T) {
	a := NewScoreAggregator(DefaultScoreWeights())

	if got := a.Aggregate(100, 100, 100, 100); got != 100 {
		t.Fatalf("all-100 aggregate = %d, want 100", got)
	}
	if got := a.Aggregate(0, 0, 0, 0); got != 0 {
		t.Fatalf("all-0 aggregate = %d, want 0", got)
	}
}

func TestAggregateAppliesWeights(t *testing.T) {
	a := NewScoreAggregator(DefaultScoreWeights())

	// 0.20*50 + 0.30*100 + 0.25*80 + 0.25*60 = 75
	if got := a.Aggregate(50, 100, 80, 60); got != 75 {
		t.Fatalf("aggregate = %d, want 75", got)
	}
	// Compliance moves the needle more than validation.
	lowCompliance := a.Aggregate(100, 0, 100, 100)
	lowValidation := a.Aggregate(0, 100, 100, 100)
	if lowCompliance >= lowValidation {
		t.Fatalf("compliance weight not dominant: %d vs %d", lowCompliance, lowValidation)
	}
}

func TestWeightsNormalizeToOne(t *testing.T) {
	a := NewScoreAggregator(ScoreWeights{Validation: 2, Compliance: 3, Content: 2.5, SEO: 2.5})

	w := a.Weights()
	sum := w.Validation + w.Compliance + w.Content + w.SEO
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("normalized weights sum to %f", sum)
	}
	if w.Compliance != 0.3 {
		t.Fatalf("compliance weight = %f, want 0.3", w.Compliance)
	}
}

func TestZeroWeightsFallBackToDefaults(t *testing.T) {
	a := NewScoreAggregator(ScoreWeights{})

	if a.Weights() != DefaultScoreWeights() {
		t.Fatalf("weights = %+v", a.Weights())
	}
}

func TestClampScore(t *testing.T) {
	if clampScore(-10) != 0 || clampScore(110) != 100 || clampScore(55) != 55 {
		t.Fatal("clampScore out of contract")
	}
}
