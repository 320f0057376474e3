package usecase

import "math"

// ScoreWeights combines the four sub-scores into one overall score.
// Compliance carries the largest weight because compliance failures block
// listing approval outright; validation carries the smallest because it is
// a prerequisite already enforced separately through the is-valid flag.
type ScoreWeights struct {
	Validation float64
	Compliance float64
	Content    float64
	SEO        float64
}

// DefaultScoreWeights returns the hand-tuned production defaults.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		Validation: 0.20,
		Compliance: 0.30,
		Content:    0.25,
		SEO:        0.25,
	}
}

func (w ScoreWeights) normalize() ScoreWeights {
	sum := w.Validation + w.Compliance + w.Content + w.SEO
	if sum <= 0 {
		return DefaultScoreWeights()
	}
	return ScoreWeights{
		Validation: w.Validation / sum,
		Compliance: w.Compliance / sum,
		Content:    w.Content / sum,
		SEO:        w.SEO / sum,
	}
}

// ScoreAggregator folds validation, compliance, content and SEO scores
// into a single rounded 0-100 number.
type ScoreAggregator struct {
	weights ScoreWeights
}

func NewScoreAggregator(weights ScoreWeights) *ScoreAggregator {
	return &ScoreAggregator{weights: weights.normalize()}
}

func (a *ScoreAggregator) Aggregate(validation, compliance, content, seo int) int {
	sum := a.weights.Validation*float64(validation) +
		a.weights.Compliance*float64(compliance) +
		a.weights.Content*float64(content) +
		a.weights.SEO*float64(seo)
	return clampScore(int(math.Round(sum)))
}

// Weights exposes the normalized weights, mainly for tests and the API
// surface that documents scoring.
func (a *ScoreAggregator) Weights() ScoreWeights {
	return a.weights
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
