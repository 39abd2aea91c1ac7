// Package calibration maps raw ensemble scores to calibrated probabilities
// with isotonic regression.
package calibration

import (
	"sort"
)

// Isotonic is a monotone non-decreasing score-to-probability mapping fitted
// with the pool-adjacent-violators algorithm. Predictions interpolate
// linearly between knots and clip outside the fitted score range.
type Isotonic struct {
	scores []float64
	probs  []float64
}

// Fit builds the calibration curve from raw scores and 0/1 outcomes.
// Returns ErrInsufficientData when fewer than two samples are available or
// ErrLengthMismatch when the slices disagree.
func Fit(scores, labels []float64) (*Isotonic, error) {
	if len(scores) != len(labels) {
		return nil, ErrLengthMismatch
	}
	if len(scores) < 2 {
		return nil, ErrInsufficientData
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] < scores[order[b]]
	})

	// Pool-adjacent-violators over blocks of consecutive samples. Each block
	// carries its weighted mean outcome; violating neighbours merge until
	// the sequence is non-decreasing.
	type block struct {
		minScore float64
		maxScore float64
		sum      float64
		weight   float64
	}
	blocks := make([]block, 0, len(order))
	for _, i := range order {
		blocks = append(blocks, block{
			minScore: scores[i],
			maxScore: scores[i],
			sum:      labels[i],
			weight:   1,
		})
		for len(blocks) > 1 {
			last := len(blocks) - 1
			if blocks[last].sum/blocks[last].weight >= blocks[last-1].sum/blocks[last-1].weight {
				break
			}
			blocks[last-1].maxScore = blocks[last].maxScore
			blocks[last-1].sum += blocks[last].sum
			blocks[last-1].weight += blocks[last].weight
			blocks = blocks[:last]
		}
	}

	iso := &Isotonic{}
	for _, b := range blocks {
		p := b.sum / b.weight
		iso.scores = append(iso.scores, b.minScore)
		iso.probs = append(iso.probs, p)
		if b.maxScore > b.minScore {
			iso.scores = append(iso.scores, b.maxScore)
			iso.probs = append(iso.probs, p)
		}
	}
	return iso, nil
}

// Predict returns the calibrated probability for one raw score. Scores
// outside the fitted range clip to the boundary probabilities.
func (iso *Isotonic) Predict(score float64) float64 {
	n := len(iso.scores)
	if score <= iso.scores[0] {
		return iso.probs[0]
	}
	if score >= iso.scores[n-1] {
		return iso.probs[n-1]
	}
	// First knot at or above the score; interpolate from its predecessor.
	j := sort.SearchFloat64s(iso.scores, score)
	x0, x1 := iso.scores[j-1], iso.scores[j]
	y0, y1 := iso.probs[j-1], iso.probs[j]
	if x1 == x0 {
		return y1
	}
	w := (score - x0) / (x1 - x0)
	return y0 + w*(y1-y0)
}

// PredictAll applies the curve to every score.
func (iso *Isotonic) PredictAll(scores []float64) []float64 {
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = iso.Predict(s)
	}
	return out
}

// Knots returns the number of calibration points.
func (iso *Isotonic) Knots() int { return len(iso.scores) }
