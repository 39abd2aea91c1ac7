package ensemble

import (
	"math"
	"sort"
)

const logLossEpsilon = 1e-15

// AUC computes the area under the ROC curve from 0/1 labels and scores,
// using the rank statistic with average ranks for tied scores. Returns 0
// when only one class is present.
func AUC(labels, scores []float64) float64 {
	n := len(labels)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return scores[order[a]] < scores[order[b]]
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		// j starts past i so the scan advances even when the comparison is
		// never true (NaN scores compare unequal to everything).
		j := i + 1
		for j < n && scores[order[j]] == scores[order[i]] {
			j++
		}
		avgRank := float64(i+j+1) / 2 // ranks are 1-based
		for k := i; k < j; k++ {
			ranks[order[k]] = avgRank
		}
		i = j
	}

	positives := 0
	rankSum := 0.0
	for i, y := range labels {
		if y > 0.5 {
			positives++
			rankSum += ranks[i]
		}
	}
	negatives := n - positives
	if positives == 0 || negatives == 0 {
		return 0
	}
	return (rankSum - float64(positives)*float64(positives+1)/2) / (float64(positives) * float64(negatives))
}

// LogLoss computes the mean negative log-likelihood of the labels under the
// predicted probabilities, with clipping away from 0 and 1.
func LogLoss(labels, probs []float64) float64 {
	if len(labels) == 0 {
		return 0
	}
	total := 0.0
	for i, y := range labels {
		p := math.Max(logLossEpsilon, math.Min(1-logLossEpsilon, probs[i]))
		total += -y*math.Log(p) - (1-y)*math.Log(1-p)
	}
	return total / float64(len(labels))
}
