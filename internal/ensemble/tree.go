package ensemble

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// treeConfig controls regression tree growth.
type treeConfig struct {
	maxDepth       int
	minSamplesLeaf int
	maxFeatures    int // 0 means all features
}

type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

// regressionTree is a CART tree fit by variance reduction. It is the shared
// base learner: gradient boosting fits it to residuals, the random forest
// fits it to binary labels so leaf means become class probabilities.
type regressionTree struct {
	cfg         treeConfig
	root        *treeNode
	importances []float64
}

func newRegressionTree(cfg treeConfig) *regressionTree {
	if cfg.minSamplesLeaf < 1 {
		cfg.minSamplesLeaf = 1
	}
	return &regressionTree{cfg: cfg}
}

// fit grows the tree over the given row indices.
func (t *regressionTree) fit(x *mat.Dense, targets []float64, idx []int, rng *rand.Rand) {
	_, cols := x.Dims()
	t.importances = make([]float64, cols)
	t.root = t.build(x, targets, idx, 0, rng)
}

func (t *regressionTree) build(x *mat.Dense, targets []float64, idx []int, depth int, rng *rand.Rand) *treeNode {
	sum, sumSq := 0.0, 0.0
	for _, i := range idx {
		sum += targets[i]
		sumSq += targets[i] * targets[i]
	}
	n := float64(len(idx))
	mean := sum / n
	sse := sumSq - sum*sum/n

	if depth >= t.cfg.maxDepth || len(idx) < 2*t.cfg.minSamplesLeaf || sse <= 1e-12 {
		return &treeNode{leaf: true, value: mean}
	}

	feature, threshold, gain := t.bestSplit(x, targets, idx, sse, rng)
	if feature < 0 {
		return &treeNode{leaf: true, value: mean}
	}
	t.importances[feature] += gain

	var left, right []int
	for _, i := range idx {
		if x.At(i, feature) <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      t.build(x, targets, left, depth+1, rng),
		right:     t.build(x, targets, right, depth+1, rng),
	}
}

// bestSplit scans candidate features for the threshold with the largest SSE
// reduction. Returns feature -1 when no split improves on the parent.
func (t *regressionTree) bestSplit(x *mat.Dense, targets []float64, idx []int, parentSSE float64, rng *rand.Rand) (int, float64, float64) {
	_, cols := x.Dims()
	candidates := t.candidateFeatures(cols, rng)

	bestFeature := -1
	bestThreshold := 0.0
	bestGain := 1e-12

	pairs := make([]splitPair, len(idx))

	for _, f := range candidates {
		for k, i := range idx {
			pairs[k] = splitPair{value: x.At(i, f), target: targets[i]}
		}
		sortPairs(pairs)

		totalSum := 0.0
		for _, p := range pairs {
			totalSum += p.target
		}
		totalSumSq := 0.0
		for _, p := range pairs {
			totalSumSq += p.target * p.target
		}

		leftSum, leftSumSq := 0.0, 0.0
		for k := 0; k < len(pairs)-1; k++ {
			leftSum += pairs[k].target
			leftSumSq += pairs[k].target * pairs[k].target
			if pairs[k].value == pairs[k+1].value {
				continue
			}
			nl := float64(k + 1)
			nr := float64(len(pairs) - k - 1)
			if int(nl) < t.cfg.minSamplesLeaf || int(nr) < t.cfg.minSamplesLeaf {
				continue
			}
			rightSum := totalSum - leftSum
			rightSumSq := totalSumSq - leftSumSq
			leftSSE := leftSumSq - leftSum*leftSum/nl
			rightSSE := rightSumSq - rightSum*rightSum/nr
			gain := parentSSE - leftSSE - rightSSE
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = (pairs[k].value + pairs[k+1].value) / 2
			}
		}
	}
	if bestFeature < 0 {
		return -1, 0, 0
	}
	return bestFeature, bestThreshold, bestGain
}

func (t *regressionTree) candidateFeatures(cols int, rng *rand.Rand) []int {
	if t.cfg.maxFeatures <= 0 || t.cfg.maxFeatures >= cols {
		out := make([]int, cols)
		for i := range out {
			out[i] = i
		}
		return out
	}
	return rng.Perm(cols)[:t.cfg.maxFeatures]
}

// predict returns the leaf value for a feature row.
func (t *regressionTree) predict(row []float64) float64 {
	return t.apply(row).value
}

// apply walks to the leaf owning a feature row. Exposed so gradient boosting
// can recompute leaf values with a Newton step.
func (t *regressionTree) apply(row []float64) *treeNode {
	node := t.root
	for !node.leaf {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node
}

type splitPair struct {
	value  float64
	target float64
}

// sortPairs sorts (value, target) pairs by value.
func sortPairs(pairs []splitPair) {
	n := len(pairs)
	for gap := n / 2; gap > 0; gap /= 2 {
		for i := gap; i < n; i++ {
			p := pairs[i]
			j := i
			for ; j >= gap && pairs[j-gap].value > p.value; j -= gap {
				pairs[j] = pairs[j-gap]
			}
			pairs[j] = p
		}
	}
}
