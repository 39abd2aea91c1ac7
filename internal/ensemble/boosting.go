package ensemble

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// GBConfig holds gradient boosting hyperparameters. RowSample and ColSample
// are fractions in (0,1]; zero means no subsampling. NewtonLeaves selects
// second-order leaf values with L2 regularization instead of plain residual
// means.
type GBConfig struct {
	Trees          int
	MaxDepth       int
	LearningRate   float64
	MinSamplesLeaf int
	RowSample      float64
	ColSample      float64
	L2             float64
	NewtonLeaves   bool
	Seed           int64
}

// GradientBoosting boosts regression trees on the logistic loss. The three
// boosted-tree ensemble variants and the classic gradient boosting member
// are all instances of this learner with different configurations.
type GradientBoosting struct {
	variant     string
	cfg         GBConfig
	prior       float64
	trees       []*regressionTree
	importances []float64
}

// NewGradientBoosting creates a boosted-trees model under the given variant
// name.
func NewGradientBoosting(variant string, cfg GBConfig) *GradientBoosting {
	return &GradientBoosting{variant: variant, cfg: cfg}
}

// Variant returns the model variant name.
func (gb *GradientBoosting) Variant() string { return gb.variant }

// Fit trains the boosted ensemble.
func (gb *GradientBoosting) Fit(x *mat.Dense, labels []float64) error {
	if err := validateTrainingInput(x, labels); err != nil {
		return err
	}
	rows, cols := x.Dims()
	rng := rand.New(rand.NewSource(gb.cfg.Seed))

	base := 0.0
	for _, y := range labels {
		base += y
	}
	base /= float64(rows)
	gb.prior = math.Log(base / (1 - base))

	scores := make([]float64, rows)
	for i := range scores {
		scores[i] = gb.prior
	}

	gb.trees = make([]*regressionTree, 0, gb.cfg.Trees)
	gb.importances = make([]float64, cols)
	residuals := make([]float64, rows)
	probs := make([]float64, rows)
	row := make([]float64, cols)

	maxFeatures := 0
	if gb.cfg.ColSample > 0 && gb.cfg.ColSample < 1 {
		maxFeatures = int(math.Ceil(gb.cfg.ColSample * float64(cols)))
	}

	for m := 0; m < gb.cfg.Trees; m++ {
		for i := 0; i < rows; i++ {
			probs[i] = sigmoid(scores[i])
			residuals[i] = labels[i] - probs[i]
		}

		idx := gb.sampleRows(rows, rng)
		tree := newRegressionTree(treeConfig{
			maxDepth:       gb.cfg.MaxDepth,
			minSamplesLeaf: gb.cfg.MinSamplesLeaf,
			maxFeatures:    maxFeatures,
		})
		tree.fit(x, residuals, idx, rng)
		if gb.cfg.NewtonLeaves {
			gb.newtonAdjust(tree, x, residuals, probs, idx, row)
		}

		for i := 0; i < rows; i++ {
			scores[i] += gb.cfg.LearningRate * tree.predict(matrixRow(x, i, row))
		}
		for j, imp := range tree.importances {
			gb.importances[j] += imp
		}
		gb.trees = append(gb.trees, tree)
	}

	normalizeImportances(gb.importances)
	return nil
}

func (gb *GradientBoosting) sampleRows(rows int, rng *rand.Rand) []int {
	if gb.cfg.RowSample <= 0 || gb.cfg.RowSample >= 1 {
		idx := make([]int, rows)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	n := int(math.Ceil(gb.cfg.RowSample * float64(rows)))
	if n < 2 {
		n = 2
	}
	return rng.Perm(rows)[:n]
}

// newtonAdjust replaces leaf means with the second-order step
// sum(residual) / (sum(p(1-p)) + L2) over the rows routed to each leaf.
func (gb *GradientBoosting) newtonAdjust(tree *regressionTree, x *mat.Dense, residuals, probs []float64, idx []int, row []float64) {
	type leafStats struct {
		num float64
		den float64
	}
	stats := make(map[*treeNode]*leafStats)
	for _, i := range idx {
		leaf := tree.apply(matrixRow(x, i, row))
		s, ok := stats[leaf]
		if !ok {
			s = &leafStats{}
			stats[leaf] = s
		}
		s.num += residuals[i]
		s.den += probs[i] * (1 - probs[i])
	}
	for leaf, s := range stats {
		den := s.den + gb.cfg.L2
		if den < 1e-12 {
			leaf.value = 0
			continue
		}
		leaf.value = s.num / den
	}
}

// PredictProbability returns class-1 probabilities.
func (gb *GradientBoosting) PredictProbability(x *mat.Dense) []float64 {
	rows, cols := x.Dims()
	out := make([]float64, rows)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		matrixRow(x, i, row)
		score := gb.prior
		for _, tree := range gb.trees {
			score += gb.cfg.LearningRate * tree.predict(row)
		}
		out[i] = sigmoid(score)
	}
	return out
}

// FeatureImportances returns normalized impurity-based importances.
func (gb *GradientBoosting) FeatureImportances() []float64 {
	return append([]float64(nil), gb.importances...)
}

func normalizeImportances(imp []float64) {
	total := 0.0
	for _, v := range imp {
		total += v
	}
	if total <= 0 {
		return
	}
	for j := range imp {
		imp[j] /= total
	}
}
