package ensemble

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// RFConfig holds random forest hyperparameters. MaxFeatures of zero selects
// the square root of the feature count at fit time.
type RFConfig struct {
	Trees          int
	MaxDepth       int
	MinSamplesLeaf int
	MaxFeatures    int
	Seed           int64
}

// RandomForest averages bootstrap-trained regression trees over 0/1 labels;
// each tree's leaf mean is an empirical class-1 probability.
type RandomForest struct {
	cfg         RFConfig
	trees       []*regressionTree
	importances []float64
}

// NewRandomForest creates a random forest model.
func NewRandomForest(cfg RFConfig) *RandomForest {
	return &RandomForest{cfg: cfg}
}

// Variant returns the model variant name.
func (rf *RandomForest) Variant() string { return "random-forest" }

// Fit trains the forest.
func (rf *RandomForest) Fit(x *mat.Dense, labels []float64) error {
	if err := validateTrainingInput(x, labels); err != nil {
		return err
	}
	rows, cols := x.Dims()
	rng := rand.New(rand.NewSource(rf.cfg.Seed))

	maxFeatures := rf.cfg.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = int(math.Sqrt(float64(cols)))
		if maxFeatures < 1 {
			maxFeatures = 1
		}
	}

	rf.trees = make([]*regressionTree, 0, rf.cfg.Trees)
	rf.importances = make([]float64, cols)
	for b := 0; b < rf.cfg.Trees; b++ {
		idx := make([]int, rows)
		for i := range idx {
			idx[i] = rng.Intn(rows)
		}
		tree := newRegressionTree(treeConfig{
			maxDepth:       rf.cfg.MaxDepth,
			minSamplesLeaf: rf.cfg.MinSamplesLeaf,
			maxFeatures:    maxFeatures,
		})
		tree.fit(x, labels, idx, rng)
		for j, imp := range tree.importances {
			rf.importances[j] += imp
		}
		rf.trees = append(rf.trees, tree)
	}

	normalizeImportances(rf.importances)
	return nil
}

// PredictProbability returns class-1 probabilities clamped to [0,1].
func (rf *RandomForest) PredictProbability(x *mat.Dense) []float64 {
	rows, cols := x.Dims()
	out := make([]float64, rows)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		matrixRow(x, i, row)
		sum := 0.0
		for _, tree := range rf.trees {
			sum += tree.predict(row)
		}
		p := sum / float64(len(rf.trees))
		out[i] = math.Max(0, math.Min(1, p))
	}
	return out
}

// FeatureImportances returns normalized impurity-based importances.
func (rf *RandomForest) FeatureImportances() []float64 {
	return append([]float64(nil), rf.importances...)
}
