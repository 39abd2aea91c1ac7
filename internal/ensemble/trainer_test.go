package ensemble

import (
	"bytes"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/yourusername/longball/internal/features"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	return log
}

// separableData builds a 2-feature matrix where the first feature cleanly
// separates the classes.
func separableData(n int, seed int64) (*features.Matrix, []float64) {
	rng := rand.New(rand.NewSource(seed))
	data := mat.NewDense(n, 2, nil)
	labels := make([]float64, n)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			labels[i] = 1
			data.Set(i, 0, 2+rng.Float64())
		} else {
			data.Set(i, 0, -2-rng.Float64())
		}
		data.Set(i, 1, rng.NormFloat64())
	}
	return &features.Matrix{Cols: []string{"signal", "noise"}, Data: data}, labels
}

type stubModel struct {
	variant string
	prob    float64
	fitErr  error
}

func (s *stubModel) Variant() string { return s.variant }

func (s *stubModel) Fit(x *mat.Dense, labels []float64) error { return s.fitErr }

func (s *stubModel) PredictProbability(x *mat.Dense) []float64 {
	rows, _ := x.Dims()
	out := make([]float64, rows)
	for i := range out {
		out[i] = s.prob
	}
	return out
}

func TestTrainIsolatesFailedModels(t *testing.T) {
	m, labels := separableData(60, 1)
	models := []Model{
		&stubModel{variant: "broken", fitErr: errors.New("bad hyperparameters")},
		&stubModel{variant: "ok", prob: 0.4},
	}

	out, err := Train(TrainConfig{ValidationFraction: 0.2, Seed: 42}, m, labels, models, quietLogger())
	if err != nil {
		t.Fatalf("Train returned error: %v", err)
	}
	if out.Ensemble.Size() != 1 {
		t.Fatalf("ensemble size = %d, want 1", out.Ensemble.Size())
	}
	if len(out.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(out.Results))
	}
	if out.Results[0].OK() || !out.Results[1].OK() {
		t.Fatalf("unexpected fit outcomes: %+v", out.Results)
	}
}

func TestTrainAllModelsFail(t *testing.T) {
	m, labels := separableData(40, 2)
	models := []Model{
		&stubModel{variant: "a", fitErr: errors.New("boom")},
		&stubModel{variant: "b", fitErr: errors.New("boom")},
	}

	_, err := Train(TrainConfig{ValidationFraction: 0.2, Seed: 42}, m, labels, models, quietLogger())
	if !errors.Is(err, ErrNoModelsTrained) {
		t.Fatalf("err = %v, want ErrNoModelsTrained", err)
	}
}

func TestTrainLabelMismatch(t *testing.T) {
	m, labels := separableData(40, 3)
	_, err := Train(TrainConfig{ValidationFraction: 0.2, Seed: 42}, m, labels[:10], DefaultModels(42), quietLogger())
	if !errors.Is(err, ErrLabelMismatch) {
		t.Fatalf("err = %v, want ErrLabelMismatch", err)
	}
}

func TestEnsembleSoftVotingIsMean(t *testing.T) {
	e := NewEnsemble([]Model{
		&stubModel{variant: "low", prob: 0.2},
		&stubModel{variant: "high", prob: 0.6},
	})
	probs := e.PredictProbability(mat.NewDense(3, 1, nil))
	for i, p := range probs {
		if math.Abs(p-0.4) > 1e-12 {
			t.Fatalf("probs[%d] = %v, want 0.4", i, p)
		}
	}
}

func TestTrainDefaultModelsOnSeparableData(t *testing.T) {
	m, labels := separableData(120, 4)

	out, err := Train(TrainConfig{ValidationFraction: 0.2, Seed: 42}, m, labels, DefaultModels(42), quietLogger())
	if err != nil {
		t.Fatalf("Train returned error: %v", err)
	}
	if out.Ensemble.Size() != 6 {
		t.Fatalf("ensemble size = %d, want 6", out.Ensemble.Size())
	}
	if out.ValidationAUC < 0.95 {
		t.Fatalf("validation AUC = %v, want >= 0.95 on separable data", out.ValidationAUC)
	}
	if out.Importances == nil {
		t.Fatal("tree importances missing")
	}
	// The separating feature dominates the tree importances.
	if out.Importances[0] < out.Importances[1] {
		t.Fatalf("importances = %v, want signal > noise", out.Importances)
	}
	if out.Coefficients == nil {
		t.Fatal("logistic coefficients missing")
	}
	if out.Coefficients[0] < 0 || out.Coefficients[1] < 0 {
		t.Fatalf("coefficients = %v, want absolute values", out.Coefficients)
	}
}

func TestTrainDeterministicForSeed(t *testing.T) {
	m, labels := separableData(80, 5)

	first, err := Train(TrainConfig{ValidationFraction: 0.2, Seed: 42}, m, labels, DefaultModels(42), quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	second, err := Train(TrainConfig{ValidationFraction: 0.2, Seed: 42}, m, labels, DefaultModels(42), quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	for i := range first.ValidationProbs {
		if first.ValidationProbs[i] != second.ValidationProbs[i] {
			t.Fatalf("validation prob %d differs between identical runs", i)
		}
	}
}

func TestGradientBoostingRejectsSingleClass(t *testing.T) {
	data := mat.NewDense(10, 1, nil)
	labels := make([]float64, 10)

	gb := NewGradientBoosting("gbdt", GBConfig{Trees: 5, MaxDepth: 2, LearningRate: 0.1, MinSamplesLeaf: 1})
	if err := gb.Fit(data, labels); !errors.Is(err, ErrSingleClass) {
		t.Fatalf("err = %v, want ErrSingleClass", err)
	}
}

func TestRandomForestProbabilitiesBounded(t *testing.T) {
	m, labels := separableData(60, 6)

	rf := NewRandomForest(RFConfig{Trees: 10, MaxDepth: 4, MinSamplesLeaf: 1, Seed: 1})
	if err := rf.Fit(m.Data, labels); err != nil {
		t.Fatalf("Fit returned error: %v", err)
	}
	for i, p := range rf.PredictProbability(m.Data) {
		if p < 0 || p > 1 {
			t.Fatalf("probability[%d] = %v outside [0,1]", i, p)
		}
	}
}

func TestLogisticRegressionSeparable(t *testing.T) {
	m, labels := separableData(80, 7)

	lr := NewLogisticRegression(LRConfig{Iterations: 500, LearningRate: 0.1})
	if err := lr.Fit(m.Data, labels); err != nil {
		t.Fatalf("Fit returned error: %v", err)
	}
	if auc := AUC(labels, lr.PredictProbability(m.Data)); auc < 0.99 {
		t.Fatalf("training AUC = %v, want ~1 on separable data", auc)
	}
}
