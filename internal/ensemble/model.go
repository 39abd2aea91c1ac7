package ensemble

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Model is a binary classifier variant. Fit trains on a standardized matrix
// and 0/1 labels; PredictProbability returns the class-1 probability per row.
type Model interface {
	Variant() string
	Fit(x *mat.Dense, labels []float64) error
	PredictProbability(x *mat.Dense) []float64
}

// TreeImporter is implemented by tree-based models exposing impurity-based
// per-feature importances, normalized to sum to one.
type TreeImporter interface {
	FeatureImportances() []float64
}

// validateTrainingInput applies the shared fit preconditions.
func validateTrainingInput(x *mat.Dense, labels []float64) error {
	rows, cols := x.Dims()
	if rows == 0 {
		return ErrNoTrainingData
	}
	if cols == 0 {
		return ErrNoFeatures
	}
	if len(labels) != rows {
		return fmt.Errorf("%w: %d labels for %d rows", ErrLabelMismatch, len(labels), rows)
	}
	positives := 0
	for _, y := range labels {
		if y > 0.5 {
			positives++
		}
	}
	if positives == 0 || positives == len(labels) {
		return ErrSingleClass
	}
	return nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	ez := math.Exp(z)
	return ez / (1 + ez)
}

func matrixRow(x *mat.Dense, i int, buf []float64) []float64 {
	mat.Row(buf, i, x)
	return buf
}

// LRConfig holds logistic regression hyperparameters.
type LRConfig struct {
	Iterations   int
	LearningRate float64
}

// LogisticRegression is the linear ensemble member, fit by batch gradient
// descent on the negative log-likelihood.
type LogisticRegression struct {
	cfg       LRConfig
	intercept float64
	weights   []float64
}

// NewLogisticRegression creates a logistic regression model.
func NewLogisticRegression(cfg LRConfig) *LogisticRegression {
	return &LogisticRegression{cfg: cfg}
}

// Variant returns the model variant name.
func (lr *LogisticRegression) Variant() string { return "logreg" }

// Fit trains the model.
func (lr *LogisticRegression) Fit(x *mat.Dense, labels []float64) error {
	if err := validateTrainingInput(x, labels); err != nil {
		return err
	}
	rows, cols := x.Dims()
	lr.weights = make([]float64, cols)
	lr.intercept = 0

	row := make([]float64, cols)
	grad := make([]float64, cols)
	for iter := 0; iter < lr.cfg.Iterations; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		interceptGrad := 0.0
		for i := 0; i < rows; i++ {
			matrixRow(x, i, row)
			z := lr.intercept
			for j, w := range lr.weights {
				z += w * row[j]
			}
			residual := sigmoid(z) - labels[i]
			interceptGrad += residual
			for j := range grad {
				grad[j] += residual * row[j]
			}
		}
		step := lr.cfg.LearningRate / float64(rows)
		lr.intercept -= interceptGrad * step
		for j := range lr.weights {
			lr.weights[j] -= grad[j] * step
		}
	}
	return nil
}

// PredictProbability returns class-1 probabilities.
func (lr *LogisticRegression) PredictProbability(x *mat.Dense) []float64 {
	rows, cols := x.Dims()
	out := make([]float64, rows)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		matrixRow(x, i, row)
		z := lr.intercept
		for j, w := range lr.weights {
			z += w * row[j]
		}
		out[i] = sigmoid(z)
	}
	return out
}

// Coefficients returns the fitted feature weights, excluding the intercept.
// Coefficient magnitude is tracked for diagnostics but excluded from the
// tree-importance aggregate: it is not on a comparable scale.
func (lr *LogisticRegression) Coefficients() []float64 {
	return append([]float64(nil), lr.weights...)
}
