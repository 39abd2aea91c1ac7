package ensemble

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/yourusername/longball/internal/features"
)

// TrainConfig controls the train/validation split.
type TrainConfig struct {
	ValidationFraction float64
	Seed               int64
}

// FitResult records one classifier variant's fit outcome. Failures are
// retained for reporting; the ensemble builder filters to successes.
type FitResult struct {
	Variant string
	Model   Model
	Err     error
}

// OK reports whether the variant fit successfully.
func (r FitResult) OK() bool { return r.Err == nil }

// Ensemble combines surviving members by soft voting: the predicted class-1
// probability is the arithmetic mean of member probabilities.
type Ensemble struct {
	members []Model
}

// NewEnsemble creates an ensemble from trained members.
func NewEnsemble(members []Model) *Ensemble {
	return &Ensemble{members: members}
}

// Size returns the member count.
func (e *Ensemble) Size() int { return len(e.members) }

// Members returns the trained members.
func (e *Ensemble) Members() []Model { return e.members }

// PredictProbability returns soft-voted class-1 probabilities.
func (e *Ensemble) PredictProbability(x *mat.Dense) []float64 {
	rows, _ := x.Dims()
	out := make([]float64, rows)
	for _, m := range e.members {
		probs := m.PredictProbability(x)
		for i, p := range probs {
			out[i] += p
		}
	}
	for i := range out {
		out[i] /= float64(len(e.members))
	}
	return out
}

// DefaultModels returns the six classifier variants in fit order: three
// boosted-tree configurations, a random forest, classic gradient boosting
// and logistic regression.
func DefaultModels(seed int64) []Model {
	return []Model{
		NewGradientBoosting("gbdt-hist", GBConfig{
			Trees: 80, MaxDepth: 6, LearningRate: 0.07,
			MinSamplesLeaf: 5, ColSample: 0.8, L2: 1.0, NewtonLeaves: true, Seed: seed,
		}),
		NewGradientBoosting("gbdt-leaf", GBConfig{
			Trees: 80, MaxDepth: 6, LearningRate: 0.07,
			MinSamplesLeaf: 5, RowSample: 0.8, L2: 1.0, NewtonLeaves: true, Seed: seed + 1,
		}),
		NewGradientBoosting("gbdt-sym", GBConfig{
			Trees: 80, MaxDepth: 6, LearningRate: 0.08,
			MinSamplesLeaf: 20, L2: 3.0, NewtonLeaves: true, Seed: seed + 2,
		}),
		NewRandomForest(RFConfig{
			Trees: 60, MaxDepth: 8, MinSamplesLeaf: 1, Seed: seed + 3,
		}),
		NewGradientBoosting("gradient-boosting", GBConfig{
			Trees: 60, MaxDepth: 6, LearningRate: 0.08,
			MinSamplesLeaf: 5, Seed: seed + 4,
		}),
		NewLogisticRegression(LRConfig{Iterations: 600, LearningRate: 0.1}),
	}
}

// TrainOutput carries everything downstream stages need from training.
type TrainOutput struct {
	Ensemble          *Ensemble
	Results           []FitResult
	Scaler            *features.Scaler
	Importances       []float64 // mean over tree-based members, nil when none survive
	Coefficients      []float64 // absolute logistic weights, nil when logreg failed
	ValidationProbs   []float64
	ValidationLabels  []float64
	ValidationAUC     float64
	ValidationLogLoss float64
}

// Train fits every classifier variant independently on a stratified training
// split of the matrix and combines the survivors into a soft-voting
// ensemble. A single variant's failure is a warning; zero survivors aborts
// the run. The scaler is fit on the training split only and reused for the
// validation split (and later the prediction matrix).
func Train(cfg TrainConfig, m *features.Matrix, labels []float64, models []Model, logger *logrus.Logger) (*TrainOutput, error) {
	rows := m.NumRows()
	if len(labels) != rows {
		return nil, fmt.Errorf("%w: %d labels for %d rows", ErrLabelMismatch, len(labels), rows)
	}

	trainIdx, valIdx := StratifiedSplit(labels, cfg.ValidationFraction, cfg.Seed)
	trainMatrix := m.SubsetRows(trainIdx)
	valMatrix := m.SubsetRows(valIdx)
	trainLabels := Subset(labels, trainIdx)
	valLabels := Subset(labels, valIdx)

	scaler := features.FitScaler(trainMatrix)
	trainScaled := scaler.Transform(trainMatrix)
	valScaled := scaler.Transform(valMatrix)

	out := &TrainOutput{Scaler: scaler, ValidationLabels: valLabels}
	var members []Model
	for _, model := range models {
		err := model.Fit(trainScaled.Data, trainLabels)
		out.Results = append(out.Results, FitResult{Variant: model.Variant(), Model: model, Err: err})
		if err != nil {
			logger.WithError(err).WithField("variant", model.Variant()).Warn("Classifier failed to fit, excluding from ensemble")
			continue
		}
		members = append(members, model)
	}
	if len(members) == 0 {
		return nil, ErrNoModelsTrained
	}
	out.Ensemble = NewEnsemble(members)

	out.ValidationProbs = out.Ensemble.PredictProbability(valScaled.Data)
	out.ValidationAUC = AUC(valLabels, out.ValidationProbs)
	out.ValidationLogLoss = LogLoss(valLabels, out.ValidationProbs)

	out.Importances = aggregateImportances(members, len(m.Cols))
	out.Coefficients = logisticCoefficients(members)

	logger.WithFields(logrus.Fields{
		"members":  len(members),
		"auc":      out.ValidationAUC,
		"log_loss": out.ValidationLogLoss,
	}).Info("Ensemble trained")
	return out, nil
}

// aggregateImportances averages per-feature importances across exactly the
// tree-based members. The linear model is excluded from this aggregate.
func aggregateImportances(members []Model, cols int) []float64 {
	var sums []float64
	count := 0
	for _, m := range members {
		importer, ok := m.(TreeImporter)
		if !ok {
			continue
		}
		imp := importer.FeatureImportances()
		if len(imp) != cols {
			continue
		}
		if sums == nil {
			sums = make([]float64, cols)
		}
		for j, v := range imp {
			sums[j] += v
		}
		count++
	}
	if sums == nil {
		return nil
	}
	for j := range sums {
		sums[j] /= float64(count)
	}
	return sums
}

func logisticCoefficients(members []Model) []float64 {
	for _, m := range members {
		if lr, ok := m.(*LogisticRegression); ok {
			coefs := lr.Coefficients()
			for j, c := range coefs {
				coefs[j] = math.Abs(c)
			}
			return coefs
		}
	}
	return nil
}
