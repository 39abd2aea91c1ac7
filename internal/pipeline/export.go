package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/yourusername/longball/internal/leaderboard"
	"github.com/yourusername/longball/internal/tabular"
)

// Output file names within the run directory.
const (
	PredictionsFile = "predictions.csv"
	LeaderboardFile = "leaderboard.csv"
	ReportFile      = "report.json"
)

// reportTopImportances caps the importance ranking in the run report.
const reportTopImportances = 30

// fitReport is the per-variant slice of the run report.
type fitReport struct {
	Variant string `json:"variant"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

// labelBucket is one value of the outcome distribution in the run report.
type labelBucket struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// featureWeight is one entry of the importance ranking.
type featureWeight struct {
	Feature string  `json:"feature"`
	Weight  float64 `json:"weight"`
}

// runReport is the JSON summary written alongside the CSV artifacts.
type runReport struct {
	RunID             string             `json:"run_id"`
	LabelDistribution []labelBucket      `json:"label_distribution,omitempty"`
	FeaturesInitial   int                `json:"features_initial"`
	FeaturesRetained  int                `json:"features_retained"`
	FeaturesDropped   []string           `json:"features_dropped,omitempty"`
	Models            []fitReport        `json:"models"`
	ValidationAUC     float64            `json:"validation_auc"`
	ValidationLogLoss float64            `json:"validation_log_loss"`
	TopImportances    []featureWeight    `json:"top_importances,omitempty"`
	Coefficients      map[string]float64 `json:"logistic_coefficients,omitempty"`
	TopN              int                `json:"top_n"`
	ConfidenceGap     *float64           `json:"confidence_gap,omitempty"`
}

// rankWeights orders a name-to-weight map by descending weight (ties by
// name) and truncates to the report cap.
func rankWeights(weights map[string]float64, limit int) []featureWeight {
	if len(weights) == 0 {
		return nil
	}
	out := make([]featureWeight, 0, len(weights))
	for name, w := range weights {
		out = append(out, featureWeight{Feature: name, Weight: w})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Feature < out[j].Feature
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func labelDistribution(counts []tabular.ValueCount) []labelBucket {
	out := make([]labelBucket, len(counts))
	for i, vc := range counts {
		out[i] = labelBucket{Value: vc.Value, Count: vc.Count}
	}
	return out
}

// Export writes the predictions table, the full leaderboard and the run
// report under dir, creating it when necessary.
func Export(result *Result, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	if err := writeFile(filepath.Join(dir, PredictionsFile), func(f *os.File) error {
		return tabular.WriteCSV(f, result.Predictions)
	}); err != nil {
		return err
	}

	if err := writeFile(filepath.Join(dir, LeaderboardFile), func(f *os.File) error {
		return leaderboard.WriteCSV(f, result.Leaderboard)
	}); err != nil {
		return err
	}

	report := runReport{
		RunID:             result.RunID,
		LabelDistribution: labelDistribution(result.LabelCounts),
		FeaturesInitial:   len(result.Reconciliation.Initial),
		FeaturesRetained:  len(result.Reconciliation.Retained),
		FeaturesDropped:   result.Reconciliation.Dropped,
		ValidationAUC:     result.ValidationAUC,
		ValidationLogLoss: result.ValidationLoss,
		TopImportances:    rankWeights(result.Importances, reportTopImportances),
		Coefficients:      result.Coefficients,
		TopN:              len(result.TopN),
	}
	for _, fr := range result.FitResults {
		r := fitReport{Variant: fr.Variant, OK: fr.OK()}
		if fr.Err != nil {
			r.Error = fr.Err.Error()
		}
		report.Models = append(report.Models, r)
	}
	if result.HasGap {
		gap := result.ConfidenceGap
		report.ConfidenceGap = &gap
	}

	return writeFile(filepath.Join(dir, ReportFile), func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	})
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
