// Package features reconciles feature columns between the event and today
// tables and builds the numeric matrices the ensemble consumes.
package features

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/longball/internal/tabular"
)

// DefaultCorrelationThreshold is the cutoff above which two features are
// considered redundant.
const DefaultCorrelationThreshold = 0.97

// DefaultDenylist lists identifier and descriptive columns that are never
// model features.
func DefaultDenylist() []string {
	return []string{
		"game_date",
		"batter_id",
		"player_name",
		"pitcher_id",
		"city",
		"park",
		"roof_status",
	}
}

// Reconciliation is the outcome of feature reconciliation.
type Reconciliation struct {
	Initial  []string // sorted candidate intersection before pruning
	Retained []string // surviving features, in candidate order
	Dropped  []string // features removed by correlation pruning
}

// Reconcile computes the canonical feature list shared by both tables.
// Candidates are the intersection of both tables' numeric columns minus the
// denylist, sorted alphabetically so tie-breaking is deterministic. Pairwise
// absolute Pearson correlation is computed on the event table with missing
// values treated as zero (for correlation only); for any pair above the
// threshold the first column in sort order survives and the later one is
// dropped.
func Reconcile(event, today *tabular.Table, denylist []string, threshold float64) Reconciliation {
	denied := make(map[string]struct{}, len(denylist))
	for _, name := range denylist {
		denied[name] = struct{}{}
	}

	todayNumeric := make(map[string]struct{})
	for _, name := range today.NumericColumns() {
		todayNumeric[name] = struct{}{}
	}

	var candidates []string
	for _, name := range event.NumericColumns() {
		if _, ok := denied[name]; ok {
			continue
		}
		if _, ok := todayNumeric[name]; !ok {
			continue
		}
		candidates = append(candidates, name)
	}
	sort.Strings(candidates)

	vectors := make([][]float64, len(candidates))
	for i, name := range candidates {
		vectors[i] = columnWithZeroFill(event, name)
	}

	rec := Reconciliation{Initial: candidates}
	var retainedIdx []int
	for j := range candidates {
		redundant := false
		for _, i := range retainedIdx {
			corr := stat.Correlation(vectors[i], vectors[j], nil)
			if corr < 0 {
				corr = -corr
			}
			if corr > threshold {
				redundant = true
				break
			}
		}
		if redundant {
			rec.Dropped = append(rec.Dropped, candidates[j])
			continue
		}
		retainedIdx = append(retainedIdx, j)
		rec.Retained = append(rec.Retained, candidates[j])
	}
	return rec
}

// columnWithZeroFill extracts a numeric column with nulls replaced by zero.
// The zero fill is a correlation-only convention; matrix building uses the
// sentinel instead.
func columnWithZeroFill(t *tabular.Table, name string) []float64 {
	col, ok := t.Col(name)
	if !ok || !col.IsNumeric() {
		return make([]float64, t.NumRows())
	}
	out := make([]float64, col.Len())
	for i := 0; i < col.Len(); i++ {
		if v, present := col.FloatAt(i); present {
			out[i] = v
		}
	}
	return out
}
