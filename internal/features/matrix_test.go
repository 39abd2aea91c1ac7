package features

import (
	"errors"
	"math"
	"testing"

	"github.com/yourusername/longball/internal/tabular"
)

func TestBuildFillsSentinelForNulls(t *testing.T) {
	table := tabular.NewTable()
	table.AddColumn(tabular.Column{
		Name:   "launch_speed",
		Kind:   tabular.KindNumeric,
		Floats: []float64{95, 0, 102},
		Nulls:  []bool{false, true, false},
	})

	m, err := Build(table, []string{"launch_speed"}, nil)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if got := m.Data.At(1, 0); got != SentinelValue {
		t.Fatalf("null cell = %v, want sentinel %v", got, SentinelValue)
	}
	if got := m.Data.At(0, 0); got != 95 {
		t.Fatalf("cell(0,0) = %v, want 95", got)
	}
}

func TestBuildReferenceAlignsColumns(t *testing.T) {
	table := tabular.NewTable()
	table.AddColumn(tabular.Column{
		Name:   "temp",
		Kind:   tabular.KindNumeric,
		Floats: []float64{70, 80},
		Nulls:  []bool{false, false},
	})

	reference := []string{"launch_speed", "temp"}
	m, err := Build(table, nil, reference)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if len(m.Cols) != 2 || m.Cols[0] != "launch_speed" || m.Cols[1] != "temp" {
		t.Fatalf("Cols = %v, want %v", m.Cols, reference)
	}
	// Column absent from the table is entirely sentinel-filled.
	for i := 0; i < 2; i++ {
		if got := m.Data.At(i, 0); got != SentinelValue {
			t.Fatalf("missing column cell(%d,0) = %v, want sentinel", i, got)
		}
	}
	if got := m.Data.At(1, 1); got != 80 {
		t.Fatalf("cell(1,1) = %v, want 80", got)
	}
}

func TestBuildRejectsNaN(t *testing.T) {
	table := tabular.NewTable()
	table.AddColumn(tabular.Column{
		Name:   "bad",
		Kind:   tabular.KindNumeric,
		Floats: []float64{1, math.NaN()},
		Nulls:  []bool{false, false},
	})

	_, err := Build(table, []string{"bad"}, nil)
	if !errors.Is(err, ErrMatrixInvalid) {
		t.Fatalf("err = %v, want ErrMatrixInvalid", err)
	}
}

func TestBuildRejectsInf(t *testing.T) {
	table := tabular.NewTable()
	table.AddColumn(tabular.Column{
		Name:   "bad",
		Kind:   tabular.KindNumeric,
		Floats: []float64{math.Inf(1)},
		Nulls:  []bool{false},
	})

	_, err := Build(table, []string{"bad"}, nil)
	if !errors.Is(err, ErrMatrixInvalid) {
		t.Fatalf("err = %v, want ErrMatrixInvalid", err)
	}
}

func TestSubsetRows(t *testing.T) {
	table := tabular.NewTable()
	table.AddColumn(tabular.Column{
		Name:   "x",
		Kind:   tabular.KindNumeric,
		Floats: []float64{10, 20, 30, 40},
		Nulls:  make([]bool, 4),
	})
	m, err := Build(table, []string{"x"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	sub := m.SubsetRows([]int{3, 1})
	if sub.NumRows() != 2 {
		t.Fatalf("rows = %d, want 2", sub.NumRows())
	}
	if sub.Data.At(0, 0) != 40 || sub.Data.At(1, 0) != 20 {
		t.Fatalf("subset = [%v %v], want [40 20]", sub.Data.At(0, 0), sub.Data.At(1, 0))
	}
}

func TestScalerStandardizes(t *testing.T) {
	table := tabular.NewTable()
	table.AddColumn(tabular.Column{
		Name:   "x",
		Kind:   tabular.KindNumeric,
		Floats: []float64{2, 4, 6, 8},
		Nulls:  make([]bool, 4),
	})
	table.AddColumn(tabular.Column{
		Name:   "constant",
		Kind:   tabular.KindNumeric,
		Floats: []float64{5, 5, 5, 5},
		Nulls:  make([]bool, 4),
	})
	m, err := Build(table, []string{"x", "constant"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	s := FitScaler(m)
	out := s.Transform(m)

	if math.Abs(s.Mean[0]-5) > 1e-12 {
		t.Fatalf("mean = %v, want 5", s.Mean[0])
	}
	// Zero-variance column passes through shifted only.
	if out.Data.At(0, 1) != 0 {
		t.Fatalf("constant column scaled to %v, want 0", out.Data.At(0, 1))
	}
	sum := 0.0
	for i := 0; i < 4; i++ {
		sum += out.Data.At(i, 0)
	}
	if math.Abs(sum) > 1e-9 {
		t.Fatalf("standardized column sums to %v, want 0", sum)
	}
}
