package features

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/yourusername/longball/internal/tabular"
)

// SentinelValue marks missing feature values in a matrix. It sits outside
// the legitimate domain of every feature so models can learn to treat it as
// "unknown" rather than conflate it with a real zero.
const SentinelValue = -1.0

// ErrMatrixInvalid indicates NaN or Inf values survived matrix construction.
var ErrMatrixInvalid = errors.New("matrix contains NaN or Inf values")

// Matrix is a strictly numeric feature matrix with a fixed column order.
type Matrix struct {
	Cols []string
	Data *mat.Dense
}

// NumRows returns the number of entity rows.
func (m *Matrix) NumRows() int {
	r, _ := m.Data.Dims()
	return r
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float64 {
	out := make([]float64, len(m.Cols))
	mat.Row(out, i, m.Data)
	return out
}

// Build converts the table's feature slice into a numeric matrix. Missing
// values are filled with the sentinel. When reference is non-nil (the
// prediction table referencing the training matrix's columns), columns
// present in reference but absent from the table are created sentinel-filled
// and the result is ordered exactly as reference, which keeps the train and
// predict matrices column-aligned. The built matrix is validated to contain
// no NaN or Inf; violation is fatal.
func Build(t *tabular.Table, featureSet []string, reference []string) (*Matrix, error) {
	cols := featureSet
	if reference != nil {
		cols = reference
	}

	rows := t.NumRows()
	data := mat.NewDense(rows, len(cols), nil)
	for j, name := range cols {
		col, ok := t.Col(name)
		if !ok || !col.IsNumeric() {
			for i := 0; i < rows; i++ {
				data.Set(i, j, SentinelValue)
			}
			continue
		}
		for i := 0; i < rows; i++ {
			v, present := col.FloatAt(i)
			if !present {
				v = SentinelValue
			}
			data.Set(i, j, v)
		}
	}

	m := &Matrix{Cols: append([]string(nil), cols...), Data: data}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the no-NaN/no-Inf post-condition, reporting counts of each.
func (m *Matrix) Validate() error {
	rows, cols := m.Data.Dims()
	nans, infs := 0, 0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := m.Data.At(i, j)
			if math.IsNaN(v) {
				nans++
			} else if math.IsInf(v, 0) {
				infs++
			}
		}
	}
	if nans > 0 || infs > 0 {
		return fmt.Errorf("%w: %d NaNs and %d Infs", ErrMatrixInvalid, nans, infs)
	}
	return nil
}

// SubsetRows returns a new matrix containing only the given rows.
func (m *Matrix) SubsetRows(idx []int) *Matrix {
	_, cols := m.Data.Dims()
	data := mat.NewDense(len(idx), cols, nil)
	for to, from := range idx {
		for j := 0; j < cols; j++ {
			data.Set(to, j, m.Data.At(from, j))
		}
	}
	return &Matrix{Cols: append([]string(nil), m.Cols...), Data: data}
}
