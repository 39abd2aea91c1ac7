package features

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Scaler standardizes features to zero mean and unit variance. Statistics
// are fit on the training split only and reused for validation and
// prediction matrices; the scaler and the trained models are both sensitive
// to column order, which Build keeps fixed.
type Scaler struct {
	Mean []float64
	Std  []float64
}

// FitScaler computes per-column mean and standard deviation. Zero-variance
// columns scale by 1 so constant features pass through unchanged.
func FitScaler(m *Matrix) *Scaler {
	rows, cols := m.Data.Dims()
	s := &Scaler{
		Mean: make([]float64, cols),
		Std:  make([]float64, cols),
	}
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, m.Data)
		s.Mean[j] = stat.Mean(col, nil)
		s.Std[j] = stat.StdDev(col, nil)
		if s.Std[j] == 0 {
			s.Std[j] = 1
		}
	}
	return s
}

// Transform returns a standardized copy of the matrix.
func (s *Scaler) Transform(m *Matrix) *Matrix {
	rows, cols := m.Data.Dims()
	data := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			data.Set(i, j, (m.Data.At(i, j)-s.Mean[j])/s.Std[j])
		}
	}
	return &Matrix{Cols: append([]string(nil), m.Cols...), Data: data}
}
