package calibration

import "errors"

var (
	// ErrInsufficientData indicates too few samples to fit a curve.
	ErrInsufficientData = errors.New("calibration: insufficient samples")
	// ErrLengthMismatch indicates score and label slices of different length.
	ErrLengthMismatch = errors.New("calibration: scores and labels length mismatch")
)
