// Package ensemble trains the soft-voting classifier ensemble.
package ensemble

import "errors"

var (
	// ErrNoModelsTrained indicates every classifier variant failed to fit
	ErrNoModelsTrained = errors.New("no models trained successfully")

	// ErrNoTrainingData indicates an empty training matrix
	ErrNoTrainingData = errors.New("no training data")

	// ErrNoFeatures indicates a training matrix with zero columns
	ErrNoFeatures = errors.New("no feature columns")

	// ErrSingleClass indicates labels contain only one class
	ErrSingleClass = errors.New("labels contain a single class")

	// ErrLabelMismatch indicates label and matrix row counts differ
	ErrLabelMismatch = errors.New("label count does not match row count")
)
