package pipeline

import "errors"

var (
	// ErrLabelColumnMissing indicates the event table has no outcome column.
	ErrLabelColumnMissing = errors.New("pipeline: label column missing from event table")
	// ErrLabelColumnNotNumeric indicates the outcome column failed numeric conversion.
	ErrLabelColumnNotNumeric = errors.New("pipeline: label column is not numeric")
	// ErrNoLabeledRows indicates every event row is missing its outcome.
	ErrNoLabeledRows = errors.New("pipeline: no rows with a present outcome label")
	// ErrLabelNotBinary indicates the outcome column holds values other than 0 and 1.
	ErrLabelNotBinary = errors.New("pipeline: label column is not binary")
	// ErrNoFeatures indicates reconciliation retained zero shared features.
	ErrNoFeatures = errors.New("pipeline: no shared numeric features between tables")
)
