// Package tabular provides loading, modeling and normalization of tables.
package tabular

import "errors"

var (
	// ErrDuplicateColumns indicates duplicate column names survived ingestion
	ErrDuplicateColumns = errors.New("duplicate column names")

	// ErrColumnNotFound indicates a referenced column does not exist
	ErrColumnNotFound = errors.New("column not found")

	// ErrEmptyTable indicates a table with no rows or no columns
	ErrEmptyTable = errors.New("table has no data")

	// ErrUnsupportedFormat indicates an unreadable source format
	ErrUnsupportedFormat = errors.New("unsupported table format")

	// ErrFetchFailed indicates a remote source could not be retrieved
	ErrFetchFailed = errors.New("fetch failed")
)
