// Package fault holds the error taxonomy shared by the core packages.
//
// Public packages re-export these values so callers never import internal code.
package fault

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput reports malformed or mismatched input dimensions.
	ErrInvalidInput = errors.New("invalid input")
	// ErrModelNotTrained reports an operation that requires a trained model.
	ErrModelNotTrained = errors.New("model not trained")
	// ErrThresholdNotComputed reports verification before threshold derivation.
	ErrThresholdNotComputed = errors.New("threshold not computed")
	// ErrInsufficientData reports too few samples for a statistic.
	ErrInsufficientData = errors.New("insufficient data")
)

// DimensionMismatchError indicates a vector length that does not match the
// length the receiver was built for. It matches ErrInvalidInput via errors.Is.
type DimensionMismatchError struct {
	Expected int
	Actual   int
	// Row is the offending row index, or -1 for single vectors.
	Row int
}

func (e *DimensionMismatchError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("dimension mismatch at row %d: expected %d, got %d", e.Row, e.Expected, e.Actual)
	}
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrInvalidInput }

// Invalid wraps ErrInvalidInput with a formatted reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Mismatch returns a *DimensionMismatchError for a single vector.
func Mismatch(expected, actual int) error {
	return &DimensionMismatchError{Expected: expected, Actual: actual, Row: -1}
}

// RowMismatch returns a *DimensionMismatchError for row i of a matrix.
func RowMismatch(row, expected, actual int) error {
	return &DimensionMismatchError{Expected: expected, Actual: actual, Row: row}
}

// CheckRows validates that rows is non-empty and every row has length dim.
// A dim of -1 takes the length of the first row.
func CheckRows(rows [][]float64, dim int) (int, error) {
	if len(rows) == 0 {
		return 0, Invalid("no rows")
	}
	if dim < 0 {
		dim = len(rows[0])
	}
	for i, r := range rows {
		if len(r) != dim {
			return 0, RowMismatch(i, dim, len(r))
		}
	}
	return dim, nil
}
