package stepcadence

import (
	"errors"
	"fmt"
)

var (
	// ErrSchema reports a raw table that lacks a header level, a required
	// metric column, or has duplicate users. It aborts a run before any
	// aggregation.
	ErrSchema = errors.New("schema error")

	// ErrUnknownCategory reports a category name outside All, Walking, Active.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrUnrecognizedStatistic reports a statistic other than median, mean or
	// count.
	ErrUnrecognizedStatistic = errors.New("unrecognized statistic")

	// ErrInvalidCellValue reports a non-numeric, non-empty (or negative) cell.
	ErrInvalidCellValue = errors.New("invalid cell value")

	// ErrCellPolicyUnset is returned when the caller did not choose how
	// invalid cells are handled.
	ErrCellPolicyUnset = errors.New("invalid-cell policy not set")
)

// CellError locates an invalid cell.
type CellError struct {
	UserID string
	Day    Day
	Metric Metric
	Text   string
}

func (e *CellError) Error() string {
	return fmt.Sprintf("%v: user %q day %d %s: %q", ErrInvalidCellValue, e.UserID, e.Day, e.Metric, e.Text)
}

func (e *CellError) Unwrap() error {
	return ErrInvalidCellValue
}

// SchemaErrorf formats an error that wraps ErrSchema.
func SchemaErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSchema, fmt.Sprintf(format, args...))
}
