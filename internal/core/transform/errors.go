package transform

import "fmt"

// ColumnNotFoundError reports a condition or parameter referencing a
// column the dataset does not have.
type ColumnNotFoundError struct {
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column '%s' not found in CSV file", e.Column)
}

// TypeConversionError reports a value that must be numeric for the
// requested comparison but is not coercible.
type TypeConversionError struct {
	Column string
	Value  string
}

func (e *TypeConversionError) Error() string {
	return fmt.Sprintf("value '%s' for column '%s' must be a number", e.Value, e.Column)
}

// UnsupportedOperatorError reports a filter operator outside the
// accepted set. Submission-time validation normally rejects these; the
// engine checks again so a stale stored task cannot slip through.
type UnsupportedOperatorError struct {
	Operator string
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("unsupported operator: %s", e.Operator)
}
