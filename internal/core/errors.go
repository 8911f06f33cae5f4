package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSchema            = errors.New("schema error")
	ErrEmptyData         = errors.New("no transactions to aggregate")
	ErrInsufficientData  = errors.New("insufficient data")
	ErrInvalidRange      = errors.New("invalid date range")
	ErrInvalidHorizon    = errors.New("forecast horizon must be between 1 and 12 months")
	ErrNegativeThreshold = errors.New("budget threshold must not be negative")
	ErrInvalidAmount     = errors.New("invalid amount")
)

// SchemaError reports canonical columns that are missing from a table, or
// that more than one header maps to.
type SchemaError struct {
	Missing   []string
	Duplicate []string
}

func (e *SchemaError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing columns: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Duplicate) > 0 {
		parts = append(parts, "duplicate columns: "+strings.Join(e.Duplicate, ", "))
	}
	return "schema error: " + strings.Join(parts, "; ")
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// InvalidRangeError is returned when a filter starts after it ends.
type InvalidRangeError struct {
	Start Date
	End   Date
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range: start %s is after end %s", e.Start, e.End)
}

func (e *InvalidRangeError) Is(target error) bool {
	return target == ErrInvalidRange
}
