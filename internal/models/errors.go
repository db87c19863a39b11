package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSourceNotFound    = errors.New("source not found")
	ErrEmptyDataset      = errors.New("dataset has no rows")
	ErrUnsupportedFormat = errors.New("unsupported source format")
)

// SchemaError reports required columns absent after normalization.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return "missing required columns: " + strings.Join(e.Missing, ", ")
}

// CellError reports a value that does not fit its column type. Row is 1-based
// and counts data rows only.
type CellError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("row %d column %q: bad value %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }

// UndefinedMetricWarning records a ratio left undefined by a zero denominator.
// Scope is a platform name, or "total" for the global aggregate.
type UndefinedMetricWarning struct {
	Scope  string `json:"scope"`
	Metric string `json:"metric"`
	Reason string `json:"reason"`
}

func (w UndefinedMetricWarning) String() string {
	return w.Scope + "." + w.Metric + " undefined: " + w.Reason
}
