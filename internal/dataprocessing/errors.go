package dataprocessing

import (
	"errors"
	"fmt"
)

// Loader errors
var (
	ErrSourceNotFound    = errors.New("listings source not found")
	ErrUnsupportedFormat = errors.New("unsupported listings source format")
	ErrNoHeader          = errors.New("listings source has no header row")
	ErrMissingColumn     = errors.New("required column missing")
)

// LoadError reports a failure that prevents the canonical table from being built.
// It is fatal: nothing can be served without the table.
type LoadError struct {
	Path string
	Op   string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// FieldParseError reports a single cell that could not be coerced to its
// column type. The cell is left absent (or defaulted) and the row is kept.
type FieldParseError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *FieldParseError) Error() string {
	return fmt.Sprintf("row %d column %q: cannot parse %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *FieldParseError) Unwrap() error {
	return e.Err
}
