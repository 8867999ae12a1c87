package parser

import (
	"errors"
	"fmt"
)

// ErrEmptyGrid is returned for an SDF file without a single data line.
var ErrEmptyGrid = errors.New("parser: SDF file has no elevation samples")

// ParseError reports a data line that is not a signed 16-bit integer.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: invalid elevation %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// DimensionError reports more data lines than the grid holds.
type DimensionError struct {
	Line  int
	Limit int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("line %d: more than %d elevation samples", e.Line, e.Limit)
}

// PathError reports an input path with no usable file name.
type PathError struct {
	Path string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("not a file: %q", e.Path)
}
