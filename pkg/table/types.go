package table

import (
	"fmt"

	errors "gopkg.in/src-d/go-errors.v1"
)

// Errors
var (
	ErrArity           = errors.NewKind("table %s expects %d values, got %d")
	ErrMissingValue    = errors.NewKind("field %q is not nullable and has no default")
	ErrRowOutOfRange   = errors.NewKind("row %d out of range, table has %d rows")
	ErrCorruptSnapshot = errors.NewKind("corrupt table snapshot: %s")
	ErrPointerSize     = errors.NewKind("snapshot written with %d byte pointers, this build uses %d")
)

// FieldError ties a codec or binding failure to the field that caused it
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Stats summarizes the memory held by a table
type Stats struct {
	Rows       int    `json:"rows"`
	RowLength  int    `json:"row_length"`
	FixedBytes uint64 `json:"fixed_bytes"`
	NullBytes  uint64 `json:"null_bytes"`
	HeapBytes  uint64 `json:"heap_bytes"`
}

// Options configures a new table
type Options struct {
	HeapCapacity int // initial heap capacity in bytes
}
