package schema

import (
	errors "gopkg.in/src-d/go-errors.v1"
)

var (
	ErrInvalidType    = errors.NewKind("invalid type %s: %s")
	ErrUnknownType    = errors.NewKind("unknown type %q")
	ErrTypeMismatch   = errors.NewKind("cannot store %#v in a %s field")
	ErrValueRange     = errors.NewKind("%v is out of range for %s")
	ErrInvalidSchema  = errors.NewKind("invalid schema: %s")
	ErrInvalidDefault = errors.NewKind("invalid default for field %q: %s")
)
