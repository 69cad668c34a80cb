package schema

import (
	"fmt"

	"github.com/ssargent/rowdb/pkg/codec"
)

// Field describes one column of a row
type Field struct {
	Name     string
	Type     Type
	Nullable bool
	// Default holds raw value bytes: the little-endian in-row encoding for
	// scalar types, the payload for varchar and blob.
	Default []byte
}

// Footprint returns the field's width in the fixed row region
func (f Field) Footprint() int {
	return f.Type.Footprint()
}

// HasDefault reports whether the field declares a default value
func (f Field) HasDefault() bool {
	return f.Default != nil
}

// DefaultValue returns the field default as a codec
func (f Field) DefaultValue() (codec.Value, error) {
	if f.Default == nil {
		return nil, ErrInvalidDefault.New(f.Name, "no default declared")
	}

	switch f.Type.Kind {
	case KindVarchar:
		return f.Type.Bind(string(f.Default))
	case KindBlob:
		return f.Type.Bind(append([]byte{}, f.Default...))
	}

	v := f.Type.NewValue()
	if v == nil {
		return nil, ErrInvalidType.New(f.Type.String(), "unknown kind")
	}
	if err := v.Decode(f.Default, nil); err != nil {
		return nil, ErrInvalidDefault.Wrap(err, f.Name, err.Error())
	}
	return v, nil
}

// DefaultBytes converts a bound value into the raw form stored in Field.Default
func DefaultBytes(t Type, v codec.Value) ([]byte, error) {
	switch x := v.(type) {
	case *codec.InlineString:
		return []byte(x.Value), nil
	case *codec.ExternalString:
		return []byte(x.Value), nil
	case *codec.ExternalBytes:
		return append([]byte{}, x.Value...), nil
	}

	buf := make([]byte, t.Footprint())
	if err := v.Encode(buf, nil); err != nil {
		return nil, err
	}
	return buf, nil
}

// FormatDefault renders the default in the textual form accepted by Type.Parse
func (f Field) FormatDefault() (string, error) {
	v, err := f.DefaultValue()
	if err != nil {
		return "", err
	}
	switch x := v.Native().(type) {
	case []byte:
		return string(x), nil
	default:
		return fmt.Sprint(x), nil
	}
}

func (f Field) validate() error {
	if f.Name == "" {
		return ErrInvalidSchema.New("field name must not be empty")
	}
	if err := f.Type.Validate(); err != nil {
		return err
	}
	if f.Default == nil {
		return nil
	}

	v, err := f.DefaultValue()
	if err != nil {
		return err
	}
	// Inline defaults must fit the declared length
	if !f.Type.External() {
		if err := v.Encode(make([]byte, v.SerializedSize()), nil); err != nil {
			return ErrInvalidDefault.Wrap(err, f.Name, err.Error())
		}
	}
	return nil
}
