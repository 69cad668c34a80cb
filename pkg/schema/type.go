package schema

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ssargent/rowdb/pkg/codec"
)

// Kind identifies one of the supported column encodings
type Kind uint8

const (
	KindBoolean Kind = iota + 1
	KindInt32
	KindUInt32
	KindInt64
	KindUInt64
	KindVarchar
	KindBlob
)

// InlineVarcharLimit is the smallest declared varchar length that is stored
// in the heap instead of inline.
const InlineVarcharLimit = 256

// ExternalFootprint is the in-row width of heap-backed fields: a pointer-sized
// heap offset followed by two reserved bytes.
const ExternalFootprint = 2 + codec.PointerSize

// Type describes the on-disk representation of a column
type Type struct {
	Kind   Kind
	MaxLen int // declared maximum byte length, varchar only
}

// Predeclared fixed types
var (
	Boolean = Type{Kind: KindBoolean}
	Int32   = Type{Kind: KindInt32}
	UInt32  = Type{Kind: KindUInt32}
	Int64   = Type{Kind: KindInt64}
	UInt64  = Type{Kind: KindUInt64}
	Blob    = Type{Kind: KindBlob}
)

// Varchar returns a varchar type with the given maximum byte length
func Varchar(maxLen int) Type {
	return Type{Kind: KindVarchar, MaxLen: maxLen}
}

// Footprint returns the number of bytes the type occupies in the fixed row
// region. It depends only on the type, never on a value.
func (t Type) Footprint() int {
	switch t.Kind {
	case KindBoolean:
		return codec.BooleanSize
	case KindInt32, KindUInt32:
		return codec.Int32Size
	case KindInt64, KindUInt64:
		return codec.Int64Size
	case KindVarchar:
		if t.MaxLen < InlineVarcharLimit {
			return 1 + t.MaxLen
		}
		return ExternalFootprint
	case KindBlob:
		return ExternalFootprint
	default:
		return 0
	}
}

// External reports whether values of this type live in the heap
func (t Type) External() bool {
	return t.Kind == KindBlob || (t.Kind == KindVarchar && t.MaxLen >= InlineVarcharLimit)
}

// Validate checks that the type can be laid out
func (t Type) Validate() error {
	switch t.Kind {
	case KindBoolean, KindInt32, KindUInt32, KindInt64, KindUInt64, KindBlob:
		return nil
	case KindVarchar:
		if t.MaxLen < 1 {
			return ErrInvalidType.New(t.String(), "varchar length must be at least 1")
		}
		return nil
	default:
		return ErrInvalidType.New(t.String(), "unknown kind")
	}
}

// NewValue returns an empty codec ready to decode a value of this type
func (t Type) NewValue() codec.Value {
	switch t.Kind {
	case KindBoolean:
		return &codec.Boolean{}
	case KindInt32:
		return &codec.Int32{}
	case KindUInt32:
		return &codec.UInt32{}
	case KindInt64:
		return &codec.Int64{}
	case KindUInt64:
		return &codec.UInt64{}
	case KindVarchar:
		if t.External() {
			return &codec.ExternalString{}
		}
		return &codec.InlineString{MaxLen: t.MaxLen}
	case KindBlob:
		return &codec.ExternalBytes{}
	default:
		return nil
	}
}

// CodecSlot narrows a field's row slot to the bytes its codec owns. Heap-backed
// fields keep the offset at the start of the slot; the trailing reserved bytes
// stay zero.
func (t Type) CodecSlot(slot []byte) []byte {
	if t.External() && len(slot) >= codec.PointerSize {
		return slot[:codec.PointerSize]
	}
	return slot
}

// Bind converts a Go value into a codec of this type
func (t Type) Bind(v any) (codec.Value, error) {
	switch t.Kind {
	case KindBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, ErrTypeMismatch.New(v, t.String())
		}
		return &codec.Boolean{Value: b}, nil

	case KindInt32:
		n, err := signedOf(v, t)
		if err != nil {
			return nil, err
		}
		if n < minInt32 || n > maxInt32 {
			return nil, ErrValueRange.New(v, t.String())
		}
		return &codec.Int32{Value: int32(n)}, nil

	case KindInt64:
		n, err := signedOf(v, t)
		if err != nil {
			return nil, err
		}
		return &codec.Int64{Value: n}, nil

	case KindUInt32:
		n, err := unsignedOf(v, t)
		if err != nil {
			return nil, err
		}
		if n > maxUint32 {
			return nil, ErrValueRange.New(v, t.String())
		}
		return &codec.UInt32{Value: uint32(n)}, nil

	case KindUInt64:
		n, err := unsignedOf(v, t)
		if err != nil {
			return nil, err
		}
		return &codec.UInt64{Value: n}, nil

	case KindVarchar:
		var s string
		switch x := v.(type) {
		case string:
			s = x
		case []byte:
			s = string(x)
		default:
			return nil, ErrTypeMismatch.New(v, t.String())
		}
		if t.External() {
			return &codec.ExternalString{Value: s}, nil
		}
		return &codec.InlineString{Value: s, MaxLen: t.MaxLen}, nil

	case KindBlob:
		switch x := v.(type) {
		case []byte:
			return &codec.ExternalBytes{Value: x}, nil
		case string:
			return &codec.ExternalBytes{Value: []byte(x)}, nil
		default:
			return nil, ErrTypeMismatch.New(v, t.String())
		}
	}

	return nil, ErrInvalidType.New(t.String(), "unknown kind")
}

// Parse converts the textual form of a value into a codec of this type
func (t Type) Parse(s string) (codec.Value, error) {
	switch t.Kind {
	case KindBoolean:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, ErrTypeMismatch.Wrap(err, s, t.String())
		}
		return t.Bind(b)
	case KindInt32, KindInt64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, ErrTypeMismatch.Wrap(err, s, t.String())
		}
		return t.Bind(n)
	case KindUInt32, KindUInt64:
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, ErrTypeMismatch.Wrap(err, s, t.String())
		}
		return t.Bind(n)
	default:
		return t.Bind(s)
	}
}

// String returns the type name used in schema files
func (t Type) String() string {
	switch t.Kind {
	case KindBoolean:
		return "boolean"
	case KindInt32:
		return "int32"
	case KindUInt32:
		return "uint32"
	case KindInt64:
		return "int64"
	case KindUInt64:
		return "uint64"
	case KindVarchar:
		return fmt.Sprintf("varchar(%d)", t.MaxLen)
	case KindBlob:
		return "blob"
	default:
		return fmt.Sprintf("unknown(%d)", t.Kind)
	}
}

// ParseType parses a type name such as "uint64" or "varchar(30)"
func ParseType(s string) (Type, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "boolean", "bool":
		return Boolean, nil
	case "int32":
		return Int32, nil
	case "uint32":
		return UInt32, nil
	case "int64":
		return Int64, nil
	case "uint64":
		return UInt64, nil
	case "blob":
		return Blob, nil
	}

	if strings.HasPrefix(name, "varchar(") && strings.HasSuffix(name, ")") {
		n, err := strconv.Atoi(strings.TrimSpace(name[len("varchar(") : len(name)-1]))
		if err != nil {
			return Type{}, ErrUnknownType.Wrap(err, s)
		}
		t := Varchar(n)
		if err := t.Validate(); err != nil {
			return Type{}, err
		}
		return t, nil
	}

	return Type{}, ErrUnknownType.New(s)
}

// MarshalText implements encoding.TextMarshaler
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (t Type) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (t *Type) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return t.UnmarshalText([]byte(s))
}
