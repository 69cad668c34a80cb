// Package schema describes row layouts: the supported column types, their
// fixed in-row footprints and the ordered field lists built from them.
//
// A Schema is immutable once built and may be shared by any number of tables.
package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Schema is an ordered, immutable list of fields
type Schema struct {
	fields    []Field
	offsets   []int
	index     map[string]int
	rowLength int
}

// Builder collects fields; Build is the only way to produce a Schema
type Builder struct {
	fields []Field
}

// NewBuilder creates an empty schema builder
func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends a field
func (b *Builder) Add(f Field) *Builder {
	b.fields = append(b.fields, f)
	return b
}

// Column appends a non-nullable field without a default
func (b *Builder) Column(name string, t Type) *Builder {
	return b.Add(Field{Name: name, Type: t})
}

// Build validates the fields and freezes them into a Schema
func (b *Builder) Build() (*Schema, error) {
	return New(b.fields...)
}

// New builds a schema from fields in declaration order
func New(fields ...Field) (*Schema, error) {
	if len(fields) == 0 {
		return nil, ErrInvalidSchema.New("at least one field is required")
	}

	s := &Schema{
		fields:  make([]Field, len(fields)),
		offsets: make([]int, len(fields)),
		index:   make(map[string]int, len(fields)),
	}

	for i, f := range fields {
		if err := f.validate(); err != nil {
			return nil, err
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, ErrInvalidSchema.New(fmt.Sprintf("duplicate field %q", f.Name))
		}
		if f.Default != nil {
			f.Default = append([]byte{}, f.Default...)
		}

		s.fields[i] = f
		s.index[f.Name] = i
		s.offsets[i] = s.rowLength
		s.rowLength += f.Footprint()
	}

	return s, nil
}

// Len returns the number of fields
func (s *Schema) Len() int {
	return len(s.fields)
}

// Field returns the i-th field
func (s *Schema) Field(i int) Field {
	return s.fields[i]
}

// Fields returns a copy of the field list
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Index returns the position of the named field
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Offset returns the byte offset of the i-th field within a row
func (s *Schema) Offset(i int) int {
	return s.offsets[i]
}

// Offsets returns the prefix-summed field offsets
func (s *Schema) Offsets() []int {
	out := make([]int, len(s.offsets))
	copy(out, s.offsets)
	return out
}

// RowLength returns the fixed width of every row built on this schema
func (s *Schema) RowLength() int {
	return s.rowLength
}

// FieldDefinition is the file and wire representation of a Field. Defaults
// use the textual form accepted by Type.Parse.
type FieldDefinition struct {
	Name     string  `yaml:"name" json:"name"`
	Type     Type    `yaml:"type" json:"type"`
	Nullable bool    `yaml:"nullable,omitempty" json:"nullable,omitempty"`
	Default  *string `yaml:"default,omitempty" json:"default,omitempty"`
}

// Definition is the file and wire representation of a Schema
type Definition struct {
	Fields []FieldDefinition `yaml:"fields" json:"fields"`
}

// Definition converts the schema to its serializable form
func (s *Schema) Definition() (Definition, error) {
	out := Definition{Fields: make([]FieldDefinition, len(s.fields))}
	for i, f := range s.fields {
		fd := FieldDefinition{Name: f.Name, Type: f.Type, Nullable: f.Nullable}
		if f.Default != nil {
			d, err := f.FormatDefault()
			if err != nil {
				return Definition{}, err
			}
			fd.Default = &d
		}
		out.Fields[i] = fd
	}
	return out, nil
}

// FromDefinition builds a schema from its serializable form
func FromDefinition(def Definition) (*Schema, error) {
	b := NewBuilder()
	for _, fd := range def.Fields {
		f := Field{Name: fd.Name, Type: fd.Type, Nullable: fd.Nullable}
		if fd.Default != nil {
			if err := fd.Type.Validate(); err != nil {
				return nil, err
			}
			v, err := fd.Type.Parse(*fd.Default)
			if err != nil {
				return nil, ErrInvalidDefault.Wrap(err, fd.Name, err.Error())
			}
			if f.Default, err = DefaultBytes(fd.Type, v); err != nil {
				return nil, ErrInvalidDefault.Wrap(err, fd.Name, err.Error())
			}
		}
		b.Add(f)
	}
	return b.Build()
}

// ParseYAML builds a schema from its YAML definition:
//
//	fields:
//	  - name: id
//	    type: uint64
//	  - name: bio
//	    type: varchar(1000)
//	    nullable: true
func ParseYAML(data []byte) (*Schema, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	return FromDefinition(def)
}

// LoadFile reads a YAML schema definition from disk
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return ParseYAML(data)
}

// YAML renders the schema definition as YAML
func (s *Schema) YAML() ([]byte, error) {
	def, err := s.Definition()
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(def)
}
