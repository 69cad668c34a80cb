// Package table accumulates encoded rows for a schema.
//
// A Table keeps three buffers: the fixed region (RowLength bytes per row,
// every field at its prefix-summed offset), a null bitmap per row kept beside
// the fixed region, and one heap shared by every heap-backed field of the
// table. Writers take the table lock exclusively, which is also the only
// access path to the heap; readers share it.
package table

import (
	"sync"

	"github.com/ssargent/rowdb/pkg/codec"
	"github.com/ssargent/rowdb/pkg/heap"
	"github.com/ssargent/rowdb/pkg/schema"
)

// Table holds the encoded rows of one schema
type Table struct {
	name      string
	schema    *schema.Schema
	rowLength int
	nullWidth int

	mutex sync.RWMutex
	fixed []byte
	nulls []byte
	heap  *heap.Heap
	rows  int
}

// New creates an empty table
func New(name string, s *schema.Schema, opts ...Options) *Table {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	return newTable(name, s, heap.NewSized(o.HeapCapacity))
}

func newTable(name string, s *schema.Schema, h *heap.Heap) *Table {
	return &Table{
		name:      name,
		schema:    s,
		rowLength: s.RowLength(),
		nullWidth: (s.Len() + 7) / 8,
		heap:      h,
	}
}

// Name returns the table name
func (t *Table) Name() string {
	return t.name
}

// Schema returns the shared, immutable schema
func (t *Table) Schema() *schema.Schema {
	return t.schema
}

// RowLength returns the fixed width of each row
func (t *Table) RowLength() int {
	return t.rowLength
}

// Len returns the number of rows
func (t *Table) Len() int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.rows
}

// Insert encodes one row and returns its index. values must follow schema
// order. A nil value takes the field default, or null when the field is
// nullable. The row is only committed when every field encodes; heap records
// written for a rejected row are left in place since the heap never compacts.
func (t *Table) Insert(values []any) (int, error) {
	if len(values) != t.schema.Len() {
		return 0, ErrArity.New(t.name, t.schema.Len(), len(values))
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	row := make([]byte, t.rowLength)
	nulls := make([]byte, t.nullWidth)

	for i := 0; i < t.schema.Len(); i++ {
		f := t.schema.Field(i)
		v, err := t.bind(f, values[i])
		if err != nil {
			return 0, err
		}
		if v == nil {
			nulls[i/8] |= 1 << (i % 8)
			continue
		}

		slot := row[t.schema.Offset(i) : t.schema.Offset(i)+f.Footprint()]
		if err := v.Encode(f.Type.CodecSlot(slot), t.heap); err != nil {
			return 0, &FieldError{Field: f.Name, Err: err}
		}
	}

	t.fixed = append(t.fixed, row...)
	t.nulls = append(t.nulls, nulls...)
	t.rows++

	return t.rows - 1, nil
}

// bind resolves the codec for one field; a nil codec means null
func (t *Table) bind(f schema.Field, value any) (codec.Value, error) {
	if value != nil {
		v, err := f.Type.Bind(value)
		if err != nil {
			return nil, &FieldError{Field: f.Name, Err: err}
		}
		return v, nil
	}

	switch {
	case f.HasDefault():
		v, err := f.DefaultValue()
		if err != nil {
			return nil, &FieldError{Field: f.Name, Err: err}
		}
		return v, nil
	case f.Nullable:
		return nil, nil
	default:
		return nil, ErrMissingValue.New(f.Name)
	}
}

// Row decodes the row at index i. Null fields decode as nil.
func (t *Table) Row(i int) ([]any, error) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	if i < 0 || i >= t.rows {
		return nil, ErrRowOutOfRange.New(i, t.rows)
	}
	return t.decodeRow(i)
}

// RowMap decodes the row at index i keyed by field name
func (t *Table) RowMap(i int) (map[string]any, error) {
	row, err := t.Row(i)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(row))
	for j, v := range row {
		out[t.schema.Field(j).Name] = v
	}
	return out, nil
}

// Scan decodes every row in order. Inserts block until the scan returns.
func (t *Table) Scan(fn func(i int, row []any) error) error {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	for i := 0; i < t.rows; i++ {
		row, err := t.decodeRow(i)
		if err != nil {
			return err
		}
		if err := fn(i, row); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) decodeRow(i int) ([]any, error) {
	row := t.fixed[i*t.rowLength : (i+1)*t.rowLength]
	nulls := t.nulls[i*t.nullWidth : (i+1)*t.nullWidth]

	out := make([]any, t.schema.Len())
	for j := range out {
		if nulls[j/8]&(1<<(j%8)) != 0 {
			continue
		}

		f := t.schema.Field(j)
		v := f.Type.NewValue()
		slot := row[t.schema.Offset(j) : t.schema.Offset(j)+f.Footprint()]
		if err := v.Decode(f.Type.CodecSlot(slot), t.heap); err != nil {
			return nil, &FieldError{Field: f.Name, Err: err}
		}
		out[j] = v.Native()
	}
	return out, nil
}

// Stats reports row count and buffer sizes
func (t *Table) Stats() Stats {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	return Stats{
		Rows:       t.rows,
		RowLength:  t.rowLength,
		FixedBytes: uint64(len(t.fixed)),
		NullBytes:  uint64(len(t.nulls)),
		HeapBytes:  t.heap.Len(),
	}
}
