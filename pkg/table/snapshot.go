package table

import (
	"encoding/binary"
	"fmt"

	"github.com/ssargent/rowdb/pkg/codec"
	"github.com/ssargent/rowdb/pkg/heap"
	"github.com/ssargent/rowdb/pkg/schema"
)

// Snapshot format, all integers little-endian:
//
//	[Magic(4)][Version(2)][PointerSize(1)][Reserved(1)][Rows(8)]
//	[FixedLen(8)][Fixed][NullsLen(8)][Nulls][HeapLen(8)][Heap]
//
// The pointer size is recorded because heap offsets in the fixed region and
// heap record lengths are native-word sized.
const (
	snapshotMagic      = "RWSN"
	snapshotVersion    = 1
	snapshotHeaderSize = 4 + 2 + 1 + 1 + 8
)

// MarshalBinary serializes the table buffers. The schema is not included.
func (t *Table) MarshalBinary() ([]byte, error) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	heapBytes := t.heap.Bytes()
	size := snapshotHeaderSize + 3*8 + len(t.fixed) + len(t.nulls) + len(heapBytes)
	buf := make([]byte, 0, size)

	buf = append(buf, snapshotMagic...)
	buf = binary.LittleEndian.AppendUint16(buf, snapshotVersion)
	buf = append(buf, byte(codec.PointerSize), 0)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(t.rows))

	for _, section := range [][]byte{t.fixed, t.nulls, heapBytes} {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(len(section)))
		buf = append(buf, section...)
	}

	return buf, nil
}

// Unmarshal rebuilds a table from a snapshot taken with MarshalBinary
func Unmarshal(name string, s *schema.Schema, data []byte) (*Table, error) {
	if len(data) < snapshotHeaderSize {
		return nil, ErrCorruptSnapshot.New("data too short for header")
	}
	if string(data[0:4]) != snapshotMagic {
		return nil, ErrCorruptSnapshot.New("bad magic")
	}
	if v := binary.LittleEndian.Uint16(data[4:6]); v != snapshotVersion {
		return nil, ErrCorruptSnapshot.New(fmt.Sprintf("unsupported version %d", v))
	}
	if ps := int(data[6]); ps != codec.PointerSize {
		return nil, ErrPointerSize.New(ps, codec.PointerSize)
	}
	rows := binary.LittleEndian.Uint64(data[8:16])

	rest := data[snapshotHeaderSize:]
	sections := make([][]byte, 3)
	for i := range sections {
		if len(rest) < 8 {
			return nil, ErrCorruptSnapshot.New("truncated section header")
		}
		n := binary.LittleEndian.Uint64(rest[:8])
		rest = rest[8:]
		if n > uint64(len(rest)) {
			return nil, ErrCorruptSnapshot.New(fmt.Sprintf("section of %d bytes exceeds remaining %d", n, len(rest)))
		}
		sections[i] = rest[:n]
		rest = rest[n:]
	}
	if len(rest) != 0 {
		return nil, ErrCorruptSnapshot.New(fmt.Sprintf("%d trailing bytes", len(rest)))
	}

	t := newTable(name, s, heap.FromBytes(sections[2]))
	if rows > uint64(len(sections[0])) {
		return nil, ErrCorruptSnapshot.New("row count exceeds fixed region")
	}
	if uint64(len(sections[0])) != rows*uint64(t.rowLength) {
		return nil, ErrCorruptSnapshot.New(fmt.Sprintf("fixed region of %d bytes does not hold %d rows of %d bytes", len(sections[0]), rows, t.rowLength))
	}
	if uint64(len(sections[1])) != rows*uint64(t.nullWidth) {
		return nil, ErrCorruptSnapshot.New("null bitmap does not match row count")
	}

	t.fixed = append([]byte{}, sections[0]...)
	t.nulls = append([]byte{}, sections[1]...)
	t.rows = int(rows)

	return t, nil
}
