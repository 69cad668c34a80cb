package codec

import (
	"github.com/ssargent/rowdb/pkg/heap"
)

// HeapRecordSize returns the number of heap bytes a payload of n bytes occupies
func HeapRecordSize(n int) int {
	return PointerSize + n
}

// EncodeHeapRecord builds the heap representation of an external payload
// Format: [Length(PointerSize)][Payload]
func EncodeHeapRecord(payload []byte) ([]byte, error) {
	if uint64(len(payload)) > maxPointer {
		return nil, ErrLengthOverflow.New("heap record", len(payload), maxPointer)
	}

	buf := make([]byte, HeapRecordSize(len(payload)))
	putPointer(buf, uint64(len(payload)))
	copy(buf[PointerSize:], payload)

	return buf, nil
}

// ReadHeapRecord returns the payload of the heap record starting at offset.
// The result aliases heap memory.
func ReadHeapRecord(h *heap.Heap, offset uint64) ([]byte, error) {
	header, err := h.Slice(offset, PointerSize)
	if err != nil {
		return nil, err
	}
	// The header read succeeded, so offset+PointerSize cannot overflow
	return h.Slice(offset+PointerSize, readPointer(header))
}
