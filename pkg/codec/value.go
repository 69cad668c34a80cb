package codec

import (
	"encoding/binary"
	"math/bits"

	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/ssargent/rowdb/pkg/heap"
)

// PointerSize is the width in bytes of heap offsets and heap record length
// prefixes. It is the native word size of the build target and is part of
// the on-disk contract: encodings are not portable between 32-bit and 64-bit
// builds.
const PointerSize = bits.UintSize / 8

// maxPointer is the largest offset or length a pointer-sized field can hold.
const maxPointer = uint64(^uint(0))

var (
	// ErrSizeMismatch is returned when the row slice handed to a codec is not
	// exactly the codec's serialized size.
	ErrSizeMismatch = errors.NewKind("%s codec needs a %d byte slot, got %d bytes")

	// ErrLengthOverflow is returned when a value does not fit in the length
	// budget of its encoding.
	ErrLengthOverflow = errors.NewKind("%s value of %d bytes exceeds the %d byte limit")

	// ErrNoHeap is returned when an externally stored value is encoded or
	// decoded without a heap.
	ErrNoHeap = errors.NewKind("%s codec requires a heap")

	// ErrOutOfBounds is the bounds error shared with the heap.
	ErrOutOfBounds = heap.ErrOutOfBounds
)

// Value is a single field value that knows how to move itself in and out of
// its slot in a row's fixed region.
type Value interface {
	// SerializedSize is the in-row footprint of the value. For heap-backed
	// values this is the pointer width, not the payload length.
	SerializedSize() int

	// Decode fills the value from its row slot, reading the heap when the
	// value is stored externally.
	Decode(buf []byte, h *heap.Heap) error

	// Encode writes the value into its row slot, appending to the heap first
	// when the value is stored externally.
	Encode(buf []byte, h *heap.Heap) error

	// Native returns the decoded Go value.
	Native() any
}

// IsBoundsError reports whether err is a slot size mismatch or an out of
// bounds read.
func IsBoundsError(err error) bool {
	return ErrSizeMismatch.Is(err) || ErrOutOfBounds.Is(err)
}

func checkSize(name string, buf []byte, want int) error {
	if len(buf) != want {
		return ErrSizeMismatch.New(name, want, len(buf))
	}
	return nil
}

func putPointer(buf []byte, v uint64) {
	if PointerSize == 8 {
		binary.LittleEndian.PutUint64(buf, v)
		return
	}
	binary.LittleEndian.PutUint32(buf, uint32(v))
}

func readPointer(buf []byte) uint64 {
	if PointerSize == 8 {
		return binary.LittleEndian.Uint64(buf)
	}
	return uint64(binary.LittleEndian.Uint32(buf))
}
