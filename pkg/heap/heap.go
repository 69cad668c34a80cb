// Package heap provides the append-only byte arena that backs variable-length
// values which do not fit inline in a row.
//
// Offsets returned by Append are permanent: the heap never compacts, shrinks
// or relocates data, so an offset stays valid for the lifetime of the heap.
// A Heap is not safe for concurrent use. Owners must give a writer exclusive
// access; readers may share the heap only while no append is in progress.
package heap

import (
	errors "gopkg.in/src-d/go-errors.v1"
)

// ErrOutOfBounds is returned when a read would extend past the end of a buffer.
var ErrOutOfBounds = errors.NewKind("read of %d bytes at offset %d exceeds buffer length %d")

// Heap is a growable, append-only byte buffer
type Heap struct {
	buf []byte
}

// New creates an empty heap
func New() *Heap {
	return &Heap{}
}

// NewSized creates an empty heap with an initial capacity
func NewSized(capacity int) *Heap {
	if capacity < 0 {
		capacity = 0
	}
	return &Heap{buf: make([]byte, 0, capacity)}
}

// FromBytes restores a heap from previously snapshotted contents.
// The data is copied; the caller keeps ownership of b.
func FromBytes(b []byte) *Heap {
	buf := make([]byte, len(b))
	copy(buf, b)
	return &Heap{buf: buf}
}

// Append copies data to the end of the heap and returns the offset at which
// it starts, which is the heap length before the append.
func (h *Heap) Append(data []byte) uint64 {
	offset := uint64(len(h.buf))
	h.buf = append(h.buf, data...)
	return offset
}

// Slice returns a read-only view of length bytes starting at offset.
// The view aliases heap memory and must not be retained across appends.
func (h *Heap) Slice(offset, length uint64) ([]byte, error) {
	size := uint64(len(h.buf))
	// offset+length may overflow, so compare against the remaining space
	if offset > size || length > size-offset {
		return nil, ErrOutOfBounds.New(length, offset, size)
	}
	end := offset + length
	return h.buf[offset:end:end], nil
}

// Len returns the number of bytes stored in the heap
func (h *Heap) Len() uint64 {
	return uint64(len(h.buf))
}

// Bytes returns the full heap contents. The result aliases heap memory.
func (h *Heap) Bytes() []byte {
	return h.buf[:len(h.buf):len(h.buf)]
}
