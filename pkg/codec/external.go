package codec

import (
	"github.com/ssargent/rowdb/pkg/heap"
)

// ExternalString is a string stored in the heap. The row slot holds only the
// pointer-sized offset of its heap record.
type ExternalString struct {
	Value string
}

func (v *ExternalString) SerializedSize() int { return PointerSize }

func (v *ExternalString) Decode(buf []byte, h *heap.Heap) error {
	payload, err := decodeExternal("external string", buf, h)
	if err != nil {
		return err
	}
	v.Value = lossyString(payload)
	return nil
}

func (v *ExternalString) Encode(buf []byte, h *heap.Heap) error {
	return encodeExternal("external string", buf, h, []byte(v.Value))
}

func (v *ExternalString) Native() any { return v.Value }

// ExternalBytes is an opaque blob stored in the heap
type ExternalBytes struct {
	Value []byte
}

func (v *ExternalBytes) SerializedSize() int { return PointerSize }

func (v *ExternalBytes) Decode(buf []byte, h *heap.Heap) error {
	payload, err := decodeExternal("blob", buf, h)
	if err != nil {
		return err
	}
	v.Value = append([]byte{}, payload...)
	return nil
}

func (v *ExternalBytes) Encode(buf []byte, h *heap.Heap) error {
	return encodeExternal("blob", buf, h, v.Value)
}

func (v *ExternalBytes) Native() any { return v.Value }

func encodeExternal(name string, buf []byte, h *heap.Heap, payload []byte) error {
	if err := checkSize(name, buf, PointerSize); err != nil {
		return err
	}
	if h == nil {
		return ErrNoHeap.New(name)
	}
	record, err := EncodeHeapRecord(payload)
	if err != nil {
		return err
	}
	offset := h.Append(record)
	putPointer(buf, offset)
	return nil
}

func decodeExternal(name string, buf []byte, h *heap.Heap) ([]byte, error) {
	if err := checkSize(name, buf, PointerSize); err != nil {
		return nil, err
	}
	if h == nil {
		return nil, ErrNoHeap.New(name)
	}
	return ReadHeapRecord(h, readPointer(buf))
}
