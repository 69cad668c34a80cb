package codec

import (
	"encoding/binary"

	"github.com/ssargent/rowdb/pkg/heap"
)

// Fixed in-row widths of the scalar encodings
const (
	BooleanSize = 1
	Int32Size   = 4
	Int64Size   = 8
)

// UInt64 is an unsigned 64-bit integer stored as 8 little-endian bytes
type UInt64 struct {
	Value uint64
}

func (v *UInt64) SerializedSize() int { return Int64Size }

func (v *UInt64) Decode(buf []byte, _ *heap.Heap) error {
	if err := checkSize("uint64", buf, Int64Size); err != nil {
		return err
	}
	v.Value = binary.LittleEndian.Uint64(buf)
	return nil
}

func (v *UInt64) Encode(buf []byte, _ *heap.Heap) error {
	if err := checkSize("uint64", buf, Int64Size); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(buf, v.Value)
	return nil
}

func (v *UInt64) Native() any { return v.Value }

// Int64 is a signed 64-bit integer stored as 8 little-endian bytes
type Int64 struct {
	Value int64
}

func (v *Int64) SerializedSize() int { return Int64Size }

func (v *Int64) Decode(buf []byte, _ *heap.Heap) error {
	if err := checkSize("int64", buf, Int64Size); err != nil {
		return err
	}
	v.Value = int64(binary.LittleEndian.Uint64(buf))
	return nil
}

func (v *Int64) Encode(buf []byte, _ *heap.Heap) error {
	if err := checkSize("int64", buf, Int64Size); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(buf, uint64(v.Value))
	return nil
}

func (v *Int64) Native() any { return v.Value }

// UInt32 is an unsigned 32-bit integer stored as 4 little-endian bytes
type UInt32 struct {
	Value uint32
}

func (v *UInt32) SerializedSize() int { return Int32Size }

func (v *UInt32) Decode(buf []byte, _ *heap.Heap) error {
	if err := checkSize("uint32", buf, Int32Size); err != nil {
		return err
	}
	v.Value = binary.LittleEndian.Uint32(buf)
	return nil
}

func (v *UInt32) Encode(buf []byte, _ *heap.Heap) error {
	if err := checkSize("uint32", buf, Int32Size); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(buf, v.Value)
	return nil
}

func (v *UInt32) Native() any { return v.Value }

// Int32 is a signed 32-bit integer stored as 4 little-endian bytes
type Int32 struct {
	Value int32
}

func (v *Int32) SerializedSize() int { return Int32Size }

func (v *Int32) Decode(buf []byte, _ *heap.Heap) error {
	if err := checkSize("int32", buf, Int32Size); err != nil {
		return err
	}
	v.Value = int32(binary.LittleEndian.Uint32(buf))
	return nil
}

func (v *Int32) Encode(buf []byte, _ *heap.Heap) error {
	if err := checkSize("int32", buf, Int32Size); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(buf, uint32(v.Value))
	return nil
}

func (v *Int32) Native() any { return v.Value }

// Boolean is stored as a single byte. Only 1 decodes as true.
type Boolean struct {
	Value bool
}

func (v *Boolean) SerializedSize() int { return BooleanSize }

func (v *Boolean) Decode(buf []byte, _ *heap.Heap) error {
	if err := checkSize("boolean", buf, BooleanSize); err != nil {
		return err
	}
	v.Value = buf[0] == 1
	return nil
}

func (v *Boolean) Encode(buf []byte, _ *heap.Heap) error {
	if err := checkSize("boolean", buf, BooleanSize); err != nil {
		return err
	}
	if v.Value {
		buf[0] = 1
	} else {
		buf[0] = 0
	}
	return nil
}

func (v *Boolean) Native() any { return v.Value }
