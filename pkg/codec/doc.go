// Package codec provides the value codecs that move single field values in
// and out of a row's fixed region and the heap.
//
// Every codec implements Value: it reports its in-row footprint, decodes
// itself from an exactly sized row slot and encodes itself into one. Codecs
// never read or write outside the slot they are given; a slot of the wrong
// length is rejected with ErrSizeMismatch.
//
// # In-Row Formats
//
// All integers are little-endian.
//
//	UInt64 / Int64    [Value(8)]
//	UInt32 / Int32    [Value(4)]
//	Boolean           [Value(1)]            1 = true, anything else = false
//	InlineString      [Len(1)][UTF-8(Len)][padding up to MaxLen]
//	External*         [HeapOffset(PointerSize)]
//
// # Heap Records
//
// ExternalString and ExternalBytes append a record to the heap and store its
// offset in the row slot:
//
//	[Length(PointerSize)][Payload(Length)]
//
// PointerSize is the native word size of the build (8 on 64-bit targets, 4 on
// 32-bit targets). It is baked into both the row slot and the heap record, so
// data written by a 64-bit build cannot be read by a 32-bit build and vice
// versa. Snapshot formats that persist rows record it explicitly.
//
// # Usage
//
//	h := heap.New()
//	slot := make([]byte, codec.PointerSize)
//
//	in := &codec.ExternalString{Value: "a long biography"}
//	if err := in.Encode(slot, h); err != nil {
//	    return err
//	}
//
//	var out codec.ExternalString
//	if err := out.Decode(slot, h); err != nil {
//	    return err
//	}
//
// # Error Handling
//
// Failures are returned, never panicked:
//   - ErrSizeMismatch: the slot is not SerializedSize() bytes
//   - ErrOutOfBounds: a length byte or heap reference points past its buffer
//   - ErrLengthOverflow: an inline string is longer than 255 bytes or its
//     declared maximum; values are never truncated
//   - ErrNoHeap: an external value was used without a heap
//
// Decoding text is lenient: invalid UTF-8 is replaced with U+FFFD rather than
// rejected.
//
// # Thread Safety
//
// Codec values are not shared between goroutines. Encoding an external value
// appends to the heap and needs exclusive access to it; decoding only reads.
package codec
