package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/rowdb/pkg/heap"
)

func TestExternalString_RoundTrip(t *testing.T) {
	h := heap.New()

	testCases := []struct {
		name  string
		value string
	}{
		{name: "empty", value: ""},
		{name: "single space", value: " "},
		{name: "ascii with symbols", value: "abc123!@#\n\t"},
		{name: "multi-byte utf8", value: "Infinite Taco -> ∞ 🌮"},
		{name: "inline boundary", value: strings.Repeat("b", 255)},
		{name: "far beyond inline limit", value: strings.Repeat("long text ", 10000)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			before := h.Len()
			in := &ExternalString{Value: tc.value}
			require.Equal(t, PointerSize, in.SerializedSize())

			slot := make([]byte, PointerSize)
			require.NoError(t, in.Encode(slot, h))

			// The slot points at the record appended by this encode
			assert.Equal(t, before, readPointer(slot))
			assert.Equal(t, before+uint64(HeapRecordSize(len(tc.value))), h.Len())

			header, err := h.Slice(before, PointerSize)
			require.NoError(t, err)
			assert.Equal(t, uint64(len(tc.value)), readPointer(header))

			var out ExternalString
			require.NoError(t, out.Decode(slot, h))
			assert.Equal(t, tc.value, out.Value)
		})
	}
}

func TestExternalBytes_RoundTrip(t *testing.T) {
	h := heap.New()

	for _, payload := range [][]byte{
		{},
		{0x00, 0x01, 0x02},
		{0xFF, 0xFE, 0xFD},
		bytes.Repeat([]byte{0xAB}, 70000),
	} {
		slot := make([]byte, PointerSize)
		require.NoError(t, (&ExternalBytes{Value: payload}).Encode(slot, h))

		var out ExternalBytes
		require.NoError(t, out.Decode(slot, h))
		assert.Equal(t, payload, out.Value)
	}
}

func TestExternalBytes_DecodeCopiesPayload(t *testing.T) {
	h := heap.New()
	slot := make([]byte, PointerSize)
	require.NoError(t, (&ExternalBytes{Value: []byte("blob")}).Encode(slot, h))

	var out ExternalBytes
	require.NoError(t, out.Decode(slot, h))
	out.Value[0] = 'X'

	var again ExternalBytes
	require.NoError(t, again.Decode(slot, h))
	assert.Equal(t, []byte("blob"), again.Value)
}

func TestExternalBytes_KeepsInvalidUTF8(t *testing.T) {
	h := heap.New()
	slot := make([]byte, PointerSize)
	payload := []byte{'a', 0xFF, 'b'}
	require.NoError(t, (&ExternalBytes{Value: payload}).Encode(slot, h))

	var blob ExternalBytes
	require.NoError(t, blob.Decode(slot, h))
	assert.Equal(t, payload, blob.Value)

	var text ExternalString
	require.NoError(t, text.Decode(slot, h))
	assert.Equal(t, "a�b", text.Value)
}

func TestExternal_SharedHeapOffsetsStayValid(t *testing.T) {
	h := heap.New()
	values := []string{"first", "", strings.Repeat("x", 4096), "last"}
	slots := make([][]byte, len(values))

	for i, v := range values {
		slots[i] = make([]byte, PointerSize)
		require.NoError(t, (&ExternalString{Value: v}).Encode(slots[i], h))
	}

	for i, v := range values {
		var out ExternalString
		require.NoError(t, out.Decode(slots[i], h))
		assert.Equal(t, v, out.Value)
	}
}

func TestExternal_Errors(t *testing.T) {
	t.Run("short slot", func(t *testing.T) {
		var out ExternalString
		err := out.Decode(make([]byte, PointerSize-1), heap.New())
		require.Error(t, err)
		assert.True(t, ErrSizeMismatch.Is(err))
	})

	t.Run("offset past heap end", func(t *testing.T) {
		h := heap.New()
		h.Append([]byte("tiny"))
		slot := make([]byte, PointerSize)
		putPointer(slot, 1000)

		var out ExternalString
		err := out.Decode(slot, h)
		require.Error(t, err)
		assert.True(t, ErrOutOfBounds.Is(err))
	})

	t.Run("record length past heap end", func(t *testing.T) {
		h := heap.New()
		header := make([]byte, PointerSize)
		putPointer(header, 50)
		offset := h.Append(header)
		h.Append([]byte("only a few bytes"))

		slot := make([]byte, PointerSize)
		putPointer(slot, offset)

		var out ExternalBytes
		err := out.Decode(slot, h)
		require.Error(t, err)
		assert.True(t, ErrOutOfBounds.Is(err))
	})

	t.Run("missing heap", func(t *testing.T) {
		slot := make([]byte, PointerSize)
		err := (&ExternalString{Value: "x"}).Encode(slot, nil)
		require.Error(t, err)
		assert.True(t, ErrNoHeap.Is(err))

		var out ExternalString
		err = out.Decode(slot, nil)
		require.Error(t, err)
		assert.True(t, ErrNoHeap.Is(err))
	})
}

func TestHeapRecord(t *testing.T) {
	record, err := EncodeHeapRecord([]byte("abc"))
	require.NoError(t, err)
	require.Len(t, record, PointerSize+3)
	assert.Equal(t, uint64(3), readPointer(record[:PointerSize]))
	assert.Equal(t, []byte("abc"), record[PointerSize:])

	h := heap.New()
	h.Append([]byte("prefix"))
	offset := h.Append(record)

	payload, err := ReadHeapRecord(h, offset)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), payload)

	_, err = ReadHeapRecord(h, h.Len()-1)
	require.Error(t, err)
	assert.True(t, ErrOutOfBounds.Is(err))
}
