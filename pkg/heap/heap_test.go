package heap

import (
	"bytes"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	h := New()
	assert.Equal(t, uint64(0), h.Len())
	assert.Empty(t, h.Bytes())

	sized := NewSized(128)
	assert.Equal(t, uint64(0), sized.Len())
	assert.GreaterOrEqual(t, cap(sized.buf), 128)

	negative := NewSized(-1)
	assert.Equal(t, uint64(0), negative.Len())
}

func TestHeap_AppendReturnsPreAppendLength(t *testing.T) {
	h := New()

	assert.Equal(t, uint64(0), h.Append([]byte("abc")))
	assert.Equal(t, uint64(3), h.Append([]byte("defg")))
	assert.Equal(t, uint64(7), h.Append(nil))
	assert.Equal(t, uint64(7), h.Append([]byte{0x00}))
	assert.Equal(t, uint64(8), h.Len())
}

func TestHeap_OffsetStability(t *testing.T) {
	h := NewSized(4)

	type entry struct {
		offset uint64
		data   []byte
	}

	var entries []entry
	for i := 0; i < 200; i++ {
		// Vary sizes so the backing array is reallocated several times
		data := bytes.Repeat([]byte{byte(i)}, i%17)
		data = append(data, []byte(fmt.Sprintf("item-%d", i))...)
		entries = append(entries, entry{offset: h.Append(data), data: data})

		// Interleave reads of earlier entries with the appends
		if i%10 == 0 {
			for _, e := range entries {
				got, err := h.Slice(e.offset, uint64(len(e.data)))
				require.NoError(t, err)
				require.Equal(t, e.data, got)
			}
		}
	}

	for _, e := range entries {
		got, err := h.Slice(e.offset, uint64(len(e.data)))
		require.NoError(t, err)
		assert.Equal(t, e.data, got)
	}
}

func TestHeap_AppendCopiesInput(t *testing.T) {
	h := New()
	data := []byte("mutable")
	offset := h.Append(data)
	data[0] = 'X'

	got, err := h.Slice(offset, 7)
	require.NoError(t, err)
	assert.Equal(t, []byte("mutable"), got)
}

func TestHeap_SliceOutOfBounds(t *testing.T) {
	h := New()
	h.Append([]byte("0123456789"))

	testCases := []struct {
		name   string
		offset uint64
		length uint64
	}{
		{name: "length past end", offset: 5, length: 6},
		{name: "offset past end", offset: 11, length: 0},
		{name: "offset at end with length", offset: 10, length: 1},
		{name: "overflowing sum", offset: 2, length: math.MaxUint64},
		{name: "huge offset", offset: math.MaxUint64, length: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := h.Slice(tc.offset, tc.length)
			require.Error(t, err)
			assert.True(t, ErrOutOfBounds.Is(err))
			assert.Nil(t, got)
		})
	}
}

func TestHeap_SliceEdges(t *testing.T) {
	h := New()
	h.Append([]byte("0123456789"))

	got, err := h.Slice(10, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = h.Slice(0, 10)
	require.NoError(t, err)
	assert.Equal(t, []byte("0123456789"), got)
}

func TestHeap_SliceIsCapacityClipped(t *testing.T) {
	h := New()
	h.Append([]byte("abcdef"))

	view, err := h.Slice(0, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, cap(view))

	// Appending to the view must not clobber heap bytes
	_ = append(view, 'Z')
	rest, err := h.Slice(3, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte("def"), rest)
}

func TestFromBytes(t *testing.T) {
	src := []byte("snapshot")
	h := FromBytes(src)
	src[0] = 'X'

	assert.Equal(t, uint64(8), h.Len())
	assert.Equal(t, []byte("snapshot"), h.Bytes())
	assert.Equal(t, uint64(8), h.Append([]byte("more")))
}
