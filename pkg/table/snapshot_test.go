package table

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/rowdb/pkg/codec"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	s := usersSchema(t)
	tbl := New("users", s)

	_, err := tbl.Insert([]any{uint64(1), uint32(30), true, "Ada", "long bio", []byte{1, 2, 3}, int64(-1), int32(2)})
	require.NoError(t, err)
	_, err = tbl.Insert([]any{uint64(2), uint32(31), nil, nil, nil, nil, int64(0), int32(0)})
	require.NoError(t, err)

	data, err := tbl.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, "RWSN", string(data[:4]))
	assert.Equal(t, byte(codec.PointerSize), data[6])

	restored, err := Unmarshal("users", s, data)
	require.NoError(t, err)
	assert.Equal(t, tbl.Stats(), restored.Stats())

	for i := 0; i < tbl.Len(); i++ {
		want, err := tbl.Row(i)
		require.NoError(t, err)
		got, err := restored.Row(i)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// The restored table keeps accepting rows
	idx, err := restored.Insert([]any{uint64(3), uint32(1), false, "Cy", "more", nil, int64(5), int32(5)})
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
	row, err := restored.Row(2)
	require.NoError(t, err)
	assert.Equal(t, "more", row[4])

	// and the original is untouched
	assert.Equal(t, 2, tbl.Len())
}

func TestSnapshot_Empty(t *testing.T) {
	s := usersSchema(t)
	data, err := New("empty", s).MarshalBinary()
	require.NoError(t, err)

	restored, err := Unmarshal("empty", s, data)
	require.NoError(t, err)
	assert.Equal(t, 0, restored.Len())
}

func TestSnapshot_Corrupt(t *testing.T) {
	s := usersSchema(t)
	tbl := New("users", s)
	_, err := tbl.Insert([]any{uint64(1), uint32(30), true, "Ada", "bio", nil, int64(-1), int32(2)})
	require.NoError(t, err)

	good, err := tbl.MarshalBinary()
	require.NoError(t, err)

	mutate := func(fn func([]byte) []byte) []byte {
		return fn(append([]byte{}, good...))
	}

	testCases := []struct {
		name string
		data []byte
	}{
		{name: "short", data: good[:10]},
		{name: "bad magic", data: mutate(func(b []byte) []byte { b[0] = 'X'; return b })},
		{name: "bad version", data: mutate(func(b []byte) []byte { b[4] = 9; return b })},
		{name: "truncated", data: good[:len(good)-1]},
		{name: "trailing bytes", data: append(append([]byte{}, good...), 0)},
		{name: "row count mismatch", data: mutate(func(b []byte) []byte {
			binary.LittleEndian.PutUint64(b[8:16], 2)
			return b
		})},
		{name: "huge section", data: mutate(func(b []byte) []byte {
			binary.LittleEndian.PutUint64(b[16:24], ^uint64(0))
			return b
		})},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Unmarshal("users", s, tc.data)
			require.Error(t, err)
			assert.True(t, ErrCorruptSnapshot.Is(err), err.Error())
		})
	}
}

func TestSnapshot_PointerSizeMismatch(t *testing.T) {
	s := usersSchema(t)
	data, err := New("users", s).MarshalBinary()
	require.NoError(t, err)

	other := 4
	if codec.PointerSize == 4 {
		other = 8
	}
	data[6] = byte(other)

	_, err = Unmarshal("users", s, data)
	require.Error(t, err)
	assert.True(t, ErrPointerSize.Is(err))
}
