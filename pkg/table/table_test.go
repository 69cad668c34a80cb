package table

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/rowdb/pkg/codec"
	"github.com/ssargent/rowdb/pkg/schema"
)

func usersSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.NewBuilder().
		Column("id", schema.UInt64).
		Column("age", schema.UInt32).
		Add(schema.Field{Name: "is_active", Type: schema.Boolean, Nullable: true}).
		Add(schema.Field{Name: "name", Type: schema.Varchar(30), Default: []byte("anonymous")}).
		Add(schema.Field{Name: "bio", Type: schema.Varchar(1000), Nullable: true}).
		Add(schema.Field{Name: "avatar", Type: schema.Blob, Nullable: true}).
		Column("delta", schema.Int64).
		Column("score", schema.Int32).
		Build()
	require.NoError(t, err)
	return s
}

func TestTable_InsertAndRow(t *testing.T) {
	tbl := New("users", usersSchema(t))
	assert.Equal(t, "users", tbl.Name())
	assert.Equal(t, 8+4+1+31+2*(2+codec.PointerSize)+8+4, tbl.RowLength())

	rows := [][]any{
		{uint64(1), uint32(30), true, "Ada", strings.Repeat("mathematician ", 100), []byte{0x89, 'P', 'N', 'G'}, int64(-5), int32(7)},
		{uint64(2), uint32(0), false, "", "", []byte{}, int64(0), int32(0)},
		{uint64(18446744073709551615), uint32(4294967295), nil, nil, nil, nil, int64(9223372036854775807), int32(-2147483648)},
		{uint64(4), uint32(41), true, "Infinite Taco -> ∞ 🌮", " ", []byte("x"), int64(1), int32(1)},
	}

	for i, r := range rows {
		idx, err := tbl.Insert(r)
		require.NoError(t, err)
		assert.Equal(t, i, idx)
	}
	assert.Equal(t, len(rows), tbl.Len())

	for i, r := range rows {
		got, err := tbl.Row(i)
		require.NoError(t, err)

		want := append([]any{}, r...)
		if i == 2 {
			// Nil name takes the declared default; other nils stay null
			want[3] = "anonymous"
		}
		assert.Equal(t, want, got, "row %d", i)
	}
}

func TestTable_RowMap(t *testing.T) {
	tbl := New("users", usersSchema(t))
	_, err := tbl.Insert([]any{uint64(9), uint32(3), nil, "Bo", nil, nil, int64(2), int32(3)})
	require.NoError(t, err)

	m, err := tbl.RowMap(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), m["id"])
	assert.Equal(t, "Bo", m["name"])
	assert.Nil(t, m["bio"])
	assert.Len(t, m, 8)
}

func TestTable_FixedRegionLayout(t *testing.T) {
	s, err := schema.NewBuilder().
		Column("flag", schema.Boolean).
		Column("n", schema.UInt32).
		Column("id", schema.UInt64).
		Build()
	require.NoError(t, err)

	tbl := New("layout", s)
	_, err = tbl.Insert([]any{true, uint32(0x01020304), uint64(5)})
	require.NoError(t, err)

	stats := tbl.Stats()
	assert.Equal(t, uint64(13), stats.FixedBytes)
	assert.Equal(t, uint64(0), stats.HeapBytes)
	assert.Equal(t, []byte{1, 4, 3, 2, 1, 5, 0, 0, 0, 0, 0, 0, 0}, tbl.fixed)
}

func TestTable_SharedHeap(t *testing.T) {
	s, err := schema.NewBuilder().
		Column("a", schema.Varchar(300)).
		Column("b", schema.Blob).
		Build()
	require.NoError(t, err)

	tbl := New("heap", s)
	for i := 0; i < 50; i++ {
		_, err := tbl.Insert([]any{strings.Repeat("a", i*10), []byte(fmt.Sprintf("blob-%d", i))})
		require.NoError(t, err)
	}

	for i := 0; i < 50; i++ {
		row, err := tbl.Row(i)
		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("a", i*10), row[0])
		assert.Equal(t, []byte(fmt.Sprintf("blob-%d", i)), row[1])
	}
	assert.Greater(t, tbl.Stats().HeapBytes, uint64(0))
}

func TestTable_InsertErrors(t *testing.T) {
	t.Run("arity", func(t *testing.T) {
		tbl := New("users", usersSchema(t))
		_, err := tbl.Insert([]any{uint64(1)})
		require.Error(t, err)
		assert.True(t, ErrArity.Is(err))
	})

	t.Run("missing non-nullable value", func(t *testing.T) {
		tbl := New("users", usersSchema(t))
		_, err := tbl.Insert([]any{nil, uint32(1), nil, nil, nil, nil, int64(0), int32(0)})
		require.Error(t, err)
		assert.True(t, ErrMissingValue.Is(err))
		assert.Equal(t, 0, tbl.Len())
	})

	t.Run("inline overflow is rejected", func(t *testing.T) {
		tbl := New("users", usersSchema(t))
		_, err := tbl.Insert([]any{uint64(1), uint32(1), nil, strings.Repeat("n", 31), nil, nil, int64(0), int32(0)})
		require.Error(t, err)

		var fe *FieldError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "name", fe.Field)
		assert.True(t, codec.ErrLengthOverflow.Is(fe.Err))
		assert.Equal(t, 0, tbl.Len())
		assert.Empty(t, tbl.fixed)
	})

	t.Run("type mismatch", func(t *testing.T) {
		tbl := New("users", usersSchema(t))
		_, err := tbl.Insert([]any{"one", uint32(1), nil, nil, nil, nil, int64(0), int32(0)})
		var fe *FieldError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "id", fe.Field)
		assert.True(t, schema.ErrTypeMismatch.Is(fe.Err))
	})

	t.Run("failed row leaves earlier rows intact", func(t *testing.T) {
		tbl := New("users", usersSchema(t))
		_, err := tbl.Insert([]any{uint64(1), uint32(1), true, "ok", "kept", nil, int64(0), int32(0)})
		require.NoError(t, err)

		// bio encodes into the heap before score fails its range check
		_, err = tbl.Insert([]any{uint64(2), uint32(2), true, "ok", "orphaned", nil, int64(0), int64(1) << 40})
		require.Error(t, err)
		assert.Equal(t, 1, tbl.Len())

		row, err := tbl.Row(0)
		require.NoError(t, err)
		assert.Equal(t, "kept", row[4])
	})
}

func TestTable_RowOutOfRange(t *testing.T) {
	tbl := New("users", usersSchema(t))
	for _, i := range []int{-1, 0, 1} {
		_, err := tbl.Row(i)
		require.Error(t, err)
		assert.True(t, ErrRowOutOfRange.Is(err))
	}
}

func TestTable_CorruptHeapReferenceFails(t *testing.T) {
	s, err := schema.NewBuilder().Column("bio", schema.Varchar(500)).Build()
	require.NoError(t, err)

	tbl := New("bad", s)
	_, err = tbl.Insert([]any{"hello"})
	require.NoError(t, err)

	// Point the slot far past the heap
	for i := 0; i < codec.PointerSize; i++ {
		tbl.fixed[i] = 0xFF
	}

	_, err = tbl.Row(0)
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.True(t, codec.IsBoundsError(fe.Err))
}

func TestTable_Scan(t *testing.T) {
	s, err := schema.NewBuilder().Column("n", schema.Int64).Build()
	require.NoError(t, err)
	tbl := New("nums", s)

	for i := 0; i < 10; i++ {
		_, err := tbl.Insert([]any{int64(i * i)})
		require.NoError(t, err)
	}

	var seen []int64
	require.NoError(t, tbl.Scan(func(i int, row []any) error {
		seen = append(seen, row[0].(int64))
		return nil
	}))
	assert.Len(t, seen, 10)
	assert.Equal(t, int64(81), seen[9])

	stop := errors.New("stop")
	count := 0
	err = tbl.Scan(func(i int, row []any) error {
		count++
		if i == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 3, count)
}

func TestTable_ConcurrentReadersAndWriter(t *testing.T) {
	s, err := schema.NewBuilder().
		Column("id", schema.UInt64).
		Column("text", schema.Varchar(400)).
		Build()
	require.NoError(t, err)
	tbl := New("concurrent", s, Options{HeapCapacity: 16})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_, err := tbl.Insert([]any{uint64(i), fmt.Sprintf("row %d", i)})
			assert.NoError(t, err)
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				n := tbl.Len()
				if n == 0 {
					continue
				}
				row, err := tbl.Row(n - 1)
				if assert.NoError(t, err) {
					assert.Equal(t, fmt.Sprintf("row %d", row[0].(uint64)), row[1])
				}
			}
		}()
	}

	wg.Wait()
	assert.Equal(t, 200, tbl.Len())
}

func TestTable_NullBitmapWidth(t *testing.T) {
	b := schema.NewBuilder()
	for i := 0; i < 9; i++ {
		b.Add(schema.Field{Name: fmt.Sprintf("f%d", i), Type: schema.Boolean, Nullable: true})
	}
	s, err := b.Build()
	require.NoError(t, err)

	tbl := New("wide", s)
	values := make([]any, 9)
	values[8] = true
	_, err = tbl.Insert(values)
	require.NoError(t, err)

	row, err := tbl.Row(0)
	require.NoError(t, err)
	assert.Nil(t, row[0])
	assert.Equal(t, true, row[8])
	assert.Equal(t, uint64(2), tbl.Stats().NullBytes)
}
