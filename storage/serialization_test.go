package storage

import (
	"testing"

	"github.com/mus-format/mus-go/varint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatrixRoundtrip(t *testing.T) {
	t.Run("basic matrix", func(t *testing.T) {
		want := [][]float32{
			{0.1, 0.2, 0.3},
			{-1.5, 0, 2.25},
		}
		data, err := MarshalMatrix(want)
		require.NoError(t, err)
		got, err := UnmarshalMatrix(data)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("empty matrix", func(t *testing.T) {
		data, err := MarshalMatrix(nil)
		require.NoError(t, err)
		got, err := UnmarshalMatrix(data)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("ragged matrix rejected", func(t *testing.T) {
		_, err := MarshalMatrix([][]float32{{1, 2}, {3}})
		assert.ErrorIs(t, err, ErrCorruptSnapshot)
	})

	t.Run("truncated data rejected", func(t *testing.T) {
		data, err := MarshalMatrix([][]float32{{1, 2, 3}})
		require.NoError(t, err)
		_, err = UnmarshalMatrix(data[:len(data)-2])
		assert.ErrorIs(t, err, ErrTruncatedData)
	})

	t.Run("trailing bytes rejected", func(t *testing.T) {
		data, err := MarshalMatrix([][]float32{{1, 2}})
		require.NoError(t, err)
		_, err = UnmarshalMatrix(append(data, 0xFF))
		assert.ErrorIs(t, err, ErrCorruptSnapshot)
	})

	t.Run("rows with no columns rejected", func(t *testing.T) {
		_, err := MarshalMatrix([][]float32{{}, {}})
		assert.ErrorIs(t, err, ErrCorruptSnapshot)
	})
}

func TestUnmarshalMatrix_CorruptHeader(t *testing.T) {
	makeHeader := func(rows, cols int) []byte {
		buf := make([]byte, varint.Int.Size(rows)+varint.Int.Size(cols))
		n := varint.Int.Marshal(rows, buf)
		varint.Int.Marshal(cols, buf[n:])
		return buf
	}

	t.Run("declared size beyond payload rejected before allocating", func(t *testing.T) {
		_, err := UnmarshalMatrix(makeHeader(1<<30, 1000))
		assert.ErrorIs(t, err, ErrTruncatedData)
	})

	t.Run("oversized column count rejected", func(t *testing.T) {
		_, err := UnmarshalMatrix(makeHeader(1, 1<<40))
		assert.ErrorIs(t, err, ErrTruncatedData)
	})

	t.Run("rows with no columns rejected", func(t *testing.T) {
		_, err := UnmarshalMatrix(makeHeader(3, 0))
		assert.ErrorIs(t, err, ErrCorruptSnapshot)
	})
}
