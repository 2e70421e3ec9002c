package vector

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_Query(t *testing.T) {
	idx, err := Build([][]float32{
		{1, 0, 0},
		{0.9, 0.1, 0},
		{0, 0, 1},
	})
	require.NoError(t, err)

	t.Run("nearest vector ranks first", func(t *testing.T) {
		got := idx.Query([]float32{1, 0, 0}, 3)
		require.Len(t, got, 3)
		assert.Equal(t, 0, got[0])
		assert.Equal(t, 1, got[1])
		assert.Equal(t, 2, got[2])
	})

	t.Run("results capped at topK", func(t *testing.T) {
		got := idx.Query([]float32{1, 0, 0}, 1)
		assert.Equal(t, []int{0}, got)
	})

	t.Run("topK beyond corpus returns all rows", func(t *testing.T) {
		got := idx.Query([]float32{0, 0, 1}, 10)
		assert.Len(t, got, 3)
		assert.Equal(t, 2, got[0])
	})

	t.Run("zero query vector ranks by index order", func(t *testing.T) {
		got := idx.Query([]float32{0, 0, 0}, 3)
		assert.Equal(t, []int{0, 1, 2}, got)
	})
}

func TestIndex_Empty(t *testing.T) {
	idx := NewIndex()
	assert.Equal(t, 0, idx.Len())
	assert.Nil(t, idx.Query([]float32{1, 0}, 5))

	built, err := Build(nil)
	require.NoError(t, err)
	assert.Nil(t, built.Query([]float32{1, 0}, 5))
}

func TestIndex_Add(t *testing.T) {
	idx := NewIndex()
	require.NoError(t, idx.Add([][]float32{{1, 0}}))

	t.Run("appended rows keep prior indices valid", func(t *testing.T) {
		require.NoError(t, idx.Add([][]float32{{0, 1}}))
		got := idx.Query([]float32{1, 0}, 2)
		assert.Equal(t, []int{0, 1}, got)
	})

	t.Run("dimension mismatch rejected", func(t *testing.T) {
		err := idx.Add([][]float32{{1, 2, 3}})
		assert.Error(t, err)
	})

	t.Run("ragged batch leaves index untouched", func(t *testing.T) {
		fresh := NewIndex()
		err := fresh.Add([][]float32{{1, 0}, {0, 1, 0}})
		require.Error(t, err)
		assert.Equal(t, 0, fresh.Len())
		assert.Equal(t, 0, fresh.Dim())

		// A later well-formed batch must still succeed.
		require.NoError(t, fresh.Add([][]float32{{0, 0, 1}}))
		assert.Equal(t, 1, fresh.Len())
		assert.Equal(t, 3, fresh.Dim())
	})
}

func TestIndex_QueryDimensionMismatch(t *testing.T) {
	idx, err := Build([][]float32{{1, 0}, {0, 1}})
	require.NoError(t, err)

	// A query in a different basis must not score against truncated rows.
	assert.Nil(t, idx.Query([]float32{1, 0, 0}, 2))
	assert.Nil(t, idx.Query([]float32{1}, 2))
	assert.Len(t, idx.Query([]float32{1, 0}, 2), 2)
}

func TestIndex_BackendEquivalence(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	matrix := make([][]float32, 200)
	for i := range matrix {
		row := make([]float32, 16)
		for j := range row {
			row[j] = rng.Float32()*2 - 1
		}
		matrix[i] = row
	}

	brute, err := Build(matrix)
	require.NoError(t, err)
	parallel, err := Build(matrix, WithBackend(BackendParallel))
	require.NoError(t, err)

	for q := 0; q < 10; q++ {
		query := make([]float32, 16)
		for j := range query {
			query[j] = rng.Float32()*2 - 1
		}
		assert.Equal(t, brute.Query(query, 25), parallel.Query(query, 25))
	}
}

func TestNormalize(t *testing.T) {
	t.Run("unit length", func(t *testing.T) {
		v := Normalize([]float32{3, 4})
		var sum float64
		for _, x := range v {
			sum += float64(x) * float64(x)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-6)
	})

	t.Run("zero vector stays zero", func(t *testing.T) {
		assert.Equal(t, []float32{0, 0, 0}, Normalize([]float32{0, 0, 0}))
	})

	t.Run("input not mutated", func(t *testing.T) {
		in := []float32{3, 4}
		_ = Normalize(in)
		assert.Equal(t, []float32{3, 4}, in)
	})
}
