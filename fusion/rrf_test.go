package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuse(t *testing.T) {
	t.Run("id in both runs outranks ids in one run", func(t *testing.T) {
		results, err := Fuse([][]string{
			{"a", "b"},
			{"a", "c"},
		})
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "a", results[0].ID)
		assert.Greater(t, results[0].Score, results[1].Score)
	})

	t.Run("score matches the RRF formula", func(t *testing.T) {
		results, err := Fuse([][]string{{"a"}, {"x", "a"}})
		require.NoError(t, err)
		want := 1.0/(60+1) + 1.0/(60+2)
		require.Equal(t, "a", results[0].ID)
		assert.InDelta(t, want, results[0].Score, 1e-12)
	})

	t.Run("absent ids contribute nothing", func(t *testing.T) {
		results, err := Fuse([][]string{{"a"}, {}})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.InDelta(t, 1.0/61, results[0].Score, 1e-12)
	})

	t.Run("no runs yields no results", func(t *testing.T) {
		results, err := Fuse(nil)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("ties break by first appearance", func(t *testing.T) {
		results, err := Fuse([][]string{
			{"a", "b"},
			{"b", "a"},
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "a", results[0].ID)
		assert.Equal(t, "b", results[1].ID)
		assert.Equal(t, results[0].Score, results[1].Score)
	})
}

func TestFuse_Weights(t *testing.T) {
	t.Run("weights scale per-run contributions", func(t *testing.T) {
		results, err := Fuse([][]string{{"a"}, {"b"}}, WithWeights([]float64{2.0, 1.0}))
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "a", results[0].ID)
		assert.InDelta(t, 2.0/61, results[0].Score, 1e-12)
	})

	t.Run("length mismatch is a configuration error", func(t *testing.T) {
		_, err := Fuse([][]string{{"a"}, {"b"}}, WithWeights([]float64{1.0}))
		assert.ErrorIs(t, err, ErrWeightCount)
	})
}

func TestFuse_CustomK(t *testing.T) {
	results, err := Fuse([][]string{{"a"}}, WithK(10))
	require.NoError(t, err)
	assert.InDelta(t, 1.0/11, results[0].Score, 1e-12)
}
