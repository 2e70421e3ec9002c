package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyEmbedder fails every call after failAfter successful ones.
type flakyEmbedder struct {
	inner     Embedder
	calls     int
	failAfter int
}

func (f *flakyEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.calls > f.failAfter {
		return nil, errors.New("backend unreachable")
	}
	return f.inner.EmbedText(ctx, text)
}

func (f *flakyEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.calls > f.failAfter {
		return nil, errors.New("backend unreachable")
	}
	return f.inner.EmbedTexts(ctx, texts)
}

func (f *flakyEmbedder) Model() string { return "flaky-primary" }

func TestFallbackEmbedder(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a primary", func(t *testing.T) {
		_, err := NewFallbackEmbedder(nil, nil)
		assert.ErrorIs(t, err, ErrEmbedderRequired)
	})

	t.Run("uses the primary while it works", func(t *testing.T) {
		primary := &flakyEmbedder{inner: NewHashingEmbedder(64), failAfter: 100}
		fb, err := NewFallbackEmbedder(primary, nil)
		require.NoError(t, err)

		_, err = fb.EmbedText(ctx, "hello")
		require.NoError(t, err)
		assert.False(t, fb.Degraded())
		assert.Equal(t, "flaky-primary", fb.Model())
	})

	t.Run("primary failure triggers a one-way switch", func(t *testing.T) {
		primary := &flakyEmbedder{inner: NewHashingEmbedder(64), failAfter: 0}
		fb, err := NewFallbackEmbedder(primary, nil)
		require.NoError(t, err)

		vec, err := fb.EmbedText(ctx, "hello")
		require.NoError(t, err)
		assert.NotEmpty(t, vec)
		assert.True(t, fb.Degraded())

		// The primary is never consulted again, even though it would
		// succeed on a later call if retried.
		primary.failAfter = 100
		_, err = fb.EmbedText(ctx, "hello again")
		require.NoError(t, err)
		assert.True(t, fb.Degraded())
		assert.Equal(t, 1, primary.calls)
	})

	t.Run("model identifier tracks the active strategy", func(t *testing.T) {
		primary := &flakyEmbedder{inner: NewHashingEmbedder(64), failAfter: 0}
		fb, err := NewFallbackEmbedder(primary, NewHashingEmbedder(128))
		require.NoError(t, err)

		assert.Equal(t, "flaky-primary", fb.Model())
		_, err = fb.EmbedTexts(ctx, []string{"a", "b"})
		require.NoError(t, err)
		assert.Equal(t, "hashing-128", fb.Model())
	})
}

func TestHashingEmbedder(t *testing.T) {
	ctx := context.Background()
	e := NewHashingEmbedder(64)

	t.Run("deterministic", func(t *testing.T) {
		a, err := e.EmbedText(ctx, "cats are great pets")
		require.NoError(t, err)
		b, err := e.EmbedText(ctx, "cats are great pets")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("unit normalized", func(t *testing.T) {
		vec, err := e.EmbedText(ctx, "cats are great pets")
		require.NoError(t, err)
		var sum float64
		for _, v := range vec {
			sum += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, sum, 1e-6)
	})

	t.Run("batch order matches input order", func(t *testing.T) {
		vecs, err := e.EmbedTexts(ctx, []string{"alpha", "beta"})
		require.NoError(t, err)
		require.Len(t, vecs, 2)
		single, err := e.EmbedText(ctx, "beta")
		require.NoError(t, err)
		assert.Equal(t, single, vecs[1])
	})

	t.Run("shared tokens increase similarity", func(t *testing.T) {
		a, _ := e.EmbedText(ctx, "cats are great pets")
		b, _ := e.EmbedText(ctx, "cats are wonderful pets")
		c, _ := e.EmbedText(ctx, "quantum chromodynamics lecture notes")

		assert.Greater(t, dot32(a, b), dot32(a, c))
	})

	t.Run("minimum dimension enforced", func(t *testing.T) {
		small := NewHashingEmbedder(0)
		vec, err := small.EmbedText(ctx, "x")
		require.NoError(t, err)
		assert.Len(t, vec, 256)
	})
}

func dot32(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
