package retrievit

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/retrievit/ai"
	"github.com/poiesic/retrievit/ai/mock"
)

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestClient(t *testing.T, dataDir string, opts ...ClientOption) *Client {
	t.Helper()
	provider := mock.NewMockProvider()
	c, err := NewClient(dataDir, append([]ClientOption{WithProvider(provider)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestClientIngestAndRetrieve(t *testing.T) {
	ctx := context.Background()
	docs := t.TempDir()
	writeDoc(t, docs, "pets.txt", "tags: animals\ncats are wonderful pets and quiet companions")
	writeDoc(t, docs, "finance.txt", "tags: finance\nthe stock market closed higher on strong earnings")

	c := newTestClient(t, t.TempDir(), WithQueryCacheSize(16))

	report, err := c.AddDirectory(ctx, docs)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Loaded())
	assert.Equal(t, 2, c.Len())

	results, err := c.Retrieve(ctx, "cats are wonderful pets", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Chunk.Content, "cats")
}

func TestClientAddFiles(t *testing.T) {
	ctx := context.Background()
	docs := t.TempDir()
	good := writeDoc(t, docs, "good.txt", "real content here")
	missing := filepath.Join(docs, "missing.txt")

	c := newTestClient(t, t.TempDir())

	err := c.AddFiles(ctx, good, missing)
	require.Error(t, err)
	assert.ErrorContains(t, err, "missing.txt")
	// The good file is indexed despite the failure.
	assert.Equal(t, 1, c.Len())
}

func TestClientSaveAndReopen(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	docs := t.TempDir()
	writeDoc(t, docs, "pets.txt", "cats are wonderful pets")

	c := newTestClient(t, dataDir)
	_, err := c.AddDirectory(ctx, docs)
	require.NoError(t, err)
	require.NoError(t, c.Save())
	require.NoError(t, c.Close())

	reopened := newTestClient(t, dataDir)
	assert.Equal(t, 1, reopened.Len())

	results, err := reopened.Retrieve(ctx, "cats pets", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Chunk.Content, "cats")
}

func TestClientAnswer(t *testing.T) {
	ctx := context.Background()

	t.Run("grounds the generator in retrieved passages", func(t *testing.T) {
		provider := mock.NewMockProvider().(*mock.MockProvider)
		var got []ai.Passage
		provider.GetMockGenerator().GenerateAnswerFunc = func(_ context.Context, _ string, passages []ai.Passage) (string, error) {
			got = passages
			return "generated answer", nil
		}

		c, err := NewClient(t.TempDir(), WithProvider(provider))
		require.NoError(t, err)
		defer c.Close()

		docs := t.TempDir()
		writeDoc(t, docs, "pets.txt", "cats are wonderful pets")
		_, err = c.AddDirectory(ctx, docs)
		require.NoError(t, err)

		answer, err := c.Answer(ctx, "what are cats", 2)
		require.NoError(t, err)
		assert.Equal(t, "generated answer", answer)
		require.NotEmpty(t, got)
		assert.Equal(t, "pets.txt", got[0].Source)
	})

	t.Run("empty corpus skips the generator", func(t *testing.T) {
		provider := mock.NewMockProvider().(*mock.MockProvider)
		c, err := NewClient(t.TempDir(), WithProvider(provider))
		require.NoError(t, err)
		defer c.Close()

		answer, err := c.Answer(ctx, "anything", 3)
		require.NoError(t, err)
		assert.Equal(t, noContextAnswer, answer)
		assert.Zero(t, provider.GetMockGenerator().CallCount())
	})
}

func TestClientEmbeddingCacheReuse(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	docs := t.TempDir()
	writeDoc(t, docs, "pets.txt", "cats are wonderful pets")

	provider := mock.NewMockProvider().(*mock.MockProvider)
	c, err := NewClient(dataDir, WithProvider(provider))
	require.NoError(t, err)

	_, err = c.AddDirectory(ctx, docs)
	require.NoError(t, err)
	require.Positive(t, provider.GetMockEmbedder().CallCount())
	require.NoError(t, c.Close())

	// A fresh client over the same data dir reuses the on-disk embedding
	// cache, so re-ingesting the unchanged document costs no embed calls.
	provider2 := mock.NewMockProvider().(*mock.MockProvider)
	c2, err := NewClient(dataDir, WithProvider(provider2))
	require.NoError(t, err)
	defer c2.Close()

	_, err = c2.AddDirectory(ctx, docs)
	require.NoError(t, err)
	assert.Zero(t, provider2.GetMockEmbedder().CallCount())
}

func TestClientBadgerCache(t *testing.T) {
	ctx := context.Background()
	docs := t.TempDir()
	writeDoc(t, docs, "pets.txt", "cats are wonderful pets")

	c := newTestClient(t, t.TempDir(), WithBadgerCache())
	_, err := c.AddDirectory(ctx, docs)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}
