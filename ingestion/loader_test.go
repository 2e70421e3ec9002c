package ingestion

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/retrievit/core"
)

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestLoader(t *testing.T, opts ...Option) *Loader {
	t.Helper()
	l, err := NewLoader(opts...)
	require.NoError(t, err)
	t.Cleanup(l.Release)
	return l
}

func TestLoadFile(t *testing.T) {
	t.Run("basic document", func(t *testing.T) {
		l := newTestLoader(t)
		path := writeDoc(t, t.TempDir(), "notes.txt", "cats are great pets")

		chunks, err := l.LoadFile(path)
		require.NoError(t, err)
		require.Len(t, chunks, 1)

		abs, err := filepath.Abs(path)
		require.NoError(t, err)
		assert.Equal(t, "cats are great pets", chunks[0].Content)
		assert.Equal(t, "notes.txt", chunks[0].Metadata.Source)
		assert.Equal(t, abs, chunks[0].Metadata.DocID)
		assert.Equal(t, abs+"::chunk0", chunks[0].Metadata.ChunkID)
		assert.Empty(t, chunks[0].Metadata.Tags)
		require.NoError(t, core.ValidateChunk(&chunks[0]))
	})

	t.Run("tags header is parsed and stripped", func(t *testing.T) {
		l := newTestLoader(t)
		path := writeDoc(t, t.TempDir(), "notes.txt", "tags: animals, Pets\ncats are great")

		chunks, err := l.LoadFile(path)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, []string{"animals", "Pets"}, chunks[0].Metadata.Tags)
		assert.Equal(t, "cats are great", chunks[0].Content)
	})

	t.Run("long documents split with stable IDs", func(t *testing.T) {
		l := newTestLoader(t, WithSplitConfig(100, 20))
		path := writeDoc(t, t.TempDir(), "long.txt", strings.Repeat("lorem ipsum ", 50))

		chunks, err := l.LoadFile(path)
		require.NoError(t, err)
		require.Greater(t, len(chunks), 1)
		for i, c := range chunks {
			assert.True(t, strings.HasSuffix(c.Metadata.ChunkID, "::chunk"+strconv.Itoa(i)))
			assert.Equal(t, chunks[0].Metadata.DocID, c.Metadata.DocID)
		}

		again, err := l.LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, chunks, again)
	})

	t.Run("missing file", func(t *testing.T) {
		l := newTestLoader(t)
		_, err := l.LoadFile(filepath.Join(t.TempDir(), "absent.txt"))
		assert.Error(t, err)
	})
}

func TestLoadDirectory(t *testing.T) {
	t.Run("loads txt and md, skips others", func(t *testing.T) {
		l := newTestLoader(t)
		dir := t.TempDir()
		writeDoc(t, dir, "a.txt", "alpha document")
		writeDoc(t, dir, "b.md", "beta document")
		writeDoc(t, dir, "c.bin", "ignored")

		report, err := l.LoadDirectory(dir)
		require.NoError(t, err)
		assert.Equal(t, 2, report.Loaded())
		assert.Len(t, report.Chunks(), 2)
	})

	t.Run("report is ordered by path", func(t *testing.T) {
		l := newTestLoader(t, WithPoolSize(4))
		dir := t.TempDir()
		for _, name := range []string{"c.txt", "a.txt", "b.txt"} {
			writeDoc(t, dir, name, "content of "+name)
		}

		report, err := l.LoadDirectory(dir)
		require.NoError(t, err)
		require.Len(t, report.Files, 3)
		assert.True(t, strings.HasSuffix(report.Files[0].Path, "a.txt"))
		assert.True(t, strings.HasSuffix(report.Files[1].Path, "b.txt"))
		assert.True(t, strings.HasSuffix(report.Files[2].Path, "c.txt"))
	})

	t.Run("recurses into subdirectories", func(t *testing.T) {
		l := newTestLoader(t)
		dir := t.TempDir()
		sub := filepath.Join(dir, "nested")
		require.NoError(t, os.MkdirAll(sub, 0o755))
		writeDoc(t, dir, "top.txt", "top document")
		writeDoc(t, sub, "deep.txt", "nested document")

		report, err := l.LoadDirectory(dir)
		require.NoError(t, err)
		assert.Equal(t, 2, report.Loaded())
	})

	t.Run("empty directory", func(t *testing.T) {
		l := newTestLoader(t)
		_, err := l.LoadDirectory(t.TempDir())
		assert.ErrorIs(t, err, ErrNoDocuments)
	})

	t.Run("path is a file", func(t *testing.T) {
		l := newTestLoader(t)
		path := writeDoc(t, t.TempDir(), "a.txt", "alpha")
		_, err := l.LoadDirectory(path)
		assert.ErrorIs(t, err, ErrNotADirectory)
	})
}

func TestSplitTagsHeader(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantText string
		wantTags []string
	}{
		{"no header", "plain text", "plain text", nil},
		{"header with tags", "tags: a, b\nbody", "body", []string{"a", "b"}},
		{"header only", "tags: solo", "", []string{"solo"}},
		{"uppercase prefix", "TAGS: a\nbody", "body", []string{"a"}},
		{"empty tag entries dropped", "tags: a, , b,\nbody", "body", []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, tags := splitTagsHeader(tt.input)
			assert.Equal(t, tt.wantText, text)
			assert.Equal(t, tt.wantTags, tags)
		})
	}
}
