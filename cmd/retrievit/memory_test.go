package main

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple question", "What is Go?", "what-is-go"},
		{"punctuation collapses", "a,b;;c", "a-b-c"},
		{"empty falls back", "???", "entry"},
		{"long input truncated", strings.Repeat("word ", 20), "word-word-word-word-word-word-word-word-word-wor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := slugify(tt.input)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), slugMaxLength)
		})
	}
}

func TestWriteMemory(t *testing.T) {
	dir := t.TempDir()
	path, err := writeMemory(dir, "Question: what is go?\nAnswer: a language\n")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "what is go?")
	assert.True(t, strings.HasSuffix(path, ".txt"))
	assert.Contains(t, path, "question-what-is-go")
}
