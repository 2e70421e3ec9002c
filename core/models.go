package core

import (
	"encoding/hex"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// Metadata describes where a chunk came from.
// Source is the originating file name, DocID identifies the parent
// document and ChunkID is globally unique across the corpus.
type Metadata struct {
	Source  string   `json:"source"`
	DocID   string   `json:"doc_id"`
	ChunkID string   `json:"chunk_id"`
	Tags    []string `json:"tags,omitempty"`
}

// Chunk is the atomic retrievable item: a unit of indexed text plus its
// metadata. Chunks are immutable once created.
type Chunk struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// HasAnyTag reports whether the chunk carries at least one of the given
// lowercased tags. Matching is case-insensitive; a chunk without tags
// never matches.
func (c *Chunk) HasAnyTag(lowered map[string]bool) bool {
	for _, tag := range c.Metadata.Tags {
		if lowered[strings.ToLower(tag)] {
			return true
		}
	}
	return false
}

// ScoredChunk pairs a chunk with its fused relevance score.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// DocKey generates a stable, filesystem-safe key for a document ID using
// BLAKE2b hashing. Identical document IDs always produce identical keys,
// so per-document artifacts collide only on DocID collision.
func DocKey(docID string) string {
	h, _ := blake2b.New(32, nil)
	h.Write([]byte(docID))
	return hex.EncodeToString(h.Sum(nil))
}
