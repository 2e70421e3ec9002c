// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/retrievit/ai"
	"github.com/poiesic/retrievit/core"
)

// Entry is the cached embedding record for a single document. ChunkIDs and
// Embeddings are parallel slices; Model identifies the embedder that produced
// the vectors so entries from a different model are never reused.
type Entry struct {
	DocID      string      `json:"doc_id"`
	ChunkIDs   []string    `json:"chunk_ids"`
	Embeddings [][]float32 `json:"embeddings"`
	Model      string      `json:"model"`
}

// Store persists cache entries keyed by the document digest produced by
// core.DocKey.
type Store interface {
	Get(key string) (*Entry, error)
	Put(key string, entry *Entry) error
	Close() error
}

// Cache resolves chunk embeddings through a Store, computing only the vectors
// the store does not already hold.
type Cache struct {
	store  Store
	logger *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Cache backed by the given store.
func New(store Store, opts ...Option) (*Cache, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	c := &Cache{
		store:  store,
		logger: slog.Default().With("component", "embedding_cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Lookup returns the cached vectors for a document, keyed by chunk ID. An
// entry produced by a different model is treated as absent. A corrupt or
// missing entry yields an empty map, never an error: the cache degrades to
// recomputation.
func (c *Cache) Lookup(docID, model string) map[string][]float32 {
	entry, err := c.store.Get(core.DocKey(docID))
	if err != nil {
		if !errors.Is(err, ErrEntryNotFound) {
			c.logger.Warn("discarding unreadable cache entry", "doc_id", docID, "error", err)
		}
		return map[string][]float32{}
	}

	if entry.Model != model {
		c.logger.Warn("discarding cache entry from different model",
			"doc_id", docID, "cached_model", entry.Model, "want_model", model)
		return map[string][]float32{}
	}
	if len(entry.ChunkIDs) != len(entry.Embeddings) {
		c.logger.Warn("discarding malformed cache entry", "doc_id", docID)
		return map[string][]float32{}
	}

	known := make(map[string][]float32, len(entry.ChunkIDs))
	for i, id := range entry.ChunkIDs {
		known[id] = entry.Embeddings[i]
	}
	return known
}

// GetOrCompute returns one embedding per chunk, in chunk order. Vectors
// already present in the store are reused; the remainder are computed with a
// single batched embedder call, merged into the entry, and written back. If
// the embedder fails, the store is left untouched.
func (c *Cache) GetOrCompute(ctx context.Context, docID string, chunkIDs, texts []string, embedder ai.Embedder) ([][]float32, error) {
	if len(chunkIDs) != len(texts) {
		return nil, fmt.Errorf("%w: %d ids, %d texts", ErrChunkTextMismatch, len(chunkIDs), len(texts))
	}
	if len(chunkIDs) == 0 {
		return [][]float32{}, nil
	}

	model := embedder.Model()
	known := c.Lookup(docID, model)

	var (
		missingIDs   []string
		missingTexts []string
	)
	for i, id := range chunkIDs {
		if _, ok := known[id]; !ok {
			missingIDs = append(missingIDs, id)
			missingTexts = append(missingTexts, texts[i])
		}
	}

	if len(missingIDs) > 0 {
		computed, err := embedder.EmbedTexts(ctx, missingTexts)
		if err != nil {
			return nil, fmt.Errorf("embedding %d chunks of %s: %w", len(missingTexts), docID, err)
		}
		if len(computed) != len(missingIDs) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(computed), len(missingIDs))
		}
		for i, id := range missingIDs {
			known[id] = computed[i]
		}
		if err := c.put(docID, model, known); err != nil {
			// A write failure is not fatal: the vectors were computed and
			// the caller still gets them.
			c.logger.Warn("failed to persist cache entry", "doc_id", docID, "error", err)
		}
		c.logger.Debug("cache miss", "doc_id", docID,
			"cached", len(chunkIDs)-len(missingIDs), "computed", len(missingIDs))
	} else {
		c.logger.Debug("cache hit", "doc_id", docID, "chunks", len(chunkIDs))
	}

	result := make([][]float32, len(chunkIDs))
	for i, id := range chunkIDs {
		result[i] = known[id]
	}
	return result, nil
}

func (c *Cache) put(docID, model string, known map[string][]float32) error {
	entry := &Entry{
		DocID:      docID,
		ChunkIDs:   make([]string, 0, len(known)),
		Embeddings: make([][]float32, 0, len(known)),
		Model:      model,
	}
	for id, vec := range known {
		entry.ChunkIDs = append(entry.ChunkIDs, id)
		entry.Embeddings = append(entry.Embeddings, vec)
	}
	return c.store.Put(core.DocKey(docID), entry)
}

// Close releases the backing store.
func (c *Cache) Close() error {
	return c.store.Close()
}
