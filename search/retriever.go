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

package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/poiesic/retrievit/ai"
	"github.com/poiesic/retrievit/cache"
	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/fusion"
	"github.com/poiesic/retrievit/lexical"
	"github.com/poiesic/retrievit/storage"
	"github.com/poiesic/retrievit/vector"
)

const (
	// minCandidates is the floor for the per-index candidate pool. Fusion
	// needs more candidates than the final cut so a chunk ranked poorly by
	// one index can still surface through the other.
	minCandidates = 10
)

// Retriever provides hybrid lexical and vector retrieval over a chunk
// corpus. Chunk i, matrix row i, lexical document i and vector row i always
// refer to the same chunk; the corpus is append-only.
type Retriever struct {
	mu      sync.RWMutex
	chunks  []core.Chunk
	matrix  [][]float32
	lexical *lexical.Index
	vectors *vector.Index

	embedder   ai.Embedder
	embCache   *cache.Cache
	queryCache *lru.Cache[string, []core.ScoredChunk]

	weights []float64
	fusionK int
	backend vector.Backend
	logger  *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithEmbeddingCache routes chunk embedding through a content-addressed
// cache so re-ingested documents reuse previously computed vectors.
func WithEmbeddingCache(c *cache.Cache) Option {
	return func(r *Retriever) error {
		r.embCache = c
		return nil
	}
}

// WithVectorBackend selects the vector scan backend.
// Default is vector.BackendBruteForce.
func WithVectorBackend(backend vector.Backend) Option {
	return func(r *Retriever) error {
		r.backend = backend
		return nil
	}
}

// WithFusionWeights weights the lexical and vector rankings during fusion.
// Default is equal weight.
func WithFusionWeights(lexicalWeight, vectorWeight float64) Option {
	return func(r *Retriever) error {
		r.weights = []float64{lexicalWeight, vectorWeight}
		return nil
	}
}

// WithFusionK overrides the RRF constant. Default is fusion.DefaultK.
func WithFusionK(k int) Option {
	return func(r *Retriever) error {
		r.fusionK = k
		return nil
	}
}

// WithQueryCacheSize enables the query result LRU cache with the given
// capacity. Caching is off by default; the cache is purged whenever the
// corpus changes.
func WithQueryCacheSize(size int) Option {
	return func(r *Retriever) error {
		if size <= 0 {
			r.queryCache = nil
			return nil
		}
		qc, err := lru.New[string, []core.ScoredChunk](size)
		if err != nil {
			return err
		}
		r.queryCache = qc
		return nil
	}
}

// NewRetriever creates an empty retriever.
func NewRetriever(embedder ai.Embedder, opts ...Option) (*Retriever, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Retriever{
		embedder: embedder,
		fusionK:  fusion.DefaultK,
		logger:   slog.Default().With("component", "retriever"),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	r.lexical = lexical.NewIndex()
	r.vectors = vector.NewIndex(vector.WithBackend(r.backend))
	return r, nil
}

// LoadRetriever restores a retriever from a snapshot directory written by
// Save. The lexical and vector indexes are rebuilt from the persisted chunks
// and embedding matrix.
func LoadRetriever(dir string, embedder ai.Embedder, opts ...Option) (*Retriever, error) {
	chunks, matrix, err := storage.LoadSnapshot(dir)
	if err != nil {
		return nil, err
	}

	r, err := NewRetriever(embedder, opts...)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	r.lexical.Add(texts)
	if err := r.vectors.Add(matrix); err != nil {
		return nil, fmt.Errorf("rebuilding vector index: %w", err)
	}
	r.chunks = chunks
	r.matrix = matrix

	r.logger.Info("loaded snapshot", "dir", dir, "chunks", len(chunks))
	return r, nil
}

// Len returns the number of indexed chunks.
func (r *Retriever) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.chunks)
}

// RetrieveOption configures a single retrieval call.
type RetrieveOption func(*retrieveConfig)

type retrieveConfig struct {
	tags []string
}

// WithTags restricts results to chunks carrying at least one of the given
// tags. Matching is case-insensitive.
func WithTags(tags ...string) RetrieveOption {
	return func(c *retrieveConfig) {
		c.tags = tags
	}
}

// Retrieve returns up to topK chunks ranked by fused relevance to the query.
// A blank query or non-positive topK yields no results.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int, opts ...RetrieveOption) ([]core.ScoredChunk, error) {
	return r.RetrieveWithMonitor(ctx, query, topK, nil, opts...)
}

// RetrieveWithMonitor is Retrieve with observation hooks. The monitor
// receives the intermediate lexical, vector and fused rankings.
func (r *Retriever) RetrieveWithMonitor(ctx context.Context, query string, topK int, monitor RetrieveMonitor, opts ...RetrieveOption) ([]core.ScoredChunk, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	var cfg retrieveConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	monitor.Start(query)

	if strings.TrimSpace(query) == "" || topK <= 0 {
		monitor.Finish(nil)
		return []core.ScoredChunk{}, nil
	}

	key := r.queryKey(query, topK, cfg.tags)
	if r.queryCache != nil {
		if cached, ok := r.queryCache.Get(key); ok {
			r.logger.Debug("query cache hit", "query", query)
			monitor.Finish(cached)
			return cached, nil
		}
	}

	kEach := topK * 2
	if kEach < minCandidates {
		kEach = minCandidates
	}

	embedding, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		r.logger.Error("error embedding query", "query", query, "err", err)
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	// An embedding strategy change mid-session (a new model, or the
	// degraded fallback kicking in) can shift the query width away from
	// the indexed rows. Refuse to score across bases; Reembed recovers.
	if dim := r.vectors.Dim(); dim > 0 && len(embedding) != dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			ErrDimensionMismatch, len(embedding), dim)
	}

	lexIDs := r.lexical.Retrieve(query, kEach)
	monitor.AfterLexicalSearch(lexIDs)

	vecIDs := r.vectors.Query(embedding, kEach)
	monitor.AfterVectorSearch(vecIDs)

	if len(cfg.tags) > 0 {
		wanted := make(map[string]bool, len(cfg.tags))
		for _, t := range cfg.tags {
			wanted[strings.ToLower(t)] = true
		}
		lexIDs = r.filterByTags(lexIDs, wanted)
		vecIDs = r.filterByTags(vecIDs, wanted)
	}

	runs := [][]string{stringifyIndices(lexIDs), stringifyIndices(vecIDs)}
	fusionOpts := []fusion.Option{fusion.WithK(r.fusionK)}
	if r.weights != nil {
		fusionOpts = append(fusionOpts, fusion.WithWeights(r.weights))
	}
	fused, err := fusion.Fuse(runs, fusionOpts...)
	if err != nil {
		return nil, fmt.Errorf("fusing rankings: %w", err)
	}
	monitor.AfterFusion(fused)

	if topK > len(fused) {
		topK = len(fused)
	}
	results := make([]core.ScoredChunk, 0, topK)
	for _, f := range fused[:topK] {
		idx, err := strconv.Atoi(f.ID)
		if err != nil {
			return nil, fmt.Errorf("fused ID %q is not a chunk index: %w", f.ID, err)
		}
		results = append(results, core.ScoredChunk{
			Chunk: r.chunks[idx],
			Score: f.Score,
		})
	}

	if r.queryCache != nil {
		r.queryCache.Add(key, results)
	}
	monitor.Finish(results)
	return results, nil
}

// AddChunks validates, embeds and indexes the given chunks. The corpus is
// untouched if validation or embedding fails; chunks are appended in input
// order once everything succeeds.
func (r *Retriever) AddChunks(ctx context.Context, chunks []core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	for i := range chunks {
		if err := core.ValidateChunk(&chunks[i]); err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
	}

	rows, err := r.embedChunks(ctx, chunks)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Every row must share one width before anything is appended. On a
	// fresh index the first row fixes it; a ragged batch would otherwise
	// leave the corpus and the indexes with different lengths.
	dim := r.vectors.Dim()
	if dim == 0 {
		dim = len(rows[0])
	}
	for i, row := range rows {
		if len(row) != dim {
			return fmt.Errorf("%w: chunk %d has %d dimensions, index has %d",
				ErrDimensionMismatch, i, len(row), dim)
		}
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	if err := r.vectors.Add(rows); err != nil {
		return fmt.Errorf("indexing vectors: %w", err)
	}
	r.lexical.Add(texts)
	r.chunks = append(r.chunks, chunks...)
	r.matrix = append(r.matrix, rows...)

	if r.queryCache != nil {
		r.queryCache.Purge()
	}
	r.logger.Info("indexed chunks", "count", len(chunks), "total", len(r.chunks))
	return nil
}

// Save writes the corpus and embedding matrix to a snapshot directory.
func (r *Retriever) Save(dir string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return storage.SaveSnapshot(dir, r.chunks, r.matrix)
}

// Reembed recomputes every chunk embedding with the current embedder and
// rebuilds the vector index. Use it after switching embedding models; cached
// entries from the old model are replaced as a side effect.
func (r *Retriever) Reembed(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.chunks) == 0 {
		return nil
	}

	rows, err := r.embedChunks(ctx, r.chunks)
	if err != nil {
		return err
	}

	vectors := vector.NewIndex(vector.WithBackend(r.backend))
	if err := vectors.Add(rows); err != nil {
		return fmt.Errorf("rebuilding vector index: %w", err)
	}

	r.matrix = rows
	r.vectors = vectors
	if r.queryCache != nil {
		r.queryCache.Purge()
	}
	r.logger.Info("reembedded corpus", "chunks", len(r.chunks), "model", r.embedder.Model())
	return nil
}

// embedChunks produces one embedding per chunk, grouped by document so the
// embedding cache can serve partial hits per document.
func (r *Retriever) embedChunks(ctx context.Context, chunks []core.Chunk) ([][]float32, error) {
	if r.embCache == nil {
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Content
		}
		rows, err := r.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embedding chunks: %w", err)
		}
		if len(rows) != len(chunks) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(rows), len(chunks))
		}
		return rows, nil
	}

	type docGroup struct {
		ids      []string
		texts    []string
		position []int
	}
	groups := make(map[string]*docGroup)
	var docOrder []string
	for i, c := range chunks {
		g, ok := groups[c.Metadata.DocID]
		if !ok {
			g = &docGroup{}
			groups[c.Metadata.DocID] = g
			docOrder = append(docOrder, c.Metadata.DocID)
		}
		g.ids = append(g.ids, c.Metadata.ChunkID)
		g.texts = append(g.texts, c.Content)
		g.position = append(g.position, i)
	}

	rows := make([][]float32, len(chunks))
	for _, docID := range docOrder {
		g := groups[docID]
		vecs, err := r.embCache.GetOrCompute(ctx, docID, g.ids, g.texts, r.embedder)
		if err != nil {
			return nil, err
		}
		for j, pos := range g.position {
			rows[pos] = vecs[j]
		}
	}
	return rows, nil
}

// filterByTags keeps only indices whose chunk carries one of the wanted
// tags. Caller holds at least a read lock.
func (r *Retriever) filterByTags(indices []int, wanted map[string]bool) []int {
	kept := indices[:0:0]
	for _, idx := range indices {
		if r.chunks[idx].HasAnyTag(wanted) {
			kept = append(kept, idx)
		}
	}
	return kept
}

func (r *Retriever) queryKey(query string, topK int, tags []string) string {
	lowered := make([]string, len(tags))
	for i, t := range tags {
		lowered[i] = strings.ToLower(t)
	}
	sort.Strings(lowered)
	return core.DocKey(strconv.Itoa(topK) + "|" + strings.Join(lowered, ",") + "|" + query)
}

func stringifyIndices(indices []int) []string {
	out := make([]string, len(indices))
	for i, idx := range indices {
		out[i] = strconv.Itoa(idx)
	}
	return out
}
