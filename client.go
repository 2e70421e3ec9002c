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

// Package retrievit is a hybrid retrieval engine for text corpora. It
// combines BM25 lexical ranking with embedding-based vector search, merges
// the two with Reciprocal Rank Fusion, and can ground LLM answers in the
// retrieved chunks.
package retrievit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/poiesic/retrievit/ai"
	"github.com/poiesic/retrievit/ai/openai"
	"github.com/poiesic/retrievit/cache"
	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/ingestion"
	"github.com/poiesic/retrievit/search"
	"github.com/poiesic/retrievit/storage"
	"github.com/poiesic/retrievit/vector"
)

const (
	// embeddingCacheDir is the directory under the data dir holding cached
	// chunk embeddings, one JSON file per document.
	embeddingCacheDir = ".embeddings"

	// embeddingCacheDB is the BadgerDB alternative to embeddingCacheDir.
	embeddingCacheDB = ".embeddings.db"

	noContextAnswer = "I'm sorry, I couldn't find any relevant information to answer your question."
)

// Client ties together ingestion, the embedding cache, the hybrid retriever
// and answer generation over a single data directory. The directory holds
// the snapshot files plus the embedding cache; a directory without a
// snapshot starts an empty corpus.
type Client struct {
	dataDir   string
	retriever *search.Retriever
	embCache  *cache.Cache
	loader    *ingestion.Loader
	provider  ai.Provider
	logger    *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	aiConfig      *ai.Config
	provider      ai.Provider
	logger        *slog.Logger
	chunkSize     int
	overlap       int
	backend       vector.Backend
	weights       []float64
	badgerCache   bool
	noFallback    bool
	queryCacheSet bool
	queryCache    int
}

// WithAIConfig sets the configuration for the default OpenAI-compatible
// provider. Ignored when WithProvider is used.
func WithAIConfig(config *ai.Config) ClientOption {
	return func(o *clientOptions) {
		o.aiConfig = config
	}
}

// WithProvider supplies a custom AI provider instead of the default
// OpenAI-compatible one.
func WithProvider(provider ai.Provider) ClientOption {
	return func(o *clientOptions) {
		o.provider = provider
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ClientOption {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// WithSplitConfig overrides the chunk size and overlap used when ingesting
// files, both in runes.
func WithSplitConfig(chunkSize, overlap int) ClientOption {
	return func(o *clientOptions) {
		o.chunkSize = chunkSize
		o.overlap = overlap
	}
}

// WithVectorBackend selects the vector scan backend.
func WithVectorBackend(backend vector.Backend) ClientOption {
	return func(o *clientOptions) {
		o.backend = backend
	}
}

// WithFusionWeights weights the lexical and vector rankings during fusion.
func WithFusionWeights(lexicalWeight, vectorWeight float64) ClientOption {
	return func(o *clientOptions) {
		o.weights = []float64{lexicalWeight, vectorWeight}
	}
}

// WithBadgerCache stores cached embeddings in a BadgerDB database instead of
// one JSON file per document.
func WithBadgerCache() ClientOption {
	return func(o *clientOptions) {
		o.badgerCache = true
	}
}

// WithoutEmbedderFallback disables the degraded hashing embedder. Embedding
// failures then surface as errors instead of switching strategies.
func WithoutEmbedderFallback() ClientOption {
	return func(o *clientOptions) {
		o.noFallback = true
	}
}

// WithQueryCacheSize enables the retriever's query result cache with the
// given capacity. Off by default.
func WithQueryCacheSize(size int) ClientOption {
	return func(o *clientOptions) {
		o.queryCacheSet = true
		o.queryCache = size
	}
}

// NewClient opens or creates a retrieval corpus rooted at dataDir. If the
// directory holds a snapshot it is loaded; otherwise the corpus starts
// empty.
func NewClient(dataDir string, opts ...ClientOption) (*Client, error) {
	options := &clientOptions{
		aiConfig:  ai.DefaultConfig(),
		logger:    slog.Default(),
		chunkSize: core.DefaultChunkSize,
		overlap:   core.DefaultOverlap,
	}
	for _, opt := range opts {
		opt(options)
	}

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			return nil, fmt.Errorf("creating AI provider: %w", err)
		}
	}

	embedder := provider.Embedder()
	if !options.noFallback {
		var err error
		embedder, err = ai.NewFallbackEmbedder(embedder, nil)
		if err != nil {
			provider.Close()
			return nil, err
		}
	}

	var store cache.Store
	var err error
	if options.badgerCache {
		store, err = cache.OpenBadgerStore(filepath.Join(dataDir, embeddingCacheDB), false)
	} else {
		store, err = cache.NewFSStore(filepath.Join(dataDir, embeddingCacheDir))
	}
	if err != nil {
		provider.Close()
		return nil, fmt.Errorf("opening embedding cache: %w", err)
	}
	embCache, err := cache.New(store, cache.WithLogger(options.logger))
	if err != nil {
		store.Close()
		provider.Close()
		return nil, err
	}

	searchOpts := []search.Option{
		search.WithLogger(options.logger),
		search.WithEmbeddingCache(embCache),
		search.WithVectorBackend(options.backend),
	}
	if options.weights != nil {
		searchOpts = append(searchOpts, search.WithFusionWeights(options.weights[0], options.weights[1]))
	}
	if options.queryCacheSet {
		searchOpts = append(searchOpts, search.WithQueryCacheSize(options.queryCache))
	}

	var retriever *search.Retriever
	if storage.SnapshotExists(dataDir) {
		retriever, err = search.LoadRetriever(dataDir, embedder, searchOpts...)
	} else {
		retriever, err = search.NewRetriever(embedder, searchOpts...)
	}
	if err != nil {
		embCache.Close()
		provider.Close()
		return nil, err
	}

	loader, err := ingestion.NewLoader(
		ingestion.WithSplitConfig(options.chunkSize, options.overlap),
		ingestion.WithLogger(options.logger),
	)
	if err != nil {
		embCache.Close()
		provider.Close()
		return nil, err
	}

	return &Client{
		dataDir:   dataDir,
		retriever: retriever,
		embCache:  embCache,
		loader:    loader,
		provider:  provider,
		logger:    options.logger,
	}, nil
}

// AddFiles ingests the given files. Files that fail to load are skipped and
// reported in the returned error; chunks from the files that loaded are
// still indexed.
func (c *Client) AddFiles(ctx context.Context, paths ...string) error {
	var chunks []core.Chunk
	var errs []error
	for _, path := range paths {
		fileChunks, err := c.loader.LoadFile(path)
		if err != nil {
			c.logger.Warn("skipping file", "path", path, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		chunks = append(chunks, fileChunks...)
	}

	if len(chunks) > 0 {
		if err := c.retriever.AddChunks(ctx, chunks); err != nil {
			return err
		}
	}
	return errors.Join(errs...)
}

// AddDirectory ingests every supported file under dir and returns the load
// report. Chunks from files that loaded are indexed even when others failed.
func (c *Client) AddDirectory(ctx context.Context, dir string) (*ingestion.Report, error) {
	report, err := c.loader.LoadDirectory(dir)
	if err != nil {
		return nil, err
	}
	if chunks := report.Chunks(); len(chunks) > 0 {
		if err := c.retriever.AddChunks(ctx, chunks); err != nil {
			return report, err
		}
	}
	return report, nil
}

// AddChunks indexes pre-built chunks directly.
func (c *Client) AddChunks(ctx context.Context, chunks []core.Chunk) error {
	return c.retriever.AddChunks(ctx, chunks)
}

// Retrieve returns up to topK chunks ranked by fused relevance to the query.
func (c *Client) Retrieve(ctx context.Context, query string, topK int, opts ...search.RetrieveOption) ([]core.ScoredChunk, error) {
	return c.retriever.Retrieve(ctx, query, topK, opts...)
}

// Answer retrieves context for the question and asks the generation model
// for an answer grounded in it. Without any relevant context, a fixed
// apology is returned and the model is not called.
func (c *Client) Answer(ctx context.Context, question string, topK int, opts ...search.RetrieveOption) (string, error) {
	results, err := c.retriever.Retrieve(ctx, question, topK, opts...)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return noContextAnswer, nil
	}

	passages := make([]ai.Passage, len(results))
	for i, res := range results {
		passages[i] = ai.Passage{
			Source:  res.Chunk.Metadata.Source,
			Content: strings.TrimSpace(res.Chunk.Content),
		}
	}
	return c.provider.Generator().GenerateAnswer(ctx, question, passages)
}

// Save writes the corpus snapshot into the data directory.
func (c *Client) Save() error {
	return c.retriever.Save(c.dataDir)
}

// Reembed recomputes all chunk embeddings with the current embedding model.
func (c *Client) Reembed(ctx context.Context) error {
	return c.retriever.Reembed(ctx)
}

// Len returns the number of indexed chunks.
func (c *Client) Len() int {
	return c.retriever.Len()
}

// Retriever exposes the underlying retriever, e.g. for monitored queries.
func (c *Client) Retriever() *search.Retriever {
	return c.retriever
}

// Close releases the AI provider, the embedding cache and the loader pool.
func (c *Client) Close() error {
	c.loader.Release()

	var errs []error
	if err := c.provider.Close(); err != nil {
		c.logger.Error("error closing AI provider", "err", err)
		errs = append(errs, err)
	}
	if err := c.embCache.Close(); err != nil {
		c.logger.Error("error closing embedding cache", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
