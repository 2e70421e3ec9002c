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


package vector

import (
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Backend selects how the exact scan over stored vectors is executed.
// Both backends produce identical rankings for the same input; the
// choice is a performance decision only, made once at construction and
// never re-detected per call.
type Backend int

const (
	// BackendBruteForce scans all rows on the calling goroutine.
	BackendBruteForce Backend = iota
	// BackendParallel shards the scan across CPUs. Shards write to
	// disjoint ranges of the score slice, so results stay deterministic.
	BackendParallel
)

// Index ranks vectors by cosine similarity to a query vector. Rows are
// stored L2-normalized so cosine similarity reduces to an inner
// product. Row i keeps index i for the lifetime of the index.
type Index struct {
	rows    [][]float32
	dim     int
	backend Backend
}

// Option configures an Index.
type Option func(*Index)

// WithBackend selects the scan backend. Default is BackendBruteForce.
func WithBackend(backend Backend) Option {
	return func(idx *Index) {
		idx.backend = backend
	}
}

// NewIndex creates an empty vector index.
func NewIndex(opts ...Option) *Index {
	idx := &Index{}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Build creates an index over the given matrix. An empty matrix is
// accepted and produces an index that always returns empty results.
func Build(matrix [][]float32, opts ...Option) (*Index, error) {
	idx := NewIndex(opts...)
	if err := idx.Add(matrix); err != nil {
		return nil, err
	}
	return idx, nil
}

// Len returns the number of stored vectors.
func (idx *Index) Len() int {
	return len(idx.rows)
}

// Dim returns the vector dimensionality, or 0 while the index is empty.
func (idx *Index) Dim() int {
	return idx.dim
}

// Add appends normalized copies of the given rows. Previously returned
// indices stay valid. The dimensionality is fixed by the first batch;
// later rows must match it. The whole batch is validated before any row
// is stored, so a failed Add leaves the index unchanged.
func (idx *Index) Add(rows [][]float32) error {
	if len(rows) == 0 {
		return nil
	}
	dim := idx.dim
	if dim == 0 {
		dim = len(rows[0])
	}
	for _, row := range rows {
		if len(row) != dim {
			return fmt.Errorf("vector: row has %d dimensions, index has %d", len(row), dim)
		}
	}
	idx.dim = dim
	for _, row := range rows {
		idx.rows = append(idx.rows, Normalize(row))
	}
	return nil
}

// Query returns the indices of the topK rows with the largest inner
// product against the normalized query vector, best first. Ties are
// broken by ascending row index. An empty index yields no results, as
// does a query whose width differs from the stored rows: scoring
// across dimensionalities would compare vectors from different bases.
func (idx *Index) Query(query []float32, topK int) []int {
	if idx.Len() == 0 || topK <= 0 || len(query) != idx.dim {
		return nil
	}

	q := Normalize(query)
	scores := make([]float32, idx.Len())

	switch idx.backend {
	case BackendParallel:
		idx.scanParallel(q, scores)
	default:
		for i, row := range idx.rows {
			scores[i] = dot(row, q)
		}
	}

	ranked := make([]int, idx.Len())
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return scores[ranked[a]] > scores[ranked[b]]
	})

	if topK > len(ranked) {
		topK = len(ranked)
	}
	return ranked[:topK]
}

// scanParallel computes inner products over disjoint row shards.
func (idx *Index) scanParallel(q []float32, scores []float32) {
	shards := runtime.NumCPU()
	if shards > len(idx.rows) {
		shards = len(idx.rows)
	}
	chunk := (len(idx.rows) + shards - 1) / shards

	var g errgroup.Group
	for s := 0; s < shards; s++ {
		lo := s * chunk
		hi := lo + chunk
		if hi > len(idx.rows) {
			hi = len(idx.rows)
		}
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				scores[i] = dot(idx.rows[i], q)
			}
			return nil
		})
	}
	// Workers never fail; Wait is only a join point.
	_ = g.Wait()
}

// Normalize returns a unit-length copy of v. A zero vector stays zero,
// which makes it orthogonal to everything and harmless to rank.
func Normalize(v []float32) []float32 {
	out := make([]float32, len(v))
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return out
	}
	norm := float32(math.Sqrt(float64(sum)))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

// dot assumes equal-length inputs; Query guarantees it.
func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
