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


package fusion

import (
	"fmt"
	"sort"
)

// DefaultK is the standard RRF constant. Larger values flatten the
// contribution difference between the top of a run and its tail.
const DefaultK = 60

// Result is a fused document ID with its accumulated RRF score.
type Result struct {
	ID    string
	Score float64
}

type config struct {
	k       int
	weights []float64
}

// Option configures a fusion call.
type Option func(*config)

// WithK overrides the RRF constant. Values below 1 are ignored.
func WithK(k int) Option {
	return func(c *config) {
		if k >= 1 {
			c.k = k
		}
	}
}

// WithWeights sets a per-run weight multiplier. The slice length must
// match the number of runs or Fuse fails with ErrWeightCount.
func WithWeights(weights []float64) Option {
	return func(c *config) {
		c.weights = weights
	}
}

// Fuse merges multiple ranked ID lists using Reciprocal Rank Fusion.
// An ID at zero-based rank r in run i contributes weight_i/(k+r+1) to
// its total; IDs absent from a run contribute nothing for that run.
// The output contains every ID appearing in at least one run, sorted by
// descending score with ties broken by first appearance across runs.
//
// RRF operates on rank position rather than raw score, so BM25 scores
// and cosine similarities fuse without any cross-system normalization.
func Fuse(runs [][]string, opts ...Option) ([]Result, error) {
	cfg := config{k: DefaultK}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.weights != nil && len(cfg.weights) != len(runs) {
		return nil, fmt.Errorf("%w: %d weights for %d runs", ErrWeightCount, len(cfg.weights), len(runs))
	}
	weights := cfg.weights
	if weights == nil {
		weights = make([]float64, len(runs))
		for i := range weights {
			weights[i] = 1.0
		}
	}

	scores := make(map[string]float64)
	var order []string
	for i, run := range runs {
		for rank, id := range run {
			if _, seen := scores[id]; !seen {
				order = append(order, id)
			}
			scores[id] += weights[i] / float64(cfg.k+rank+1)
		}
	}

	results := make([]Result, 0, len(order))
	for _, id := range order {
		results = append(results, Result{ID: id, Score: scores[id]})
	}
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})
	return results, nil
}
