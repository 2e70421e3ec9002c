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


package ai

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// FallbackEmbedder wraps a primary embedder and switches to a degraded
// one the first time the primary fails. The switch is one-way and
// permanent for the lifetime of the process: once degraded, the
// embedder never probes the primary again, so a session keeps a single
// consistent embedding space after the transition. The degraded model
// identifier differs from the primary's, which invalidates any cached
// embeddings computed under the primary.
type FallbackEmbedder struct {
	primary  Embedder
	degraded Embedder
	fellBack atomic.Bool
	logger   *slog.Logger
}

var _ Embedder = (*FallbackEmbedder)(nil)

// NewFallbackEmbedder creates a fallback embedder. If degraded is nil a
// HashingEmbedder with a 256-wide vector is used.
func NewFallbackEmbedder(primary Embedder, degraded Embedder) (*FallbackEmbedder, error) {
	if primary == nil {
		return nil, ErrEmbedderRequired
	}
	if degraded == nil {
		degraded = NewHashingEmbedder(256)
	}
	return &FallbackEmbedder{
		primary:  primary,
		degraded: degraded,
		logger:   slog.Default().With("component", "fallback-embedder"),
	}, nil
}

// Degraded reports whether the one-way fallback has happened.
func (e *FallbackEmbedder) Degraded() bool {
	return e.fellBack.Load()
}

// EmbedText embeds a single text via the active strategy.
func (e *FallbackEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if e.fellBack.Load() {
		return e.degraded.EmbedText(ctx, text)
	}
	vec, err := e.primary.EmbedText(ctx, text)
	if err != nil {
		e.fallBack(err)
		return e.degraded.EmbedText(ctx, text)
	}
	return vec, nil
}

// EmbedTexts embeds a batch via the active strategy.
func (e *FallbackEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if e.fellBack.Load() {
		return e.degraded.EmbedTexts(ctx, texts)
	}
	vectors, err := e.primary.EmbedTexts(ctx, texts)
	if err != nil {
		e.fallBack(err)
		return e.degraded.EmbedTexts(ctx, texts)
	}
	return vectors, nil
}

// Model returns the identifier of the active strategy.
func (e *FallbackEmbedder) Model() string {
	if e.fellBack.Load() {
		return e.degraded.Model()
	}
	return e.primary.Model()
}

func (e *FallbackEmbedder) fallBack(cause error) {
	if e.fellBack.CompareAndSwap(false, true) {
		e.logger.Warn("embedding backend unavailable, switching to degraded embeddings for the rest of the session",
			"primary", e.primary.Model(), "degraded", e.degraded.Model(), "err", cause)
	}
}
