package ai

import (
	"context"
	"hash/fnv"
	"math"
	"strconv"
	"strings"
)

// HashingEmbedder is a degraded, fully deterministic embedder that maps
// whitespace tokens into a fixed-width vector with the hashing trick
// and L2-normalizes the result. It needs no network access and no
// fitted vocabulary, which makes it suitable as a last-resort fallback
// when a real embedding backend becomes unavailable. Texts sharing
// tokens land near each other; that is the entire extent of its
// semantics.
type HashingEmbedder struct {
	dim int
}

var _ Embedder = (*HashingEmbedder)(nil)

// NewHashingEmbedder creates a hashing embedder with the given
// dimensionality. Dimensions below 1 fall back to 256.
func NewHashingEmbedder(dim int) *HashingEmbedder {
	if dim < 1 {
		dim = 256
	}
	return &HashingEmbedder{dim: dim}
}

// EmbedText generates a deterministic embedding for a single text.
func (e *HashingEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	return e.embed(text), nil
}

// EmbedTexts generates deterministic embeddings for multiple texts.
func (e *HashingEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.embed(text)
	}
	return vectors, nil
}

// Model returns the identifier recorded alongside cached embeddings.
// It encodes the dimensionality so caches from differently sized
// hashing embedders never mix.
func (e *HashingEmbedder) Model() string {
	return "hashing-" + strconv.Itoa(e.dim)
}

func (e *HashingEmbedder) embed(text string) []float32 {
	vec := make([]float32, e.dim)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		sum := h.Sum32()
		// Low bit decides the sign so common tokens don't all pile up
		// on the positive side.
		sign := float32(1)
		if sum&1 == 1 {
			sign = -1
		}
		vec[(sum>>1)%uint32(e.dim)] += sign
	}

	var sumSquares float64
	for _, v := range vec {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares > 0 {
		norm := float32(math.Sqrt(sumSquares))
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}
