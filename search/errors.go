package search

import "errors"

var (
	// ErrEmbedderRequired indicates a retriever was constructed without an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrDimensionMismatch indicates a computed embedding does not match the
	// dimensionality of the vectors already indexed.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
