package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in
	// a batch, more efficiently than calling EmbedText repeatedly. The
	// returned slice has the same length and order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// Model returns the identifier of the active embedding model. Cached
	// embeddings recorded under a different identifier must be discarded.
	Model() string
}

// Passage is a retrieved piece of context handed to a Generator.
type Passage struct {
	// Source names where the passage came from, typically a file name.
	Source string

	// Content is the passage text.
	Content string
}

// Generator produces a natural-language answer to a question given
// retrieved context passages.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// GenerateAnswer answers the question using the supplied passages as
	// grounding context. Returns an error if the generation backend fails.
	GenerateAnswer(ctx context.Context, question string, passages []Passage) (string, error)
}

// Provider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages Embedder and
// Generator instances, ensuring they share configuration appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Generator returns the answer generation service.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	Close() error
}
