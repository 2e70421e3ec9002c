// Package cache provides a content-addressed store for document chunk
// embeddings. Entries are keyed by a digest of the document ID, so repeated
// ingestion of the same document reuses previously computed vectors and only
// the chunks that are missing from the cache are sent to the embedding
// provider.
package cache
