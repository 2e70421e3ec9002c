// Package storage persists retriever state as a snapshot directory: a JSON
// document file holding chunk content and metadata, and a compact binary file
// holding the embedding matrix. Loading requires both files; lexical and
// vector indexes are rebuilt from them rather than persisted.
package storage
