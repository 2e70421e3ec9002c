// Package ingestion turns files on disk into retrievable chunks. A Loader
// reads text documents concurrently, honors an optional leading tags header,
// and splits each document into overlapping chunks with stable chunk IDs
// derived from the file path.
package ingestion
