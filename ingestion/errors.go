package ingestion

import "errors"

var (
	// ErrNotADirectory indicates the load path exists but is not a directory.
	ErrNotADirectory = errors.New("not a directory")

	// ErrNoDocuments indicates the directory holds no loadable files.
	ErrNoDocuments = errors.New("no documents found")
)
