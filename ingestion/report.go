package ingestion

import "github.com/poiesic/retrievit/core"

// FileResult is the outcome of loading one file. Either Chunks or Err is
// set, never both.
type FileResult struct {
	Path   string
	Chunks []core.Chunk
	Err    error
}

// Report summarizes a directory load. Files are ordered by path, so a
// report over the same tree is deterministic regardless of worker
// scheduling.
type Report struct {
	Files []FileResult
}

// Chunks returns every successfully loaded chunk, in file order.
func (r *Report) Chunks() []core.Chunk {
	var chunks []core.Chunk
	for _, f := range r.Files {
		chunks = append(chunks, f.Chunks...)
	}
	return chunks
}

// Failed returns the results for files that could not be loaded.
func (r *Report) Failed() []FileResult {
	var failed []FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			failed = append(failed, f)
		}
	}
	return failed
}

// Loaded returns the number of files that loaded successfully.
func (r *Report) Loaded() int {
	return len(r.Files) - len(r.Failed())
}
