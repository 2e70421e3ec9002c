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

package ingestion

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/retrievit/core"
)

// tagsPrefix marks an optional first line naming comma-separated tags for
// the whole document. The line is stripped from the indexed content.
const tagsPrefix = "tags:"

var defaultExtensions = map[string]bool{".txt": true, ".md": true}

// Loader reads and chunks documents from disk.
type Loader struct {
	pool      *ants.Pool
	chunkSize int
	overlap   int
	logger    *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader) error

// WithPoolSize sets the worker pool size for concurrent file loading.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(l *Loader) error {
		if size < 1 {
			size = 1
		}
		if l.pool != nil {
			l.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		l.pool = pool
		return nil
	}
}

// WithSplitConfig overrides the chunk size and overlap, both in runes.
func WithSplitConfig(chunkSize, overlap int) Option {
	return func(l *Loader) error {
		if _, err := core.SplitText("", chunkSize, overlap); err != nil {
			return err
		}
		l.chunkSize = chunkSize
		l.overlap = overlap
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// NewLoader creates a loader with default chunking parameters.
func NewLoader(opts ...Option) (*Loader, error) {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	l := &Loader{
		pool:      pool,
		chunkSize: core.DefaultChunkSize,
		overlap:   core.DefaultOverlap,
		logger:    slog.Default().With("component", "loader"),
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			l.Release()
			return nil, err
		}
	}
	return l, nil
}

// Release returns the worker pool's resources.
func (l *Loader) Release() {
	if l.pool != nil {
		l.pool.Release()
	}
}

// LoadDirectory loads every .txt and .md file under dir, recursively. Files
// are processed concurrently; the report lists them in path order. A file
// that fails to load is reported, not fatal.
func (l *Loader) LoadDirectory(dir string) (*Report, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, dir)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if defaultExtensions[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDocuments, dir)
	}
	sort.Strings(paths)

	results := make([]FileResult, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		submitErr := l.pool.Submit(func() {
			defer wg.Done()
			chunks, err := l.LoadFile(path)
			results[i] = FileResult{Path: path, Chunks: chunks, Err: err}
			if err != nil {
				l.logger.Warn("failed to load file", "path", path, "err", err)
			}
		})
		if submitErr != nil {
			wg.Done()
			results[i] = FileResult{Path: path, Err: submitErr}
		}
	}
	wg.Wait()

	report := &Report{Files: results}
	l.logger.Info("loaded directory", "dir", dir,
		"files", report.Loaded(), "failed", len(report.Failed()), "chunks", len(report.Chunks()))
	return report, nil
}

// LoadFile reads one document and splits it into chunks. The document ID is
// the absolute path, and chunk IDs extend it with the chunk position, so
// reloading the same file always produces the same IDs.
func (l *Loader) LoadFile(path string) ([]core.Chunk, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, err
	}

	content, tags := splitTagsHeader(string(data))
	pieces, err := core.SplitText(content, l.chunkSize, l.overlap)
	if err != nil {
		return nil, err
	}

	chunks := make([]core.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		if strings.TrimSpace(piece) == "" {
			continue
		}
		chunks = append(chunks, core.Chunk{
			Content: piece,
			Metadata: core.Metadata{
				Source:  filepath.Base(absPath),
				DocID:   absPath,
				ChunkID: fmt.Sprintf("%s::chunk%d", absPath, i),
				Tags:    tags,
			},
		})
	}
	return chunks, nil
}

// splitTagsHeader strips an optional "tags: a, b" first line and returns the
// remaining content together with the parsed tags.
func splitTagsHeader(text string) (string, []string) {
	line, rest, found := strings.Cut(text, "\n")
	if !strings.HasPrefix(strings.ToLower(line), tagsPrefix) {
		return text, nil
	}

	var tags []string
	for _, tag := range strings.Split(line[len(tagsPrefix):], ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	if !found {
		rest = ""
	}
	return rest, tags
}
