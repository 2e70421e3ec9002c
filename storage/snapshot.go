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

package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/poiesic/retrievit/core"
)

const (
	// DocumentsFile holds chunk content and metadata as JSON.
	DocumentsFile = "documents.json"

	// EmbeddingsFile holds the embedding matrix in binary form.
	EmbeddingsFile = "embeddings.bin"
)

type documentsPayload struct {
	Documents []core.Chunk `json:"documents"`
}

// SaveSnapshot writes chunks and their embedding matrix to dir, creating it
// if needed. Row i of the matrix corresponds to chunks[i].
func SaveSnapshot(dir string, chunks []core.Chunk, matrix [][]float32) error {
	if len(chunks) != len(matrix) {
		return fmt.Errorf("%w: %d chunks, %d matrix rows",
			ErrCorruptSnapshot, len(chunks), len(matrix))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	docs, err := json.Marshal(documentsPayload{Documents: chunks})
	if err != nil {
		return fmt.Errorf("encoding documents: %w", err)
	}
	embs, err := MarshalMatrix(matrix)
	if err != nil {
		return fmt.Errorf("encoding embeddings: %w", err)
	}

	if err := writeFileAtomic(filepath.Join(dir, DocumentsFile), docs); err != nil {
		return fmt.Errorf("writing %s: %w", DocumentsFile, err)
	}
	if err := writeFileAtomic(filepath.Join(dir, EmbeddingsFile), embs); err != nil {
		return fmt.Errorf("writing %s: %w", EmbeddingsFile, err)
	}
	return nil
}

// LoadSnapshot reads a snapshot written by SaveSnapshot. If either file is
// missing the snapshot is treated as absent and ErrSnapshotNotFound is
// returned.
func LoadSnapshot(dir string) ([]core.Chunk, [][]float32, error) {
	docsData, err := os.ReadFile(filepath.Join(dir, DocumentsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, dir)
		}
		return nil, nil, fmt.Errorf("reading %s: %w", DocumentsFile, err)
	}
	embsData, err := os.ReadFile(filepath.Join(dir, EmbeddingsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, dir)
		}
		return nil, nil, fmt.Errorf("reading %s: %w", EmbeddingsFile, err)
	}

	var payload documentsPayload
	if err := json.Unmarshal(docsData, &payload); err != nil {
		return nil, nil, fmt.Errorf("decoding documents: %w", err)
	}
	matrix, err := UnmarshalMatrix(embsData)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding embeddings: %w", err)
	}

	if len(payload.Documents) != len(matrix) {
		return nil, nil, fmt.Errorf("%w: %d documents, %d matrix rows",
			ErrCorruptSnapshot, len(payload.Documents), len(matrix))
	}
	return payload.Documents, matrix, nil
}

// SnapshotExists reports whether dir holds both snapshot files.
func SnapshotExists(dir string) bool {
	for _, name := range []string{DocumentsFile, EmbeddingsFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return false
		}
	}
	return true
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	// CreateTemp opens files 0600 and rename keeps that mode.
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
