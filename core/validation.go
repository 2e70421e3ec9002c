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


package core

import "fmt"

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - Metadata.DocID must not be empty
//   - Metadata.ChunkID must not be empty
//   - Metadata.Source must not be empty
//
// NOT validated:
//   - Tags (optional, may be empty)
//
// A chunk that fails validation must never be ingested; indices assume
// every stored chunk addresses a parent document and a unique chunk ID.
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}

	if chunk.Metadata.DocID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrMissingDocID)
	}

	if chunk.Metadata.ChunkID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrMissingChunkID)
	}

	if chunk.Metadata.Source == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrMissingSource)
	}

	return nil
}
