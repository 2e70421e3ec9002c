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

import "errors"

// Domain validation errors
var (
	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrEmptyContent indicates the Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrMissingDocID indicates the metadata is missing a document ID.
	ErrMissingDocID = errors.New("metadata missing doc_id")

	// ErrMissingChunkID indicates the metadata is missing a chunk ID.
	ErrMissingChunkID = errors.New("metadata missing chunk_id")

	// ErrMissingSource indicates the metadata is missing a source name.
	ErrMissingSource = errors.New("metadata missing source")

	// ErrInvalidSplitConfig indicates a splitter configuration that would
	// stall the sliding window.
	ErrInvalidSplitConfig = errors.New("invalid split configuration")
)
