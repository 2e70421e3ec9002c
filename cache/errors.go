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

package cache

import "errors"

var (
	// ErrEntryNotFound indicates no cache entry exists for the requested key.
	ErrEntryNotFound = errors.New("cache entry not found")

	// ErrStoreRequired indicates a cache was constructed without a backing store.
	ErrStoreRequired = errors.New("cache store is required")

	// ErrChunkTextMismatch indicates chunk IDs and texts have different lengths.
	ErrChunkTextMismatch = errors.New("chunk IDs and texts must have equal length")
)
