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

import "errors"

var (
	// ErrSnapshotNotFound indicates one or both snapshot files are missing.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrTruncatedData indicates the embedding matrix file ended mid-record.
	ErrTruncatedData = errors.New("truncated embedding data")

	// ErrCorruptSnapshot indicates snapshot files disagree with each other.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)
