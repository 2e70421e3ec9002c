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
	"fmt"

	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MarshalMatrix serializes an embedding matrix: varint row and column counts
// followed by the cells in row-major order. All rows must share a length.
func MarshalMatrix(matrix [][]float32) ([]byte, error) {
	rows := len(matrix)
	cols := 0
	if rows > 0 {
		cols = len(matrix[0])
	}

	if rows > 0 && cols == 0 {
		return nil, fmt.Errorf("%w: %d rows with no columns", ErrCorruptSnapshot, rows)
	}

	size := varint.Int.Size(rows) + varint.Int.Size(cols)
	for i, row := range matrix {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d",
				ErrCorruptSnapshot, i, len(row), cols)
		}
		for _, v := range row {
			size += raw.Float32.Size(v)
		}
	}

	buf := make([]byte, size)
	n := varint.Int.Marshal(rows, buf)
	n += varint.Int.Marshal(cols, buf[n:])
	for _, row := range matrix {
		for _, v := range row {
			n += raw.Float32.Marshal(v, buf[n:])
		}
	}
	return buf, nil
}

// UnmarshalMatrix deserializes a matrix produced by MarshalMatrix.
func UnmarshalMatrix(data []byte) ([][]float32, error) {
	rows, n, err := varint.Int.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: reading row count: %w", ErrTruncatedData, err)
	}
	cols, m, err := varint.Int.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: reading column count: %w", ErrTruncatedData, err)
	}
	n += m
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("%w: negative dimensions %dx%d", ErrCorruptSnapshot, rows, cols)
	}

	// Bound the declared size by the payload actually present before
	// allocating, so a corrupt header cannot demand gigabytes.
	remaining := len(data) - n
	cellSize := raw.Float32.Size(0)
	if rows > 0 {
		if cols == 0 {
			return nil, fmt.Errorf("%w: %d rows with no columns", ErrCorruptSnapshot, rows)
		}
		// cols is bounded first so cellSize*cols below cannot overflow.
		if cols > remaining/cellSize {
			return nil, fmt.Errorf("%w: %d columns exceed %d payload bytes",
				ErrTruncatedData, cols, remaining)
		}
		if rows > remaining/(cellSize*cols) {
			return nil, fmt.Errorf("%w: %dx%d matrix exceeds %d payload bytes",
				ErrTruncatedData, rows, cols, remaining)
		}
	}

	matrix := make([][]float32, rows)
	for i := range matrix {
		row := make([]float32, cols)
		for j := range row {
			v, m, err := raw.Float32.Unmarshal(data[n:])
			if err != nil {
				return nil, fmt.Errorf("%w: cell (%d,%d): %w", ErrTruncatedData, i, j, err)
			}
			row[j] = v
			n += m
		}
		matrix[i] = row
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptSnapshot, len(data)-n)
	}
	return matrix, nil
}
