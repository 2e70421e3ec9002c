package core

import "fmt"

// Default splitter settings. Characters are treated as the unit of
// measure; a small overlap preserves context across chunk boundaries.
const (
	DefaultChunkSize = 800
	DefaultOverlap   = 50
)

// SplitText deterministically partitions text into an ordered sequence of
// substrings using a sliding window. Window i starts where window i-1
// ended minus overlap characters; the final window ends exactly at the
// text's end. Text no longer than chunkSize yields exactly one chunk
// equal to the whole input; empty text yields no chunks.
//
// The window operates on runes so multi-byte characters are never split.
// overlap must be strictly less than chunkSize, otherwise the window
// would never advance; such configurations are rejected with
// ErrInvalidSplitConfig.
func SplitText(text string, chunkSize, overlap int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", ErrInvalidSplitConfig, chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap %d must not be negative", ErrInvalidSplitConfig, overlap)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be less than chunk size %d", ErrInvalidSplitConfig, overlap, chunkSize)
	}

	if text == "" {
		return nil, nil
	}

	runes := []rune(text)
	length := len(runes)

	var chunks []string
	start := 0
	for start < length {
		end := start + chunkSize
		if end > length {
			end = length
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == length {
			break
		}
		start = end - overlap
	}
	return chunks, nil
}
