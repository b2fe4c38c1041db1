// Package chunker splits extracted document text into overlapping
// word-bounded segments, the unit of retrieval.
package chunker

import (
	"errors"
	"fmt"
	"strings"
)

// Default window parameters, matching the ingestion defaults.
const (
	DefaultChunkSize = 300
	DefaultOverlap   = 50
)

// ErrInvalidConfig indicates chunking parameters that would never terminate
// or produce no usable windows. This is a programmer error, not input data.
var ErrInvalidConfig = errors.New("invalid chunking configuration")

// Chunk splits text on whitespace and returns sliding windows of chunkSize
// words, each window advancing by chunkSize-overlap words. The final window
// may be shorter. Empty or whitespace-only input yields no chunks and no
// error. The result is deterministic; a chunk's slice position is its
// sequence index.
func Chunk(text string, chunkSize, overlap int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", ErrInvalidConfig, chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap %d must not be negative", ErrInvalidConfig, overlap)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", ErrInvalidConfig, overlap, chunkSize)
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, nil
	}

	step := chunkSize - overlap
	var chunks []string
	for i := 0; i < len(words); i += step {
		end := i + chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks, nil
}
