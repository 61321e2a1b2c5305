package rag

import (
	"strings"
)

// Chunk splits text into overlapping windows of chunkSize words, advancing by
// chunkSize-overlap words each step. Empty or all-whitespace input yields no
// chunks. The overlap must be smaller than the chunk size; otherwise the
// stride would be non-positive and scanning would never terminate.
func Chunk(text string, chunkSize, overlap int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, ErrInvalidChunking
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, ErrInvalidChunking
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, nil
	}

	var chunks []string
	step := chunkSize - overlap

	for i := 0; i < len(words); i += step {
		end := i + chunkSize
		if end > len(words) {
			end = len(words)
		}

		chunk := strings.TrimSpace(strings.Join(words[i:end], " "))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end == len(words) {
			break
		}
	}

	return chunks, nil
}
