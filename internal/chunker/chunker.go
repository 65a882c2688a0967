package chunker

import (
	"fmt"

	"github.com/careertrack/researchbot/internal/core"
)

// Chunker splits text into fixed-size character chunks with overlap.
// Chunk i starts at rune offset i*(size-overlap) and spans size runes;
// the final chunk runs to the end of the text and may be shorter.
type Chunker struct {
	size    int
	overlap int
}

func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", core.ErrInvalidConfig, size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: chunk overlap must not be negative, got %d", core.ErrInvalidConfig, overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("%w: chunk overlap %d must be smaller than size %d", core.ErrInvalidConfig, overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split is pure and deterministic. Offsets are counted in runes, not bytes,
// so multi-byte text chunks the same way as its character count suggests.
// Empty input yields no chunks; rejecting empty documents is the caller's job.
func (c *Chunker) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := c.size - c.overlap
	var chunks []string
	for start := 0; ; start += step {
		end := start + c.size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
