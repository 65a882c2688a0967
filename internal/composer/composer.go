package composer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/careertrack/researchbot/internal/core"
)

const systemPrompt = "Answer the question as detailed as possible from the provided context. " +
	"If the answer is not in the provided context, use your knowledge and answer from that."

const chunkSeparator = "\n---\n"

// Composer turns a question plus retrieved chunks into a grounded prompt and
// asks the language model for an answer. Transient model failures get one
// bounded retry with backoff.
type Composer struct {
	llm         core.LLMProvider
	maxAttempts int
	backoff     time.Duration
}

func New(llm core.LLMProvider) *Composer {
	return &Composer{llm: llm, maxAttempts: 2, backoff: 500 * time.Millisecond}
}

func (c *Composer) Answer(ctx context.Context, question string, contextChunks []string) (string, error) {
	prompt := buildPrompt(question, contextChunks)

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff * time.Duration(attempt)):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		out, err := c.llm.Generate(ctx, systemPrompt, prompt)
		if err != nil {
			lastErr = err
			continue
		}
		if strings.TrimSpace(out) == "" {
			lastErr = fmt.Errorf("%w: empty completion", core.ErrMalformedOutput)
			continue
		}
		return out, nil
	}
	return "", fmt.Errorf("%w: %w", core.ErrGeneration, lastErr)
}

func buildPrompt(question string, contextChunks []string) string {
	var sb strings.Builder
	sb.WriteString("Context:\n")
	for _, ch := range contextChunks {
		sb.WriteString(ch)
		sb.WriteString(chunkSeparator)
	}
	sb.WriteString("\nQuestion:\n")
	sb.WriteString(question)
	sb.WriteString("\n\nAnswer:")
	return sb.String()
}
