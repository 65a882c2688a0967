package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"code.sajari.com/docconv"

	"github.com/careertrack/researchbot/internal/core"
)

// DocconvExtractor implements core.DocumentExtractor using sajari/docconv.
type DocconvExtractor struct {
	useReadability bool
}

func NewDocconvExtractor(useReadability bool) *DocconvExtractor {
	return &DocconvExtractor{useReadability: useReadability}
}

// ExtractText converts the document bytes into plain text. Documents that
// docconv cannot parse, and documents with no extractable text, are rejected
// with ErrExtraction so the caller never indexes an empty session.
func (e *DocconvExtractor) ExtractText(ctx context.Context, data []byte, contentType string) (string, error) {
	res, err := docconv.Convert(bytes.NewReader(data), contentType, e.useReadability)
	if err != nil {
		return "", fmt.Errorf("%w: docconv convert (%s): %v", core.ErrExtraction, contentType, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text := strings.TrimSpace(res.Body)
	if text == "" {
		return "", fmt.Errorf("%w: no extractable text (%s)", core.ErrExtraction, contentType)
	}
	return text, nil
}

var _ core.DocumentExtractor = (*DocconvExtractor)(nil)
