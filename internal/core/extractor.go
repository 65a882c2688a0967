package core

import "context"

// DocumentExtractor pulls plain text out of an uploaded document.
type DocumentExtractor interface {
	// ExtractText converts the raw document bytes into UTF-8 text. The
	// contentType hint helps the extractor choose the right parsing strategy.
	// Unparseable or empty documents fail with ErrExtraction.
	ExtractText(ctx context.Context, data []byte, contentType string) (string, error)
}
