package core

import "errors"

// Sentinel errors for the pipeline. Wrap with fmt.Errorf("...: %w", err) and
// check with errors.Is; the HTTP layer maps each kind onto a status code.
var (
	// ErrInvalidConfig marks bad caller-supplied parameters (chunk sizes, session IDs).
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrExtraction marks documents that cannot be parsed or contain no text.
	ErrExtraction = errors.New("document extraction failed")

	// ErrEmbedding marks embedding provider failures. Retriable by the caller.
	ErrEmbedding = errors.New("embedding failed")

	// ErrGeneration marks language model failures. Retriable by the caller.
	ErrGeneration = errors.New("generation failed")

	// ErrMalformedOutput marks model responses with no usable content.
	ErrMalformedOutput = errors.New("malformed model output")

	// ErrSessionNotFound is returned when asking against a session that was
	// never ingested. The caller must re-upload.
	ErrSessionNotFound = errors.New("session not found")
)
