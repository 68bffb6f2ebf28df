package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrExtraction marks a failure in one of the external pipeline stages
	// (OCR, tagger, encoder). Callers must not conflate it with a clean
	// no-match result, which is a normal outcome and carries no error.
	ErrExtraction = errors.New("extraction failed")
)
