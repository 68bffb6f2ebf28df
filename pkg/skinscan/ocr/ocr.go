// Package ocr defines the image-to-text boundary. The engine is a black box
// from the pipeline's point of view: encoded image bytes in, raw transcript
// out. An empty transcript is a valid result for an unreadable image, not
// an error.
package ocr

import "context"

// Engine recognizes text in a single encoded image.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, image []byte) (string, error)
}
