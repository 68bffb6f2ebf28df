// Package nlp defines the narrow capability interfaces the pipeline needs
// from its ML collaborators. The matching logic is tested against
// deterministic stub implementations of these interfaces; the ONNX-backed
// implementations live in the onnx subpackage.
package nlp

import (
	"context"
	"math"
)

// Span is a tagged entity surface form with the model's confidence in it.
type Span struct {
	Text       string
	Label      string
	Confidence float64
}

// Tagger produces entity spans from text.
type Tagger interface {
	Tag(ctx context.Context, text string) ([]Span, error)
}

// Encoder maps text to a fixed-dimension sentence embedding.
type Encoder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Cosine returns the cosine similarity of two vectors. Mismatched lengths
// are compared over the shorter prefix; a zero vector yields 0.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
