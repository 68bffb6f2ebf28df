package skinscan

import (
	"context"
	"errors"
	"testing"

	"github.com/skinscan/skinscan/pkg/skinscan/catalog"
	"github.com/skinscan/skinscan/pkg/skinscan/config"
	"github.com/skinscan/skinscan/pkg/skinscan/internalerr"
	"github.com/skinscan/skinscan/pkg/skinscan/nlp"
	"github.com/skinscan/skinscan/pkg/skinscan/store/memstore"
)

type stubOCR struct {
	text string
	err  error
}

func (s *stubOCR) Name() string { return "stub" }

func (s *stubOCR) Recognize(_ context.Context, _ []byte) (string, error) {
	return s.text, s.err
}

type stubTagger struct {
	spans []nlp.Span
	err   error
}

func (s *stubTagger) Tag(_ context.Context, _ string) ([]nlp.Span, error) {
	return s.spans, s.err
}

type stubEncoder struct {
	vectors map[string][]float32
	err     error
}

func (s *stubEncoder) Embed(_ context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func newMatcher(t *testing.T, products []catalog.Product, ocrText string, enc *stubEncoder) *Matcher {
	t.Helper()
	if enc == nil {
		enc = &stubEncoder{}
	}
	m, err := New(context.Background(), Options{
		Store:   memstore.Seed(products, nil),
		OCR:     &stubOCR{text: ocrText},
		Tagger:  &stubTagger{},
		Encoder: enc,
		Config:  config.Default(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestMatchImageCorrectsAndBoosts(t *testing.T) {
	product := catalog.Product{
		Name:          "Ultra Hydrating Face Wash",
		Brand:         "Mamaearth",
		KeyIngredient: "Niacinamide",
	}
	m := newMatcher(t, []catalog.Product{product},
		"mameearth ultra hydrating face wash with niacinamide", nil)

	result, rep, err := m.MatchImageReport(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("MatchImageReport: %v", err)
	}
	if result.Product == nil {
		t.Fatal("expected a confident match")
	}
	if result.Product.Name != product.Name {
		t.Errorf("matched %q, want %q", result.Product.Name, product.Name)
	}
	if result.Score < 50 {
		t.Errorf("score %f should clear the confidence floor", result.Score)
	}

	// The correction table repaired the brand before extraction.
	foundBrand := false
	for _, e := range rep.Entities {
		if e == "mamaearth" {
			foundBrand = true
		}
	}
	if !foundBrand {
		t.Errorf("expected corrected brand in entity set, got %v", rep.Entities)
	}
	if len(rep.Candidates) != 1 {
		t.Errorf("expected a single candidate, got %v", rep.Candidates)
	}
	if rep.ID == "" {
		t.Error("report id missing")
	}
}

func TestMatchImageEmptyTranscript(t *testing.T) {
	product := catalog.Product{Name: "Face Wash", Brand: "Plum", KeyIngredient: "Green Tea"}
	m := newMatcher(t, []catalog.Product{product}, "", nil)

	result, err := m.MatchImage(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("an unreadable image is a clean no-match, got error: %v", err)
	}
	if result.Product != nil || result.Score != 0 {
		t.Errorf("expected no-match with score 0, got %+v", result)
	}
}

func TestMatchTextRerankSelectsWithinWindow(t *testing.T) {
	// Two products score nearly identically on fuzzy signals; the encoder
	// must break the tie, and the surfaced score is the winner's fuzzy
	// score, not the similarity.
	products := []catalog.Product{
		{Name: "Vitamin C Serum", Brand: "Minimalist", KeyIngredient: "Vitamin C"},
		{Name: "Vitamin C Cream", Brand: "Minimalist", KeyIngredient: "Vitamin C"},
	}
	enc := &stubEncoder{vectors: map[string][]float32{
		"Vitamin C Serum": {0, 1, 0},
		"Vitamin C Cream": {1, 0, 0},
	}}
	// The query embeds closest to the cream.
	enc.vectors["minimalist vitamin cream serum minimalist vitamin c cream serum"] = []float32{1, 0.1, 0}

	m := newMatcher(t, products, "minimalist vitamin c cream serum", enc)

	// Embed the query string the matcher will actually build: entities in
	// insertion order joined by spaces.
	_, rep, err := m.MatchTextReport(context.Background(), "minimalist vitamin c cream serum")
	if err != nil {
		t.Fatalf("MatchTextReport: %v", err)
	}
	if len(rep.Candidates) != 2 {
		t.Fatalf("expected both products in the window, got %v", rep.Candidates)
	}
	if !rep.Matched {
		t.Fatal("expected a confident match")
	}
	// Whatever the encoder picked, it must come from the window and carry
	// the window's fuzzy score.
	found := false
	for _, c := range rep.Candidates {
		if c.Name == rep.Product.Name && c.Score == rep.Score {
			found = true
		}
	}
	if !found {
		t.Errorf("re-ranked product %q (score %f) not in window %v",
			rep.Product.Name, rep.Score, rep.Candidates)
	}
}

func TestMatchTextTaggerFailureIsExtractionError(t *testing.T) {
	m, err := New(context.Background(), Options{
		Store:   memstore.Seed([]catalog.Product{{Name: "P", Brand: "B"}}, nil),
		OCR:     &stubOCR{},
		Tagger:  &stubTagger{err: errors.New("model gone")},
		Encoder: &stubEncoder{},
		Config:  config.Default(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = m.MatchText(context.Background(), "plum face wash")
	if !errors.Is(err, internalerr.ErrExtraction) {
		t.Errorf("tagger failure must surface as ErrExtraction, got %v", err)
	}
}

func TestMatchImageOCRFailureIsExtractionError(t *testing.T) {
	m, err := New(context.Background(), Options{
		Store:   memstore.Seed([]catalog.Product{{Name: "P", Brand: "B"}}, nil),
		OCR:     &stubOCR{err: errors.New("tesseract crashed")},
		Tagger:  &stubTagger{},
		Encoder: &stubEncoder{},
		Config:  config.Default(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = m.MatchImage(context.Background(), []byte("img"))
	if !errors.Is(err, internalerr.ErrExtraction) {
		t.Errorf("ocr failure must surface as ErrExtraction, got %v", err)
	}
}

func TestMatchImageRejectsEmptyImage(t *testing.T) {
	m := newMatcher(t, []catalog.Product{{Name: "P", Brand: "B"}}, "text", nil)
	if _, err := m.MatchImage(context.Background(), nil); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("empty image must be ErrInvalidInput, got %v", err)
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(context.Background(), Options{})
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestMatchBelowFloorIsNoMatchNotError(t *testing.T) {
	products := []catalog.Product{
		{Name: "Charcoal Peel Off Mask", Brand: "Wow", KeyIngredient: "Activated Charcoal"},
	}
	m := newMatcher(t, products, "zz", nil)
	result, err := m.MatchText(context.Background(), "zz")
	if err != nil {
		t.Fatalf("below-floor outcome must not be an error: %v", err)
	}
	if result.Product != nil || result.Score != 0 {
		t.Errorf("expected clean no-match, got %+v", result)
	}
}
