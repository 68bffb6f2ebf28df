// Package skinscan is the product-identification facade. It wires the
// pipeline — normalize, extract, score, select, re-rank — over a catalog
// loaded once at startup, and exposes image and text entry points.
//
// One request runs the stages sequentially; concurrent requests share the
// catalog, tables, and engines read-only, so no locking is needed here.
package skinscan

import (
	"context"
	"fmt"

	"github.com/skinscan/skinscan/pkg/skinscan/catalog"
	"github.com/skinscan/skinscan/pkg/skinscan/config"
	"github.com/skinscan/skinscan/pkg/skinscan/extract"
	"github.com/skinscan/skinscan/pkg/skinscan/internalerr"
	"github.com/skinscan/skinscan/pkg/skinscan/nlp"
	"github.com/skinscan/skinscan/pkg/skinscan/normalize"
	"github.com/skinscan/skinscan/pkg/skinscan/ocr"
	"github.com/skinscan/skinscan/pkg/skinscan/rank"
	"github.com/skinscan/skinscan/pkg/skinscan/rerank"
	"github.com/skinscan/skinscan/pkg/skinscan/report"
	"github.com/skinscan/skinscan/pkg/skinscan/store"
)

// Options configures a Matcher. Store, OCR, Tagger and Encoder are required.
type Options struct {
	Store   store.Store
	OCR     ocr.Engine
	Tagger  nlp.Tagger
	Encoder nlp.Encoder
	Config  config.Config
}

// Matcher runs the matching pipeline. Construct once, share freely.
type Matcher struct {
	catalog   []catalog.Product
	ocrEngine ocr.Engine
	norm      *normalize.Normalizer
	extractor *extract.Extractor
	scorer    *rank.Scorer
	reranker  *rerank.Reranker
	reports   *report.Builder
	topK      int
	floor     float64
}

// MatchResult is the terminal pipeline output for one request. A nil
// Product with score 0 is the designed no-confident-match outcome.
type MatchResult struct {
	Product *catalog.Product `json:"product,omitempty"`
	Score   float64          `json:"score"`
}

// New loads the catalog from the store and assembles the pipeline.
func New(ctx context.Context, opts Options) (*Matcher, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: store is required", internalerr.ErrInvalidConfig)
	}
	if opts.OCR == nil || opts.Tagger == nil || opts.Encoder == nil {
		return nil, fmt.Errorf("%w: ocr, tagger and encoder are required", internalerr.ErrInvalidConfig)
	}
	cfg := opts.Config
	if cfg.TopK == 0 {
		cfg = config.Default()
	}

	products, err := opts.Store.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	norm := normalize.New(cfg.Corrections)
	return &Matcher{
		catalog:   products,
		ocrEngine: opts.OCR,
		norm:      norm,
		extractor: extract.New(opts.Tagger, cfg.ExtractorConfig()),
		scorer:    rank.NewScorer(norm, cfg.Weights, cfg.Boosts),
		reranker:  rerank.New(opts.Encoder),
		reports:   report.New(),
		topK:      cfg.TopK,
		floor:     cfg.MinConfidence,
	}, nil
}

// CatalogSize reports how many products are loaded.
func (m *Matcher) CatalogSize() int { return len(m.catalog) }

// MatchImage runs OCR on the image and matches the transcript against the
// catalog. Engine failures surface as ErrExtraction-wrapped errors; an
// unreadable image that OCRs to nothing is a clean no-match instead.
func (m *Matcher) MatchImage(ctx context.Context, image []byte) (MatchResult, error) {
	if len(image) == 0 {
		return MatchResult{}, fmt.Errorf("%w: empty image", internalerr.ErrInvalidInput)
	}
	text, err := m.ocrEngine.Recognize(ctx, image)
	if err != nil {
		return MatchResult{}, fmt.Errorf("%w: ocr: %w", internalerr.ErrExtraction, err)
	}
	return m.MatchText(ctx, text)
}

// MatchText matches a raw transcript against the catalog.
func (m *Matcher) MatchText(ctx context.Context, raw string) (MatchResult, error) {
	result, _, _, err := m.run(ctx, raw)
	return result, err
}

// MatchImageReport is MatchImage plus the explainable report.
func (m *Matcher) MatchImageReport(ctx context.Context, image []byte) (MatchResult, report.Report, error) {
	if len(image) == 0 {
		return MatchResult{}, report.Report{}, fmt.Errorf("%w: empty image", internalerr.ErrInvalidInput)
	}
	text, err := m.ocrEngine.Recognize(ctx, image)
	if err != nil {
		return MatchResult{}, report.Report{}, fmt.Errorf("%w: ocr: %w", internalerr.ErrExtraction, err)
	}
	return m.MatchTextReport(ctx, text)
}

// MatchTextReport is MatchText plus the explainable report.
func (m *Matcher) MatchTextReport(ctx context.Context, raw string) (MatchResult, report.Report, error) {
	result, entities, window, err := m.run(ctx, raw)
	if err != nil {
		return MatchResult{}, report.Report{}, err
	}
	return result, m.reports.Build(entities, window, result.Product, result.Score), nil
}

// run executes the pipeline stages in order for one transcript.
func (m *Matcher) run(ctx context.Context, raw string) (MatchResult, []string, []rank.ScoredProduct, error) {
	cleaned := m.norm.Normalize(raw)

	entities, err := m.extractor.Extract(ctx, cleaned)
	if err != nil {
		return MatchResult{}, nil, nil, fmt.Errorf("%w: %w", internalerr.ErrExtraction, err)
	}

	scored := m.scorer.Score(entities, m.catalog)

	top, ok := rank.SelectTop(scored, m.topK, m.floor)
	if !ok {
		return MatchResult{}, entities, top, nil
	}

	best, err := m.reranker.Rerank(ctx, entities, top)
	if err != nil {
		return MatchResult{}, nil, nil, fmt.Errorf("%w: %w", internalerr.ErrExtraction, err)
	}

	product := best.Product
	return MatchResult{Product: &product, Score: best.Score}, entities, top, nil
}
