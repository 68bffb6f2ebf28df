// Package extract derives the candidate match tokens for one transcript.
// Four independent sources feed the set: high-confidence tagger spans,
// filtered keyword tokens, fuzzy hits against the known-brand list, and the
// whole transcript as a fallback so a garbled label still yields at least
// one candidate.
package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/skinscan/skinscan/pkg/skinscan/nlp"
	"github.com/skinscan/skinscan/pkg/skinscan/textsim"
)

var wordPattern = regexp.MustCompile(`\w+`)

// Config carries the extraction tables and thresholds. Tables are treated as
// immutable after construction; alternate tables go through a new Extractor.
type Config struct {
	// KnownBrands is the reference brand list scanned with PartialRatio.
	KnownBrands []string
	// Stopwords are keyword tokens that never become entities on their own.
	Stopwords []string
	// MinTaggerConfidence filters tagger spans; spans at or below it are
	// dropped. Zero selects the 0.85 default.
	MinTaggerConfidence float64
	// BrandThreshold is the PartialRatio score (0-100) a known brand must
	// exceed against the transcript. Zero selects the 80 default.
	BrandThreshold float64
	// MinEntityLength drops candidates at or below this rune count after
	// trimming. Zero selects the default of 2.
	MinEntityLength int
}

const (
	defaultMinTaggerConfidence = 0.85
	defaultBrandThreshold      = 80
	defaultMinEntityLength     = 2
)

// Extractor turns a cleaned transcript into a deduplicated entity set.
type Extractor struct {
	tagger        nlp.Tagger
	knownBrands   []string
	stopwords     map[string]struct{}
	minConfidence float64
	brandFloor    float64
	minLength     int
}

// New builds an Extractor around the given tagger. The tagger is required;
// its failures propagate to the caller rather than degrading the entity set.
func New(tagger nlp.Tagger, cfg Config) *Extractor {
	stops := make(map[string]struct{}, len(cfg.Stopwords))
	for _, w := range cfg.Stopwords {
		stops[strings.ToLower(w)] = struct{}{}
	}
	minConf := cfg.MinTaggerConfidence
	if minConf == 0 {
		minConf = defaultMinTaggerConfidence
	}
	floor := cfg.BrandThreshold
	if floor == 0 {
		floor = defaultBrandThreshold
	}
	minLen := cfg.MinEntityLength
	if minLen == 0 {
		minLen = defaultMinEntityLength
	}
	return &Extractor{
		tagger:        tagger,
		knownBrands:   append([]string(nil), cfg.KnownBrands...),
		stopwords:     stops,
		minConfidence: minConf,
		brandFloor:    floor,
		minLength:     minLen,
	}
}

// Extract returns the entity set for the cleaned text, lower-cased and
// deduplicated in first-insertion order. The order is part of the contract:
// downstream containment boosts and the re-rank query are built by joining
// the set, so it must be deterministic across calls.
func (x *Extractor) Extract(ctx context.Context, text string) ([]string, error) {
	spans, err := x.tagger.Tag(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("tag entities: %w", err)
	}

	var candidates []string
	for _, s := range spans {
		if s.Confidence <= x.minConfidence {
			continue
		}
		// Sub-word continuation markers are stripped so split WordPiece
		// spans re-join into their surface form.
		candidates = append(candidates, strings.ReplaceAll(s.Text, "##", ""))
	}

	lower := strings.ToLower(text)
	for _, w := range wordPattern.FindAllString(lower, -1) {
		if utf8.RuneCountInString(w) <= 3 {
			continue
		}
		if _, stop := x.stopwords[w]; stop {
			continue
		}
		candidates = append(candidates, w)
	}

	for _, brand := range x.knownBrands {
		if textsim.PartialRatio(brand, lower) > x.brandFloor {
			candidates = append(candidates, brand)
		}
	}

	candidates = append(candidates, strings.ReplaceAll(text, "\n", " "))

	seen := make(map[string]struct{}, len(candidates))
	var entities []string
	for _, c := range candidates {
		e := strings.TrimSpace(strings.ToLower(c))
		if utf8.RuneCountInString(e) <= x.minLength {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		entities = append(entities, e)
	}
	return entities, nil
}
