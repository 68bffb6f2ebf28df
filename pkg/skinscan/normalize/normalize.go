// Package normalize cleans raw OCR transcripts before entity extraction:
// mojibake repair, punctuation normalization, and whole-word brand-spelling
// correction driven by an explicit correction table.
package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Correction maps a misspelled brand form to its canonical spelling.
// Matching is whole-word and case-insensitive; the table is applied in order.
type Correction struct {
	Wrong   string `yaml:"wrong"`
	Correct string `yaml:"correct"`
}

// Normalizer is a pure text cleaner. It never fails: input that matches no
// rule passes through unchanged.
type Normalizer struct {
	rules []rule
}

type rule struct {
	pattern *regexp.Regexp
	correct string
}

// punctuation holds the fixed single-character cleanups: smart quotes from
// OCR output become ASCII, and ampersands become the literal word "and" so
// brand names like "dot & key" tokenize the same way the catalog spells them.
var punctuation = strings.NewReplacer(
	"&", "and",
	"’", "'",
	"‘", "'",
	"“", `"`,
	"”", `"`,
)

// New builds a Normalizer from the given correction table. Each wrong form
// is compiled once into a whole-word, case-insensitive pattern.
func New(corrections []Correction) *Normalizer {
	n := &Normalizer{rules: make([]rule, 0, len(corrections))}
	for _, c := range corrections {
		if c.Wrong == "" {
			continue
		}
		pattern := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(c.Wrong) + `\b`)
		n.rules = append(n.rules, rule{pattern: pattern, correct: c.Correct})
	}
	return n
}

// Normalize repairs encoding artifacts, normalizes punctuation, and applies
// the brand-correction table. It is idempotent for inputs whose repair does
// not itself introduce new mis-encodings.
func (n *Normalizer) Normalize(text string) string {
	text = repairMojibake(text)
	text = punctuation.Replace(text)
	for _, r := range n.rules {
		text = r.pattern.ReplaceAllString(text, r.correct)
	}
	return text
}

// mojibakeMarkers are byte sequences that only appear when UTF-8 text was
// re-decoded as Windows-1252 (e.g. an apostrophe surfacing as "â€™").
var mojibakeMarkers = []string{"â€", "Ã", "Â"}

// repairMojibake reverses a single round of UTF-8-as-Windows-1252 decoding.
// The text is encoded back to Windows-1252 bytes; if those bytes form valid
// UTF-8 the repaired form is used, otherwise the input is kept as is.
func repairMojibake(s string) string {
	marked := false
	for _, m := range mojibakeMarkers {
		if strings.Contains(s, m) {
			marked = true
			break
		}
	}
	if !marked {
		return s
	}
	repaired, err := charmap.Windows1252.NewEncoder().String(s)
	if err != nil || !utf8.ValidString(repaired) {
		return s
	}
	return repaired
}
