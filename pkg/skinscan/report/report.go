// Package report builds explainable match reports: the entity set that drove
// the match, the scored candidate window, and the final decision, stamped
// with a unique id for correlation in logs and API responses.
package report

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/skinscan/skinscan/pkg/skinscan/catalog"
	"github.com/skinscan/skinscan/pkg/skinscan/rank"
)

// Builder constructs match reports with monotonic ULIDs. The entropy source
// is not goroutine-safe, so id generation is serialized.
type Builder struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// New creates a report builder.
func New() *Builder {
	return &Builder{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Candidate is one member of the scored top-K window.
type Candidate struct {
	Name  string  `json:"name"`
	Brand string  `json:"brand"`
	Score float64 `json:"score"`
}

// Report explains a single match decision.
type Report struct {
	ID          string           `json:"id"`
	Entities    []string         `json:"entities"`
	Candidates  []Candidate      `json:"candidates"`
	Product     *catalog.Product `json:"product,omitempty"`
	Score       float64          `json:"score"`
	Matched     bool             `json:"matched"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// Build assembles a report. product is nil for a no-match outcome.
func (b *Builder) Build(entities []string, window []rank.ScoredProduct, product *catalog.Product, score float64) Report {
	candidates := make([]Candidate, len(window))
	for i, c := range window {
		candidates[i] = Candidate{
			Name:  c.Product.Name,
			Brand: c.Product.Brand,
			Score: c.Score,
		}
	}
	now := time.Now()
	b.mu.Lock()
	id := ulid.MustNew(ulid.Timestamp(now), b.entropy).String()
	b.mu.Unlock()
	return Report{
		ID:          id,
		Entities:    entities,
		Candidates:  candidates,
		Product:     product,
		Score:       score,
		Matched:     product != nil,
		GeneratedAt: now,
	}
}
