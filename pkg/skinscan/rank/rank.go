// Package rank scores every catalog product against an entity set and
// selects the top candidates. Scoring blends three fuzzy signals per entity
// and adds categorical containment boosts on top of the best entity score.
package rank

import (
	"sort"
	"strings"

	"github.com/skinscan/skinscan/pkg/skinscan/catalog"
	"github.com/skinscan/skinscan/pkg/skinscan/normalize"
	"github.com/skinscan/skinscan/pkg/skinscan/textsim"
)

// Weights blends the per-entity fuzzy signals. They should sum to 1 so the
// weighted score stays on the 0-100 fuzzy scale the boosts are tuned for.
type Weights struct {
	Name       float64 `yaml:"name"`
	Ingredient float64 `yaml:"ingredient"`
	Brand      float64 `yaml:"brand"`
}

// Boosts are the additive bonuses for categorical containment conditions.
type Boosts struct {
	Brand      float64 `yaml:"brand"`
	Ingredient float64 `yaml:"ingredient"`
	NameWords  float64 `yaml:"name_words"`
}

// DefaultWeights returns the calibrated signal weights.
func DefaultWeights() Weights {
	return Weights{Name: 0.5, Ingredient: 0.3, Brand: 0.2}
}

// DefaultBoosts returns the calibrated containment bonuses.
func DefaultBoosts() Boosts {
	return Boosts{Brand: 10, Ingredient: 5, NameWords: 5}
}

const (
	// DefaultTopK is the candidate window handed to the re-ranker.
	DefaultTopK = 5
	// DefaultMinConfidence is the floor below which a leading score is
	// rejected as unreliable.
	DefaultMinConfidence = 50
)

// ScoredProduct pairs a product with its boosted score for one request.
type ScoredProduct struct {
	Product catalog.Product
	Score   float64
}

// Scorer computes boosted fuzzy scores. It holds no per-request state and is
// safe for concurrent use.
type Scorer struct {
	norm    *normalize.Normalizer
	weights Weights
	boosts  Boosts
}

// NewScorer builds a Scorer. The normalizer canonicalizes the joined entity
// text before the containment boosts are evaluated.
func NewScorer(norm *normalize.Normalizer, w Weights, b Boosts) *Scorer {
	return &Scorer{norm: norm, weights: w, boosts: b}
}

// Score returns one entry per product, unfiltered, in catalog order.
// An empty entity set scores every product 0 with no boosts.
func (s *Scorer) Score(entities []string, products []catalog.Product) []ScoredProduct {
	allText := strings.ToLower(s.norm.Normalize(strings.Join(entities, " ")))

	scored := make([]ScoredProduct, len(products))
	for i, p := range products {
		// The brand is compared as stored. Correcting it through the
		// misspelling table would hand the containment boost to catalog
		// records whose own brand field is garbled.
		brand := strings.ToLower(p.Brand)
		name := strings.ToLower(p.Name)
		ingredient := strings.ToLower(p.KeyIngredient)

		best := 0.0
		for _, e := range entities {
			nameScore := textsim.TokenSetRatio(e, name)
			ingredientScore := textsim.TokenSetRatio(e, ingredient)
			brandScore := textsim.PartialRatio(e, brand)
			candidate := s.weights.Name*nameScore +
				s.weights.Ingredient*ingredientScore +
				s.weights.Brand*brandScore
			if candidate > best {
				best = candidate
			}
		}

		scored[i] = ScoredProduct{
			Product: p,
			Score:   best + s.boost(allText, brand, name, ingredient),
		}
	}
	return scored
}

// boost applies the containment bonuses. Empty fields never boost: a blank
// brand or ingredient is trivially "contained" everywhere and would inflate
// every product, and an empty entity set must leave all scores at 0.
func (s *Scorer) boost(allText, brand, name, ingredient string) float64 {
	if allText == "" {
		return 0
	}
	total := 0.0
	if brand != "" && strings.Contains(allText, brand) {
		total += s.boosts.Brand
	}
	if ingredient != "" && strings.Contains(allText, ingredient) {
		total += s.boosts.Ingredient
	}
	matched := 0
	for _, w := range strings.Fields(name) {
		if strings.Contains(allText, w) {
			matched++
		}
	}
	if matched >= 2 {
		total += s.boosts.NameWords
	}
	return total
}

// SelectTop sorts candidates by score descending and truncates to k. Ties
// keep catalog insertion order (stable sort). The boolean reports whether
// the leading score clears the floor; false means no confident match.
func SelectTop(scored []ScoredProduct, k int, floor float64) ([]ScoredProduct, bool) {
	top := make([]ScoredProduct, len(scored))
	copy(top, scored)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Score > top[j].Score
	})
	if len(top) > k {
		top = top[:k]
	}
	if len(top) == 0 || top[0].Score < floor {
		return top, false
	}
	return top, true
}
