// Package rerank breaks ties among the fuzzy top candidates with sentence
// embeddings. It only reorders within the window it is handed; the fuzzy
// score of the chosen candidate is what surfaces, never the similarity.
package rerank

import (
	"context"
	"fmt"
	"strings"

	"github.com/skinscan/skinscan/pkg/skinscan/nlp"
	"github.com/skinscan/skinscan/pkg/skinscan/rank"
)

// Reranker selects the semantically closest candidate to the entity set.
type Reranker struct {
	enc nlp.Encoder
}

// New builds a Reranker on the given encoder.
func New(enc nlp.Encoder) *Reranker {
	return &Reranker{enc: enc}
}

// Rerank picks the candidate whose product name is most similar to the
// joined entity set. With no entities the embedding step is skipped and the
// highest-fuzzy-score candidate wins. Cosine ties keep the earlier
// candidate. The candidate window must be non-empty.
func (r *Reranker) Rerank(ctx context.Context, entities []string, top []rank.ScoredProduct) (rank.ScoredProduct, error) {
	if len(top) == 0 {
		return rank.ScoredProduct{}, fmt.Errorf("rerank: empty candidate window")
	}
	if len(entities) == 0 {
		return top[0], nil
	}

	query, err := r.enc.Embed(ctx, strings.Join(entities, " "))
	if err != nil {
		return rank.ScoredProduct{}, fmt.Errorf("embed query: %w", err)
	}

	bestIdx := 0
	bestSim := -2.0
	for i, candidate := range top {
		vec, err := r.enc.Embed(ctx, candidate.Product.Name)
		if err != nil {
			return rank.ScoredProduct{}, fmt.Errorf("embed candidate %q: %w", candidate.Product.Name, err)
		}
		if sim := nlp.Cosine(query, vec); sim > bestSim {
			bestSim = sim
			bestIdx = i
		}
	}
	return top[bestIdx], nil
}
