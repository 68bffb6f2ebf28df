package report

import (
	"testing"

	"github.com/skinscan/skinscan/pkg/skinscan/catalog"
	"github.com/skinscan/skinscan/pkg/skinscan/rank"
)

func TestBuildMatched(t *testing.T) {
	b := New()
	product := catalog.Product{Name: "Face Wash", Brand: "Plum"}
	window := []rank.ScoredProduct{{Product: product, Score: 82.5}}

	r := b.Build([]string{"plum", "face"}, window, &product, 82.5)
	if !r.Matched || r.Product == nil {
		t.Fatal("expected a matched report")
	}
	if r.Score != 82.5 {
		t.Errorf("Score = %f, want 82.5", r.Score)
	}
	if len(r.Candidates) != 1 || r.Candidates[0].Brand != "Plum" {
		t.Errorf("candidate window wrong: %+v", r.Candidates)
	}
	if r.ID == "" {
		t.Error("report id must be set")
	}
}

func TestBuildNoMatch(t *testing.T) {
	b := New()
	r := b.Build(nil, nil, nil, 0)
	if r.Matched || r.Product != nil || r.Score != 0 {
		t.Errorf("expected no-match report, got %+v", r)
	}
}

func TestBuildIDsUnique(t *testing.T) {
	b := New()
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		r := b.Build(nil, nil, nil, 0)
		if _, dup := seen[r.ID]; dup {
			t.Fatalf("duplicate report id %s", r.ID)
		}
		seen[r.ID] = struct{}{}
	}
}
