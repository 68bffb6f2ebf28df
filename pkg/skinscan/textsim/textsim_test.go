package textsim

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "plum", "plum", 100},
		{"both empty", "", "", 100},
		{"one empty", "plum", "", 0},
		{"single substitution costs two", "plum", "plem", 75},
		{"disjoint", "abc", "xyz", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Ratio(tt.a, tt.b)
			if !almostEqual(got, tt.want) {
				t.Errorf("Ratio(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRatioSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"mamaearth", "mameearth"},
		{"niacinamide", "niacinamde"},
		{"face wash", "wash face"},
	}
	for _, p := range pairs {
		if Ratio(p[0], p[1]) != Ratio(p[1], p[0]) {
			t.Errorf("Ratio not symmetric for %q / %q", p[0], p[1])
		}
	}
}

func TestRatioOCRGarble(t *testing.T) {
	// "mamaearth" vs "mameearth": one vowel garbled, LCS is 8 of 9 runes.
	got := Ratio("mamaearth", "mameearth")
	want := float64(2*8) / 18 * 100
	if !almostEqual(got, want) {
		t.Errorf("Ratio = %f, want %f", got, want)
	}
}

func TestPartialRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"full containment", "plum", "plum ultra hydrating face wash", 100},
		{"containment reversed args", "plum ultra hydrating face wash", "plum", 100},
		{"equal length falls back to ratio", "plum", "plem", 75},
		{"empty input", "", "plum", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PartialRatio(tt.a, tt.b)
			if !almostEqual(got, tt.want) {
				t.Errorf("PartialRatio(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestPartialRatioBeatsRatioOnLongText(t *testing.T) {
	brand := "neutrogena"
	transcript := "new neutrogena deep clean facial cleanser 200ml"
	if got := PartialRatio(brand, transcript); got != 100 {
		t.Errorf("PartialRatio = %f, want 100", got)
	}
	if Ratio(brand, transcript) >= 100 {
		t.Error("Ratio should be well below 100 for the full transcript")
	}
}

func TestTokenSetRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"subset scores full", "ultra hydrating", "ultra hydrating face wash", 100},
		{"order insensitive", "wash face hydrating ultra", "ultra hydrating face wash", 100},
		{"duplicates ignored", "ultra ultra hydrating", "ultra hydrating face wash", 100},
		{"empty side", "", "ultra hydrating", 0},
		{"identical", "niacinamide", "niacinamide", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TokenSetRatio(tt.a, tt.b)
			if !almostEqual(got, tt.want) {
				t.Errorf("TokenSetRatio(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestTokenSetRatioPartialOverlap(t *testing.T) {
	a := "hydrating niacinamide serum"
	b := "ultra hydrating face wash"
	got := TokenSetRatio(a, b)
	if got <= 0 || got >= 100 {
		t.Errorf("expected partial-overlap score strictly between 0 and 100, got %f", got)
	}
}

func TestTokenSetRatioNoOverlapUsesIndel(t *testing.T) {
	// No shared tokens: the score degrades to the plain indel ratio of the
	// sorted token strings, which stays low for unrelated inputs.
	got := TokenSetRatio("cetaphil cleanser", "himalaya neem pack")
	if got >= 50 {
		t.Errorf("unrelated inputs should score low, got %f", got)
	}
}
