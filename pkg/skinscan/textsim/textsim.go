// Package textsim implements the fuzzy string-similarity primitives the
// matching pipeline is calibrated against. All scores are on a 0-100 scale.
//
// Ratio is a normalized indel similarity: only insertions and deletions are
// counted, so a substitution costs 2. TokenSetRatio and PartialRatio are
// built on top of it; their exact semantics matter because the pipeline's
// boost and brand-detection thresholds assume this output range.
package textsim

import (
	"sort"
	"strings"
)

// Ratio returns the normalized indel similarity between a and b.
// Two empty strings are considered identical.
func Ratio(a, b string) float64 {
	return ratioRunes([]rune(a), []rune(b))
}

func ratioRunes(a, b []rune) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 100
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	total := len(a) + len(b)
	// indel distance = total - 2*LCS, so similarity = 2*LCS/total
	return float64(2*lcsLength(a, b)) / float64(total) * 100
}

// PartialRatio returns the best Ratio between the shorter input and any
// equally long substring of the longer one. A full containment scores 100.
func PartialRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	shorter, longer := ra, rb
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	best := 0.0
	for i := 0; i+len(shorter) <= len(longer); i++ {
		r := ratioRunes(shorter, longer[i:i+len(shorter)])
		if r > best {
			best = r
		}
		if best == 100 {
			break
		}
	}
	return best
}

// TokenSetRatio tokenizes both inputs on whitespace, deduplicates and sorts
// the tokens, and scores the best alignment of the shared-token core against
// each side. Word order and repetition do not affect the result; if one
// input's tokens are a subset of the other's the score is 100.
func TokenSetRatio(a, b string) float64 {
	ta := uniqueSortedTokens(a)
	tb := uniqueSortedTokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	inSet := make(map[string]struct{}, len(tb))
	for _, t := range tb {
		inSet[t] = struct{}{}
	}

	var common, diffA []string
	for _, t := range ta {
		if _, ok := inSet[t]; ok {
			common = append(common, t)
		} else {
			diffA = append(diffA, t)
		}
	}
	inCommon := make(map[string]struct{}, len(common))
	for _, t := range common {
		inCommon[t] = struct{}{}
	}
	var diffB []string
	for _, t := range tb {
		if _, ok := inCommon[t]; !ok {
			diffB = append(diffB, t)
		}
	}

	sect := strings.Join(common, " ")
	s1 := joinSections(sect, strings.Join(diffA, " "))
	s2 := joinSections(sect, strings.Join(diffB, " "))

	best := Ratio(s1, s2)
	if r := Ratio(sect, s1); r > best {
		best = r
	}
	if r := Ratio(sect, s2); r > best {
		best = r
	}
	return best
}

func joinSections(sect, rest string) string {
	if sect == "" {
		return rest
	}
	if rest == "" {
		return sect
	}
	return sect + " " + rest
}

func uniqueSortedTokens(s string) []string {
	fields := strings.Fields(s)
	seen := make(map[string]struct{}, len(fields))
	var out []string
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// lcsLength computes the longest-common-subsequence length with a two-row DP.
func lcsLength(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
		for j := range curr {
			curr[j] = 0
		}
	}
	return prev[len(b)]
}
