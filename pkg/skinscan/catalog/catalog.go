// Package catalog defines the immutable product and ingredient records and
// the tolerant loaders that build them from raw JSON exports. Malformed
// numeric fields never fail a load; they default to zero.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Product is one catalog entry. Records are read-only once loaded; the
// whole catalog is shared across concurrent match requests without locking.
type Product struct {
	Name               string  `json:"name"`
	Brand              string  `json:"brand"`
	KeyIngredient      string  `json:"key_ingredient"`
	RiskScore          int     `json:"risk_score"`
	EffectivenessScore float64 `json:"effectiveness_score"`
}

// Ingredient is a lookup record keyed by name (case-insensitive).
// The audience fields are structured lists, not stringified ones.
type Ingredient struct {
	Name             string     `json:"name"`
	ShortDescription string     `json:"short_description"`
	WhatItDoes       string     `json:"what_does_it_do"`
	GoodFor          StringList `json:"who_is_it_good_for"`
	Avoid            StringList `json:"who_should_avoid"`
	URL              string     `json:"url"`
}

// rawProduct mirrors the export field names of the product dataset.
type rawProduct struct {
	Name          string          `json:"Product Name"`
	Brand         string          `json:"Brand"`
	KeyIngredient string          `json:"Key Ingredient"`
	RiskScore     json.RawMessage `json:"Risk Score"`
	Effectiveness json.RawMessage `json:"Effectiveness Score (Based on Key Ingredient)"`
}

// LoadProducts reads the raw product export and returns normalized records:
// string fields trimmed, numeric fields defaulted on parse failure.
func LoadProducts(r io.Reader) ([]Product, error) {
	var raw []rawProduct
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	products := make([]Product, len(raw))
	for i, rp := range raw {
		products[i] = Product{
			Name:               strings.TrimSpace(rp.Name),
			Brand:              strings.TrimSpace(rp.Brand),
			KeyIngredient:      strings.TrimSpace(rp.KeyIngredient),
			RiskScore:          safeInt(rp.RiskScore),
			EffectivenessScore: safeFloat(rp.Effectiveness),
		}
	}
	return products, nil
}

// LoadProductsFile loads products from a JSON file on disk.
func LoadProductsFile(path string) ([]Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadProducts(f)
}

// LoadIngredients reads the ingredient dataset.
func LoadIngredients(r io.Reader) ([]Ingredient, error) {
	var items []Ingredient
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode ingredients: %w", err)
	}
	for i := range items {
		items[i].Name = strings.TrimSpace(items[i].Name)
	}
	return items, nil
}

// LoadIngredientsFile loads ingredients from a JSON file on disk.
func LoadIngredientsFile(path string) ([]Ingredient, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadIngredients(f)
}

// safeInt parses a raw JSON value as an integer, accepting numbers and
// numeric strings, and defaulting to 0 on anything else.
func safeInt(raw json.RawMessage) int {
	s := rawScalar(raw)
	if s == "" {
		return 0
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

// safeFloat parses a raw JSON value as a float, defaulting to 0.0.
func safeFloat(raw json.RawMessage) float64 {
	s := rawScalar(raw)
	if s == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return 0
}

func rawScalar(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		var unquoted string
		if err := json.Unmarshal(raw, &unquoted); err == nil {
			s = strings.TrimSpace(unquoted)
		}
	}
	return s
}

// StringList is a []string that also accepts the legacy export form: a
// single string holding a bracketed, quoted list. The legacy form is parsed
// structurally; it is never evaluated.
type StringList []string

// UnmarshalJSON accepts either a JSON array of strings or a legacy
// stringified list like "['oily skin', 'acne-prone skin']".
func (l *StringList) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		*l = items
		return nil
	}
	var legacy string
	if err := json.Unmarshal(data, &legacy); err != nil {
		return fmt.Errorf("string list: expected array or string, got %s", string(data))
	}
	*l = parseLegacyList(legacy)
	return nil
}

// parseLegacyList splits "['a', 'b']" into its elements. Unbracketed or
// empty input yields an empty list.
func parseLegacyList(s string) []string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.Trim(p, `'"`)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
