// Package config holds the matching tables and thresholds as immutable
// configuration, loaded once at startup and passed explicitly into the
// pipeline stages. Built-in defaults cover the shipped catalog; a YAML file
// overrides any section wholesale.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/skinscan/skinscan/pkg/skinscan/extract"
	"github.com/skinscan/skinscan/pkg/skinscan/normalize"
	"github.com/skinscan/skinscan/pkg/skinscan/rank"
)

// Config is the full matching configuration.
type Config struct {
	// Corrections is the ordered brand-misspelling table.
	Corrections []normalize.Correction `yaml:"brand_corrections"`
	// KnownBrands is the reference brand list for fuzzy detection.
	KnownBrands []string `yaml:"known_brands"`
	// Stopwords are keyword tokens excluded from the entity set.
	Stopwords []string `yaml:"stopwords"`

	Weights rank.Weights `yaml:"weights"`
	Boosts  rank.Boosts  `yaml:"boosts"`

	// TopK is the candidate window size handed to the re-ranker.
	TopK int `yaml:"top_k"`
	// MinConfidence is the leading-score floor for a positive match.
	MinConfidence float64 `yaml:"min_confidence"`
	// MinTaggerConfidence filters tagger spans.
	MinTaggerConfidence float64 `yaml:"min_tagger_confidence"`
	// BrandThreshold is the PartialRatio floor for known-brand detection.
	BrandThreshold float64 `yaml:"brand_threshold"`
}

// Default returns the calibrated configuration for the shipped catalog.
func Default() Config {
	return Config{
		Corrections: []normalize.Correction{
			{Wrong: "mameaearth", Correct: "mamaearth"},
			{Wrong: "mameearth", Correct: "mamaearth"},
			{Wrong: "plem", Correct: "plum"},
			{Wrong: "dr sheths", Correct: "dr. sheth's"},
			{Wrong: "dr. sheths", Correct: "dr. sheth's"},
			{Wrong: "dr sheth", Correct: "dr. sheth's"},
			{Wrong: "l@tus", Correct: "lotus"},
			{Wrong: "latus", Correct: "lotus"},
			{Wrong: "lotus prof", Correct: "lotus professional"},
		},
		KnownBrands: []string{
			"dr sheth", "dot and key", "minimalist", "plum", "neutrogena",
			"mamaearth", "pond", "wow", "the ordinary", "cetaphil", "nivea",
			"biotique", "himalaya", "forest essentials", "lotus",
			"lotus professional",
		},
		Stopwords:           []string{"with", "face", "wash", "and", "the"},
		Weights:             rank.DefaultWeights(),
		Boosts:              rank.DefaultBoosts(),
		TopK:                rank.DefaultTopK,
		MinConfidence:       rank.DefaultMinConfidence,
		MinTaggerConfidence: 0.85,
		BrandThreshold:      80,
	}
}

// Load reads a YAML configuration file. Sections absent from the file keep
// their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ExtractorConfig derives the extraction settings from the tables.
func (c Config) ExtractorConfig() extract.Config {
	return extract.Config{
		KnownBrands:         c.KnownBrands,
		Stopwords:           c.Stopwords,
		MinTaggerConfidence: c.MinTaggerConfidence,
		BrandThreshold:      c.BrandThreshold,
	}
}
