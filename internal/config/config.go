// Package config carries the tunable parameters of the pipeline. Matching
// thresholds and the quantile method are not pinned by any upstream
// definition, so they live here as named, documented settings instead of
// constants buried in the matching code.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Matching holds the record-linkage tunables.
type Matching struct {
	// Strategies enabled for same-source clustering, any of: doi, pid, title.
	Strategies []string `yaml:"strategies"`

	// DOITitleOverlap is the minimum title token-set Jaccard ratio required
	// before two records sharing a DOI are merged.
	DOITitleOverlap float64 `yaml:"doi_title_overlap"`

	// PIDTitleOverlap is the minimum title overlap for the PID strategy.
	PIDTitleOverlap float64 `yaml:"pid_title_overlap"`

	// MinTitleTokens is the minimum token count for a title to be usable as
	// a title-strategy key. Shorter titles are treated as generic.
	MinTitleTokens int `yaml:"min_title_tokens"`

	// GenericTitles is a stoplist of squashed titles that never key a merge
	// (editorials, errata and similar boilerplate).
	GenericTitles []string `yaml:"generic_titles"`
}

// Indicators holds the metrics-stage tunables.
type Indicators struct {
	// Percentiles targeted by the threshold computation (p, not q).
	Percentiles []int `yaml:"percentiles"`

	// Windows in years for windowed citation metrics.
	Windows []int `yaml:"windows"`

	// QuantileMethod selects the interpolation rule for percentile
	// thresholds: "linear" (between order statistics, the default) or
	// "nearest" (nearest rank). Kept swappable for parity testing against
	// reference runs.
	QuantileMethod string `yaml:"quantile_method"`
}

// Config is the root configuration document.
type Config struct {
	Matching   Matching   `yaml:"matching"`
	Indicators Indicators `yaml:"indicators"`
}

// Default returns the documented default configuration.
func Default() Config {
	return Config{
		Matching: Matching{
			Strategies:      []string{"doi", "pid", "title"},
			DOITitleOverlap: 0.5,
			PIDTitleOverlap: 0.5,
			MinTitleTokens:  3,
			GenericTitles: []string{
				"editorial", "errata", "erratum",
				"introduction", "introduccion", "introducao",
				"prefacio", "preface",
				"lettertoeditor", "cartaoeditor", "cartaaleditor",
				"comentario", "commentary",
			},
		},
		Indicators: Indicators{
			Percentiles:    []int{99, 95, 90, 50},
			Windows:        []int{2, 3, 5},
			QuantileMethod: "linear",
		},
	}
}

// Load reads a YAML config file, applying defaults for any section left
// unset. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate rejects settings the pipeline cannot honor.
func (c Config) Validate() error {
	for _, s := range c.Matching.Strategies {
		switch s {
		case "doi", "pid", "title":
		default:
			return fmt.Errorf("unknown matching strategy %q", s)
		}
	}

	if c.Matching.DOITitleOverlap < 0 || c.Matching.DOITitleOverlap > 1 {
		return fmt.Errorf("doi_title_overlap must be in [0,1], got %f", c.Matching.DOITitleOverlap)
	}

	if c.Matching.PIDTitleOverlap < 0 || c.Matching.PIDTitleOverlap > 1 {
		return fmt.Errorf("pid_title_overlap must be in [0,1], got %f", c.Matching.PIDTitleOverlap)
	}

	for _, p := range c.Indicators.Percentiles {
		if p <= 0 || p >= 100 {
			return fmt.Errorf("percentile must be in (0,100), got %d", p)
		}
	}

	for _, w := range c.Indicators.Windows {
		if w <= 0 {
			return fmt.Errorf("window must be positive, got %d", w)
		}
	}

	switch c.Indicators.QuantileMethod {
	case "linear", "nearest":
	default:
		return fmt.Errorf("unknown quantile method %q", c.Indicators.QuantileMethod)
	}

	return nil
}
