// Package config loads sqlsift's analyzer configuration from a TOML
// file: dialect, disabled diagnostic codes, and the max-errors cap
// (spec.md §4.6's Options, made configurable outside the core). It
// mirrors the teacher's internal/parser/toml reader — os.Open +
// toml.NewDecoder into a struct tagged with `toml:"..."` — retargeted
// from a schema DSL to a small flat settings file.
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"sqlsift/internal/diag"
	"sqlsift/internal/dialect"
)

// AnalyzerConfig is sqlsift's top-level configuration document.
type AnalyzerConfig struct {
	Dialect       string   `toml:"dialect"`
	DisabledRules []string `toml:"disabled_rules"`
	MaxErrors     int      `toml:"max_errors"`
}

// Default returns the configuration used when no config file is
// present: PostgreSQL dialect, no disabled rules, no error cap.
func Default() AnalyzerConfig {
	return AnalyzerConfig{Dialect: string(dialect.PostgreSQL)}
}

// Load reads and parses the TOML config file at path.
func Load(path string) (AnalyzerConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return AnalyzerConfig{}, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a TOML config document from r.
func Parse(r io.Reader) (AnalyzerConfig, error) {
	var cfg AnalyzerConfig
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return AnalyzerConfig{}, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

// DialectName validates and returns the configured dialect tag.
func (c AnalyzerConfig) DialectName() (dialect.Name, error) {
	n := dialect.Name(c.Dialect)
	if !n.Valid() {
		return "", fmt.Errorf("config: unknown dialect %q", c.Dialect)
	}
	return n, nil
}

// DisabledRuleSet converts DisabledRules into the set shape
// analyzer.Options expects.
func (c AnalyzerConfig) DisabledRuleSet() map[diag.Code]bool {
	if len(c.DisabledRules) == 0 {
		return nil
	}
	set := make(map[diag.Code]bool, len(c.DisabledRules))
	for _, r := range c.DisabledRules {
		set[diag.Code(r)] = true
	}
	return set
}
