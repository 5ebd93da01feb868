// Package config loads scry configuration from TOML, YAML, or JSON files.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/amartel/scry/pkg/analysis"
)

// Config holds all configuration options for scry.
type Config struct {
	Thresholds ThresholdConfig `koanf:"thresholds"`
	Exclude    ExcludeConfig   `koanf:"exclude"`
	Output     OutputConfig    `koanf:"output"`
}

// ThresholdConfig defines the metric thresholds the suggestion rules use.
type ThresholdConfig struct {
	CyclomaticComplexity int     `koanf:"cyclomatic_complexity"`
	FunctionSize         int     `koanf:"function_size"`
	CommentRatio         float64 `koanf:"comment_ratio"`
	Maintainability      float64 `koanf:"maintainability"`
}

// ExcludeConfig defines file exclusion patterns for directory analysis.
type ExcludeConfig struct {
	Patterns []string `koanf:"patterns"`
	Dirs     []string `koanf:"dirs"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format"` // text, json, toon
	Color  bool   `koanf:"color"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Thresholds: ThresholdConfig{
			CyclomaticComplexity: 10,
			FunctionSize:         50,
			CommentRatio:         5.0,
			Maintainability:      60.0,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*_test.py",
				"*.min.js",
			},
			Dirs: []string{
				"vendor",
				"node_modules",
				".git",
				"dist",
				"build",
				"__pycache__",
			},
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// AnalysisThresholds converts the configured thresholds to the engine's
// threshold set.
func (c *Config) AnalysisThresholds() analysis.Thresholds {
	return analysis.Thresholds{
		Cyclomatic:      c.Thresholds.CyclomaticComplexity,
		FunctionSize:    c.Thresholds.FunctionSize,
		CommentRatio:    c.Thresholds.CommentRatio,
		Maintainability: c.Thresholds.Maintainability,
	}
}

// Load loads configuration from a file, layered over the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault tries to load config from standard locations or returns
// defaults.
func LoadOrDefault() *Config {
	configNames := []string{
		"scry.toml",
		"scry.yaml",
		"scry.yml",
		"scry.json",
		".scry.toml",
		".scry.yaml",
		".scry.yml",
		".scry.json",
	}

	for _, name := range configNames {
		if _, err := os.Stat(name); err == nil {
			cfg, err := Load(name)
			if err == nil {
				return cfg
			}
		}
	}

	return DefaultConfig()
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}
