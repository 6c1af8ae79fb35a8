// Package rcaconfig holds the declarative run configuration for the RCA
// engine: which package is currently "open" for incremental re-analysis,
// where fixture package stores live on disk, and logging verbosity.
package rcaconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all RCA run configuration.
type Config struct {
	// Name is a human label for the run, surfaced in CLI output.
	Name string `yaml:"name"`

	// FixturePaths lists directories searched for package-store JSON
	// fixtures, in order.
	FixturePaths []string `yaml:"fixture_paths"`

	// OpenPackage names the package treated as "open" for single-package
	// re-analysis (see AnalyzePackage). Empty means whole-store analysis.
	OpenPackage string `yaml:"open_package"`

	// Parallel enables the errgroup-based parallel whole-store path.
	Parallel bool `yaml:"parallel"`

	// Logging holds logging settings in rcalog's config shape. rcalog does
	// not read this field; it loads its own <workspace>/.rca/config.json.
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig mirrors rcalog's on-disk config shape.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	Categories map[string]bool `yaml:"categories"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:         "rca",
		FixturePaths: []string{"."},
		Parallel:     true,
		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// Load reads a YAML config file at path, falling back to defaults when the
// file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
