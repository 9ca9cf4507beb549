// Package config loads talon.yml, the CLI's project configuration.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/talonforge/talon/internal/analyzer"
)

// Config holds the settings the CLI layers on top of library defaults
type Config struct {
	Analysis AnalysisConfig
	Catalog  CatalogConfig
}

// AnalysisConfig tunes directory analysis
type AnalysisConfig struct {
	MaxFileSize  int64
	ExcludeGlobs []string
	IgnoreDirs   []string
	Workers      int
}

// CatalogConfig lists template search paths, earliest wins
type CatalogConfig struct {
	SearchPaths []string
}

// ConfigFile is the file name looked up in the working directory
const ConfigFile = "talon.yml"

// Load reads talon.yml from the working directory with environment
// variable overrides (TALON_*). A missing file yields pure defaults.
func Load() (*Config, error) {
	defaults := analyzer.DefaultOptions()

	v := viper.New()
	v.SetConfigName("talon")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetDefault("analysis.max_file_size", defaults.MaxFileSize)
	v.SetDefault("analysis.exclude_globs", defaults.ExcludeGlobs)
	v.SetDefault("analysis.ignore_dirs", defaults.IgnoreDirs)
	v.SetDefault("analysis.workers", 0)
	v.SetDefault("catalog.search_paths", DefaultSearchPaths())

	v.AutomaticEnv()
	v.SetEnvPrefix("TALON")

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("failed to read %s: %w", ConfigFile, err)
		}
	}

	return &Config{
		Analysis: AnalysisConfig{
			MaxFileSize:  v.GetInt64("analysis.max_file_size"),
			ExcludeGlobs: v.GetStringSlice("analysis.exclude_globs"),
			IgnoreDirs:   v.GetStringSlice("analysis.ignore_dirs"),
			Workers:      v.GetInt("analysis.workers"),
		},
		Catalog: CatalogConfig{
			SearchPaths: v.GetStringSlice("catalog.search_paths"),
		},
	}, nil
}

// DefaultSearchPaths returns the built-in catalog locations: a project
// templates directory first, then the user's template directory.
func DefaultSearchPaths() []string {
	paths := []string{"templates"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home+"/.talon/templates")
	}
	return paths
}

// AnalyzerOptions converts the config into analyzer options
func (c *Config) AnalyzerOptions() analyzer.Options {
	return analyzer.Options{
		MaxFileSize:  c.Analysis.MaxFileSize,
		ExcludeGlobs: c.Analysis.ExcludeGlobs,
		IgnoreDirs:   c.Analysis.IgnoreDirs,
		Workers:      c.Analysis.Workers,
	}
}
