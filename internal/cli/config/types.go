// Package config provides configuration management for the govpilot CLI.
//
// Settings are layered with koanf: built-in defaults, then govpilot.yaml,
// then GOVPILOT_* environment variables, then explicitly set flags.
package config

import (
	"maps"

	"github.com/leapstack-labs/govpilot/internal/catalog"
)

// SourceConfig selects the catalog source.
type SourceConfig struct {
	Type    string            `koanf:"type"`
	Path    string            `koanf:"path"`
	DSN     string            `koanf:"dsn"`
	Options map[string]string `koanf:"options"`
}

// Config holds all CLI configuration options.
type Config struct {
	DataDir      string               `koanf:"data_dir"`
	StatePath    string               `koanf:"state_path"`
	PolicyFile   string               `koanf:"policy_file"`
	Environment  string               `koanf:"environment"`
	Verbose      bool                 `koanf:"verbose"`
	OutputFormat string               `koanf:"output"`
	MaxPaths     int                  `koanf:"max_paths"`
	Source       *SourceConfig        `koanf:"source"`
	Environments map[string]EnvConfig `koanf:"environments"`

	// ProjectRoot is the directory relative paths were resolved against.
	ProjectRoot string `koanf:"-"`
}

// EnvConfig holds environment-specific configuration overrides.
type EnvConfig struct {
	DataDir    string        `koanf:"data_dir"`
	PolicyFile string        `koanf:"policy_file"`
	Source     *SourceConfig `koanf:"source"`
}

// Default configuration values.
const (
	DefaultDataDir   = "data"
	DefaultStateFile = ".govpilot/state.db"
	DefaultEnv       = "dev"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultMaxPaths  = 0      // unlimited
)

// Default returns the configuration used when nothing was loaded.
func Default() *Config {
	return &Config{
		DataDir:      DefaultDataDir,
		StatePath:    DefaultStateFile,
		Environment:  DefaultEnv,
		OutputFormat: DefaultOutput,
		Source:       &SourceConfig{Type: catalog.TypeCSV},
	}
}

// CatalogConfig converts the source settings for catalog.Load.
func (c *Config) CatalogConfig() catalog.Config {
	cc := catalog.Config{
		Type:    catalog.TypeCSV,
		DataDir: c.DataDir,
	}
	if c.Source != nil {
		if c.Source.Type != "" {
			cc.Type = c.Source.Type
		}
		cc.Path = c.Source.Path
		cc.DSN = c.Source.DSN
		cc.Options = maps.Clone(c.Source.Options)
	}
	return cc
}

// MergeSourceConfig merges two source configs, with override taking precedence.
func MergeSourceConfig(base, override *SourceConfig) *SourceConfig {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	merged := &SourceConfig{
		Type:    base.Type,
		Path:    base.Path,
		DSN:     base.DSN,
		Options: make(map[string]string, len(base.Options)+len(override.Options)),
	}
	maps.Copy(merged.Options, base.Options)

	if override.Type != "" {
		merged.Type = override.Type
	}
	if override.Path != "" {
		merged.Path = override.Path
	}
	if override.DSN != "" {
		merged.DSN = override.DSN
	}
	maps.Copy(merged.Options, override.Options)

	return merged
}
