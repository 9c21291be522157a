package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/govpilot/internal/catalog"
)

// OutputFormats lists the accepted values of the output setting.
var OutputFormats = []string{"auto", "text", "markdown", "json"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if c.DataDir == "" {
		errs = append(errs, fmt.Errorf("data_dir is required"))
	}
	if !validOutput(c.OutputFormat) {
		errs = append(errs, fmt.Errorf("output must be one of %v (got %q)", OutputFormats, c.OutputFormat))
	}
	if c.MaxPaths < 0 {
		errs = append(errs, fmt.Errorf("max_paths must be >= 0 (got %d)", c.MaxPaths))
	}
	if c.Source != nil && c.Source.Type != "" && !catalog.IsRegistered(c.Source.Type) {
		errs = append(errs, &catalog.UnknownSourceError{Type: c.Source.Type, Available: catalog.ListSources()})
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func validOutput(format string) bool {
	if format == "" {
		return true
	}
	for _, f := range OutputFormats {
		if f == format {
			return true
		}
	}
	return false
}

// ValidateDataDir checks that the catalog directory exists when the source
// reads CSV files from it.
func (c *Config) ValidateDataDir() error {
	cc := c.CatalogConfig()
	if cc.Type != catalog.TypeCSV && (cc.Type != catalog.TypeDuckDB || cc.Path != "") {
		return nil
	}
	info, err := os.Stat(c.DataDir)
	if os.IsNotExist(err) {
		return fmt.Errorf("data directory does not exist: %s\nHint: Create the directory or use --data-dir to specify a different path", c.DataDir)
	}
	if err != nil {
		return fmt.Errorf("checking data directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data directory is not a directory: %s", c.DataDir)
	}
	return nil
}

// EnsureStateDir creates the directory that holds the state database.
func (c *Config) EnsureStateDir() error {
	if c.StatePath == "" || c.StatePath == ":memory:" {
		return nil
	}
	dir := filepath.Dir(c.StatePath)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	return nil
}
