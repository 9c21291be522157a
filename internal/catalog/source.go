package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/govpilot/pkg/core"
)

// Source type names.
const (
	TypeCSV      = "csv"
	TypeSQLite   = "sqlite"
	TypeDuckDB   = "duckdb"
	TypePostgres = "postgres"
)

// Config selects and configures a catalog source.
type Config struct {
	Type    string            // source type, defaults to csv
	DataDir string            // directory holding the CSV files
	Path    string            // database file for sqlite and duckdb
	DSN     string            // connection string for postgres
	Options map[string]string // source-specific settings, e.g. postgres "schema"
}

// Row is one raw record keyed by column name.
type Row map[string]any

// Tables holds the raw rows of the four catalog tables in storage order.
type Tables struct {
	Datasets []Row
	Columns  []Row
	Lineage  []Row
	Audits   []Row
}

// Source reads the four catalog tables from a backing store.
type Source interface {
	Read(ctx context.Context, cfg Config) (*Tables, error)
}

// Load reads the catalog from the configured source.
//
// Rows that cannot be decoded or fail validation are dropped. In that case
// Load returns the catalog of remaining records together with a
// *core.BatchError describing each dropped row. Any other error means no
// catalog could be read and the returned catalog is nil.
func Load(ctx context.Context, cfg Config, logger *slog.Logger) (*core.Catalog, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Type == "" {
		cfg.Type = TypeCSV
	}

	src, err := NewSource(cfg.Type, logger)
	if err != nil {
		return nil, err
	}

	tables, err := src.Read(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("reading %s catalog: %w", cfg.Type, err)
	}

	cat, errs := decodeTables(tables)
	logger.Debug("catalog loaded",
		"source", cfg.Type,
		"datasets", len(cat.Datasets),
		"columns", len(cat.Columns),
		"lineage", len(cat.Lineage),
		"audits", len(cat.Audits),
		"rejected", len(errs))

	if len(errs) > 0 {
		return cat, &core.BatchError{Errors: errs}
	}
	return cat, nil
}
