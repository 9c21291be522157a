package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

func init() {
	Register(TypeDuckDB, func(logger *slog.Logger) Source { return NewDuckDBSource(logger) })
}

// DuckDBSource reads the catalog from a DuckDB database. With no database
// path it opens an in-memory database and exposes the CSV files of the data
// directory as views through read_csv_auto, so DuckDB does the type
// inference.
type DuckDBSource struct {
	logger *slog.Logger
}

// NewDuckDBSource creates a DuckDB source. A nil logger discards output.
func NewDuckDBSource(logger *slog.Logger) *DuckDBSource {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DuckDBSource{logger: logger}
}

// Read opens the database and reads the four tables.
func (s *DuckDBSource) Read(ctx context.Context, cfg Config) (*Tables, error) {
	dsn := ":memory:"
	if cfg.Path != "" {
		dsn = cfg.Path + "?access_mode=read_only"
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb connection: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}

	if cfg.Path == "" {
		// Views live in the connection's catalog; keep to one connection.
		db.SetMaxOpenConns(1)
		if err := s.attachCSV(ctx, db, cfg.DataDir); err != nil {
			return nil, err
		}
	}

	r := &sqlReader{db: db, schema: cfg.Options["schema"], logger: s.logger}
	return r.readAll(ctx)
}

// attachCSV creates one view per catalog CSV file.
func (s *DuckDBSource) attachCSV(ctx context.Context, db *sql.DB, dir string) error {
	if dir == "" {
		dir = "."
	}
	for _, t := range catalogTables {
		absPath, err := filepath.Abs(filepath.Join(dir, t.file))
		if err != nil {
			return fmt.Errorf("failed to get absolute path: %w", err)
		}
		query := fmt.Sprintf(
			"CREATE OR REPLACE VIEW %s AS SELECT * FROM read_csv_auto(%s, header=true)",
			quoteIdent(t.name),
			quoteLiteral(absPath),
		)
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to load %s: %w", t.file, err)
		}
		s.logger.Debug("attached csv", "table", t.name, "path", absPath)
	}
	return nil
}
