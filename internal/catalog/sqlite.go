package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	_ "modernc.org/sqlite" // sqlite driver
)

func init() {
	Register(TypeSQLite, func(logger *slog.Logger) Source { return NewSQLiteSource(logger) })
}

// SQLiteSource reads the catalog from a govpilot state database, as written
// by the seed command. Rows come back in their original catalog order.
type SQLiteSource struct {
	logger *slog.Logger
}

// NewSQLiteSource creates a SQLite source. A nil logger discards output.
func NewSQLiteSource(logger *slog.Logger) *SQLiteSource {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteSource{logger: logger}
}

// Read opens cfg.Path read-only and reads the four tables.
func (s *SQLiteSource) Read(ctx context.Context, cfg Config) (*Tables, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite source requires a database path")
	}
	// sql.Open would create a missing file.
	if _, err := os.Stat(cfg.Path); err != nil {
		return nil, fmt.Errorf("opening state database: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+cfg.Path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite connection: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}

	s.logger.Debug("reading catalog from sqlite", "path", cfg.Path)
	r := &sqlReader{db: db, orderBy: "position", logger: s.logger}
	return r.readAll(ctx)
}
