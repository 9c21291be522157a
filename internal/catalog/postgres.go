package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
)

func init() {
	Register(TypePostgres, func(logger *slog.Logger) Source { return NewPostgresSource(logger) })
}

// PostgresSource reads the catalog tables from PostgreSQL. The "schema"
// option qualifies the table names.
type PostgresSource struct {
	logger *slog.Logger
}

// NewPostgresSource creates a PostgreSQL source. A nil logger discards output.
func NewPostgresSource(logger *slog.Logger) *PostgresSource {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PostgresSource{logger: logger}
}

// Read connects with cfg.DSN and reads the four tables.
func (s *PostgresSource) Read(ctx context.Context, cfg Config) (*Tables, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres source requires a dsn")
	}

	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	schema := cfg.Options["schema"]
	s.logger.Debug("reading catalog from postgres", slog.String("schema", schema))
	r := &sqlReader{db: db, schema: schema, logger: s.logger}
	return r.readAll(ctx)
}
