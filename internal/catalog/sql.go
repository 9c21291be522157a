package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

// sqlReader reads catalog tables through database/sql. It is shared by the
// sqlite, duckdb and postgres sources.
type sqlReader struct {
	db      *sql.DB
	schema  string // optional table qualifier
	orderBy string // optional ORDER BY column; storage order otherwise
	logger  *slog.Logger
}

// readAll reads the four catalog tables.
func (r *sqlReader) readAll(ctx context.Context) (*Tables, error) {
	tables := &Tables{}
	for _, t := range catalogTables {
		rows, err := r.readTable(ctx, t)
		if err != nil {
			return nil, err
		}
		*tables.slot(t) = rows
	}
	return tables, nil
}

// query builds the SELECT for a table. Identifiers are quoted because
// "column" is a reserved word.
func (r *sqlReader) query(t table) string {
	cols := make([]string, len(t.columns))
	for i, c := range t.columns {
		cols[i] = quoteIdent(c)
	}
	from := quoteIdent(t.name)
	if r.schema != "" {
		from = quoteIdent(r.schema) + "." + from
	}
	q := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), from)
	if r.orderBy != "" {
		q += " ORDER BY " + quoteIdent(r.orderBy)
	}
	return q
}

func (r *sqlReader) readTable(ctx context.Context, t table) ([]Row, error) {
	query := r.query(t)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", t.name, err)
	}
	defer func() { _ = rows.Close() }()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s columns: %w", t.name, err)
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan %s row %d: %w", t.name, len(out)+1, err)
		}

		row := make(Row, len(names))
		for i, name := range names {
			row[strings.ToLower(name)] = normalizeValue(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", t.name, err)
	}

	r.logger.Debug("read catalog table", "table", t.name, "rows", len(out))
	return out, nil
}

// normalizeValue maps driver values onto the types the decoder expects:
// NULL becomes the empty string and byte slices become strings.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	default:
		return val
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
