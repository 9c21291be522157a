package catalog

import (
	"context"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLReader_Query(t *testing.T) {
	tests := []struct {
		name    string
		reader  sqlReader
		table   table
		wantSQL string
	}{
		{
			name:    "storage order",
			table:   columnsTable,
			wantSQL: `SELECT "dataset", "column", "pii_type" FROM "columns"`,
		},
		{
			name:    "schema and order",
			reader:  sqlReader{schema: "gov", orderBy: "position"},
			table:   lineageTable,
			wantSQL: `SELECT "source", "target", "transformation" FROM "gov"."lineage" ORDER BY "position"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantSQL, tt.reader.query(tt.table))
		})
	}
}

func TestSQLReader_ReadAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	audited := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "datasets" ORDER BY "position"`)).
		WillReturnRows(sqlmock.NewRows(datasetsTable.columns).
			AddRow("raw_events", "kafka", "platform", "analytics", false, nil, int64(30), audited).
			AddRow([]byte("customer_profiles"), "pg", "crm", "crm", true, "AES256", int64(400), nil))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "columns"`)).
		WillReturnRows(sqlmock.NewRows(columnsTable.columns).
			AddRow("customer_profiles", "email", "email"))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "lineage"`)).
		WillReturnRows(sqlmock.NewRows(lineageTable.columns).
			AddRow("raw_events", "customer_profiles", nil))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "audits"`)).
		WillReturnRows(sqlmock.NewRows([]string{"DATASET", "GDPR_OK", "REMARKS"}).
			AddRow("raw_events", true, "ok"))

	r := &sqlReader{db: db, orderBy: "position", logger: slog.New(slog.DiscardHandler)}
	tables, err := r.readAll(context.Background())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, tables.Datasets, 2)
	assert.Equal(t, "", tables.Datasets[0]["encryption"], "NULL becomes empty string")
	assert.Equal(t, "customer_profiles", tables.Datasets[1]["name"], "bytes become string")
	assert.Equal(t, "ok", tables.Audits[0]["remarks"], "column names are lower-cased")

	cat, errs := decodeTables(tables)
	require.Empty(t, errs)
	assert.Equal(t, "2024-03-01", cat.Datasets[0].LastAuditDate.String())
	assert.True(t, cat.Datasets[1].LastAuditDate.IsZero())
	assert.Equal(t, 400, cat.Datasets[1].RetentionDays)
	assert.True(t, cat.Audits[0].GDPROK)
}

func TestSQLReader_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT").WillReturnError(assert.AnError)

	r := &sqlReader{db: db, logger: slog.New(slog.DiscardHandler)}
	_, err = r.readAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query datasets")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestSQLReader_RowError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT").WillReturnRows(
		sqlmock.NewRows(datasetsTable.columns).
			AddRow("a", "", "", "", false, "", int64(1), nil).
			RowError(0, assert.AnError))

	r := &sqlReader{db: db, logger: slog.New(slog.DiscardHandler)}
	_, err = r.readTable(context.Background(), datasetsTable)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error iterating datasets")
}

func TestSQLiteSource_RequiresPath(t *testing.T) {
	_, err := NewSQLiteSource(nil).Read(context.Background(), Config{})
	assert.EqualError(t, err, "sqlite source requires a database path")

	_, err = NewSQLiteSource(nil).Read(context.Background(), Config{Path: t.TempDir() + "/missing.db"})
	assert.ErrorContains(t, err, "opening state database")
}

func TestPostgresSource_RequiresDSN(t *testing.T) {
	_, err := NewPostgresSource(nil).Read(context.Background(), Config{})
	assert.EqualError(t, err, "postgres source requires a dsn")
}
