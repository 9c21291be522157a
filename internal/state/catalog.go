package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/leapstack-labs/govpilot/pkg/core"
)

// ErrNoImport is returned by LastImport when nothing has been imported.
var ErrNoImport = errors.New("no catalog has been imported")

// Counts holds the number of rows per catalog table.
type Counts struct {
	Datasets int `json:"datasets"`
	Columns  int `json:"columns"`
	Lineage  int `json:"lineage"`
	Audits   int `json:"audits"`
}

// Import describes one ImportCatalog call.
type Import struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	ImportedAt time.Time `json:"imported_at"`
	Counts     Counts    `json:"counts"`
}

// ImportCatalog replaces the stored catalog with cat. The catalog must be
// valid; nothing is written otherwise. source describes where cat came from
// and is kept with the import record.
func (s *SQLiteStore) ImportCatalog(ctx context.Context, cat *core.Catalog, source string) (*Import, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if cat == nil {
		return nil, fmt.Errorf("catalog is nil")
	}
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to import invalid catalog: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"datasets", "columns", "lineage", "audits"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return nil, fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err := insertDatasets(ctx, tx, cat.Datasets); err != nil {
		return nil, err
	}
	if err := insertColumns(ctx, tx, cat.Columns); err != nil {
		return nil, err
	}
	if err := insertLineage(ctx, tx, cat.Lineage); err != nil {
		return nil, err
	}
	if err := insertAudits(ctx, tx, cat.Audits); err != nil {
		return nil, err
	}

	imp := &Import{
		ID:         generateID(),
		Source:     source,
		ImportedAt: time.Now().UTC(),
		Counts: Counts{
			Datasets: len(cat.Datasets),
			Columns:  len(cat.Columns),
			Lineage:  len(cat.Lineage),
			Audits:   len(cat.Audits),
		},
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO imports (id, source, imported_at, datasets, columns, lineage, audits)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		imp.ID, imp.Source, imp.ImportedAt,
		imp.Counts.Datasets, imp.Counts.Columns, imp.Counts.Lineage, imp.Counts.Audits,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}
	return imp, nil
}

func insertDatasets(ctx context.Context, tx *sql.Tx, datasets []core.Dataset) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO datasets (position, name, system, owner, domain, has_pii, encryption, retention_days, last_audit_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare dataset insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, d := range datasets {
		_, err := stmt.ExecContext(ctx, i+1, d.Name, d.System, d.Owner, d.Domain,
			boolToInt(d.HasPII), d.Encryption, d.RetentionDays, d.LastAuditDate.String())
		if err != nil {
			return fmt.Errorf("failed to insert dataset %s: %w", d.Name, err)
		}
	}
	return nil
}

func insertColumns(ctx context.Context, tx *sql.Tx, columns []core.Column) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO columns (position, dataset, "column", pii_type) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare column insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, c := range columns {
		if _, err := stmt.ExecContext(ctx, i+1, c.Dataset, c.Name, c.PIIType); err != nil {
			return fmt.Errorf("failed to insert column %s.%s: %w", c.Dataset, c.Name, err)
		}
	}
	return nil
}

func insertLineage(ctx context.Context, tx *sql.Tx, edges []core.LineageEdge) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO lineage (id, position, source, target, transformation) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare lineage insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, e := range edges {
		if _, err := stmt.ExecContext(ctx, generateID(), i+1, e.Source, e.Target, e.Transformation); err != nil {
			return fmt.Errorf("failed to insert lineage edge %s -> %s: %w", e.Source, e.Target, err)
		}
	}
	return nil
}

func insertAudits(ctx context.Context, tx *sql.Tx, audits []core.AuditRecord) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO audits (position, dataset, gdpr_ok, remarks) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare audit insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, a := range audits {
		if _, err := stmt.ExecContext(ctx, i+1, a.Dataset, boolToInt(a.GDPROK), a.Remarks); err != nil {
			return fmt.Errorf("failed to insert audit %s: %w", a.Dataset, err)
		}
	}
	return nil
}

// Counts returns the number of stored rows per table.
func (s *SQLiteStore) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	if s.db == nil {
		return c, fmt.Errorf("database not opened")
	}
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM datasets),
			(SELECT COUNT(*) FROM columns),
			(SELECT COUNT(*) FROM lineage),
			(SELECT COUNT(*) FROM audits)`,
	).Scan(&c.Datasets, &c.Columns, &c.Lineage, &c.Audits)
	if err != nil {
		return c, fmt.Errorf("failed to count catalog rows: %w", err)
	}
	return c, nil
}

// LastImport returns the most recent import record.
func (s *SQLiteStore) LastImport(ctx context.Context) (*Import, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	imp := &Import{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, source, imported_at, datasets, columns, lineage, audits
		 FROM imports ORDER BY imported_at DESC, rowid DESC LIMIT 1`,
	).Scan(&imp.ID, &imp.Source, &imp.ImportedAt,
		&imp.Counts.Datasets, &imp.Counts.Columns, &imp.Counts.Lineage, &imp.Counts.Audits)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoImport
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last import: %w", err)
	}
	return imp, nil
}
