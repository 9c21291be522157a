package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

func init() {
	Register(TypeCSV, func(logger *slog.Logger) Source { return NewCSVSource(logger) })
}

// CSVSource reads datasets.csv, columns.csv, lineage.csv and audits.csv from
// a data directory. The four files are read concurrently.
type CSVSource struct {
	logger *slog.Logger
}

// NewCSVSource creates a CSV source. A nil logger discards output.
func NewCSVSource(logger *slog.Logger) *CSVSource {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CSVSource{logger: logger}
}

// Read loads all four files. A missing file is an error.
func (s *CSVSource) Read(ctx context.Context, cfg Config) (*Tables, error) {
	dir := cfg.DataDir
	if dir == "" {
		dir = "."
	}

	tables := &Tables{}
	g, ctx := errgroup.WithContext(ctx)
	for _, t := range catalogTables {
		dst := tables.slot(t)
		path := filepath.Join(dir, t.file)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows, err := readCSVFile(path, t)
			if err != nil {
				return err
			}
			s.logger.Debug("read catalog file", "path", path, "rows", len(rows))
			*dst = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

// readCSVFile reads a headered CSV file into rows keyed by header name.
// Header names are matched case-insensitively and surrounding whitespace is
// ignored.
func readCSVFile(path string, t table) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", t.file, err)
	}
	defer func() { _ = f.Close() }()

	rows, err := readCSV(f, t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

func readCSV(r io.Reader, t table) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")))
	}
	if missing := missingColumns(header, t.required); len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", len(rows)+1, err)
		}
		if isBlank(record) {
			continue
		}
		row := make(Row, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = strings.TrimSpace(record[i])
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func missingColumns(header, required []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, r := range required {
		if !present[r] {
			missing = append(missing, r)
		}
	}
	return missing
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
