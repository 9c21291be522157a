package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/leapstack-labs/govpilot/pkg/core"
)

var dateType = reflect.TypeOf(core.Date{})

// dateHook decodes strings and timestamps into core.Date.
func dateHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != dateType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return core.ParseDate(v)
	case []byte:
		return core.ParseDate(string(v))
	case time.Time:
		return core.NewDate(v), nil
	}
	return data, nil
}

// strictIntHook rejects empty and non-integer strings for integer fields.
// Weak typing would otherwise read an empty cell as 0.
func strictIntHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
	default:
		return data, nil
	}

	s := strings.TrimSpace(data.(string))
	if s == "" {
		return nil, errors.New("value is empty")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%q is not an integer", s)
	}
	return n, nil
}

// strictBoolHook accepts the usual true/false spellings and rejects blanks.
func strictBoolHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Bool {
		return data, nil
	}
	v, err := core.ParseTriState(data.(string))
	if err != nil {
		return nil, err
	}
	b, known := v.Bool()
	if !known {
		return nil, fmt.Errorf("%q is not true or false", data)
	}
	return b, nil
}

// decodeRecord decodes one raw row into out.
func decodeRecord(row Row, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			normalizeHook,
			dateHook,
			strictIntHook,
			strictBoolHook,
		),
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]any(row))
}

// normalizeHook turns driver byte slices into strings.
func normalizeHook(from reflect.Type, _ reflect.Type, data any) (any, error) {
	if b, ok := data.([]byte); ok && from.Kind() == reflect.Slice {
		return string(b), nil
	}
	return data, nil
}

// decodeError flattens a mapstructure error into one field message per line.
func decodeError(kind, key string, row int, err error) *core.ValidationError {
	ve := &core.ValidationError{Kind: kind, Key: key, Row: row}
	for _, line := range strings.Split(err.Error(), "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "*"))
		if line == "" || strings.HasSuffix(line, ":") {
			continue
		}
		ve.Fields = append(ve.Fields, line)
	}
	return ve
}

// validatable is implemented by every core record type.
type validatable interface {
	Validate() error
}

// decodeRows decodes and validates rows of one table. Rows that fail are
// reported by 1-based position and left out of the result. positions holds
// the 1-based row of each decoded record.
func decodeRows[T validatable](kind string, rows []Row, keyOf func(Row) string) (out []T, positions []int, errs []error) {
	out = make([]T, 0, len(rows))
	for i, row := range rows {
		var rec T
		if err := decodeRecord(row, &rec); err != nil {
			errs = append(errs, decodeError(kind, keyOf(row), i+1, err))
			continue
		}
		if err := rec.Validate(); err != nil {
			errs = append(errs, core.WithRow(err, i+1))
			continue
		}
		out = append(out, rec)
		positions = append(positions, i+1)
	}
	return out, positions, errs
}

func field(row Row, name string) string {
	switch v := row[name].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []byte:
		return strings.TrimSpace(string(v))
	default:
		return fmt.Sprint(v)
	}
}

func keyFields(sep string, names ...string) func(Row) string {
	return func(row Row) string {
		var parts []string
		for _, n := range names {
			if v := field(row, n); v != "" {
				parts = append(parts, v)
			}
		}
		return strings.Join(parts, sep)
	}
}

// decodeTables converts raw tables into a catalog. Duplicate dataset names
// keep the first occurrence.
func decodeTables(t *Tables) (*core.Catalog, []error) {
	var errs []error

	datasets, rows, e := decodeRows[core.Dataset]("dataset", t.Datasets, keyFields("", "name"))
	errs = append(errs, e...)
	columns, _, e := decodeRows[core.Column]("column", t.Columns, keyFields(".", "dataset", "column"))
	errs = append(errs, e...)
	lineage, _, e := decodeRows[core.LineageEdge]("lineage edge", t.Lineage, keyFields(" -> ", "source", "target"))
	errs = append(errs, e...)
	audits, _, e := decodeRows[core.AuditRecord]("audit", t.Audits, keyFields("", "dataset"))
	errs = append(errs, e...)

	seen := make(map[string]bool, len(datasets))
	unique := datasets[:0]
	for i, d := range datasets {
		if seen[d.Name] {
			errs = append(errs, &core.ValidationError{
				Kind:   "dataset",
				Key:    d.Name,
				Row:    rows[i],
				Fields: []string{"name must be unique"},
			})
			continue
		}
		seen[d.Name] = true
		unique = append(unique, d)
	}

	return &core.Catalog{
		Datasets: unique,
		Columns:  columns,
		Lineage:  lineage,
		Audits:   audits,
	}, errs
}
