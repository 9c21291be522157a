// Package starlark evaluates retention policy predicates written as Starlark
// expressions against a dataset.
package starlark

import (
	"fmt"
	"sort"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/leapstack-labs/govpilot/pkg/core"
)

// DatasetToStarlark converts a dataset to a Starlark struct value.
// Exposed as the "dataset" global: dataset.domain, dataset.retention_days, etc.
// An unset last_audit_date is the empty string.
func DatasetToStarlark(d core.Dataset) starlark.Value {
	return starlarkstruct.FromStringDict(starlark.String("dataset"), starlark.StringDict{
		"name":            starlark.String(d.Name),
		"system":          starlark.String(d.System),
		"owner":           starlark.String(d.Owner),
		"domain":          starlark.String(d.Domain),
		"has_pii":         starlark.Bool(d.HasPII),
		"encryption":      starlark.String(d.Encryption),
		"retention_days":  starlark.MakeInt(d.RetentionDays),
		"last_audit_date": starlark.String(d.LastAuditDate.String()),
	})
}

// GoToStarlark converts a Go value to a Starlark value.
// Supported types: string, int, int64, float64, bool, []string, []any, map[string]any
func GoToStarlark(v any) (starlark.Value, error) {
	if v == nil {
		return starlark.None, nil
	}

	switch val := v.(type) {
	case string:
		return starlark.String(val), nil

	case int:
		return starlark.MakeInt(val), nil

	case int64:
		return starlark.MakeInt64(val), nil

	case float64:
		return starlark.Float(val), nil

	case bool:
		return starlark.Bool(val), nil

	case []string:
		list := make([]starlark.Value, len(val))
		for i, s := range val {
			list[i] = starlark.String(s)
		}
		return starlark.NewList(list), nil

	case []any:
		list := make([]starlark.Value, len(val))
		for i, item := range val {
			sv, err := GoToStarlark(item)
			if err != nil {
				return nil, fmt.Errorf("list index %d: %w", i, err)
			}
			list[i] = sv
		}
		return starlark.NewList(list), nil

	case map[string]any:
		// Sorted so the dict's iteration order does not depend on map order.
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		dict := starlark.NewDict(len(val))
		for _, k := range keys {
			sv, err := GoToStarlark(val[k])
			if err != nil {
				return nil, fmt.Errorf("dict key %q: %w", k, err)
			}
			if err := dict.SetKey(starlark.String(k), sv); err != nil {
				return nil, fmt.Errorf("dict setkey %q: %w", k, err)
			}
		}
		return dict, nil

	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// VarsToStarlark converts policy variables to globals.
func VarsToStarlark(vars map[string]any) (starlark.StringDict, error) {
	out := make(starlark.StringDict, len(vars))
	for name, v := range vars {
		sv, err := GoToStarlark(v)
		if err != nil {
			return nil, fmt.Errorf("var %q: %w", name, err)
		}
		sv.Freeze()
		out[name] = sv
	}
	return out, nil
}
