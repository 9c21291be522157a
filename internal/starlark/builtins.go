package starlark

import (
	"go.starlark.net/starlark"

	"github.com/leapstack-labs/govpilot/pkg/core"
)

// reserved global names that policy variables may not shadow.
var reserved = map[string]bool{
	"dataset": true,
	"env":     true,
}

// IsReserved reports whether name is a predeclared global.
func IsReserved(name string) bool {
	return reserved[name]
}

// EnvToStarlark converts the environment name to a Starlark value.
func EnvToStarlark(env string) starlark.Value {
	return starlark.String(env)
}

// Predeclared returns the builtin globals for predicate evaluation:
// dataset and env.
func Predeclared(d core.Dataset, env string) starlark.StringDict {
	return starlark.StringDict{
		"dataset": DatasetToStarlark(d),
		"env":     EnvToStarlark(env),
	}
}
