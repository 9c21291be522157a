package starlark

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/leapstack-labs/govpilot/pkg/core"
)

// ExecutionContext provides the globals for evaluating predicates against
// one dataset.
type ExecutionContext struct {
	// Dataset is exposed as the "dataset" global.
	Dataset core.Dataset

	// Env is the active environment name, exposed as "env".
	Env string

	// Vars are policy-level variables. Builtins win on conflict.
	Vars starlark.StringDict

	pool    *ThreadPool
	globals starlark.StringDict
}

// ContextOption is a functional option for configuring ExecutionContext.
type ContextOption func(*ExecutionContext)

// WithVars adds policy variables to the globals.
func WithVars(vars starlark.StringDict) ContextOption {
	return func(ctx *ExecutionContext) {
		ctx.Vars = vars
	}
}

// WithThreadPool evaluates on threads drawn from pool.
func WithThreadPool(pool *ThreadPool) ContextOption {
	return func(ctx *ExecutionContext) {
		ctx.pool = pool
	}
}

// NewContext creates an execution context for a dataset.
func NewContext(d core.Dataset, env string, opts ...ContextOption) *ExecutionContext {
	ctx := &ExecutionContext{
		Dataset: d,
		Env:     env,
	}
	for _, opt := range opts {
		opt(ctx)
	}
	ctx.buildGlobals()
	return ctx
}

func (ctx *ExecutionContext) buildGlobals() {
	ctx.globals = make(starlark.StringDict, len(ctx.Vars)+2)
	for name, v := range ctx.Vars {
		ctx.globals[name] = v
	}
	for name, v := range Predeclared(ctx.Dataset, ctx.Env) {
		ctx.globals[name] = v
	}
	ctx.globals.Freeze()
}

// Globals returns the combined globals dictionary.
func (ctx *ExecutionContext) Globals() starlark.StringDict {
	return ctx.globals
}

// EvalExpr evaluates a single Starlark expression and returns the result.
func (ctx *ExecutionContext) EvalExpr(expr string, filename string, line int) (starlark.Value, error) {
	thread := ctx.thread(filename)
	if ctx.pool != nil {
		defer ctx.pool.Put(thread)
	}

	result, err := starlark.Eval(thread, filename, expr, ctx.globals) //nolint:staticcheck // SA1019: will migrate to EvalOptions later
	if err != nil {
		return nil, &EvalError{
			File:    filename,
			Line:    line,
			Expr:    expr,
			Message: err.Error(),
		}
	}
	return result, nil
}

// EvalBool evaluates expr and requires a bool result. Truthy non-bool
// values such as `dataset.domain` are an error.
func (ctx *ExecutionContext) EvalBool(expr string, filename string, line int) (bool, error) {
	result, err := ctx.EvalExpr(expr, filename, line)
	if err != nil {
		return false, err
	}
	b, ok := result.(starlark.Bool)
	if !ok {
		return false, &EvalError{
			File:    filename,
			Line:    line,
			Expr:    expr,
			Message: fmt.Sprintf("expected bool, got %s", result.Type()),
		}
	}
	return bool(b), nil
}

// CheckBool compiles expr against the context globals and, when it evaluates
// without error, requires a bool result. Syntax errors and undefined names
// are reported. Runtime errors are not, since they depend on the dataset.
func (ctx *ExecutionContext) CheckBool(expr string, filename string, line int) error {
	if _, err := starlark.ExprFuncOptions(syntax.LegacyFileOptions(), filename, expr, ctx.globals); err != nil {
		return &EvalError{
			File:    filename,
			Line:    line,
			Expr:    expr,
			Message: err.Error(),
		}
	}

	result, err := ctx.EvalExpr(expr, filename, line)
	if err != nil {
		return nil
	}
	if _, ok := result.(starlark.Bool); !ok {
		return &EvalError{
			File:    filename,
			Line:    line,
			Expr:    expr,
			Message: fmt.Sprintf("expected bool, got %s", result.Type()),
		}
	}
	return nil
}

func (ctx *ExecutionContext) thread(name string) *starlark.Thread {
	if ctx.pool != nil {
		return ctx.pool.Get(name)
	}
	return newThread(name)
}

// EvalError represents an error during Starlark expression evaluation.
type EvalError struct {
	File    string
	Line    int
	Expr    string
	Message string
}

func (e *EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: error evaluating %q: %s", e.File, e.Line, e.Expr, e.Message)
	}
	return fmt.Sprintf("%s: error evaluating %q: %s", e.File, e.Expr, e.Message)
}
