package compliance

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/govpilot/internal/starlark"
	"github.com/leapstack-labs/govpilot/pkg/core"
)

// unencryptedValues are the encryption field spellings that mean "none".
var unencryptedValues = map[string]bool{
	"":     true,
	"NONE": true,
	"NULL": true,
	"NA":   true,
}

// IsEncrypted reports whether an encryption field value denotes encryption.
// Comparison ignores case and surrounding whitespace.
func IsEncrypted(encryption string) bool {
	return !unencryptedValues[strings.ToUpper(strings.TrimSpace(encryption))]
}

// Engine evaluates catalog snapshots against a retention rule table.
// An Engine is immutable after construction and safe for concurrent use.
type Engine struct {
	rules  []RetentionRule
	policy *Policy
	env    string
	pool   *starlark.ThreadPool
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRules replaces the built-in rule table.
func WithRules(rules ...RetentionRule) Option {
	return func(e *Engine) {
		e.rules = append([]RetentionRule(nil), rules...)
	}
}

// WithPolicy appends a policy file's rules after the base table.
func WithPolicy(p *Policy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithEnvironment sets the environment name visible to policy predicates
// as `env`.
func WithEnvironment(env string) Option {
	return func(e *Engine) {
		e.env = env
	}
}

// WithLogger sets the logger for skipped-dataset warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an engine with the built-in rules followed by any policy
// rules.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		rules:  DefaultRetentionRules(),
		pool:   starlark.NewThreadPool(0),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.policy != nil {
		e.rules = append(e.rules, e.policy.retentionRules(e.env, e.pool)...)
	}
	return e
}

// Rules returns the rule table in evaluation order.
func (e *Engine) Rules() []RetentionRule {
	out := make([]RetentionRule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Retention applies the rule table to one dataset. The first matching rule
// decides the reason.
func (e *Engine) Retention(d core.Dataset) (violation bool, reason string, err error) {
	for _, rule := range e.rules {
		matched, err := rule.Match(d)
		if err != nil {
			return false, "", &RuleError{RuleID: rule.ID, Dataset: d.Name, Err: err}
		}
		if matched {
			return true, rule.Reason, nil
		}
	}
	return false, "", nil
}

// Evaluate produces one compliance record per valid dataset, in input order.
//
// Invalid datasets, repeated dataset names and datasets whose rule evaluation
// fails are skipped; the remaining records are still returned, along with a
// *core.BatchError that lists every skipped dataset. The first dataset with a
// given name wins, so records can be keyed by name. The column list is
// accepted for symmetry with the catalog and does not affect the verdict.
func (e *Engine) Evaluate(datasets []core.Dataset, _ []core.Column, audits []core.AuditRecord) ([]core.ComplianceRecord, error) {
	auditIndex := indexAudits(audits)
	records := make([]core.ComplianceRecord, 0, len(datasets))
	seen := make(map[string]bool, len(datasets))
	var errs []error

	for i, d := range datasets {
		if err := d.Validate(); err != nil {
			e.logger.Warn("skipping invalid dataset", "row", i+1, "error", err)
			errs = append(errs, core.WithRow(err, i+1))
			continue
		}
		if seen[d.Name] {
			e.logger.Warn("skipping duplicate dataset", "row", i+1, "dataset", d.Name)
			errs = append(errs, &core.ValidationError{
				Kind:   "dataset",
				Key:    d.Name,
				Row:    i + 1,
				Fields: []string{"name must be unique"},
			})
			continue
		}
		seen[d.Name] = true

		violation, reason, err := e.Retention(d)
		if err != nil {
			e.logger.Warn("skipping dataset after rule failure", "dataset", d.Name, "error", err)
			errs = append(errs, err)
			continue
		}

		rec := core.ComplianceRecord{
			Dataset:            d.Name,
			Domain:             d.Domain,
			HasPII:             d.HasPII,
			EncryptionRequired: d.HasPII,
			Encrypted:          IsEncrypted(d.Encryption),
			RetentionDays:      d.RetentionDays,
			RetentionViolation: violation,
			RetentionReason:    reason,
		}
		if audit, ok := auditIndex[d.Name]; ok {
			rec.GDPROK = core.TriStateOf(audit.GDPROK)
			rec.AuditRemarks = audit.Remarks
		}
		records = append(records, rec)
	}

	e.logger.Debug("compliance evaluated",
		"datasets", len(datasets),
		"records", len(records),
		"skipped", len(errs),
		"rules", len(e.rules))

	if len(errs) > 0 {
		return records, &core.BatchError{Errors: errs}
	}
	return records, nil
}

// Evaluate runs the built-in rule table. See Engine.Evaluate.
func Evaluate(datasets []core.Dataset, columns []core.Column, audits []core.AuditRecord) ([]core.ComplianceRecord, error) {
	return NewEngine().Evaluate(datasets, columns, audits)
}

// indexAudits keeps the first audit record per dataset in storage order.
func indexAudits(audits []core.AuditRecord) map[string]core.AuditRecord {
	index := make(map[string]core.AuditRecord, len(audits))
	for _, a := range audits {
		if _, seen := index[a.Dataset]; !seen {
			index[a.Dataset] = a
		}
	}
	return index
}

// RuleError reports a retention rule that failed to evaluate for a dataset.
type RuleError struct {
	RuleID  string
	Dataset string
	Err     error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s on dataset %q: %v", e.RuleID, e.Dataset, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}
