package compliance

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/govpilot/internal/starlark"
	"github.com/leapstack-labs/govpilot/pkg/core"
)

// Policy is a parsed retention policy file.
//
//	vars:
//	  finance_limit: 30
//	retention_rules:
//	  - id: RET10
//	    reason: Finance data retained > 30 days
//	    domain: finance
//	    max_days: 30
//	  - id: RET11
//	    reason: Unencrypted PII retained > 180 days
//	    when: dataset.has_pii and dataset.retention_days > 180
type Policy struct {
	Path           string
	Vars           map[string]any
	RetentionRules []PolicyRule
}

// PolicyRule is one retention rule from a policy file. A rule is either
// structural (Domain and/or Dataset with MaxDays) or a Starlark predicate
// (When).
type PolicyRule struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Reason      string `yaml:"reason"`
	Domain      string `yaml:"domain"`
	Dataset     string `yaml:"dataset"`
	MaxDays     *int   `yaml:"max_days"`
	When        string `yaml:"when"`

	// Line is the rule's position in the policy file.
	Line int `yaml:"-"`
}

// policyFile is the on-disk shape.
type policyFile struct {
	Vars           map[string]any `yaml:"vars"`
	RetentionRules yaml.Node      `yaml:"retention_rules"`
}

// LoadPolicy reads and validates a policy file.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy file: %w", err)
	}
	return ParsePolicy(data, path)
}

// ParsePolicy parses policy YAML. name is used in error messages.
func ParsePolicy(data []byte, name string) (*Policy, error) {
	var raw policyFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing policy file %s: %w", name, err)
	}

	p := &Policy{Path: name, Vars: raw.Vars}

	switch raw.RetentionRules.Kind {
	case 0:
		// no retention_rules key
	case yaml.SequenceNode:
		for _, item := range raw.RetentionRules.Content {
			var rule PolicyRule
			if err := item.Decode(&rule); err != nil {
				return nil, fmt.Errorf("%s:%d: %w", name, item.Line, err)
			}
			rule.Line = item.Line
			p.RetentionRules = append(p.RetentionRules, rule)
		}
	default:
		return nil, fmt.Errorf("%s:%d: retention_rules must be a list", name, raw.RetentionRules.Line)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks every rule. Starlark predicates are compiled, so syntax
// errors and undefined names fail here. They are also tried once on an empty
// dataset: a non-bool result fails, a runtime error does not, since it may
// only come from the empty fields.
func (p *Policy) Validate() error {
	var errs []error

	for name := range p.Vars {
		if starlark.IsReserved(name) {
			errs = append(errs, fmt.Errorf("%s: var %q shadows a builtin", p.Path, name))
		}
	}
	vars, err := starlark.VarsToStarlark(p.Vars)
	if err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", p.Path, err))
	}

	seen := make(map[string]bool)
	for _, rule := range DefaultRetentionRules() {
		seen[rule.ID] = true
	}

	for _, r := range p.RetentionRules {
		var fields []string
		if r.ID == "" {
			fields = append(fields, "id is required")
		} else if seen[r.ID] {
			fields = append(fields, fmt.Sprintf("id %s is already defined", r.ID))
		}
		seen[r.ID] = true

		if r.Reason == "" {
			fields = append(fields, "reason is required")
		}

		structural := r.Domain != "" || r.Dataset != "" || r.MaxDays != nil
		switch {
		case r.When != "" && structural:
			fields = append(fields, "when cannot be combined with domain, dataset or max_days")
		case r.When == "" && r.MaxDays == nil:
			fields = append(fields, "max_days or when is required")
		case r.MaxDays != nil && *r.MaxDays < 0:
			fields = append(fields, fmt.Sprintf("max_days must be >= 0 (got %d)", *r.MaxDays))
		}

		if r.When != "" && err == nil {
			ctx := starlark.NewContext(core.Dataset{}, "", starlark.WithVars(vars))
			if evalErr := ctx.CheckBool(r.When, p.Path, r.Line); evalErr != nil {
				fields = append(fields, evalErr.Error())
			}
		}

		if len(fields) > 0 {
			errs = append(errs, fmt.Errorf("%s:%d: retention rule %s: %s",
				p.Path, r.Line, r.ID, strings.Join(fields, ", ")))
		}
	}

	return errors.Join(errs...)
}

// retentionRules converts the policy's rules to engine rules. Predicates see
// env as the active environment name.
func (p *Policy) retentionRules(env string, pool *starlark.ThreadPool) []RetentionRule {
	opts := []starlark.ContextOption{starlark.WithThreadPool(pool)}
	if vars, err := starlark.VarsToStarlark(p.Vars); err == nil {
		opts = append(opts, starlark.WithVars(vars))
	}

	rules := make([]RetentionRule, 0, len(p.RetentionRules))
	for _, r := range p.RetentionRules {
		rule := RetentionRule{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			Reason:      r.Reason,
			Source:      p.Path,
		}
		if rule.Name == "" {
			rule.Name = strings.ToLower(r.ID)
		}

		if r.When != "" {
			rule.Match = whenMatcher(r, p.Path, env, opts)
			if rule.Description == "" {
				rule.Description = r.When
			}
		} else {
			rule.Match = structuralMatcher(r)
			if rule.Description == "" {
				rule.Description = describeStructural(r)
			}
		}
		rules = append(rules, rule)
	}
	return rules
}

func whenMatcher(r PolicyRule, file, env string, opts []starlark.ContextOption) func(core.Dataset) (bool, error) {
	return func(d core.Dataset) (bool, error) {
		return starlark.NewContext(d, env, opts...).EvalBool(r.When, file, r.Line)
	}
}

func structuralMatcher(r PolicyRule) func(core.Dataset) (bool, error) {
	limit := *r.MaxDays
	return maxDays(func(d core.Dataset) bool {
		return (r.Domain == "" || d.Domain == r.Domain) &&
			(r.Dataset == "" || d.Name == r.Dataset)
	}, limit)
}

func describeStructural(r PolicyRule) string {
	var scope []string
	if r.Domain != "" {
		scope = append(scope, "domain "+r.Domain)
	}
	if r.Dataset != "" {
		scope = append(scope, "dataset "+r.Dataset)
	}
	if len(scope) == 0 {
		scope = append(scope, "all datasets")
	}
	return fmt.Sprintf("%s may be retained for at most %d days", strings.Join(scope, ", "), *r.MaxDays)
}
