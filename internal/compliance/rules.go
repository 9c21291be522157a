package compliance

import (
	"github.com/leapstack-labs/govpilot/pkg/core"
)

// Rule sources.
const (
	SourceBuiltin = "builtin"
)

// RetentionRule flags datasets whose retention exceeds policy.
type RetentionRule struct {
	ID          string // e.g. "RET01"
	Name        string // e.g. "marketing-retention"
	Description string
	Reason      string // reported on the compliance record when the rule matches
	Source      string // "builtin" or the policy file path

	// Match reports whether the dataset violates this rule.
	Match func(d core.Dataset) (bool, error)
}

// DefaultRetentionRules returns the built-in rule table in evaluation order.
func DefaultRetentionRules() []RetentionRule {
	return []RetentionRule{
		{
			ID:          "RET01",
			Name:        "marketing-retention",
			Description: "Marketing datasets may be retained for at most 90 days",
			Reason:      "Marketing data retained > 90 days",
			Source:      SourceBuiltin,
			Match:       maxDays(func(d core.Dataset) bool { return d.Domain == "marketing" }, 90),
		},
		{
			ID:          "RET02",
			Name:        "customer-profiles-retention",
			Description: "The customer_profiles dataset may be retained for at most 365 days",
			Reason:      "Customer profiles retained > 365 days",
			Source:      SourceBuiltin,
			Match:       maxDays(func(d core.Dataset) bool { return d.Name == "customer_profiles" }, 365),
		},
	}
}

// maxDays matches datasets selected by applies whose retention is strictly
// greater than limit.
func maxDays(applies func(core.Dataset) bool, limit int) func(core.Dataset) (bool, error) {
	return func(d core.Dataset) (bool, error) {
		return applies(d) && d.RetentionDays > limit, nil
	}
}
