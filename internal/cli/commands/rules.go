package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/govpilot/internal/cli/output"
	"github.com/leapstack-labs/govpilot/internal/compliance"
)

// RuleInfo is the JSON form of a retention rule.
type RuleInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Reason      string `json:"reason"`
	Source      string `json:"source"`
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules [rule-id]",
		Short: "List retention rules in evaluation order",
		Long: `List the retention rule table: the built-in rules followed by the rules
of the configured policy file. Rules are evaluated in this order and the
first match decides a dataset's retention reason.`,
		Example: `  # List all rules
  govpilot rules

  # Show one rule
  govpilot rules RET01

  # Include rules from a policy file
  govpilot rules --policy policy.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ruleID := ""
			if len(args) == 1 {
				ruleID = args[0]
			}
			return runRules(cmd, ruleID)
		},
	}
	return cmd
}

func runRules(cmd *cobra.Command, ruleID string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	eng, err := cmdCtx.Engine()
	if err != nil {
		return err
	}

	rules := make([]RuleInfo, 0)
	for _, rule := range eng.Rules() {
		if ruleID != "" && rule.ID != ruleID {
			continue
		}
		rules = append(rules, RuleInfo{
			ID:          rule.ID,
			Name:        rule.Name,
			Description: rule.Description,
			Reason:      rule.Reason,
			Source:      rule.Source,
		})
	}
	if ruleID != "" && len(rules) == 0 {
		return fmt.Errorf("rule %q not found", ruleID)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(rules)
	case output.ModeMarkdown:
		return listRulesMarkdown(r, rules)
	default:
		return listRulesText(r, rules)
	}
}

func listRulesText(r *output.Renderer, rules []RuleInfo) error {
	styles := r.Styles()
	r.Header(1, fmt.Sprintf("Retention Rules (%d)", len(rules)))
	for _, rule := range rules {
		r.Printf("  %s  %s\n", styles.Bold.Render(rule.ID), rule.Name)
		r.Printf("      %s\n", rule.Description)
		r.Println(styles.Muted.Render(fmt.Sprintf("      reason: %s  source: %s", rule.Reason, sourceLabel(rule.Source))))
		r.Println("")
	}
	return nil
}

func listRulesMarkdown(r *output.Renderer, rules []RuleInfo) error {
	r.Println(output.FormatHeader(1, fmt.Sprintf("Retention Rules (%d)", len(rules))))
	r.Println("")
	t := output.NewTable("id", "name", "description", "reason", "source")
	for _, rule := range rules {
		t.AddRow(rule.ID, rule.Name, rule.Description, rule.Reason, sourceLabel(rule.Source))
	}
	return r.Table(t)
}

func sourceLabel(source string) string {
	if source == compliance.SourceBuiltin {
		return "built-in"
	}
	return source
}
