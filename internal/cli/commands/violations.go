package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/govpilot/internal/cli/output"
	"github.com/leapstack-labs/govpilot/internal/compliance"
)

// NewViolationsCommand creates the violations command.
func NewViolationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "violations",
		Short: "List datasets that fail a compliance check",
		Long: `List datasets with unencrypted PII, a retention violation, or a GDPR
audit that failed or is missing.`,
		Example: `  govpilot violations
  govpilot violations -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runViolations(cmd)
		},
	}
	return cmd
}

func runViolations(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	records, err := cmdCtx.Evaluate(cmd)
	if err != nil {
		return err
	}
	violations := compliance.Violations(records)

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(ReportOutput{Records: violations, Summary: compliance.Summarize(records)})
	}

	r.Header(1, fmt.Sprintf("Violations (%d of %d datasets)", len(violations), len(records)))
	if len(violations) == 0 {
		r.Success("All datasets are compliant")
		return nil
	}

	t := output.NewTable("dataset", "domain", "findings")
	for _, rec := range violations {
		t.AddRow(rec.Dataset, rec.Domain, strings.Join(compliance.Findings(rec), "; "))
	}
	return r.Table(t)
}
