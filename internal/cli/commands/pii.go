package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/govpilot/internal/cli/output"
	"github.com/leapstack-labs/govpilot/internal/compliance"
)

// NewPIICommand creates the pii command.
func NewPIICommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pii [dataset]",
		Short: "Show PII datasets stored without encryption",
		Long: `Without arguments, list datasets that carry PII but are not encrypted.

With a dataset name, list that dataset's columns classified as PII.`,
		Example: `  # Unencrypted PII datasets
  govpilot pii

  # PII columns of one dataset
  govpilot pii customer_profiles`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runPIIColumns(cmd, args[0])
			}
			return runUnencryptedPII(cmd)
		},
	}
	return cmd
}

func runUnencryptedPII(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	cat, err := cmdCtx.LoadCatalog(cmd)
	if err != nil {
		return err
	}
	exposed := compliance.UnencryptedPII(cat.Datasets)

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(exposed)
	}

	r.Header(1, fmt.Sprintf("Unencrypted PII (%d datasets)", len(exposed)))
	if len(exposed) == 0 {
		r.Success("Every PII dataset is encrypted")
		return nil
	}
	t := output.NewTable("name", "system", "owner", "domain", "encryption", "retention_days")
	for _, d := range exposed {
		t.AddRow(d.Name, d.System, d.Owner, d.Domain, d.Encryption, d.RetentionDays)
	}
	return r.Table(t)
}

func runPIIColumns(cmd *cobra.Command, dataset string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	cat, err := cmdCtx.LoadCatalog(cmd)
	if err != nil {
		return err
	}
	if _, ok := cat.Dataset(dataset); !ok {
		return fmt.Errorf("dataset %q not found", dataset)
	}
	columns := compliance.PIIColumns(cat.Columns, dataset)

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(columns)
	}

	r.Header(1, fmt.Sprintf("PII columns of %s", dataset))
	if len(columns) == 0 {
		r.Muted("No PII columns")
		return nil
	}
	t := output.NewTable("column", "pii_type")
	for _, c := range columns {
		t.AddRow(c.Name, c.PIIType)
	}
	return r.Table(t)
}
