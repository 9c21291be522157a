package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/govpilot/internal/cli/output"
	"github.com/leapstack-labs/govpilot/pkg/core"
)

// NewDatasetsCommand creates the datasets command.
func NewDatasetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "List catalog datasets",
		Long: `List every dataset in the catalog with its owner, domain, PII flag,
encryption and retention settings.

Output adapts to environment:
  - Terminal: Styled table
  - Piped/Scripted: Markdown table
  - JSON: Machine-readable format`,
		Example: `  # Overview of the catalog
  govpilot datasets

  # As JSON
  govpilot datasets -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDatasets(cmd)
		},
	}
	return cmd
}

func runDatasets(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	cat, err := cmdCtx.LoadCatalog(cmd)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(cat.Datasets)
	}

	r.Header(1, fmt.Sprintf("Datasets (%d total)", len(cat.Datasets)))
	return r.Table(datasetTable(cat.Datasets))
}

func datasetTable(datasets []core.Dataset) *output.Table {
	t := output.NewTable("name", "system", "owner", "domain", "has_pii", "encryption", "retention_days", "last_audit_date")
	for _, d := range datasets {
		t.AddRow(d.Name, d.System, d.Owner, d.Domain, output.YesNo(d.HasPII), d.Encryption, d.RetentionDays, d.LastAuditDate.String())
	}
	return t
}
