package commands

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/govpilot/internal/catalog"
	"github.com/leapstack-labs/govpilot/internal/cli/output"
	"github.com/leapstack-labs/govpilot/internal/compliance"
	"github.com/leapstack-labs/govpilot/pkg/core"
)

// ReportOptions holds options for the report command.
type ReportOptions struct {
	Export string // CSV file to write
	Watch  bool   // re-render on catalog changes
}

// ReportOutput is the JSON output of the report and violations commands.
type ReportOutput struct {
	Records []core.ComplianceRecord `json:"records"`
	Summary compliance.Summary      `json:"summary"`
}

// NewReportCommand creates the report command.
func NewReportCommand() *cobra.Command {
	opts := &ReportOptions{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the compliance report for every dataset",
		Long: `Evaluate every dataset against the encryption, retention and GDPR
audit checks and print one row per dataset.

Retention rules are the built-in table followed by the rules of the policy
file, if one is configured. The first matching rule sets the reason.

With --watch the report is re-rendered whenever a catalog CSV file changes.`,
		Example: `  # Full report
  govpilot report

  # Write the report to a CSV file
  govpilot report --export compliance.csv

  # Keep the report up to date while editing the catalog
  govpilot report --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Export, "export", "", "Also write the report to this CSV file")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-render when catalog files change")

	return cmd
}

func runReport(cmd *cobra.Command, opts *ReportOptions) error {
	cmdCtx := NewCommandContext(cmd)

	if err := renderReport(cmd, cmdCtx, opts); err != nil {
		return err
	}
	if !opts.Watch {
		return nil
	}

	cc := cmdCtx.Cfg.CatalogConfig()
	if cc.Type != catalog.TypeCSV && (cc.Type != catalog.TypeDuckDB || cc.Path != "") {
		return fmt.Errorf("--watch requires a catalog read from CSV files (source is %s)", cc.Type)
	}

	r := cmdCtx.Renderer
	r.Muted(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", cmdCtx.Cfg.DataDir))
	return catalog.Watch(cmd.Context(), cmdCtx.Cfg.DataDir, func(changed string) {
		r.Muted(fmt.Sprintf("%s changed, re-evaluating", changed))
		if err := renderReport(cmd, cmdCtx, opts); err != nil {
			r.Error(err.Error())
		}
	}, cmdCtx.Logger)
}

func renderReport(cmd *cobra.Command, cmdCtx *CommandContext, opts *ReportOptions) error {
	r := cmdCtx.Renderer

	records, err := cmdCtx.Evaluate(cmd)
	if err != nil {
		return err
	}
	summary := compliance.Summarize(records)

	if opts.Export != "" {
		if err := exportReport(opts.Export, records); err != nil {
			return err
		}
		cmdCtx.Logger.Debug("report exported", "path", opts.Export, "records", len(records))
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(ReportOutput{Records: records, Summary: summary})
	}

	r.Header(1, fmt.Sprintf("Compliance Report (%d datasets)", len(records)))
	if err := r.Table(reportTable(records)); err != nil {
		return err
	}
	renderSummary(r, summary)
	if opts.Export != "" {
		r.Success(fmt.Sprintf("Exported %d records to %s", len(records), opts.Export))
	}
	return nil
}

func reportTable(records []core.ComplianceRecord) *output.Table {
	t := output.NewTable(core.ComplianceColumns...)
	for _, rec := range records {
		values := rec.Values()
		row := make([]any, len(values))
		for i, v := range values {
			row[i] = v
		}
		t.AddRow(row...)
	}
	return t
}

func renderSummary(r *output.Renderer, s compliance.Summary) {
	r.Header(2, "Summary")
	lines := [][2]string{
		{"Datasets", fmt.Sprint(s.Datasets)},
		{"Violations", fmt.Sprint(s.Violations)},
		{"Unencrypted PII", fmt.Sprint(s.UnencryptedPII)},
		{"Retention violations", fmt.Sprint(s.RetentionViolation)},
		{"GDPR audits failed", fmt.Sprint(s.GDPRFailed)},
		{"GDPR audits missing", fmt.Sprint(s.GDPRUnknown)},
	}
	for _, l := range lines {
		if r.EffectiveMode() == output.ModeMarkdown {
			r.Println(output.FormatKeyValue(l[0], l[1]))
			continue
		}
		r.Printf("  %-22s %s\n", l[0]+":", l[1])
	}
}

// exportReport writes records as RFC 4180 CSV with a header row.
func exportReport(path string, records []core.ComplianceRecord) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	f, err := os.Create(path) //nolint:gosec // user-supplied output path
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	w := csv.NewWriter(f)
	_ = w.Write(core.ComplianceColumns)
	for _, rec := range records {
		_ = w.Write(rec.Values())
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return f.Close()
}
