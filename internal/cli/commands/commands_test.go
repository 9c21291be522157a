package commands

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/govpilot/internal/cli/config"
	"github.com/leapstack-labs/govpilot/internal/cli/testutil"
	"github.com/leapstack-labs/govpilot/pkg/core"
)

// loadProject loads the config of a fresh sample project and returns its path.
func loadProject(t *testing.T) string {
	t.Helper()
	cfgPath := testutil.SetupTestProject(t)
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)
	_, err := config.LoadConfig(cfgPath, nil)
	require.NoError(t, err)
	return cfgPath
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func setOutput(t *testing.T, format string) {
	t.Helper()
	config.GetCurrentConfig().OutputFormat = format
}

func TestReportCommand_Markdown(t *testing.T) {
	loadProject(t)

	stdout, _, err := execute(t, NewReportCommand())
	require.NoError(t, err)

	testutil.AssertNoANSI(t, stdout)
	testutil.AssertValidMarkdown(t, stdout)
	assert.Contains(t, stdout, "# Compliance Report (3 datasets)")
	assert.Contains(t, stdout, "| Dataset | Domain | Has PII |")
	assert.Contains(t, stdout, "Marketing data retained > 90 days")
	assert.Contains(t, stdout, "Customer profiles retained > 365 days")
	assert.Contains(t, stdout, "- **Violations:** 2")
}

func TestReportCommand_JSON(t *testing.T) {
	loadProject(t)
	setOutput(t, "json")

	stdout, _, err := execute(t, NewReportCommand())
	require.NoError(t, err)

	var got ReportOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.Len(t, got.Records, 3)

	byName := make(map[string]core.ComplianceRecord)
	for _, rec := range got.Records {
		byName[rec.Dataset] = rec
	}

	assert.Equal(t, core.True, byName["raw_events"].GDPROK)
	assert.False(t, byName["raw_events"].RetentionViolation)

	assert.True(t, byName["customer_profiles"].Encrypted)
	assert.Equal(t, core.False, byName["customer_profiles"].GDPROK)
	assert.Equal(t, "retention too long", byName["customer_profiles"].AuditRemarks)

	assert.False(t, byName["marketing_segments"].Encrypted)
	assert.True(t, byName["marketing_segments"].EncryptionRequired)
	assert.Equal(t, core.Unknown, byName["marketing_segments"].GDPROK)

	assert.Equal(t, 3, got.Summary.Datasets)
	assert.Equal(t, 2, got.Summary.Violations)
	assert.Equal(t, 1, got.Summary.UnencryptedPII)
	assert.Equal(t, 2, got.Summary.RetentionViolation)
	assert.Equal(t, 1, got.Summary.GDPRFailed)
	assert.Equal(t, 1, got.Summary.GDPRUnknown)
}

func TestReportCommand_Export(t *testing.T) {
	loadProject(t)
	exportPath := filepath.Join(t.TempDir(), "out", "report.csv")

	stdout, _, err := execute(t, NewReportCommand(), "--export", exportPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Exported 3 records to "+exportPath)

	f, err := os.Open(exportPath)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, core.ComplianceColumns, rows[0])

	// The reason contains '>' and a space; it must survive unescaped.
	var reasons []string
	for _, row := range rows[1:] {
		require.Len(t, row, len(core.ComplianceColumns))
		reasons = append(reasons, row[7])
	}
	assert.Contains(t, reasons, "Marketing data retained > 90 days")
	assert.Equal(t, "unknown", rows[3][8])
}

func TestReportCommand_WatchRequiresCSV(t *testing.T) {
	loadProject(t)
	_, _, err := execute(t, NewSeedCommand())
	require.NoError(t, err)

	cfg := config.GetCurrentConfig()
	cfg.Source = &config.SourceConfig{Type: "sqlite", Path: cfg.StatePath}

	stdout, _, err := execute(t, NewReportCommand(), "--watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--watch requires a catalog read from CSV files")
	assert.Contains(t, stdout, "Compliance Report (3 datasets)")
}

func TestViolationsCommand(t *testing.T) {
	loadProject(t)

	stdout, _, err := execute(t, NewViolationsCommand())
	require.NoError(t, err)

	assert.Contains(t, stdout, "Violations (2 of 3 datasets)")
	assert.Contains(t, stdout, "PII stored without encryption; Marketing data retained > 90 days; no GDPR audit on record")
	assert.Contains(t, stdout, "Customer profiles retained > 365 days; GDPR audit failed")
	assert.NotContains(t, stdout, "raw_events")
}

func TestViolationsCommand_AllCompliant(t *testing.T) {
	cfgPath := loadProject(t)
	dataDir := filepath.Join(filepath.Dir(cfgPath), "data")
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "datasets.csv"), []byte(
		"name,system,owner,domain,has_pii,encryption,retention_days,last_audit_date\n"+
			"raw_events,kafka,platform,analytics,False,none,30,2024-01-15\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "lineage.csv"), []byte("source,target,transformation\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "columns.csv"), []byte("dataset,column,pii_type\n"), 0o644))

	stdout, _, err := execute(t, NewViolationsCommand())
	require.NoError(t, err)
	assert.Contains(t, stdout, "All datasets are compliant")
}

func TestLineageCommand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains []string
	}{
		{
			name:     "chain",
			args:     []string{"marketing_segments"},
			contains: []string{
				"- `raw_events -> customer_profiles -> marketing_segments`",
				"  - raw_events -> customer_profiles: dedupe",
				"  - customer_profiles -> marketing_segments: segment",
				"- **Upstream sources:** raw_events, customer_profiles",
			},
		},
		{
			name:     "root",
			args:     []string{"raw_events"},
			contains: []string{"No upstream lineage paths found for raw_events."},
		},
		{
			name:     "unknown",
			args:     []string{"nope"},
			contains: []string{"No lineage info for nope."},
		},
		{
			name:     "downstream",
			args:     []string{"raw_events", "--downstream"},
			contains: []string{"- **Downstream:** customer_profiles, marketing_segments"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loadProject(t)
			stdout, _, err := execute(t, NewLineageCommand(), tt.args...)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, stdout, want)
			}
		})
	}
}

func TestLineageCommand_JSON(t *testing.T) {
	loadProject(t)
	setOutput(t, "json")

	stdout, _, err := execute(t, NewLineageCommand(), "marketing_segments", "--max-paths", "1")
	require.NoError(t, err)

	var got struct {
		Target string     `json:"target"`
		Found  bool       `json:"found"`
		Paths  [][]string `json:"paths"`
		Hops   [][]struct {
			Source          string   `json:"source"`
			Target          string   `json:"target"`
			Transformations []string `json:"transformations"`
		} `json:"hops"`
		Sources []string `json:"sources"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "marketing_segments", got.Target)
	assert.True(t, got.Found)
	assert.Equal(t, [][]string{{"raw_events", "customer_profiles", "marketing_segments"}}, got.Paths)
	assert.Equal(t, []string{"raw_events"}, got.Sources)

	require.Len(t, got.Hops, 1)
	require.Len(t, got.Hops[0], 2)
	assert.Equal(t, "raw_events", got.Hops[0][0].Source)
	assert.Equal(t, "customer_profiles", got.Hops[0][0].Target)
	assert.Equal(t, []string{"dedupe"}, got.Hops[0][0].Transformations)
	assert.Equal(t, []string{"segment"}, got.Hops[0][1].Transformations)
}

func TestLineageCommand_JSONNoPaths(t *testing.T) {
	loadProject(t)
	setOutput(t, "json")

	stdout, _, err := execute(t, NewLineageCommand(), "raw_events")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"hops": []`)
	assert.Contains(t, stdout, `"sources": []`)
}

func TestLineageCommand_NegativeMaxPaths(t *testing.T) {
	loadProject(t)
	_, _, err := execute(t, NewLineageCommand(), "raw_events", "--max-paths", "-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--max-paths must be >= 0")
}

func TestPIICommand(t *testing.T) {
	t.Run("unencrypted", func(t *testing.T) {
		loadProject(t)
		stdout, _, err := execute(t, NewPIICommand())
		require.NoError(t, err)
		assert.Contains(t, stdout, "marketing_segments")
		assert.NotContains(t, stdout, "customer_profiles")
	})

	t.Run("columns", func(t *testing.T) {
		loadProject(t)
		stdout, _, err := execute(t, NewPIICommand(), "customer_profiles")
		require.NoError(t, err)
		assert.Contains(t, stdout, "email")
		assert.Contains(t, stdout, "phone")
		assert.NotContains(t, stdout, "customer_id")
	})

	t.Run("unknown dataset", func(t *testing.T) {
		loadProject(t)
		_, _, err := execute(t, NewPIICommand(), "nope")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `dataset "nope" not found`)
	})
}

func TestDatasetsCommand(t *testing.T) {
	loadProject(t)
	setOutput(t, "json")

	stdout, _, err := execute(t, NewDatasetsCommand())
	require.NoError(t, err)

	var got []core.Dataset
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "raw_events", got[0].Name)
	assert.Equal(t, 400, got[1].RetentionDays)
}

func TestDatasetsCommand_RejectedRows(t *testing.T) {
	cfgPath := loadProject(t)
	dataDir := filepath.Join(filepath.Dir(cfgPath), "data")
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "datasets.csv"), []byte(
		"name,system,owner,domain,has_pii,encryption,retention_days,last_audit_date\n"+
			"raw_events,kafka,platform,analytics,False,none,30,2024-01-15\n"+
			"broken,kafka,platform,analytics,maybe,none,abc,\n"), 0o644))

	stdout, stderr, err := execute(t, NewDatasetsCommand())
	require.NoError(t, err)
	assert.Contains(t, stdout, "raw_events")
	assert.NotContains(t, stdout, "broken")
	assert.Contains(t, stderr, "catalog rows rejected")
}

func TestRulesCommand(t *testing.T) {
	t.Run("built-in", func(t *testing.T) {
		loadProject(t)
		stdout, _, err := execute(t, NewRulesCommand())
		require.NoError(t, err)
		assert.Contains(t, stdout, "Retention Rules (2)")
		assert.Contains(t, stdout, "RET01")
		assert.Contains(t, stdout, "RET02")
		assert.Contains(t, stdout, "built-in")
	})

	t.Run("with policy", func(t *testing.T) {
		cfgPath := loadProject(t)
		policy := testutil.WritePolicy(t, cfgPath, `retention_rules:
  - id: RET10
    reason: Analytics data retained > 7 days
    domain: analytics
    max_days: 7
`)
		config.GetCurrentConfig().PolicyFile = policy
		setOutput(t, "json")

		stdout, _, err := execute(t, NewRulesCommand(), "RET10")
		require.NoError(t, err)

		var got []RuleInfo
		require.NoError(t, json.Unmarshal([]byte(stdout), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "ret10", got[0].Name)
		assert.Equal(t, policy, got[0].Source)
	})

	t.Run("unknown rule", func(t *testing.T) {
		loadProject(t)
		_, _, err := execute(t, NewRulesCommand(), "RET99")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `rule "RET99" not found`)
	})
}

func TestReportCommand_PolicyRule(t *testing.T) {
	cfgPath := loadProject(t)
	config.GetCurrentConfig().PolicyFile = testutil.WritePolicy(t, cfgPath, `retention_rules:
  - id: RET10
    reason: Analytics data retained > 7 days
    when: dataset.domain == "analytics" and dataset.retention_days > 7
`)
	setOutput(t, "json")

	stdout, _, err := execute(t, NewReportCommand())
	require.NoError(t, err)

	var got ReportOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.Len(t, got.Records, 3)
	assert.Equal(t, "raw_events", got.Records[0].Dataset)
	assert.True(t, got.Records[0].RetentionViolation)
	assert.Equal(t, "Analytics data retained > 7 days", got.Records[0].RetentionReason)
}

func TestGraphCommand(t *testing.T) {
	loadProject(t)
	setOutput(t, "json")

	stdout, _, err := execute(t, NewGraphCommand())
	require.NoError(t, err)

	var got GraphOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, 3, got.Nodes)
	assert.Equal(t, 2, got.Edges)
	assert.Equal(t, []string{"raw_events"}, got.Roots)
	assert.Equal(t, []string{"marketing_segments"}, got.Leaves)
	assert.Empty(t, got.Cycle)
	assert.Empty(t, got.Uncataloged)
	assert.Empty(t, got.Dataset)
}

func TestGraphCommand_Dataset(t *testing.T) {
	cfgPath := loadProject(t)
	dataDir := filepath.Join(filepath.Dir(cfgPath), "data")
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "lineage.csv"), []byte(
		"source,target,transformation\n"+
			"raw_events,customer_profiles,dedupe\n"+
			"customer_profiles,marketing_segments,segment\n"+
			"billing_export,invoices,load\n"), 0o644))
	setOutput(t, "json")

	t.Run("whole graph", func(t *testing.T) {
		stdout, _, err := execute(t, NewGraphCommand())
		require.NoError(t, err)

		var got GraphOutput
		require.NoError(t, json.Unmarshal([]byte(stdout), &got))
		assert.Equal(t, 5, got.Nodes)
		assert.Equal(t, []string{"billing_export", "raw_events"}, got.Roots)
		assert.Equal(t, []string{"billing_export", "invoices"}, got.Uncataloged)
	})

	t.Run("scoped to one dataset", func(t *testing.T) {
		stdout, _, err := execute(t, NewGraphCommand(), "customer_profiles")
		require.NoError(t, err)

		var got GraphOutput
		require.NoError(t, json.Unmarshal([]byte(stdout), &got))
		assert.Equal(t, "customer_profiles", got.Dataset)
		assert.Equal(t, 3, got.Nodes)
		assert.Equal(t, 2, got.Edges)
		assert.Equal(t, []string{"raw_events"}, got.Roots)
		assert.Equal(t, []string{"marketing_segments"}, got.Leaves)
		assert.Empty(t, got.Uncataloged)
	})

	t.Run("scoped to an uncataloged dataset", func(t *testing.T) {
		stdout, _, err := execute(t, NewGraphCommand(), "invoices")
		require.NoError(t, err)

		var got GraphOutput
		require.NoError(t, json.Unmarshal([]byte(stdout), &got))
		assert.Equal(t, 2, got.Nodes)
		assert.Equal(t, []string{"billing_export", "invoices"}, got.Uncataloged)
	})

	t.Run("unknown dataset", func(t *testing.T) {
		_, _, err := execute(t, NewGraphCommand(), "nope")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `dataset "nope" is not in the lineage graph`)
	})
}

func TestSeedCommand(t *testing.T) {
	cfgPath := loadProject(t)
	setOutput(t, "json")

	stdout, _, err := execute(t, NewSeedCommand())
	require.NoError(t, err)

	var got struct {
		ID     string `json:"id"`
		Source string `json:"source"`
		Counts struct {
			Datasets int `json:"datasets"`
			Columns  int `json:"columns"`
			Lineage  int `json:"lineage"`
			Audits   int `json:"audits"`
		} `json:"counts"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, 3, got.Counts.Datasets)
	assert.Equal(t, 7, got.Counts.Columns)
	assert.Equal(t, 2, got.Counts.Lineage)
	assert.Equal(t, 2, got.Counts.Audits)

	_, err = os.Stat(filepath.Join(filepath.Dir(cfgPath), ".govpilot", "state.db"))
	assert.NoError(t, err)
}

func TestSeedCommand_ReportsReplacedImport(t *testing.T) {
	loadProject(t)
	setOutput(t, "json")

	type seedResult struct {
		ID       string `json:"id"`
		Previous *struct {
			ID     string `json:"id"`
			Counts struct {
				Datasets int `json:"datasets"`
			} `json:"counts"`
		} `json:"previous"`
		SchemaVersion int64 `json:"schema_version"`
	}

	stdout, _, err := execute(t, NewSeedCommand())
	require.NoError(t, err)
	var first seedResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &first))
	assert.Nil(t, first.Previous)
	assert.NotContains(t, stdout, `"previous"`)
	assert.Positive(t, first.SchemaVersion)

	stdout, _, err = execute(t, NewSeedCommand())
	require.NoError(t, err)
	var second seedResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &second))
	require.NotNil(t, second.Previous)
	assert.Equal(t, first.ID, second.Previous.ID)
	assert.Equal(t, 3, second.Previous.Counts.Datasets)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.SchemaVersion, second.SchemaVersion)
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, NewVersionCommand("1.2.3"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "govpilot v1.2.3")
}
