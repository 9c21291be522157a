package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/govpilot/internal/catalog"
	"github.com/leapstack-labs/govpilot/internal/cli/output"
	"github.com/leapstack-labs/govpilot/internal/state"
)

// SeedOutput is the JSON output of the seed command.
type SeedOutput struct {
	*state.Import
	// Previous is the import this one replaced, if any.
	Previous      *state.Import `json:"previous,omitempty"`
	SchemaVersion int64         `json:"schema_version"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import the catalog into the state database",
		Long: `Load the catalog from the configured source and store it in the SQLite
state database, replacing what was there. Rejected rows are reported and
left out.

The state database can then serve as a catalog source itself
(source.type: sqlite).`,
		Example: `  # Import data/*.csv into .govpilot/state.db
  govpilot seed

  # Import into a different database
  govpilot seed --state /tmp/catalog.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd)
		},
	}
	return cmd
}

func runSeed(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	cat, err := cmdCtx.LoadCatalog(cmd)
	if err != nil {
		return err
	}

	if err := cfg.EnsureStateDir(); err != nil {
		return err
	}
	store := state.NewSQLiteStore()
	if err := store.Open(cfg.StatePath); err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(); err != nil {
		return err
	}

	version, err := store.GetMigrationVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	previous, err := store.LastImport(cmd.Context())
	if err != nil && !errors.Is(err, state.ErrNoImport) {
		return err
	}

	cc := cfg.CatalogConfig()
	source := cc.Type
	if cc.Type == catalog.TypeCSV {
		source = "csv:" + cc.DataDir
	}
	imp, err := store.ImportCatalog(cmd.Context(), cat, source)
	if err != nil {
		return fmt.Errorf("failed to import catalog: %w", err)
	}
	cmdCtx.Logger.Debug("catalog imported", "id", imp.ID, "state", cfg.StatePath, "schema_version", version)

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(SeedOutput{Import: imp, Previous: previous, SchemaVersion: version})
	}
	r.Success(fmt.Sprintf("Imported %d datasets, %d columns, %d lineage edges and %d audits",
		imp.Counts.Datasets, imp.Counts.Columns, imp.Counts.Lineage, imp.Counts.Audits))
	if previous != nil {
		r.Muted(fmt.Sprintf("Replaced import %s from %s (%d datasets)",
			previous.ID, previous.ImportedAt.Local().Format(time.DateTime), previous.Counts.Datasets))
	}
	r.Muted(fmt.Sprintf("State saved to %s", cfg.StatePath))
	return nil
}
