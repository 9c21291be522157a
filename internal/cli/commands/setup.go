// Package commands implements the govpilot subcommands.
package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/govpilot/internal/catalog"
	"github.com/leapstack-labs/govpilot/internal/cli/config"
	"github.com/leapstack-labs/govpilot/internal/cli/output"
	"github.com/leapstack-labs/govpilot/internal/compliance"
	"github.com/leapstack-labs/govpilot/pkg/core"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration, or defaults when none was
// loaded (e.g. a command run outside the root command).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

// LoadCatalog loads the configured catalog. Rejected rows are logged and
// summarized as a warning; the rest of the catalog is still returned.
func (c *CommandContext) LoadCatalog(cmd *cobra.Command) (*core.Catalog, error) {
	if err := c.Cfg.ValidateDataDir(); err != nil {
		return nil, err
	}

	cat, err := catalog.Load(cmd.Context(), c.Cfg.CatalogConfig(), c.Logger)
	if cat == nil {
		return nil, err
	}
	c.reportRejected("catalog rows rejected", err)
	return cat, nil
}

// Engine builds the compliance engine, loading the policy file if set.
func (c *CommandContext) Engine() (*compliance.Engine, error) {
	opts := []compliance.Option{
		compliance.WithEnvironment(c.Cfg.Environment),
		compliance.WithLogger(c.Logger),
	}
	if c.Cfg.PolicyFile != "" {
		policy, err := compliance.LoadPolicy(c.Cfg.PolicyFile)
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("policy loaded", "path", policy.Path, "rules", len(policy.RetentionRules))
		opts = append(opts, compliance.WithPolicy(policy))
	}
	return compliance.NewEngine(opts...), nil
}

// Evaluate loads the catalog and computes the compliance report.
func (c *CommandContext) Evaluate(cmd *cobra.Command) ([]core.ComplianceRecord, error) {
	cat, err := c.LoadCatalog(cmd)
	if err != nil {
		return nil, err
	}
	eng, err := c.Engine()
	if err != nil {
		return nil, err
	}
	records, err := eng.Evaluate(cat.Datasets, cat.Columns, cat.Audits)
	c.reportRejected("datasets skipped", err)
	return records, nil
}

// reportRejected logs each error of a batch and prints one warning.
func (c *CommandContext) reportRejected(what string, err error) {
	if err == nil {
		return
	}
	var batch *core.BatchError
	if !errors.As(err, &batch) {
		c.Logger.Warn(what, "error", err)
		c.Renderer.Warning(fmt.Sprintf("%s: %v", what, err))
		return
	}
	for _, e := range batch.Errors {
		c.Logger.Warn(what, "error", e)
	}
	c.Renderer.Warning(fmt.Sprintf("%d %s", len(batch.Errors), what))
}
