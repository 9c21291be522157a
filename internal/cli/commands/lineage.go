package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/govpilot/internal/cli/output"
	"github.com/leapstack-labs/govpilot/internal/dag"
	"github.com/leapstack-labs/govpilot/internal/lineage"
)

// LineageOptions holds options for the lineage command.
type LineageOptions struct {
	MaxPaths   int
	Downstream bool
}

// LineageOutput is the JSON output of the lineage command.
type LineageOutput struct {
	lineage.Result
	// Hops is parallel to Paths and carries the transformation labels of
	// each edge.
	Hops       [][]lineage.Hop `json:"hops"`
	Sources    []string        `json:"sources"`
	Downstream []string        `json:"downstream,omitempty"`
}

// NewLineageCommand creates the lineage command.
func NewLineageCommand() *cobra.Command {
	opts := &LineageOptions{}
	cmd := &cobra.Command{
		Use:   "lineage <dataset>",
		Short: "Show upstream lineage paths of a dataset",
		Long: `Print every upstream path that ends at the dataset, one per line,
in the form "source -> ... -> dataset".

Paths never repeat a dataset, so cycles in the lineage table are safe.
Use --max-paths to cap enumeration on densely connected catalogs.`,
		Example: `  # Where does marketing_segments come from?
  govpilot lineage marketing_segments

  # Also list everything derived from it
  govpilot lineage customer_profiles --downstream

  # Stop after 100 paths
  govpilot lineage marketing_segments --max-paths 100`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("max-paths") {
				opts.MaxPaths = getConfig().MaxPaths
			}
			return runLineage(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.MaxPaths, "max-paths", 0, "Stop after this many paths (0 = no limit)")
	cmd.Flags().BoolVar(&opts.Downstream, "downstream", false, "Also list downstream datasets")

	return cmd
}

func runLineage(cmd *cobra.Command, dataset string, opts *LineageOptions) error {
	if opts.MaxPaths < 0 {
		return fmt.Errorf("--max-paths must be >= 0 (got %d)", opts.MaxPaths)
	}

	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	cat, err := cmdCtx.LoadCatalog(cmd)
	if err != nil {
		return err
	}

	g := dag.Build(cat.Lineage)
	result := lineage.FindUpstreamPaths(g, dataset, lineage.WithMaxPaths(opts.MaxPaths))
	cmdCtx.Logger.Debug("lineage query",
		"dataset", dataset,
		"paths", len(result.Paths),
		"truncated", result.Truncated)

	out := newLineageOutput(g, result)
	if opts.Downstream && result.Found {
		out.Downstream = g.GetDownstreamNodes(dataset)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeMarkdown:
		renderLineageMarkdown(r, out)
	default:
		renderLineageText(r, out)
	}
	return nil
}

func newLineageOutput(g *dag.Graph, result lineage.Result) LineageOutput {
	out := LineageOutput{
		Result:  result,
		Hops:    make([][]lineage.Hop, len(result.Paths)),
		Sources: result.Sources(),
	}
	for i, p := range result.Paths {
		out.Hops[i] = p.Hops(g)
	}
	if out.Sources == nil {
		out.Sources = []string{}
	}
	return out
}

func renderLineageText(r *output.Renderer, out LineageOutput) {
	r.Println(lineage.Describe(out.Result))
	if out.Truncated {
		r.Muted(fmt.Sprintf("(stopped after %d paths)", len(out.Paths)))
	}
	if len(out.Downstream) > 0 {
		r.Println("")
		r.Println(r.Styles().Bold.Render("Downstream:") + " " + strings.Join(out.Downstream, ", "))
	}
}

func renderLineageMarkdown(r *output.Renderer, out LineageOutput) {
	r.Println(output.FormatHeader(1, "Lineage of "+out.Target))
	r.Println("")
	if len(out.Paths) == 0 {
		r.Println(lineage.Describe(out.Result))
	}
	for i, p := range out.Paths {
		r.Println("- `" + p.String() + "`")
		for _, hop := range out.Hops[i] {
			if len(hop.Transformations) == 0 {
				continue
			}
			r.Println(fmt.Sprintf("  - %s%s%s: %s",
				hop.Source, lineage.PathSeparator, hop.Target, strings.Join(hop.Transformations, ", ")))
		}
	}
	if len(out.Sources) > 0 {
		r.Println("")
		r.Println(output.FormatKeyValue("Upstream sources", strings.Join(out.Sources, ", ")))
	}
	if out.Truncated {
		r.Println("")
		r.Println(fmt.Sprintf("_Stopped after %d paths._", len(out.Paths)))
	}
	if len(out.Downstream) > 0 {
		r.Println("")
		r.Println(output.FormatKeyValue("Downstream", strings.Join(out.Downstream, ", ")))
	}
}
