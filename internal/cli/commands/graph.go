package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/govpilot/internal/cli/output"
	"github.com/leapstack-labs/govpilot/internal/dag"
	"github.com/leapstack-labs/govpilot/internal/lineage"
)

// GraphOutput is the JSON output of the graph command.
type GraphOutput struct {
	// Dataset is set when the graph was narrowed to one dataset's lineage.
	Dataset string   `json:"dataset,omitempty"`
	Nodes   int      `json:"nodes"`
	Edges   int      `json:"edges"`
	Roots   []string `json:"roots"`
	Leaves  []string `json:"leaves"`
	Cycle   []string `json:"cycle,omitempty"`
	// Uncataloged lists lineage nodes with no row in the datasets table.
	Uncataloged []string `json:"uncataloged"`
}

// NewGraphCommand creates the graph command.
func NewGraphCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph [dataset]",
		Short: "Summarize the lineage graph",
		Long: `Show the size of the lineage graph, its root and leaf datasets, and a
cycle if the lineage table contains one. Datasets named in the lineage table
but missing from the datasets table are listed as uncataloged.

With a dataset argument the summary covers only that dataset and everything
upstream or downstream of it.`,
		Example: `  govpilot graph
  govpilot graph customer_profiles
  govpilot graph -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dataset := ""
			if len(args) == 1 {
				dataset = args[0]
			}
			return runGraph(cmd, dataset)
		},
	}
	return cmd
}

func runGraph(cmd *cobra.Command, dataset string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	cat, err := cmdCtx.LoadCatalog(cmd)
	if err != nil {
		return err
	}
	g := dag.Build(cat.Lineage)
	for _, d := range cat.Datasets {
		if g.HasNode(d.Name) {
			g.AddNode(d.Name, d)
		}
	}

	if dataset != "" {
		if !g.HasNode(dataset) {
			return fmt.Errorf("dataset %q is not in the lineage graph", dataset)
		}
		scope := append(g.GetUpstreamNodes(dataset), dataset)
		g = g.Subgraph(append(scope, g.GetDownstreamNodes(dataset)...))
	}

	out := summarizeGraph(g)
	out.Dataset = dataset

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, graphTitle(out)))
		r.Println("")
		r.Println(output.FormatKeyValue("Datasets", fmt.Sprint(out.Nodes)))
		r.Println(output.FormatKeyValue("Edges", fmt.Sprint(out.Edges)))
		r.Println(output.FormatKeyValue("Roots", joinOrNone(out.Roots)))
		r.Println(output.FormatKeyValue("Leaves", joinOrNone(out.Leaves)))
		if len(out.Cycle) > 0 {
			r.Println(output.FormatKeyValue("Cycle", strings.Join(out.Cycle, lineage.PathSeparator)))
		}
		if len(out.Uncataloged) > 0 {
			r.Println(output.FormatKeyValue("Uncataloged", strings.Join(out.Uncataloged, ", ")))
		}
	default:
		styles := r.Styles()
		r.Header(1, graphTitle(out))
		r.Printf("  %-12s %d\n", "Datasets:", out.Nodes)
		r.Printf("  %-12s %d\n", "Edges:", out.Edges)
		r.Printf("  %-12s %s\n", "Roots:", joinOrNone(out.Roots))
		r.Printf("  %-12s %s\n", "Leaves:", joinOrNone(out.Leaves))
		if len(out.Cycle) > 0 {
			r.Printf("  %-12s %s\n", "Cycle:", styles.Warning.Render(strings.Join(out.Cycle, lineage.PathSeparator)))
		}
		if len(out.Uncataloged) > 0 {
			r.Printf("  %-12s %s\n", "Uncataloged:", styles.Warning.Render(strings.Join(out.Uncataloged, ", ")))
		}
	}
	return nil
}

func summarizeGraph(g *dag.Graph) GraphOutput {
	out := GraphOutput{
		Nodes:  g.NodeCount(),
		Edges:  g.EdgeCount(),
		Roots:  g.GetRoots(),
		Leaves: g.GetLeaves(),
	}
	if hasCycle, cycle := g.HasCycle(); hasCycle {
		out.Cycle = cycle
	}
	if out.Roots == nil {
		out.Roots = []string{}
	}
	if out.Leaves == nil {
		out.Leaves = []string{}
	}
	out.Uncataloged = []string{}
	for _, id := range g.Nodes() {
		if node, ok := g.GetNode(id); ok && node.Data == nil {
			out.Uncataloged = append(out.Uncataloged, id)
		}
	}
	return out
}

func graphTitle(out GraphOutput) string {
	if out.Dataset == "" {
		return "Lineage Graph"
	}
	return "Lineage Graph of " + out.Dataset
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}
