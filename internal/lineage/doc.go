// Package lineage discovers upstream provenance chains in a dataset
// lineage graph.
//
// A provenance chain is a simple path: a sequence of datasets with no
// repeats, each derived from the previous one, ending at the queried
// dataset. Discovery enumerates every such path from every dataset that can
// reach the target.
//
// # Features
//
//   - Not-found vs. empty: a target missing from the graph is reported
//     distinctly from a target with no upstream datasets
//   - Cycle tolerant: the visited set is kept per path, so cycles and
//     self-loops cannot cause non-termination
//   - Deterministic: sources are visited in graph insertion order and
//     children in edge insertion order
//   - Optional path cap for pathologically dense graphs
//
// # Basic Usage
//
//	g := dag.Build(catalog.Lineage)
//	result := lineage.FindUpstreamPaths(g, "marketing_segments")
//	if !result.Found {
//	    fmt.Println("no lineage information")
//	}
//	for _, p := range result.Paths {
//	    fmt.Println(p) // raw_events -> customer_profiles -> marketing_segments
//	}
package lineage
