package dag

import (
	"testing"

	"github.com/leapstack-labs/govpilot/pkg/core"
)

func TestBuild_CreatesNodesFromEdges(t *testing.T) {
	g := Build([]core.LineageEdge{
		{Source: "raw_events", Target: "customer_profiles", Transformation: "dedupe"},
		{Source: "customer_profiles", Target: "marketing_segments"},
	})

	if g.NodeCount() != 3 {
		t.Errorf("expected 3 nodes, got %d", g.NodeCount())
	}
	if g.EdgeCount() != 2 {
		t.Errorf("expected 2 edges, got %d", g.EdgeCount())
	}

	want := []string{"raw_events", "customer_profiles", "marketing_segments"}
	got := g.Nodes()
	if len(got) != len(want) {
		t.Fatalf("Nodes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Nodes()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBuild_EmptyInput(t *testing.T) {
	g := Build(nil)
	if g.NodeCount() != 0 || g.EdgeCount() != 0 {
		t.Errorf("expected empty graph, got %d nodes %d edges", g.NodeCount(), g.EdgeCount())
	}
	if g.HasNode("anything") {
		t.Error("empty graph should have no nodes")
	}
}

func TestBuild_DuplicateEdgesKeepDistinctLabels(t *testing.T) {
	g := Build([]core.LineageEdge{
		{Source: "a", Target: "b", Transformation: "join"},
		{Source: "a", Target: "b", Transformation: "filter"},
		{Source: "a", Target: "b", Transformation: "join"},
		{Source: "a", Target: "b"},
	})

	if g.EdgeCount() != 1 {
		t.Errorf("expected duplicate edges to collapse, got %d edges", g.EdgeCount())
	}
	labels := g.Transformations("a", "b")
	if len(labels) != 2 || labels[0] != "join" || labels[1] != "filter" {
		t.Errorf("Transformations = %v, want [join filter]", labels)
	}
	if got := g.Transformations("b", "a"); len(got) != 0 {
		t.Errorf("reverse edge should carry no labels, got %v", got)
	}
}

func TestGraph_AcceptsSelfLoop(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a", "a", "")

	if g.EdgeCount() != 1 {
		t.Errorf("expected self-loop edge, got %d edges", g.EdgeCount())
	}

	hasCycle, path := g.HasCycle()
	if !hasCycle {
		t.Fatal("expected self-loop to be reported as a cycle")
	}
	if len(path) != 2 || path[0] != "a" || path[1] != "a" {
		t.Errorf("cycle path = %v, want [a a]", path)
	}
}

func TestGraph_GetParentsAndChildren(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a", "b", "")
	g.AddEdge("a", "c", "")
	g.AddEdge("b", "c", "")

	parents := g.GetParents("c")
	if len(parents) != 2 {
		t.Errorf("expected c to have 2 parents, got %d", len(parents))
	}

	children := g.GetChildren("a")
	if len(children) != 2 {
		t.Errorf("expected a to have 2 children, got %d", len(children))
	}
}

func TestGraph_HasCycle(t *testing.T) {
	acyclic := Build([]core.LineageEdge{{Source: "a", Target: "b"}, {Source: "b", Target: "c"}})
	if hasCycle, path := acyclic.HasCycle(); hasCycle {
		t.Errorf("expected no cycle, but found: %v", path)
	}

	cyclic := Build([]core.LineageEdge{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "a"},
		{Source: "b", Target: "c"},
	})
	hasCycle, path := cyclic.HasCycle()
	if !hasCycle {
		t.Error("expected cycle to be detected")
	}
	if len(path) == 0 {
		t.Error("expected cycle path to be non-empty")
	}
}

func TestGraph_UpstreamAndDownstreamNodes(t *testing.T) {
	g := Build([]core.LineageEdge{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "c"},
		{Source: "x", Target: "c"},
		{Source: "c", Target: "d"},
	})

	up := g.GetUpstreamNodes("c")
	if len(up) != 3 || up[0] != "a" || up[1] != "b" || up[2] != "x" {
		t.Errorf("GetUpstreamNodes(c) = %v, want [a b x]", up)
	}

	down := g.GetDownstreamNodes("a")
	if len(down) != 3 || down[0] != "b" || down[1] != "c" || down[2] != "d" {
		t.Errorf("GetDownstreamNodes(a) = %v, want [b c d]", down)
	}

	if len(g.GetUpstreamNodes("a")) != 0 {
		t.Error("root should have no upstream nodes")
	}
}

func TestGraph_UpstreamTerminatesOnCycle(t *testing.T) {
	g := Build([]core.LineageEdge{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "a"},
	})

	up := g.Ancestors("a")
	if !up["a"] || !up["b"] || len(up) != 2 {
		t.Errorf("Ancestors(a) = %v, want a and b", up)
	}
}

func TestGraph_RootsAndLeaves(t *testing.T) {
	g := Build([]core.LineageEdge{
		{Source: "a", Target: "c"},
		{Source: "b", Target: "c"},
		{Source: "c", Target: "d"},
		{Source: "c", Target: "e"},
	})

	roots := g.GetRoots()
	if len(roots) != 2 || roots[0] != "a" || roots[1] != "b" {
		t.Errorf("GetRoots() = %v, want [a b]", roots)
	}

	leaves := g.GetLeaves()
	if len(leaves) != 2 || leaves[0] != "d" || leaves[1] != "e" {
		t.Errorf("GetLeaves() = %v, want [d e]", leaves)
	}
}

func TestGraph_Subgraph(t *testing.T) {
	g := Build([]core.LineageEdge{
		{Source: "a", Target: "b", Transformation: "copy"},
		{Source: "b", Target: "c"},
		{Source: "c", Target: "d"},
	})

	sub := g.Subgraph([]string{"a", "b", "c"})

	if sub.NodeCount() != 3 {
		t.Errorf("expected 3 nodes in subgraph, got %d", sub.NodeCount())
	}
	if sub.EdgeCount() != 2 {
		t.Errorf("expected 2 edges in subgraph, got %d", sub.EdgeCount())
	}
	if sub.HasNode("d") {
		t.Error("subgraph should not contain d")
	}
	if labels := sub.Transformations("a", "b"); len(labels) != 1 || labels[0] != "copy" {
		t.Errorf("subgraph should keep edge labels, got %v", labels)
	}
}

func TestGraph_AddNodeUpdatesData(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", "first")
	g.AddNode("a", "second")

	node, ok := g.GetNode("a")
	if !ok {
		t.Fatal("expected node a")
	}
	if node.Data != "second" {
		t.Errorf("Data = %v, want second", node.Data)
	}
	if len(g.Nodes()) != 1 {
		t.Errorf("re-adding a node should not duplicate it in order, got %v", g.Nodes())
	}
}
