// Package dag provides the directed dataset lineage graph.
// Unlike a build DAG it accepts cycles and self-loops: lineage is recorded
// as observed, and queries are written to terminate on any input.
package dag

import (
	"sort"

	"github.com/leapstack-labs/govpilot/pkg/core"
)

// Node represents a dataset in the graph.
type Node struct {
	// ID is the dataset name
	ID string
	// Data holds arbitrary node data
	Data interface{}
}

// Graph represents a directed lineage graph.
type Graph struct {
	nodes   map[string]*Node
	order   []string            // node IDs in first-seen order
	edges   map[string][]string // source -> targets (downstream)
	parents map[string][]string // target -> sources (upstream)
	labels  map[edgeKey][]string
}

type edgeKey struct {
	source, target string
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[string]*Node),
		edges:   make(map[string][]string),
		parents: make(map[string][]string),
		labels:  make(map[edgeKey][]string),
	}
}

// Build creates a graph with one directed edge per lineage record.
// Datasets named by an edge become nodes whether or not they are cataloged.
// Repeated (source, target) pairs collapse to one edge that keeps every
// distinct transformation label.
func Build(edges []core.LineageEdge) *Graph {
	g := NewGraph()
	for _, e := range edges {
		g.AddEdge(e.Source, e.Target, e.Transformation)
	}
	return g
}

// AddNode adds a node to the graph.
func (g *Graph) AddNode(id string, data interface{}) {
	if _, exists := g.nodes[id]; !exists {
		g.nodes[id] = &Node{ID: id, Data: data}
		g.order = append(g.order, id)
		g.edges[id] = []string{}
		g.parents[id] = []string{}
	} else {
		// Update data if node already exists
		g.nodes[id].Data = data
	}
}

// ensureNode adds a node without touching existing data.
func (g *Graph) ensureNode(id string) {
	if _, exists := g.nodes[id]; !exists {
		g.AddNode(id, nil)
	}
}

// AddEdge adds a directed edge from source to target (target derives from
// source), creating missing nodes. A non-empty transformation label is
// recorded once per edge.
func (g *Graph) AddEdge(source, target, transformation string) {
	g.ensureNode(source)
	g.ensureNode(target)

	if !contains(g.edges[source], target) {
		g.edges[source] = append(g.edges[source], target)
	}
	if !contains(g.parents[target], source) {
		g.parents[target] = append(g.parents[target], source)
	}

	key := edgeKey{source, target}
	if transformation != "" && !contains(g.labels[key], transformation) {
		g.labels[key] = append(g.labels[key], transformation)
	}
}

// HasNode reports whether id is a node of the graph.
func (g *Graph) HasNode(id string) bool {
	_, exists := g.nodes[id]
	return exists
}

// GetNode returns a node by ID.
func (g *Graph) GetNode(id string) (*Node, bool) {
	node, exists := g.nodes[id]
	return node, exists
}

// Nodes returns node IDs in first-seen order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Transformations returns the distinct labels recorded on an edge.
func (g *Graph) Transformations(source, target string) []string {
	return g.labels[edgeKey{source, target}]
}

// GetParents returns the direct upstream datasets of a node.
func (g *Graph) GetParents(id string) []string {
	return g.parents[id]
}

// GetChildren returns the direct downstream datasets of a node.
func (g *Graph) GetChildren(id string) []string {
	return g.edges[id]
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, children := range g.edges {
		count += len(children)
	}
	return count
}

// HasCycle returns true if the graph contains a cycle, along with the cycle path.
// A self-loop is reported as a cycle of one node.
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	path := make(map[string]string) // Track the path for error reporting

	var cyclePath []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		recStack[id] = true

		for _, childID := range g.edges[id] {
			if !visited[childID] {
				path[childID] = id
				if dfs(childID) {
					return true
				}
			} else if recStack[childID] {
				// Found cycle, reconstruct path
				cyclePath = []string{childID}
				for curr := id; curr != childID; curr = path[curr] {
					cyclePath = append([]string{curr}, cyclePath...)
				}
				cyclePath = append([]string{childID}, cyclePath...)
				return true
			}
		}

		recStack[id] = false
		return false
	}

	for _, id := range g.order {
		if !visited[id] {
			if dfs(id) {
				return true, cyclePath
			}
		}
	}

	return false, nil
}

// GetUpstreamNodes returns every node that can reach id, sorted.
// A node on a cycle through id is its own ancestor and is included.
func (g *Graph) GetUpstreamNodes(id string) []string {
	return sortedKeys(g.reach(id, g.parents))
}

// GetDownstreamNodes returns every node reachable from id, sorted.
func (g *Graph) GetDownstreamNodes(id string) []string {
	return sortedKeys(g.reach(id, g.edges))
}

// Ancestors returns the set of nodes that can reach id.
func (g *Graph) Ancestors(id string) map[string]bool {
	return g.reach(id, g.parents)
}

// reach walks adjacency from id without revisiting nodes.
func (g *Graph) reach(id string, adjacency map[string][]string) map[string]bool {
	seen := make(map[string]bool)

	var mark func(nodeID string)
	mark = func(nodeID string) {
		for _, next := range adjacency[nodeID] {
			if !seen[next] {
				seen[next] = true
				mark(next)
			}
		}
	}

	mark(id)
	return seen
}

// GetRoots returns nodes with no parents (original sources).
func (g *Graph) GetRoots() []string {
	var roots []string
	for id := range g.nodes {
		if len(g.parents[id]) == 0 {
			roots = append(roots, id)
		}
	}
	sort.Strings(roots)
	return roots
}

// GetLeaves returns nodes with no children (final consumers).
func (g *Graph) GetLeaves() []string {
	var leaves []string
	for id := range g.nodes {
		if len(g.edges[id]) == 0 {
			leaves = append(leaves, id)
		}
	}
	sort.Strings(leaves)
	return leaves
}

// Subgraph returns a new graph containing only the specified nodes and the
// edges between them. Node order follows the receiver.
func (g *Graph) Subgraph(nodeIDs []string) *Graph {
	subgraph := NewGraph()
	nodeSet := make(map[string]bool)
	for _, id := range nodeIDs {
		nodeSet[id] = true
	}

	for _, id := range g.order {
		if nodeSet[id] {
			subgraph.AddNode(id, g.nodes[id].Data)
		}
	}

	for _, id := range g.order {
		if !nodeSet[id] {
			continue
		}
		for _, childID := range g.edges[id] {
			if !nodeSet[childID] {
				continue
			}
			labels := g.labels[edgeKey{id, childID}]
			if len(labels) == 0 {
				subgraph.AddEdge(id, childID, "")
			}
			for _, label := range labels {
				subgraph.AddEdge(id, childID, label)
			}
		}
	}

	return subgraph
}

func sortedKeys(set map[string]bool) []string {
	result := make([]string, 0, len(set))
	for id := range set {
		result = append(result, id)
	}
	sort.Strings(result)
	return result
}

// contains checks if a slice contains a string.
func contains(slice []string, str string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}
