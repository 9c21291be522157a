package lineage

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/govpilot/internal/dag"
)

// PathSeparator joins dataset names in a rendered path.
const PathSeparator = " -> "

// Path is an ordered chain of dataset names from an upstream source to the
// target, inclusive.
type Path []string

// String renders the path as "a -> b -> c".
func (p Path) String() string {
	return strings.Join(p, PathSeparator)
}

// Source returns the first dataset of the path.
func (p Path) Source() string {
	if len(p) == 0 {
		return ""
	}
	return p[0]
}

// Hop is one edge of a path with the transformations recorded on it.
type Hop struct {
	Source          string   `json:"source"`
	Target          string   `json:"target"`
	Transformations []string `json:"transformations"`
}

// Hops splits p into its edges and attaches the labels g records for each.
func (p Path) Hops(g *dag.Graph) []Hop {
	hops := []Hop{}
	for i := 1; i < len(p); i++ {
		labels := []string{}
		if g != nil {
			labels = append(labels, g.Transformations(p[i-1], p[i])...)
		}
		hops = append(hops, Hop{Source: p[i-1], Target: p[i], Transformations: labels})
	}
	return hops
}

// Result is the outcome of an upstream path query.
type Result struct {
	Target string `json:"target"`
	// Found is false when the target is not a node of the graph.
	Found bool `json:"found"`
	// Paths is empty when the target exists but nothing reaches it.
	Paths []Path `json:"paths"`
	// Truncated is set when a path cap stopped enumeration early.
	Truncated bool `json:"truncated,omitempty"`
}

// Sources returns the distinct first datasets of the paths, in result order.
func (r Result) Sources() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range r.Paths {
		if src := p.Source(); !seen[src] {
			seen[src] = true
			out = append(out, src)
		}
	}
	return out
}

// Option configures path discovery.
type Option func(*options)

type options struct {
	maxPaths int
}

// WithMaxPaths stops enumeration after n paths. n <= 0 means no cap.
func WithMaxPaths(n int) Option {
	return func(o *options) {
		o.maxPaths = n
	}
}

// FindUpstreamPaths enumerates every simple path that ends at target.
//
// For each node other than target, in graph insertion order, that can reach
// target, all simple paths from it to target are appended in depth-first
// discovery order. The graph is only read, so concurrent queries on the same
// graph are safe.
func FindUpstreamPaths(g *dag.Graph, target string, opts ...Option) Result {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	result := Result{Target: target, Paths: []Path{}}
	if g == nil || !g.HasNode(target) {
		return result
	}
	result.Found = true

	// Only ancestors can lie on a path to target; everything else is pruned.
	ancestors := g.Ancestors(target)

	w := &walker{
		g:         g,
		target:    target,
		ancestors: ancestors,
		onPath:    make(map[string]bool),
		maxPaths:  o.maxPaths,
	}

	for _, src := range g.Nodes() {
		if src == target || !ancestors[src] {
			continue
		}
		if !w.walk(src, nil) {
			result.Truncated = true
			break
		}
	}

	result.Paths = append(result.Paths, w.paths...)
	return result
}

// walker holds the state of one depth-first enumeration.
type walker struct {
	g         *dag.Graph
	target    string
	ancestors map[string]bool
	onPath    map[string]bool
	paths     []Path
	maxPaths  int
}

// walk extends prefix with node. It returns false once the path cap is hit.
func (w *walker) walk(node string, prefix []string) bool {
	path := append(prefix, node)
	w.onPath[node] = true
	defer delete(w.onPath, node)

	for _, next := range w.g.GetChildren(node) {
		if w.onPath[next] {
			continue
		}
		if next == w.target {
			if w.maxPaths > 0 && len(w.paths) >= w.maxPaths {
				return false
			}
			found := make(Path, len(path)+1)
			copy(found, path)
			found[len(path)] = next
			w.paths = append(w.paths, found)
			continue
		}
		if !w.ancestors[next] {
			continue
		}
		if !w.walk(next, path) {
			return false
		}
	}
	return true
}

// Describe renders a result the way the CLI prints it: one path per line,
// or a message for the not-found and no-paths cases.
func Describe(r Result) string {
	if !r.Found {
		return fmt.Sprintf("No lineage info for %s.", r.Target)
	}
	if len(r.Paths) == 0 {
		return fmt.Sprintf("No upstream lineage paths found for %s.", r.Target)
	}
	lines := make([]string, len(r.Paths))
	for i, p := range r.Paths {
		lines[i] = p.String()
	}
	return strings.Join(lines, "\n")
}
