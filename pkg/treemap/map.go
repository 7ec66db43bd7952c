package treemap

import (
	"cmp"
	"slices"
	"strings"

	"github.com/matzehuels/proteomap/pkg/geom"
	"github.com/matzehuels/proteomap/pkg/voronoi"
)

// Node is one resolved cell.
type Node struct {
	Level int
	Path  []string
	Label string

	Weight    float64
	FracTotal float64

	Polygon geom.Polygon

	// Discrepancy and Attempts describe the sub-layout the node was
	// solved in; siblings share them.
	Discrepancy float64
	Attempts    int
	Converged   bool
}

// Key joins the node's path.
func (n Node) Key() string { return pathKey(n.Path) }

// Parent returns the parent's path.
func (n Node) Parent() []string {
	if len(n.Path) == 0 {
		return nil
	}
	return n.Path[:len(n.Path)-1]
}

// Skip records a branch that was not laid out.
type Skip struct {
	Level  int
	Path   []string
	Reason string
}

// Map is the flat result of a layout.
type Map struct {
	Hierarchy Hierarchy
	Border    geom.Polygon
	Nodes     []Node
	Skipped   []Skip
}

// Sort orders nodes by level and path, and skips by path.
func (m *Map) Sort() {
	slices.SortFunc(m.Nodes, func(a, b Node) int {
		return cmp.Or(cmp.Compare(a.Level, b.Level), slices.Compare(a.Path, b.Path))
	})
	slices.SortFunc(m.Skipped, func(a, b Skip) int {
		return cmp.Or(cmp.Compare(a.Level, b.Level), slices.Compare(a.Path, b.Path))
	})
}

// Find returns the node with the given path.
func (m *Map) Find(path []string) (Node, bool) {
	for _, n := range m.Nodes {
		if slices.Equal(n.Path, path) {
			return n, true
		}
	}
	return Node{}, false
}

// Level returns the nodes at a hierarchy level.
func (m *Map) Level(level int) []Node {
	var out []Node
	for _, n := range m.Nodes {
		if n.Level == level {
			out = append(out, n)
		}
	}
	return out
}

// Scope selects the cells a sub-layout of parent's children at level can
// be seeded from. Cells are matched on the full parent path; when none
// match, on the parent's label alone, so a reference built from a
// differently refined table still helps. The second result is the cell
// that played the role of border for those cells.
func (m *Map) Scope(level int, parent []string) (voronoi.Reference, geom.Polygon) {
	if m == nil {
		return nil, geom.Polygon{}
	}
	if len(parent) == 0 {
		ref := make(voronoi.Reference)
		for _, n := range m.Level(level) {
			ref[n.Label] = n.Polygon
		}
		return ref, m.Border
	}

	ref := make(voronoi.Reference)
	for _, n := range m.Nodes {
		if n.Level == level && slices.Equal(n.Parent(), parent) {
			ref[n.Label] = n.Polygon
		}
	}
	if p, ok := m.Find(parent); ok && len(ref) > 0 {
		return ref, p.Polygon
	}

	label := parent[len(parent)-1]
	var border geom.Polygon
	for _, n := range m.Nodes {
		if n.Level == level && len(n.Path) >= 2 && n.Path[len(n.Path)-2] == label {
			ref[n.Label] = n.Polygon
		}
		if n.Label == label && n.Level < level && border.IsEmpty() {
			border = n.Polygon
		}
	}
	return ref, border
}

func pathKey(path []string) string { return strings.Join(path, "/") }
