package treemap

import (
	"cmp"
	"slices"

	perrors "github.com/matzehuels/proteomap/pkg/errors"
)

// Hierarchy is the ordered list of grouping columns, coarsest first.
type Hierarchy []string

// Item is one leaf record: its label per hierarchy level and its mass.
type Item struct {
	Labels []string
	Mass   float64
}

// Tree is a node of the weighted hierarchy. The root has Level -1.
type Tree struct {
	Label string
	Level int
	Path  []string

	Mass float64

	// Weight is Mass relative to the kept siblings.
	Weight float64

	// FracTotal is Mass relative to the whole tree.
	FracTotal float64

	Children []*Tree
}

// Leaves counts the nodes without children below t.
func (t *Tree) Leaves() int {
	if len(t.Children) == 0 {
		return 1
	}
	n := 0
	for _, c := range t.Children {
		n += c.Leaves()
	}
	return n
}

// Walk calls fn for t and every descendant, parents first.
func (t *Tree) Walk(fn func(*Tree)) {
	fn(t)
	for _, c := range t.Children {
		c.Walk(fn)
	}
}

// BuildTree groups items level by level. Groups without mass are dropped
// and children are ordered by mass, heaviest first.
func BuildTree(h Hierarchy, items []Item, rules Rules) (*Tree, error) {
	if err := perrors.ValidateHierarchy(h); err != nil {
		return nil, err
	}
	var total float64
	for i, it := range items {
		if len(it.Labels) != len(h) {
			return nil, perrors.New(perrors.ErrCodeInvalidInput,
				"item %d has %d labels, hierarchy has %d levels", i, len(it.Labels), len(h))
		}
		total += it.Mass
	}
	root := &Tree{Level: -1, Mass: total, Weight: 1, FracTotal: 1}
	if total <= 0 {
		return root, nil
	}
	grow(root, items, 0, len(h), total, rules)
	return root, nil
}

func grow(node *Tree, items []Item, level, depth int, total float64, rules Rules) {
	if level >= depth {
		return
	}

	groups := make(map[string][]Item)
	mass := make(map[string]float64)
	for _, it := range items {
		label := it.Labels[level]
		if label == "" {
			if rules.Unassigned == "" {
				continue
			}
			label = rules.Unassigned
		}
		groups[label] = append(groups[label], it)
		mass[label] += it.Mass
	}

	children := make([]*Tree, 0, len(groups))
	for label, m := range mass {
		if m <= 0 {
			continue
		}
		children = append(children, &Tree{
			Label:     label,
			Level:     level,
			Path:      append(slices.Clone(node.Path), label),
			Mass:      m,
			FracTotal: m / total,
		})
	}
	slices.SortFunc(children, func(a, b *Tree) int {
		return cmp.Or(cmp.Compare(b.Mass, a.Mass), cmp.Compare(a.Label, b.Label))
	})
	if rules.MaxChildren > 0 && len(children) > rules.MaxChildren {
		children = children[:rules.MaxChildren]
	}

	var kept float64
	for _, c := range children {
		kept += c.Mass
	}
	for _, c := range children {
		c.Weight = c.Mass / kept
		grow(c, groups[c.Label], childLevel(level, depth, rules.skip(c.Label)), depth, total, rules)
	}
	node.Children = children
}

// childLevel is the level grouped below a node at level. Skipped levels
// stop at the leaf level so skipping never drops the leaves.
func childLevel(level, depth, skip int) int {
	next := level + 1
	if skip > 0 {
		next = max(next, min(next+skip, depth-1))
	}
	return next
}
