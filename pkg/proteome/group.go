package proteome

import (
	"cmp"
	"fmt"
	"slices"
)

// Group is the set of records measured under one (dataset, condition).
type Group struct {
	Dataset    string
	Condition  string
	GrowthRate float64
	HasGrowth  bool
	Records    []Record
}

// Key identifies the group.
func (g Group) Key() string {
	return g.Dataset + "/" + g.Condition
}

// Growth formats the growth rate with two decimals, or "" when unknown.
func (g Group) Growth() string {
	if !g.HasGrowth {
		return ""
	}
	return fmt.Sprintf("%.2f", g.GrowthRate)
}

// TotalMass sums the mass of every record.
func (g Group) TotalMass() float64 {
	var sum float64
	for _, r := range g.Records {
		sum += r.Mass
	}
	return sum
}

// Groups splits the table by (dataset, condition), sorted by key. The
// growth rate of a group is taken from its first record that has one.
func (t *Table) Groups() []Group {
	byKey := make(map[[2]string]*Group)
	for _, r := range t.Records {
		k := [2]string{r.Dataset, r.Condition}
		g, ok := byKey[k]
		if !ok {
			g = &Group{Dataset: r.Dataset, Condition: r.Condition}
			byKey[k] = g
		}
		if !g.HasGrowth && r.HasGrowth {
			g.GrowthRate, g.HasGrowth = r.GrowthRate, true
		}
		g.Records = append(g.Records, r)
	}

	out := make([]Group, 0, len(byKey))
	for _, g := range byKey {
		out = append(out, *g)
	}
	slices.SortFunc(out, func(a, b Group) int {
		return cmp.Or(cmp.Compare(a.Dataset, b.Dataset), cmp.Compare(a.Condition, b.Condition))
	})
	return out
}
