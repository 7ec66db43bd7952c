package treemap

import (
	"context"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/proteomap/pkg/geom"
	"github.com/matzehuels/proteomap/pkg/voronoi"
)

func buildSample(t *testing.T, opts Options) *Map {
	t.Helper()
	root, err := BuildTree(hier, sampleItems(), DefaultRules())
	require.NoError(t, err)
	m, err := Build(context.Background(), root, geom.DefaultBorder(), nil, opts)
	require.NoError(t, err)
	return m
}

func areaOf(nodes []Node) float64 {
	var sum float64
	for _, n := range nodes {
		sum += n.Polygon.Area()
	}
	return sum
}

func TestBuild(t *testing.T) {
	m := buildSample(t, Options{Seed: 1})
	border := geom.DefaultBorder()

	require.Empty(t, m.Skipped)
	require.Len(t, m.Level(0), 3)
	require.Len(t, m.Level(1), 3)
	require.Len(t, m.Level(2), 7)
	require.InDelta(t, border.Area(), areaOf(m.Level(0)), 1e-4*border.Area())

	// Every parent is partitioned by its children.
	for _, parent := range m.Nodes {
		var children []Node
		for _, n := range m.Nodes {
			if len(n.Path) == len(parent.Path)+1 && slices.Equal(n.Parent(), parent.Path) {
				children = append(children, n)
			}
		}
		if len(children) == 0 {
			continue
		}
		require.InDelta(t, parent.Polygon.Area(), areaOf(children), 1e-4*parent.Polygon.Area(), parent.Key())
	}

	na, ok := m.Find([]string{"Not Assigned", "yaaA"})
	require.True(t, ok)
	require.Equal(t, 2, na.Level)
	require.InDelta(t, 0.1, na.FracTotal, 1e-12)
}

func TestBuildDeterministic(t *testing.T) {
	a := buildSample(t, Options{Seed: 7})
	b := buildSample(t, Options{Seed: 7, Concurrency: 4})

	require.Equal(t, len(a.Nodes), len(b.Nodes))
	for i := range a.Nodes {
		require.Equal(t, a.Nodes[i].Path, b.Nodes[i].Path)
		require.Equal(t, a.Nodes[i].Polygon.Vertices(), b.Nodes[i].Polygon.Vertices())
	}
}

func TestBuildUnsolvedBranchDropsSubtree(t *testing.T) {
	opts := Options{Seed: 3}
	opts.solve = func(ctx context.Context, border geom.Polygon, targets []float64, seeder voronoi.Seeder, o voronoi.Options) (*voronoi.Result, error) {
		if o.Seed == BranchSeed(3, []string{"metabolism"}) {
			return nil, voronoi.ErrUnsolved
		}
		return voronoi.Solve(ctx, border, targets, seeder, o)
	}
	m := buildSample(t, opts)

	_, ok := m.Find([]string{"metabolism"})
	require.True(t, ok, "the parent itself is kept")
	for _, n := range m.Nodes {
		if len(n.Path) > 1 {
			require.NotEqual(t, "metabolism", n.Path[0], n.Key())
		}
	}
	_, ok = m.Find([]string{"information", "ribosome", "rpsA"})
	require.True(t, ok, "siblings are laid out")

	require.Len(t, m.Skipped, 1)
	require.Equal(t, []string{"metabolism"}, m.Skipped[0].Path)
	require.Equal(t, ReasonUnsolved, m.Skipped[0].Reason)
}

func TestBuildTopLevelUnsolved(t *testing.T) {
	opts := Options{}
	opts.solve = func(context.Context, geom.Polygon, []float64, voronoi.Seeder, voronoi.Options) (*voronoi.Result, error) {
		return nil, voronoi.ErrUnsolved
	}
	m := buildSample(t, opts)
	require.Empty(t, m.Nodes)
	require.Len(t, m.Skipped, 1)
	require.Equal(t, 0, m.Skipped[0].Level)
	require.Empty(t, m.Skipped[0].Path)
}

func TestBuildCanceled(t *testing.T) {
	root, err := BuildTree(hier, sampleItems(), DefaultRules())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Build(ctx, root, geom.DefaultBorder(), nil, Options{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestBuildWithReference(t *testing.T) {
	ref := buildSample(t, Options{Seed: 11})
	root, err := BuildTree(hier, sampleItems(), DefaultRules())
	require.NoError(t, err)

	m, err := Build(context.Background(), root, geom.DefaultBorder(), ref, Options{Seed: 12})
	require.NoError(t, err)
	require.Len(t, m.Nodes, len(ref.Nodes))
}

func TestBuildShiftOption(t *testing.T) {
	ref := buildSample(t, Options{Seed: 11})
	root, err := BuildTree(hier, sampleItems(), DefaultRules())
	require.NoError(t, err)

	// firstSeeds returns the level-0 seeds of two attempts.
	firstSeeds := func(opts Options) ([]orb.Point, []orb.Point) {
		var a, b []orb.Point
		opts.solve = func(ctx context.Context, border geom.Polygon, targets []float64, seeder voronoi.Seeder, o voronoi.Options) (*voronoi.Result, error) {
			if a == nil {
				var err error
				a, err = seeder(rand.New(rand.NewPCG(1, 1)))
				require.NoError(t, err)
				b, err = seeder(rand.New(rand.NewPCG(2, 2)))
				require.NoError(t, err)
			}
			return voronoi.Solve(ctx, border, targets, seeder, o)
		}
		_, err := Build(context.Background(), root, geom.DefaultBorder(), ref, opts)
		require.NoError(t, err)
		return a, b
	}

	a, b := firstSeeds(Options{Seed: 12})
	require.NotEqual(t, a, b, "attempts are jittered by default")

	a, b = firstSeeds(Options{Seed: 12, NoShift: true})
	require.Equal(t, a, b, "NoShift keeps the reference seeds")

	opts := Options{NoShift: true}
	opts.SetDefaults()
	require.False(t, opts.seeding().RandomShift)
}

func TestMapScope(t *testing.T) {
	sq := func(x float64) geom.Polygon { return geom.Rect(orb.Point{x, 0}, orb.Point{x + 1, 1}) }
	m := &Map{
		Border: sq(100),
		Nodes: []Node{
			{Level: 0, Path: []string{"a"}, Label: "a", Polygon: sq(0)},
			{Level: 0, Path: []string{"b"}, Label: "b", Polygon: sq(1)},
			{Level: 1, Path: []string{"a", "x"}, Label: "x", Polygon: sq(2)},
			{Level: 1, Path: []string{"b", "y"}, Label: "y", Polygon: sq(3)},
		},
	}

	ref, parent := m.Scope(0, nil)
	require.Len(t, ref, 2)
	require.Equal(t, m.Border, parent)

	ref, parent = m.Scope(1, []string{"a"})
	require.Len(t, ref, 1)
	require.Contains(t, ref, "x")
	require.Equal(t, sq(0), parent)

	// Different path, same parent label.
	ref, parent = m.Scope(1, []string{"other", "b"})
	require.Len(t, ref, 1)
	require.Contains(t, ref, "y")
	require.Equal(t, sq(1), parent)

	var nilMap *Map
	ref, parent = nilMap.Scope(0, nil)
	require.Empty(t, ref)
	require.True(t, parent.IsEmpty())
}

func TestBranchSeed(t *testing.T) {
	require.Equal(t, BranchSeed(1, []string{"a", "b"}), BranchSeed(1, []string{"a", "b"}))
	require.NotEqual(t, BranchSeed(1, []string{"a", "b"}), BranchSeed(1, []string{"ab"}))
	require.NotEqual(t, BranchSeed(1, []string{"a"}), BranchSeed(2, []string{"a"}))
}
