package voronoi

import (
	"math/rand/v2"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/proteomap/pkg/geom"
)

func unitSquare() geom.Polygon {
	return geom.Rect(orb.Point{0, 0}, orb.Point{1, 1})
}

func totalArea(cells []geom.Polygon) float64 {
	var sum float64
	for _, c := range cells {
		sum += c.Area()
	}
	return sum
}

func TestPowerDiagramSingleSite(t *testing.T) {
	border := geom.DefaultBorder()
	cells := PowerDiagram([]Site{{Pos: orb.Point{3, 4}, Weight: 7}}, border, 0)
	require.Len(t, cells, 1)
	require.InDelta(t, border.Area(), cells[0].Area(), 1e-9)
}

func TestPowerDiagramEmpty(t *testing.T) {
	require.Empty(t, PowerDiagram(nil, unitSquare(), 0))

	cells := PowerDiagram([]Site{{}, {}}, geom.Polygon{}, 0)
	require.Len(t, cells, 2)
	require.True(t, cells[0].IsEmpty())
}

func TestPowerDiagramBisector(t *testing.T) {
	tests := []struct {
		name    string
		weights [2]float64
		want    float64
	}{
		{"equal weights", [2]float64{0, 0}, 0.5},
		{"heavier left", [2]float64{0.1, 0}, 0.6},
		{"heavier right", [2]float64{0, 0.1}, 0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sites := []Site{
				{Pos: orb.Point{0.25, 0.5}, Weight: tt.weights[0]},
				{Pos: orb.Point{0.75, 0.5}, Weight: tt.weights[1]},
			}
			cells := PowerDiagram(sites, unitSquare(), 1e-9)
			require.InDelta(t, tt.want, cells[0].Area(), 1e-9)
			require.InDelta(t, 1-tt.want, cells[1].Area(), 1e-9)
		})
	}
}

func TestPowerDiagramPartition(t *testing.T) {
	borders := map[string]geom.Polygon{
		"square": unitSquare(),
		"circle": geom.Regular(orb.Point{0.5, 0.5}, 0.5, 64),
	}
	for name, border := range borders {
		t.Run(name, func(t *testing.T) {
			rng := rand.New(rand.NewPCG(7, 11))
			for round := range 20 {
				n := 2 + round%15
				sites := make([]Site, n)
				for i := range sites {
					pt, ok := border.RandomPoint(rng, 1000)
					require.True(t, ok)
					sites[i] = Site{Pos: pt, Weight: rng.Float64() * 0.05}
				}
				cells := PowerDiagram(sites, border, 1e-9)
				require.Len(t, cells, n)
				require.InDelta(t, border.Area(), totalArea(cells), 1e-6)
				for _, c := range cells {
					require.GreaterOrEqual(t, c.Area(), 0.0)
				}
			}
		})
	}
}

func TestPowerDiagramCoincidentSites(t *testing.T) {
	p := orb.Point{0.5, 0.5}

	cells := PowerDiagram([]Site{{Pos: p, Weight: 1}, {Pos: p, Weight: 2}}, unitSquare(), 0)
	require.True(t, cells[0].IsEmpty())
	require.InDelta(t, 1.0, cells[1].Area(), 1e-9)

	// Ties go to the lower index.
	cells = PowerDiagram([]Site{{Pos: p, Weight: 1}, {Pos: p, Weight: 1}}, unitSquare(), 0)
	require.InDelta(t, 1.0, cells[0].Area(), 1e-9)
	require.True(t, cells[1].IsEmpty())
}

func TestPowerDiagramDominatedSite(t *testing.T) {
	sites := []Site{
		{Pos: orb.Point{0.5, 0.5}, Weight: 10},
		{Pos: orb.Point{0.51, 0.5}, Weight: 0},
	}
	cells := PowerDiagram(sites, unitSquare(), 1e-9)
	require.True(t, cells[1].IsEmpty())
	require.InDelta(t, 1.0, cells[0].Area(), 1e-9)
}
