package voronoi

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/matzehuels/proteomap/pkg/geom"
)

// AdaptPositions moves every site to the centroid of its cell (a Lloyd
// step) and then caps overweighted sites. Sites with empty cells stay put.
func AdaptPositions(sites []Site, cells []geom.Polygon) []Site {
	out := make([]Site, len(sites))
	for i, s := range sites {
		out[i] = s
		if !cells[i].IsEmpty() {
			out[i].Pos = cells[i].Centroid()
		}
	}
	LimitOverweight(out)
	return out
}

// AdaptWeights scales each weight by targetArea/currentArea, clamped to
// [1-stepLimit, 1+stepLimit]. Weights never drop below floor. targets are
// fractions of borderArea.
func AdaptWeights(sites []Site, cells []geom.Polygon, targets []float64, borderArea, stepLimit, floor float64) []Site {
	lo, hi := 1-stepLimit, 1+stepLimit
	out := make([]Site, len(sites))
	for i, s := range sites {
		want := targets[i] * borderArea
		cur := cells[i].Area()

		var ratio float64
		switch {
		case want <= 0:
			ratio = lo
		case cur <= 0:
			ratio = hi
		default:
			ratio = min(max(want/cur, lo), hi)
		}
		out[i] = Site{Pos: s.Pos, Weight: max(s.Weight*ratio, floor)}
	}
	LimitOverweight(out)
	return out
}

// LimitOverweight lowers weights so that no site's power reaches into a
// neighbour's position: whenever |pi-pj|² < wi - wj the heavier weight is
// set to |pi-pj|² + wj/2. Passes repeat until stable.
func LimitOverweight(sites []Site) {
	n := len(sites)
	for pass := 0; pass < n*n+1; pass++ {
		fixed := 0
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				heavy, light := i, j
				if sites[j].Weight > sites[i].Weight {
					heavy, light = j, i
				}
				d2 := dist2(sites[i].Pos, sites[j].Pos)
				if d2 < sites[heavy].Weight-sites[light].Weight {
					sites[heavy].Weight = d2 + sites[light].Weight/2
					fixed++
				}
			}
		}
		if fixed == 0 {
			return
		}
	}
}

// Discrepancy is Σ|area_i - target_i·A| / 2A for border area A. It is 0 for
// a perfect map and at most 1.
func Discrepancy(cells []geom.Polygon, targets []float64, borderArea float64) float64 {
	if borderArea <= 0 {
		return math.Inf(1)
	}
	diffs := make([]float64, len(cells))
	for i, c := range cells {
		diffs[i] = math.Abs(c.Area() - targets[i]*borderArea)
	}
	return floats.Sum(diffs) / (2 * borderArea)
}

// InitialWeights draws (0.8u + 0.2)·A/(2n) for each of n sites.
func InitialWeights(n int, borderArea float64, u func() float64) []float64 {
	w := make([]float64, n)
	if n == 0 {
		return w
	}
	base := borderArea / (2 * float64(n))
	for i := range w {
		w[i] = (0.8*u() + 0.2) * base
	}
	return w
}
