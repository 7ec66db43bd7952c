package voronoi

import (
	"cmp"
	"math"
	"slices"

	"github.com/paulmach/orb"

	"github.com/matzehuels/proteomap/pkg/geom"
)

// Site is a generator of the power diagram.
type Site struct {
	Pos    orb.Point
	Weight float64
}

// DefaultEpsilon is the relative tolerance used for clipping and for
// detecting coincident sites.
const DefaultEpsilon = 1e-7

// PowerDiagram returns one cell per site, index-aligned with sites, clipped
// to border. Cells of dominated sites are empty.
//
// eps is relative to the border's diagonal. Sites closer than that are
// coincident: the heavier one (or the lower index on ties) keeps the region.
func PowerDiagram(sites []Site, border geom.Polygon, eps float64) []geom.Polygon {
	cells := make([]geom.Polygon, len(sites))
	if len(sites) == 0 || border.IsEmpty() {
		return cells
	}
	if len(sites) == 1 {
		cells[0] = border
		return cells
	}
	if eps <= 0 {
		eps = DefaultEpsilon
	}
	diag := border.Diagonal()
	tol := eps * diag
	coincident := tol * tol

	wmax := math.Inf(-1)
	for _, s := range sites {
		wmax = max(wmax, s.Weight)
	}

	order := make([]int, len(sites))
	for i := range sites {
		cells[i] = powerCell(i, sites, border, order, wmax, tol, coincident)
	}
	return cells
}

func powerCell(i int, sites []Site, border geom.Polygon, order []int, wmax, tol, coincident float64) geom.Polygon {
	si := sites[i]
	order = order[:0]
	for j := range sites {
		if j != i {
			order = append(order, j)
		}
	}
	slices.SortFunc(order, func(a, b int) int {
		return cmp.Compare(dist2(si.Pos, sites[a].Pos), dist2(si.Pos, sites[b].Pos))
	})

	cell := border
	reach := maxDist(cell, si.Pos)
	for _, j := range order {
		sj := sites[j]
		d2 := dist2(si.Pos, sj.Pos)

		if d2 < coincident {
			if sj.Weight > si.Weight || (sj.Weight == si.Weight && j < i) {
				return geom.Polygon{}
			}
			continue
		}

		// No remaining site can cut the cell once even the heaviest one,
		// placed at this distance, loses everywhere inside reach.
		if d := math.Sqrt(d2); d > reach {
			if gap := d - reach; gap*gap-wmax >= reach*reach-si.Weight {
				break
			}
		}

		// |x-pi|² - wi <= |x-pj|² - wj  <=>  2x·(pj-pi) <= |pj|² - |pi|² - wj + wi
		n := orb.Point{2 * (sj.Pos[0] - si.Pos[0]), 2 * (sj.Pos[1] - si.Pos[1])}
		c := norm2(sj.Pos) - norm2(si.Pos) - sj.Weight + si.Weight
		cell = cell.ClipHalfPlane(n, c, tol)
		if cell.IsEmpty() {
			return cell
		}
		reach = maxDist(cell, si.Pos)
	}
	return cell
}

func maxDist(p geom.Polygon, from orb.Point) float64 {
	var r float64
	for _, v := range p.Vertices() {
		r = max(r, dist2(v, from))
	}
	return math.Sqrt(r)
}

func dist2(a, b orb.Point) float64 {
	dx, dy := a[0]-b[0], a[1]-b[1]
	return dx*dx + dy*dy
}

func norm2(a orb.Point) float64 { return a[0]*a[0] + a[1]*a[1] }
