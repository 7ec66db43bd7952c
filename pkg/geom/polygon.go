package geom

import (
	"math"
	"math/rand/v2"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Polygon is a closed, counter-clockwise ring. The zero value is empty.
type Polygon struct {
	ring orb.Ring
}

// NewPolygon builds a polygon from vertices in either orientation. The ring
// may be open or closed; consecutive duplicates are removed. Fewer than three
// distinct vertices yield the empty polygon.
func NewPolygon(pts []orb.Point) Polygon {
	if len(pts) == 0 {
		return Polygon{}
	}
	tol := snapTolerance(pts)

	ring := make(orb.Ring, 0, len(pts)+1)
	for _, p := range pts {
		if n := len(ring); n > 0 && near(ring[n-1], p, tol) {
			continue
		}
		ring = append(ring, p)
	}
	for len(ring) > 1 && near(ring[0], ring[len(ring)-1], tol) {
		ring = ring[:len(ring)-1]
	}
	if len(ring) < 3 {
		return Polygon{}
	}
	ring = append(ring, ring[0])
	if ring.Orientation() == orb.CW {
		ring.Reverse()
	}
	return Polygon{ring: ring}
}

// FromOrb converts the outer ring of an orb polygon. Holes are ignored.
func FromOrb(p orb.Polygon) Polygon {
	if len(p) == 0 {
		return Polygon{}
	}
	return NewPolygon(p[0])
}

// Rect returns the axis-aligned rectangle spanning min and max.
func Rect(min, max orb.Point) Polygon {
	return NewPolygon([]orb.Point{
		{min[0], min[1]}, {max[0], min[1]}, {max[0], max[1]}, {min[0], max[1]},
	})
}

// Regular returns a regular n-gon inscribed in the circle of the given
// center and radius, starting at angle zero.
func Regular(center orb.Point, radius float64, n int) Polygon {
	if n < 3 || radius <= 0 {
		return Polygon{}
	}
	pts := make([]orb.Point, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = orb.Point{center[0] + radius*math.Cos(a), center[1] + radius*math.Sin(a)}
	}
	return NewPolygon(pts)
}

// IsEmpty reports whether the polygon has no interior.
func (p Polygon) IsEmpty() bool { return len(p.ring) < 4 }

// Ring returns a copy of the closed ring.
func (p Polygon) Ring() orb.Ring { return p.ring.Clone() }

// Orb returns the polygon as an orb.Polygon for encoding.
func (p Polygon) Orb() orb.Polygon {
	if p.IsEmpty() {
		return nil
	}
	return orb.Polygon{p.ring.Clone()}
}

// Vertices returns the distinct vertices in counter-clockwise order, without
// the closing point.
func (p Polygon) Vertices() []orb.Point {
	if p.IsEmpty() {
		return nil
	}
	out := make([]orb.Point, len(p.ring)-1)
	copy(out, p.ring)
	return out
}

// Area returns the enclosed area.
func (p Polygon) Area() float64 {
	if p.IsEmpty() {
		return 0
	}
	return planar.Area(p.ring)
}

// Centroid returns the area centroid. Zero-area slivers fall back to the
// mean of their vertices; the empty polygon returns the origin.
func (p Polygon) Centroid() orb.Point {
	if p.IsEmpty() {
		return orb.Point{}
	}
	if p.Area() <= areaEpsilon(p.Bound()) {
		return mean(p.Vertices())
	}
	c, _ := planar.CentroidArea(p.ring)
	return c
}

// Bound returns the bounding box.
func (p Polygon) Bound() orb.Bound {
	if p.IsEmpty() {
		return orb.Bound{}
	}
	return p.ring.Bound()
}

// Contains reports whether pt lies inside the polygon or on its boundary.
func (p Polygon) Contains(pt orb.Point) bool {
	if p.IsEmpty() {
		return false
	}
	return planar.RingContains(p.ring, pt)
}

// ContainsAll reports whether every point lies inside the polygon.
func (p Polygon) ContainsAll(pts []orb.Point) bool {
	for _, pt := range pts {
		if !p.Contains(pt) {
			return false
		}
	}
	return true
}

// ClipHalfPlane keeps the part of the polygon where n·x <= c.
// n need not be normalised. Points within tol (a distance) of the line
// count as on the line.
func (p Polygon) ClipHalfPlane(n orb.Point, c, tol float64) Polygon {
	if p.IsEmpty() {
		return p
	}
	norm := math.Hypot(n[0], n[1])
	if norm == 0 {
		// Degenerate constraint 0 <= c: all or nothing.
		if c >= -tol {
			return p
		}
		return Polygon{}
	}
	nx, ny, cc := n[0]/norm, n[1]/norm, c/norm

	v := p.Vertices()
	out := make([]orb.Point, 0, len(v)+2)
	inside := 0
	for i, cur := range v {
		next := v[(i+1)%len(v)]
		dc := nx*cur[0] + ny*cur[1] - cc
		dn := nx*next[0] + ny*next[1] - cc
		if dc <= tol {
			out = append(out, cur)
			inside++
		}
		if (dc < -tol && dn > tol) || (dc > tol && dn < -tol) {
			t := dc / (dc - dn)
			out = append(out, orb.Point{cur[0] + t*(next[0]-cur[0]), cur[1] + t*(next[1]-cur[1])})
		}
	}
	if inside == len(v) {
		return p
	}
	return NewPolygon(out)
}

// Translate moves the polygon by (dx, dy).
func (p Polygon) Translate(dx, dy float64) Polygon {
	v := p.Vertices()
	for i := range v {
		v[i] = orb.Point{v[i][0] + dx, v[i][1] + dy}
	}
	return NewPolygon(v)
}

// RandomPoint draws a uniform point inside the polygon by rejection
// sampling over its bound. It reports false after tries failed draws.
func (p Polygon) RandomPoint(rng *rand.Rand, tries int) (orb.Point, bool) {
	if p.IsEmpty() {
		return orb.Point{}, false
	}
	b := p.Bound()
	for range tries {
		pt := orb.Point{
			b.Min[0] + rng.Float64()*(b.Max[0]-b.Min[0]),
			b.Min[1] + rng.Float64()*(b.Max[1]-b.Min[1]),
		}
		if p.Contains(pt) {
			return pt, true
		}
	}
	return orb.Point{}, false
}

// Diagonal returns the length of the bounding-box diagonal.
func (p Polygon) Diagonal() float64 {
	return Diagonal(p.Bound())
}

// Diagonal returns the length of b's diagonal.
func Diagonal(b orb.Bound) float64 {
	return math.Hypot(b.Max[0]-b.Min[0], b.Max[1]-b.Min[1])
}

func near(a, b orb.Point, tol float64) bool {
	return math.Abs(a[0]-b[0]) <= tol && math.Abs(a[1]-b[1]) <= tol
}

func snapTolerance(pts []orb.Point) float64 {
	return 1e-12 * max(Diagonal(orb.MultiPoint(pts).Bound()), 1)
}

func areaEpsilon(b orb.Bound) float64 {
	d := Diagonal(b)
	return 1e-14 * d * d
}

func mean(pts []orb.Point) orb.Point {
	if len(pts) == 0 {
		return orb.Point{}
	}
	var sx, sy float64
	for _, p := range pts {
		sx += p[0]
		sy += p[1]
	}
	n := float64(len(pts))
	return orb.Point{sx / n, sy / n}
}
