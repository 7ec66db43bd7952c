package geom

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

func unitSquare() Polygon {
	return Rect(orb.Point{0, 0}, orb.Point{1, 1})
}

func TestNewPolygonNormalises(t *testing.T) {
	// Clockwise, closed, with a duplicated vertex.
	p := NewPolygon([]orb.Point{{0, 0}, {0, 1}, {0, 1}, {1, 1}, {1, 0}, {0, 0}})
	require.False(t, p.IsEmpty())
	require.Len(t, p.Vertices(), 4)
	require.Equal(t, orb.CCW, p.Ring().Orientation())
	require.True(t, p.Ring().Closed())
	require.InDelta(t, 1.0, p.Area(), 1e-12)
}

func TestNewPolygonDegenerate(t *testing.T) {
	require.True(t, NewPolygon(nil).IsEmpty())
	require.True(t, NewPolygon([]orb.Point{{0, 0}, {1, 1}}).IsEmpty())
	require.True(t, NewPolygon([]orb.Point{{0, 0}, {1, 1}, {1, 1}, {0, 0}}).IsEmpty())
	require.Zero(t, Polygon{}.Area())
	require.False(t, Polygon{}.Contains(orb.Point{0, 0}))
}

func TestCentroid(t *testing.T) {
	c := unitSquare().Centroid()
	require.InDelta(t, 0.5, c[0], 1e-12)
	require.InDelta(t, 0.5, c[1], 1e-12)

	tri := NewPolygon([]orb.Point{{0, 0}, {3, 0}, {0, 3}})
	c = tri.Centroid()
	require.InDelta(t, 1.0, c[0], 1e-12)
	require.InDelta(t, 1.0, c[1], 1e-12)
}

func TestClipHalfPlane(t *testing.T) {
	sq := unitSquare()

	// x <= 0.25
	left := sq.ClipHalfPlane(orb.Point{1, 0}, 0.25, 1e-12)
	require.InDelta(t, 0.25, left.Area(), 1e-12)

	// Scaling the constraint does not change the result.
	left2 := sq.ClipHalfPlane(orb.Point{4, 0}, 1, 1e-12)
	require.InDelta(t, left.Area(), left2.Area(), 1e-12)

	// Diagonal cut x + y <= 1 keeps half.
	half := sq.ClipHalfPlane(orb.Point{1, 1}, 1, 1e-12)
	require.InDelta(t, 0.5, half.Area(), 1e-12)

	// Fully inside and fully outside.
	require.InDelta(t, 1.0, sq.ClipHalfPlane(orb.Point{1, 0}, 5, 1e-12).Area(), 1e-12)
	require.True(t, sq.ClipHalfPlane(orb.Point{1, 0}, -5, 1e-12).IsEmpty())

	// Zero normal is all or nothing.
	require.False(t, sq.ClipHalfPlane(orb.Point{}, 1, 1e-12).IsEmpty())
	require.True(t, sq.ClipHalfPlane(orb.Point{}, -1, 1e-12).IsEmpty())
}

func TestClipComplementsPartition(t *testing.T) {
	circle := Regular(orb.Point{0, 0}, 1, 64)
	rng := rand.New(rand.NewPCG(1, 2))
	for range 50 {
		a := rng.Float64() * 2 * math.Pi
		n := orb.Point{math.Cos(a), math.Sin(a)}
		c := rng.Float64()*1.6 - 0.8
		in := circle.ClipHalfPlane(n, c, 1e-12)
		out := circle.ClipHalfPlane(orb.Point{-n[0], -n[1]}, -c, 1e-12)
		require.InDelta(t, circle.Area(), in.Area()+out.Area(), 1e-9)
	}
}

func TestRegularArea(t *testing.T) {
	p := Regular(orb.Point{0, 0}, 1, 360)
	require.InDelta(t, math.Pi, p.Area(), 1e-3)
	require.True(t, Regular(orb.Point{}, 1, 2).IsEmpty())
}

func TestTranslateAndContains(t *testing.T) {
	sq := unitSquare().Translate(2, 3)
	require.True(t, sq.Contains(orb.Point{2.5, 3.5}))
	require.False(t, sq.Contains(orb.Point{0.5, 0.5}))
	require.True(t, sq.ContainsAll([]orb.Point{{2.1, 3.1}, {2.9, 3.9}}))
	require.False(t, sq.ContainsAll([]orb.Point{{2.1, 3.1}, {9, 9}}))
}

func TestRandomPoint(t *testing.T) {
	tri := NewPolygon([]orb.Point{{0, 0}, {1, 0}, {0, 1}})
	rng := rand.New(rand.NewPCG(7, 7))
	for range 100 {
		pt, ok := tri.RandomPoint(rng, 100)
		require.True(t, ok)
		require.True(t, tri.Contains(pt))
	}
	_, ok := Polygon{}.RandomPoint(rng, 10)
	require.False(t, ok)
}

func TestPointHelpers(t *testing.T) {
	pts := []orb.Point{{0, 0}, {2, 2}}
	require.Equal(t, orb.Point{1, 1}, BoundCenter(pts))

	moved := TranslatePoints(pts, 1, -1)
	require.Equal(t, orb.Point{1, -1}, moved[0])
	require.Equal(t, orb.Point{0, 0}, pts[0], "input must not be mutated")

	scaled := ScalePoints(pts, orb.Point{1, 1}, 0.5)
	require.Equal(t, orb.Point{0.5, 0.5}, scaled[0])
	require.Equal(t, orb.Point{1.5, 1.5}, scaled[1])
}

func TestBorder(t *testing.T) {
	sq := Border(ShapeSquare, 10)
	require.InDelta(t, 100, sq.Area(), 1e-9)

	c := DefaultBorder()
	b := c.Bound()
	require.InDelta(t, 0, b.Min[0], 1e-9)
	require.InDelta(t, DefaultFrameSize, b.Max[0], 1e-9)
	ctr := c.Centroid()
	require.InDelta(t, DefaultFrameSize/2, ctr[0], 1e-6)
	require.InDelta(t, DefaultFrameSize/2, ctr[1], 1e-6)
}
