package geom

import "github.com/paulmach/orb"

// TranslatePoints returns pts moved by (dx, dy).
func TranslatePoints(pts []orb.Point, dx, dy float64) []orb.Point {
	out := make([]orb.Point, len(pts))
	for i, p := range pts {
		out[i] = orb.Point{p[0] + dx, p[1] + dy}
	}
	return out
}

// ScalePoints returns pts scaled by f about origin.
func ScalePoints(pts []orb.Point, origin orb.Point, f float64) []orb.Point {
	out := make([]orb.Point, len(pts))
	for i, p := range pts {
		out[i] = orb.Point{origin[0] + f*(p[0]-origin[0]), origin[1] + f*(p[1]-origin[1])}
	}
	return out
}

// BoundCenter returns the center of the bounding box of pts.
func BoundCenter(pts []orb.Point) orb.Point {
	if len(pts) == 0 {
		return orb.Point{}
	}
	return orb.MultiPoint(pts).Bound().Center()
}
