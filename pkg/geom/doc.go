// Package geom is the border and region model used by the treemap solver.
//
// A [Polygon] is a simple, counter-clockwise, closed [orb.Ring]. Borders of
// every recursion level and every power-diagram cell are Polygons; a cell
// that vanished during the layout is the empty Polygon, which is a valid
// value rather than an error.
//
// The package deliberately covers only what the layout loop needs: area,
// centroid, containment, clipping by a half-plane, and the affine moves used
// to bring reference seeds inside a border. Area, centroid and containment
// delegate to [github.com/paulmach/orb/planar].
package geom
