package voronoi

import (
	"math/rand/v2"

	"github.com/paulmach/orb"

	"github.com/matzehuels/proteomap/pkg/geom"
)

// Reference holds previously solved cells keyed by label. It is scoped by
// the caller to one level and one parent.
type Reference map[string]geom.Polygon

// SeedOptions configures initial site placement.
type SeedOptions struct {
	// RandomShift jitters every seed so repeated attempts do not restart
	// from the same configuration.
	RandomShift bool

	// ShiftFraction bounds the jitter as a fraction of the border diagonal.
	ShiftFraction float64
}

// DefaultShiftFraction is the jitter bound used when ShiftFraction is zero.
const DefaultShiftFraction = 0.05

const (
	randomPointTries = 1000
	maxShrinkRounds  = 200
	shrinkFactor     = 0.9
)

// Seeder produces initial site positions for one attempt.
type Seeder func(rng *rand.Rand) ([]orb.Point, error)

// FindCentroids returns one seed per label: the centroid of the label's
// reference cell when known, otherwise a random point inside border.
func FindCentroids(ref Reference, labels []string, border geom.Polygon, rng *rand.Rand, opts SeedOptions) []orb.Point {
	shift := opts.ShiftFraction
	if shift <= 0 {
		shift = DefaultShiftFraction
	}
	jitter := shift * border.Diagonal()

	pts := make([]orb.Point, len(labels))
	for i, label := range labels {
		if cell, ok := ref[label]; ok && !cell.IsEmpty() {
			pts[i] = cell.Centroid()
		} else {
			pts[i] = randomInside(border, rng)
		}
		if opts.RandomShift {
			pts[i] = orb.Point{
				pts[i][0] + (2*rng.Float64()-1)*jitter,
				pts[i][1] + (2*rng.Float64()-1)*jitter,
			}
		}
	}
	return pts
}

// FitInside brings seeds inside border. If any seed is outside, all seeds
// are translated by offset and then shrunk by 0.9 about their bounding-box
// center until they fit. Seeds that still do not fit are redrawn at random
// inside the border.
func FitInside(pts []orb.Point, border geom.Polygon, offset orb.Point, rng *rand.Rand) []orb.Point {
	if border.ContainsAll(pts) {
		return pts
	}
	pts = geom.TranslatePoints(pts, offset[0], offset[1])
	for range maxShrinkRounds {
		if border.ContainsAll(pts) {
			return pts
		}
		pts = geom.ScalePoints(pts, geom.BoundCenter(pts), shrinkFactor)
	}
	for i, p := range pts {
		if !border.Contains(p) {
			pts[i] = randomInside(border, rng)
		}
	}
	return pts
}

// ReferenceSeeder combines FindCentroids and FitInside. parent is the
// reference cell that played the role of border when ref was solved; the
// seeds are recentered from its centroid to the border's.
func ReferenceSeeder(ref Reference, labels []string, border, parent geom.Polygon, opts SeedOptions) Seeder {
	var offset orb.Point
	if !parent.IsEmpty() {
		bc, pc := border.Centroid(), parent.Centroid()
		offset = orb.Point{bc[0] - pc[0], bc[1] - pc[1]}
	}
	return func(rng *rand.Rand) ([]orb.Point, error) {
		pts := FindCentroids(ref, labels, border, rng, opts)
		return FitInside(pts, border, offset, rng), nil
	}
}

func randomInside(border geom.Polygon, rng *rand.Rand) orb.Point {
	if pt, ok := border.RandomPoint(rng, randomPointTries); ok {
		return pt
	}
	return border.Centroid()
}
