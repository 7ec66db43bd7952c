package geom

import "github.com/paulmach/orb"

// Default frame of the global border. Rendered maps use the same frame.
const (
	DefaultFrameSize = 1000.0
	DefaultSides     = 96
)

// BorderShape names a supported global border.
type BorderShape string

const (
	ShapeCircle BorderShape = "circle"
	ShapeSquare BorderShape = "square"
)

// DefaultBorder returns the level-0 border: a circle approximated by a
// regular polygon filling the default frame.
func DefaultBorder() Polygon {
	return Border(ShapeCircle, DefaultFrameSize)
}

// Border returns the global border of the given shape inscribed in a
// size × size frame with its lower-left corner at the origin. Unknown shapes
// fall back to a circle.
func Border(shape BorderShape, size float64) Polygon {
	if size <= 0 {
		size = DefaultFrameSize
	}
	half := size / 2
	switch shape {
	case ShapeSquare:
		return Rect(orb.Point{0, 0}, orb.Point{size, size})
	default:
		return Regular(orb.Point{half, half}, half, DefaultSides)
	}
}
