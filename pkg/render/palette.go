package render

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/proteomap/pkg/treemap"
)

const (
	paletteChroma    = 0.45
	paletteLightness = 0.55
	lightnessStep    = 0.09
	hueSpread        = 0.6
)

// Palette assigns a color to every node, keyed by Node.Key. Top-level
// categories are spread evenly around the hue circle; descendants vary
// their hue inside the category's slice and get lighter with depth.
func Palette(m *treemap.Map) map[string]colorful.Color {
	type slice struct{ center, width float64 }
	hues := make(map[string]slice)

	var top []treemap.Node
	for _, n := range m.Nodes {
		if len(n.Path) == 1 {
			top = append(top, n)
		}
	}
	width := 360.0 / math.Max(float64(len(top)), 1)
	for i, n := range top {
		hues[n.Key()] = slice{center: float64(i) * width, width: width}
	}

	siblings := make(map[string][]string)
	for _, n := range m.Nodes {
		if len(n.Path) > 1 {
			parent := treemap.Node{Path: n.Parent()}.Key()
			siblings[parent] = append(siblings[parent], n.Key())
		}
	}

	colors := make(map[string]colorful.Color, len(m.Nodes))
	for _, n := range m.Nodes {
		depth := len(n.Path) - 1
		s, ok := hues[n.Key()]
		if !ok {
			parent, ok := hues[treemap.Node{Path: n.Parent()}.Key()]
			if !ok {
				continue
			}
			sib := siblings[treemap.Node{Path: n.Parent()}.Key()]
			idx := indexOf(sib, n.Key())
			w := parent.width * hueSpread / float64(len(sib))
			s = slice{center: parent.center - parent.width*hueSpread/2 + (float64(idx)+0.5)*w, width: w}
			hues[n.Key()] = s
		}
		l := math.Min(paletteLightness+lightnessStep*float64(depth), 0.92)
		colors[n.Key()] = colorful.Hcl(math.Mod(s.center+360, 360), paletteChroma, l).Clamped()
	}
	return colors
}

func indexOf(keys []string, k string) int {
	for i, s := range keys {
		if s == k {
			return i
		}
	}
	return 0
}
