package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/matzehuels/proteomap/pkg/treemap"
)

// frame maps layout coordinates to pixels with y pointing down.
type frame struct {
	bound  orb.Bound
	scale  float64
	width  float64
	height float64
}

func newFrame(m *treemap.Map, size float64) frame {
	var b orb.Bound
	switch {
	case !m.Border.IsEmpty():
		b = m.Border.Bound()
	case len(m.Nodes) > 0:
		b = m.Nodes[0].Polygon.Bound()
		for _, n := range m.Nodes[1:] {
			b = b.Union(n.Polygon.Bound())
		}
	default:
		b = orb.Bound{Max: orb.Point{1, 1}}
	}
	span := math.Max(b.Max[0]-b.Min[0], b.Max[1]-b.Min[1])
	if span <= 0 {
		span = 1
	}
	s := size / span
	return frame{bound: b, scale: s, width: (b.Max[0] - b.Min[0]) * s, height: (b.Max[1] - b.Min[1]) * s}
}

func (f frame) point(p orb.Point) (float64, float64) {
	return (p[0] - f.bound.Min[0]) * f.scale, (f.bound.Max[1] - p[1]) * f.scale
}

// SVG renders m as a standalone SVG document.
func SVG(m *treemap.Map, opts ...Option) []byte {
	r := newRenderer(opts...)
	f := newFrame(m, r.size)
	nodes := r.visible(m)
	colors := Palette(m)
	leaf := leaves(nodes)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		f.width, f.height, f.width, f.height)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(r.title))
	}

	// Fill deepest cells last so they sit on top; outlines of coarse
	// levels are drawn again at the end.
	for _, n := range nodes {
		c := colors[n.Key()]
		fmt.Fprintf(&buf, `  <path id="cell-%s" class="cell level-%d" d="%s" fill="%s" stroke="#ffffff" stroke-width="%.2f"/>`+"\n",
			escapeXML(cellID(n)), n.Level, pathData(f, n), c.Hex(), r.strokeWidth(len(n.Path)-1))
	}
	for _, n := range nodes {
		if len(n.Path) == 1 {
			fmt.Fprintf(&buf, `  <path class="outline" d="%s" fill="none" stroke="#ffffff" stroke-width="%.2f"/>`+"\n",
				pathData(f, n), r.stroke)
		}
	}

	if r.labels {
		for _, n := range nodes {
			if !leaf[n.Key()] || n.FracTotal < r.labelFrac {
				continue
			}
			renderLabel(&buf, f, n)
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func pathData(f frame, n treemap.Node) string {
	var b bytes.Buffer
	for i, p := range n.Polygon.Vertices() {
		x, y := f.point(p)
		if i == 0 {
			fmt.Fprintf(&b, "M%.2f,%.2f", x, y)
		} else {
			fmt.Fprintf(&b, " L%.2f,%.2f", x, y)
		}
	}
	b.WriteString(" Z")
	return b.String()
}

func renderLabel(buf *bytes.Buffer, f frame, n treemap.Node) {
	x, y := f.point(n.Polygon.Centroid())
	side := math.Sqrt(n.Polygon.Area()) * f.scale
	size := math.Min(math.Max(side*0.12, 6), 24)
	label := truncate(n.Label, side, size)
	fmt.Fprintf(buf, `  <text x="%.2f" y="%.2f" font-size="%.1f" text-anchor="middle" dominant-baseline="middle" font-family="Helvetica, Arial, sans-serif" fill="#222222">%s</text>`+"\n",
		x, y, size, escapeXML(label))
}

func truncate(label string, width, fontSize float64) string {
	maxChars := int(width / (fontSize * 0.6))
	if maxChars < 3 {
		maxChars = 3
	}
	r := []rune(label)
	if len(r) <= maxChars {
		return label
	}
	return string(r[:maxChars-2]) + ".."
}

func cellID(n treemap.Node) string {
	var b bytes.Buffer
	for i, p := range n.Path {
		if i > 0 {
			b.WriteByte('.')
		}
		for _, c := range p {
			switch {
			case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
				b.WriteRune(c)
			default:
				b.WriteByte('_')
			}
		}
	}
	return b.String()
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
