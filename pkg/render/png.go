package render

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/matzehuels/proteomap/pkg/treemap"
)

// pixelsPerPoint converts the pixel size to vg lengths at 96 dpi.
const pixelsPerPoint = 96.0 / 72.0

// PNG rasterises m with gonum/plot. Labels are drawn when WithLabels is
// set.
func PNG(m *treemap.Map, opts ...Option) ([]byte, error) {
	r := newRenderer(opts...)
	f := newFrame(m, r.size)
	nodes := r.visible(m)
	colors := Palette(m)

	p := plot.New()
	p.HideAxes()
	if r.title != "" {
		p.Title.Text = r.title
	}
	p.X.Min, p.X.Max = f.bound.Min[0], f.bound.Max[0]
	p.Y.Min, p.Y.Max = f.bound.Min[1], f.bound.Max[1]

	for _, n := range nodes {
		xys := make(plotter.XYs, 0, len(n.Polygon.Vertices()))
		for _, v := range n.Polygon.Vertices() {
			xys = append(xys, plotter.XY{X: v[0], Y: v[1]})
		}
		poly, err := plotter.NewPolygon(xys)
		if err != nil {
			return nil, fmt.Errorf("cell %s: %w", n.Key(), err)
		}
		poly.Color = colors[n.Key()]
		poly.LineStyle.Color = color.White
		poly.LineStyle.Width = vg.Points(r.strokeWidth(len(n.Path)-1) / pixelsPerPoint)
		p.Add(poly)
	}

	if r.labels {
		leaf := leaves(nodes)
		var xys plotter.XYs
		var text []string
		for _, n := range nodes {
			if !leaf[n.Key()] || n.FracTotal < r.labelFrac {
				continue
			}
			c := n.Polygon.Centroid()
			xys = append(xys, plotter.XY{X: c[0], Y: c[1]})
			text = append(text, n.Label)
		}
		if len(xys) > 0 {
			labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: text})
			if err != nil {
				return nil, fmt.Errorf("labels: %w", err)
			}
			p.Add(labels)
		}
	}

	w := vg.Points(f.width / pixelsPerPoint)
	h := vg.Points(f.height / pixelsPerPoint)
	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, fmt.Errorf("png: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("png: %w", err)
	}
	return buf.Bytes(), nil
}
