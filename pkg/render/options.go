package render

import "github.com/matzehuels/proteomap/pkg/treemap"

// Defaults.
const (
	DefaultSize       = 1000.0
	DefaultLabelFrac  = 0.01
	DefaultStrokeBase = 3.0
)

// Option configures rendering.
type Option func(*renderer)

type renderer struct {
	size      float64
	labels    bool
	labelFrac float64
	maxLevel  int
	stroke    float64
	title     string
}

// WithSize sets the longer side of the output in pixels.
func WithSize(px float64) Option { return func(r *renderer) { r.size = px } }

// WithLabels labels leaf cells holding at least frac of the total mass.
func WithLabels(frac float64) Option {
	return func(r *renderer) { r.labels, r.labelFrac = true, frac }
}

// WithMaxLevel hides cells below level.
func WithMaxLevel(level int) Option { return func(r *renderer) { r.maxLevel = level } }

// WithStroke sets the outline width of top-level cells; deeper cells get
// thinner lines.
func WithStroke(w float64) Option { return func(r *renderer) { r.stroke = w } }

// WithTitle adds a title.
func WithTitle(s string) Option { return func(r *renderer) { r.title = s } }

func newRenderer(opts ...Option) renderer {
	r := renderer{size: DefaultSize, labelFrac: DefaultLabelFrac, maxLevel: -1, stroke: DefaultStrokeBase}
	for _, opt := range opts {
		opt(&r)
	}
	if r.size <= 0 {
		r.size = DefaultSize
	}
	return r
}

func (r renderer) visible(m *treemap.Map) []treemap.Node {
	out := make([]treemap.Node, 0, len(m.Nodes))
	for _, n := range m.Nodes {
		if r.maxLevel < 0 || n.Level <= r.maxLevel {
			out = append(out, n)
		}
	}
	return out
}

// leaves reports which visible nodes have no visible children.
func leaves(nodes []treemap.Node) map[string]bool {
	parents := make(map[string]bool)
	for _, n := range nodes {
		if len(n.Path) > 1 {
			parents[treemap.Node{Path: n.Parent()}.Key()] = true
		}
	}
	out := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		out[n.Key()] = !parents[n.Key()]
	}
	return out
}

func (r renderer) strokeWidth(depth int) float64 {
	return r.stroke / float64(depth+1)
}
