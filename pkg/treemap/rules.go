package treemap

import "github.com/matzehuels/proteomap/pkg/voronoi"

// DefaultUnassigned is the label of proteins without a category.
const DefaultUnassigned = "Not Assigned"

// Rules tune how the hierarchy is shaped and solved.
type Rules struct {
	// Unassigned is the label whose children skip levels. Empty labels in
	// the input are mapped to it.
	Unassigned string `toml:"unassigned" yaml:"unassigned" json:"unassigned"`

	// SkipLevels is how many levels an Unassigned node skips. 0 disables
	// the rule.
	SkipLevels int `toml:"skip_levels" yaml:"skip_levels" json:"skip_levels"`

	// StepLimits is the solver step limit per hierarchy level. Deeper
	// levels reuse the last entry.
	StepLimits []float64 `toml:"step_limits" yaml:"step_limits" json:"step_limits"`

	// LabelStepLimits overrides the step limit for the children of a
	// parent label.
	LabelStepLimits map[string]float64 `toml:"label_step_limits" yaml:"label_step_limits" json:"label_step_limits"`

	// MaxChildren keeps only the heaviest children of each node (0 keeps
	// all).
	MaxChildren int `toml:"max_children" yaml:"max_children" json:"max_children"`
}

// DefaultRules returns the rules used for COG hierarchies.
func DefaultRules() Rules {
	return Rules{
		Unassigned: DefaultUnassigned,
		SkipLevels: 1,
		StepLimits: []float64{0.5, 0.35, 0.25},
		LabelStepLimits: map[string]float64{
			"information storage and processing": 0.5,
		},
	}
}

// StepLimit returns the step limit for solving the children, at level, of
// the node labelled parent.
func (r Rules) StepLimit(level int, parent string) float64 {
	if v, ok := r.LabelStepLimits[parent]; ok && v > 0 {
		return v
	}
	if len(r.StepLimits) == 0 {
		return voronoi.DefaultStepLimit
	}
	return r.StepLimits[min(max(level, 0), len(r.StepLimits)-1)]
}

// skip reports how many extra levels the children of label jump.
func (r Rules) skip(label string) int {
	if r.SkipLevels > 0 && r.Unassigned != "" && label == r.Unassigned {
		return r.SkipLevels
	}
	return 0
}
