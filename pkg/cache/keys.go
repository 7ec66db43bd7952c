package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey identifies the solved layout of one group.
	LayoutKey(inputHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies a rendered artifact of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds every option that changes a layout.
type LayoutKeyOpts struct {
	Hierarchy       []string           `json:"hierarchy"`
	Seed            uint64             `json:"seed"`
	Tolerance       float64            `json:"tolerance"`
	MaxSteps        int                `json:"max_steps"`
	MaxAttempts     int                `json:"max_attempts"`
	StepLimits      []float64          `json:"step_limits"`
	LabelStepLimits map[string]float64 `json:"label_step_limits,omitempty"`
	Unassigned      string             `json:"unassigned"`
	SkipLevels      int                `json:"skip_levels"`
	MaxChildren     int                `json:"max_children"`
	ShiftFraction   float64            `json:"shift_fraction"`
	Border          string             `json:"border"`
	BorderSize      float64            `json:"border_size"`
	ReferenceHash   string             `json:"reference_hash,omitempty"`
}

// ArtifactKeyOpts holds every option that changes a rendered artifact.
type ArtifactKeyOpts struct {
	Format    string  `json:"format"`
	Size      float64 `json:"size"`
	Labels    bool    `json:"labels"`
	LabelFrac float64 `json:"label_frac"`
	Depth     int     `json:"depth"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns layout:<sha256>.
func (DefaultKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", inputHash, opts)
}

// ArtifactKey returns artifact:<sha256>.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey returns prefix:sha256(json(parts)). Map fields marshal with
// sorted keys, so equal options give equal keys.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}
