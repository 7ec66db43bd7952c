// Package pipeline provides the proteomap batch pipeline.
//
// This package implements the complete load → layout → render pipeline used
// by the CLI. By centralizing this logic, every command applies the same
// defaults, cache keys and output naming.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Parse the abundance table, refine COG categories and split it
//     into (dataset, condition) groups
//  2. Layout: Solve the nested power diagram of each group
//  3. Render: Write the GeoJSON layout and the requested SVG/PNG images
//
// Groups are independent and are laid out concurrently.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	opts := pipeline.FromConfig(cfg)
//	opts.Input = "proteins.csv"
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, out := range result.Outputs {
//	    fmt.Println(out.Files["geojson"])
//	}
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/proteomap/pkg/cache"
	"github.com/matzehuels/proteomap/pkg/config"
	perrors "github.com/matzehuels/proteomap/pkg/errors"
	"github.com/matzehuels/proteomap/pkg/geom"
	"github.com/matzehuels/proteomap/pkg/proteome"
	"github.com/matzehuels/proteomap/pkg/treemap"
	"github.com/matzehuels/proteomap/pkg/voronoi"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultConcurrency is the number of groups laid out at once.
	DefaultConcurrency = 2

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(1)

	// DefaultLayoutTTL bounds how long a cached layout is reused.
	DefaultLayoutTTL = 30 * 24 * time.Hour

	// DefaultArtifactTTL bounds how long a cached image is reused.
	DefaultArtifactTTL = 7 * 24 * time.Hour
)

// Format constants for output files.
const (
	FormatGeoJSON = "geojson"
	FormatSVG     = config.FormatSVG
	FormatPNG     = config.FormatPNG
)

// ValidFormats is the set of supported render formats.
var ValidFormats = map[string]bool{
	FormatSVG: true,
	FormatPNG: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
type Options struct {
	// Load options
	Input       string          `json:"input"`
	Hierarchy   []string        `json:"hierarchy"`
	Datasets    []string        `json:"datasets,omitempty"`
	Refine      bool            `json:"refine,omitempty"`
	RefineRules *proteome.Rules `json:"refine_rules,omitempty"`

	// Layout options
	Reference         string          `json:"reference,omitempty"`
	Seed              uint64          `json:"seed"`
	Solver            voronoi.Options `json:"solver"`
	ShiftFraction     float64         `json:"shift_fraction,omitempty"`
	Rules             treemap.Rules   `json:"rules"`
	BorderShape       string          `json:"border_shape,omitempty"`
	BorderSize        float64         `json:"border_size,omitempty"`
	Concurrency       int             `json:"concurrency,omitempty"`
	BranchConcurrency int             `json:"branch_concurrency,omitempty"`
	Refresh           bool            `json:"refresh,omitempty"`

	// Render options
	OutputDir string   `json:"output_dir"`
	Formats   []string `json:"formats,omitempty"`
	Size      float64  `json:"size,omitempty"`
	Labels    bool     `json:"labels,omitempty"`
	LabelFrac float64  `json:"label_frac,omitempty"`

	// Depth is the number of levels drawn; 0 draws all.
	Depth int `json:"depth,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// Progress, when set, is called after each group is written with the
	// number of groups done so far. Calls are serialised.
	Progress func(done, total int, out Output) `json:"-"`
}

// FromConfig converts a loaded configuration into options.
func FromConfig(c *config.Config) Options {
	opts := Options{
		Hierarchy: slices.Clone(c.Hierarchy),
		Datasets:  slices.Clone(c.Datasets),
		Refine:    c.Refine.Enabled,
		Reference: c.Reference,
		Seed:      c.Seed,
		Solver: voronoi.Options{
			Tolerance:   c.Solver.Tolerance,
			MaxSteps:    c.Solver.MaxSteps,
			MaxAttempts: c.Solver.MaxAttempts,
			Epsilon:     c.Solver.Epsilon,
		},
		ShiftFraction: c.Solver.ShiftFraction,
		Rules:         c.Layout,
		BorderShape:   c.Border.Shape,
		BorderSize:    c.Border.Size,
		Concurrency:   c.Concurrency,
		OutputDir:     c.Output,
		Formats:       slices.Clone(c.Render.Formats),
		Size:          c.Render.Size,
		Labels:        c.Render.Labels,
		LabelFrac:     c.Render.LabelFrac,
		Depth:         c.Render.Depth,
	}
	if c.Refine.Enabled {
		rules := c.RefineRules()
		opts.RefineRules = &rules
	}
	return opts
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Outputs holds one entry per (dataset, condition) group, sorted by
	// group key.
	Outputs []Output

	// Stats contains timing and size information.
	Stats Stats
}

// Output describes the layout of one group.
type Output struct {
	Dataset   string
	Condition string
	Growth    string

	Map *treemap.Map

	// Files maps each written format to its path.
	Files map[string]string

	// CacheHit reports whether the layout came from the cache.
	CacheHit bool

	Duration time.Duration
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Records     int
	SkippedRows int
	Relabelled  int
	Dropped     int
	Groups      int
	Nodes       int
	Skipped     int
	CacheHits   int
	LoadTime    time.Duration
	LayoutTime  time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a render format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return perrors.New(perrors.ErrCodeInvalidConfig, "invalid format: %q (must be one of: svg, png)", format)
	}
	return nil
}

// ValidateFormats checks that all render formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateBorder checks that shape names a supported border.
func ValidateBorder(shape string) error {
	switch geom.BorderShape(shape) {
	case geom.ShapeCircle, geom.ShapeSquare:
		return nil
	}
	return perrors.New(perrors.ErrCodeInvalidConfig, "invalid border: %q (must be one of: circle, square)", shape)
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills zero values. It is idempotent.
func (o *Options) SetDefaults() {
	if len(o.Hierarchy) == 0 {
		o.Hierarchy = slices.Clone(config.Default().Hierarchy)
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Rules.Unassigned == "" && len(o.Rules.StepLimits) == 0 && o.Rules.LabelStepLimits == nil {
		o.Rules = treemap.DefaultRules()
	}
	if o.BorderShape == "" {
		o.BorderShape = string(geom.ShapeCircle)
	}
	if o.BorderSize <= 0 {
		o.BorderSize = geom.DefaultFrameSize
	}
	if o.ShiftFraction <= 0 {
		o.ShiftFraction = voronoi.DefaultShiftFraction
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.BranchConcurrency <= 0 {
		o.BranchConcurrency = 1
	}
	if o.OutputDir == "" {
		o.OutputDir = "."
	}
	if o.Size <= 0 {
		o.Size = o.BorderSize
	}
	if o.Refine && o.RefineRules == nil {
		rules := proteome.DefaultRules()
		o.RefineRules = &rules
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.Solver.SetDefaults()
}

// Validate applies defaults and checks the settings needed by Execute.
func (o *Options) Validate() error {
	o.SetDefaults()
	if o.Input == "" {
		return perrors.New(perrors.ErrCodeInvalidInput, "input table is required")
	}
	return o.ValidateForRender()
}

// ValidateForRender checks the settings needed to lay out and render an
// existing table or map.
func (o *Options) ValidateForRender() error {
	o.SetDefaults()
	if err := perrors.ValidateHierarchy(o.Hierarchy); err != nil {
		return err
	}
	if err := ValidateBorder(o.BorderShape); err != nil {
		return err
	}
	if o.LabelFrac < 0 || o.LabelFrac > 1 {
		return perrors.New(perrors.ErrCodeInvalidConfig, "label fraction must be in [0, 1], got %g", o.LabelFrac)
	}
	return ValidateFormats(o.Formats)
}

// Border returns the level-0 border.
func (o *Options) Border() geom.Polygon {
	return geom.Border(geom.BorderShape(o.BorderShape), o.BorderSize)
}

// TreemapOptions returns the options passed to treemap.Build.
func (o *Options) TreemapOptions() treemap.Options {
	rules := o.Rules
	solver := o.Solver
	solver.Logger = o.Logger
	return treemap.Options{
		Solver:        solver,
		ShiftFraction: o.ShiftFraction,
		Rules:         &rules,
		Seed:          o.Seed,
		Concurrency:   o.BranchConcurrency,
		Logger:        o.Logger,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts(referenceHash string) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Hierarchy:       o.Hierarchy,
		Seed:            o.Seed,
		Tolerance:       o.Solver.Tolerance,
		MaxSteps:        o.Solver.MaxSteps,
		MaxAttempts:     o.Solver.MaxAttempts,
		StepLimits:      o.Rules.StepLimits,
		LabelStepLimits: o.Rules.LabelStepLimits,
		Unassigned:      o.Rules.Unassigned,
		SkipLevels:      o.Rules.SkipLevels,
		MaxChildren:     o.Rules.MaxChildren,
		ShiftFraction:   o.ShiftFraction,
		Border:          o.BorderShape,
		BorderSize:      o.BorderSize,
		ReferenceHash:   referenceHash,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:    format,
		Size:      o.Size,
		Labels:    o.Labels,
		LabelFrac: o.LabelFrac,
		Depth:     o.Depth,
	}
}
