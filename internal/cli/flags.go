package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/proteomap/pkg/config"
)

// Flags override the config file only when set on the command line.

// inputFlags select what is read from the table.
type inputFlags struct {
	hierarchy []string
	datasets  []string
	noRefine  bool
}

func (f *inputFlags) register(cmd *cobra.Command, def *config.Config) {
	cmd.Flags().StringSliceVar(&f.hierarchy, "hierarchy", def.Hierarchy, "grouping columns, coarsest first")
	cmd.Flags().StringSliceVarP(&f.datasets, "dataset", "d", nil, "only use these datasets (repeatable)")
	cmd.Flags().BoolVar(&f.noRefine, "no-refine", false, "skip COG category refinement")
}

func (f *inputFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("hierarchy") {
		cfg.Hierarchy = f.hierarchy
	}
	if cmd.Flags().Changed("dataset") {
		cfg.Datasets = f.datasets
	}
	if f.noRefine {
		cfg.Refine.Enabled = false
	}
}

// solverFlags tune the layout.
type solverFlags struct {
	seed          uint64
	concurrency   int
	reference     string
	tolerance     float64
	maxSteps      int
	maxAttempts   int
	shiftFraction float64
	stepLimits    []float64
	unassigned    string
	skipLevels    int
	maxChildren   int
	border        string
	borderSize    float64
}

func (f *solverFlags) register(cmd *cobra.Command, def *config.Config) {
	fl := cmd.Flags()
	fl.Uint64Var(&f.seed, "seed", def.Seed, "random seed")
	fl.IntVarP(&f.concurrency, "jobs", "j", def.Concurrency, "groups laid out in parallel")
	fl.StringVar(&f.reference, "reference", def.Reference, "GeoJSON layout whose cells seed the new layout")
	fl.Float64Var(&f.tolerance, "tolerance", def.Solver.Tolerance, "area discrepancy at which a sub-layout is accepted")
	fl.IntVar(&f.maxSteps, "max-steps", def.Solver.MaxSteps, "iterations per attempt")
	fl.IntVar(&f.maxAttempts, "max-attempts", def.Solver.MaxAttempts, "attempts per sub-layout")
	fl.Float64Var(&f.shiftFraction, "shift", def.Solver.ShiftFraction, "seed jitter as a fraction of the border diagonal")
	fl.Float64SliceVar(&f.stepLimits, "step-limits", def.Layout.StepLimits, "weight step limit per level")
	fl.StringVar(&f.unassigned, "unassigned", def.Layout.Unassigned, "label of proteins without a category")
	fl.IntVar(&f.skipLevels, "skip-levels", def.Layout.SkipLevels, "levels skipped below the unassigned label (0 disables)")
	fl.IntVar(&f.maxChildren, "max-children", def.Layout.MaxChildren, "keep only the heaviest children of each cell (0 keeps all)")
	fl.StringVar(&f.border, "border", def.Border.Shape, "border shape: circle, square")
	_ = cmd.RegisterFlagCompletionFunc("border", completeBorders)
	fl.Float64Var(&f.borderSize, "border-size", def.Border.Size, "border frame size")
}

func (f *solverFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fl := cmd.Flags()
	if fl.Changed("seed") {
		cfg.Seed = f.seed
	}
	if fl.Changed("jobs") {
		cfg.Concurrency = f.concurrency
	}
	if fl.Changed("reference") {
		cfg.Reference = f.reference
	}
	if fl.Changed("tolerance") {
		cfg.Solver.Tolerance = f.tolerance
	}
	if fl.Changed("max-steps") {
		cfg.Solver.MaxSteps = f.maxSteps
	}
	if fl.Changed("max-attempts") {
		cfg.Solver.MaxAttempts = f.maxAttempts
	}
	if fl.Changed("shift") {
		cfg.Solver.ShiftFraction = f.shiftFraction
	}
	if fl.Changed("step-limits") {
		cfg.Layout.StepLimits = f.stepLimits
	}
	if fl.Changed("unassigned") {
		cfg.Layout.Unassigned = f.unassigned
	}
	if fl.Changed("skip-levels") {
		cfg.Layout.SkipLevels = f.skipLevels
	}
	if fl.Changed("max-children") {
		cfg.Layout.MaxChildren = f.maxChildren
	}
	if fl.Changed("border") {
		cfg.Border.Shape = f.border
	}
	if fl.Changed("border-size") {
		cfg.Border.Size = f.borderSize
	}
}

// renderFlags control the images.
type renderFlags struct {
	formats   string
	size      float64
	noLabels  bool
	labelFrac float64
	depth     int
}

func (f *renderFlags) register(cmd *cobra.Command, def *config.Config) {
	fl := cmd.Flags()
	fl.StringVarP(&f.formats, "format", "f", strings.Join(def.Render.Formats, ","), "image formats: svg, png (comma-separated, none to skip)")
	fl.Float64Var(&f.size, "size", def.Render.Size, "image size in pixels")
	fl.BoolVar(&f.noLabels, "no-labels", false, "omit cell labels")
	fl.Float64Var(&f.labelFrac, "label-min", def.Render.LabelFrac, "label cells holding at least this fraction of the total")
	fl.IntVar(&f.depth, "depth", def.Render.Depth, "levels drawn (0 draws all)")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
}

func (f *renderFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fl := cmd.Flags()
	if fl.Changed("format") {
		cfg.Render.Formats = parseFormats(f.formats)
	}
	if fl.Changed("size") {
		cfg.Render.Size = f.size
	}
	if f.noLabels {
		cfg.Render.Labels = false
	}
	if fl.Changed("label-min") {
		cfg.Render.LabelFrac = f.labelFrac
	}
	if fl.Changed("depth") {
		cfg.Render.Depth = f.depth
	}
}

// cacheFlags select the layout cache.
type cacheFlags struct {
	backend  string
	location string
	prefix   string
	noCache  bool
	refresh  bool
}

func (f *cacheFlags) register(cmd *cobra.Command, def *config.Config) {
	fl := cmd.Flags()
	fl.StringVar(&f.backend, "cache", def.Cache.Backend, "cache backend: file, sqlite, redis, none")
	fl.StringVar(&f.location, "cache-location", def.Cache.Location, "cache directory, database path or redis URL")
	fl.StringVar(&f.prefix, "cache-prefix", def.Cache.Prefix, "prefix for cache keys")
	fl.BoolVar(&f.noCache, "no-cache", false, "disable caching")
	fl.BoolVar(&f.refresh, "refresh", false, "recompute layouts even when cached")
	_ = cmd.RegisterFlagCompletionFunc("cache", completeCaches)
}

func (f *cacheFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("cache") {
		cfg.Cache.Backend = f.backend
	}
	if cmd.Flags().Changed("cache-location") {
		cfg.Cache.Location = f.location
	}
	if cmd.Flags().Changed("cache-prefix") {
		cfg.Cache.Prefix = f.prefix
	}
}
