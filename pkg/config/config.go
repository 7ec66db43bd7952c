// Package config loads proteomap run configuration files.
//
// A configuration file is TOML (the default, proteomap.toml) or YAML
// (.yaml, .yml). Fields absent from the file keep their defaults, so a file
// only needs the settings it changes:
//
//	hierarchy = ["cog_class", "cog_category", "gene_name"]
//	seed = 7
//
//	[solver]
//	tolerance = 0.05
//
//	[layout]
//	step_limits = [0.5, 0.35, 0.25]
//
//	[cache]
//	backend = "sqlite"
//
// Command-line flags override the file; the file overrides [Default].
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	perrors "github.com/matzehuels/proteomap/pkg/errors"
	"github.com/matzehuels/proteomap/pkg/geom"
	"github.com/matzehuels/proteomap/pkg/proteome"
	"github.com/matzehuels/proteomap/pkg/treemap"
	"github.com/matzehuels/proteomap/pkg/voronoi"
)

// DefaultFileName is looked up in the working directory when no file is
// given.
const DefaultFileName = "proteomap.toml"

// Environment variables read by ApplyEnv.
const (
	EnvCacheBackend  = "PROTEOMAP_CACHE"
	EnvCacheLocation = "PROTEOMAP_CACHE_LOCATION"
)

// Output formats besides the GeoJSON layout.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

// Config is the content of a configuration file.
type Config struct {
	Hierarchy   []string `toml:"hierarchy" yaml:"hierarchy"`
	Datasets    []string `toml:"datasets" yaml:"datasets"`
	Reference   string   `toml:"reference" yaml:"reference"`
	Output      string   `toml:"output" yaml:"output"`
	Seed        uint64   `toml:"seed" yaml:"seed"`
	Concurrency int      `toml:"concurrency" yaml:"concurrency"`

	Solver Solver        `toml:"solver" yaml:"solver"`
	Layout treemap.Rules `toml:"layout" yaml:"layout"`
	Border Border        `toml:"border" yaml:"border"`
	Refine Refine        `toml:"refine" yaml:"refine"`
	Cache  Cache         `toml:"cache" yaml:"cache"`
	Render Render        `toml:"render" yaml:"render"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-" yaml:"-"`
}

// Solver holds the power-diagram solver settings.
type Solver struct {
	Tolerance     float64 `toml:"tolerance" yaml:"tolerance"`
	MaxSteps      int     `toml:"max_steps" yaml:"max_steps"`
	MaxAttempts   int     `toml:"max_attempts" yaml:"max_attempts"`
	Epsilon       float64 `toml:"epsilon" yaml:"epsilon"`
	ShiftFraction float64 `toml:"shift_fraction" yaml:"shift_fraction"`
}

// Border selects the level-0 border.
type Border struct {
	Shape string  `toml:"shape" yaml:"shape"`
	Size  float64 `toml:"size" yaml:"size"`
}

// Refine controls COG refinement before layout. Nil Rules uses
// proteome.DefaultRules.
type Refine struct {
	Enabled bool            `toml:"enabled" yaml:"enabled"`
	Rules   *proteome.Rules `toml:"rules" yaml:"rules"`
}

// Cache selects the layout cache.
type Cache struct {
	Backend  string `toml:"backend" yaml:"backend"`
	Location string `toml:"location" yaml:"location"`
	// Prefix scopes keys so several projects can share one cache.
	Prefix   string `toml:"prefix" yaml:"prefix"`
}

// Render controls the rendered artifacts.
type Render struct {
	Formats   []string `toml:"formats" yaml:"formats"`
	Size      float64  `toml:"size" yaml:"size"`
	Labels    bool     `toml:"labels" yaml:"labels"`
	LabelFrac float64  `toml:"label_frac" yaml:"label_frac"`
	Depth     int      `toml:"depth" yaml:"depth"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Hierarchy:   []string{proteome.ColCOGClass, proteome.ColCOGCategory, "gene_name"},
		Output:      ".",
		Seed:        1,
		Concurrency: 2,
		Solver: Solver{
			Tolerance:     voronoi.DefaultTolerance,
			MaxSteps:      voronoi.DefaultMaxSteps,
			MaxAttempts:   voronoi.DefaultMaxAttempts,
			Epsilon:       voronoi.DefaultEpsilon,
			ShiftFraction: voronoi.DefaultShiftFraction,
		},
		Layout: treemap.DefaultRules(),
		Border: Border{Shape: string(geom.ShapeCircle), Size: geom.DefaultFrameSize},
		Refine: Refine{Enabled: true},
		Cache:  Cache{Backend: "file"},
		Render: Render{
			Formats:   []string{FormatSVG},
			Size:      geom.DefaultFrameSize,
			Labels:    true,
			LabelFrac: 0.01,
		},
	}
}

// Load reads path on top of Default. The format is chosen by extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml", "":
		err = decodeTOML(data, c)
	case ".yaml", ".yml":
		err = decodeYAML(data, c)
	default:
		return nil, perrors.New(perrors.ErrCodeInvalidConfig, "config %s: unsupported extension %q (use .toml, .yaml or .yml)", path, ext)
	}
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	c.Path = path

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Find loads explicit when set, else DefaultFileName in dir when present,
// else Default.
func Find(explicit, dir string) (*Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	path := filepath.Join(dir, DefaultFileName)
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}
	return Default(), nil
}

func decodeTOML(data []byte, c *Config) error {
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	return nil
}

func decodeYAML(data []byte, c *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// ApplyEnv overrides the cache settings from the environment.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvCacheBackend)); v != "" {
		c.Cache.Backend = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCacheLocation)); v != "" {
		c.Cache.Location = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if err := perrors.ValidateHierarchy(c.Hierarchy); err != nil {
		return err
	}
	if c.Concurrency < 0 {
		return invalid("concurrency must not be negative")
	}
	if c.Solver.Tolerance < 0 || c.Solver.MaxSteps < 0 || c.Solver.MaxAttempts < 0 || c.Solver.Epsilon < 0 {
		return invalid("solver settings must not be negative")
	}
	if c.Solver.ShiftFraction < 0 || c.Solver.ShiftFraction >= 1 {
		return invalid("solver.shift_fraction must be in [0, 1)")
	}
	for _, s := range c.Layout.StepLimits {
		if s <= 0 || s >= 1 {
			return invalid("layout.step_limits must be in (0, 1), got %g", s)
		}
	}
	for label, s := range c.Layout.LabelStepLimits {
		if s <= 0 || s >= 1 {
			return invalid("layout.label_step_limits[%q] must be in (0, 1), got %g", label, s)
		}
	}
	if c.Layout.SkipLevels < 0 || c.Layout.MaxChildren < 0 {
		return invalid("layout.skip_levels and layout.max_children must not be negative")
	}
	switch geom.BorderShape(c.Border.Shape) {
	case geom.ShapeCircle, geom.ShapeSquare:
	default:
		return invalid("border.shape %q (must be circle or square)", c.Border.Shape)
	}
	if c.Border.Size <= 0 {
		return invalid("border.size must be positive")
	}
	for _, f := range c.Render.Formats {
		if !slices.Contains([]string{FormatSVG, FormatPNG}, f) {
			return invalid("render.formats: %q (must be svg or png)", f)
		}
	}
	if c.Render.Depth < 0 {
		return invalid("render.depth must not be negative")
	}
	if c.Render.LabelFrac < 0 || c.Render.LabelFrac > 1 {
		return invalid("render.label_frac must be in [0, 1]")
	}
	return nil
}

// RefineRules returns the refinement rules in effect.
func (c *Config) RefineRules() proteome.Rules {
	if c.Refine.Rules != nil {
		return *c.Refine.Rules
	}
	return proteome.DefaultRules()
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

func invalid(format string, args ...any) error {
	return perrors.New(perrors.ErrCodeInvalidConfig, format, args...)
}
