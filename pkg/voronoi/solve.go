package voronoi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/floats"

	"github.com/matzehuels/proteomap/pkg/geom"
)

// Solver defaults.
const (
	DefaultTolerance   = 0.1
	DefaultMaxSteps    = 50
	DefaultMaxAttempts = 15
	DefaultStepLimit   = 0.35

	// AreaTolerance bounds |Σ cell areas - border area| relative to the
	// border area before a diagram is considered broken.
	AreaTolerance = 1e-5
)

var (
	// ErrUnsolved is returned when no attempt produced a finite discrepancy.
	ErrUnsolved = errors.New("voronoi: no attempt produced a usable layout")

	// ErrDegenerate marks a numerically broken diagram inside one attempt.
	ErrDegenerate = errors.New("voronoi: degenerate diagram")
)

// Options configures Solve.
type Options struct {
	// Tolerance is the discrepancy at which an attempt counts as converged.
	Tolerance float64 `json:"tolerance"`

	// MaxSteps bounds the iterations of one attempt.
	MaxSteps int `json:"max_steps"`

	// MaxAttempts bounds the number of restarts.
	MaxAttempts int `json:"max_attempts"`

	// StepLimit caps the relative weight change per iteration.
	StepLimit float64 `json:"step_limit"`

	// Epsilon is the relative geometric tolerance, see PowerDiagram.
	Epsilon float64 `json:"epsilon"`

	// Seed drives every random draw of the solve.
	Seed uint64 `json:"seed"`

	Logger *log.Logger `json:"-"`
}

// SetDefaults fills zero values.
func (o *Options) SetDefaults() {
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.MaxSteps <= 0 {
		o.MaxSteps = DefaultMaxSteps
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.StepLimit <= 0 || o.StepLimit >= 1 {
		o.StepLimit = DefaultStepLimit
	}
	if o.Epsilon <= 0 {
		o.Epsilon = DefaultEpsilon
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Attempt is the outcome of one restart. Cells and Sites hold the best
// iteration seen; they are nil when no iteration completed. Err is set when
// the attempt was aborted.
type Attempt struct {
	Sites       []Site
	Cells       []geom.Polygon
	Discrepancy float64
	Steps       int
	Err         error
}

func (a Attempt) usable() bool {
	return a.Cells != nil && !math.IsNaN(a.Discrepancy) && !math.IsInf(a.Discrepancy, 0)
}

// Result is the best attempt of a solve.
type Result struct {
	Sites       []Site
	Cells       []geom.Polygon
	Discrepancy float64

	// Converged reports whether Discrepancy is below the tolerance.
	Converged bool

	// Attempts is the number of restarts made.
	Attempts int

	// History holds the best discrepancy after each attempt. It never
	// increases.
	History []float64

	// Failures collects the errors of aborted attempts.
	Failures []error

	Duration time.Duration
}

// Solve lays out len(targets) cells inside border with areas proportional
// to targets. targets are normalised to sum to 1; zero entries are allowed.
//
// A result that did not reach the tolerance is still returned with
// Converged false. ErrUnsolved is returned when every attempt failed.
func Solve(ctx context.Context, border geom.Polygon, targets []float64, seeder Seeder, opts Options) (*Result, error) {
	opts.SetDefaults()
	start := time.Now()

	if border.IsEmpty() {
		return nil, fmt.Errorf("%w: empty border", ErrDegenerate)
	}
	norm, err := normalise(targets)
	if err != nil {
		return nil, err
	}
	area := border.Area()

	if len(norm) == 1 {
		return &Result{
			Sites:     []Site{{Pos: border.Centroid(), Weight: area}},
			Cells:     []geom.Polygon{border},
			Converged: true,
			Attempts:  1,
			History:   []float64{0},
			Duration:  time.Since(start),
		}, nil
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0xdeadbeef))
	res := &Result{Discrepancy: math.Inf(1)}
	var lastErr error

	for a := range opts.MaxAttempts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		att := runAttempt(ctx, border, area, norm, seeder, rng, opts)
		res.Attempts = a + 1
		if att.Err != nil {
			if errors.Is(att.Err, context.Canceled) || errors.Is(att.Err, context.DeadlineExceeded) {
				return nil, att.Err
			}
			lastErr = att.Err
			res.Failures = append(res.Failures, fmt.Errorf("attempt %d: %w", a+1, att.Err))
			opts.Logger.Debug("attempt aborted", "attempt", a+1, "err", att.Err)
		}
		if att.usable() && att.Discrepancy < res.Discrepancy {
			res.Sites, res.Cells, res.Discrepancy = att.Sites, att.Cells, att.Discrepancy
		}
		res.History = append(res.History, res.Discrepancy)
		opts.Logger.Debug("attempt finished",
			"attempt", a+1,
			"steps", att.Steps,
			"discrepancy", att.Discrepancy,
			"best", res.Discrepancy)
		if res.Discrepancy < opts.Tolerance {
			break
		}
	}

	res.Duration = time.Since(start)
	if res.Cells == nil {
		if lastErr == nil {
			return nil, ErrUnsolved
		}
		return nil, fmt.Errorf("%w: %w", ErrUnsolved, lastErr)
	}
	res.Converged = res.Discrepancy < opts.Tolerance
	return res, nil
}

func runAttempt(ctx context.Context, border geom.Polygon, area float64, targets []float64, seeder Seeder, rng *rand.Rand, opts Options) Attempt {
	best := Attempt{Discrepancy: math.Inf(1)}

	pts, err := seeder(rng)
	if err != nil {
		best.Err = err
		return best
	}
	if len(pts) != len(targets) {
		best.Err = fmt.Errorf("seeder returned %d points for %d targets", len(pts), len(targets))
		return best
	}

	sites := newSites(pts, InitialWeights(len(pts), area, rng.Float64))
	LimitOverweight(sites)
	cells := PowerDiagram(sites, border, opts.Epsilon)
	floor := opts.Epsilon * area

	for step := range opts.MaxSteps {
		if err := ctx.Err(); err != nil {
			best.Err = err
			return best
		}
		sites = AdaptPositions(sites, cells)
		cells = PowerDiagram(sites, border, opts.Epsilon)
		sites = AdaptWeights(sites, cells, targets, area, opts.StepLimit, floor)
		cells = PowerDiagram(sites, border, opts.Epsilon)

		if err := checkDiagram(sites, cells, area); err != nil {
			best.Err = fmt.Errorf("step %d: %w", step+1, err)
			return best
		}
		d := Discrepancy(cells, targets, area)
		best.Steps = step + 1
		if d < best.Discrepancy {
			best.Sites = append([]Site(nil), sites...)
			best.Cells = cells
			best.Discrepancy = d
		}
		if d < opts.Tolerance {
			break
		}
	}
	return best
}

func checkDiagram(sites []Site, cells []geom.Polygon, area float64) error {
	for i, s := range sites {
		if !finite(s.Pos[0]) || !finite(s.Pos[1]) || !finite(s.Weight) {
			return fmt.Errorf("%w: site %d is not finite", ErrDegenerate, i)
		}
	}
	areas := make([]float64, len(cells))
	for i, c := range cells {
		areas[i] = c.Area()
	}
	total := floats.Sum(areas)
	if total == 0 {
		return fmt.Errorf("%w: every cell is empty", ErrDegenerate)
	}
	if !finite(total) || math.Abs(total-area) > AreaTolerance*area {
		return fmt.Errorf("%w: cell areas sum to %g, border is %g", ErrDegenerate, total, area)
	}
	return nil
}

func normalise(targets []float64) ([]float64, error) {
	if len(targets) == 0 {
		return nil, errors.New("voronoi: no targets")
	}
	for i, t := range targets {
		if t < 0 || !finite(t) {
			return nil, fmt.Errorf("voronoi: target %d is %g", i, t)
		}
	}
	sum := floats.Sum(targets)
	if sum <= 0 {
		return nil, errors.New("voronoi: targets sum to zero")
	}
	out := append([]float64(nil), targets...)
	floats.Scale(1/sum, out)
	return out, nil
}

func newSites(pts []orb.Point, weights []float64) []Site {
	sites := make([]Site, len(pts))
	for i, p := range pts {
		sites[i] = Site{Pos: p, Weight: weights[i]}
	}
	return sites
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
