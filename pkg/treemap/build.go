package treemap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/proteomap/pkg/geom"
	"github.com/matzehuels/proteomap/pkg/observability"
	"github.com/matzehuels/proteomap/pkg/voronoi"
)

// Skip reasons.
const (
	ReasonUnsolved  = "unsolved"
	ReasonEmptyCell = "empty cell"
)

// Options configures Build.
type Options struct {
	// Solver holds the base solver settings. StepLimit and Seed are set
	// per branch.
	Solver voronoi.Options

	// ShiftFraction bounds the seed jitter of each attempt as a fraction
	// of the border diagonal. Zero uses voronoi.DefaultShiftFraction.
	ShiftFraction float64

	// NoShift disables the jitter: every attempt of a branch starts from
	// the same reference seeds.
	NoShift bool

	// Rules defaults to DefaultRules when nil.
	Rules *Rules

	// Seed is mixed with each branch path to seed that branch.
	Seed uint64

	// Concurrency bounds the sibling branches solved at once.
	Concurrency int

	Logger *log.Logger

	solve solveFunc
}

type solveFunc func(context.Context, geom.Polygon, []float64, voronoi.Seeder, voronoi.Options) (*voronoi.Result, error)

// SetDefaults fills zero values.
func (o *Options) SetDefaults() {
	if o.Rules == nil {
		r := DefaultRules()
		o.Rules = &r
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.solve == nil {
		o.solve = voronoi.Solve
	}
}

func (o Options) seeding() voronoi.SeedOptions {
	return voronoi.SeedOptions{RandomShift: !o.NoShift, ShiftFraction: o.ShiftFraction}
}

type frontier struct {
	tree   *Tree
	border geom.Polygon
}

type branch struct {
	nodes []Node
	skips []Skip
	next  []frontier
}

// Build lays out tree inside border. ref, when non-nil, provides seed
// positions. Failed branches are recorded in Map.Skipped; only context
// cancellation is returned as an error.
func Build(ctx context.Context, tree *Tree, border geom.Polygon, ref *Map, opts Options) (*Map, error) {
	opts.SetDefaults()
	m := &Map{Border: border}
	if border.IsEmpty() {
		return nil, fmt.Errorf("%w: empty border", voronoi.ErrDegenerate)
	}

	level := []frontier{{tree: tree, border: border}}
	for depth := 0; len(level) > 0; depth++ {
		results := make([]branch, len(level))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Concurrency)
		for i, f := range level {
			g.Go(func() error {
				b, err := solveBranch(gctx, f, ref, opts)
				results[i] = b
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		var next []frontier
		for _, b := range results {
			m.Nodes = append(m.Nodes, b.nodes...)
			m.Skipped = append(m.Skipped, b.skips...)
			next = append(next, b.next...)
		}
		opts.Logger.Debug("finished depth", "depth", depth, "branches", len(level), "cells", len(next))
		level = next
	}

	m.Sort()
	return m, nil
}

func solveBranch(ctx context.Context, f frontier, ref *Map, opts Options) (branch, error) {
	parent := f.tree
	children := parent.Children
	if len(children) == 0 {
		return branch{}, nil
	}

	level := children[0].Level
	path := pathKey(parent.Path)
	labels := make([]string, len(children))
	targets := make([]float64, len(children))
	for i, c := range children {
		labels[i] = c.Label
		targets[i] = c.Weight
	}

	refCells, refParent := ref.Scope(level, parent.Path)
	seeder := voronoi.ReferenceSeeder(refCells, labels, f.border, refParent, opts.seeding())

	sopts := opts.Solver
	sopts.StepLimit = opts.Rules.StepLimit(level, parent.Label)
	sopts.Seed = BranchSeed(opts.Seed, parent.Path)
	sopts.Logger = opts.Logger.With("level", level, "path", path)

	observability.Solver().OnSolveStart(ctx, level, path, len(children))
	start := time.Now()
	res, err := opts.solve(ctx, f.border, targets, seeder, sopts)
	if err != nil {
		observability.Solver().OnSolveComplete(ctx, level, path, 0, false, time.Since(start), err)
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return branch{}, err
		}
		opts.Logger.Warn("branch unsolved, dropping subtree", "level", level, "path", path, "err", err)
		observability.Solver().OnSkip(ctx, level, path, ReasonUnsolved)
		return branch{skips: []Skip{{Level: level, Path: parent.Path, Reason: ReasonUnsolved}}}, nil
	}
	observability.Solver().OnSolveComplete(ctx, level, path, res.Discrepancy, res.Converged, time.Since(start), nil)

	logFn := opts.Logger.Debug
	if !res.Converged {
		logFn = opts.Logger.Warn
	}
	logFn("solved branch",
		"level", level,
		"path", path,
		"cells", len(children),
		"discrepancy", res.Discrepancy,
		"attempts", res.Attempts,
		"converged", res.Converged)

	var b branch
	for i, c := range children {
		cell := res.Cells[i]
		if cell.IsEmpty() {
			b.skips = append(b.skips, Skip{Level: c.Level, Path: c.Path, Reason: ReasonEmptyCell})
			observability.Solver().OnSkip(ctx, c.Level, pathKey(c.Path), ReasonEmptyCell)
			continue
		}
		b.nodes = append(b.nodes, Node{
			Level:       c.Level,
			Path:        c.Path,
			Label:       c.Label,
			Weight:      c.Weight,
			FracTotal:   c.FracTotal,
			Polygon:     cell,
			Discrepancy: res.Discrepancy,
			Attempts:    res.Attempts,
			Converged:   res.Converged,
		})
		if len(c.Children) > 0 {
			b.next = append(b.next, frontier{tree: c, border: cell})
		}
	}
	return b, nil
}

// BranchSeed derives the seed of the sub-layout below path.
func BranchSeed(seed uint64, path []string) uint64 {
	d := xxhash.New()
	for _, p := range path {
		_, _ = d.WriteString(p)
		_, _ = d.Write([]byte{0})
	}
	return seed ^ d.Sum64()
}
