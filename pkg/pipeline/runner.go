package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/proteomap/pkg/cache"
	"github.com/matzehuels/proteomap/pkg/geojson"
	"github.com/matzehuels/proteomap/pkg/proteome"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline. Groups are
// laid out concurrently, bounded by opts.Concurrency; outputs keep the
// sorted group order.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	table, refined, err := Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	groups := table.Groups()
	result.Stats.Records = len(table.Records)
	result.Stats.SkippedRows = table.Skipped
	result.Stats.Relabelled = refined.Relabelled
	result.Stats.Dropped = refined.Dropped
	result.Stats.Groups = len(groups)
	result.Stats.LoadTime = time.Since(loadStart)

	r.Logger.Info("loaded table",
		"records", len(table.Records),
		"skipped", table.Skipped,
		"groups", len(groups),
		"duration", result.Stats.LoadTime)

	ref, err := LoadReference(opts)
	if err != nil {
		return nil, fmt.Errorf("load reference: %w", err)
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	// Stages 2 and 3, per group
	layoutStart := time.Now()
	result.Outputs = make([]Output, len(groups))

	var (
		mu   sync.Mutex
		done int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, group := range groups {
		g.Go(func() error {
			out, err := r.runGroup(gctx, group, ref, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", group.Key(), err)
			}
			result.Outputs[i] = out
			if opts.Progress != nil {
				mu.Lock()
				done++
				opts.Progress(done, len(groups), out)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	result.Stats.LayoutTime = time.Since(layoutStart)

	for _, out := range result.Outputs {
		result.Stats.Nodes += len(out.Map.Nodes)
		result.Stats.Skipped += len(out.Map.Skipped)
		if out.CacheHit {
			result.Stats.CacheHits++
		}
	}
	return result, nil
}

func (r *Runner) runGroup(ctx context.Context, group proteome.Group, ref *Reference, opts Options) (Output, error) {
	start := time.Now()
	out := Output{
		Dataset:   group.Dataset,
		Condition: group.Condition,
		Growth:    group.Growth(),
		Files:     make(map[string]string),
	}

	m, key, hit, err := r.LayoutWithCacheInfo(ctx, group, ref, opts)
	if err != nil {
		return out, fmt.Errorf("layout: %w", err)
	}
	out.Map, out.CacheHit = m, hit

	name, err := geojson.FileName(group.Dataset, group.Condition, out.Growth)
	if err != nil {
		return out, err
	}
	var buf bytes.Buffer
	meta := geojson.Meta{Dataset: group.Dataset, Condition: group.Condition, Growth: out.Growth, Seed: opts.Seed}
	if err := geojson.WriteMap(&buf, m, meta); err != nil {
		return out, err
	}
	path := filepath.Join(opts.OutputDir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return out, fmt.Errorf("write %s: %w", path, err)
	}
	out.Files[FormatGeoJSON] = path

	if len(opts.Formats) > 0 {
		title := group.Dataset + " / " + group.Condition
		if out.Growth != "" {
			title += " (" + out.Growth + "/h)"
		}
		artifacts, _, err := r.RenderWithCacheInfo(ctx, m, key, title, opts)
		if err != nil {
			return out, fmt.Errorf("render: %w", err)
		}
		files, err := writeArtifacts(opts.OutputDir, strings.TrimSuffix(name, ".geojson"), artifacts)
		if err != nil {
			return out, err
		}
		for format, p := range files {
			out.Files[format] = p
		}
	}

	out.Duration = time.Since(start)
	r.Logger.Info("laid out group",
		"group", group.Key(),
		"nodes", len(m.Nodes),
		"skipped", len(m.Skipped),
		"cached", hit,
		"duration", out.Duration)
	return out, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
