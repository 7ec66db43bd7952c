package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/proteomap/pkg/observability"
	"github.com/matzehuels/proteomap/pkg/proteome"
)

// Load parses the input table, applies the refinement rules and the
// dataset filter.
func Load(ctx context.Context, opts Options) (*proteome.Table, proteome.RefineStats, error) {
	var stats proteome.RefineStats

	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, opts.Input)
	t, err := proteome.LoadFile(opts.Input, opts.Hierarchy)
	if err != nil {
		observability.Pipeline().OnLoadComplete(ctx, opts.Input, 0, time.Since(start), err)
		return nil, stats, err
	}

	if opts.Refine && opts.RefineRules != nil {
		t, stats = proteome.Refine(t, *opts.RefineRules)
		opts.Logger.Debug("refined categories", "relabelled", stats.Relabelled, "dropped", stats.Dropped)
	}
	t = t.Filter(opts.Datasets)

	observability.Pipeline().OnLoadComplete(ctx, opts.Input, len(t.Records), time.Since(start), nil)
	if len(t.Records) == 0 {
		opts.Logger.Warn("no records left after filtering", "input", opts.Input, "datasets", opts.Datasets)
	}
	return t, stats, nil
}

// RefineFile loads opts.Input, refines it and writes the result as CSV to
// out. The dataset filter is applied as well.
func RefineFile(ctx context.Context, out string, opts Options) (proteome.RefineStats, error) {
	opts.Refine = true
	opts.SetDefaults()

	t, stats, err := Load(ctx, opts)
	if err != nil {
		return stats, err
	}

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return stats, fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.Create(out)
	if err != nil {
		return stats, fmt.Errorf("create %s: %w", out, err)
	}
	if err := t.Write(f); err != nil {
		f.Close()
		return stats, fmt.Errorf("write %s: %w", out, err)
	}
	return stats, f.Close()
}
