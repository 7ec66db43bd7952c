package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/matzehuels/proteomap/pkg/cache"
	perrors "github.com/matzehuels/proteomap/pkg/errors"
	"github.com/matzehuels/proteomap/pkg/geojson"
	"github.com/matzehuels/proteomap/pkg/observability"
	"github.com/matzehuels/proteomap/pkg/proteome"
	"github.com/matzehuels/proteomap/pkg/treemap"
)

// Reference is a previously solved layout used to seed new ones.
type Reference struct {
	Map  *treemap.Map
	Hash string
}

// LoadReference reads the reference layout named by opts.Reference. It
// returns nil when none is configured.
func LoadReference(opts Options) (*Reference, error) {
	if opts.Reference == "" {
		return nil, nil
	}
	data, err := os.ReadFile(opts.Reference)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "reference %s", opts.Reference)
		}
		return nil, fmt.Errorf("read reference: %w", err)
	}
	m, err := geojson.ReadReference(bytes.NewReader(data), opts.Hierarchy)
	if err != nil {
		return nil, fmt.Errorf("reference %s: %w", opts.Reference, err)
	}
	return &Reference{Map: m, Hash: cache.Hash(data)}, nil
}

// Items converts the records of a group into treemap items.
func Items(g proteome.Group) []treemap.Item {
	items := make([]treemap.Item, len(g.Records))
	for i, r := range g.Records {
		items[i] = treemap.Item{Labels: r.Labels, Mass: r.Mass}
	}
	return items
}

// GroupHash hashes the labels and masses of a group in record order.
func GroupHash(g proteome.Group) string {
	data, _ := json.Marshal(Items(g))
	return cache.Hash(data)
}

// Layout solves the treemap of one group.
func Layout(ctx context.Context, g proteome.Group, ref *Reference, opts Options) (*treemap.Map, error) {
	tree, err := treemap.BuildTree(opts.Hierarchy, Items(g), opts.Rules)
	if err != nil {
		return nil, err
	}
	var refMap *treemap.Map
	if ref != nil {
		refMap = ref.Map
	}
	m, err := treemap.Build(ctx, tree, opts.Border(), refMap, opts.TreemapOptions())
	if err != nil {
		return nil, err
	}
	m.Hierarchy = opts.Hierarchy
	return m, nil
}

// LayoutWithCacheInfo solves one group through the runner's cache and
// returns the layout cache key alongside the map.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g proteome.Group, ref *Reference, opts Options) (*treemap.Map, string, bool, error) {
	refHash := ""
	if ref != nil {
		refHash = ref.Hash
	}
	key := r.Keyer.LayoutKey(GroupHash(g), opts.LayoutKeyOpts(refHash))

	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, g.Key(), len(g.Records))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			m, err := geojson.ReadReference(bytes.NewReader(data), opts.Hierarchy)
			if err == nil {
				observability.Cache().OnCacheHit(ctx, key)
				observability.Pipeline().OnLayoutComplete(ctx, g.Key(), len(m.Nodes), time.Since(start), nil)
				return m, key, true, nil
			}
			r.Logger.Debug("discarding unreadable cache entry", "key", key, "error", err)
		} else if err != nil {
			r.Logger.Warn("cache read failed", "key", key, "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, key)
	}

	m, err := Layout(ctx, g, ref, opts)
	observability.Pipeline().OnLayoutComplete(ctx, g.Key(), nodeCount(m), time.Since(start), err)
	if err != nil {
		return nil, key, false, err
	}

	var buf bytes.Buffer
	if err := geojson.WriteMap(&buf, m, geojson.Meta{Dataset: g.Dataset, Condition: g.Condition, Growth: g.Growth(), Seed: opts.Seed}); err == nil {
		if err := r.Cache.Set(ctx, key, buf.Bytes(), DefaultLayoutTTL); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, key, buf.Len())
		}
	}
	return m, key, false, nil
}

func nodeCount(m *treemap.Map) int {
	if m == nil {
		return 0
	}
	return len(m.Nodes)
}
