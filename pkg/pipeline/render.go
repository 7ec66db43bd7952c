package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/proteomap/pkg/geojson"
	"github.com/matzehuels/proteomap/pkg/observability"
	"github.com/matzehuels/proteomap/pkg/render"
	"github.com/matzehuels/proteomap/pkg/treemap"
)

// Render generates output artifacts in the requested formats.
func Render(m *treemap.Map, title string, opts Options) (map[string][]byte, error) {
	ropts := renderOptions(title, opts)
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = render.SVG(m, ropts...)
		case FormatPNG:
			data, err = render.PNG(m, ropts...)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderOptions(title string, opts Options) []render.Option {
	ropts := []render.Option{render.WithSize(opts.Size)}
	if opts.Labels {
		ropts = append(ropts, render.WithLabels(opts.LabelFrac))
	}
	if opts.Depth > 0 {
		ropts = append(ropts, render.WithMaxLevel(opts.Depth-1))
	}
	if title != "" {
		ropts = append(ropts, render.WithTitle(title))
	}
	return ropts
}

// RenderWithCacheInfo renders m through the runner's cache. layoutKey
// identifies the layout; an empty key bypasses the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, m *treemap.Map, layoutKey, title string, opts Options) (map[string][]byte, bool, error) {
	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)

	if layoutKey != "" && !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutKey, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
			return artifacts, true, nil
		}
	}

	artifacts, err := Render(m, title, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if layoutKey != "" {
		for format, data := range artifacts {
			key := r.Keyer.ArtifactKey(layoutKey, opts.ArtifactKeyOpts(format))
			if err := r.Cache.Set(ctx, key, data, DefaultArtifactTTL); err == nil {
				observability.Cache().OnCacheSet(ctx, key, len(data))
			}
		}
	}
	return artifacts, false, nil
}

// RenderFile renders a GeoJSON layout written by a previous run. The
// images are written next to path, or to opts.OutputDir when it is not
// ".". It returns the written paths keyed by format.
func (r *Runner) RenderFile(ctx context.Context, path string, opts Options) (map[string]string, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	m, err := geojson.ReadReferenceFile(path, opts.Hierarchy)
	if err != nil {
		return nil, err
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	artifacts, _, err := r.RenderWithCacheInfo(ctx, m, "", stem, opts)
	if err != nil {
		return nil, err
	}

	dir := opts.OutputDir
	if dir == "." {
		dir = filepath.Dir(path)
	}
	return writeArtifacts(dir, stem, artifacts)
}

func writeArtifacts(dir, stem string, artifacts map[string][]byte) (map[string]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	files := make(map[string]string, len(artifacts))
	for format, data := range artifacts {
		path := filepath.Join(dir, stem+"."+format)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		files[format] = path
	}
	return files, nil
}
