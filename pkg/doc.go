// Package pkg provides the core libraries for proteomap.
//
// # Overview
//
// A proteomap shows the protein mass of an organism as a nested treemap of
// curved cells: each cell's area is proportional to the mass it holds, and
// cells are grouped by functional category. The pkg directory is organized
// into three main areas:
//
//  1. Geometry - [geom] polygons and borders, [voronoi] weighted power
//     diagrams and the area-fitting solver
//  2. Domain - [proteome] abundance tables and COG refinement, [treemap]
//     hierarchical layout, [render] SVG and PNG output, [geojson] storage
//  3. Infrastructure - [pipeline] orchestration, [cache] layout caching,
//     [config] run settings, [errors] coded errors, [observability] hooks
//
// # Architecture
//
// The typical data flow through proteomap:
//
//	abundance table (CSV)
//	         ↓
//	    [proteome] package (load, refine, group by dataset/condition)
//	         ↓
//	    [treemap] package (hierarchy tree, level-by-level layout)
//	         ↓
//	    [voronoi] package (one power diagram per sub-layout)
//	         ↓
//	    GeoJSON / SVG / PNG output
//
// # Quick Start
//
//	t, _ := proteome.LoadFile("proteins.csv", nil)
//	t, _ = proteome.Refine(t, proteome.DefaultRules())
//	for _, g := range t.Groups() {
//	    tree, _ := treemap.BuildTree(t.Hierarchy, pipeline.Items(g), treemap.DefaultRules())
//	    m, _ := treemap.Build(ctx, tree, geom.DefaultBorder(), nil, treemap.Options{})
//	    svg := render.SVG(m)
//	}
//
// The [pipeline] package runs the same steps with caching, concurrency and
// output files; the proteomap command is a thin layer over it.
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/proteomap/pkg/geom
// [voronoi]: https://pkg.go.dev/github.com/matzehuels/proteomap/pkg/voronoi
// [proteome]: https://pkg.go.dev/github.com/matzehuels/proteomap/pkg/proteome
// [treemap]: https://pkg.go.dev/github.com/matzehuels/proteomap/pkg/treemap
// [render]: https://pkg.go.dev/github.com/matzehuels/proteomap/pkg/render
// [geojson]: https://pkg.go.dev/github.com/matzehuels/proteomap/pkg/geojson
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/proteomap/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/proteomap/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/proteomap/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/proteomap/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/proteomap/pkg/observability
package pkg
