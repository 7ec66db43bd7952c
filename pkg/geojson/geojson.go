// Package geojson reads reference layouts and writes treemaps as GeoJSON
// FeatureCollections.
//
// Each resolved cell becomes one Polygon feature with the properties level,
// label, path, one property per hierarchy column up to the cell's level,
// mass_frac, frac_total, discrepancy and attempts. The collection carries
// dataset, condition, growth, run_id, seed and the border polygon as
// foreign members.
package geojson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	perrors "github.com/matzehuels/proteomap/pkg/errors"
	"github.com/matzehuels/proteomap/pkg/geom"
	"github.com/matzehuels/proteomap/pkg/treemap"
)

// Property and member names.
const (
	PropLevel       = "level"
	PropLabel       = "label"
	PropPath        = "path"
	PropMassFrac    = "mass_frac"
	PropFracTotal   = "frac_total"
	PropDiscrepancy = "discrepancy"
	PropAttempts    = "attempts"

	MemberDataset   = "dataset"
	MemberCondition = "condition"
	MemberGrowth    = "growth"
	MemberRunID     = "run_id"
	MemberSeed      = "seed"
	MemberBorder    = "border"
)

// Meta describes the run a map belongs to.
type Meta struct {
	Dataset   string
	Condition string
	Growth    string
	RunID     string
	Seed      uint64
}

// FileName returns treemap_<dataset>_<condition>[_<growth>].geojson with
// each segment made safe for the filesystem.
func FileName(dataset, condition, growth string) (string, error) {
	parts := []string{dataset, condition}
	if growth != "" {
		parts = append(parts, growth)
	}
	name := "treemap"
	for _, p := range parts {
		safe, err := perrors.SafeFilename(p)
		if err != nil {
			return "", err
		}
		name += "_" + safe
	}
	return name + ".geojson", nil
}

// Encode builds the FeatureCollection of m. A missing RunID is generated.
func Encode(m *treemap.Map, meta Meta) *geojson.FeatureCollection {
	if meta.RunID == "" {
		meta.RunID = uuid.NewString()
	}

	levels := make(map[string]int, len(m.Nodes))
	for _, n := range m.Nodes {
		levels[n.Key()] = n.Level
	}

	fc := geojson.NewFeatureCollection()
	for _, n := range m.Nodes {
		f := geojson.NewFeature(n.Polygon.Orb())
		f.Properties[PropLevel] = n.Level
		f.Properties[PropLabel] = n.Label
		f.Properties[PropPath] = n.Path
		f.Properties[PropMassFrac] = n.Weight
		f.Properties[PropFracTotal] = n.FracTotal
		f.Properties[PropDiscrepancy] = n.Discrepancy
		f.Properties[PropAttempts] = n.Attempts
		for i := range n.Path {
			level, ok := levels[treemapKey(n.Path[:i+1])]
			if ok && level >= 0 && level < len(m.Hierarchy) {
				f.Properties[m.Hierarchy[level]] = n.Path[i]
			}
		}
		fc.Append(f)
	}

	fc.ExtraMembers = geojson.Properties{
		MemberDataset:   meta.Dataset,
		MemberCondition: meta.Condition,
		MemberRunID:     meta.RunID,
		MemberSeed:      meta.Seed,
	}
	if meta.Growth != "" {
		fc.ExtraMembers[MemberGrowth] = meta.Growth
	}
	if !m.Border.IsEmpty() {
		fc.ExtraMembers[MemberBorder] = geojson.NewGeometry(m.Border.Orb())
	}
	return fc
}

// WriteMap encodes m to w.
func WriteMap(w io.Writer, m *treemap.Map, meta Meta) error {
	data, err := Encode(m, meta).MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ReadReferenceFile opens path and calls ReadReference.
func ReadReferenceFile(path string, hierarchy treemap.Hierarchy) (*treemap.Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "reference %s", path)
		}
		return nil, err
	}
	return decode(data, hierarchy)
}

// ReadReference parses a FeatureCollection written by WriteMap or by the
// original analysis scripts. Features need a level property; their path is
// taken from the path property or rebuilt from the hierarchy columns.
func ReadReference(r io.Reader, hierarchy treemap.Hierarchy) (*treemap.Map, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return decode(data, hierarchy)
}

func decode(data []byte, hierarchy treemap.Hierarchy) (*treemap.Map, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "parse geojson")
	}

	m := &treemap.Map{Hierarchy: hierarchy}
	if raw, ok := fc.ExtraMembers[MemberBorder]; ok {
		if b, err := decodeBorder(raw); err == nil {
			m.Border = b
		}
	}

	for i, f := range fc.Features {
		poly, ok := polygonOf(f.Geometry)
		if !ok {
			continue
		}
		level := f.Properties.MustInt(PropLevel, -1)
		if level < 0 {
			return nil, perrors.New(perrors.ErrCodeInvalidFormat, "feature %d has no level", i)
		}
		path := pathOf(f.Properties, hierarchy, level)
		if len(path) == 0 {
			return nil, perrors.New(perrors.ErrCodeInvalidFormat, "feature %d has no label", i)
		}
		m.Nodes = append(m.Nodes, treemap.Node{
			Level:       level,
			Path:        path,
			Label:       path[len(path)-1],
			Weight:      f.Properties.MustFloat64(PropMassFrac, 0),
			FracTotal:   f.Properties.MustFloat64(PropFracTotal, 0),
			Polygon:     poly,
			Discrepancy: f.Properties.MustFloat64(PropDiscrepancy, 0),
			Attempts:    f.Properties.MustInt(PropAttempts, 0),
		})
	}
	m.Sort()
	return m, nil
}

func pathOf(props geojson.Properties, hierarchy treemap.Hierarchy, level int) []string {
	if raw, ok := props[PropPath].([]any); ok {
		path := make([]string, 0, len(raw))
		for _, v := range raw {
			if s, ok := v.(string); ok {
				path = append(path, s)
			}
		}
		if len(path) == len(raw) && len(path) > 0 {
			return path
		}
	}

	var path []string
	for i := 0; i <= level && i < len(hierarchy); i++ {
		if s := props.MustString(hierarchy[i], ""); s != "" {
			path = append(path, s)
		}
	}
	if len(path) == 0 {
		if s := props.MustString(PropLabel, ""); s != "" {
			path = []string{s}
		}
	}
	return path
}

// polygonOf keeps the largest polygon of a multipolygon.
func polygonOf(g orb.Geometry) (geom.Polygon, bool) {
	switch g := g.(type) {
	case orb.Polygon:
		p := geom.FromOrb(g)
		return p, !p.IsEmpty()
	case orb.MultiPolygon:
		var best geom.Polygon
		for _, sub := range g {
			if p := geom.FromOrb(sub); p.Area() > best.Area() {
				best = p
			}
		}
		return best, !best.IsEmpty()
	}
	return geom.Polygon{}, false
}

func decodeBorder(raw any) (geom.Polygon, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return geom.Polygon{}, err
	}
	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return geom.Polygon{}, err
	}
	p, ok := polygonOf(g.Geometry())
	if !ok {
		return geom.Polygon{}, fmt.Errorf("border is not a polygon")
	}
	return p, nil
}

func treemapKey(path []string) string { return treemap.Node{Path: path}.Key() }
