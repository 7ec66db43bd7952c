package geojson

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"

	perrors "github.com/matzehuels/proteomap/pkg/errors"
	"github.com/matzehuels/proteomap/pkg/geom"
	"github.com/matzehuels/proteomap/pkg/treemap"
)

var hierarchy = treemap.Hierarchy{"cog_class", "cog_category", "gene_name"}

func sampleMap() *treemap.Map {
	left := geom.Rect(orb.Point{0, 0}, orb.Point{1, 2})
	right := geom.Rect(orb.Point{1, 0}, orb.Point{2, 2})
	m := &treemap.Map{
		Hierarchy: hierarchy,
		Border:    geom.Rect(orb.Point{0, 0}, orb.Point{2, 2}),
		Nodes: []treemap.Node{
			{Level: 0, Path: []string{"metabolism"}, Label: "metabolism", Weight: 0.5, FracTotal: 0.5, Polygon: left, Discrepancy: 0.01, Attempts: 1},
			{Level: 0, Path: []string{"Not Assigned"}, Label: "Not Assigned", Weight: 0.5, FracTotal: 0.5, Polygon: right, Discrepancy: 0.01, Attempts: 1},
			{Level: 1, Path: []string{"metabolism", "energy"}, Label: "energy", Weight: 1, FracTotal: 0.5, Polygon: left, Attempts: 1},
			{Level: 2, Path: []string{"Not Assigned", "yaaA"}, Label: "yaaA", Weight: 1, FracTotal: 0.5, Polygon: right, Attempts: 1},
		},
	}
	m.Sort()
	return m
}

func TestWriteReadRoundTrip(t *testing.T) {
	m := sampleMap()
	var buf bytes.Buffer
	require.NoError(t, WriteMap(&buf, m, Meta{Dataset: "schmidt_2016", Condition: "glucose", Growth: "0.58", Seed: 4}))

	got, err := ReadReference(&buf, hierarchy)
	require.NoError(t, err)
	require.Len(t, got.Nodes, len(m.Nodes))
	require.InDelta(t, 4.0, got.Border.Area(), 1e-12)

	for i, want := range m.Nodes {
		n := got.Nodes[i]
		require.Equal(t, want.Level, n.Level)
		require.Equal(t, want.Path, n.Path)
		require.Equal(t, want.Label, n.Label)
		require.InDelta(t, want.Weight, n.Weight, 1e-12)
		require.InDelta(t, want.FracTotal, n.FracTotal, 1e-12)
		require.Equal(t, want.Attempts, n.Attempts)
		require.InDelta(t, want.Polygon.Area(), n.Polygon.Area(), 1e-12)
	}
}

func TestEncodeProperties(t *testing.T) {
	fc := Encode(sampleMap(), Meta{Dataset: "d", Condition: "c"})

	require.Equal(t, "d", fc.ExtraMembers[MemberDataset])
	require.NotEmpty(t, fc.ExtraMembers[MemberRunID])
	_, hasGrowth := fc.ExtraMembers[MemberGrowth]
	require.False(t, hasGrowth)

	var gene map[string]any
	for _, f := range fc.Features {
		if f.Properties[PropLabel] == "yaaA" {
			gene = f.Properties
		}
	}
	require.NotNil(t, gene)
	require.Equal(t, "Not Assigned", gene["cog_class"])
	require.Equal(t, "yaaA", gene["gene_name"])
	_, hasCategory := gene["cog_category"]
	require.False(t, hasCategory, "skipped level has no column")
}

func TestEncodeRunIDIsUnique(t *testing.T) {
	a := Encode(sampleMap(), Meta{})
	b := Encode(sampleMap(), Meta{})
	require.NotEqual(t, a.ExtraMembers[MemberRunID], b.ExtraMembers[MemberRunID])

	c := Encode(sampleMap(), Meta{RunID: "fixed"})
	require.Equal(t, "fixed", c.ExtraMembers[MemberRunID])
}

func TestReadReferenceFromColumns(t *testing.T) {
	doc := map[string]any{
		"type": "FeatureCollection",
		"features": []any{
			map[string]any{
				"type":     "Feature",
				"geometry": map[string]any{"type": "Polygon", "coordinates": [][][]float64{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}},
				"properties": map[string]any{
					"level": 1, "cog_class": "metabolism", "cog_category": "energy",
				},
			},
			map[string]any{
				"type": "Feature",
				"geometry": map[string]any{"type": "MultiPolygon", "coordinates": [][][][]float64{
					{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}},
					{{{0, 0}, {3, 0}, {3, 3}, {0, 3}, {0, 0}}},
				}},
				"properties": map[string]any{"level": 0, "cog_class": "metabolism"},
			},
			map[string]any{
				"type":       "Feature",
				"geometry":   map[string]any{"type": "Point", "coordinates": []float64{0, 0}},
				"properties": map[string]any{"level": 0},
			},
		},
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	m, err := ReadReference(bytes.NewReader(data), hierarchy)
	require.NoError(t, err)
	require.Len(t, m.Nodes, 2)
	require.Equal(t, []string{"metabolism"}, m.Nodes[0].Path)
	require.InDelta(t, 9.0, m.Nodes[0].Polygon.Area(), 1e-12)
	require.Equal(t, []string{"metabolism", "energy"}, m.Nodes[1].Path)
	require.True(t, m.Border.IsEmpty())
}

func TestReadReferenceErrors(t *testing.T) {
	_, err := ReadReference(strings.NewReader("not json"), hierarchy)
	require.True(t, perrors.Is(err, perrors.ErrCodeInvalidFormat))

	noLevel := `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]},"properties":{"label":"a"}}]}`
	_, err = ReadReference(strings.NewReader(noLevel), hierarchy)
	require.True(t, perrors.Is(err, perrors.ErrCodeInvalidFormat))

	_, err = ReadReferenceFile("/nonexistent/ref.geojson", hierarchy)
	require.True(t, perrors.Is(err, perrors.ErrCodeFileNotFound))
}

func TestFileName(t *testing.T) {
	name, err := FileName("schmidt_2016", "glucose", "0.58")
	require.NoError(t, err)
	require.Equal(t, "treemap_schmidt_2016_glucose_0.58.geojson", name)

	name, err = FileName("li_2014", "MOPS complete", "")
	require.NoError(t, err)
	require.Equal(t, "treemap_li_2014_MOPS_complete.geojson", name)

	_, err = FileName("..", "x", "")
	require.Error(t, err)
}
