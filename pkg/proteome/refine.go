package proteome

import (
	"slices"
	"strings"
)

// Column names used by the default COG rules.
const (
	ColCOGClass    = "cog_class"
	ColCOGCategory = "cog_category"
)

// Split relabels the records of one category by their GO terms. The first
// case whose terms occur in the record's go_terms wins; Default applies
// otherwise.
type Split struct {
	Column  string `toml:"column" yaml:"column" json:"column"`
	Value   string `toml:"value" yaml:"value" json:"value"`
	Cases   []Case `toml:"cases" yaml:"cases" json:"cases"`
	Default string `toml:"default" yaml:"default" json:"default"`
}

// Case is one GO-term match of a Split.
type Case struct {
	Terms []string `toml:"terms" yaml:"terms" json:"terms"`
	Label string   `toml:"label" yaml:"label" json:"label"`
}

// Promotion replaces a label in Column by the record's label in From. Only
// records whose From label is listed in Keep survive; the rest of the
// group is dropped.
type Promotion struct {
	Column string   `toml:"column" yaml:"column" json:"column"`
	Value  string   `toml:"value" yaml:"value" json:"value"`
	From   string   `toml:"from" yaml:"from" json:"from"`
	Keep   []string `toml:"keep" yaml:"keep" json:"keep"`
}

// Rules is an ordered set of relabelling rules. Splits run before
// promotions.
type Rules struct {
	Splits     []Split     `toml:"splits" yaml:"splits" json:"splits"`
	Promotions []Promotion `toml:"promotions" yaml:"promotions" json:"promotions"`
}

// RefineStats reports what Refine changed.
type RefineStats struct {
	Relabelled int
	Dropped    int
}

// DefaultRules returns the COG refinements used for E. coli proteomaps:
// transcription, translation and replication are split by GO annotation
// and "poorly characterized" is replaced by its two categories.
func DefaultRules() Rules {
	return Rules{
		Splits: []Split{
			{
				Column: ColCOGCategory,
				Value:  "transcription",
				Cases: []Case{
					{Terms: []string{"GO:0016987", "GO:0003899"}, Label: "RNA polymerase and sigma factors"},
					{Terms: []string{"GO:0003677"}, Label: "transcription factors and nucleoid associated proteins"},
				},
				Default: "transcription related",
			},
			{
				Column: ColCOGCategory,
				Value:  "translation, ribosomal structure and biogenesis",
				Cases: []Case{
					{Terms: []string{"GO:0005840"}, Label: "ribosome"},
				},
				Default: "translation, ribosomal biogenesis",
			},
			{
				Column: ColCOGCategory,
				Value:  "Replication, recombination, and repair",
				Cases: []Case{
					{Terms: []string{"GO:0003887"}, Label: "DNA polymerase"},
					{Terms: []string{"GO:0006260"}, Label: "DNA replication related"},
				},
				Default: "DNA Recombination and repair",
			},
		},
		Promotions: []Promotion{
			{
				Column: ColCOGClass,
				Value:  "poorly characterized",
				From:   ColCOGCategory,
				Keep:   []string{"general function prediction only", "function unknown"},
			},
		},
	}
}

// Refine applies rules to a copy of t. Rules naming a column that is not
// part of the hierarchy are ignored.
func Refine(t *Table, rules Rules) (*Table, RefineStats) {
	var stats RefineStats
	out := &Table{Hierarchy: t.Hierarchy, Skipped: t.Skipped, header: t.header}
	out.Records = make([]Record, 0, len(t.Records))

	for _, r := range t.Records {
		r.Labels = slices.Clone(r.Labels)
		keep := true

		for _, s := range rules.Splits {
			col := t.Column(s.Column)
			if col < 0 || r.Labels[col] != s.Value {
				continue
			}
			r.Labels[col] = s.label(r.GOTerms)
			stats.Relabelled++
		}
		for _, p := range rules.Promotions {
			col, from := t.Column(p.Column), t.Column(p.From)
			if col < 0 || from < 0 || r.Labels[col] != p.Value {
				continue
			}
			if !slices.Contains(p.Keep, r.Labels[from]) {
				keep = false
				break
			}
			r.Labels[col] = r.Labels[from]
			stats.Relabelled++
		}

		if !keep {
			stats.Dropped++
			continue
		}
		out.Records = append(out.Records, r)
	}
	return out, stats
}

func (s Split) label(goTerms string) string {
	for _, c := range s.Cases {
		for _, term := range c.Terms {
			if strings.Contains(goTerms, term) {
				return c.Label
			}
		}
	}
	return s.Default
}
