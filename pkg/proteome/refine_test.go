package proteome

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRefineDefaultRules(t *testing.T) {
	tbl, err := Load(strings.NewReader(sample), hierarchy)
	require.NoError(t, err)

	refined, stats := Refine(tbl, DefaultRules())
	require.Equal(t, 1, stats.Dropped)
	require.Len(t, refined.Records, 6)

	byGene := make(map[string][]string)
	for _, r := range refined.Records {
		byGene[r.Dataset+"/"+r.Condition+"/"+r.Labels[2]] = r.Labels
	}

	tests := []struct {
		key      string
		class    string
		category string
	}{
		{"schmidt_2016/glucose/rpoB", "information storage and processing", "RNA polymerase and sigma factors"},
		{"schmidt_2016/glucose/lacI", "information storage and processing", "transcription factors and nucleoid associated proteins"},
		{"schmidt_2016/glucose/rpsA", "information storage and processing", "ribosome"},
		{"schmidt_2016/glucose/yaaA", "function unknown", "function unknown"},
		{"li_2014/MOPS complete/dnaE", "information storage and processing", "DNA polymerase"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			labels, ok := byGene[tt.key]
			require.True(t, ok)
			require.Equal(t, tt.class, labels[0])
			require.Equal(t, tt.category, labels[1])
		})
	}
	_, ok := byGene["schmidt_2016/glucose/yabB"]
	require.False(t, ok)

	// The input is not modified.
	require.Equal(t, "transcription", tbl.Records[0].Labels[1])
}

func TestSplitDefault(t *testing.T) {
	s := DefaultRules().Splits[2]
	require.Equal(t, "DNA replication related", s.label("GO:0006260"))
	require.Equal(t, "DNA Recombination and repair", s.label(""))
}

func TestRefineIgnoresUnknownColumns(t *testing.T) {
	tbl, err := Load(strings.NewReader(sample), []string{"gene_name"})
	require.NoError(t, err)

	refined, stats := Refine(tbl, DefaultRules())
	require.Zero(t, stats.Relabelled)
	require.Zero(t, stats.Dropped)
	require.Len(t, refined.Records, len(tbl.Records))
}
