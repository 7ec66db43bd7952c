package proteome

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	perrors "github.com/matzehuels/proteomap/pkg/errors"
)

// Column names understood by the loader.
const (
	ColDataset    = "dataset"
	ColCondition  = "condition"
	ColMass       = "fg_per_cell"
	ColGrowthRate = "growth_rate_hr"
	ColGOTerms    = "go_terms"
)

// Record is one row of the table.
type Record struct {
	Dataset    string
	Condition  string
	Mass       float64
	GrowthRate float64
	HasGrowth  bool
	GOTerms    string

	// Labels holds the value of each hierarchy column, index-aligned with
	// Table.Hierarchy.
	Labels []string

	row []string
}

// Table is a parsed abundance table.
type Table struct {
	Hierarchy []string
	Records   []Record

	// Skipped counts rows whose mass could not be parsed.
	Skipped int

	header []string
}

// LoadFile opens path and calls Load.
func LoadFile(path string, hierarchy []string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "input table %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := Load(f, hierarchy)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Load parses a CSV table. The header must contain dataset, condition,
// fg_per_cell and every hierarchy column. Rows with an unparsable or
// negative mass are skipped and counted in Table.Skipped.
func Load(r io.Reader, hierarchy []string) (*Table, error) {
	if err := perrors.ValidateHierarchy(hierarchy); err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "empty table")
	}
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "read header")
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	required := append([]string{ColDataset, ColCondition, ColMass}, hierarchy...)
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, perrors.New(perrors.ErrCodeColumnNotFound, "missing required column %q", col)
		}
	}

	t := &Table{Hierarchy: slices.Clone(hierarchy), header: header}
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "line %d", line)
		}
		rec, ok := parseRecord(row, idx, hierarchy)
		if !ok {
			t.Skipped++
			continue
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

func parseRecord(row []string, idx map[string]int, hierarchy []string) (Record, bool) {
	field := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	mass, err := strconv.ParseFloat(field(ColMass), 64)
	if err != nil || mass < 0 || math.IsNaN(mass) {
		return Record{}, false
	}
	rec := Record{
		Dataset:   field(ColDataset),
		Condition: field(ColCondition),
		Mass:      mass,
		GOTerms:   field(ColGOTerms),
		Labels:    make([]string, len(hierarchy)),
		row:       row,
	}
	if g, err := strconv.ParseFloat(field(ColGrowthRate), 64); err == nil {
		rec.GrowthRate, rec.HasGrowth = g, true
	}
	for i, col := range hierarchy {
		rec.Labels[i] = field(col)
	}
	return rec, true
}

// Column returns the index of a hierarchy column or -1.
func (t *Table) Column(name string) int {
	return slices.Index(t.Hierarchy, name)
}

// Filter returns the records whose dataset is in datasets. An empty list
// keeps everything.
func (t *Table) Filter(datasets []string) *Table {
	if len(datasets) == 0 {
		return t
	}
	out := &Table{Hierarchy: t.Hierarchy, Skipped: t.Skipped, header: t.header}
	for _, r := range t.Records {
		if slices.Contains(datasets, r.Dataset) {
			out.Records = append(out.Records, r)
		}
	}
	return out
}

// Write emits the table as CSV with the original header. Hierarchy columns
// carry the current labels.
func (t *Table) Write(w io.Writer) error {
	header := t.header
	if header == nil {
		header = append([]string{ColDataset, ColCondition, ColMass}, t.Hierarchy...)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range t.Records {
		row := make([]string, len(header))
		copy(row, r.row)
		set := func(col, val string) {
			if i, ok := idx[col]; ok {
				row[i] = val
			}
		}
		set(ColDataset, r.Dataset)
		set(ColCondition, r.Condition)
		if r.row == nil {
			set(ColMass, strconv.FormatFloat(r.Mass, 'g', -1, 64))
		}
		for i, col := range t.Hierarchy {
			set(col, r.Labels[i])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
