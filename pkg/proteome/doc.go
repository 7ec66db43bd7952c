// Package proteome reads tidy per-protein abundance tables.
//
// A table has one row per protein and measurement with at least the
// columns dataset, condition and fg_per_cell (mass in femtograms per cell)
// plus one column per hierarchy level, for example cog_class,
// cog_category and gene_name. growth_rate_hr and go_terms are optional.
//
// [Load] parses a table, [Refine] applies the COG relabelling rules and
// [Table.Groups] splits it into one [Group] per (dataset, condition).
package proteome
