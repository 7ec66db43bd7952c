package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/proteomap/pkg/config"
	"github.com/matzehuels/proteomap/pkg/pipeline"
)

type layoutFlags struct {
	output string
	input  inputFlags
	solver solverFlags
	render renderFlags
	cache  cacheFlags
}

// layoutCommand creates the layout command that turns a table into
// proteomaps.
func (c *CLI) layoutCommand() *cobra.Command {
	var f layoutFlags
	def := config.Default()

	cmd := &cobra.Command{
		Use:   "layout [table.csv]",
		Short: "Compute proteomaps from a protein abundance table",
		Long: `Compute proteomaps from a protein abundance table.

The table is a CSV file with the columns dataset, condition, fg_per_cell and
one column per hierarchy level (default: cog_class, cog_category, gene_name).
Optional columns are growth_rate_hr and go_terms.

One map is computed per (dataset, condition). Each is written as
treemap_<dataset>_<condition>_<growth>.geojson to the output directory,
together with the requested images.

Layouts are cached; rerunning with the same table and settings is instant.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeFiles("csv"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("output") {
				cfg.Output = f.output
			}
			f.input.apply(cmd, cfg)
			f.solver.apply(cmd, cfg)
			f.render.apply(cmd, cfg)
			f.cache.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			opts := pipeline.FromConfig(cfg)
			opts.Input = args[0]
			opts.Refresh = f.cache.refresh
			opts.Logger = c.Logger
			return c.runLayout(cmd.Context(), cfg, opts, f.cache.noCache)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", def.Output, "output directory")
	f.input.register(cmd, def)
	f.solver.register(cmd, def)
	f.render.register(cmd, def)
	f.cache.register(cmd, def)

	return cmd
}

// runLayout runs the pipeline and reports the written files.
func (c *CLI) runLayout(ctx context.Context, cfg *config.Config, opts pipeline.Options, noCache bool) error {
	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Computing proteomaps...")
	opts.Progress = func(done, total int, out pipeline.Output) {
		spinner.SetMessage(layoutProgress(done, total, out))
	}
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.done(fmt.Sprintf("Computed %d proteomaps", len(result.Outputs)))

	printSuccess("Layout complete")
	for _, out := range result.Outputs {
		printInfo("%s / %s", out.Dataset, out.Condition)
		for _, format := range []string{pipeline.FormatGeoJSON, pipeline.FormatSVG, pipeline.FormatPNG} {
			if path, ok := out.Files[format]; ok {
				printFile(path)
			}
		}
		printStats(len(out.Map.Nodes), len(out.Map.Skipped), out.CacheHit)
		if len(out.Map.Skipped) > 0 {
			printWarning("%d branches could not be laid out (see --verbose)", len(out.Map.Skipped))
		}
	}
	if result.Stats.SkippedRows > 0 {
		printDetail("%d rows without a valid mass were skipped", result.Stats.SkippedRows)
	}
	if len(result.Outputs) > 0 {
		printNewline()
		printNextStep("Re-render", "proteomap render "+result.Outputs[0].Files[pipeline.FormatGeoJSON])
	}
	return nil
}

// layoutProgress is the spinner message after a group is written.
func layoutProgress(done, total int, out pipeline.Output) string {
	msg := fmt.Sprintf("Computing proteomaps... %d/%d (%s / %s", done, total, out.Dataset, out.Condition)
	if out.CacheHit {
		msg += ", cached"
	}
	return msg + ")"
}
