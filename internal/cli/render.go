package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/proteomap/pkg/config"
	"github.com/matzehuels/proteomap/pkg/pipeline"
)

// renderCommand creates the render command that draws existing layouts.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output    string
		hierarchy []string
		rf        renderFlags
	)
	def := config.Default()

	cmd := &cobra.Command{
		Use:   "render [treemap.geojson...]",
		Short: "Render proteomap layouts to SVG or PNG",
		Long: `Render proteomap layouts to SVG or PNG.

Takes GeoJSON files written by 'layout' and draws them again, for example at
another size or with a different label threshold. Images are written next
to each input unless --output is given.`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeFiles("geojson"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("hierarchy") {
				cfg.Hierarchy = hierarchy
			}
			rf.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			opts := pipeline.FromConfig(cfg)
			opts.OutputDir = output
			opts.Logger = c.Logger
			if len(opts.Formats) == 0 {
				return fmt.Errorf("no image format selected")
			}

			runner := pipeline.NewRunner(nil, nil, c.Logger)
			for _, path := range args {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				files, err := runner.RenderFile(cmd.Context(), path, opts)
				if err != nil {
					return fmt.Errorf("render %s: %w", path, err)
				}
				printSuccess("Rendered %s", path)
				for _, format := range opts.Formats {
					printFile(files[format])
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", ".", "output directory (default: next to each input)")
	cmd.Flags().StringSliceVar(&hierarchy, "hierarchy", def.Hierarchy, "hierarchy columns used when features carry no path")
	rf.register(cmd, def)

	return cmd
}
