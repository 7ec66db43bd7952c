package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/proteomap/pkg/config"
	"github.com/matzehuels/proteomap/pkg/pipeline"
)

// refineCommand creates the refine command that rewrites COG categories.
func (c *CLI) refineCommand() *cobra.Command {
	var (
		output string
		in     inputFlags
	)
	def := config.Default()

	cmd := &cobra.Command{
		Use:   "refine [table.csv]",
		Short: "Split coarse COG categories by GO annotation",
		Long: `Split coarse COG categories by GO annotation.

Transcription, translation and replication proteins are relabelled by their
go_terms, and the "poorly characterized" class is replaced by its two
categories. The refined table keeps every input column.

The rules can be replaced with a [refine.rules] section in the config file.
'layout' applies the same refinement unless --no-refine is given.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeFiles("csv"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			in.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			opts := pipeline.FromConfig(cfg)
			opts.Input = args[0]
			opts.Logger = c.Logger
			rules := cfg.RefineRules()
			opts.RefineRules = &rules

			out := output
			if out == "" {
				base := strings.TrimSuffix(args[0], filepath.Ext(args[0]))
				out = base + ".refined.csv"
			}

			stats, err := pipeline.RefineFile(cmd.Context(), out, opts)
			if err != nil {
				return err
			}

			printSuccess("Refined %s", args[0])
			printFile(out)
			printDetail("%d labels changed, %d rows dropped", stats.Relabelled, stats.Dropped)
			printNewline()
			printNextStep("Lay out", "proteomap layout --no-refine "+out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.refined.csv)")
	in.register(cmd, def)

	return cmd
}
