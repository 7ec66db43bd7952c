package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/proteomap/pkg/cache"
	"github.com/matzehuels/proteomap/pkg/geom"
	"github.com/matzehuels/proteomap/pkg/pipeline"
)

// completionCommand prints a shell completion script to stdout.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for proteomap.

Completions cover the subcommands, flag values such as --format, --border
and --cache, and input files: .csv tables for layout and refine, .geojson
maps for render.

  bash:        source <(proteomap completion bash)
  zsh:         proteomap completion zsh > "${fpath[1]}/_proteomap"
  fish:        proteomap completion fish | source
  powershell:  proteomap completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// completeFiles completes positional arguments with files of the given
// extensions.
func completeFiles(exts ...string) cobra.CompletionFunc {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return exts, cobra.ShellCompDirectiveFilterFileExt
	}
}

// completeValues completes a flag from a fixed set. Comma-separated flags
// complete the part after the last comma.
func completeValues(values ...string) cobra.CompletionFunc {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		prefix := ""
		if i := strings.LastIndex(toComplete, ","); i >= 0 {
			prefix = toComplete[:i+1]
		}
		out := make([]string, 0, len(values))
		for _, v := range values {
			out = append(out, prefix+v)
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}

var (
	completeFormats = completeValues(pipeline.FormatSVG, pipeline.FormatPNG, "none")
	completeBorders = completeValues(string(geom.ShapeCircle), string(geom.ShapeSquare))
	completeCaches  = completeValues(cache.Backends...)
)
