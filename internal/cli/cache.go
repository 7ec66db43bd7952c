package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/proteomap/pkg/cache"
	"github.com/matzehuels/proteomap/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var cf cacheFlags
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached layouts and images",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			cf.apply(cmd, cfg)

			cc, err := cache.Open(cmd.Context(), cfg.Cache.Backend, cfg.Cache.Location)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer cc.Close()

			clearer, ok := cc.(cache.Clearer)
			if !ok {
				printInfo("Cache backend %q holds nothing to clear", cfg.Cache.Backend)
				return nil
			}
			if err := clearer.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared %s cache", cfg.Cache.Backend)
			if loc := cacheLocation(cc); loc != "" {
				printDetail("Location: %s", loc)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cf.backend, "cache", config.Default().Cache.Backend, "cache backend: file, sqlite, redis")
	cmd.Flags().StringVar(&cf.location, "cache-location", "", "cache directory, database path or redis URL")
	return cmd
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

// cacheLocation reports where a local cache keeps its data.
func cacheLocation(c cache.Cache) string {
	switch c := c.(type) {
	case *cache.FileCache:
		return c.Dir()
	case *cache.SQLiteCache:
		return c.Path()
	}
	return ""
}
