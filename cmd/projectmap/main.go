// Command projectmap renders project map snapshots: in a window, to SVG or
// PNG files, or headless under a scripted input replay.
package main

import (
	"fmt"
	"os"

	"github.com/phanxgames/projectmap"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// cli carries the settings shared by every subcommand.
type cli struct {
	cfg    Config
	logger zerolog.Logger
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	c := &cli{logger: zerolog.Nop()}
	cfg, envErr := loadConfig()
	c.cfg = cfg

	rootCmd := &cobra.Command{
		Use:   "projectmap",
		Short: "Render project map snapshots",
		Long: `projectmap lays out projects, zones, and subscribers from a snapshot file
on a grid and renders the result interactively or to SVG/PNG.

Settings come from PROJECTMAP_* environment variables; flags override them.`,
		Example: `  projectmap view --snapshot map.yaml --tags tags.yaml
  projectmap export --snapshot map.yaml --out map.png --selected p3
  projectmap replay --snapshot map.yaml --script clicks.yaml
  projectmap tags --tags tags.yaml`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return envErr
			}
			c.logger = projectmap.NewLogger(cmd.ErrOrStderr(), c.cfg.LogLevel)
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.cfg.LogLevel, "log-level", c.cfg.LogLevel, "log level (trace, debug, info, warn, error)")
	flags.StringVar(&c.cfg.TagsFile, "tags", c.cfg.TagsFile, "YAML tag catalog")
	flags.StringVar(&c.cfg.AssetsDir, "assets", c.cfg.AssetsDir, "directory that avatar references resolve under")
	flags.IntVar(&c.cfg.Width, "width", c.cfg.Width, "viewport width in pixels")
	flags.IntVar(&c.cfg.Height, "height", c.cfg.Height, "viewport height in pixels")
	flags.Float64Var(&c.cfg.GridSpacing, "grid", c.cfg.GridSpacing, "pixels per grid unit")

	rootCmd.AddCommand(newViewCommand(c))
	rootCmd.AddCommand(newExportCommand(c))
	rootCmd.AddCommand(newReplayCommand(c))
	rootCmd.AddCommand(newTagsCommand(c))

	return rootCmd
}
