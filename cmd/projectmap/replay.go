package main

import (
	"fmt"
	"os"

	"github.com/phanxgames/projectmap"
	"github.com/spf13/cobra"
)

const replayFrameDT = float32(1.0 / 60)

func newReplayCommand(c *cli) *cobra.Command {
	var snapshotPath, scriptPath, outDir string
	var maxFrames int

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Run a scripted input session headless and write its snapshots",
		Long: `Replay feeds an input script (click, hover, drag, wheel, wait, snapshot
steps) into the map one frame at a time without opening a window. Each
snapshot step writes a PNG into the output directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, selected, err := loadSnapshot(snapshotPath)
			if err != nil {
				return err
			}
			catalog, err := loadCatalog(c.cfg.TagsFile)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(scriptPath)
			if err != nil {
				return fmt.Errorf("read script: %w", err)
			}
			runner, err := projectmap.LoadInputScript(data)
			if err != nil {
				return err
			}
			app, err := newMapApp(c.cfg, snap, selected, catalog, c.logger)
			if err != nil {
				return err
			}
			app.scene.SnapshotDir = outDir
			app.scene.SetScriptRunner(runner)

			paths, frames, err := replay(app, runner, c.cfg.Width, c.cfg.Height, maxFrames)
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			if err != nil {
				return err
			}
			c.logger.Info().Int("frames", frames).Int("snapshots", len(paths)).
				Str("selected", app.board.Selected()).Msg("replay finished")
			return nil
		},
	}

	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "snapshot YAML file (required)")
	cmd.Flags().StringVar(&scriptPath, "script", "", "input script YAML file (required)")
	cmd.Flags().StringVar(&outDir, "out-dir", projectmap.DefaultSnapshotDir, "directory for snapshot PNGs")
	cmd.Flags().IntVar(&maxFrames, "max-frames", 3600, "stop after this many frames")
	_ = cmd.MarkFlagRequired("snapshot")
	_ = cmd.MarkFlagRequired("script")
	return cmd
}

// replay steps the app until the script finishes and the view settles.
// Snapshots queued during a frame are rasterized after that frame's selection
// and animations apply.
func replay(app *mapApp, runner *projectmap.ScriptRunner, width, height, maxFrames int) ([]string, int, error) {
	var paths []string
	frames := 0
	for !runner.Done() || app.view.Animating() {
		if frames >= maxFrames {
			return paths, frames, fmt.Errorf("script did not finish within %d frames", maxFrames)
		}
		app.scene.UpdateInjected()
		app.tick(replayFrameDT)
		frames++

		if len(app.scene.PendingSnapshots()) > 0 {
			written, err := app.scene.WriteSnapshots(width, height)
			if err != nil {
				return paths, frames, err
			}
			paths = append(paths, written...)
		}
	}
	return paths, frames, nil
}
