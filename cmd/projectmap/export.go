package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func newExportCommand(c *cli) *cobra.Command {
	var snapshotPath, outPath, selected, format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a snapshot to SVG or PNG without a window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, fileSelected, err := loadSnapshot(snapshotPath)
			if err != nil {
				return err
			}
			if selected == "" {
				selected = fileSelected
			}
			catalog, err := loadCatalog(c.cfg.TagsFile)
			if err != nil {
				return err
			}
			app, err := newMapApp(c.cfg, snap, selected, catalog, c.logger)
			if err != nil {
				return err
			}

			format, err = exportFormat(format, outPath)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "-" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				w = f
			}

			switch format {
			case "svg":
				err = app.scene.ExportSVG(w, c.cfg.Width, c.cfg.Height)
			default:
				err = app.scene.ExportPNG(w, c.cfg.Width, c.cfg.Height)
			}
			if err != nil {
				return err
			}
			projects, zones := app.board.Len()
			c.logger.Info().Str("out", outPath).Str("format", format).
				Int("projects", projects).Int("zones", zones).Msg("exported")
			return nil
		},
	}

	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "snapshot YAML file (required)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file, - for stdout")
	cmd.Flags().StringVar(&selected, "selected", "", "project ID to highlight (overrides the snapshot)")
	cmd.Flags().StringVar(&format, "format", "", "svg or png (default: from the output extension, else png)")
	_ = cmd.MarkFlagRequired("snapshot")
	return cmd
}

// exportFormat resolves the output format from the flag or the file extension.
func exportFormat(flag, outPath string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(flag))
	if f == "" {
		f = strings.TrimPrefix(strings.ToLower(filepath.Ext(outPath)), ".")
	}
	switch f {
	case "svg", "png":
		return f, nil
	case "":
		return "png", nil
	default:
		return "", fmt.Errorf("unsupported format %q", f)
	}
}
