package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/phanxgames/projectmap"
	"github.com/spf13/cobra"
)

func newViewCommand(c *cli) *cobra.Command {
	var snapshotPath string

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Open an interactive map window",
		Long: `Open a window showing the snapshot. Click a project to select it, drag to
pan, use the wheel to zoom, and press R to reset the view.

Avatar references are read from the assets directory. Remote references
(http:// or https:// URLs) are not fetched; those badges show the default
avatar.`,
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
			app, err := newMapApp(c.cfg, snap, selected, catalog, c.logger)
			if err != nil {
				return err
			}

			if c.cfg.MetricsAddr != "" {
				srv := &http.Server{
					Addr:              c.cfg.MetricsAddr,
					Handler:           metricsMux(app.metrics),
					ReadHeaderTimeout: 5 * time.Second,
				}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						c.logger.Error().Err(err).Str("addr", c.cfg.MetricsAddr).Msg("metrics server stopped")
					}
				}()
				defer srv.Close()
				c.logger.Info().Str("addr", c.cfg.MetricsAddr).Msg("serving metrics")
			}

			app.scene.SetUpdateFunc(func() error {
				if inpututil.IsKeyJustPressed(ebiten.KeyR) {
					app.view.Reset()
				}
				app.tick(1 / float32(ebiten.TPS()))
				return nil
			})

			return projectmap.Run(app.scene, projectmap.RunConfig{
				Title:  "projectmap",
				Width:  c.cfg.Width,
				Height: c.cfg.Height,
			})
		},
	}

	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "snapshot YAML file (required)")
	cmd.Flags().StringVar(&c.cfg.MetricsAddr, "metrics-addr", c.cfg.MetricsAddr, "serve Prometheus metrics on this address")
	_ = cmd.MarkFlagRequired("snapshot")
	return cmd
}

func metricsMux(m *projectmap.SyncMetrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return mux
}
