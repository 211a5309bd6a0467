package main

import (
	"fmt"
	"slices"

	"github.com/phanxgames/projectmap"
	"github.com/rs/zerolog"
)

// focusDuration is how long the view takes to center a new selection.
const focusDuration float32 = 0.25

// mapApp wires a board, its zoom/pan controller, and avatar images into one
// scene. Clicks only record the requested selection; tick applies it so the
// tree is never re-synced from inside input dispatch.
type mapApp struct {
	scene   *projectmap.Scene
	board   *projectmap.Board
	view    *projectmap.ZoomPan
	images  *projectmap.AvatarImages
	metrics *projectmap.SyncMetrics
	logger  zerolog.Logger

	width, height float64

	snap       projectmap.Snapshot
	selected   string
	pending    string
	hasPending bool
}

func newMapApp(cfg Config, snap projectmap.Snapshot, selected string, catalog *projectmap.TagCatalog, logger zerolog.Logger) (*mapApp, error) {
	fonts, err := projectmap.DefaultMeasurer()
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}

	a := &mapApp{
		scene:    projectmap.NewScene(),
		metrics:  projectmap.NewSyncMetrics(),
		logger:   logger,
		width:    float64(cfg.Width),
		height:   float64(cfg.Height),
		snap:     snap,
		selected: selected,
	}
	a.scene.ClearColor = projectmap.ParseHexColor("#1e1e2e")
	a.scene.SetLogger(logger)
	a.scene.SetFonts(fonts)

	a.images = projectmap.NewAvatarImages(projectmap.DirLoader{Root: cfg.AssetsDir})
	a.images.OnError = func(ref string, err error) {
		a.metrics.IncImageError()
		logger.Warn().Err(err).Str("ref", ref).Msg("avatar load failed")
	}
	a.scene.SetImages(a.images)

	bcfg := projectmap.DefaultBoardConfig()
	bcfg.MaxAvatars = cfg.MaxAvatars
	a.board = projectmap.NewBoard(a.scene, projectmap.Projector{
		Width:       float64(cfg.Width),
		Height:      float64(cfg.Height),
		GridSpacing: cfg.GridSpacing,
	}, bcfg)
	a.board.SetCatalog(catalog)
	a.board.SetMeasurer(fonts)
	a.board.SetMetrics(a.metrics)
	a.board.SetLogger(logger)
	a.board.OnActivate(func(p projectmap.Project) {
		a.pending = p.ID
		a.hasPending = true
	})

	a.view = projectmap.NewZoomPan(a.board.World())
	a.view.Attach(a.scene)

	a.board.Sync(a.snap, a.selected)
	if a.selected != "" && !slices.Contains(a.board.ProjectIDs(), a.selected) {
		logger.Warn().Str("project", a.selected).Msg("selected project not in snapshot")
	}
	return a, nil
}

// tick applies a pending selection and advances animations by dt seconds.
func (a *mapApp) tick(dt float32) {
	if a.hasPending {
		a.hasPending = false
		a.selectProject(a.pending)
	}
	a.board.Update(dt)
	a.view.Update(dt)
}

// selectProject re-syncs the current snapshot with a new selection and pans
// the view so the selected project ends up centered.
func (a *mapApp) selectProject(id string) {
	if id == a.selected {
		return
	}
	a.selected = id
	a.board.Sync(a.snap, id)
	if n := a.board.Node(id); n != nil {
		a.view.FocusOn(n.X, n.Y, a.width, a.height, focusDuration)
	}
	a.logger.Info().Str("project", id).Msg("selected")
}
