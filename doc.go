// Package projectmap renders a project map: projects laid out on a grid,
// grouped by translucent zones, decorated with tag badges and subscriber
// avatars, on an [Ebitengine] scene graph.
//
// # Quick start
//
// Build a [Scene], put a [Board] on it, and hand the board snapshots:
//
//	scene := projectmap.NewScene()
//	board := projectmap.NewBoard(scene, projectmap.Projector{
//		Width: 1280, Height: 800, GridSpacing: 150,
//	}, projectmap.DefaultBoardConfig())
//	board.SetCatalog(catalog)
//	board.Sync(snapshot, "")
//
//	view := projectmap.NewZoomPan(board.World())
//	view.Attach(scene)
//
//	projectmap.Run(scene, projectmap.RunConfig{
//		Title: "Projects", Width: 1280, Height: 800,
//	})
//
// # Sync
//
// [Board.Sync] reconciles the node tree with a complete [Snapshot]. Nodes are
// keyed by project ID and zone ID: a record seen before updates its existing
// node in place, a new record creates one, and a vanished record disposes
// its node. Syncing the same snapshot twice changes nothing. Selection is an
// argument of Sync, so moving the highlight never recreates a node.
//
// # Geometry
//
// A [Projector] maps grid coordinates to pixels with the viewport center as
// the grid origin and y pointing up. Zoom and pan are a single transform on
// the board's world container, owned by [ZoomPan]; nothing derived from
// data is recomputed when the view moves.
//
// # Text and color
//
// Tag colors come from a [TagCatalog]; [ContrastOf] picks black or white
// text for a badge. [FitTagLabel] shrinks and then truncates tag text to its
// badge, and [NodeLabelSize] picks the project label size.
//
// # Headless use
//
// [Scene.Commands] returns the sorted draw list without a GPU.
// [Scene.ExportSVG] and [Scene.ExportPNG] render it to files, and the
// Inject* methods plus [LoadInputScript] drive input in tests and replays.
//
// [Ebitengine]: https://ebitengine.org
package projectmap
