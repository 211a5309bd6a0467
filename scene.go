package projectmap

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
)

const defaultCommandCap = 1024

// Scene is the top-level object that owns the node tree, input state,
// and render buffers.
type Scene struct {
	root   *Node
	debug  bool
	logger zerolog.Logger

	// ClearColor, when its alpha is non-zero, fills the target before drawing.
	ClearColor Color

	// SnapshotDir is where labeled snapshots are written.
	SnapshotDir string

	// Render state
	commands []RenderCommand
	sortBuf  []RenderCommand
	images   *AvatarImages
	fonts    *TTFMeasurer
	gpu      gpuState

	// Input state
	handlers     handlerRegistry
	pointer      pointerState
	hitBuf       []*Node
	dragDeadZone float64
	injectQueue  []syntheticEvent

	script        *ScriptRunner
	snapshotQueue []string
	updateFunc    func() error
}

// NewScene creates a new scene with a pre-created root container.
func NewScene() *Scene {
	root := NewContainer("root")
	root.Interactable = true
	return &Scene{
		root:         root,
		logger:       zerolog.Nop(),
		commands:     make([]RenderCommand, 0, defaultCommandCap),
		sortBuf:      make([]RenderCommand, 0, defaultCommandCap),
		dragDeadZone: defaultDragDeadZone,
		SnapshotDir:  DefaultSnapshotDir,
	}
}

// Root returns the scene's root container node.
func (s *Scene) Root() *Node {
	return s.root
}

// Update refreshes world transforms and processes one frame of input.
// Tweens are advanced by their owners (Board.Update, ZoomPan.Update).
func (s *Scene) Update() {
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}
	updateWorldTransform(s.root, identityTransform, 1.0, false)
	if s.script != nil {
		s.script.step(s)
	}
	s.processInput()
	if s.debug {
		s.logger.Trace().Dur("elapsed", time.Since(t0)).Msg("update")
	}
}

// UpdateInjected is Update for headless use: it consumes only injected and
// scripted input and never polls real devices.
func (s *Scene) UpdateInjected() {
	updateWorldTransform(s.root, identityTransform, 1.0, false)
	if s.script != nil {
		s.script.step(s)
	}
	s.processInjectedInput()
}

// Draw traverses the scene tree, emits render commands, sorts them, and
// submits them to the given screen image.
func (s *Scene) Draw(screen *ebiten.Image) {
	var stats debugStats
	var t0 time.Time

	if s.debug {
		s.buildCommands(&stats)
		t0 = time.Now()
	} else {
		s.buildCommands(nil)
	}
	s.submit(screen)
	s.flushSnapshots(screen)
	if s.debug {
		stats.submitTime = time.Since(t0)
		stats.nodeCount = countSubtree(s.root)
		s.debugLog(stats)
	}
}

// Commands traverses the tree and returns the sorted render command list
// without touching the GPU. The returned slice is a copy.
func (s *Scene) Commands() []RenderCommand {
	s.buildCommands(nil)
	out := make([]RenderCommand, len(s.commands))
	copy(out, s.commands)
	return out
}

func (s *Scene) buildCommands(stats *debugStats) {
	s.commands = s.commands[:0]
	var t0 time.Time
	if stats != nil {
		t0 = time.Now()
	}

	treeOrder := 0
	s.traverse(s.root, identityTransform, 1.0, false, &treeOrder)

	if stats != nil {
		stats.traverseTime = time.Since(t0)
		t0 = time.Now()
	}

	s.mergeSort()

	if stats != nil {
		stats.sortTime = time.Since(t0)
		stats.commandCount = len(s.commands)
	}
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth and child count warnings are logged, and per-frame
// timing stats are written at debug level.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
	if enabled {
		debugLogger = s.logger
	} else {
		debugLogger = zerolog.Nop()
	}
}

// globalDebug mirrors the most recently set Scene debug flag so that node
// operations (which lack a Scene pointer) can check it cheaply. Only valid
// with a single Scene; multiple Scenes with differing debug modes will
// reflect whichever called SetDebugMode last.
var globalDebug bool

// SetLogger replaces the scene's logger. The default discards everything.
func (s *Scene) SetLogger(l zerolog.Logger) {
	s.logger = l
	if s.debug {
		debugLogger = l
	}
}

// Logger returns the scene's logger.
func (s *Scene) Logger() zerolog.Logger {
	return s.logger
}

// SetUpdateFunc registers a callback run by Run once per tick, before the
// scene processes input.
func (s *Scene) SetUpdateFunc(fn func() error) {
	s.updateFunc = fn
}

// SetImages sets the cache used to resolve image node references at draw
// time. Without one, image nodes draw as placeholder discs.
func (s *Scene) SetImages(images *AvatarImages) {
	s.images = images
}

// SetFonts sets the font used to draw text commands. Without one the
// embedded default font is used.
func (s *Scene) SetFonts(m *TTFMeasurer) {
	s.fonts = m
}
