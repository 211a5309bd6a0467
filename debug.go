package projectmap

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// debugLogger receives tree warnings raised while debug mode is on. Scenes
// point it at their own logger when debug mode is enabled.
var debugLogger = zerolog.Nop()

// NewLogger builds a console-friendly zerolog logger writing to w at the named
// level ("trace", "debug", "info", "warn", "error"). Unknown levels mean info.
func NewLogger(w io.Writer, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	return zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Str("component", "projectmap").Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// debugStats holds per-frame timing and command metrics.
// Only populated when Scene.debug is true.
type debugStats struct {
	updateTime   time.Duration
	traverseTime time.Duration
	sortTime     time.Duration
	submitTime   time.Duration
	commandCount int
	nodeCount    int
}

// debugLog writes timing and command stats at debug level.
func (s *Scene) debugLog(stats debugStats) {
	if !s.debug {
		return
	}
	s.logger.Debug().
		Dur("update", stats.updateTime).
		Dur("traverse", stats.traverseTime).
		Dur("sort", stats.sortTime).
		Dur("submit", stats.submitTime).
		Int("commands", stats.commandCount).
		Int("nodes", stats.nodeCount).
		Msg("frame")
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. In release mode callers skip this entirely.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("projectmap debug: %s on disposed node %q", op, n.Name))
	}
}

// debugMaxTreeDepth is the depth above which a warning is logged.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		debugLogger.Warn().Int("depth", depth).Int("threshold", debugMaxTreeDepth).
			Str("node", n.Name).Msg("tree depth exceeds threshold")
	}
}

// debugMaxChildCount is the child count above which a warning is logged.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		debugLogger.Warn().Int("children", len(n.children)).Int("threshold", debugMaxChildCount).
			Str("node", n.Name).Msg("child count exceeds threshold")
	}
}

// countCommands tallies a command list by type, for debug summaries.
func countCommands(commands []RenderCommand) (rects, texts, images int) {
	for i := range commands {
		switch commands[i].Type {
		case CommandRect:
			rects++
		case CommandText:
			texts++
		case CommandImage:
			images++
		}
	}
	return rects, texts, images
}
