package projectmap

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// defaultLineSpacing is the line height multiplier used when the measurer
// cannot report font metrics.
const defaultLineSpacing = 1.2

// --- TextBlock ---

// TextBlock holds text content, formatting, and cached layout state.
type TextBlock struct {
	Content    string
	FontSize   float64
	Bold       bool
	Color      Color
	Align      TextAlign
	WrapWidth  float64 // 0 = no wrapping; also the alignment reference width
	BoxHeight  float64 // when > 0, lines are centered vertically in this height
	LineHeight float64 // override; 0 = measurer metrics or 1.2 * FontSize
	Measurer   TextMeasurer

	// Cached layout (unexported)
	layoutDirty bool
	measuredW   float64
	measuredH   float64
	lines       []textLine
}

// textLine is one laid-out line, positioned relative to the node origin.
type textLine struct {
	text  string
	x, y  float64
	width float64
}

// lineHeighter is implemented by measurers that know real font metrics.
type lineHeighter interface {
	LineHeight(size float64) float64
}

// SetContent replaces the text and invalidates the layout when it changed.
func (tb *TextBlock) SetContent(s string) {
	if tb.Content == s {
		return
	}
	tb.Content = s
	tb.layoutDirty = true
}

// SetFontSize changes the font size and invalidates the layout when it changed.
func (tb *TextBlock) SetFontSize(size float64) {
	if tb.FontSize == size {
		return
	}
	tb.FontSize = size
	tb.layoutDirty = true
}

// Invalidate forces a layout recompute. Call it after setting fields directly.
func (tb *TextBlock) Invalidate() {
	tb.layoutDirty = true
}

// Measure returns the laid-out width and height of the block.
func (tb *TextBlock) Measure() (width, height float64) {
	tb.layout()
	return tb.measuredW, tb.measuredH
}

// Lines returns the text of each laid-out line.
func (tb *TextBlock) Lines() []string {
	lines := tb.layout()
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.text
	}
	return out
}

// lineHeight returns the effective line height for this text block.
func (tb *TextBlock) lineHeight() float64 {
	if tb.LineHeight > 0 {
		return tb.LineHeight
	}
	if lh, ok := tb.Measurer.(lineHeighter); ok {
		return lh.LineHeight(tb.FontSize)
	}
	return tb.FontSize * defaultLineSpacing
}

func (tb *TextBlock) measure(s string) float64 {
	if tb.Measurer == nil {
		return 0
	}
	return tb.Measurer.MeasureString(s, tb.FontSize)
}

// layout recomputes line breaks and positions if dirty. Returns the cached lines.
func (tb *TextBlock) layout() []textLine {
	if !tb.layoutDirty {
		return tb.lines
	}
	tb.layoutDirty = false
	tb.lines = tb.lines[:0]

	var maxW float64
	for _, para := range strings.Split(tb.Content, "\n") {
		for _, ln := range tb.wrap(para) {
			w := tb.measure(ln)
			if w > maxW {
				maxW = w
			}
			tb.lines = append(tb.lines, textLine{text: ln, width: w})
		}
	}

	lh := tb.lineHeight()
	tb.measuredW = maxW
	tb.measuredH = float64(len(tb.lines)) * lh

	ref := tb.WrapWidth
	if ref <= 0 {
		ref = maxW
	}
	var top float64
	if tb.BoxHeight > 0 {
		top = (tb.BoxHeight - tb.measuredH) / 2
	}
	for i := range tb.lines {
		l := &tb.lines[i]
		switch tb.Align {
		case TextAlignCenter:
			l.x = (ref - l.width) / 2
		case TextAlignRight:
			l.x = ref - l.width
		default:
			l.x = 0
		}
		l.y = top + float64(i)*lh
	}
	return tb.lines
}

// wrap breaks one paragraph into lines no wider than WrapWidth. Words are
// kept whole when they fit; a word wider than the whole line is broken
// between runes, taking at least one rune per line.
func (tb *TextBlock) wrap(para string) []string {
	if tb.WrapWidth <= 0 || tb.Measurer == nil {
		return []string{para}
	}
	words := strings.Fields(para)
	if len(words) == 0 {
		return []string{""}
	}

	var out []string
	cur := ""
	for _, w := range words {
		candidate := w
		if cur != "" {
			candidate = cur + " " + w
		}
		if tb.measure(candidate) <= tb.WrapWidth {
			cur = candidate
			continue
		}
		if cur != "" {
			out = append(out, cur)
		}
		for w != "" && tb.measure(w) > tb.WrapWidth {
			var head string
			head, w = tb.breakWord(w)
			out = append(out, head)
		}
		cur = w
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}

// breakWord splits w after the longest rune prefix that fits WrapWidth.
func (tb *TextBlock) breakWord(w string) (head, tail string) {
	runes := []rune(w)
	n := 1
	for n < len(runes) && tb.measure(string(runes[:n+1])) <= tb.WrapWidth {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}

// --- TTF measurement ---

// TTFMeasurer wraps Ebitengine's text/v2 for TrueType measurement and
// drawing at arbitrary sizes. Faces are created once per size and reused.
type TTFMeasurer struct {
	source *text.GoTextFaceSource
	faces  map[float64]*text.GoTextFace
}

// NewTTFMeasurer parses TrueType or OpenType font data.
func NewTTFMeasurer(ttfData []byte) (*TTFMeasurer, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(ttfData))
	if err != nil {
		return nil, fmt.Errorf("projectmap: failed to parse TTF data: %w", err)
	}
	return &TTFMeasurer{
		source: source,
		faces:  make(map[float64]*text.GoTextFace),
	}, nil
}

var defaultMeasurer *TTFMeasurer

// DefaultMeasurer returns a shared measurer backed by the embedded Go Regular
// font.
func DefaultMeasurer() (*TTFMeasurer, error) {
	if defaultMeasurer != nil {
		return defaultMeasurer, nil
	}
	m, err := NewTTFMeasurer(goregular.TTF)
	if err != nil {
		return nil, err
	}
	defaultMeasurer = m
	return m, nil
}

// Face returns the cached face for a pixel size.
func (m *TTFMeasurer) Face(size float64) *text.GoTextFace {
	if f, ok := m.faces[size]; ok {
		return f
	}
	f := &text.GoTextFace{Source: m.source, Size: size}
	m.faces[size] = f
	return f
}

// MeasureString returns the advance width of s at the given size.
func (m *TTFMeasurer) MeasureString(s string, size float64) float64 {
	if s == "" || size <= 0 {
		return 0
	}
	w, _ := text.Measure(s, m.Face(size), 0)
	return w
}

// LineHeight returns the vertical distance between baselines at size.
func (m *TTFMeasurer) LineHeight(size float64) float64 {
	if size <= 0 {
		return 0
	}
	met := m.Face(size).Metrics()
	return met.HAscent + met.HDescent + met.HLineGap
}

// --- Text rendering helpers (used by render.go) ---

// emitTextCommands emits one CommandText per laid-out line.
func emitTextCommands(tb *TextBlock, n *Node, commands []RenderCommand, treeOrder *int) []RenderCommand {
	lines := tb.layout()
	lh := tb.lineHeight()
	c := tb.Color
	c.A *= n.worldAlpha
	for _, line := range lines {
		if line.text == "" {
			continue
		}
		*treeOrder++
		commands = append(commands, RenderCommand{
			Type:        CommandText,
			Name:        n.Name,
			Key:         n.Key,
			Transform:   composeLocalOffset(n.worldTransform, line.x, line.y),
			Width:       line.width,
			Height:      lh,
			Text:        line.text,
			FontSize:    tb.FontSize,
			Bold:        tb.Bold,
			TextColor:   c,
			Alpha:       n.worldAlpha,
			RenderLayer: n.RenderLayer,
			treeOrder:   *treeOrder,
		})
	}
	return commands
}

// composeLocalOffset returns world * Translate(localX, localY).
func composeLocalOffset(world [6]float64, localX, localY float64) [6]float64 {
	return [6]float64{
		world[0], world[1], world[2], world[3],
		world[0]*localX + world[2]*localY + world[4],
		world[1]*localX + world[3]*localY + world[5],
	}
}
