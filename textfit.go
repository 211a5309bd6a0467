package projectmap

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Ellipsis is appended to truncated text.
const Ellipsis = "..."

// Label sizing constants for project nodes and tag badges.
const (
	LabelFontSize      = 14.0 // node label size for ordinary names
	LabelSmallFontSize = 10.0 // node label size when a single word is long
	LabelLongWordRunes = 12   // a single word longer than this selects the small size
	TagFontSize        = 8.0  // starting size for tag badge text
	TagMinFontSize     = 5.0  // floor of the tag shrink search
	TagFontStep        = 0.5  // shrink step of the tag search
)

// TextMeasurer reports the rendered width of text at a font size in pixels.
type TextMeasurer interface {
	MeasureString(text string, size float64) float64
}

// FittedLabel is the outcome of fitting text into a width budget.
type FittedLabel struct {
	Text      string
	FontSize  float64
	Shrunk    bool // FontSize was reduced below the starting size
	Truncated bool // Text was cut and ends in Ellipsis
}

// NodeLabelSize chooses the font size of a project label. A name with no
// whitespace at all that is longer than LabelLongWordRunes gets the small
// size; everything else the regular size. Leading or trailing whitespace
// counts as a word break, so "Supercalifragilistic " keeps the regular size.
// The name itself is never truncated.
func NodeLabelSize(name string) float64 {
	if !strings.ContainsFunc(name, unicode.IsSpace) && utf8.RuneCountInString(name) > LabelLongWordRunes {
		return LabelSmallFontSize
	}
	return LabelFontSize
}

// FitTagLabel fits text into maxWidth starting at startSize. Text that fits is
// returned verbatim. Otherwise the size shrinks in TagFontStep steps while the
// text is too wide and the size is above TagMinFontSize; if the text still
// does not fit at the floor it is truncated at that size. A nil measurer
// returns the text untouched at startSize.
func FitTagLabel(m TextMeasurer, text string, maxWidth, startSize float64) FittedLabel {
	out := FittedLabel{Text: text, FontSize: startSize}
	if m == nil {
		return out
	}
	size := startSize
	w := m.MeasureString(text, size)
	if !(w > maxWidth) {
		return out
	}
	for w > maxWidth && size > TagMinFontSize {
		size -= TagFontStep
		if size < TagMinFontSize {
			size = TagMinFontSize
		}
		w = m.MeasureString(text, size)
	}
	out.FontSize = size
	out.Shrunk = size < startSize
	if w > maxWidth {
		out.Text = TruncateText(m, text, maxWidth, size)
		out.Truncated = out.Text != text
	}
	return out
}

// TruncateText shortens text one rune at a time, appending Ellipsis, until it
// fits maxWidth at the given size. Fitting text is returned verbatim. When not
// even one rune fits, the result is Ellipsis alone. A nil measurer returns the
// text unchanged.
func TruncateText(m TextMeasurer, text string, maxWidth, size float64) string {
	if m == nil || !(m.MeasureString(text, size) > maxWidth) {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && m.MeasureString(string(runes)+Ellipsis, size) > maxWidth {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + Ellipsis
}
