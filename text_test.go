package projectmap

import (
	"testing"
)

func newTestBlock(content string, wrap float64) *TextBlock {
	return &TextBlock{
		Content:     content,
		FontSize:    10,
		WrapWidth:   wrap,
		Measurer:    &fixedMeasurer{perEm: 1},
		layoutDirty: true,
	}
}

// --- Layout ---

func TestTextBlockNoWrap(t *testing.T) {
	tb := newTestBlock("hello world", 0)
	lines := tb.Lines()
	if len(lines) != 1 || lines[0] != "hello world" {
		t.Errorf("Lines() = %q", lines)
	}
	w, h := tb.Measure()
	if w != 110 {
		t.Errorf("width = %v, want 110", w)
	}
	if !approxEqual(h, 12, 1e-9) {
		t.Errorf("height = %v, want 12", h)
	}
}

func TestTextBlockWrapsOnWords(t *testing.T) {
	// 10px per rune, so 100px holds at most 10 runes per line.
	tb := newTestBlock("alpha beta gamma delta", 100)
	got := tb.Lines()
	want := []string{"alpha beta", "gamma", "delta"}
	if len(got) != len(want) {
		t.Fatalf("Lines() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTextBlockBreaksLongWord(t *testing.T) {
	tb := newTestBlock("abcdefghijklmnopqrstuvwxy", 100)
	got := tb.Lines()
	want := []string{"abcdefghij", "klmnopqrst", "uvwxy"}
	if len(got) != 3 {
		t.Fatalf("Lines() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTextBlockRuneWiderThanLine(t *testing.T) {
	tb := newTestBlock("abc", 5)
	got := tb.Lines()
	if len(got) != 3 {
		t.Fatalf("Lines() = %q, want one rune per line", got)
	}
}

func TestTextBlockNewlines(t *testing.T) {
	tb := newTestBlock("one\ntwo", 0)
	if got := tb.Lines(); len(got) != 2 || got[1] != "two" {
		t.Errorf("Lines() = %q", got)
	}
}

func TestTextBlockAlignment(t *testing.T) {
	tests := []struct {
		align TextAlign
		wantX float64
	}{
		{TextAlignLeft, 0},
		{TextAlignCenter, 35},
		{TextAlignRight, 70},
	}
	for _, tt := range tests {
		tb := newTestBlock("abc", 100)
		tb.Align = tt.align
		lines := tb.layout()
		if lines[0].x != tt.wantX {
			t.Errorf("align %d: x = %v, want %v", tt.align, lines[0].x, tt.wantX)
		}
	}
}

func TestTextBlockVerticalCenter(t *testing.T) {
	tb := newTestBlock("abc", 100)
	tb.BoxHeight = 100
	tb.LineHeight = 20
	lines := tb.layout()
	if lines[0].y != 40 {
		t.Errorf("y = %v, want 40", lines[0].y)
	}
}

func TestTextBlockSettersInvalidate(t *testing.T) {
	tb := newTestBlock("abc", 0)
	tb.layout()
	tb.SetContent("abcdef")
	if w, _ := tb.Measure(); w != 60 {
		t.Errorf("width after SetContent = %v, want 60", w)
	}
	tb.SetFontSize(20)
	if w, _ := tb.Measure(); w != 120 {
		t.Errorf("width after SetFontSize = %v, want 120", w)
	}
}

func TestTextBlockNilMeasurer(t *testing.T) {
	tb := &TextBlock{Content: "a b c", FontSize: 10, WrapWidth: 1, layoutDirty: true}
	if got := tb.Lines(); len(got) != 1 {
		t.Errorf("nil measurer must not wrap, got %q", got)
	}
}

// --- TTFMeasurer ---

func TestNewTTFMeasurerInvalidData(t *testing.T) {
	if _, err := NewTTFMeasurer([]byte("not a TTF file")); err == nil {
		t.Error("expected error for invalid TTF data, got nil")
	}
}

func TestDefaultMeasurer(t *testing.T) {
	m, err := DefaultMeasurer()
	if err != nil {
		t.Fatalf("DefaultMeasurer: %v", err)
	}
	again, _ := DefaultMeasurer()
	if again != m {
		t.Error("DefaultMeasurer should be shared")
	}
	short := m.MeasureString("go", 14)
	long := m.MeasureString("gopher", 14)
	if short <= 0 || long <= short {
		t.Errorf("widths not monotonic: %v, %v", short, long)
	}
	if big := m.MeasureString("go", 28); big <= short {
		t.Errorf("width at 28px (%v) should exceed 14px (%v)", big, short)
	}
	if m.MeasureString("", 14) != 0 {
		t.Error("empty string should measure 0")
	}
	if m.Face(14) != m.Face(14) {
		t.Error("faces should be cached per size")
	}
	if lh := m.LineHeight(14); lh <= 14 {
		t.Errorf("LineHeight(14) = %v, want > 14", lh)
	}
}
