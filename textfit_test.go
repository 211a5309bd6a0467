package projectmap

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"
)

// fixedMeasurer reports a width of perEm * size for every rune.
type fixedMeasurer struct {
	perEm float64
	calls int
}

func (m *fixedMeasurer) MeasureString(s string, size float64) float64 {
	m.calls++
	return float64(utf8.RuneCountInString(s)) * m.perEm * size
}

func TestNodeLabelSize(t *testing.T) {
	tests := []struct {
		name string
		want float64
	}{
		{"Short", LabelFontSize},
		{"exactly12chr", LabelFontSize},
		{"Thirteenchars", LabelSmallFontSize},
		{"Two wordsthatarelong", LabelFontSize},
		{"Supercalifragilistic", LabelSmallFontSize},
		{"Supercalifragilistic ", LabelFontSize},
		{"  Supercalifragilistic  ", LabelFontSize},
		{"Super\tcalifragilistic", LabelFontSize},
		{"", LabelFontSize},
		{"ÉlémentaireÉlé", LabelSmallFontSize},
	}
	for _, tt := range tests {
		if got := NodeLabelSize(tt.name); got != tt.want {
			t.Errorf("NodeLabelSize(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFitTagLabelFitsVerbatim(t *testing.T) {
	m := &fixedMeasurer{perEm: 0.5}
	// "go" at 8px = 8px wide
	got := FitTagLabel(m, "go", 36, TagFontSize)
	if got.Text != "go" || got.FontSize != TagFontSize || got.Shrunk || got.Truncated {
		t.Errorf("FitTagLabel = %+v", got)
	}
}

func TestFitTagLabelShrinks(t *testing.T) {
	m := &fixedMeasurer{perEm: 0.5}
	// 10 runes: width = 5*size. Fits 36 when size <= 7.2, so the first step
	// at or below that is 7.0.
	got := FitTagLabel(m, "abcdefghij", 36, TagFontSize)
	if got.Text != "abcdefghij" {
		t.Errorf("text changed by shrinking: %q", got.Text)
	}
	if got.FontSize != 7 || !got.Shrunk || got.Truncated {
		t.Errorf("FitTagLabel = %+v, want size 7 shrunk", got)
	}
}

func TestFitTagLabelTruncatesAtFloor(t *testing.T) {
	m := &fixedMeasurer{perEm: 0.5}
	long := strings.Repeat("x", 40)
	got := FitTagLabel(m, long, 36, TagFontSize)
	if got.FontSize != TagMinFontSize {
		t.Errorf("FontSize = %v, want floor %v", got.FontSize, TagMinFontSize)
	}
	if !got.Truncated || !strings.HasSuffix(got.Text, Ellipsis) {
		t.Errorf("expected truncated text, got %+v", got)
	}
	if w := m.MeasureString(got.Text, got.FontSize); w > 36 {
		t.Errorf("truncated text width %v exceeds budget", w)
	}
}

func TestFitTagLabelNilMeasurer(t *testing.T) {
	got := FitTagLabel(nil, "anything at all", 1, TagFontSize)
	if got.Text != "anything at all" || got.FontSize != TagFontSize {
		t.Errorf("nil measurer should fail soft, got %+v", got)
	}
}

func TestFitTagLabelIdempotent(t *testing.T) {
	m := &fixedMeasurer{perEm: 0.5}
	first := FitTagLabel(m, strings.Repeat("y", 30), 36, TagFontSize)
	second := FitTagLabel(m, first.Text, 36, first.FontSize)
	if second.Text != first.Text || second.FontSize != first.FontSize {
		t.Errorf("refit changed result: %+v -> %+v", first, second)
	}
}

func TestTruncateText(t *testing.T) {
	m := &fixedMeasurer{perEm: 1}
	tests := []struct {
		name     string
		text     string
		maxWidth float64
		want     string
	}{
		{"fits", "abc", 3, "abc"},
		{"cuts", "abcdef", 5, "ab..."},
		{"ellipsis only", "abcdef", 3, "..."},
		{"budget below ellipsis", "abcdef", 1, "..."},
		{"zero budget", "abcdef", 0, "..."},
		{"negative budget", "abcdef", -10, "..."},
		{"empty", "", 0, ""},
		{"multibyte", "日本語テキスト", 5, "日本..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateText(m, tt.text, tt.maxWidth, 1); got != tt.want {
				t.Errorf("TruncateText(%q, %v) = %q, want %q", tt.text, tt.maxWidth, got, tt.want)
			}
		})
	}
}

func TestTruncateTextTerminates(t *testing.T) {
	m := &fixedMeasurer{perEm: 1}
	budgets := []float64{math.NaN(), math.Inf(-1), -1, 0, 0.5, 2.99}
	for _, b := range budgets {
		m.calls = 0
		got := TruncateText(m, strings.Repeat("z", 100), b, 1)
		if m.calls > 102 {
			t.Errorf("budget %v: %d measurements, expected at most one per rune", b, m.calls)
		}
		if math.IsNaN(b) {
			continue
		}
		if got != Ellipsis {
			t.Errorf("budget %v: got %q, want ellipsis alone", b, got)
		}
	}
}

func TestTruncateTextNilMeasurer(t *testing.T) {
	if got := TruncateText(nil, "unchanged", 0, 8); got != "unchanged" {
		t.Errorf("TruncateText(nil) = %q", got)
	}
}
