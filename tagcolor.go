package projectmap

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultTagColor is used for tags that no category defines.
const DefaultTagColor = "#bdc3c7"

const (
	contrastDark  = "#000000"
	contrastLight = "#ffffff"
)

// TagInfo is one named tag and its hex color.
type TagInfo struct {
	Name  string `yaml:"name" json:"name"`
	Color string `yaml:"color" json:"color"`
}

// TagCategory groups tags under a display name.
type TagCategory struct {
	Name string    `yaml:"name" json:"name"`
	Tags []TagInfo `yaml:"tags" json:"tags"`
}

// TagCatalog is the read-only reference data that colors tag badges and
// project frames. Lookups search categories in order and the first match wins.
type TagCatalog struct {
	Categories []TagCategory `yaml:"categories" json:"categories"`

	index map[string]string
}

// NewTagCatalog builds a catalog from categories in priority order.
func NewTagCatalog(categories ...TagCategory) *TagCatalog {
	c := &TagCatalog{Categories: categories}
	c.buildIndex()
	return c
}

// LoadTagCatalog decodes a catalog document. JSON input is accepted as well
// since it is a subset of YAML.
func LoadTagCatalog(data []byte) (*TagCatalog, error) {
	var c TagCatalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("projectmap: decode tag catalog: %w", err)
	}
	c.buildIndex()
	return &c, nil
}

func (c *TagCatalog) buildIndex() {
	c.index = make(map[string]string)
	for _, cat := range c.Categories {
		for _, t := range cat.Tags {
			if _, ok := c.index[t.Name]; !ok {
				c.index[t.Name] = t.Color
			}
		}
	}
}

// ColorOf returns the hex color for tag, or DefaultTagColor when no category
// defines it. A nil catalog resolves everything to the default.
func (c *TagCatalog) ColorOf(tag string) string {
	if c == nil {
		return DefaultTagColor
	}
	if c.index == nil {
		c.buildIndex()
	}
	if color, ok := c.index[tag]; ok {
		return color
	}
	return DefaultTagColor
}

// Tags returns every distinct tag in catalog order, keeping the first
// definition of a name that appears in several categories.
func (c *TagCatalog) Tags() []TagInfo {
	if c == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []TagInfo
	for _, cat := range c.Categories {
		for _, t := range cat.Tags {
			if seen[t.Name] {
				continue
			}
			seen[t.Name] = true
			out = append(out, t)
		}
	}
	return out
}

// ContrastOf picks black or white text for a "#rrggbb" background using
// perceived luminance (0.299R + 0.587G + 0.114B)/255 with no gamma correction.
// Luminance strictly above 0.5 yields black. Channels that fail to parse make
// the luminance undefined, which yields white.
func ContrastOf(hex string) string {
	r, okR := hexChannelPrefix(hex, 1)
	g, okG := hexChannelPrefix(hex, 3)
	b, okB := hexChannelPrefix(hex, 5)
	if !okR || !okG || !okB {
		return contrastLight
	}
	// Explicit conversions keep the sum unfused so the 0.5 boundary is exact.
	l := (float64(0.299*float64(r)) + float64(0.587*float64(g)) + float64(0.114*float64(b))) / 255
	if l > 0.5 {
		return contrastDark
	}
	return contrastLight
}

// hexChannelPrefix parses the two characters at hex[i:i+2] as base 16,
// stopping at the first non-hex character. It reports false when no digit
// could be read at all.
func hexChannelPrefix(hex string, i int) (int, bool) {
	if i >= len(hex) {
		return 0, false
	}
	end := i + 2
	if end > len(hex) {
		end = len(hex)
	}
	v, n := 0, 0
	for _, ch := range hex[i:end] {
		d, ok := hexDigit(ch)
		if !ok {
			break
		}
		v = v*16 + d
		n++
	}
	return v, n > 0
}

func hexDigit(ch rune) (int, bool) {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0'), true
	case ch >= 'a' && ch <= 'f':
		return int(ch-'a') + 10, true
	case ch >= 'A' && ch <= 'F':
		return int(ch-'A') + 10, true
	}
	return 0, false
}

// ParseHexColor converts "#rgb", "#rrggbb" or "#rrggbbaa" into a Color.
// Malformed color channels parse as 0; a missing or malformed alpha is opaque.
func ParseHexColor(hex string) Color {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	c := Color{A: 1}
	if len(s) < 6 {
		return c
	}
	ch := func(i int) (float64, bool) {
		hi, ok1 := hexDigit(rune(s[i]))
		lo, ok2 := hexDigit(rune(s[i+1]))
		if !ok1 || !ok2 {
			return 0, false
		}
		return float64(hi*16+lo) / 255, true
	}
	c.R, _ = ch(0)
	c.G, _ = ch(2)
	c.B, _ = ch(4)
	if len(s) >= 8 {
		if a, ok := ch(6); ok {
			c.A = a
		}
	}
	return c
}
