package projectmap

import (
	"fmt"
	"image"
	_ "image/jpeg" // decoders for DirLoader
	_ "image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	_ "golang.org/x/image/webp"
)

// Avatar cluster geometry, in pixels.
const (
	AvatarSize        = 20.0
	AvatarSpacing     = 2.0
	AvatarBadgeBox    = AvatarSize + 4 // plate height and per-badge plate width
	AvatarAnchor      = AvatarBadgeBox * 2.85
	DefaultMaxAvatars = 3

	// DefaultAvatarRef replaces an empty or unloadable avatar reference.
	DefaultAvatarRef = "/default_avatar.png"
)

// AvatarBadge is one displayed avatar, positioned in cluster space.
type AvatarBadge struct {
	Ref   string
	Login string
	X, Y  float64
}

// AvatarCluster is the computed layout of a project's subscriber badges.
// The zero value is the empty cluster: no plate, no badges, no label.
type AvatarCluster struct {
	PlateX      float64
	PlateWidth  float64
	PlateHeight float64
	Badges      []AvatarBadge

	// Overflow is the number of subscribers summarized by the "+N" label,
	// 0 when every subscriber has a badge.
	Overflow  int
	OverflowX float64 // label center
	OverflowY float64
}

// Empty reports whether the cluster renders nothing.
func (c AvatarCluster) Empty() bool {
	return len(c.Badges) == 0
}

// OverflowLabel returns the "+N" text, or "" when there is no overflow.
func (c AvatarCluster) OverflowLabel() string {
	if c.Overflow <= 0 {
		return ""
	}
	return "+" + strconv.Itoa(c.Overflow)
}

// Equal reports whether two clusters render identically.
func (c AvatarCluster) Equal(o AvatarCluster) bool {
	if c.PlateX != o.PlateX || c.PlateWidth != o.PlateWidth || c.PlateHeight != o.PlateHeight ||
		c.Overflow != o.Overflow || c.OverflowX != o.OverflowX || c.OverflowY != o.OverflowY ||
		len(c.Badges) != len(o.Badges) {
		return false
	}
	for i := range c.Badges {
		if c.Badges[i] != o.Badges[i] {
			return false
		}
	}
	return true
}

// LayoutAvatars decides which subscribers get a badge. Up to maxDisplay
// subscribers each get one; beyond that the first maxDisplay-1 get a badge
// and the rest are summarized as "+N". Input order is kept. The plate is
// right-aligned on AvatarAnchor so the cluster grows leftward. maxDisplay <= 0
// means DefaultMaxAvatars.
func LayoutAvatars(subs []Subscription, maxDisplay int) AvatarCluster {
	if maxDisplay <= 0 {
		maxDisplay = DefaultMaxAvatars
	}
	n := len(subs)
	if n == 0 {
		return AvatarCluster{}
	}

	shown := n
	overflow := 0
	if n > maxDisplay {
		shown = maxDisplay - 1
		overflow = n - shown
	}

	plateW := AvatarBadgeBox * float64(min(n, maxDisplay))
	c := AvatarCluster{
		PlateX:      AvatarAnchor - plateW,
		PlateWidth:  plateW,
		PlateHeight: AvatarBadgeBox,
		Badges:      make([]AvatarBadge, shown),
		Overflow:    overflow,
	}
	for i := 0; i < shown; i++ {
		ref := strings.TrimSpace(subs[i].AvatarURL)
		if ref == "" {
			ref = DefaultAvatarRef
		}
		c.Badges[i] = AvatarBadge{
			Ref:   ref,
			Login: subs[i].Login,
			X:     c.PlateX + float64(i)*(AvatarSize+AvatarSpacing) + 2,
			Y:     2,
		}
	}
	if overflow > 0 {
		c.OverflowX = c.PlateX + float64(shown)*(AvatarSize+AvatarSpacing) + AvatarSize/2 + 2
		c.OverflowY = AvatarBadgeBox / 2
	}
	return c
}

// --- Image resolution ---

// ImageLoader fetches the bitmap behind an image reference.
type ImageLoader interface {
	LoadImage(ref string) (image.Image, error)
}

// ImageLoaderFunc adapts a function to ImageLoader.
type ImageLoaderFunc func(ref string) (image.Image, error)

// LoadImage calls f(ref).
func (f ImageLoaderFunc) LoadImage(ref string) (image.Image, error) { return f(ref) }

// DirLoader loads PNG, JPEG, and WebP files. Absolute references such as
// "/default_avatar.png" resolve under Root. References with a scheme
// ("https://...") go to Remote; without one they fail and the badge falls
// back to the default avatar.
type DirLoader struct {
	Root   string
	Remote ImageLoader
}

// LoadImage opens and decodes the referenced file.
func (d DirLoader) LoadImage(ref string) (image.Image, error) {
	if strings.Contains(ref, "://") {
		if d.Remote != nil {
			return d.Remote.LoadImage(ref)
		}
		return nil, fmt.Errorf("projectmap: remote image %q not supported", ref)
	}
	path := filepath.Join(d.Root, filepath.FromSlash(strings.TrimPrefix(ref, "/")))
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("projectmap: open image: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("projectmap: decode image %s: %w", ref, err)
	}
	return img, nil
}

type imageEntry struct {
	img image.Image
	err error
}

// AvatarImages caches loaded bitmaps by reference. Each reference is loaded
// at most once; a failure is remembered and never retried.
type AvatarImages struct {
	// OnError, when set, is called once for each reference that fails.
	OnError func(ref string, err error)

	loader  ImageLoader
	entries map[string]imageEntry
	gpu     map[string]*ebiten.Image
}

// NewAvatarImages returns a cache backed by loader.
func NewAvatarImages(loader ImageLoader) *AvatarImages {
	return &AvatarImages{
		loader:  loader,
		entries: make(map[string]imageEntry),
		gpu:     make(map[string]*ebiten.Image),
	}
}

// Load returns the bitmap for ref, loading it on first use.
func (a *AvatarImages) Load(ref string) (image.Image, error) {
	if e, ok := a.entries[ref]; ok {
		return e.img, e.err
	}
	var e imageEntry
	if a.loader == nil {
		e.err = fmt.Errorf("projectmap: no image loader for %q", ref)
	} else {
		e.img, e.err = a.loader.LoadImage(ref)
		if e.err == nil && e.img == nil {
			e.err = fmt.Errorf("projectmap: loader returned no image for %q", ref)
		}
	}
	a.entries[ref] = e
	if e.err != nil && a.OnError != nil {
		a.OnError(ref, e.err)
	}
	return e.img, e.err
}

// Len returns the number of cached references, failed ones included.
func (a *AvatarImages) Len() int {
	return len(a.entries)
}

// ebitenImage returns the GPU copy of a loaded bitmap, uploading it once.
func (a *AvatarImages) ebitenImage(ref string, img image.Image) *ebiten.Image {
	if e, ok := a.gpu[ref]; ok {
		return e
	}
	e := ebiten.NewImageFromImage(img)
	a.gpu[ref] = e
	return e
}
