package projectmap

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// DefaultSnapshotDir is where labeled snapshots are written.
const DefaultSnapshotDir = "snapshots"

// Snapshot queues a labeled PNG capture. In a running window it is taken at
// the end of the current Draw; headless callers flush with WriteSnapshots.
func (s *Scene) Snapshot(label string) {
	s.snapshotQueue = append(s.snapshotQueue, label)
}

// PendingSnapshots returns the queued labels.
func (s *Scene) PendingSnapshots() []string {
	return s.snapshotQueue
}

// flushSnapshots captures the rendered frame for every queued label.
// Called at the end of Scene.Draw.
func (s *Scene) flushSnapshots(screen *ebiten.Image) {
	if len(s.snapshotQueue) == 0 {
		return
	}

	bounds := screen.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, 4*w*h)
	screen.ReadPixels(pixels)

	// Premultiplied RGBA to straight-alpha NRGBA.
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(pixels); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	s.writeSnapshots(img)
}

// WriteSnapshots rasterizes the scene without a GPU and writes one PNG per
// queued label. It returns the paths written.
func (s *Scene) WriteSnapshots(width, height int) ([]string, error) {
	if len(s.snapshotQueue) == 0 {
		return nil, nil
	}
	img, err := s.Rasterize(width, height)
	if err != nil {
		s.snapshotQueue = s.snapshotQueue[:0]
		return nil, err
	}
	return s.writeSnapshots(img), nil
}

func (s *Scene) writeSnapshots(img image.Image) []string {
	defer func() { s.snapshotQueue = s.snapshotQueue[:0] }()

	dir := s.SnapshotDir
	if dir == "" {
		dir = DefaultSnapshotDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Error().Err(err).Str("dir", dir).Msg("snapshot mkdir failed")
		return nil
	}

	stamp := time.Now().Format("20060102_150405")
	var paths []string
	for _, label := range s.snapshotQueue {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
		if err := writePNG(path, img); err != nil {
			s.logger.Error().Err(err).Str("label", label).Msg("snapshot failed")
			continue
		}
		paths = append(paths, path)
	}
	return paths
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("projectmap: create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("projectmap: encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
