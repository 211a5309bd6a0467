package projectmap

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"strconv"

	svg "github.com/ajstarks/svgo"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// errWriter remembers the first write error; svgo ignores them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

type svgOptions struct {
	effects bool // glow filters and drop shadows
	text    bool
	images  bool
}

// ExportSVG writes the current scene as an SVG document of the given pixel
// size. Every command becomes one element wrapped in a group carrying its
// world matrix; glow filters are defined once each.
func (s *Scene) ExportSVG(w io.Writer, width, height int) error {
	return s.writeSVG(w, s.Commands(), width, height, svgOptions{effects: true, text: true, images: true})
}

func (s *Scene) writeSVG(w io.Writer, commands []RenderCommand, width, height int, opt svgOptions) error {
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Startview(width, height, 0, 0, width, height)

	if opt.effects {
		writeFilterDefs(canvas, commands)
	}
	if s.ClearColor.A > 0 {
		canvas.Rect(0, 0, width, height, "fill="+strconv.Quote(s.ClearColor.Hex()), fmt.Sprintf("fill-opacity=\"%s\"", num(s.ClearColor.A)))
	}

	for i := range commands {
		cmd := &commands[i]
		switch cmd.Type {
		case CommandRect:
			canvas.Gtransform(svgMatrix(cmd.Transform))
			writeSVGRect(canvas, cmd, opt.effects)
			canvas.Gend()
		case CommandText:
			if !opt.text {
				continue
			}
			canvas.Gtransform(svgMatrix(cmd.Transform))
			weight := "normal"
			if cmd.Bold {
				weight = "bold"
			}
			canvas.Text(0, 0, cmd.Text, fmt.Sprintf(
				"font-family:sans-serif;font-size:%spx;font-weight:%s;fill:%s;fill-opacity:%s;dominant-baseline:text-before-edge",
				num(cmd.FontSize), weight, cmd.TextColor.Hex(), num(cmd.TextColor.A)))
			canvas.Gend()
		case CommandImage:
			if !opt.images {
				continue
			}
			canvas.Gtransform(svgMatrix(cmd.Transform))
			attrs := []string{fmt.Sprintf("opacity=\"%s\"", num(cmd.Alpha))}
			if cmd.ClipCircle {
				attrs = append(attrs, "clip-path:circle(50%)")
			}
			canvas.Image(0, 0, int(math.Round(cmd.Width)), int(math.Round(cmd.Height)), cmd.ImageRef, attrs...)
			canvas.Gend()
		}
	}

	canvas.End()
	if ew.err != nil {
		return fmt.Errorf("projectmap: write svg: %w", ew.err)
	}
	return nil
}

// writeFilterDefs defines each distinct glow filter once, plus the shared
// drop shadow when any rect uses it.
func writeFilterDefs(canvas *svg.SVG, commands []RenderCommand) {
	seen := make(map[string]bool)
	shadow := false
	var filters []*GlowFilter
	for i := range commands {
		st := &commands[i].Style
		if commands[i].Type != CommandRect {
			continue
		}
		if st.Glow != nil && !seen[st.Glow.ID] {
			seen[st.Glow.ID] = true
			filters = append(filters, st.Glow)
		}
		shadow = shadow || st.Shadow
	}
	if len(filters) == 0 && !shadow {
		return
	}

	canvas.Def()
	for _, g := range filters {
		canvas.Filter(g.ID)
		canvas.FeGaussianBlur(svg.Filterspec{In: "SourceGraphic", Result: "coloredBlur"}, g.StdDeviation, g.StdDeviation)
		canvas.FeMerge([]string{"coloredBlur", "SourceGraphic"})
		canvas.Fend()
	}
	if shadow {
		canvas.Filter(shadowFilterID)
		canvas.FeGaussianBlur(svg.Filterspec{In: "SourceAlpha", Result: "shadowBlur"}, 3, 3)
		canvas.FeMerge([]string{"shadowBlur", "SourceGraphic"})
		canvas.Fend()
	}
	canvas.DefEnd()
}

const shadowFilterID = "projectmap-shadow"

func writeSVGRect(canvas *svg.SVG, cmd *RenderCommand, effects bool) {
	st := &cmd.Style
	attrs := []string{
		fmt.Sprintf("fill=\"%s\"", fillValue(st.Fill)),
		fmt.Sprintf("fill-opacity=\"%s\"", num(st.Fill.A*cmd.Alpha)),
	}
	if st.Stroke.A > 0 && st.StrokeWidth > 0 {
		attrs = append(attrs,
			fmt.Sprintf("stroke=\"%s\"", st.Stroke.Hex()),
			fmt.Sprintf("stroke-width=\"%s\"", num(st.StrokeWidth)),
			fmt.Sprintf("stroke-opacity=\"%s\"", num(st.Stroke.A*cmd.Alpha)),
		)
	}
	if effects {
		switch {
		case st.Glow != nil && st.Shadow:
			attrs = append(attrs, fmt.Sprintf("filter=\"url(#%s) url(#%s)\"", st.Glow.ID, shadowFilterID))
		case st.Glow != nil:
			attrs = append(attrs, fmt.Sprintf("filter=\"url(#%s)\"", st.Glow.ID))
		case st.Shadow:
			attrs = append(attrs, fmt.Sprintf("filter=\"url(#%s)\"", shadowFilterID))
		}
	}
	w := int(math.Round(cmd.Width))
	h := int(math.Round(cmd.Height))
	r := int(math.Round(math.Min(st.Radius, math.Min(cmd.Width, cmd.Height)/2)))
	if r > 0 {
		canvas.Roundrect(0, 0, w, h, r, r, attrs...)
	} else {
		canvas.Rect(0, 0, w, h, attrs...)
	}
}

func fillValue(c Color) string {
	if c.A <= 0 {
		return "none"
	}
	return c.Hex()
}

func svgMatrix(m [6]float64) string {
	return fmt.Sprintf("matrix(%s,%s,%s,%s,%s,%s)", num(m[0]), num(m[1]), num(m[2]), num(m[3]), num(m[4]), num(m[5]))
}

// num formats a float compactly for SVG attributes.
func num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// --- PNG ---

// ExportPNG rasterizes the scene to a PNG of the given size. Shapes go through
// the SVG export and oksvg; text and images, which oksvg does not draw, are
// composited on top in command order.
func (s *Scene) ExportPNG(w io.Writer, width, height int) error {
	img, err := s.Rasterize(width, height)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("projectmap: encode png: %w", err)
	}
	return nil
}

// Rasterize renders the scene into a new RGBA image without a GPU.
func (s *Scene) Rasterize(width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("projectmap: invalid raster size %dx%d", width, height)
	}
	commands := s.Commands()

	var buf bytes.Buffer
	if err := s.writeSVG(&buf, commands, width, height, svgOptions{}); err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(&buf, oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("projectmap: parse svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(width), float64(height))

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(width, height, scanner)
	icon.Draw(raster, 1.0)

	fonts := newRasterFonts()
	for i := range commands {
		cmd := &commands[i]
		switch cmd.Type {
		case CommandText:
			fonts.drawText(rgba, cmd)
		case CommandImage:
			if cmd.img != nil {
				drawRasterImage(rgba, cmd)
			}
		}
	}
	return rgba, nil
}

// rasterFonts caches x/image faces by weight and pixel size.
type rasterFonts struct {
	regular, bold *opentype.Font
	faces         map[rasterFaceKey]font.Face
}

type rasterFaceKey struct {
	bold bool
	size float64
}

func newRasterFonts() *rasterFonts {
	rf := &rasterFonts{faces: make(map[rasterFaceKey]font.Face)}
	rf.regular, _ = opentype.Parse(goregular.TTF)
	rf.bold, _ = opentype.Parse(gobold.TTF)
	return rf
}

func (rf *rasterFonts) face(bold bool, size float64) font.Face {
	key := rasterFaceKey{bold, size}
	if f, ok := rf.faces[key]; ok {
		return f
	}
	src := rf.regular
	if bold {
		src = rf.bold
	}
	if src == nil {
		return nil
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil
	}
	rf.faces[key] = f
	return f
}

// drawText draws one text command. Only the translation and uniform scale
// of the command matrix are honored.
func (rf *rasterFonts) drawText(dst *image.RGBA, cmd *RenderCommand) {
	k := affineScale(cmd.Transform)
	if k <= 0 || cmd.FontSize <= 0 || cmd.TextColor.A <= 0 {
		return
	}
	face := rf.face(cmd.Bold, cmd.FontSize*k)
	if face == nil {
		return
	}
	ascent := face.Metrics().Ascent
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(cmd.TextColor.toNRGBA()),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(cmd.Transform[4] * 64),
			Y: fixed.Int26_6(cmd.Transform[5]*64) + ascent,
		},
	}
	d.DrawString(cmd.Text)
}

// drawRasterImage scales the command's bitmap into its destination box,
// masked to a circle when requested.
func drawRasterImage(dst *image.RGBA, cmd *RenderCommand) {
	x0, y0 := transformPoint(cmd.Transform, 0, 0)
	x1, y1 := transformPoint(cmd.Transform, cmd.Width, cmd.Height)
	dr := image.Rect(int(math.Round(x0)), int(math.Round(y0)), int(math.Round(x1)), int(math.Round(y1))).Canon()
	if dr.Empty() {
		return
	}
	opts := &draw.Options{}
	if cmd.ClipCircle || cmd.Alpha < 1 {
		opts.DstMask = circleMask{rect: dr, circle: cmd.ClipCircle, alpha: uint8(math.Round(255 * clamp01(cmd.Alpha)))}
	}
	draw.BiLinear.Scale(dst, dr, cmd.img, cmd.img.Bounds(), draw.Over, opts)
}

// circleMask is an alpha mask covering rect, optionally limited to the
// inscribed circle.
type circleMask struct {
	rect   image.Rectangle
	circle bool
	alpha  uint8
}

func (m circleMask) ColorModel() color.Model { return color.AlphaModel }
func (m circleMask) Bounds() image.Rectangle { return m.rect }

func (m circleMask) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(m.rect)) {
		return color.Alpha{}
	}
	if m.circle {
		cx := float64(m.rect.Min.X+m.rect.Max.X) / 2
		cy := float64(m.rect.Min.Y+m.rect.Max.Y) / 2
		r := float64(min(m.rect.Dx(), m.rect.Dy())) / 2
		dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
		if dx*dx+dy*dy > r*r {
			return color.Alpha{}
		}
	}
	return color.Alpha{A: m.alpha}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
