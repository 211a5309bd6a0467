package projectmap

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Shadow and glow parameters for the Ebitengine backend. The SVG export
// expresses the same effects as filters.
const (
	shadowOffsetY = 4.0
	shadowAlpha   = 0.1
	glowPasses    = 3
)

var placeholderColor = Color{R: 0.6, G: 0.6, B: 0.6, A: 1}

// gpuState holds reusable buffers for submission.
type gpuState struct {
	white *ebiten.Image // 1x1 interior of a 3x3 white image, for solid fills
	path  vector.Path
	vs    []ebiten.Vertex
	is    []uint16
}

func (g *gpuState) whiteImage() *ebiten.Image {
	if g.white == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		g.white = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return g.white
}

// submit draws the sorted command list to target.
func (s *Scene) submit(target *ebiten.Image) {
	if s.ClearColor.A > 0 {
		target.Fill(s.ClearColor.toNRGBA())
	}
	for i := range s.commands {
		cmd := &s.commands[i]
		switch cmd.Type {
		case CommandRect:
			s.drawRect(target, cmd)
		case CommandText:
			s.drawText(target, cmd)
		case CommandImage:
			s.drawImage(target, cmd)
		}
	}
}

func (s *Scene) drawRect(target *ebiten.Image, cmd *RenderCommand) {
	st := &cmd.Style
	w, h := float32(cmd.Width), float32(cmd.Height)
	r := float32(st.Radius)

	if st.Shadow {
		shadow := cmd.Transform
		shadow[5] += shadowOffsetY * affineScale(cmd.Transform)
		s.fillPath(target, roundedRect(&s.gpu.path, w, h, r), shadow, Color{A: shadowAlpha * cmd.Alpha})
	}
	if st.Glow != nil && st.Stroke.A > 0 {
		// Widening translucent strokes approximate the blur.
		for i := glowPasses; i >= 1; i-- {
			c := st.Stroke
			c.A *= cmd.Alpha * 0.15
			spread := float32(st.Glow.StdDeviation) * float32(i)
			s.strokePath(target, roundedRect(&s.gpu.path, w, h, r), cmd.Transform, c, float32(st.StrokeWidth)+spread)
		}
	}
	if st.Fill.A > 0 {
		c := st.Fill
		c.A *= cmd.Alpha
		s.fillPath(target, roundedRect(&s.gpu.path, w, h, r), cmd.Transform, c)
	}
	if st.Stroke.A > 0 && st.StrokeWidth > 0 {
		c := st.Stroke
		c.A *= cmd.Alpha
		s.strokePath(target, roundedRect(&s.gpu.path, w, h, r), cmd.Transform, c, float32(st.StrokeWidth))
	}
}

func (s *Scene) drawText(target *ebiten.Image, cmd *RenderCommand) {
	fonts := s.fonts
	if fonts == nil {
		m, err := DefaultMeasurer()
		if err != nil {
			return
		}
		fonts = m
	}
	k := affineScale(cmd.Transform)
	if k <= 0 || cmd.FontSize <= 0 {
		return
	}
	// Rasterize at the on-screen size, then undo the scale in the matrix.
	face := fonts.Face(cmd.FontSize * k)

	op := &text.DrawOptions{}
	op.GeoM.SetElement(0, 0, cmd.Transform[0]/k)
	op.GeoM.SetElement(1, 0, cmd.Transform[1]/k)
	op.GeoM.SetElement(0, 1, cmd.Transform[2]/k)
	op.GeoM.SetElement(1, 1, cmd.Transform[3]/k)
	op.GeoM.SetElement(0, 2, cmd.Transform[4])
	op.GeoM.SetElement(1, 2, cmd.Transform[5])
	c := cmd.TextColor
	op.ColorScale.Scale(float32(c.R*c.A), float32(c.G*c.A), float32(c.B*c.A), float32(c.A))
	text.Draw(target, cmd.Text, face, op)
	if cmd.Bold {
		// Faux bold: one extra pass shifted by a fraction of a pixel.
		op.GeoM.Translate(math.Max(0.5, cmd.FontSize*k/24), 0)
		text.Draw(target, cmd.Text, face, op)
	}
}

func (s *Scene) drawImage(target *ebiten.Image, cmd *RenderCommand) {
	w, h := float32(cmd.Width), float32(cmd.Height)
	if cmd.img == nil || s.images == nil {
		c := placeholderColor
		c.A *= cmd.Alpha
		if cmd.ClipCircle {
			s.fillPath(target, circle(&s.gpu.path, w, h), cmd.Transform, c)
		} else {
			s.fillPath(target, roundedRect(&s.gpu.path, w, h, 0), cmd.Transform, c)
		}
		return
	}

	src := s.images.ebitenImage(cmd.ImageRef, cmd.img)
	b := src.Bounds()
	if !cmd.ClipCircle {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(cmd.Width/float64(b.Dx()), cmd.Height/float64(b.Dy()))
		op.GeoM.Concat(commandGeoM(cmd.Transform))
		op.ColorScale.ScaleAlpha(float32(cmd.Alpha))
		op.Filter = ebiten.FilterLinear
		target.DrawImage(src, op)
		return
	}

	// Circle fan with texture coordinates mapped onto the whole bitmap.
	g := &s.gpu
	g.vs, g.is = circle(&g.path, w, h).AppendVerticesAndIndicesForFilling(g.vs[:0], g.is[:0])
	sx := float32(b.Dx()) / w
	sy := float32(b.Dy()) / h
	a := float32(cmd.Alpha)
	for i := range g.vs {
		v := &g.vs[i]
		v.SrcX = float32(b.Min.X) + v.DstX*sx
		v.SrcY = float32(b.Min.Y) + v.DstY*sy
		x, y := transformPoint(cmd.Transform, float64(v.DstX), float64(v.DstY))
		v.DstX, v.DstY = float32(x), float32(y)
		v.ColorR, v.ColorG, v.ColorB, v.ColorA = a, a, a, a
	}
	target.DrawTriangles(g.vs, g.is, src, &ebiten.DrawTrianglesOptions{AntiAlias: true, Filter: ebiten.FilterLinear})
}

// --- Path helpers ---

// roundedRect resets p to a w x h rectangle with corner radius r, clamped to
// half the shorter side.
func roundedRect(p *vector.Path, w, h, r float32) *vector.Path {
	*p = vector.Path{}
	r = min(r, w/2, h/2)
	if r <= 0 {
		p.MoveTo(0, 0)
		p.LineTo(w, 0)
		p.LineTo(w, h)
		p.LineTo(0, h)
		p.Close()
		return p
	}
	p.MoveTo(r, 0)
	p.ArcTo(w, 0, w, h, r)
	p.ArcTo(w, h, 0, h, r)
	p.ArcTo(0, h, 0, 0, r)
	p.ArcTo(0, 0, w, 0, r)
	p.Close()
	return p
}

// circle resets p to the circle inscribed in a w x h box.
func circle(p *vector.Path, w, h float32) *vector.Path {
	*p = vector.Path{}
	r := min(w, h) / 2
	p.Arc(w/2, h/2, r, 0, 2*math.Pi, vector.Clockwise)
	p.Close()
	return p
}

func (s *Scene) fillPath(target *ebiten.Image, p *vector.Path, m [6]float64, c Color) {
	g := &s.gpu
	g.vs, g.is = p.AppendVerticesAndIndicesForFilling(g.vs[:0], g.is[:0])
	s.drawSolid(target, m, c)
}

func (s *Scene) strokePath(target *ebiten.Image, p *vector.Path, m [6]float64, c Color, width float32) {
	g := &s.gpu
	g.vs, g.is = p.AppendVerticesAndIndicesForStroke(g.vs[:0], g.is[:0], &vector.StrokeOptions{
		Width:    width,
		LineJoin: vector.LineJoinRound,
	})
	s.drawSolid(target, m, c)
}

// drawSolid transforms the buffered local-space vertices by m and draws them
// in premultiplied color c.
func (s *Scene) drawSolid(target *ebiten.Image, m [6]float64, c Color) {
	g := &s.gpu
	if len(g.is) == 0 {
		return
	}
	r, gr, b, a := float32(c.R*c.A), float32(c.G*c.A), float32(c.B*c.A), float32(c.A)
	for i := range g.vs {
		v := &g.vs[i]
		x, y := transformPoint(m, float64(v.DstX), float64(v.DstY))
		v.DstX, v.DstY = float32(x), float32(y)
		v.SrcX, v.SrcY = 1, 1
		v.ColorR, v.ColorG, v.ColorB, v.ColorA = r, gr, b, a
	}
	target.DrawTriangles(g.vs, g.is, g.whiteImage(), &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

// commandGeoM converts an affine matrix to an ebiten.GeoM.
func commandGeoM(t [6]float64) ebiten.GeoM {
	var m ebiten.GeoM
	m.SetElement(0, 0, t[0])
	m.SetElement(1, 0, t[1])
	m.SetElement(0, 1, t[2])
	m.SetElement(1, 1, t[3])
	m.SetElement(0, 2, t[4])
	m.SetElement(1, 2, t[5])
	return m
}
