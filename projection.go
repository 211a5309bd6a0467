package projectmap

import "math"

// zonePaddingFactor inflates every zone by 10% of a grid cell on top of one
// node size, so projects sitting on a zone edge stay inside the overlay.
const zonePaddingFactor = 1.1

// Projector maps grid coordinates onto screen space for a viewport of
// Width x Height pixels. The grid origin sits at the viewport center and grid
// Y grows upward.
type Projector struct {
	Width       float64
	Height      float64
	GridSpacing float64
}

// Project converts a grid point to screen coordinates.
func (p Projector) Project(gx, gy float64) (sx, sy float64) {
	return gx*p.GridSpacing + p.Width/2, -gy*p.GridSpacing + p.Height/2
}

// ZonePadding returns the padding added around every zone rectangle.
func (p Projector) ZonePadding(nodeSize float64) float64 {
	return (zonePaddingFactor-1)*p.GridSpacing + nodeSize
}

// ZoneRect returns the padded screen rectangle of a zone. A NaN position
// component becomes 0 and a NaN or non-positive size becomes 1, so malformed
// zones still render as something visible.
func (p Projector) ZoneRect(z Zone, nodeSize float64) Rect {
	pad := p.ZonePadding(nodeSize)
	x, _ := p.Project(z.X-z.Width/2, 0)
	_, y := p.Project(0, z.Y+z.Height/2)
	return Rect{
		X:      finiteOr(x-pad/2, 0),
		Y:      finiteOr(y-pad/2, 0),
		Width:  positiveOr(z.Width*p.GridSpacing+pad, 1),
		Height: positiveOr(z.Height*p.GridSpacing+pad, 1),
	}
}

func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}
	return v
}

func positiveOr(v, fallback float64) float64 {
	if math.IsNaN(v) || v <= 0 {
		return fallback
	}
	return v
}
