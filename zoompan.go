package projectmap

import (
	"math"

	"github.com/tanema/gween/ease"
)

// Zoom limits for ZoomPan.
const (
	MinZoom = 0.1
	MaxZoom = 4.0
)

// DefaultWheelZoomBase is the zoom factor applied per wheel notch.
const DefaultWheelZoomBase = 1.1

// ZoomPan controls the view transform of a single world container:
// screen = world*Scale + (TranslateX, TranslateY). It never touches the
// container's children, so nothing derived from data is recomputed on zoom
// or pan.
type ZoomPan struct {
	TranslateX, TranslateY float64
	Scale                  float64

	// WheelZoomBase is raised to the wheel delta to get the zoom factor.
	WheelZoomBase float64

	target  *Node
	anim    *TweenGroup
	handles []CallbackHandle
}

// NewZoomPan creates a controller for target at the identity transform.
func NewZoomPan(target *Node) *ZoomPan {
	z := &ZoomPan{Scale: 1, WheelZoomBase: DefaultWheelZoomBase, target: target}
	z.apply()
	return z
}

// Target returns the container the controller transforms.
func (z *ZoomPan) Target() *Node {
	return z.target
}

// Attach registers scene handlers: dragging pans and the wheel zooms about
// the cursor. A press and release inside the drag dead zone stays a click.
func (z *ZoomPan) Attach(s *Scene) {
	z.Detach()
	pan := func(ctx DragContext) {
		z.stopAnimation()
		z.PanBy(ctx.DeltaX, ctx.DeltaY)
	}
	z.handles = append(z.handles,
		s.OnDrag(pan),
		s.OnDragEnd(pan),
		s.OnWheel(func(ctx WheelContext) {
			if ctx.DeltaY == 0 {
				return
			}
			z.stopAnimation()
			z.ZoomAt(ctx.GlobalX, ctx.GlobalY, math.Pow(z.WheelZoomBase, ctx.DeltaY))
		}),
	)
}

// Detach removes the handlers installed by Attach.
func (z *ZoomPan) Detach() {
	for _, h := range z.handles {
		h.Remove()
	}
	z.handles = nil
}

// Transform returns the current translation and scale.
func (z *ZoomPan) Transform() (tx, ty, scale float64) {
	return z.TranslateX, z.TranslateY, z.Scale
}

// SetTransform replaces the view transform. Scale is clamped to
// [MinZoom, MaxZoom]; non-finite values are ignored.
func (z *ZoomPan) SetTransform(tx, ty, scale float64) {
	if isFinite(tx) {
		z.TranslateX = tx
	}
	if isFinite(ty) {
		z.TranslateY = ty
	}
	if isFinite(scale) {
		z.Scale = clampZoom(scale)
	}
	z.apply()
}

// PanBy moves the view by (dx, dy) screen pixels.
func (z *ZoomPan) PanBy(dx, dy float64) {
	z.SetTransform(z.TranslateX+dx, z.TranslateY+dy, z.Scale)
}

// ZoomAt multiplies the scale by factor, keeping the world point under the
// screen position (sx, sy) fixed. The resulting scale is clamped.
func (z *ZoomPan) ZoomAt(sx, sy, factor float64) {
	if !isFinite(factor) || factor <= 0 {
		return
	}
	wx, wy := z.ScreenToWorld(sx, sy)
	scale := clampZoom(z.Scale * factor)
	z.SetTransform(sx-wx*scale, sy-wy*scale, scale)
}

// Reset returns to the identity transform.
func (z *ZoomPan) Reset() {
	z.stopAnimation()
	z.SetTransform(0, 0, 1)
}

// ScreenToWorld converts a screen position to world coordinates.
func (z *ZoomPan) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	return (sx - z.TranslateX) / z.Scale, (sy - z.TranslateY) / z.Scale
}

// WorldToScreen converts world coordinates to a screen position.
func (z *ZoomPan) WorldToScreen(wx, wy float64) (sx, sy float64) {
	return wx*z.Scale + z.TranslateX, wy*z.Scale + z.TranslateY
}

// AnimateTo tweens the transform to (tx, ty, scale) over duration seconds.
// A running animation is replaced. Call Update each frame.
func (z *ZoomPan) AnimateTo(tx, ty, scale float64, duration float32, fn ease.TweenFunc) {
	z.stopAnimation()
	if fn == nil {
		fn = ease.OutCubic
	}
	g := newTweenGroup(z.target, z.apply, duration, fn,
		[]*float64{&z.TranslateX, &z.TranslateY, &z.Scale},
		[]float64{tx, ty, clampZoom(scale)})
	if !g.Done {
		z.anim = g
	}
}

// FocusOn animates so the world point (wx, wy) lands at the center of a
// viewport of the given size, keeping the current scale.
func (z *ZoomPan) FocusOn(wx, wy, viewW, viewH float64, duration float32) {
	z.AnimateTo(viewW/2-wx*z.Scale, viewH/2-wy*z.Scale, z.Scale, duration, ease.OutCubic)
}

// Animating reports whether an AnimateTo is in progress.
func (z *ZoomPan) Animating() bool {
	return z.anim != nil && !z.anim.Done
}

// Update advances a running animation by dt seconds.
func (z *ZoomPan) Update(dt float32) {
	if z.anim == nil {
		return
	}
	z.anim.Update(dt)
	if z.anim.Done {
		z.anim = nil
	}
}

func (z *ZoomPan) stopAnimation() {
	if z.anim != nil {
		z.anim.Cancel()
		z.anim = nil
	}
}

// apply writes the transform onto the target container.
func (z *ZoomPan) apply() {
	if z.target == nil || z.target.IsDisposed() {
		return
	}
	z.target.SetPosition(z.TranslateX, z.TranslateY)
	z.target.SetScale(z.Scale, z.Scale)
}

func clampZoom(s float64) float64 {
	return math.Max(MinZoom, math.Min(MaxZoom, s))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
