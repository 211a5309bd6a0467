package projectmap

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// HoverDuration is the length of the frame highlight transition, in seconds.
const HoverDuration float32 = 0.3

// TweenGroup animates up to 4 float64 fields simultaneously. Create one via
// TweenRectStyle or ZoomPan.AnimateTo and call Update(dt) each frame. The group
// auto-applies values and marks the target node dirty. If the target node is
// disposed, the group stops immediately. When every tween finishes, the exact
// target values are written so no float32 rounding survives the animation.
//
// There is no global animation manager; owners call Update themselves.
type TweenGroup struct {
	tweens [4]*gween.Tween
	ends   [4]float64
	count  int
	fields [4]*float64
	target *Node
	apply  func()
	Done   bool
}

// newTweenGroup builds a group over fields. apply, when set, runs after every
// write. A non-positive duration finishes immediately.
func newTweenGroup(target *Node, apply func(), duration float32, fn ease.TweenFunc, fields []*float64, ends []float64) *TweenGroup {
	g := &TweenGroup{count: len(fields), target: target, apply: apply}
	if fn == nil {
		fn = ease.Linear
	}
	for i := range fields {
		g.fields[i] = fields[i]
		g.ends[i] = ends[i]
		g.tweens[i] = gween.New(float32(*fields[i]), float32(ends[i]), duration, fn)
	}
	if duration <= 0 {
		g.Finish()
	}
	return g
}

// Update advances all tweens by dt seconds, writes values to the target fields,
// and marks the node dirty. If the target node has been disposed, Done is set
// to true and no writes occur.
func (g *TweenGroup) Update(dt float32) {
	if g == nil || g.Done {
		return
	}
	if g.target != nil && g.target.IsDisposed() {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	if allDone {
		g.Finish()
		return
	}
	g.changed()
}

// Finish jumps every field to its end value and marks the group done.
func (g *TweenGroup) Finish() {
	if g == nil {
		return
	}
	if g.target != nil && g.target.IsDisposed() {
		g.Done = true
		return
	}
	for i := 0; i < g.count; i++ {
		*g.fields[i] = g.ends[i]
	}
	g.Done = true
	g.changed()
}

// Cancel stops the group, leaving fields at their current values.
func (g *TweenGroup) Cancel() {
	if g != nil {
		g.Done = true
	}
}

func (g *TweenGroup) changed() {
	if g.target != nil {
		g.target.MarkDirty()
	}
	if g.apply != nil {
		g.apply()
	}
}

// TweenRectStyle animates the fill opacity, stroke opacity, and stroke width
// of a rect node toward to. Colors, glow, and shadow switch immediately.
func TweenRectStyle(node *Node, to RectStyle, duration float32, fn ease.TweenFunc) *TweenGroup {
	node.Style.Fill.R, node.Style.Fill.G, node.Style.Fill.B = to.Fill.R, to.Fill.G, to.Fill.B
	node.Style.Stroke.R, node.Style.Stroke.G, node.Style.Stroke.B = to.Stroke.R, to.Stroke.G, to.Stroke.B
	node.Style.Radius = to.Radius
	node.Style.Glow = to.Glow
	node.Style.Shadow = to.Shadow
	return newTweenGroup(node, nil, duration, fn,
		[]*float64{&node.Style.Fill.A, &node.Style.Stroke.A, &node.Style.StrokeWidth},
		[]float64{to.Fill.A, to.Stroke.A, to.StrokeWidth})
}
