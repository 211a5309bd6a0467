package projectmap

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

// tweenOffset moves a node the way ZoomPan.AnimateTo drives its target.
func tweenOffset(node *Node, toX, toY float64, duration float32) *TweenGroup {
	return newTweenGroup(node, nil, duration, ease.Linear,
		[]*float64{&node.X, &node.Y}, []float64{toX, toY})
}

func TestTweenGroupReachesExactTarget(t *testing.T) {
	node := NewContainer("world")
	node.SetPosition(10, 20)

	g := tweenOffset(node, 100.1, 200.3, 1.0)

	// Exact halves avoid float32 accumulation drift.
	g.Update(0.5)
	if g.Done {
		t.Fatal("Done too early")
	}
	if math.Abs(node.X-55.05) > 0.01 {
		t.Errorf("X at half = %f, want ~55.05", node.X)
	}
	if !node.transformDirty {
		t.Error("update should mark the node dirty")
	}
	g.Update(0.5)

	if !g.Done {
		t.Fatal("expected Done after full duration")
	}
	// Finished groups land on the exact float64 target.
	if node.X != 100.1 || node.Y != 200.3 {
		t.Errorf("position = (%v, %v), want exact target", node.X, node.Y)
	}
}

func TestTweenZeroDurationFinishesImmediately(t *testing.T) {
	node := NewContainer("instant")
	g := tweenOffset(node, 5, 6, 0)
	if !g.Done {
		t.Fatal("zero-duration tween should be done")
	}
	if node.X != 5 || node.Y != 6 {
		t.Errorf("position = (%v, %v)", node.X, node.Y)
	}
}

func TestTweenStopsOnDisposedNode(t *testing.T) {
	node := NewRect("frame", 10, 10, RectStyle{StrokeWidth: 2})
	g := TweenRectStyle(node, RectStyle{StrokeWidth: 4}, 1.0, ease.Linear)
	node.Dispose()

	g.Update(0.5)
	if !g.Done {
		t.Error("expected Done after target disposal")
	}
	if node.Style.StrokeWidth != 2 {
		t.Errorf("StrokeWidth = %v, disposed node should not be written", node.Style.StrokeWidth)
	}
}

func TestTweenCancelKeepsCurrentValue(t *testing.T) {
	node := NewRect("frame", 10, 10, RectStyle{})
	g := TweenRectStyle(node, RectStyle{Fill: Color{A: 1}}, 1.0, ease.Linear)
	g.Update(0.5)
	mid := node.Style.Fill.A

	g.Cancel()
	g.Update(0.5)
	if node.Style.Fill.A != mid {
		t.Errorf("fill alpha = %v after cancel, want %v", node.Style.Fill.A, mid)
	}
}

func TestTweenNilGroupSafe(t *testing.T) {
	var g *TweenGroup
	g.Update(1)
	g.Finish()
	g.Cancel()
}

func TestTweenRectStyle(t *testing.T) {
	glow := &GlowFilter{ID: "g", StdDeviation: 3}
	node := NewRect("frame", 10, 10, RectStyle{
		Fill:        Color{1, 0, 0, 0.3},
		Stroke:      Color{1, 1, 1, 0.5},
		StrokeWidth: 2,
	})
	to := RectStyle{
		Fill:        Color{1, 0, 0, 0.8},
		Stroke:      Color{1, 0.84, 0, 1},
		StrokeWidth: 4,
		Radius:      15,
		Glow:        glow,
		Shadow:      true,
	}

	g := TweenRectStyle(node, to, 0.3, ease.OutQuad)
	if node.Style.Shadow != true || node.Style.Glow != glow || node.Style.Stroke.G != 0.84 {
		t.Error("discrete fields should switch immediately")
	}
	g.Update(0.1)
	if a := node.Style.Fill.A; a <= 0.3 || a >= 0.8 {
		t.Errorf("mid fill alpha = %v", a)
	}
	g.Update(0.2)
	g.Update(0.1)
	if !g.Done || node.Style != to {
		t.Errorf("style = %+v, want %+v", node.Style, to)
	}
}

func TestTweenApplyCallback(t *testing.T) {
	var v float64
	calls := 0
	g := newTweenGroup(nil, func() { calls++ }, 1, ease.Linear, []*float64{&v}, []float64{10})
	g.Update(0.5)
	g.Update(0.5)
	if calls != 2 || v != 10 {
		t.Errorf("calls = %d, v = %v", calls, v)
	}
}
