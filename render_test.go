package projectmap

import (
	"errors"
	"image"
	"math"
	"sort"
	"testing"
)

// traverseScene runs traverse without sorting or drawing.
func traverseScene(s *Scene) {
	s.commands = s.commands[:0]
	treeOrder := 0
	s.traverse(s.root, identityTransform, 1.0, false, &treeOrder)
}

// --- Command emission ---

func TestSingleRectEmitsOneCommand(t *testing.T) {
	s := NewScene()
	style := RectStyle{Fill: ColorWhite, StrokeWidth: 2, Radius: 5}
	s.Root().AddChild(NewRect("r", 32, 16, style))

	traverseScene(s)

	if len(s.commands) != 1 {
		t.Fatalf("commands = %d, want 1", len(s.commands))
	}
	cmd := s.commands[0]
	if cmd.Type != CommandRect {
		t.Errorf("Type = %d, want CommandRect", cmd.Type)
	}
	if cmd.Width != 32 || cmd.Height != 16 || cmd.Style != style {
		t.Errorf("cmd = %+v", cmd)
	}
}

func TestTextEmitsOneCommandPerLine(t *testing.T) {
	s := NewScene()
	txt := NewText("t", "one\n\ntwo", 10, &fixedMeasurer{perEm: 0.5})
	txt.Key = "k"
	s.Root().AddChild(txt)

	traverseScene(s)

	if len(s.commands) != 2 {
		t.Fatalf("commands = %d, want 2 (empty line skipped)", len(s.commands))
	}
	if s.commands[1].Text != "two" || s.commands[1].Type != CommandText || s.commands[1].Key != "k" {
		t.Errorf("second command = %+v", s.commands[1])
	}
	if s.commands[1].Transform[5] <= s.commands[0].Transform[5] {
		t.Error("second line should be below the first")
	}
}

func TestTextColorCarriesWorldAlpha(t *testing.T) {
	s := NewScene()
	txt := NewText("t", "a", 10, &fixedMeasurer{perEm: 0.5})
	txt.Alpha = 0.5
	s.Root().AddChild(txt)

	traverseScene(s)

	if got := s.commands[0].TextColor.A; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("TextColor.A = %v, want 0.5", got)
	}
}

func TestInvisibleNodeNoCommands(t *testing.T) {
	s := NewScene()
	r := NewRect("r", 32, 32, RectStyle{})
	r.Visible = false
	s.Root().AddChild(r)

	traverseScene(s)

	if len(s.commands) != 0 {
		t.Errorf("commands = %d, want 0 for invisible node", len(s.commands))
	}
}

func TestInvisibleSubtreeSkipped(t *testing.T) {
	s := NewScene()
	parent := NewContainer("parent")
	parent.Visible = false
	parent.AddChild(NewRect("child", 32, 32, RectStyle{}))
	s.Root().AddChild(parent)

	traverseScene(s)

	if len(s.commands) != 0 {
		t.Errorf("commands = %d, want 0 for invisible subtree", len(s.commands))
	}
}

func TestNonRenderableNodeSkipped(t *testing.T) {
	s := NewScene()
	parent := NewRect("parent", 32, 32, RectStyle{})
	parent.Renderable = false
	parent.AddChild(NewRect("child", 16, 16, RectStyle{}))
	s.Root().AddChild(parent)

	traverseScene(s)

	if len(s.commands) != 1 {
		t.Fatalf("commands = %d, want 1", len(s.commands))
	}
	if s.commands[0].Name != "child" {
		t.Error("command should be from child, not parent")
	}
}

func TestZeroAlphaSkipped(t *testing.T) {
	s := NewScene()
	r := NewRect("r", 10, 10, RectStyle{})
	r.Alpha = 0
	s.Root().AddChild(r)

	traverseScene(s)

	if len(s.commands) != 0 {
		t.Errorf("commands = %d, want 0", len(s.commands))
	}
}

func TestContainerNoCommand(t *testing.T) {
	s := NewScene()
	s.Root().AddChild(NewContainer("empty"))

	traverseScene(s)

	if len(s.commands) != 0 {
		t.Errorf("containers should not emit commands, got %d", len(s.commands))
	}
}

func TestTreeOrderAssignment(t *testing.T) {
	s := NewScene()
	for _, name := range []string{"a", "b", "c"} {
		s.Root().AddChild(NewRect(name, 1, 1, RectStyle{}))
	}

	traverseScene(s)

	if len(s.commands) != 3 {
		t.Fatalf("commands = %d, want 3", len(s.commands))
	}
	for i := 1; i < len(s.commands); i++ {
		if s.commands[i].treeOrder <= s.commands[i-1].treeOrder {
			t.Errorf("treeOrder not strictly increasing: [%d]=%d, [%d]=%d",
				i-1, s.commands[i-1].treeOrder, i, s.commands[i].treeOrder)
		}
	}
}

func TestWorldAlphaInCommand(t *testing.T) {
	s := NewScene()
	parent := NewContainer("parent")
	parent.Alpha = 0.5
	child := NewRect("child", 32, 32, RectStyle{})
	child.Alpha = 0.8
	parent.AddChild(child)
	s.Root().AddChild(parent)

	traverseScene(s)

	if len(s.commands) != 1 {
		t.Fatalf("commands = %d, want 1", len(s.commands))
	}
	if got := s.commands[0].Alpha; math.Abs(got-0.4) > 1e-9 {
		t.Errorf("cmd.Alpha = %v, want 0.4", got)
	}
}

func TestCommandTransform(t *testing.T) {
	s := NewScene()
	parent := NewContainer("parent")
	parent.SetPosition(100, 50)
	parent.SetScale(2, 2)
	child := NewRect("child", 10, 10, RectStyle{})
	child.SetPosition(5, 5)
	parent.AddChild(child)
	s.Root().AddChild(parent)

	traverseScene(s)

	m := s.commands[0].Transform
	if m[0] != 2 || m[3] != 2 || m[4] != 110 || m[5] != 60 {
		t.Errorf("transform = %v", m)
	}
}

// --- Images ---

func solidImage(w, h int) image.Image {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

func TestImageCommandResolvesBitmap(t *testing.T) {
	s := NewScene()
	s.SetImages(NewAvatarImages(ImageLoaderFunc(func(string) (image.Image, error) {
		return solidImage(4, 4), nil
	})))
	img := NewImage("a", "/u.png", 20, 20)
	img.ClipCircle = true
	s.Root().AddChild(img)

	traverseScene(s)

	cmd := s.commands[0]
	if cmd.Type != CommandImage || cmd.img == nil || !cmd.ClipCircle || cmd.ImageRef != "/u.png" {
		t.Errorf("cmd = %+v", cmd)
	}
}

func TestImageFallbackSwap(t *testing.T) {
	loads := map[string]int{}
	images := NewAvatarImages(ImageLoaderFunc(func(ref string) (image.Image, error) {
		loads[ref]++
		if ref == DefaultAvatarRef {
			return solidImage(4, 4), nil
		}
		return nil, errors.New("not found")
	}))
	s := NewScene()
	s.SetImages(images)
	n := NewImage("a", "/missing.png", 20, 20)
	n.FallbackRef = DefaultAvatarRef
	s.Root().AddChild(n)

	traverseScene(s)
	traverseScene(s)

	if n.ImageRef != DefaultAvatarRef {
		t.Errorf("ImageRef = %q, want fallback", n.ImageRef)
	}
	if s.commands[0].ImageRef != DefaultAvatarRef || s.commands[0].img == nil {
		t.Errorf("cmd = %+v", s.commands[0])
	}
	if loads["/missing.png"] != 1 || loads[DefaultAvatarRef] != 1 {
		t.Errorf("loads = %v, want each ref loaded once", loads)
	}
}

func TestImageFallbackAlsoFails(t *testing.T) {
	s := NewScene()
	s.SetImages(NewAvatarImages(ImageLoaderFunc(func(string) (image.Image, error) {
		return nil, errors.New("offline")
	})))
	n := NewImage("a", "/x.png", 20, 20)
	n.FallbackRef = DefaultAvatarRef
	s.Root().AddChild(n)

	traverseScene(s)

	if s.commands[0].img != nil {
		t.Error("expected placeholder (nil bitmap)")
	}
}

func TestImageWithoutCache(t *testing.T) {
	s := NewScene()
	s.Root().AddChild(NewImage("a", "/x.png", 20, 20))

	traverseScene(s)

	if len(s.commands) != 1 || s.commands[0].img != nil {
		t.Errorf("commands = %+v", s.commands)
	}
}

// --- Sorting ---

func TestRenderLayerSorting(t *testing.T) {
	s := NewScene()
	a := NewRect("a", 1, 1, RectStyle{})
	a.RenderLayer = 1
	b := NewRect("b", 1, 1, RectStyle{})
	s.Root().AddChild(a)
	s.Root().AddChild(b)

	cmds := s.Commands()

	if cmds[0].Name != "b" || cmds[1].Name != "a" {
		t.Errorf("order = %s, %s; want b, a", cmds[0].Name, cmds[1].Name)
	}
}

func TestTreeOrderPreservedWithinLayer(t *testing.T) {
	s := NewScene()
	names := []string{"n0", "n1", "n2", "n3", "n4"}
	for _, name := range names {
		s.Root().AddChild(NewRect(name, 1, 1, RectStyle{}))
	}

	cmds := s.Commands()

	for i, name := range names {
		if cmds[i].Name != name {
			t.Errorf("commands[%d] = %s, want %s", i, cmds[i].Name, name)
		}
	}
}

func TestZIndexSorting(t *testing.T) {
	s := NewScene()
	a := NewRect("a", 1, 1, RectStyle{})
	b := NewRect("b", 1, 1, RectStyle{})
	c := NewRect("c", 1, 1, RectStyle{})
	a.SetZIndex(2)
	b.SetZIndex(0)
	c.SetZIndex(1)
	s.Root().AddChild(a)
	s.Root().AddChild(b)
	s.Root().AddChild(c)

	traverseScene(s)

	want := []string{"b", "c", "a"}
	for i, name := range want {
		if s.commands[i].Name != name {
			t.Errorf("commands[%d] = %s, want %s", i, s.commands[i].Name, name)
		}
	}
}

// --- Merge sort ---

func TestMergeSortMatchesStdlib(t *testing.T) {
	s := NewScene()
	cmds := []RenderCommand{
		{RenderLayer: 2, treeOrder: 1},
		{RenderLayer: 0, treeOrder: 2},
		{RenderLayer: 0, treeOrder: 3},
		{RenderLayer: 1, treeOrder: 4},
		{RenderLayer: 0, treeOrder: 5},
		{RenderLayer: 2, treeOrder: 6},
		{RenderLayer: 0, treeOrder: 7},
	}

	ref := make([]RenderCommand, len(cmds))
	copy(ref, cmds)
	sort.SliceStable(ref, func(i, j int) bool {
		a, b := ref[i], ref[j]
		if a.RenderLayer != b.RenderLayer {
			return a.RenderLayer < b.RenderLayer
		}
		return a.treeOrder < b.treeOrder
	})

	s.commands = make([]RenderCommand, len(cmds))
	copy(s.commands, cmds)
	s.mergeSort()

	for i := range s.commands {
		a, b := s.commands[i], ref[i]
		if a.RenderLayer != b.RenderLayer || a.treeOrder != b.treeOrder {
			t.Errorf("index %d: mergeSort=(%d,%d), stdlib=(%d,%d)",
				i, a.RenderLayer, a.treeOrder, b.RenderLayer, b.treeOrder)
		}
	}
}

func TestMergeSortStable(t *testing.T) {
	s := NewScene()
	s.commands = make([]RenderCommand, 100)
	for i := range s.commands {
		s.commands[i] = RenderCommand{treeOrder: i}
	}

	s.mergeSort()

	for i := range s.commands {
		if s.commands[i].treeOrder != i {
			t.Fatalf("stability broken at index %d: treeOrder=%d", i, s.commands[i].treeOrder)
		}
	}
}

func TestMergeSortBufferReuse(t *testing.T) {
	s := NewScene()

	s.commands = make([]RenderCommand, 50)
	for i := range s.commands {
		s.commands[i] = RenderCommand{treeOrder: 50 - i}
	}
	s.mergeSort()
	bufCap := cap(s.sortBuf)

	s.commands = make([]RenderCommand, 30)
	for i := range s.commands {
		s.commands[i] = RenderCommand{treeOrder: 30 - i}
	}
	s.mergeSort()

	if cap(s.sortBuf) != bufCap {
		t.Errorf("sortBuf reallocated: was %d, now %d", bufCap, cap(s.sortBuf))
	}
}

func TestMergeSortEmpty(t *testing.T) {
	s := NewScene()
	s.commands = nil
	s.mergeSort() // should not panic
}

func TestMergeSortSingleElement(t *testing.T) {
	s := NewScene()
	s.commands = []RenderCommand{{treeOrder: 1}}
	s.mergeSort()
	if s.commands[0].treeOrder != 1 {
		t.Error("single element should remain unchanged")
	}
}

// --- Benchmarks ---

func buildRectScene(count int) *Scene {
	s := NewScene()
	for i := 0; i < count; i++ {
		r := NewRect("r", 10, 10, RectStyle{Fill: ColorWhite})
		r.SetPosition(float64(i%100)*10, float64(i/100)*10)
		s.Root().AddChild(r)
	}
	return s
}

func BenchmarkTraverse1000(b *testing.B) {
	s := buildRectScene(1000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		traverseScene(s)
	}
}

func BenchmarkCommandSort10000(b *testing.B) {
	s := buildRectScene(10000)
	traverseScene(s)
	cmds := make([]RenderCommand, len(s.commands))
	copy(cmds, s.commands)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		copy(s.commands, cmds)
		s.mergeSort()
	}
}
