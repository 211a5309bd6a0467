package projectmap

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

const defaultDragDeadZone = 4.0 // pixels

// --- Built-in HitShape types ---

// HitRect is an axis-aligned rectangular hit area in local coordinates.
type HitRect struct {
	X, Y, Width, Height float64
}

// Contains reports whether (x, y) lies inside the rectangle.
func (r HitRect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// HitCircle is a circular hit area in local coordinates.
type HitCircle struct {
	CenterX, CenterY, Radius float64
}

// Contains reports whether (x, y) lies inside or on the circle.
func (c HitCircle) Contains(x, y float64) bool {
	dx := x - c.CenterX
	dy := y - c.CenterY
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// --- Pointer state ---

type pointerState struct {
	down      bool
	startX    float64
	startY    float64
	lastX     float64
	lastY     float64
	hitNode   *Node
	hoverNode *Node // last node the pointer was hovering over (for enter/leave)
	dragging  bool
	button    MouseButton // button captured at press time
}

// --- Handler registry ---

type pointerHandler struct {
	id uint32
	fn func(PointerContext)
}

type clickHandler struct {
	id uint32
	fn func(ClickContext)
}

type dragHandler struct {
	id uint32
	fn func(DragContext)
}

type wheelHandler struct {
	id uint32
	fn func(WheelContext)
}

type handlerRegistry struct {
	pointerDown  []pointerHandler
	pointerUp    []pointerHandler
	pointerMove  []pointerHandler
	pointerEnter []pointerHandler
	pointerLeave []pointerHandler
	click        []clickHandler
	dragStart    []dragHandler
	drag         []dragHandler
	dragEnd      []dragHandler
	wheel        []wheelHandler
	nextID       uint32
}

// CallbackHandle allows removing a registered scene-level callback.
type CallbackHandle struct {
	id    uint32
	reg   *handlerRegistry
	event EventType
}

// Remove unregisters this callback so it no longer fires.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	switch h.event {
	case EventPointerDown:
		h.reg.pointerDown = removeHandler(h.reg.pointerDown, h.id, func(p pointerHandler) uint32 { return p.id })
	case EventPointerUp:
		h.reg.pointerUp = removeHandler(h.reg.pointerUp, h.id, func(p pointerHandler) uint32 { return p.id })
	case EventPointerMove:
		h.reg.pointerMove = removeHandler(h.reg.pointerMove, h.id, func(p pointerHandler) uint32 { return p.id })
	case EventPointerEnter:
		h.reg.pointerEnter = removeHandler(h.reg.pointerEnter, h.id, func(p pointerHandler) uint32 { return p.id })
	case EventPointerLeave:
		h.reg.pointerLeave = removeHandler(h.reg.pointerLeave, h.id, func(p pointerHandler) uint32 { return p.id })
	case EventClick:
		h.reg.click = removeHandler(h.reg.click, h.id, func(c clickHandler) uint32 { return c.id })
	case EventDragStart:
		h.reg.dragStart = removeHandler(h.reg.dragStart, h.id, func(d dragHandler) uint32 { return d.id })
	case EventDrag:
		h.reg.drag = removeHandler(h.reg.drag, h.id, func(d dragHandler) uint32 { return d.id })
	case EventDragEnd:
		h.reg.dragEnd = removeHandler(h.reg.dragEnd, h.id, func(d dragHandler) uint32 { return d.id })
	case EventWheel:
		h.reg.wheel = removeHandler(h.reg.wheel, h.id, func(w wheelHandler) uint32 { return w.id })
	}
}

// removeHandler deletes the entry with the given id, keeping order and
// zeroing the vacated tail slot.
func removeHandler[T any](s []T, id uint32, idOf func(T) uint32) []T {
	for i := range s {
		if idOf(s[i]) == id {
			copy(s[i:], s[i+1:])
			var zero T
			s[len(s)-1] = zero
			return s[:len(s)-1]
		}
	}
	return s
}

// --- Scene-level event registration ---

// OnPointerDown registers a scene-level callback for pointer down events.
func (s *Scene) OnPointerDown(fn func(PointerContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.pointerDown = append(s.handlers.pointerDown, pointerHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventPointerDown}
}

// OnPointerUp registers a scene-level callback for pointer up events.
func (s *Scene) OnPointerUp(fn func(PointerContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.pointerUp = append(s.handlers.pointerUp, pointerHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventPointerUp}
}

// OnPointerMove registers a scene-level callback for pointer move events.
func (s *Scene) OnPointerMove(fn func(PointerContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.pointerMove = append(s.handlers.pointerMove, pointerHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventPointerMove}
}

// OnPointerEnter registers a scene-level callback for pointer enter events.
// Fired when the pointer moves over a new node (or from nil to a node).
func (s *Scene) OnPointerEnter(fn func(PointerContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.pointerEnter = append(s.handlers.pointerEnter, pointerHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventPointerEnter}
}

// OnPointerLeave registers a scene-level callback for pointer leave events.
func (s *Scene) OnPointerLeave(fn func(PointerContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.pointerLeave = append(s.handlers.pointerLeave, pointerHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventPointerLeave}
}

// OnClick registers a scene-level callback for click events.
func (s *Scene) OnClick(fn func(ClickContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.click = append(s.handlers.click, clickHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventClick}
}

// OnDragStart registers a scene-level callback for drag start events.
func (s *Scene) OnDragStart(fn func(DragContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.dragStart = append(s.handlers.dragStart, dragHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventDragStart}
}

// OnDrag registers a scene-level callback for drag events.
func (s *Scene) OnDrag(fn func(DragContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.drag = append(s.handlers.drag, dragHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventDrag}
}

// OnDragEnd registers a scene-level callback for drag end events.
func (s *Scene) OnDragEnd(fn func(DragContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.dragEnd = append(s.handlers.dragEnd, dragHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventDragEnd}
}

// OnWheel registers a scene-level callback for mouse wheel movement.
func (s *Scene) OnWheel(fn func(WheelContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.wheel = append(s.handlers.wheel, wheelHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventWheel}
}

// SetDragDeadZone sets the minimum movement in pixels before a drag starts.
func (s *Scene) SetDragDeadZone(pixels float64) {
	s.dragDeadZone = pixels
}

// --- Hit testing ---

// nodeContainsLocal tests whether (lx, ly) falls inside a node's hit region.
// Uses HitShape if set; otherwise the node's Width x Height box.
// Containers with no HitShape are not hit-testable.
func nodeContainsLocal(n *Node, lx, ly float64) bool {
	if n.HitShape != nil {
		return n.HitShape.Contains(lx, ly)
	}
	if n.Width == 0 && n.Height == 0 {
		return false
	}
	return lx >= 0 && lx <= n.Width && ly >= 0 && ly <= n.Height
}

// collectInteractable appends interactable nodes in draw order. A hidden
// subtree is skipped entirely; a non-interactable node is skipped but its
// children are still considered.
func (s *Scene) collectInteractable(n *Node, buf []*Node) []*Node {
	if !n.Visible {
		return buf
	}
	if n.Interactable && (n.HitShape != nil || n.Type != NodeTypeContainer) {
		buf = append(buf, n)
	}
	if len(n.children) == 0 {
		return buf
	}

	children := n.children
	if !n.childrenSorted {
		s.rebuildSortedChildren(n)
	}
	if n.sortedChildren != nil {
		children = n.sortedChildren
	}
	for _, child := range children {
		buf = s.collectInteractable(child, buf)
	}
	return buf
}

// hitTest returns the topmost interactable node under the given global
// point, or nil. Render layers are honored: a higher layer wins over tree
// order.
func (s *Scene) hitTest(gx, gy float64) *Node {
	s.hitBuf = s.collectInteractable(s.root, s.hitBuf[:0])

	var best *Node
	for i := len(s.hitBuf) - 1; i >= 0; i-- {
		n := s.hitBuf[i]
		if best != nil && n.RenderLayer <= best.RenderLayer {
			continue
		}
		lx, ly := n.WorldToLocal(gx, gy)
		if nodeContainsLocal(n, lx, ly) {
			best = n
		}
	}
	return best
}

// --- Input processing ---

// processInput reads one frame of pointer input. A queued synthetic event,
// when present, replaces real mouse input for the frame.
func (s *Scene) processInput() {
	if s.processInjectedInput() {
		return
	}

	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)

	var pressed bool
	var button MouseButton
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	middle := ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	if left || right || middle {
		pressed = true
		switch {
		case left:
			button = MouseButtonLeft
		case right:
			button = MouseButtonRight
		default:
			button = MouseButtonMiddle
		}
	}

	s.processPointer(x, y, pressed, button)

	if wx, wy := ebiten.Wheel(); wx != 0 || wy != 0 {
		s.fireWheel(x, y, wx, wy)
	}
}

// processPointer runs the pointer state machine for one sample at global
// (x, y): enter/leave, down/up, click, and drag past the dead zone.
func (s *Scene) processPointer(x, y float64, pressed bool, button MouseButton) {
	ps := &s.pointer

	target := s.hitTest(x, y)
	if ps.hoverNode != nil && ps.hoverNode.disposed {
		ps.hoverNode = nil
	}
	if ps.hitNode != nil && ps.hitNode.disposed {
		ps.hitNode = nil
	}

	if target != ps.hoverNode {
		if ps.hoverNode != nil {
			s.firePointer(s.handlers.pointerLeave, ps.hoverNode, ps.hoverNode.OnPointerLeave, x, y, button)
		}
		if target != nil {
			s.firePointer(s.handlers.pointerEnter, target, target.OnPointerEnter, x, y, button)
		}
		ps.hoverNode = target
	}

	switch {
	case pressed && !ps.down:
		ps.down = true
		ps.button = button
		ps.startX, ps.startY = x, y
		ps.lastX, ps.lastY = x, y
		ps.hitNode = target
		ps.dragging = false
		s.firePointer(s.handlers.pointerDown, target, nodeCallback(target, func(n *Node) func(PointerContext) { return n.OnPointerDown }), x, y, ps.button)

	case !pressed && ps.down:
		if ps.dragging {
			s.fireDrag(s.handlers.dragEnd, ps.hitNode, nodeDragCallback(ps.hitNode, func(n *Node) func(DragContext) { return n.OnDragEnd }),
				x, y, ps.startX, ps.startY, x-ps.lastX, y-ps.lastY, ps.button)
		} else if ps.hitNode != nil && ps.hitNode == target {
			s.fireClick(target, x, y, ps.button)
		}
		s.firePointer(s.handlers.pointerUp, target, nodeCallback(target, func(n *Node) func(PointerContext) { return n.OnPointerUp }), x, y, ps.button)
		ps.down = false
		ps.hitNode = nil
		ps.dragging = false
		ps.lastX, ps.lastY = x, y

	case pressed && ps.down:
		if x != ps.lastX || y != ps.lastY {
			if !ps.dragging {
				dx := x - ps.startX
				dy := y - ps.startY
				if math.Sqrt(dx*dx+dy*dy) > s.dragDeadZone {
					ps.dragging = true
					s.fireDrag(s.handlers.dragStart, ps.hitNode, nodeDragCallback(ps.hitNode, func(n *Node) func(DragContext) { return n.OnDragStart }),
						x, y, ps.startX, ps.startY, x-ps.startX, y-ps.startY, ps.button)
				}
			}
			if ps.dragging {
				s.fireDrag(s.handlers.drag, ps.hitNode, nodeDragCallback(ps.hitNode, func(n *Node) func(DragContext) { return n.OnDrag }),
					x, y, ps.startX, ps.startY, x-ps.lastX, y-ps.lastY, ps.button)
			}
		}
		ps.lastX, ps.lastY = x, y

	default:
		if x != ps.lastX || y != ps.lastY {
			s.firePointer(s.handlers.pointerMove, target, nodeCallback(target, func(n *Node) func(PointerContext) { return n.OnPointerMove }), x, y, button)
			ps.lastX, ps.lastY = x, y
		}
	}
}

func nodeCallback(n *Node, get func(*Node) func(PointerContext)) func(PointerContext) {
	if n == nil {
		return nil
	}
	return get(n)
}

func nodeDragCallback(n *Node, get func(*Node) func(DragContext)) func(DragContext) {
	if n == nil {
		return nil
	}
	return get(n)
}

// --- Event dispatch ---

// Scene-level handlers run first, then the node's own callback.

func (s *Scene) firePointer(handlers []pointerHandler, node *Node, fn func(PointerContext), x, y float64, button MouseButton) {
	ctx := PointerContext{Node: node, GlobalX: x, GlobalY: y, Button: button}
	if node != nil {
		ctx.Key = node.Key
		ctx.UserData = node.UserData
		ctx.LocalX, ctx.LocalY = node.WorldToLocal(x, y)
	}
	for _, h := range handlers {
		h.fn(ctx)
	}
	if fn != nil {
		fn(ctx)
	}
}

func (s *Scene) fireClick(node *Node, x, y float64, button MouseButton) {
	ctx := ClickContext{Node: node, GlobalX: x, GlobalY: y, Button: button}
	if node != nil {
		ctx.Key = node.Key
		ctx.UserData = node.UserData
		ctx.LocalX, ctx.LocalY = node.WorldToLocal(x, y)
	}
	for _, h := range s.handlers.click {
		h.fn(ctx)
	}
	if node != nil && node.OnClick != nil {
		node.OnClick(ctx)
	}
}

func (s *Scene) fireDrag(handlers []dragHandler, node *Node, fn func(DragContext), x, y, startX, startY, deltaX, deltaY float64, button MouseButton) {
	ctx := DragContext{
		Node: node, GlobalX: x, GlobalY: y,
		StartX: startX, StartY: startY, DeltaX: deltaX, DeltaY: deltaY,
		Button: button,
	}
	if node != nil {
		ctx.Key = node.Key
		ctx.UserData = node.UserData
		ctx.LocalX, ctx.LocalY = node.WorldToLocal(x, y)
	}
	for _, h := range handlers {
		h.fn(ctx)
	}
	if fn != nil {
		fn(ctx)
	}
}

func (s *Scene) fireWheel(x, y, dx, dy float64) {
	ctx := WheelContext{GlobalX: x, GlobalY: y, DeltaX: dx, DeltaY: dy}
	for _, h := range s.handlers.wheel {
		h.fn(ctx)
	}
}
