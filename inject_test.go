package projectmap

import "testing"

func TestInjectClick(t *testing.T) {
	s := NewScene()
	r := interactableRect("r", 100, 100)
	s.Root().AddChild(r)
	updateWorldTransform(s.root, identityTransform, 1.0, false)

	var clicked bool
	s.OnClick(func(ctx ClickContext) {
		clicked = true
		if ctx.Node != r {
			t.Error("expected rect node")
		}
	})

	s.InjectClick(50, 50)
	if s.PendingInput() != 2 {
		t.Fatalf("expected 2 queued events, got %d", s.PendingInput())
	}

	// Frame 1: press
	s.processInjectedInput()
	if s.PendingInput() != 1 {
		t.Fatalf("expected 1 remaining event after frame 1, got %d", s.PendingInput())
	}
	if clicked {
		t.Error("click should not fire on press frame")
	}

	// Frame 2: release, click fires
	s.processInjectedInput()
	if s.PendingInput() != 0 {
		t.Fatalf("expected 0 remaining events after frame 2, got %d", s.PendingInput())
	}
	if !clicked {
		t.Error("click should fire on release frame")
	}
}

func TestInjectDrag(t *testing.T) {
	s := NewScene()
	s.Root().AddChild(interactableRect("r", 400, 400))
	updateWorldTransform(s.root, identityTransform, 1.0, false)

	var events []string
	var dx float64
	s.OnDragStart(func(DragContext) { events = append(events, "dragstart") })
	s.OnDrag(func(ctx DragContext) {
		events = append(events, "drag")
		dx += ctx.DeltaX
	})
	s.OnDragEnd(func(ctx DragContext) {
		events = append(events, "dragend")
		dx += ctx.DeltaX
	})

	s.InjectDrag(10, 10, 200, 200, 5)
	if s.PendingInput() != 5 {
		t.Fatalf("expected 5 queued events, got %d", s.PendingInput())
	}
	for s.processInjectedInput() {
	}

	if len(events) < 3 {
		t.Fatalf("expected at least 3 events, got %v", events)
	}
	if events[0] != "dragstart" {
		t.Errorf("first event should be dragstart, got %s", events[0])
	}
	if events[len(events)-1] != "dragend" {
		t.Errorf("last event should be dragend, got %s", events[len(events)-1])
	}
	if !approxEqual(dx, 190, 1e-9) {
		t.Errorf("summed drag delta = %v, want 190", dx)
	}
}

func TestInjectDragMinFrames(t *testing.T) {
	s := NewScene()
	s.InjectDrag(0, 0, 100, 100, 1)
	if s.PendingInput() != 2 {
		t.Errorf("frames < 2 should clamp to press+release, got %d events", s.PendingInput())
	}
}

func TestInjectHoverEntersWithoutPress(t *testing.T) {
	s := NewScene()
	r := interactableRect("r", 100, 100)
	s.Root().AddChild(r)
	updateWorldTransform(s.root, identityTransform, 1.0, false)

	entered, pressed := false, false
	r.OnPointerEnter = func(PointerContext) { entered = true }
	r.OnPointerDown = func(PointerContext) { pressed = true }

	s.InjectHover(20, 20)
	s.processInjectedInput()
	if !entered || pressed {
		t.Errorf("entered = %v, pressed = %v", entered, pressed)
	}
}

func TestInjectWheel(t *testing.T) {
	s := NewScene()
	var got WheelContext
	calls := 0
	s.OnWheel(func(ctx WheelContext) {
		got = ctx
		calls++
	})

	s.InjectWheel(30, 40, -2)
	s.processInjectedInput()
	if calls != 1 {
		t.Fatalf("wheel handler calls = %d, want 1", calls)
	}
	if got.GlobalX != 30 || got.GlobalY != 40 || got.DeltaY != -2 || got.DeltaX != 0 {
		t.Errorf("wheel context = %+v", got)
	}
}

func TestInjectQueueEmpty(t *testing.T) {
	s := NewScene()
	if s.processInjectedInput() {
		t.Error("empty queue should report no event consumed")
	}
}

func TestUpdateInjectedConsumesOneEventPerFrame(t *testing.T) {
	s := NewScene()
	s.InjectHover(1, 1)
	s.InjectHover(2, 2)
	s.UpdateInjected()
	if s.PendingInput() != 1 {
		t.Errorf("PendingInput = %d after one frame, want 1", s.PendingInput())
	}
}
