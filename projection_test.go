package projectmap

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func TestProjectorProject(t *testing.T) {
	tests := []struct {
		name           string
		p              Projector
		gx, gy         float64
		wantSX, wantSY float64
	}{
		{"origin is viewport center", Projector{800, 600, 50}, 0, 0, 400, 300},
		{"positive x goes right", Projector{800, 600, 50}, 2, 0, 500, 300},
		{"positive y goes up", Projector{800, 600, 50}, 0, 2, 400, 200},
		{"negative quadrant", Projector{1000, 1000, 100}, -1.5, -2, 350, 700},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sx, sy := tt.p.Project(tt.gx, tt.gy)
			if !approxEqual(sx, tt.wantSX, epsilon) || !approxEqual(sy, tt.wantSY, epsilon) {
				t.Errorf("Project(%v, %v) = (%v, %v), want (%v, %v)", tt.gx, tt.gy, sx, sy, tt.wantSX, tt.wantSY)
			}
		})
	}
}

func TestProjectorDeterministic(t *testing.T) {
	p := Projector{1280, 800, 150}
	x1, y1 := p.Project(3.25, -7.5)
	x2, y2 := p.Project(3.25, -7.5)
	if x1 != x2 || y1 != y2 {
		t.Error("Project must be deterministic")
	}
}

func TestZoneRect(t *testing.T) {
	p := Projector{800, 600, 50}
	// pad = 0.1*50 + 120 = 125
	r := p.ZoneRect(Zone{X: 0, Y: 0, Width: 2, Height: 2}, 120)
	// x = Project(-1) - 62.5 = 350 - 62.5
	if !approxEqual(r.X, 287.5, 1e-6) {
		t.Errorf("X = %v, want 287.5", r.X)
	}
	// y = Project(y=1) - 62.5 = 250 - 62.5
	if !approxEqual(r.Y, 187.5, 1e-6) {
		t.Errorf("Y = %v, want 187.5", r.Y)
	}
	if !approxEqual(r.Width, 225, 1e-6) || !approxEqual(r.Height, 225, 1e-6) {
		t.Errorf("size = %vx%v, want 225x225", r.Width, r.Height)
	}
}

func TestZoneRectMalformed(t *testing.T) {
	p := Projector{800, 600, 50}
	tests := []struct {
		name string
		z    Zone
		want func(Rect) bool
	}{
		{"NaN width clamps to 1", Zone{Width: math.NaN(), Height: 2}, func(r Rect) bool { return r.Width == 1 }},
		{"negative height clamps to 1", Zone{Width: 2, Height: -10}, func(r Rect) bool { return r.Height == 1 }},
		{"NaN x clamps to 0", Zone{X: math.NaN(), Width: 2, Height: 2}, func(r Rect) bool { return r.X == 0 }},
		{"NaN y clamps to 0", Zone{Y: math.NaN(), Width: 2, Height: 2}, func(r Rect) bool { return r.Y == 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := p.ZoneRect(tt.z, 120)
			if !tt.want(r) {
				t.Errorf("ZoneRect(%+v) = %+v", tt.z, r)
			}
		})
	}
}
