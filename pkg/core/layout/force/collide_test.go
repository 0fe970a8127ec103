package force

import (
	"math"
	"testing"
)

func body(x, y, r float64) *Body { return &Body{X: x, Y: y, Radius: r} }

func TestCollidePair(t *testing.T) {
	tests := []struct {
		name           string
		a, b           *Body
		wantAX, wantBX float64
	}{
		{"split", body(0, 0, 5), body(8, 0, 5), -1, 9},
		{"touching", body(0, 0, 5), body(10, 0, 5), 0, 10},
		{"apart", body(0, 0, 5), body(50, 0, 5), 0, 50},
		{"color padding", &Body{Radius: 5, Color: "red"}, &Body{X: 8, Radius: 5, Color: "blue"}, -4, 12},
		{"coincident", body(3, 0, 5), body(3, 0, 5), 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Collide([]*Body{tt.a, tt.b}, 0.5)
			if !near(tt.a.X, tt.wantAX) || !near(tt.b.X, tt.wantBX) {
				t.Errorf("x = %v, %v, want %v, %v", tt.a.X, tt.b.X, tt.wantAX, tt.wantBX)
			}
			if tt.a.Y != 0 || tt.b.Y != 0 {
				t.Errorf("y moved: %v, %v", tt.a.Y, tt.b.Y)
			}
		})
	}
}

func TestCollideSplitKeepsMidpoint(t *testing.T) {
	a, b := body(1, 2, 4), body(3, 5, 4)
	mx, my := (a.X+b.X)/2, (a.Y+b.Y)/2
	before := dist(a, b)
	Collide([]*Body{a, b}, 0.5)
	if !near((a.X+b.X)/2, mx) || !near((a.Y+b.Y)/2, my) {
		t.Errorf("midpoint moved to (%v, %v)", (a.X+b.X)/2, (a.Y+b.Y)/2)
	}
	if dist(a, b) <= before {
		t.Errorf("distance %v did not grow from %v", dist(a, b), before)
	}
}

func TestCollideFixed(t *testing.T) {
	a, b := body(0, 0, 5), body(8, 0, 5)
	a.Fixed = true
	Collide([]*Body{a, b}, 0.5)
	if a.X != 0 {
		t.Errorf("fixed body moved to %v", a.X)
	}
	// b is pushed once by a, then resolves its own remaining overlap.
	if !near(b.X, 9.5) {
		t.Errorf("b.X = %v, want 9.5", b.X)
	}
}

func TestCollideConverges(t *testing.T) {
	bodies := []*Body{body(0, 0, 5), body(8, 0, 5), body(16, 0, 5), body(8, 3, 5)}
	minDist := func() float64 {
		m := math.Inf(1)
		for i, a := range bodies {
			for _, b := range bodies[i+1:] {
				m = math.Min(m, dist(a, b))
			}
		}
		return m
	}

	start := minDist()
	Collide(bodies, 0.5)
	if after := minDist(); after <= start {
		t.Errorf("min distance %v did not grow from %v", after, start)
	}
	for range 100 {
		Collide(bodies, 0.5)
	}
	if got := minDist(); got < 9.5 {
		t.Errorf("min distance after 100 passes = %v, want about 10", got)
	}
}

func dist(a, b *Body) float64 { return math.Hypot(a.X-b.X, a.Y-b.Y) }

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
