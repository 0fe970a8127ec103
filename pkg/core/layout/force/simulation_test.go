package force

import (
	"math"
	"testing"

	"github.com/matzehuels/stackflex/pkg/core/layout"
)

func TestVerletCoolingSchedule(t *testing.T) {
	v := NewVerlet(100, 100, 1)
	var ticks, ends int
	v.Listen(func(ev layout.Event) {
		switch ev {
		case layout.EventTick:
			ticks++
		case layout.EventEnd:
			ends++
		}
	})
	v.Start()
	calls := 0
	for !v.Tick() {
		calls++
	}
	v.Stop()

	if ticks != 298 || calls != 298 {
		t.Errorf("ticks = %d, calls = %d, want 298", ticks, calls)
	}
	if ends != 1 {
		t.Errorf("end emitted %d times, want 1", ends)
	}
	if v.Alpha() != 0 {
		t.Errorf("Alpha() = %v after convergence", v.Alpha())
	}
}

func TestVerletScatterIsSeeded(t *testing.T) {
	place := func(seed uint64) *Body {
		b := &Body{}
		v := NewVerlet(100, 50, seed)
		v.SetNodes([]*Body{b})
		v.Start()
		return b
	}
	a, b, c := place(7), place(7), place(8)
	if a.X != b.X || a.Y != b.Y {
		t.Error("same seed placed bodies differently")
	}
	if a.X == c.X && a.Y == c.Y {
		t.Error("different seeds placed bodies identically")
	}
	if a.X < 0 || a.X > 100 || a.Y < 0 || a.Y > 50 || !a.Placed {
		t.Errorf("body placed at (%v, %v) outside viewport", a.X, a.Y)
	}
}

func TestVerletGravity(t *testing.T) {
	b := &Body{Placed: true}
	v := NewVerlet(200, 100, 1)
	v.SetNodes([]*Body{b})
	v.Start()
	for range 50 {
		v.Tick()
	}
	if d := math.Hypot(b.X-100, b.Y-50); d >= math.Hypot(100, 50) {
		t.Errorf("body did not move towards center, distance %v", d)
	}
}

func TestVerletRepulsion(t *testing.T) {
	a := &Body{X: 99, Y: 50, PX: 99, PY: 50, Placed: true}
	b := &Body{X: 101, Y: 50, PX: 101, PY: 50, Placed: true}
	v := NewVerlet(200, 100, 1)
	v.Gravity = 0
	v.SetNodes([]*Body{a, b})
	v.Start()
	v.Tick()
	if b.X-a.X <= 2 {
		t.Errorf("bodies did not repel: %v, %v", a.X, b.X)
	}
}

func TestAssignLengths(t *testing.T) {
	a, b, c := &Body{Key: "a"}, &Body{Key: "b"}, &Body{Key: "c"}
	path := func() []*Link {
		return []*Link{{Source: a, Target: b, preferred: 50}, {Source: b, Target: c}}
	}
	triangle := func() []*Link {
		return []*Link{{Source: a, Target: b}, {Source: b, Target: c}, {Source: c, Target: a}}
	}

	tests := []struct {
		name     string
		links    []*Link
		strategy string
		want     []float64
	}{
		{"none", path(), layout.LengthNone, []float64{30, 30}},
		{"individual", path(), layout.LengthIndividual, []float64{50, 30}},
		{"symmetric path", path(), layout.LengthSymmetric, []float64{30 * (1 + math.Sqrt(3)), 30 * (1 + math.Sqrt(3))}},
		{"symmetric triangle", triangle(), layout.LengthSymmetric, []float64{30 * (1 + math.Sqrt(2)), 30 * (1 + math.Sqrt(2)), 30 * (1 + math.Sqrt(2))}},
		{"jaccard path", path(), layout.LengthJaccard, []float64{30, 30}},
		{"jaccard triangle", triangle(), layout.LengthJaccard, []float64{40, 40, 40}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := assignLengths(tt.links, tt.strategy, 30); err != nil {
				t.Fatal(err)
			}
			for i, l := range tt.links {
				if math.Abs(l.Length-tt.want[i]) > 1e-9 {
					t.Errorf("link %d length = %v, want %v", i, l.Length, tt.want[i])
				}
			}
		})
	}

	if err := assignLengths(path(), "bogus", 30); err == nil {
		t.Error("unknown strategy accepted")
	}
}
