package force

import (
	"math"
	"math/rand/v2"

	"github.com/matzehuels/stackflex/pkg/core/layout"
)

// Listener receives simulation lifecycle events: start, tick and end.
type Listener func(event layout.Event)

// Simulation advances body positions one step at a time. The engine drives
// it synchronously and runs its own per-tick work from the listener.
type Simulation interface {
	SetNodes(bodies []*Body)
	SetLinks(links []*Link)
	// Start resets the cooling schedule and emits start.
	Start()
	// Tick advances one step and reports whether the simulation has
	// converged. The end event is emitted once on convergence.
	Tick() bool
	// Stop emits end if the simulation is still running.
	Stop()
	Listen(l Listener)
}

// Verlet tuning, matching the classic d3 force layout.
const (
	DefaultGravity      = 1.0
	DefaultCharge       = -300.0
	DefaultFriction     = 0.9
	DefaultLinkStrength = 1.0

	startAlpha = 0.1
	alphaDecay = 0.99
	minAlpha   = 0.005
)

// Verlet is a position-Verlet force simulation with link springs, gravity
// towards the viewport center and pairwise charge repulsion.
type Verlet struct {
	Gravity      float64
	Charge       float64
	Friction     float64
	LinkStrength float64

	width, height float64
	rng           *rand.Rand
	nodes         []*Body
	links         []*Link
	alpha         float64
	running       bool
	listener      Listener
}

// NewVerlet returns a simulation for a width x height viewport. Unplaced
// bodies are scattered with a generator seeded from seed, so runs over the
// same input are reproducible.
func NewVerlet(width, height float64, seed uint64) *Verlet {
	return &Verlet{
		Gravity:      DefaultGravity,
		Charge:       DefaultCharge,
		Friction:     DefaultFriction,
		LinkStrength: DefaultLinkStrength,
		width:        width,
		height:       height,
		rng:          rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// SetNodes replaces the simulated bodies. Bodies are updated in place.
func (v *Verlet) SetNodes(bodies []*Body) { v.nodes = bodies }

// SetLinks replaces the springs. Both ends must be bodies given to SetNodes.
func (v *Verlet) SetLinks(links []*Link) { v.links = links }

// Listen registers the single listener for start, tick and end events,
// replacing any previous one.
func (v *Verlet) Listen(l Listener) { v.listener = l }

// Alpha returns the current cooling parameter; zero once stopped.
func (v *Verlet) Alpha() float64 { return v.alpha }

func (v *Verlet) emit(e layout.Event) {
	if v.listener != nil {
		v.listener(e)
	}
}

// Start weighs bodies by their link count, scatters unplaced bodies across
// the viewport, resets alpha and emits start. Placed bodies keep their
// position, so a restart continues from the current state.
func (v *Verlet) Start() {
	for _, b := range v.nodes {
		b.weight = 0
	}
	for _, l := range v.links {
		l.Source.weight++
		l.Target.weight++
	}
	for _, b := range v.nodes {
		if !b.Placed {
			b.X = v.rng.Float64() * v.width
			b.Y = v.rng.Float64() * v.height
			b.PX, b.PY = b.X, b.Y
			b.Placed = true
		}
	}
	v.alpha = startAlpha
	v.running = true
	v.emit(layout.EventStart)
}

// Tick advances one step and emits tick. Once alpha cools below the
// threshold it emits end instead and reports true; it also reports true
// when the simulation is not running.
func (v *Verlet) Tick() bool {
	if !v.running {
		return true
	}
	if v.alpha *= alphaDecay; v.alpha < minAlpha {
		v.alpha = 0
		v.running = false
		v.emit(layout.EventEnd)
		return true
	}

	v.springs()
	v.gravity()
	v.repulse()
	v.integrate()

	v.emit(layout.EventTick)
	return false
}

// Stop ends a running simulation and emits end. It is a no-op otherwise.
func (v *Verlet) Stop() {
	if !v.running {
		return
	}
	v.alpha = 0
	v.running = false
	v.emit(layout.EventEnd)
}

func (v *Verlet) springs() {
	for _, l := range v.links {
		s, t := l.Source, l.Target
		x, y := t.X-s.X, t.Y-s.Y
		d := math.Hypot(x, y)
		if d == 0 {
			continue
		}
		k := v.alpha * v.LinkStrength * (d - l.Length) / d
		x, y = x*k, y*k
		w := s.weight / (s.weight + t.weight)
		t.X -= x * w
		t.Y -= y * w
		s.X += x * (1 - w)
		s.Y += y * (1 - w)
	}
}

func (v *Verlet) gravity() {
	k := v.alpha * v.Gravity
	if k == 0 {
		return
	}
	cx, cy := v.width/2, v.height/2
	for _, b := range v.nodes {
		b.X += (cx - b.X) * k
		b.Y += (cy - b.Y) * k
	}
}

// repulse shifts previous positions so the next integration step carries
// each body away from every other. It is quadratic in the body count.
func (v *Verlet) repulse() {
	if v.Charge == 0 {
		return
	}
	for _, a := range v.nodes {
		if a.Fixed {
			continue
		}
		for _, b := range v.nodes {
			if a == b {
				continue
			}
			dx, dy := b.X-a.X, b.Y-a.Y
			dn := dx*dx + dy*dy
			if dn == 0 {
				continue
			}
			k := v.alpha * v.Charge / dn
			a.PX -= dx * k
			a.PY -= dy * k
		}
	}
}

func (v *Verlet) integrate() {
	for _, b := range v.nodes {
		if b.Fixed {
			b.X, b.Y = b.PX, b.PY
			continue
		}
		px, py := b.PX, b.PY
		b.PX, b.PY = b.X, b.Y
		b.X -= (px - b.X) * v.Friction
		b.Y -= (py - b.Y) * v.Friction
	}
}

var _ Simulation = (*Verlet)(nil)
