package force

import (
	"math"
	"testing"

	"github.com/matzehuels/stackflex/pkg/core/layout"
	"github.com/matzehuels/stackflex/pkg/errors"
)

// stepSim emits events like a real simulation but never moves bodies, so
// engine behaviour can be observed in isolation.
type stepSim struct {
	listener Listener
	running  bool
	nodes    []*Body
	links    []*Link
}

func (s *stepSim) SetNodes(b []*Body) { s.nodes = b }
func (s *stepSim) SetLinks(l []*Link) { s.links = l }
func (s *stepSim) Listen(l Listener)  { s.listener = l }
func (s *stepSim) Start()             { s.running = true; s.listener(layout.EventStart) }
func (s *stepSim) Tick() bool {
	if !s.running {
		return true
	}
	s.listener(layout.EventTick)
	return false
}

func (s *stepSim) Stop() {
	if s.running {
		s.running = false
		s.listener(layout.EventEnd)
	}
}

type recorder struct{ events []layout.Event }

func (r *recorder) attach(e *Engine) {
	for _, ev := range []layout.Event{layout.EventStart, layout.EventTick, layout.EventEnd} {
		e.On(ev, func([]*layout.Node, []layout.EdgeRef) { r.events = append(r.events, ev) })
	}
}

func (r *recorder) count(ev layout.Event) int {
	n := 0
	for _, e := range r.events {
		if e == ev {
			n++
		}
	}
	return n
}

func pair() []*layout.Node {
	return []*layout.Node{
		{Key: "a", X: 1, Y: 1, Radius: 5},
		{Key: "b", X: 9, Y: 1, Radius: 5},
	}
}

func TestEngineIterationCap(t *testing.T) {
	e := New("").WithSimulation(&stepSim{})
	if err := e.Init(layout.Options{Iterations: 10}); err != nil {
		t.Fatal(err)
	}
	var r recorder
	r.attach(e)
	if err := e.Data(pair(), nil, nil); err != nil {
		t.Fatal(err)
	}
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	if r.count(layout.EventTick) != 10 || r.count(layout.EventEnd) != 1 || r.events[0] != layout.EventStart {
		t.Errorf("events = %v", r.events)
	}
}

func TestEngineStopFromListener(t *testing.T) {
	e := New("").WithSimulation(&stepSim{})
	var r recorder
	r.attach(e)
	e.On(layout.EventTick, func([]*layout.Node, []layout.EdgeRef) {
		if r.count(layout.EventTick) == 3 {
			e.Stop()
		}
	})
	if err := e.Data(pair(), nil, nil); err != nil {
		t.Fatal(err)
	}
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	if got := r.count(layout.EventTick); got != 3 {
		t.Errorf("ticks = %d, want 3", got)
	}
	if got := r.count(layout.EventEnd); got != 1 {
		t.Errorf("end events = %d, want 1", got)
	}
}

func TestEngineRelayoutPath(t *testing.T) {
	e := New("").WithSimulation(&stepSim{})
	if err := e.Init(layout.Options{Iterations: 1}); err != nil {
		t.Fatal(err)
	}
	nodes := pair()
	if err := e.Data(nodes, nil, nil); err != nil {
		t.Fatal(err)
	}

	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	if nodes[0].X != 1 || nodes[1].X != 9 {
		t.Fatalf("plain pass moved bodies: %v, %v", nodes[0].X, nodes[1].X)
	}

	if err := e.RelayoutPath(); err != nil {
		t.Fatal(err)
	}
	if !near(nodes[0].X, 0) || !near(nodes[1].X, 10) {
		t.Errorf("after relayout x = %v, %v, want 0, 10", nodes[0].X, nodes[1].X)
	}

	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	if !near(nodes[0].X, 0) || !near(nodes[1].X, 10) {
		t.Error("collision pass ran outside RelayoutPath")
	}
}

func TestEngineRetainsBodies(t *testing.T) {
	e := New("").WithSimulation(&stepSim{})
	if err := e.Data(pair(), nil, nil); err != nil {
		t.Fatal(err)
	}
	a := e.Bodies()[0]
	a.X = 42

	nodes := []*layout.Node{{Key: "c"}, {Key: "a", X: 7}}
	if err := e.Data(nodes, nil, nil); err != nil {
		t.Fatal(err)
	}
	bodies := e.Bodies()
	if bodies[1] != a {
		t.Error("body for retained key was recreated")
	}
	if a.X != 42 {
		t.Errorf("retained body position reset to %v", a.X)
	}
	if _, ok := e.bodies["b"]; ok {
		t.Error("body for removed key still retained")
	}
	if bodies[0].Placed {
		t.Error("new body without position should be unplaced")
	}
}

func TestEngineRetainsLinks(t *testing.T) {
	e := New("").WithSimulation(&stepSim{})
	nodes := pair()
	edges := []*layout.Edge{{Key: "ab", Source: "a", Target: "b"}}
	if err := e.Data(nodes, edges, nil); err != nil {
		t.Fatal(err)
	}
	l := e.Links()[0]
	if err := e.Data(nodes, []*layout.Edge{{Key: "ab", Source: "b", Target: "a"}}, nil); err != nil {
		t.Fatal(err)
	}
	if e.Links()[0] != l || l.Source.Key != "b" {
		t.Errorf("link not retained or not rewired: %+v", e.Links()[0])
	}
}

func TestEngineDataErrors(t *testing.T) {
	tests := []struct {
		name  string
		nodes []*layout.Node
		edges []*layout.Edge
		code  errors.Code
	}{
		{"unknown endpoint", pair(), []*layout.Edge{{Key: "e", Source: "a", Target: "zz"}}, errors.ErrCodeUnknownNode},
		{"duplicate node", []*layout.Node{{Key: "a"}, {Key: "a"}}, nil, errors.ErrCodeDuplicateKey},
		{"duplicate edge", pair(), []*layout.Edge{{Key: "e", Source: "a", Target: "b"}, {Key: "e", Source: "b", Target: "a"}}, errors.ErrCodeDuplicateKey},
		{"nil node", []*layout.Node{nil}, nil, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New("").Data(tt.nodes, tt.edges, nil)
			if !errors.Is(err, tt.code) {
				t.Errorf("Data() = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestEngineStartBeforeData(t *testing.T) {
	if err := New("").Start(); !errors.Is(err, errors.ErrCodeEngineNotPrepared) {
		t.Errorf("Start() = %v, want ENGINE_NOT_PREPARED", err)
	}
}

func TestEngineVerletDeterministic(t *testing.T) {
	layoutOnce := func() []*layout.Node {
		nodes := []*layout.Node{{Key: "a"}, {Key: "b"}, {Key: "c"}, {Key: "d"}}
		edges := []*layout.Edge{
			{Key: "ab", Source: "a", Target: "b"},
			{Key: "bc", Source: "b", Target: "c"},
			{Key: "cd", Source: "c", Target: "d"},
		}
		e := New("")
		if err := e.Init(layout.Options{Width: 400, Height: 300}); err != nil {
			t.Fatal(err)
		}
		if err := e.Data(nodes, edges, nil); err != nil {
			t.Fatal(err)
		}
		if err := e.Start(); err != nil {
			t.Fatal(err)
		}
		return nodes
	}

	first, second := layoutOnce(), layoutOnce()
	for i := range first {
		if first[i].X != second[i].X || first[i].Y != second[i].Y {
			t.Errorf("%s: (%v, %v) vs (%v, %v)", first[i].Key, first[i].X, first[i].Y, second[i].X, second[i].Y)
		}
		if math.IsNaN(first[i].X) || math.IsNaN(first[i].Y) {
			t.Errorf("%s has NaN position", first[i].Key)
		}
	}
}

func TestEngineFixedNode(t *testing.T) {
	nodes := []*layout.Node{{Key: "pin", X: 10, Y: 20, Fixed: true}, {Key: "free"}}
	e := New("")
	if err := e.Data(nodes, []*layout.Edge{{Key: "e", Source: "pin", Target: "free"}}, nil); err != nil {
		t.Fatal(err)
	}
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	if nodes[0].X != 10 || nodes[0].Y != 20 {
		t.Errorf("fixed node moved to (%v, %v)", nodes[0].X, nodes[0].Y)
	}
}

func TestPopulate(t *testing.T) {
	e := New("")
	src := &layout.Node{Key: "a", Width: 3, Height: 4, Radius: 2, Color: "red", Fixed: true}
	dst := &layout.Node{Key: "a"}
	e.PopulateLayoutNode(dst, src)
	if dst.Width != 3 || dst.Height != 4 || dst.Radius != 2 || dst.Color != "red" || !dst.Fixed {
		t.Errorf("PopulateLayoutNode() = %+v", dst)
	}
	de := &layout.Edge{}
	e.PopulateLayoutEdge(de, &layout.Edge{Length: 12})
	if de.Length != 12 {
		t.Errorf("Length = %v, want 12", de.Length)
	}
	if e.LayoutAlgorithm() != layout.AlgorithmForce {
		t.Errorf("LayoutAlgorithm() = %q", e.LayoutAlgorithm())
	}
}
