package force

import (
	"github.com/matzehuels/stackflex/pkg/core/layout"
	"github.com/matzehuels/stackflex/pkg/errors"
)

// Engine runs a force simulation over a node/edge set. It implements
// [layout.Engine].
//
// Bodies and links are retained across Data calls by node key and edge key.
// An Engine is not safe for concurrent use.
type Engine struct {
	id      string
	opts    layout.Options
	sim     Simulation
	ready   bool
	hasData bool

	bodies map[string]*Body
	links  map[string]*Link

	nodes   []*layout.Node
	refs    []layout.EdgeRef
	current []*Body
	wired   []*Link

	dispatch     layout.Dispatcher
	relayoutPath bool
	stopped      bool
	ticks        int
}

// New returns an engine. An empty id is replaced by a random one.
func New(id string) *Engine {
	return &Engine{
		id:     layout.NewID(id),
		bodies: map[string]*Body{},
		links:  map[string]*Link{},
	}
}

// LayoutAlgorithm returns "force".
func (e *Engine) LayoutAlgorithm() string { return layout.AlgorithmForce }

// LayoutID returns the engine's identifier.
func (e *Engine) LayoutID() string { return e.id }

// Init applies options and creates the built-in Verlet simulation.
func (e *Engine) Init(opts layout.Options) error {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return err
	}
	e.opts = opts
	if e.sim == nil {
		e.sim = NewVerlet(opts.Width, opts.Height, opts.Seed)
	}
	e.sim.Listen(e.handle)
	e.ready = true
	return nil
}

// WithSimulation replaces the simulation used by subsequent passes. It must
// be called before Init.
func (e *Engine) WithSimulation(s Simulation) *Engine {
	e.sim = s
	return e
}

// Data matches nodes and edges against the retained bodies and links,
// recomputes link lengths and hands both to the simulation. Edge endpoints
// must name nodes in the same call. Constraints are ignored.
func (e *Engine) Data(nodes []*layout.Node, edges []*layout.Edge, _ []layout.Constraint) error {
	if !e.ready {
		if err := e.Init(layout.Options{}); err != nil {
			return err
		}
	}

	keys := make([]string, len(nodes))
	index := make(map[string]*layout.Node, len(nodes))
	for i, n := range nodes {
		if n == nil {
			return errors.New(errors.ErrCodeInvalidInput, "nil node")
		}
		if _, dup := index[n.Key]; dup {
			return errors.New(errors.ErrCodeDuplicateKey, "duplicate node key %q", n.Key)
		}
		index[n.Key] = n
		keys[i] = n.Key
	}
	edgeKeys := make([]string, len(edges))
	seen := make(map[string]bool, len(edges))
	for i, ed := range edges {
		if ed == nil {
			return errors.New(errors.ErrCodeInvalidInput, "nil edge")
		}
		if seen[ed.Key] {
			return errors.New(errors.ErrCodeDuplicateKey, "duplicate edge key %q", ed.Key)
		}
		seen[ed.Key] = true
		for _, end := range []string{ed.Source, ed.Target} {
			if _, ok := index[end]; !ok {
				return errors.New(errors.ErrCodeUnknownNode, "edge %q: unknown endpoint %q", ed.Key, end)
			}
		}
		edgeKeys[i] = ed.Key
	}

	bodies, fresh := regenerate(e.bodies, keys, func() *Body { return &Body{} })
	for i, b := range bodies {
		b.update(nodes[i], fresh[i])
	}
	links, _ := regenerate(e.links, edgeKeys, func() *Link { return &Link{} })
	for i, l := range links {
		ed := edges[i]
		l.Key = ed.Key
		l.Source, l.Target = e.bodies[ed.Source], e.bodies[ed.Target]
		l.preferred = ed.Length
	}
	if err := assignLengths(links, e.opts.LengthStrategy, e.opts.BaseLength); err != nil {
		return err
	}

	e.nodes, e.current, e.wired = nodes, bodies, links
	e.refs = layout.Refs(edges)
	e.sim.SetNodes(bodies)
	e.sim.SetLinks(links)
	e.hasData = true
	return nil
}

// Start runs the simulation for at most Options.Iterations ticks, or until it
// converges or a listener calls Stop. Positions are written to the nodes
// before every tick and end notification.
func (e *Engine) Start() error {
	return e.run(false)
}

// RelayoutPath runs one simulation that also resolves collisions on every
// tick with [RelayoutRelaxation].
func (e *Engine) RelayoutPath() error {
	return e.run(true)
}

func (e *Engine) run(relayout bool) error {
	if !e.hasData {
		return errors.New(errors.ErrCodeEngineNotPrepared, "force %s: Start called before Data", e.id)
	}
	e.relayoutPath = relayout
	defer func() { e.relayoutPath = false }()
	e.stopped = false
	e.ticks = 0

	e.sim.Start()
	for i := 0; i < e.opts.Iterations && !e.stopped; i++ {
		if e.sim.Tick() {
			break
		}
	}
	e.sim.Stop()
	e.opts.Logger.Debug("force pass", "layout", e.id, "nodes", len(e.nodes), "edges", len(e.refs),
		"ticks", e.ticks, "relayoutPath", relayout)
	return nil
}

func (e *Engine) handle(ev layout.Event) {
	switch ev {
	case layout.EventTick:
		e.ticks++
		if e.relayoutPath {
			Collide(e.current, RelayoutRelaxation)
		}
		e.writeBack()
	case layout.EventEnd:
		e.writeBack()
	}
	e.dispatch.Dispatch(ev, e.nodes, e.refs)
}

func (e *Engine) writeBack() {
	for i, b := range e.current {
		e.nodes[i].X, e.nodes[i].Y = b.X, b.Y
	}
}

// Stop ends the running simulation. Called from a tick listener it prevents
// any further ticks in the current pass.
func (e *Engine) Stop() {
	e.stopped = true
	if e.sim != nil {
		e.sim.Stop()
	}
}

// On subscribes h to an event.
func (e *Engine) On(event layout.Event, h layout.Handler) { e.dispatch.On(event, h) }

// PopulateLayoutNode copies the force inputs from src to dst.
func (e *Engine) PopulateLayoutNode(dst, src *layout.Node) {
	dst.Width, dst.Height = src.Width, src.Height
	dst.Radius = src.Radius
	dst.Color = src.Color
	dst.Fixed = src.Fixed
}

// PopulateLayoutEdge copies the preferred edge length from src to dst.
func (e *Engine) PopulateLayoutEdge(dst, src *layout.Edge) {
	dst.Length = src.Length
}

// Bodies returns the simulation objects of the last Data call, in node
// order.
func (e *Engine) Bodies() []*Body { return e.current }

// Links returns the simulation objects of the last Data call, in edge
// order.
func (e *Engine) Links() []*Link { return e.wired }

var _ layout.Engine = (*Engine)(nil)
