package flexbox

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackflex/pkg/core/layout"
	"github.com/matzehuels/stackflex/pkg/core/solver"
	"github.com/matzehuels/stackflex/pkg/core/solver/backends"
	"github.com/matzehuels/stackflex/pkg/core/tree"
	"github.com/matzehuels/stackflex/pkg/errors"
)

// Engine lays out nodes with flexbox according to the hierarchy implied by
// their keys. It implements [layout.Engine].
//
// An Engine is not safe for concurrent use.
type Engine struct {
	id       string
	opts     layout.Options
	solver   solver.Solver
	ready    bool
	hasData  bool
	nodes    []*layout.Node
	edges    []*layout.Edge
	dispatch layout.Dispatcher
	last     *tree.Node
}

// New returns an engine. An empty id is replaced by a random one.
func New(id string) *Engine {
	return &Engine{id: layout.NewID(id)}
}

// LayoutAlgorithm returns "flexbox".
func (e *Engine) LayoutAlgorithm() string { return layout.AlgorithmFlexbox }

// LayoutID returns the engine's identifier.
func (e *Engine) LayoutID() string { return e.id }

// Init applies options and selects the solver backend. Attribute names in
// opts.Defaults are checked against the backend.
func (e *Engine) Init(opts layout.Options) error {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return err
	}
	s, err := backends.New(opts.Algo)
	if err != nil {
		return err
	}
	if err := checkAttrs(s, opts.Defaults); err != nil {
		return err
	}
	e.opts, e.solver, e.ready = opts, s, true
	return nil
}

// Data stores the node set for the next pass. Attribute names are checked
// against the solver and the key hierarchy is built once so that address
// collisions surface here rather than in Start. Constraints are ignored.
func (e *Engine) Data(nodes []*layout.Node, edges []*layout.Edge, _ []layout.Constraint) error {
	if !e.ready {
		if err := e.Init(layout.Options{}); err != nil {
			return err
		}
	}
	for _, n := range nodes {
		if n == nil {
			return errors.New(errors.ErrCodeInvalidInput, "nil node")
		}
		if err := checkAttrs(e.solver, n.Attrs); err != nil {
			return fmt.Errorf("node %q: %w", n.Key, err)
		}
	}
	if _, err := tree.Build(nodes, e.opts.Codec); err != nil {
		return err
	}
	e.nodes, e.edges, e.hasData = nodes, edges, true
	return nil
}

func checkAttrs(s solver.Solver, attrs layout.Attrs) error {
	for _, name := range attrs.Names() {
		if IsInternal(name) {
			continue
		}
		if err := s.Supports(name); err != nil {
			return err
		}
	}
	return nil
}

// Start runs one layout pass: build the tree, synthesize interior slots,
// solve, and write center coordinates onto the nodes. Listeners receive
// "start" before the pass and "end" after a successful one. On failure no
// "end" is dispatched and no node position changes.
func (e *Engine) Start() error {
	if !e.hasData {
		return errors.New(errors.ErrCodeEngineNotPrepared, "flexbox %s: Start called before Data", e.id)
	}
	refs := layout.Refs(e.edges)
	e.dispatch.Dispatch(layout.EventStart, e.nodes, refs)

	root, err := tree.Build(e.nodes, e.opts.Codec)
	if err != nil {
		return err
	}
	placeholders := tree.EnsureInteriorNodes(root)

	a := &adapter{solver: e.solver, codec: e.opts.Codec, fallback: e.opts.Comparator}
	box, err := a.solve(root, e.opts.Defaults, e.opts.Width, e.opts.Height)
	if err != nil {
		e.opts.Logger.Debug("flexbox pass failed", "layout", e.id, "err", err)
		return err
	}
	if e.opts.Logger.GetLevel() <= log.DebugLevel {
		e.opts.Logger.Debug("solved\n"+solver.Dump(box), "layout", e.id)
	}

	apply(point{}, root)
	e.last = root
	e.opts.Logger.Debug("flexbox pass", "layout", e.id, "nodes", len(e.nodes), "placeholders", placeholders,
		"solver", e.solver.Name())

	e.dispatch.Dispatch(layout.EventEnd, e.nodes, refs)
	return nil
}

// Stop is a no-op: a flexbox pass runs to completion inside Start and
// nothing is scheduled afterwards.
func (e *Engine) Stop() {}

// On subscribes h to an event.
func (e *Engine) On(event layout.Event, h layout.Handler) { e.dispatch.On(event, h) }

// PopulateLayoutNode copies "sort", "order" and every supported solver
// attribute from src to dst.
func (e *Engine) PopulateLayoutNode(dst, src *layout.Node) {
	if dst.Attrs == nil {
		dst.Attrs = layout.Attrs{}
	}
	copyAttr := func(name string) {
		if v, ok := src.Attrs[name]; ok {
			dst.Attrs[name] = v
		}
	}
	copyAttr("sort")
	copyAttr("order")
	for _, name := range solver.SupportedAttributes {
		copyAttr(name)
	}
}

// PopulateLayoutEdge is a no-op; edges do not affect flexbox layout.
func (e *Engine) PopulateLayoutEdge(dst, src *layout.Edge) {}

// Tree returns the hierarchy from the last successful pass, or nil.
func (e *Engine) Tree() *tree.Node { return e.last }

// Solver returns the backend selected by Init, or nil before Init.
func (e *Engine) Solver() solver.Solver { return e.solver }

var _ layout.Engine = (*Engine)(nil)
