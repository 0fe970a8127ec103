// Package csslayout is the "css-layout" solver backend.
//
// Each node carries a plain style object, the way css-layout consumers build
// a tree of {style, children} records. Attribute names are checked against
// [solver.SupportedAttributes] when set; values are interpreted when
// [Solver.Compute] converts the tree to github.com/kjk/flex nodes through
// the same registry as the yoga-layout backend, and the computed layout is
// copied back onto every node.
package csslayout

import (
	"fmt"
	"maps"
	"slices"

	"github.com/kjk/flex"

	"github.com/matzehuels/stackflex/pkg/core/solver"
	"github.com/matzehuels/stackflex/pkg/core/solver/yoga"
)

// Name identifies this backend.
const Name = "css-layout"

// Solver is the css-layout backend. The zero value is ready to use.
type Solver struct{}

// New returns a css-layout solver.
func New() *Solver { return &Solver{} }

// Name returns "css-layout".
func (*Solver) Name() string { return Name }

// NewNode creates a node with an empty style.
func (*Solver) NewNode(name string) solver.Node {
	return &Node{name: name, Style: map[string]any{}}
}

// Supports checks attr against the shared whitelist.
func (*Solver) Supports(attr string) error {
	return solver.CheckSupported(attr)
}

// Compute converts the tree, solves it, and stores each node's layout.
func (*Solver) Compute(root solver.Node) error {
	n, ok := root.(*Node)
	if !ok {
		return fmt.Errorf("css-layout: cannot compute %T", root)
	}
	nodes := make(map[*Node]*flex.Node)
	fn, err := convert(n, nodes)
	if err != nil {
		return err
	}
	if err := yoga.Calculate(fn); err != nil {
		return err
	}
	for node, f := range nodes {
		node.layout = yoga.Box(f)
	}
	return nil
}

func convert(n *Node, nodes map[*Node]*flex.Node) (*flex.Node, error) {
	fn := flex.NewNode()
	// per-edge values win over their shorthand regardless of order
	for _, attr := range slices.Sorted(maps.Keys(n.Style)) {
		if err := yoga.Apply(fn, attr, n.Style[attr]); err != nil {
			return nil, fmt.Errorf("%s: %w", n.label(), err)
		}
	}
	nodes[n] = fn
	for i, c := range n.children {
		child, err := convert(c, nodes)
		if err != nil {
			return nil, err
		}
		fn.InsertChild(child, i)
	}
	return fn, nil
}

// Node is a style object with children and, after Compute, a layout.
type Node struct {
	name     string
	Style    map[string]any
	children []*Node
	layout   solver.Box
}

// Name returns the debug label.
func (n *Node) Name() string { return n.name }

func (n *Node) label() string {
	if n.name == "" {
		return "(root)"
	}
	return n.name
}

// Set stores a whitelisted attribute in the style object.
func (n *Node) Set(attr string, value any) error {
	if err := solver.CheckSupported(attr); err != nil {
		return err
	}
	n.Style[attr] = value
	return nil
}

// InsertChild inserts another css-layout node at index.
func (n *Node) InsertChild(child solver.Node, index int) error {
	c, ok := child.(*Node)
	if !ok {
		return fmt.Errorf("css-layout: cannot insert %T", child)
	}
	if index < 0 || index > len(n.children) {
		return fmt.Errorf("css-layout: index %d out of range [0,%d]", index, len(n.children))
	}
	n.children = slices.Insert(n.children, index, c)
	return nil
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return len(n.children) }

// Children returns the inserted children in order.
func (n *Node) Children() []solver.Node {
	out := make([]solver.Node, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

// Layout returns the geometry computed by the last Compute.
func (n *Node) Layout() solver.Box { return n.layout }

var (
	_ solver.Solver = (*Solver)(nil)
	_ solver.Node   = (*Node)(nil)
)
