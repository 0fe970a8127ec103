// Package yoga is the "yoga-layout" solver backend, built on github.com/kjk/flex,
// a Go port of Facebook's Yoga engine.
//
// Attributes are applied immediately through an explicit registry that maps
// each attribute name to a typed setter. Enumerated attributes go through
// constant tables. An unregistered name, an unknown keyword or a bad number
// fails on [Node.Set], so configuration errors surface before any solve.
//
// [Apply] and [Calculate] expose the same registry and solve step to other
// backends, so every backend interprets values identically.
package yoga

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/kjk/flex"

	"github.com/matzehuels/stackflex/pkg/core/layout"
	"github.com/matzehuels/stackflex/pkg/core/solver"
	"github.com/matzehuels/stackflex/pkg/errors"
)

// Name identifies this backend.
const Name = "yoga-layout"

// Constant tables for enumerated attributes.
var (
	FlexDirections = map[string]flex.FlexDirection{
		"column":         flex.FlexDirectionColumn,
		"column-reverse": flex.FlexDirectionColumnReverse,
		"row":            flex.FlexDirectionRow,
		"row-reverse":    flex.FlexDirectionRowReverse,
	}
	JustifyContents = map[string]flex.Justify{
		"flex-start":    flex.JustifyFlexStart,
		"center":        flex.JustifyCenter,
		"flex-end":      flex.JustifyFlexEnd,
		"space-between": flex.JustifySpaceBetween,
		"space-around":  flex.JustifySpaceAround,
	}
	Aligns = map[string]flex.Align{
		"auto":       flex.AlignAuto,
		"flex-start": flex.AlignFlexStart,
		"center":     flex.AlignCenter,
		"flex-end":   flex.AlignFlexEnd,
		"stretch":    flex.AlignStretch,
	}
	FlexWraps = map[string]flex.Wrap{
		"nowrap": flex.WrapNoWrap,
		"wrap":   flex.WrapWrap,
	}
	PositionTypes = map[string]flex.PositionType{
		"relative": flex.PositionTypeRelative,
		"absolute": flex.PositionTypeAbsolute,
	}
)

type setter func(n *flex.Node, value any) error

var setters = map[string]setter{
	"width":     size((*flex.Node).StyleSetWidth),
	"height":    size((*flex.Node).StyleSetHeight),
	"minWidth":  size((*flex.Node).StyleSetMinWidth),
	"minHeight": size((*flex.Node).StyleSetMinHeight),
	"maxWidth":  size((*flex.Node).StyleSetMaxWidth),
	"maxHeight": size((*flex.Node).StyleSetMaxHeight),

	"left":   offset((*flex.Node).StyleSetPosition, flex.EdgeLeft),
	"right":  offset((*flex.Node).StyleSetPosition, flex.EdgeRight),
	"top":    offset((*flex.Node).StyleSetPosition, flex.EdgeTop),
	"bottom": offset((*flex.Node).StyleSetPosition, flex.EdgeBottom),

	"margin":       offset((*flex.Node).StyleSetMargin, flex.EdgeAll),
	"marginLeft":   offset((*flex.Node).StyleSetMargin, flex.EdgeLeft),
	"marginRight":  offset((*flex.Node).StyleSetMargin, flex.EdgeRight),
	"marginTop":    offset((*flex.Node).StyleSetMargin, flex.EdgeTop),
	"marginBottom": offset((*flex.Node).StyleSetMargin, flex.EdgeBottom),

	"padding":       inset((*flex.Node).StyleSetPadding, flex.EdgeAll),
	"paddingLeft":   inset((*flex.Node).StyleSetPadding, flex.EdgeLeft),
	"paddingRight":  inset((*flex.Node).StyleSetPadding, flex.EdgeRight),
	"paddingTop":    inset((*flex.Node).StyleSetPadding, flex.EdgeTop),
	"paddingBottom": inset((*flex.Node).StyleSetPadding, flex.EdgeBottom),

	"borderWidth":       inset((*flex.Node).StyleSetBorder, flex.EdgeAll),
	"borderLeftWidth":   inset((*flex.Node).StyleSetBorder, flex.EdgeLeft),
	"borderRightWidth":  inset((*flex.Node).StyleSetBorder, flex.EdgeRight),
	"borderTopWidth":    inset((*flex.Node).StyleSetBorder, flex.EdgeTop),
	"borderBottomWidth": inset((*flex.Node).StyleSetBorder, flex.EdgeBottom),

	"flexDirection":  enum(FlexDirections, (*flex.Node).StyleSetFlexDirection),
	"justifyContent": enum(JustifyContents, (*flex.Node).StyleSetJustifyContent),
	"alignItems":     enum(Aligns, (*flex.Node).StyleSetAlignItems),
	"alignSelf":      enum(Aligns, (*flex.Node).StyleSetAlignSelf),
	"flex":           size((*flex.Node).StyleSetFlex),
	"flexWrap":       enum(FlexWraps, (*flex.Node).StyleSetFlexWrap),
	"position":       enum(PositionTypes, (*flex.Node).StyleSetPositionType),
}

// number converts value to a finite float32. The keyword "auto" is the only
// way to reset an attribute to undefined.
func number(value any, signed bool) (float32, error) {
	if value == "auto" {
		return flex.Undefined, nil
	}
	f, err := layout.ToFloat(value)
	if err != nil {
		return 0, err
	}
	if math.Abs(f) > math.MaxFloat32 {
		return 0, errors.New(errors.ErrCodeInvalidDimensions, "%g is out of range", f)
	}
	if !signed && f < 0 {
		return 0, errors.New(errors.ErrCodeInvalidDimensions, "negative value %g", f)
	}
	return float32(f), nil
}

// size sets a non-negative scalar.
func size(set func(*flex.Node, float32)) setter {
	return func(n *flex.Node, value any) error {
		v, err := number(value, false)
		if err != nil {
			return err
		}
		set(n, v)
		return nil
	}
}

// offset sets a signed per-edge value (margins and positions).
func offset(set func(*flex.Node, flex.Edge, float32), e flex.Edge) setter {
	return edge(set, e, true)
}

// inset sets a non-negative per-edge value (padding and borders).
func inset(set func(*flex.Node, flex.Edge, float32), e flex.Edge) setter {
	return edge(set, e, false)
}

func edge(set func(*flex.Node, flex.Edge, float32), e flex.Edge, signed bool) setter {
	return func(n *flex.Node, value any) error {
		v, err := number(value, signed)
		if err != nil {
			return err
		}
		set(n, e, v)
		return nil
	}
}

func enum[T any](table map[string]T, set func(*flex.Node, T)) setter {
	return func(n *flex.Node, value any) error {
		name, err := layout.ToString(value)
		if err != nil {
			return err
		}
		v, ok := table[name]
		if !ok {
			return fmt.Errorf("unknown keyword %q (want one of %v)", name, slices.Sorted(maps.Keys(table)))
		}
		set(n, v)
		return nil
	}
}

// Attributes returns the registered attribute names, sorted.
func Attributes() []string {
	return slices.Sorted(maps.Keys(setters))
}

// Apply sets attr on n through the registry.
func Apply(n *flex.Node, attr string, value any) error {
	set, ok := setters[attr]
	if !ok {
		return solver.UnknownAttribute(attr)
	}
	if err := set(n, value); err != nil {
		return solver.InvalidValue(attr, value, err)
	}
	return nil
}

// Calculate lays out the tree rooted at root. The root's own width and
// height bound the available space. Assertion panics inside the engine are
// returned as SOLVER_FAILED.
func Calculate(root *flex.Node) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.ErrCodeSolverFailed, "yoga: %v", r)
		}
	}()
	flex.CalculateLayout(root, flex.Undefined, flex.Undefined, flex.DirectionLTR)
	return nil
}

// Box reads the computed layout of n.
func Box(n *flex.Node) solver.Box {
	return solver.Box{
		Left:   float64(n.LayoutGetLeft()),
		Top:    float64(n.LayoutGetTop()),
		Width:  float64(n.LayoutGetWidth()),
		Height: float64(n.LayoutGetHeight()),
	}
}

// =============================================================================
// Solver
// =============================================================================

// Solver is the yoga-layout backend. The zero value is ready to use.
type Solver struct{}

// New returns a yoga-layout solver.
func New() *Solver { return &Solver{} }

// Name returns "yoga-layout".
func (*Solver) Name() string { return Name }

// NewNode creates a node with default style.
func (*Solver) NewNode(name string) solver.Node {
	return &Node{name: name, node: flex.NewNode()}
}

// Supports reports whether attr has a registered setter.
func (*Solver) Supports(attr string) error {
	if _, ok := setters[attr]; !ok {
		return solver.UnknownAttribute(attr)
	}
	return nil
}

// Compute solves the tree rooted at root.
func (*Solver) Compute(root solver.Node) error {
	n, ok := root.(*Node)
	if !ok {
		return fmt.Errorf("yoga: cannot compute %T", root)
	}
	return Calculate(n.node)
}

// Node wraps a flex node whose style is mutated by each Set.
type Node struct {
	name     string
	node     *flex.Node
	parent   *Node
	children []solver.Node
}

// Name returns the debug label.
func (n *Node) Name() string { return n.name }

// Set dispatches attr to its registered setter.
func (n *Node) Set(attr string, value any) error {
	return Apply(n.node, attr, value)
}

// InsertChild inserts another yoga node at index. A node has at most one
// parent and may not become its own ancestor.
func (n *Node) InsertChild(child solver.Node, index int) error {
	c, ok := child.(*Node)
	if !ok {
		return fmt.Errorf("yoga: cannot insert %T", child)
	}
	if index < 0 || index > len(n.children) {
		return fmt.Errorf("yoga: insert %q at %d: index out of range [0,%d]", c.name, index, len(n.children))
	}
	if c.parent != nil {
		return fmt.Errorf("yoga: %q already has parent %q", c.name, c.parent.name)
	}
	for p := n; p != nil; p = p.parent {
		if p == c {
			return fmt.Errorf("yoga: inserting %q under %q would create a cycle", c.name, n.name)
		}
	}
	n.node.InsertChild(c.node, index)
	c.parent = n
	n.children = slices.Insert(n.children, index, child)
	return nil
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return len(n.children) }

// Children returns the inserted children in order.
func (n *Node) Children() []solver.Node { return n.children }

// Layout returns the computed left/top/width/height.
func (n *Node) Layout() solver.Box { return Box(n.node) }

var (
	_ solver.Solver = (*Solver)(nil)
	_ solver.Node   = (*Node)(nil)
)
