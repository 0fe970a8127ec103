// Package solver defines the box-layout solver capability consumed by the
// flexbox layout engine.
//
// A [Solver] builds a tree of solver nodes, accepts attributes by name, and
// computes left/top/width/height for every node in one pass. Backends live
// in subpackages:
//
//   - [github.com/matzehuels/stackflex/pkg/core/solver/csslayout]: each node
//     carries a plain style map that is interpreted at compute time.
//   - [github.com/matzehuels/stackflex/pkg/core/solver/yoga]: attributes go
//     through an explicit registry of typed setters and fail on Set.
//
// Both solve with github.com/kjk/flex, a Go port of Yoga, and share one
// value interpretation: "auto" unsets a size, and negative or non-finite
// sizes fail with INVALID_DIMENSIONS.
//
// Use [github.com/matzehuels/stackflex/pkg/core/solver/backends] to look up a
// backend by name; this package cannot import the backends without a cycle.
package solver

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/matzehuels/stackflex/pkg/errors"
)

// Box is the computed geometry of one solver node. Left and Top are relative
// to the parent's border box.
type Box struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Node is one element of a solver tree.
type Node interface {
	// Name is a debug label, usually the encoded tree address.
	Name() string
	// Set applies one attribute. Unknown names fail with
	// [errors.ErrCodeUnknownAttribute].
	Set(attr string, value any) error
	// InsertChild places child at index among this node's children.
	InsertChild(child Node, index int) error
	// ChildCount returns the number of inserted children.
	ChildCount() int
	// Layout returns the geometry computed by the last [Solver.Compute].
	Layout() Box
}

// Solver creates nodes and computes layouts for trees of them.
type Solver interface {
	// Name returns the backend identifier ("css-layout", "yoga-layout").
	Name() string
	// NewNode creates a detached node.
	NewNode(name string) Node
	// Supports returns nil if attr can be set on this backend's nodes.
	Supports(attr string) error
	// Compute solves the tree rooted at root. Nodes must have been created
	// by the same solver.
	Compute(root Node) error
}

// SupportedAttributes lists the attribute names every backend accepts.
var SupportedAttributes = []string{
	"width", "height",
	"minWidth", "minHeight",
	"maxWidth", "maxHeight",
	"left", "right", "top", "bottom",
	"margin", "marginLeft", "marginRight", "marginTop", "marginBottom",
	"padding", "paddingLeft", "paddingRight", "paddingTop", "paddingBottom",
	"borderWidth", "borderLeftWidth", "borderRightWidth", "borderTopWidth", "borderBottomWidth",
	"flexDirection",
	"justifyContent",
	"alignItems", "alignSelf",
	"flex",
	"flexWrap",
	"position",
}

// IsSupported reports whether attr is in [SupportedAttributes].
func IsSupported(attr string) bool {
	return slices.Contains(SupportedAttributes, attr)
}

// SetterName returns the setter a backend would dispatch attr to, for
// example "setFlexDirection" for "flexDirection".
func SetterName(attr string) string {
	if attr == "" {
		return "set"
	}
	r := []rune(attr)
	r[0] = unicode.ToUpper(r[0])
	return "set" + string(r)
}

// UnknownAttribute returns the error reported for an attribute with no
// setter.
func UnknownAttribute(attr string) error {
	return errors.New(errors.ErrCodeUnknownAttribute,
		"could not set layout attribute %q (%s)", attr, SetterName(attr))
}

// InvalidValue returns the error reported when an attribute value cannot be
// converted to what the setter expects.
func InvalidValue(attr string, value any, cause error) error {
	if cause == nil {
		return errors.New(errors.ErrCodeInvalidAttribute,
			"invalid value %v for layout attribute %q", value, attr)
	}
	code := errors.ErrCodeInvalidAttribute
	if errors.Is(cause, errors.ErrCodeInvalidDimensions) {
		code = errors.ErrCodeInvalidDimensions
	}
	return errors.Wrap(code, cause,
		"invalid value %v for layout attribute %q", value, attr)
}

// CheckSupported validates attr against the shared whitelist.
func CheckSupported(attr string) error {
	if !IsSupported(attr) {
		return UnknownAttribute(attr)
	}
	return nil
}

// Walk visits root and its descendants depth-first. Backends expose their
// children through the optional Children method; other nodes are leaves.
func Walk(root Node, fn func(n Node, depth int)) {
	walk(root, 0, fn)
}

func walk(n Node, depth int, fn func(Node, int)) {
	fn(n, depth)
	p, ok := n.(interface{ Children() []Node })
	if !ok {
		return
	}
	for _, c := range p.Children() {
		walk(c, depth+1, fn)
	}
}

// Dump renders the solved tree as an indented listing for debug logs.
func Dump(root Node) string {
	var b strings.Builder
	Walk(root, func(n Node, depth int) {
		box := n.Layout()
		b.WriteString(strings.Repeat("  ", depth))
		name := n.Name()
		if name == "" {
			name = "(root)"
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(formatBox(box))
		b.WriteByte('\n')
	})
	return b.String()
}

func formatBox(b Box) string {
	return fmt.Sprintf("{left:%g top:%g width:%g height:%g}", b.Left, b.Top, b.Width, b.Height)
}
