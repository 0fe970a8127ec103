package layout

import (
	"cmp"
	"encoding/json"
	"maps"
	"slices"
)

// Node is a caller-owned record that an engine positions.
//
// Key joins the node to edges and to engine state. Attrs carries layout
// attributes for the flexbox engine. X and Y receive the computed center
// after a pass; engines never write them before a pass succeeds.
type Node struct {
	Key   string
	Attrs Attrs

	X, Y float64

	// Force-layout inputs.
	Width, Height float64
	Radius        float64
	Color         string
	Fixed         bool

	// Synthetic marks placeholders created for interior tree slots that no
	// caller node occupies.
	Synthetic bool
}

// NewNode returns a node with an empty attribute set.
func NewNode(key string) *Node {
	return &Node{Key: key, Attrs: Attrs{}}
}

// Attr returns the resolved value of the named attribute.
func (n *Node) Attr(name string) (any, bool) {
	v, ok := n.Attrs[name]
	if !ok {
		return nil, false
	}
	return v.Resolve(n), true
}

// Set stores a literal attribute value and returns n for chaining.
func (n *Node) Set(name string, value any) *Node {
	if n.Attrs == nil {
		n.Attrs = Attrs{}
	}
	n.Attrs[name] = Literal(value)
	return n
}

// SetFunc stores a derived attribute and returns n for chaining.
func (n *Node) SetFunc(name string, fn func(*Node) any) *Node {
	if n.Attrs == nil {
		n.Attrs = Attrs{}
	}
	n.Attrs[name] = Derived(fn)
	return n
}

// Edge connects two nodes by key.
type Edge struct {
	Key    string
	Source string
	Target string
	// Length is the preferred edge length; zero means the engine default.
	Length float64
}

// EdgeRef is the reduced edge passed to event handlers.
type EdgeRef struct {
	Key string `json:"key"`
}

// Refs reduces edges to their keys.
func Refs(edges []*Edge) []EdgeRef {
	refs := make([]EdgeRef, len(edges))
	for i, e := range edges {
		refs[i] = EdgeRef{Key: e.Key}
	}
	return refs
}

// Comparator orders sibling nodes. It returns a negative number when a sorts
// before b, zero when they are equal, and a positive number otherwise.
type Comparator func(a, b *Node) int

// ByKey orders nodes lexicographically by key.
func ByKey(a, b *Node) int {
	return cmp.Compare(a.Key, b.Key)
}

// ByOrder orders nodes by their numeric "order" attribute, falling back to
// key order. Nodes without an order sort after nodes that have one.
func ByOrder(a, b *Node) int {
	oa, aok := orderOf(a)
	ob, bok := orderOf(b)
	switch {
	case aok && bok:
		if c := cmp.Compare(oa, ob); c != 0 {
			return c
		}
	case aok:
		return -1
	case bok:
		return 1
	}
	return ByKey(a, b)
}

func orderOf(n *Node) (float64, bool) {
	v, ok := n.Attr("order")
	if !ok {
		return 0, false
	}
	f, err := ToFloat(v)
	if err != nil {
		return 0, false
	}
	return f, true
}

// =============================================================================
// Attribute values
// =============================================================================

// Value is an attribute value: either a literal or a function of the node
// that owns the resolved attribute set.
type Value struct {
	literal any
	derive  func(*Node) any
}

// Literal wraps a constant attribute value.
func Literal(v any) Value { return Value{literal: v} }

// Derived wraps an attribute computed from the node it is resolved against.
func Derived(fn func(*Node) any) Value { return Value{derive: fn} }

// IsDerived reports whether the value is computed per node.
func (v Value) IsDerived() bool { return v.derive != nil }

// Resolve returns the literal, or invokes the function with n.
func (v Value) Resolve(n *Node) any {
	if v.derive != nil {
		return v.derive(n)
	}
	return v.literal
}

// MarshalJSON encodes literals as-is. Derived values have no wire form and
// encode as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.derive != nil {
		return []byte("null"), nil
	}
	return json.Marshal(v.literal)
}

// UnmarshalJSON decodes any JSON value into a literal.
func (v *Value) UnmarshalJSON(data []byte) error {
	var lit any
	if err := json.Unmarshal(data, &lit); err != nil {
		return err
	}
	*v = Literal(lit)
	return nil
}

// Attrs maps attribute names to values.
type Attrs map[string]Value

// Clone returns a shallow copy. A nil set clones to an empty set.
func (a Attrs) Clone() Attrs {
	out := make(Attrs, len(a))
	maps.Copy(out, a)
	return out
}

// Names returns the attribute names in sorted order.
func (a Attrs) Names() []string {
	return slices.Sorted(maps.Keys(a))
}

// AttrsOf converts plain values into literal attributes. Values that are
// already a [Value] are kept as they are.
func AttrsOf(m map[string]any) Attrs {
	out := make(Attrs, len(m))
	for k, v := range m {
		if val, ok := v.(Value); ok {
			out[k] = val
			continue
		}
		out[k] = Literal(v)
	}
	return out
}
