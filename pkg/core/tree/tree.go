package tree

import (
	"maps"
	"slices"

	"github.com/matzehuels/stackflex/pkg/core/address"
	"github.com/matzehuels/stackflex/pkg/core/layout"
	"github.com/matzehuels/stackflex/pkg/core/solver"
	"github.com/matzehuels/stackflex/pkg/errors"
)

// Node is one slot in the implicit hierarchy.
//
// Address extends the parent's address by exactly one segment; the root has
// the empty address. Payload is the caller's node placed at this exact
// address, or a synthetic placeholder after [EnsureInteriorNodes].
type Node struct {
	Address  []string
	Children map[string]*Node
	Payload  *layout.Node

	// Box is the solver node built for this slot during a layout pass.
	Box solver.Node
}

func newNode(addr []string) *Node {
	return &Node{Address: addr, Children: map[string]*Node{}}
}

// IsLeaf reports whether the slot has no children.
func (t *Node) IsLeaf() bool { return len(t.Children) == 0 }

// Segment returns the last address segment, or "" for the root.
func (t *Node) Segment() string { return address.Last(t.Address) }

// Sorted returns the children ordered by address segment.
func (t *Node) Sorted() []*Node {
	out := make([]*Node, 0, len(t.Children))
	for _, seg := range slices.Sorted(maps.Keys(t.Children)) {
		out = append(out, t.Children[seg])
	}
	return out
}

// Build inserts every node at the slot its key decodes to, creating
// intermediate slots on the way. Shared prefixes share one slot.
//
// Two nodes that land on the same slot fail fast: identical keys with
// [errors.ErrCodeDuplicateKey], distinct keys with
// [errors.ErrCodeAddressCollision]. A nil codec selects [address.Default].
func Build(nodes []*layout.Node, codec address.Codec) (*Node, error) {
	if codec == nil {
		codec = address.Default
	}
	root := newNode([]string{})
	for i, n := range nodes {
		if n == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "node %d is nil", i)
		}
		if err := insert(root, codec.Decode(n.Key), n); err != nil {
			return nil, err
		}
	}
	return root, nil
}

func insert(root *Node, addr []string, n *layout.Node) error {
	t := root
	for i, seg := range addr {
		child, ok := t.Children[seg]
		if !ok {
			child = newNode(slices.Clone(addr[:i+1]))
			t.Children[seg] = child
		}
		t = child
	}
	if prev := t.Payload; prev != nil {
		if prev.Key == n.Key {
			return errors.New(errors.ErrCodeDuplicateKey, "duplicate node key %q", n.Key)
		}
		return errors.New(errors.ErrCodeAddressCollision,
			"node keys %q and %q decode to the same address %q", prev.Key, n.Key, addr)
	}
	t.Payload = n
	return nil
}

// EnsureInteriorNodes gives every payload-less slot a synthetic placeholder
// whose key is the slot's last segment ("" at the root). It returns the
// number of placeholders created, so a second call returns 0.
func EnsureInteriorNodes(root *Node) int {
	created := 0
	Walk(root, func(t *Node) {
		if t.Payload != nil {
			return
		}
		t.Payload = &layout.Node{Key: t.Segment(), Attrs: layout.Attrs{}, Synthetic: true}
		created++
	})
	return created
}

// Find returns the slot at addr, or nil.
func Find(root *Node, addr []string) *Node {
	t := root
	for _, seg := range addr {
		if t = t.Children[seg]; t == nil {
			return nil
		}
	}
	return t
}

// Walk visits root and its descendants depth-first, parents before children
// and siblings in segment order.
func Walk(root *Node, fn func(*Node)) {
	fn(root)
	for _, c := range root.Sorted() {
		Walk(c, fn)
	}
}

// Keys returns the encoded key of every slot in [Walk] order, starting with
// the root's key.
func Keys(root *Node, codec address.Codec) []string {
	if codec == nil {
		codec = address.Default
	}
	var keys []string
	Walk(root, func(t *Node) {
		keys = append(keys, codec.Encode(t.Address))
	})
	return keys
}

// Len returns the number of slots, root included.
func Len(root *Node) int {
	n := 0
	Walk(root, func(*Node) { n++ })
	return n
}
