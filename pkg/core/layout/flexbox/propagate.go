package flexbox

import (
	"slices"

	"github.com/matzehuels/stackflex/pkg/core/layout"
	"github.com/matzehuels/stackflex/pkg/core/tree"
	"github.com/matzehuels/stackflex/pkg/errors"
)

// InternalAttrs are never forwarded to the solver. "sort" and "order" steer
// sibling ordering; the rest are identity and drawing hints.
var InternalAttrs = []string{
	"sort", "order",
	"key", "parent",
	"shape", "abstract",
	"rx", "ry",
	"x", "y", "z",
}

// ParentSkippedAttrs are dropped on slots with children: a container's size
// is computed by the solver from its children.
var ParentSkippedAttrs = []string{"width", "height"}

// IsInternal reports whether name is in [InternalAttrs].
func IsInternal(name string) bool { return slices.Contains(InternalAttrs, name) }

func isParentSkipped(name string) bool { return slices.Contains(ParentSkippedAttrs, name) }

// propagation is the outcome of merging inherited attributes into one slot.
type propagation struct {
	// applied is the effective set sent to the solver, with derived values
	// resolved against the slot's payload.
	applied map[string]any
	// passDown is what every child inherits: the inherited set as it arrived,
	// before this slot's own attributes were overlaid.
	passDown layout.Attrs
	// order sorts this slot's children.
	order layout.Comparator
}

// propagate computes the effective attributes of t given the set inherited
// from its parent. fallback orders children when no "sort" attribute is in
// effect.
func propagate(inherited layout.Attrs, t *tree.Node, fallback layout.Comparator) (propagation, error) {
	p := propagation{
		applied:  map[string]any{},
		passDown: inherited.Clone(),
		order:    fallback,
	}

	attrs := inherited.Clone()
	if t.Payload != nil {
		for name, v := range t.Payload.Attrs {
			attrs[name] = v
		}
	}

	isParent := !t.IsLeaf()
	for name, v := range attrs {
		if IsInternal(name) {
			continue
		}
		if isParent && isParentSkipped(name) {
			continue
		}
		p.applied[name] = v.Resolve(t.Payload)
	}

	if v, ok := attrs["sort"]; ok {
		cmp, err := comparatorOf(v.Resolve(t.Payload))
		if err != nil {
			return p, err
		}
		p.order = cmp
	}
	return p, nil
}

func comparatorOf(v any) (layout.Comparator, error) {
	switch c := v.(type) {
	case layout.Comparator:
		if c != nil {
			return c, nil
		}
	case func(a, b *layout.Node) int:
		if c != nil {
			return c, nil
		}
	case string:
		switch c {
		case "key":
			return layout.ByKey, nil
		case "order":
			return layout.ByOrder, nil
		}
	}
	return nil, errors.New(errors.ErrCodeInvalidAttribute,
		`"sort" must be a comparator, "key" or "order" (got %T)`, v)
}
