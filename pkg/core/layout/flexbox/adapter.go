package flexbox

import (
	"maps"
	"slices"

	"github.com/matzehuels/stackflex/pkg/core/address"
	"github.com/matzehuels/stackflex/pkg/core/layout"
	"github.com/matzehuels/stackflex/pkg/core/solver"
	"github.com/matzehuels/stackflex/pkg/core/tree"
	"github.com/matzehuels/stackflex/pkg/errors"
)

// adapter converts an attributed tree into a solver tree.
type adapter struct {
	solver   solver.Solver
	codec    address.Codec
	fallback layout.Comparator
}

// adapt creates one solver node per slot, applies each slot's effective
// attributes in name order and inserts children in comparator order. Every
// slot's Box is set on return.
func (a *adapter) adapt(inherited layout.Attrs, t *tree.Node) (solver.Node, error) {
	box := a.solver.NewNode(a.codec.Encode(t.Address))
	t.Box = box

	p, err := propagate(inherited, t, a.fallback)
	if err != nil {
		return nil, err
	}
	for _, name := range slices.Sorted(maps.Keys(p.applied)) {
		if err := box.Set(name, p.applied[name]); err != nil {
			return nil, err
		}
	}

	children := t.Sorted()
	slices.SortStableFunc(children, func(x, y *tree.Node) int {
		return p.order(x.Payload, y.Payload)
	})
	for i, c := range children {
		child, err := a.adapt(p.passDown.Clone(), c)
		if err != nil {
			return nil, err
		}
		if err := box.InsertChild(child, i); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "insert %q", child.Name())
		}
	}
	return box, nil
}

// solve builds the solver tree for root, sizes the root to the viewport and
// computes the layout once.
func (a *adapter) solve(root *tree.Node, defaults layout.Attrs, width, height float64) (solver.Node, error) {
	box, err := a.adapt(defaults, root)
	if err != nil {
		return nil, err
	}
	if err := box.Set("width", width); err != nil {
		return nil, err
	}
	if err := box.Set("height", height); err != nil {
		return nil, err
	}
	if err := a.solver.Compute(box); err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeSolverFailed, err, "%s compute", a.solver.Name())
		}
		return nil, err
	}
	return box, nil
}
