package pipeline

import (
	"context"
	stderrors "errors"

	"github.com/matzehuels/stackflex/pkg/core/address"
	"github.com/matzehuels/stackflex/pkg/core/layout"
	"github.com/matzehuels/stackflex/pkg/core/layout/flexbox"
	"github.com/matzehuels/stackflex/pkg/core/layout/force"
	"github.com/matzehuels/stackflex/pkg/core/tree"
	"github.com/matzehuels/stackflex/pkg/errors"
	"github.com/matzehuels/stackflex/pkg/graph"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout runs one layout pass over g without caching. Options are
// defaulted and validated first. Every call uses a fresh engine, so
// concurrent calls never share state.
//
// The force engine checks ctx on every tick and stops early when it is
// done; the flexbox pass is a single solve and only checks ctx before it
// starts.
func GenerateLayout(ctx context.Context, g graph.Graph, opts Options) (graph.Layout, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return graph.Layout{}, err
	}
	return generateLayout(ctx, g, opts)
}

func generateLayout(ctx context.Context, g graph.Graph, opts Options) (graph.Layout, error) {
	if err := ctxErr(ctx); err != nil {
		return graph.Layout{}, err
	}
	nodes, edges, err := g.ToEngine()
	if err != nil {
		return graph.Layout{}, err
	}
	lo := opts.LayoutOptions(g)

	out := graph.Layout{
		Algorithm: opts.Algorithm,
		Width:     opts.Width,
		Height:    opts.Height,
		Edges:     layout.Refs(edges),
	}

	switch opts.Algorithm {
	case layout.AlgorithmFlexbox:
		e := flexbox.New(opts.ID)
		if err := runEngine(e, lo, nodes, edges, e.Start); err != nil {
			return graph.Layout{}, err
		}
		out.ID, out.Algo = e.LayoutID(), opts.Algo
		out.Placeholders = placeholders(e.Tree(), lo.Codec)
	case layout.AlgorithmForce:
		e := force.New(opts.ID)
		e.On(layout.EventTick, func([]*layout.Node, []layout.EdgeRef) {
			if ctx.Err() != nil {
				e.Stop()
			}
		})
		pass := e.Start
		if opts.Relayout {
			pass = func() error {
				if err := e.Start(); err != nil {
					return err
				}
				if err := ctxErr(ctx); err != nil {
					return err
				}
				return e.RelayoutPath()
			}
		}
		if err := runEngine(e, lo, nodes, edges, pass); err != nil {
			return graph.Layout{}, err
		}
		if err := ctxErr(ctx); err != nil {
			return graph.Layout{}, err
		}
		out.ID = e.LayoutID()
	default:
		return graph.Layout{}, ValidateAlgorithm(opts.Algorithm)
	}

	out.Nodes = graph.Positions(nodes)
	return out, nil
}

func runEngine(e layout.Engine, opts layout.Options, nodes []*layout.Node, edges []*layout.Edge, pass func() error) error {
	if err := e.Init(opts); err != nil {
		return err
	}
	if err := e.Data(nodes, edges, nil); err != nil {
		return err
	}
	return pass()
}

// placeholders lists the synthesized interior slots below the root, keyed
// by their full encoded address.
func placeholders(root *tree.Node, codec address.Codec) []graph.Position {
	if root == nil {
		return nil
	}
	var out []graph.Position
	tree.Walk(root, func(t *tree.Node) {
		if len(t.Address) == 0 || t.Payload == nil || !t.Payload.Synthetic {
			return
		}
		out = append(out, graph.Position{Key: codec.Encode(t.Address), X: t.Payload.X, Y: t.Payload.Y})
	})
	return out
}

func ctxErr(ctx context.Context) error {
	err := ctx.Err()
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(errors.ErrCodeTimeout, err, "layout")
	default:
		return errors.Wrap(errors.ErrCodeInternal, err, "layout canceled")
	}
}
