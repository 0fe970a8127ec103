package force

import (
	"math"

	"github.com/matzehuels/stackflex/pkg/core/layout"
	"github.com/matzehuels/stackflex/pkg/errors"
)

// Body is the simulation object for one node. The engine keeps bodies across
// Data calls, matched by node key, so position and velocity survive for
// nodes that stay in the graph.
type Body struct {
	Key string

	// X, Y is the current position; PX, PY the previous one. Velocity is
	// implied by their difference.
	X, Y   float64
	PX, PY float64

	Width, Height float64
	Radius        float64
	Color         string
	Fixed         bool

	// Placed is false until the body has a position, either from its node
	// or from the simulation's initial scatter.
	Placed bool

	weight float64
}

// Link is the simulation object for one edge, retained by edge key.
type Link struct {
	Key            string
	Source, Target *Body
	// Length is the rest length the link pulls towards.
	Length float64

	preferred float64
}

// update copies node inputs onto b. A body seen for the first time takes the
// node's position when it has one; a fixed body is pinned where its node is.
func (b *Body) update(n *layout.Node, fresh bool) {
	b.Key = n.Key
	b.Width, b.Height = n.Width, n.Height
	b.Radius = n.Radius
	if b.Radius == 0 {
		b.Radius = math.Max(n.Width, n.Height) / 2
	}
	b.Color = n.Color
	b.Fixed = n.Fixed

	if (fresh && (n.X != 0 || n.Y != 0)) || n.Fixed {
		b.X, b.Y = n.X, n.Y
		b.PX, b.PY = n.X, n.Y
		b.Placed = true
	}
}

// regenerate returns one retained object per key in order, creating missing
// ones and dropping those no longer present.
func regenerate[T any](pool map[string]*T, keys []string, create func() *T) ([]*T, []bool) {
	out := make([]*T, len(keys))
	fresh := make([]bool, len(keys))
	seen := make(map[string]bool, len(keys))
	for i, k := range keys {
		seen[k] = true
		v, ok := pool[k]
		if !ok {
			v = create()
			pool[k] = v
		}
		out[i], fresh[i] = v, !ok
	}
	for k := range pool {
		if !seen[k] {
			delete(pool, k)
		}
	}
	return out, fresh
}

// assignLengths sets each link's rest length from the strategy.
//
// "symmetric" and "jaccard" scale base by how much the endpoints'
// neighborhoods differ: 1 + sqrt(|N(u) ∪ N(v)| - |N(u) ∩ N(v)|) and
// 1 + |N(u) ∩ N(v)| / |N(u) ∪ N(v)| respectively. "individual" uses each
// edge's own length where set, and "none" uses base for every link.
func assignLengths(links []*Link, strategy string, base float64) error {
	switch strategy {
	case layout.LengthNone:
		for _, l := range links {
			l.Length = base
		}
	case layout.LengthIndividual:
		for _, l := range links {
			l.Length = base
			if l.preferred > 0 {
				l.Length = l.preferred
			}
		}
	case layout.LengthSymmetric:
		neighborLengths(links, base, func(union, inter int) float64 {
			return math.Sqrt(float64(union - inter))
		})
	case layout.LengthJaccard:
		neighborLengths(links, base, func(union, inter int) float64 {
			if union == 0 {
				return 0
			}
			return float64(inter) / float64(union)
		})
	default:
		return errors.New(errors.ErrCodeInvalidOption, "invalid lengthStrategy: %q", strategy)
	}
	return nil
}

func neighborLengths(links []*Link, base float64, f func(union, inter int) float64) {
	neighbors := map[*Body]map[*Body]bool{}
	add := func(a, b *Body) {
		if neighbors[a] == nil {
			neighbors[a] = map[*Body]bool{}
		}
		neighbors[a][b] = true
	}
	for _, l := range links {
		add(l.Source, l.Target)
		add(l.Target, l.Source)
	}
	for _, l := range links {
		a, b := neighbors[l.Source], neighbors[l.Target]
		inter := 0
		for k := range a {
			if b[k] {
				inter++
			}
		}
		union := len(a) + len(b) - inter
		l.Length = base * (1 + f(union, inter))
	}
}
