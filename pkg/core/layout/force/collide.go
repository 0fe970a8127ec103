package force

import (
	"math"

	"github.com/matzehuels/stackflex/pkg/core/quadtree"
)

// Padding is the extra clearance used for the search box and between bodies
// of different colors.
const Padding = 6.0

// RelayoutRelaxation is the relaxation factor applied on every tick of a
// [Engine.RelayoutPath] run.
const RelayoutRelaxation = 0.5

// Collide pushes overlapping bodies apart once. Two bodies overlap when
// their centers are closer than the sum of their radii, plus [Padding] when
// their colors differ. The overlap is scaled by relaxation and applied to
// both bodies in opposite directions; fixed bodies do not move.
//
// A quadtree over the current positions limits each body's search to quads
// that intersect its padded bounding box. Bodies sharing a center are left
// alone since they have no separating direction.
func Collide(bodies []*Body, relaxation float64) {
	qt := quadtree.New(bodies, func(b *Body) (float64, float64) { return b.X, b.Y })
	for _, d := range bodies {
		collideOne(qt, d, relaxation)
	}
}

func collideOne(qt *quadtree.Tree[*Body], d *Body, relaxation float64) {
	r := d.Radius + Padding
	nx1, nx2 := d.X-r, d.X+r
	ny1, ny2 := d.Y-r, d.Y+r

	qt.Visit(func(q *quadtree.Quad[*Body], x1, y1, x2, y2 float64) bool {
		if o := q.Item; q.HasItem && o != d {
			separate(d, o, relaxation)
		}
		return quadtree.Disjoint(x1, y1, x2, y2, nx1, ny1, nx2, ny2)
	})
}

func separate(d, o *Body, relaxation float64) {
	x, y := d.X-o.X, d.Y-o.Y
	l := math.Hypot(x, y)
	if l == 0 {
		return
	}
	r := d.Radius + o.Radius
	if d.Color != o.Color {
		r += Padding
	}
	if l >= r {
		return
	}
	k := (l - r) / l * relaxation
	x, y = x*k, y*k
	if !d.Fixed {
		d.X -= x
		d.Y -= y
	}
	if !o.Fixed {
		o.X += x
		o.Y += y
	}
}
