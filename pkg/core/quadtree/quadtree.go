// Package quadtree partitions points in the plane for pruned neighborhood
// queries.
//
// The tree is built once over a snapshot of positions. Items are stored by
// value (usually a pointer), so callers may move them afterwards; quad
// bounds keep reflecting the positions seen at insertion time.
package quadtree

import "math"

// coincident is the Manhattan distance under which two points share a quad.
const coincident = 0.01

// Quad is one node of the partition. A leaf holds at most one item. An
// interior quad holds an item only when a coincident point was inserted
// below it.
type Quad[T any] struct {
	Item     T
	HasItem  bool
	Leaf     bool
	Children [4]*Quad[T]

	x, y float64
}

// Tree is a point quadtree over items of type T.
type Tree[T any] struct {
	root           *Quad[T]
	pos            func(T) (x, y float64)
	x1, y1, x2, y2 float64
	n              int
}

// New builds a tree over items using pos to read each position. The extent
// is the bounding box of the items, squared off along its shorter side.
// Items with a NaN coordinate are skipped.
func New[T any](items []T, pos func(T) (x, y float64)) *Tree[T] {
	t := &Tree[T]{root: &Quad[T]{Leaf: true}, pos: pos}

	x1, y1 := math.Inf(1), math.Inf(1)
	x2, y2 := math.Inf(-1), math.Inf(-1)
	for _, it := range items {
		x, y := pos(it)
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		x1, y1 = math.Min(x1, x), math.Min(y1, y)
		x2, y2 = math.Max(x2, x), math.Max(y2, y)
	}
	if math.IsInf(x1, 1) {
		x1, y1, x2, y2 = 0, 0, 0, 0
	}
	if dx, dy := x2-x1, y2-y1; dx > dy {
		y2 = y1 + dx
	} else {
		x2 = x1 + dy
	}
	t.x1, t.y1, t.x2, t.y2 = x1, y1, x2, y2

	for _, it := range items {
		t.Add(it)
	}
	return t
}

// Add inserts an item. Points outside the tree's extent are clamped into
// the border quads. It reports false for items with a NaN coordinate.
func (t *Tree[T]) Add(it T) bool {
	x, y := t.pos(it)
	if math.IsNaN(x) || math.IsNaN(y) {
		return false
	}
	insert(t.root, it, x, y, t.x1, t.y1, t.x2, t.y2)
	t.n++
	return true
}

// Len returns the number of items inserted.
func (t *Tree[T]) Len() int { return t.n }

// Bounds returns the tree's square extent.
func (t *Tree[T]) Bounds() (x1, y1, x2, y2 float64) { return t.x1, t.y1, t.x2, t.y2 }

func insert[T any](q *Quad[T], it T, x, y, x1, y1, x2, y2 float64) {
	if !q.Leaf {
		insertChild(q, it, x, y, x1, y1, x2, y2)
		return
	}
	if !q.HasItem {
		q.Item, q.HasItem, q.x, q.y = it, true, x, y
		return
	}
	if math.Abs(q.x-x)+math.Abs(q.y-y) < coincident {
		// The resident item stays here; the newcomer goes one level down.
		insertChild(q, it, x, y, x1, y1, x2, y2)
		return
	}
	old, ox, oy := q.Item, q.x, q.y
	var zero T
	q.Item, q.HasItem = zero, false
	insertChild(q, old, ox, oy, x1, y1, x2, y2)
	insertChild(q, it, x, y, x1, y1, x2, y2)
}

func insertChild[T any](q *Quad[T], it T, x, y, x1, y1, x2, y2 float64) {
	xm, ym := (x1+x2)/2, (y1+y2)/2
	i := 0
	if x >= xm {
		i |= 1
		x1 = xm
	} else {
		x2 = xm
	}
	if y >= ym {
		i |= 2
		y1 = ym
	} else {
		y2 = ym
	}
	q.Leaf = false
	c := q.Children[i]
	if c == nil {
		c = &Quad[T]{Leaf: true}
		q.Children[i] = c
	}
	insert(c, it, x, y, x1, y1, x2, y2)
}

// Visit calls fn for every quad in pre-order with the quad's bounds. When fn
// returns true the quad's children are skipped.
func (t *Tree[T]) Visit(fn func(q *Quad[T], x1, y1, x2, y2 float64) bool) {
	visit(t.root, fn, t.x1, t.y1, t.x2, t.y2)
}

func visit[T any](q *Quad[T], fn func(*Quad[T], float64, float64, float64, float64) bool, x1, y1, x2, y2 float64) {
	if fn(q, x1, y1, x2, y2) {
		return
	}
	xm, ym := (x1+x2)/2, (y1+y2)/2
	if c := q.Children[0]; c != nil {
		visit(c, fn, x1, y1, xm, ym)
	}
	if c := q.Children[1]; c != nil {
		visit(c, fn, xm, y1, x2, ym)
	}
	if c := q.Children[2]; c != nil {
		visit(c, fn, x1, ym, xm, y2)
	}
	if c := q.Children[3]; c != nil {
		visit(c, fn, xm, ym, x2, y2)
	}
}

// Disjoint reports whether the box [ax1,ax2]x[ay1,ay2] lies entirely
// outside [bx1,bx2]x[by1,by2]. It is the usual pruning test for Visit.
func Disjoint(ax1, ay1, ax2, ay2, bx1, by1, bx2, by2 float64) bool {
	return ax1 > bx2 || ax2 < bx1 || ay1 > by2 || ay2 < by1
}
