package flexbox

import "github.com/matzehuels/stackflex/pkg/core/tree"

// point is an accumulated parent offset.
type point struct{ x, y float64 }

// apply writes absolute center coordinates onto every payload below t.
// Solver boxes are relative to their parent, so each level adds its own
// left/top to the offset handed to its children.
func apply(offset point, t *tree.Node) {
	b := t.Box.Layout()
	t.Payload.X = offset.x + b.Left + b.Width/2
	t.Payload.Y = offset.y + b.Top + b.Height/2

	next := point{offset.x + b.Left, offset.y + b.Top}
	for _, c := range t.Children {
		apply(next, c)
	}
}
