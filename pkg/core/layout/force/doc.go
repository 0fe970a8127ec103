// Package force lays out graphs with a force-directed simulation.
//
// The [Engine] keeps one [Body] per node and one [Link] per edge across Data
// calls, so a node that stays in the graph keeps its position and momentum
// between passes. Start drives the [Simulation] synchronously for at most
// Options.Iterations ticks; listeners see positions on every tick.
//
// [Collide] is the collision pass used by [Engine.RelayoutPath]: a quadtree
// over body centers restricts each body's neighbor search, and overlapping
// pairs are pushed apart symmetrically by a relaxation factor. Repeated
// ticks converge towards a layout with no overlaps.
package force
