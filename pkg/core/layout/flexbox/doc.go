// Package flexbox implements hierarchical flexbox layout for nodes whose keys
// encode a path.
//
// # Pipeline
//
// Each [Engine.Start] runs the same steps from scratch:
//
//  1. Build the implicit tree from node keys ([tree.Build]).
//  2. Give interior slots without a node a synthetic placeholder
//     ([tree.EnsureInteriorNodes]).
//  3. Walk the tree top-down, merging inherited attributes with each node's
//     own and creating one solver node per slot.
//  4. Size the root to the viewport and compute once.
//  5. Walk the tree again, accumulating parent offsets, and write each
//     node's center to X and Y.
//
// # Attribute inheritance
//
// A slot's effective attributes are the inherited set with its own
// attributes laid over it. Names in [InternalAttrs] are never sent to the
// solver, and width/height ([ParentSkippedAttrs]) are dropped on slots with
// children. Derived values are resolved against the slot's node.
//
// Children inherit the set their parent received, not the parent's effective
// set. Defaults passed through [layout.Options].Defaults reach every slot,
// while a concrete size on one container never leaks into its children.
//
// # Ordering
//
// Siblings are inserted in the order of the "sort" attribute in effect (a
// [layout.Comparator], or the strings "key" and "order"), falling back to
// [layout.Options].Comparator, ascending by key by default. Sorting is stable
// over children pre-ordered by address segment, so repeated passes over
// unchanged data insert children identically.
package flexbox
