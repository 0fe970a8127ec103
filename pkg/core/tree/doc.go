// Package tree infers a hierarchy from flat, address-encoded node keys.
//
// # Building
//
// [Build] decodes each node's key with an [address.Codec] and inserts the
// node at the slot its address names, creating every intermediate slot:
//
//	nodes := []*layout.Node{
//	    layout.NewNode("app"),
//	    layout.NewNode("app,api"),
//	    layout.NewNode("app,web"),
//	}
//	root, err := tree.Build(nodes, address.Default)
//	// root -> app -> {api, web}
//
// Slots that exist only because a descendant needed them have no payload.
// [EnsureInteriorNodes] fills them with synthetic placeholders so every slot
// can be laid out.
//
// # Collisions
//
// The mapping from keys to slots must be one-to-one. Two distinct keys that
// decode to the same address are rejected with
// [errors.ErrCodeAddressCollision] rather than silently merged.
//
// # Debugging
//
// [ToDOT] renders the hierarchy as Graphviz DOT and [RenderSVG] turns that
// into an SVG.
package tree
