// Package layout defines the engine contract shared by the flexbox and force
// layout disciplines.
//
// # Overview
//
// A caller hands an [Engine] a set of [Node] and [Edge] values, starts a pass
// and receives computed center coordinates on the same Node values:
//
//	eng := flexbox.New("")
//	_ = eng.Init(layout.Options{Width: 800, Height: 600})
//	_ = eng.Data(nodes, nil, nil)
//	eng.On(layout.EventEnd, func(nodes []*layout.Node, _ []layout.EdgeRef) {
//	    for _, n := range nodes {
//	        fmt.Println(n.Key, n.X, n.Y)
//	    }
//	})
//	_ = eng.Start()
//
// # Attributes
//
// Layout attributes are [Value]s: either a literal ([Literal]) or a function
// of the node the attribute is resolved for ([Derived]). Derived values let
// one default such as "width = 10 per child" serve many nodes.
//
// # Events
//
// Each engine owns a [Dispatcher]. Listeners for "start", "tick" and "end"
// receive node snapshots and edges reduced to their keys. Dispatch is
// synchronous and happens inside Start.
package layout
