// Package graph defines the wire format for layout requests and results.
//
// This package is the serialization boundary of stackflex: the CLI reads
// graphs from JSON or YAML files, the HTTP API decodes them from request
// bodies, and the cache stores encoded results.
//
// # Core Types
//
//   - [Graph]: nodes, edges and inherited attribute defaults
//   - [Layout]: computed positions plus the engine that produced them
//   - [Node], [Edge], [Position]: shared structural types
//
// # Graph Serialization
//
// Graphs use a node-link format. Keys of flexbox graphs encode the
// hierarchy with the address delimiter:
//
//	{
//	  "defaults": {"alignItems": "center"},
//	  "nodes": [
//	    {"key": "app", "attrs": {"flexDirection": "row"}},
//	    {"key": "app,api", "attrs": {"width": 80, "height": 40}},
//	    {"key": "app,db", "attrs": {"width": 60, "height": 40}}
//	  ],
//	  "edges": [{"source": "app,api", "target": "app,db"}]
//	}
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("graph.yaml")   // File → Graph (JSON or YAML)
//	nodes, edges, _ := g.ToEngine()              // Graph → engine input
//	data, _ := graph.MarshalLayout(result)       // Layout → []byte
//
// # Validation
//
// [Graph.Validate] rejects empty or malformed keys, duplicate keys and edges
// whose endpoints are missing. Address collisions depend on the codec and
// are reported by the flexbox engine.
package graph
