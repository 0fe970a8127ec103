package graph

import "github.com/matzehuels/stackflex/pkg/core/layout"

// Graph is a layout request: the nodes and edges to place.
type Graph struct {
	// Defaults are attributes inherited by every flexbox slot.
	Defaults map[string]any `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	Nodes    []Node         `json:"nodes" yaml:"nodes"`
	Edges    []Edge         `json:"edges,omitempty" yaml:"edges,omitempty"`
}

// Node is one node of a [Graph].
type Node struct {
	Key   string         `json:"key" yaml:"key"`
	Attrs map[string]any `json:"attrs,omitempty" yaml:"attrs,omitempty"`

	// Initial position; also the pin location of fixed force nodes.
	X float64 `json:"x,omitempty" yaml:"x,omitempty"`
	Y float64 `json:"y,omitempty" yaml:"y,omitempty"`

	Width  float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height float64 `json:"height,omitempty" yaml:"height,omitempty"`
	Radius float64 `json:"radius,omitempty" yaml:"radius,omitempty"`
	Color  string  `json:"color,omitempty" yaml:"color,omitempty"`
	Fixed  bool    `json:"fixed,omitempty" yaml:"fixed,omitempty"`
}

// Edge connects two nodes by key. An empty Key is filled in as
// "source->target".
type Edge struct {
	Key    string  `json:"key,omitempty" yaml:"key,omitempty"`
	Source string  `json:"source" yaml:"source"`
	Target string  `json:"target" yaml:"target"`
	Length float64 `json:"length,omitempty" yaml:"length,omitempty"`
}

// Layout is the result of one layout pass.
type Layout struct {
	ID        string  `json:"id"`
	Algorithm string  `json:"algorithm"`
	Algo      string  `json:"algo,omitempty"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`

	Nodes []Position       `json:"nodes"`
	Edges []layout.EdgeRef `json:"edges,omitempty"`

	// Placeholders are the interior flexbox slots no input node occupied.
	Placeholders []Position `json:"placeholders,omitempty"`
}

// Position is the computed center of one node.
type Position struct {
	Key string  `json:"key"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
}

// Position returns the position of the node with the given key.
func (l *Layout) Position(key string) (Position, bool) {
	for _, p := range l.Nodes {
		if p.Key == key {
			return p, true
		}
	}
	for _, p := range l.Placeholders {
		if p.Key == key {
			return p, true
		}
	}
	return Position{}, false
}
