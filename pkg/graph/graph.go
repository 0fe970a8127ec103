package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stackflex/pkg/core/layout"
	"github.com/matzehuels/stackflex/pkg/errors"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// ReadGraph decodes a JSON graph from r.
func ReadGraph(r io.Reader) (Graph, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return Graph{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode graph")
	}
	return g, nil
}

// UnmarshalGraph decodes a JSON graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	return ReadGraph(bytes.NewReader(data))
}

// ReadGraphYAML decodes a YAML graph from r.
func ReadGraphYAML(r io.Reader) (Graph, error) {
	var g Graph
	if err := yaml.NewDecoder(r).Decode(&g); err != nil {
		return Graph{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode graph")
	}
	return g, nil
}

// ReadGraphFile reads a graph from path. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON.
func ReadGraphFile(path string) (Graph, error) {
	if err := errors.ValidatePath(path); err != nil {
		return Graph{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Graph{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return Graph{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ReadGraphYAML(f)
	default:
		return ReadGraph(f)
	}
}

// WriteGraph writes g as indented JSON.
func WriteGraph(g Graph, w io.Writer) error {
	return writeJSON(g, w)
}

// MarshalGraph encodes g as indented JSON.
func MarshalGraph(g Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// WriteLayout writes l as indented JSON.
func WriteLayout(l Layout, w io.Writer) error {
	return writeJSON(l, w)
}

// MarshalLayout encodes l as indented JSON.
func MarshalLayout(l Layout) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(l, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalLayout decodes a JSON layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("decode layout: %w", err)
	}
	return l, nil
}

// =============================================================================
// Conversion
// =============================================================================

// Validate checks keys and edge endpoints.
func (g Graph) Validate() error {
	keys := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if err := errors.ValidateNodeKey(n.Key); err != nil {
			return err
		}
		if keys[n.Key] {
			return errors.New(errors.ErrCodeDuplicateKey, "duplicate node key %q", n.Key)
		}
		keys[n.Key] = true
	}
	edges := make(map[string]bool, len(g.Edges))
	for _, e := range g.Edges {
		for _, end := range []string{e.Source, e.Target} {
			if !keys[end] {
				return errors.New(errors.ErrCodeUnknownNode, "edge %s->%s: unknown node %q", e.Source, e.Target, end)
			}
		}
		k := e.key()
		if edges[k] {
			return errors.New(errors.ErrCodeDuplicateKey, "duplicate edge key %q", k)
		}
		edges[k] = true
	}
	return nil
}

func (e Edge) key() string {
	if e.Key != "" {
		return e.Key
	}
	return e.Source + "->" + e.Target
}

// ToEngine validates g and converts it into engine input. The returned
// nodes are fresh and receive positions from the engine.
func (g Graph) ToEngine() ([]*layout.Node, []*layout.Edge, error) {
	if err := g.Validate(); err != nil {
		return nil, nil, err
	}
	nodes := make([]*layout.Node, len(g.Nodes))
	for i, n := range g.Nodes {
		nodes[i] = &layout.Node{
			Key:    n.Key,
			Attrs:  layout.AttrsOf(n.Attrs),
			X:      n.X,
			Y:      n.Y,
			Width:  n.Width,
			Height: n.Height,
			Radius: n.Radius,
			Color:  n.Color,
			Fixed:  n.Fixed,
		}
	}
	edges := make([]*layout.Edge, len(g.Edges))
	for i, e := range g.Edges {
		edges[i] = &layout.Edge{Key: e.key(), Source: e.Source, Target: e.Target, Length: e.Length}
	}
	return nodes, edges, nil
}

// DefaultAttrs returns the graph defaults as attribute values.
func (g Graph) DefaultAttrs() layout.Attrs {
	if len(g.Defaults) == 0 {
		return nil
	}
	return layout.AttrsOf(g.Defaults)
}

// Positions extracts the computed centers of nodes in order.
func Positions(nodes []*layout.Node) []Position {
	out := make([]Position, len(nodes))
	for i, n := range nodes {
		out[i] = Position{Key: n.Key, X: n.X, Y: n.Y}
	}
	return out
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
