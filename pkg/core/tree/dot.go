package tree

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stackflex/pkg/core/address"
)

// ToDOT converts the hierarchy to Graphviz DOT. Slot IDs are encoded keys;
// synthetic placeholders are drawn dashed and grey. The root's ID is the
// empty string, or the shortest run of underscores that no slot encodes to.
func ToDOT(root *Node, codec address.Codec) string {
	if codec == nil {
		codec = address.Default
	}
	top := rootID(root, codec)
	dotID := func(t *Node) string {
		if len(t.Address) == 0 {
			return top
		}
		return codec.Encode(t.Address)
	}
	var buf bytes.Buffer
	buf.WriteString("digraph tree {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("\n")

	Walk(root, func(t *Node) {
		fmt.Fprintf(&buf, "  %q [%s];\n", dotID(t), strings.Join(dotAttrs(t), ", "))
	})

	buf.WriteString("\n")
	Walk(root, func(t *Node) {
		for _, c := range t.Sorted() {
			fmt.Fprintf(&buf, "  %q -> %q;\n", dotID(t), dotID(c))
		}
	})

	buf.WriteString("}\n")
	return buf.String()
}

func rootID(root *Node, codec address.Codec) string {
	used := map[string]bool{}
	Walk(root, func(t *Node) {
		if len(t.Address) > 0 {
			used[codec.Encode(t.Address)] = true
		}
	})
	id := ""
	for used[id] {
		id += "_"
	}
	return id
}

func dotAttrs(t *Node) []string {
	label := t.Segment()
	if len(t.Address) == 0 {
		label = "(root)"
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if t.Payload == nil || t.Payload.Synthetic {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
