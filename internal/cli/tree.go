package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackflex/pkg/core/address"
	"github.com/matzehuels/stackflex/pkg/core/tree"
	"github.com/matzehuels/stackflex/pkg/graph"
)

// treeCommand creates the tree command, a debugging aid that shows how keys
// nest into flexbox slots.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		format    string
		output    string
		delimiter string
		keys      bool
	)

	cmd := &cobra.Command{
		Use:   "tree [graph.json|graph.yaml]",
		Short: "Show the flexbox hierarchy implied by node keys",
		Long: `Show the flexbox hierarchy implied by node keys.

Slots that no node occupies are drawn dashed; the layout fills them with
placeholders. The output is Graphviz DOT, SVG rendered with Graphviz, or with
--keys the encoded key of every slot in layout order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "dot" && format != "svg" {
				return fmt.Errorf("invalid format: %q (must be one of: dot, svg)", format)
			}
			g, err := graph.ReadGraphFile(args[0])
			if err != nil {
				return fmt.Errorf("load graph %s: %w", args[0], err)
			}
			nodes, _, err := g.ToEngine()
			if err != nil {
				return err
			}
			if delimiter == "" {
				delimiter = c.cfg.Layout.Delimiter
			}
			codec := address.Delimited{Sep: delimiter}
			root, err := tree.Build(nodes, codec)
			if err != nil {
				return err
			}
			synthesized := tree.EnsureInteriorNodes(root)
			c.Logger.Debug("built tree", "slots", tree.Len(root), "placeholders", synthesized)

			if keys {
				for _, k := range tree.Keys(root, codec)[1:] {
					fmt.Fprintln(c.out, k)
				}
				return nil
			}

			data := []byte(tree.ToDOT(root, codec))
			if format == "svg" {
				if data, err = tree.RenderSVG(cmd.Context(), string(data)); err != nil {
					return err
				}
			}
			if output == "" || output == "-" {
				_, err = c.out.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess(c.out, "Tree written")
			printFile(c.out, output)
			printDetail(c.out, "%d slots, %d placeholders", tree.Len(root), synthesized)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot, svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&delimiter, "delimiter", "", `key delimiter (default ",")`)
	cmd.Flags().BoolVar(&keys, "keys", false, "list slot keys instead of drawing the tree")
	return cmd
}
