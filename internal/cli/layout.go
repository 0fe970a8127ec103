package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackflex/pkg/core/layout"
	"github.com/matzehuels/stackflex/pkg/graph"
	"github.com/matzehuels/stackflex/pkg/pipeline"
)

type layoutFlags struct {
	opts    pipeline.Options
	output  string
	noCache bool
	table   bool
	watch   bool
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var f layoutFlags

	cmd := &cobra.Command{
		Use:   "layout [graph.json|graph.yaml]",
		Short: "Compute node positions for a graph",
		Long: `Compute node positions for a graph.

The flexbox algorithm nests nodes by key: with the default delimiter "a,b"
is a child of "a". Node attributes (width, flexDirection, padding, ...) are
passed to the box solver and inherited by descendants. Interior slots that no
node occupies are synthesized and reported as placeholders.

The force algorithm runs a seeded simulation over the nodes and edges;
--relayout follows it with a collision pass that pushes overlapping nodes
apart.

The result is written as JSON to <input>.layout.json, or to the file given
with -o ("-" for stdout). Results are cached.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !f.watch {
				return c.runLayout(cmd.Context(), args[0], f)
			}
			return watchFile(cmd.Context(), c.Logger, args[0], func() {
				if err := c.runLayout(cmd.Context(), args[0], f); err != nil {
					printError(c.out, "%v", err)
				}
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.output, "output", "o", "", "output file (default: <input>.layout.json, - for stdout)")
	flags.BoolVar(&f.noCache, "no-cache", false, "disable caching")
	flags.BoolVar(&f.opts.Refresh, "refresh", false, "recompute even when a cached result exists")
	flags.BoolVar(&f.table, "table", false, "print positions as a table")
	flags.BoolVarP(&f.watch, "watch", "w", false, "recompute whenever the input file changes")
	addLayoutFlags(cmd, &f.opts)

	return cmd
}

// addLayoutFlags binds the engine options shared by layout and serve.
// Zero values fall back to the config file.
func addLayoutFlags(cmd *cobra.Command, o *pipeline.Options) {
	flags := cmd.Flags()
	flags.StringVarP(&o.Algorithm, "algorithm", "a", "", "layout algorithm: flexbox (default), force")
	flags.Float64Var(&o.Width, "width", 0, "viewport width (default 800)")
	flags.Float64Var(&o.Height, "height", 0, "viewport height (default 600)")
	flags.StringVar(&o.Algo, "algo", "", "flexbox solver backend: css-layout (default), yoga-layout")
	flags.StringVar(&o.Delimiter, "delimiter", "", `key delimiter (default ",")`)
	flags.Float64Var(&o.BaseLength, "base-length", 0, "force: base link length (default 30)")
	flags.StringVar(&o.LengthStrategy, "length-strategy", "", "force: symmetric (default), jaccard, individual, none")
	flags.IntVar(&o.Iterations, "iterations", 0, "force: tick limit (default 300)")
	flags.Uint64Var(&o.Seed, "seed", 0, "force: random seed (default 42)")
	flags.BoolVar(&o.Relayout, "relayout", false, "force: resolve node overlaps after the simulation")
}

// runLayout loads the graph, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, f layoutFlags) error {
	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, f.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.layoutOptions(f.opts)
	prog := newProgress(c.Logger)

	toStdout := f.output == "-"
	var spinner *Spinner
	if !toStdout {
		spinner = newSpinnerWithContext(ctx, "Computing layout...")
		spinner.Start()
	}
	res, err := runner.Run(ctx, g, opts)
	if err != nil {
		if spinner != nil {
			spinner.StopWithError(c.out, "Layout failed")
		}
		return fmt.Errorf("compute layout: %w", err)
	}
	if spinner != nil {
		spinner.Stop()
	}
	prog.done("laid out graph", "nodes", len(res.Layout.Nodes), "cached", res.CacheHit)

	if toStdout {
		return graph.WriteLayout(res.Layout, c.out)
	}

	outputPath := f.output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
	}
	if err := writeLayoutFile(res.Layout, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess(c.out, "Layout complete (%s)", res.Layout.Algorithm)
	printFile(c.out, outputPath)
	printStats(c.out, len(res.Layout.Nodes), len(res.Layout.Placeholders), res.CacheHit)
	if f.table {
		printPositions(c.out, res.Layout)
	}
	if res.Layout.Algorithm == layout.AlgorithmFlexbox && !f.watch {
		printNextStep(c.out, "Inspect the hierarchy", appName+" tree "+input)
	}
	return nil
}

func writeLayoutFile(l graph.Layout, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := graph.WriteLayout(l, file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
