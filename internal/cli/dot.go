package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/narrative/pkg/errors"
	"github.com/matzehuels/narrative/pkg/item"
	"github.com/matzehuels/narrative/pkg/render"
	"github.com/matzehuels/narrative/pkg/render/nodelink"
	"github.com/matzehuels/narrative/pkg/tree"
)

const (
	viewDAG  = "dag"  // the graph over the similarity set
	viewTree = "tree" // the tree of threads around the anchor
)

// dotOpts holds the command-line flags for the dot command.
type dotOpts struct {
	source sourceFlags
	view   string
	format string
	output string
	edge   string
	scale  float64
}

// dotCommand creates the dot command, which exports the graph or the tree
// of a result as Graphviz DOT, SVG, PDF or PNG.
func (c *CLI) dotCommand() *cobra.Command {
	opts := dotOpts{view: viewDAG, format: render.FormatDOT, scale: 2}

	cmd := &cobra.Command{
		Use:   "dot <result>",
		Short: "Export the graph or tree of a result as DOT, SVG, PDF or PNG",
		Example: `  narrative dot result.json | dot -Tsvg > graph.svg
  narrative dot result.json --view tree -f svg -o tree.svg --edge 12->17
  narrative dot result.json -f png -i posts.json   # label nodes with post texts`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.view != viewDAG && opts.view != viewTree {
				return errs.New(errs.ErrCodeInvalidInput, "invalid view: %q (must be dag or tree)", opts.view)
			}
			if err := render.ValidateFormat(opts.format); err != nil {
				return err
			}
			return c.runDot(cmd.Context(), args[0], &opts)
		},
	}

	opts.source.register(cmd)
	cmd.Flags().StringVar(&opts.view, "view", opts.view, "what to draw: dag, tree")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg, pdf, png")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout for dot, <result>.<view>.<format> otherwise)")
	cmd.Flags().StringVar(&opts.edge, "edge", "", "highlight the threads through this tree edge (from->to)")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	completeValues(cmd, "view", viewDAG, viewTree)
	completeValues(cmd, "format", render.FormatDOT, render.FormatSVG, render.FormatPDF, render.FormatPNG)

	return cmd
}

func (c *CLI) runDot(ctx context.Context, ref string, opts *dotOpts) error {
	res, err := c.loadResult(ctx, ref)
	if err != nil {
		return err
	}

	nopts := nodelink.Options{Anchor: res.Anchor}
	if opts.edge != "" {
		edge, err := tree.ParseEdgeKey(opts.edge)
		if err != nil {
			return err
		}
		if nopts.Highlight, err = res.ThreadsThrough(edge); err != nil {
			return err
		}
	}
	if opts.source.count() > 0 {
		corpus, err := c.loadCorpus(ctx, opts.source)
		if err != nil {
			return err
		}
		nopts.Label = textLabel(corpus)
	}

	var dot string
	if opts.view == viewTree {
		dot = nodelink.TreeToDOT(res.Tree, nopts)
	} else {
		dot = nodelink.DAGToDOT(res.DAG, nopts)
	}

	if opts.format == render.FormatDOT && opts.output == "" {
		fmt.Print(dot)
		return nil
	}

	data, err := convertDOT(ctx, dot, opts)
	if err != nil {
		return err
	}

	out := opts.output
	if out == "" {
		base := strings.TrimSuffix(filepath.Base(ref), filepath.Ext(ref))
		out = fmt.Sprintf("%s.%s.%s", base, opts.view, opts.format)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	printSuccess("Exported %s of item %d", opts.view, res.Anchor)
	printFile(out)
	return nil
}

func convertDOT(ctx context.Context, dot string, opts *dotOpts) ([]byte, error) {
	if opts.format == render.FormatDOT {
		return []byte(dot), nil
	}
	svg, err := nodelink.RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	switch opts.format {
	case render.FormatPDF:
		return render.ToPDF(ctx, svg)
	case render.FormatPNG:
		return render.ToPNG(ctx, svg, opts.scale)
	}
	return svg, nil
}

// textLabel labels nodes with their id and the start of their text.
func textLabel(corpus *item.Corpus) func(item.ID) string {
	return func(id item.ID) string {
		it, ok := corpus.Item(id)
		if !ok {
			return fmt.Sprint(id)
		}
		return fmt.Sprintf("%d\n%s", id, truncate(it.Text, 32))
	}
}
