package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/narrative/pkg/dag"
	"github.com/matzehuels/narrative/pkg/graph"
	"github.com/matzehuels/narrative/pkg/item"
	"github.com/matzehuels/narrative/pkg/pipeline"
)

// threadsOpts holds the command-line flags for the threads command.
type threadsOpts struct {
	source  sourceFlags
	engine  engineFlags
	anchor  int
	output  string
	noCache bool
	refresh bool
	texts   bool
}

// threadsCommand creates the threads command, which computes the
// narrative threads through an anchor and saves the result.
func (c *CLI) threadsCommand() *cobra.Command {
	opts := threadsOpts{anchor: -1}

	cmd := &cobra.Command{
		Use:   "threads",
		Short: "Compute the narrative threads through an anchor item",
		Example: `  narrative threads -i posts.json --anchor 12
  narrative threads --sqlite posts.db --anchor 12 --edge-threshold 0.3 -o irene.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runThreads(cmd.Context(), &opts)
		},
	}

	opts.source.register(cmd)
	opts.engine.register(cmd)
	cmd.Flags().IntVarP(&opts.anchor, "anchor", "a", opts.anchor, "anchor item id (required)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", defaultResultFile, "result file")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if a cached result exists")
	cmd.Flags().BoolVar(&opts.texts, "texts", false, "print item texts along the threads")
	_ = cmd.MarkFlagRequired("anchor")

	return cmd
}

func (c *CLI) runThreads(ctx context.Context, opts *threadsOpts) error {
	engine, err := c.newEngine(ctx, opts.source, opts.engine)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spin := startSpinner(ctx, os.Stderr, fmt.Sprintf("Building threads through item %d...", opts.anchor))
	res, err := runner.Execute(ctx, engine, pipeline.Options{
		Anchor:  item.ID(opts.anchor),
		Refresh: opts.refresh,
	})
	spin.stop()
	if err != nil {
		return err
	}

	if err := graph.WriteResultFile(res.Result, opts.output); err != nil {
		return err
	}

	r := res.Result
	printSuccess("Threads through item %s", StyleHighlight.Render(fmt.Sprint(r.Anchor)))
	printStats(r.Stats.SetSize, r.Stats.EdgeCount, len(r.Threads), res.CacheInfo.Hit)
	printNewline()
	printThreads(r.Threads, engine.Corpus(), opts.texts)
	printNewline()
	printKeyValue("Result", r.ID)
	printFile(opts.output)

	if edges := r.Edges(); len(edges) > 0 {
		printNewline()
		printNextStep("Query an edge", fmt.Sprintf("%s query %s %s", appName, opts.output, edges[0]))
	}
	return nil
}

// printThreads prints one line per thread, optionally followed by the
// item texts.
func printThreads(threads []dag.Thread, corpus *item.Corpus, texts bool) {
	if len(threads) == 0 {
		printWarning("No threads pass through the anchor")
		return
	}
	for i, t := range threads {
		fmt.Printf("  %s %s\n", StyleDim.Render(fmt.Sprintf("%2d.", i+1)), formatThread(t))
		if texts && corpus != nil {
			for _, id := range t {
				if it, ok := corpus.Item(id); ok {
					printDetail("%4d  %s  %s", id, it.Timestamp.Format("2006-01-02 15:04"), truncate(it.Text, 72))
				}
			}
		}
	}
}

func formatThread(t dag.Thread) string {
	parts := make([]string, len(t))
	for i, id := range t {
		parts[i] = StyleNumber.Render(fmt.Sprint(id))
	}
	return strings.Join(parts, StyleDim.Render(" "+iconArrow+" "))
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}
