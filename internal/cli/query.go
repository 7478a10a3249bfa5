package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/narrative/pkg/graph"
	"github.com/matzehuels/narrative/pkg/narrative"
	"github.com/matzehuels/narrative/pkg/tree"
)

// queryCommand creates the query command, which lists the threads of a
// result that pass through one tree edge.
func (c *CLI) queryCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "query <result> <from->to>",
		Short: "List the threads of a result that pass through an edge",
		Long: `List the threads of a result that pass through an edge of its tree.

The result is either a file written by threads or the ID of a result in
the local cache. Without an edge, the edges of the tree are listed.`,
		Example: `  narrative query result.json 12->17
  narrative query 6f1c2a0e-3c4b-4d8e-9a57-0b1e2f3a4b5c 12->17`,
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: completeEdges,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.loadResult(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(args) == 1 {
				return printEdges(res, asJSON)
			}
			return runQuery(res, args[1], asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
	return cmd
}

// loadResult reads a result file, or fetches a cached result when ref is
// a result ID and no such file exists.
func (c *CLI) loadResult(ctx context.Context, ref string) (*narrative.Result, error) {
	if _, err := os.Stat(ref); err != nil {
		if _, perr := uuid.Parse(ref); perr == nil {
			runner, err := c.newRunner(false)
			if err != nil {
				return nil, err
			}
			defer runner.Close()
			return runner.Fetch(ctx, ref)
		}
	}
	return graph.ReadResultFile(ref)
}

func runQuery(res *narrative.Result, rawEdge string, asJSON bool) error {
	edge, err := tree.ParseEdgeKey(rawEdge)
	if err != nil {
		return err
	}
	threads, err := res.ThreadsThrough(edge)
	if err != nil {
		return err
	}

	if asJSON {
		out := struct {
			ResultID string  `json:"result_id"`
			Edge     string  `json:"edge"`
			Threads  [][]int `json:"threads"`
		}{res.ID, edge.String(), [][]int{}}
		for _, t := range threads {
			ints := make([]int, len(t))
			for i, id := range t {
				ints[i] = int(id)
			}
			out.Threads = append(out.Threads, ints)
		}
		return writeJSON(out)
	}

	printInfo("Threads through %s", StyleHighlight.Render(edge.String()))
	printNewline()
	printThreads(threads, nil, false)
	return nil
}

func printEdges(res *narrative.Result, asJSON bool) error {
	edges := res.Edges()
	if asJSON {
		if edges == nil {
			edges = []tree.EdgeKey{}
		}
		return writeJSON(edges)
	}
	if len(edges) == 0 {
		printWarning("The tree of item %d has no edges", res.Anchor)
		return nil
	}
	printInfo("%d edges in the tree of item %d", len(edges), res.Anchor)
	for _, e := range edges {
		fmt.Println("  " + StyleValue.Render(e.String()))
	}
	return nil
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
