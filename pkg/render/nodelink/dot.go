package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/narrative/pkg/dag"
	"github.com/matzehuels/narrative/pkg/item"
	"github.com/matzehuels/narrative/pkg/tree"
)

// Options configures diagram generation.
type Options struct {
	// Label returns the label of an item. Nil labels nodes by id.
	Label func(item.ID) string

	// Anchor is drawn highlighted. Use NoAnchor to disable.
	Anchor item.ID

	// Highlight lists threads whose edges are drawn bold.
	Highlight []dag.Thread
}

// NoAnchor disables anchor highlighting.
const NoAnchor item.ID = -1

func (o Options) label(id item.ID) string {
	if o.Label == nil {
		return strconv.Itoa(int(id))
	}
	return o.Label(id)
}

func (o Options) highlighted(from, to item.ID) bool {
	for _, th := range o.Highlight {
		if th.ContainsEdge(from, to) {
			return true
		}
	}
	return false
}

func header(buf *bytes.Buffer) {
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")
}

func writeNode(buf *bytes.Buffer, id item.ID, opts Options) {
	attrs := []string{fmt.Sprintf("label=%q", opts.label(id))}
	if id == opts.Anchor {
		attrs = append(attrs, "fillcolor=gold", "penwidth=2")
	}
	fmt.Fprintf(buf, "  n%d [%s];\n", id, strings.Join(attrs, ", "))
}

func writeEdge(buf *bytes.Buffer, from, to item.ID, weight float64, opts Options) {
	var attrs []string
	if weight > 0 {
		attrs = append(attrs, fmt.Sprintf("label=\"%.2f\"", weight))
	}
	if opts.highlighted(from, to) {
		attrs = append(attrs, "penwidth=3", "color=firebrick")
	}
	if len(attrs) == 0 {
		fmt.Fprintf(buf, "  n%d -> n%d;\n", from, to)
		return
	}
	fmt.Fprintf(buf, "  n%d -> n%d [%s];\n", from, to, strings.Join(attrs, ", "))
}

// DAGToDOT converts a narrative DAG to Graphviz DOT. Edges are labelled
// with their pairwise score.
func DAGToDOT(g *dag.DAG, opts Options) string {
	var buf bytes.Buffer
	header(&buf)

	vertices := g.Vertices()
	for _, v := range vertices {
		writeNode(&buf, v, opts)
	}
	buf.WriteString("\n")
	for _, v := range vertices {
		for _, e := range g.Edges(v) {
			writeEdge(&buf, v, e.To, e.Weight, opts)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// TreeToDOT converts a thread tree to Graphviz DOT with one rank per
// column. opts.Anchor is ignored; the tree's own anchor is highlighted.
//
// An item can appear in several columns, so nodes are named by column
// and id.
func TreeToDOT(t *tree.Tree, opts Options) string {
	opts.Anchor = NoAnchor

	var buf bytes.Buffer
	header(&buf)

	name := func(dir tree.Direction, hop int, id item.ID) string {
		if dir == tree.Backward {
			return fmt.Sprintf("b%d_%d", hop, id)
		}
		return fmt.Sprintf("f%d_%d", hop, id)
	}

	fmt.Fprintf(&buf, "  anchor [label=%q, fillcolor=gold, penwidth=2];\n", opts.label(t.Anchor.ID))
	for _, dir := range []tree.Direction{tree.Backward, tree.Forward} {
		for hop, col := range t.Side(dir) {
			buf.WriteString("  { rank=same;")
			for _, id := range col.IDs() {
				fmt.Fprintf(&buf, " %s;", name(dir, hop, id))
			}
			buf.WriteString(" }\n")
			for _, id := range col.IDs() {
				fmt.Fprintf(&buf, "  %s [label=%q];\n", name(dir, hop, id), opts.label(id))
			}
		}
	}
	buf.WriteString("\n")

	edge := func(from, to string, u, v item.ID) {
		if opts.highlighted(u, v) {
			fmt.Fprintf(&buf, "  %s -> %s [penwidth=3, color=firebrick];\n", from, to)
			return
		}
		fmt.Fprintf(&buf, "  %s -> %s;\n", from, to)
	}

	// Links toward the anchor: Before[k+1] -> Before[k] -> anchor.
	for hop, col := range t.Before {
		for _, id := range col.IDs() {
			n := col[id]
			for _, child := range n.Children {
				to := "anchor"
				if hop > 0 {
					to = name(tree.Backward, hop-1, child)
				}
				edge(name(tree.Backward, hop, id), to, id, child)
			}
		}
	}
	// Links away from the anchor: anchor -> After[0] -> After[1].
	for hop, col := range t.After {
		for _, id := range col.IDs() {
			n := col[id]
			for _, parent := range n.Parents {
				from := "anchor"
				if hop > 0 {
					from = name(tree.Forward, hop-1, parent)
				}
				edge(from, name(tree.Forward, hop, id), parent, id)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
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
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg tag by one whose
// width and height match the viewBox, so the image scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[3]), 64)
	h, _ := strconv.ParseFloat(string(m[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
