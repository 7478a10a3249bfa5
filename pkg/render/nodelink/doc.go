// Package nodelink draws narrative graphs as node-link diagrams.
//
// # Usage
//
// Convert the DAG or the thread tree of a result to DOT, then render:
//
//	dot := nodelink.DAGToDOT(r.DAG, nodelink.Options{Anchor: r.Anchor})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DAG is drawn left to right in time order. The tree is drawn the same
// way with one rank per column, so that items at equal hop distance from
// the anchor line up vertically.
//
// # Options
//
//   - Label: maps an item to its node label; nil prints the id
//   - Anchor: the anchor item, drawn highlighted
//   - Highlight: threads whose edges are drawn bold, e.g. the answer of
//     an edge query
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (see package render).
package nodelink
