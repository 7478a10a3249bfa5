// Package render turns computed narrative structures into pictures.
//
// # Overview
//
// Rendering is a debugging and presentation surface; the engine never
// depends on it. This package provides generic format conversion, and the
// [nodelink] subpackage draws the DAG and the thread tree with Graphviz.
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg, _ := nodelink.RenderSVG(dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/matzehuels/narrative/pkg/render/nodelink
package render
