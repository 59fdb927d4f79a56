// Package nodelink renders skeleton graphs as node-link diagrams.
//
// # Usage
//
// Convert a skeleton to DOT, then lay it out and render it:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//
// # Layout
//
// Every node carries a pinned position ("x,y!") taken from its disk centre,
// so neato draws the skeleton in image space instead of inventing a layout.
// Junctions and end points (degree other than 2) are filled light blue.
//
// # Dependencies
//
// SVG rendering runs in-process through [github.com/goccy/go-graphviz].
// PDF conversion requires librsvg (rsvg-convert).
package nodelink
