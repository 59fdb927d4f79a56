package io

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/matzehuels/medialaxis/pkg/skeleton"
)

// SVGScale is the magnification applied to pixel coordinates in SVG
// exports.
const SVGScale = 4

// exportName is the file base name without directory and extension.
func exportName(path string) string {
	base := filepath.Base(path)
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	return base
}

// WriteSVG writes an SVG overlay of the skeleton, scaled by SVGScale, over
// the background image "<name>.png": one path per edge and a labelled
// circle per node. Node labels are 1-based.
func WriteSVG(w io.Writer, g *skeleton.Graph, name string, width, height int) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, `<?xml version="1.0" encoding="UTF-8" standalone="no"?>`)
	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" height="%dpx" width="%dpx">`+"\n",
		SVGScale*height, SVGScale*width)
	fmt.Fprintln(bw, "<g>")
	fmt.Fprintf(bw, `<image xlink:href="./%s.png" x="0" y="0" height="%d" width="%d"/>`+"\n",
		name, SVGScale*height, SVGScale*width)

	for _, e := range g.Edges() {
		a, b := g.Node(e.From).Center(), g.Node(e.To).Center()
		fmt.Fprintf(bw, `<path d="M %s %s L %s %s" style="stroke:#000000;stroke-width:4" />`+"\n",
			formatFloat(SVGScale*a.X), formatFloat(SVGScale*a.Y), formatFloat(SVGScale*b.X), formatFloat(SVGScale*b.Y))
	}
	fmt.Fprintln(bw)

	for i, n := range g.Nodes() {
		c := n.Center()
		fmt.Fprintf(bw, `<circle r="20px" cy="%s" cx="%s" style="color:#000000;fill:#ffffff;stroke:#000000;stroke-width:4" />`+"\n",
			formatFloat(SVGScale*c.Y), formatFloat(SVGScale*c.X))
		fmt.Fprintf(bw, `<text y="%s" x="%s" style="font-size:15px">%d</text>`+"\n",
			formatFloat(SVGScale*c.Y), formatFloat(SVGScale*(c.X-3)), i+1)
	}
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "</g>")
	fmt.Fprintln(bw, "</svg>")
	return bw.Flush()
}

// ExportSVG writes WriteSVG output to path. The background image name is
// derived from path.
func ExportSVG(g *skeleton.Graph, path string, width, height int) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteSVG(w, g, exportName(path), width, height)
	})
}

// WriteOCaml writes the skeleton as an OCaml script building a graph with
// create, createv, add_vertex and add_edge. Vertices are numbered from 1.
func WriteOCaml(w io.Writer, g *skeleton.Graph, name string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "let %s = create ();;\n\n", name)
	for i, n := range g.Nodes() {
		c := n.Center()
		fmt.Fprintf(bw, "let %sv%d = createv (%d, (%s, %s), %s);;\n",
			name, i+1, i+1, formatFloat(c.X), formatFloat(c.Y), formatFloat(n.Radius()))
	}
	fmt.Fprintln(bw)
	for i := range g.Nodes() {
		fmt.Fprintf(bw, "add_vertex %s %sv%d;;\n", name, name, i+1)
	}
	fmt.Fprintln(bw)
	for _, e := range g.Edges() {
		fmt.Fprintf(bw, "add_edge %s %sv%d %sv%d;;\n", name, name, e.From+1, name, e.To+1)
	}
	fmt.Fprintln(bw)
	return bw.Flush()
}

// ExportOCaml writes WriteOCaml output to path, naming the graph after the
// file.
func ExportOCaml(g *skeleton.Graph, path string) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteOCaml(w, g, exportName(path))
	})
}
