// Package render draws skeletons for inspection.
//
// # Previews
//
// [Preview] paints a raster overlay with gogpu/gg: the reference shape in
// white, its boundary in black and the skeleton in blue. With
// [PreviewOptions].Fill the skinned reconstruction is shaded, so pixels the
// skeleton misses stay white and pixels it adds show green.
//
//	c, err := render.Preview(ref, bnd, g, render.PreviewOptions{Fill: true})
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//	err = c.SavePNG("preview.png")
//
// # Format Conversion
//
// [ToPDF] converts any SVG using the external rsvg-convert tool
// (from librsvg).
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage renders the skeleton graph itself through
// Graphviz, with nodes pinned at their disk centres.
//
// [nodelink]: github.com/matzehuels/medialaxis/pkg/render/nodelink
package render
