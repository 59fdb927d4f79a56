// Package boundary provides the ordered closed polygon (DiscreteBoundary)
// traced around a binary shape, and the extractor that produces it.
//
// # Representation
//
// A [Boundary] stores integer pixel coordinates plus explicit predecessor
// and successor indices per vertex. For boundaries produced by [Extract] or
// [FromPolygon] the links follow index order, but readers of the boundary
// file format may supply arbitrary links; [Boundary.Validate] checks that
// they still form one closed cycle through every vertex.
//
// # Extraction
//
// [Extract] runs Moore-neighbour tracing from the first foreground pixel in
// raster order. Only simply connected, single-component shapes are
// accepted: any foreground pixel with a background 4-neighbour that the
// outer trace did not visit makes extraction fail with [ErrNotSingleLoop].
//
// # Geometry
//
// The skeletonizer needs per-vertex inward normals ([Boundary.Normal]),
// estimated from a chord over a small window of neighbours so that the
// staircase of a pixel contour does not produce axis-aligned normals only.
package boundary
