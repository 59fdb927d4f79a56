// Package io reads and writes skeletons, boundaries and branches.
//
// # Skeleton Files
//
// A skeleton saved under a path such as "out/skel.txt" is split across
// three plain-text files in the same directory:
//
//	out/skelpoints_skel.txt   one "x y" line per node centre
//	out/skeledges_skel.txt    one "i j" line per edge (0-based node indices)
//	out/skelbounds_skel.txt   one line per node: its boundary vertex indices
//
// [WriteSkeleton] and [ReadSkeleton] handle all three; [WritePoints],
// [WriteEdges] and [WriteBounds] (and their Read counterparts) work on any
// io.Writer or io.Reader. The format does not store radii or generating
// vertices: [RestoreRadii] recomputes radii from the boundary.
//
// # Boundary Files
//
// The first line holds the vertex count N, followed by N lines of
// "x y prev next". [ReadBoundary] validates the single-cycle invariant, so a
// written boundary reads back identically or not at all.
//
// # Branch Files
//
// B-spline branches ([skeleton.Curve3D]) are stored as the degree, the knot
// count and knots, then the control point count and "x y z r" rows.
//
// # Exports
//
// [ExportSVG] writes a scaled overlay for viewing next to a rendered PNG
// and [ExportOCaml] writes a graph construction script. JSON
// ([WriteJSON], [ReadJSON], [MarshalSkeleton]) keeps every field of the
// graph and is used by the cache and the HTTP API.
//
// # Errors
//
// File functions open their file, close it on every path, and wrap errors
// with the file path. Format violations wrap [ErrMalformed].
package io
