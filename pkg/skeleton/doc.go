// Package skeleton provides the skeleton graph produced by the
// skeletonizer and consumed by pruning, skinning and evaluation.
//
// # Arena Layout
//
// A [Graph] owns a flat table of [Node] records and a flat table of [Edge]
// records; nodes are referred to by their integer index. Each node carries
// its medial disk, the two boundary vertices that generated it, and the
// ordered list of boundary vertices it accounts for (its association list).
//
// Stages never mutate a graph they are handed. Pruning uses
// [Graph.Subgraph] to build a fresh arena and receives the index remapping.
//
// # Branches
//
// The continuous shape of a branch is described by a [BranchGeometry]:
// [Segment2D] for the straight edges of a propagated skeleton and
// [Curve3D] for B-spline branches read from branch files.
//
// # Counting Branches
//
// [Graph.BranchCount] sums the degrees of all nodes whose degree is not 2
// and halves the result. A path of three nodes has one branch; a star with
// three arms has three.
package skeleton
