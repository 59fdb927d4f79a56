// Package pruning provides the skeleton simplification operators: the
// scale axis transform, the lambda medial axis and the theta medial axis.
//
// # Overview
//
// Propagated skeletons carry short spurious branches caused by pixel noise
// on the boundary. Each operator assigns every node a significance value
// computed once on the input graph and removes the insignificant ones:
//
//   - [ScaleAxis]: the smallest factor s at which the node's disk, scaled
//     by s, fits inside another scaled, larger disk. Nodes with a factor up
//     to s are removed.
//   - [LambdaMedialAxis]: half the distance between the two boundary points
//     generating the node's disk. Nodes below λ are removed.
//   - [ThetaMedialAxis]: the angle at the disk centre between the two
//     generating boundary points. Nodes below θ (radians) are removed.
//
// # Peeling
//
// Only leaves are removed, one at a time, smallest significance first,
// until no insignificant leaf remains. Removing leaves never disconnects a
// component, and in each component the most significant node is kept, so a
// non-empty graph never prunes to nothing. Because significance values are
// fixed before peeling starts, raising the threshold can only remove more
// nodes: the node count is non-increasing in s, λ and θ.
//
// The boundary vertices associated with a removed node are handed to the
// neighbour it was attached to, so the association lists of the result
// still cover the boundary exactly once.
//
// # Usage
//
// Operators never modify their input; they return a new graph:
//
//	pruned, err := pruning.ScaleAxis(g, 1.3)
//
// The WithResult variants also report how many nodes were removed.
package pruning
