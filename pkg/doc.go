// Package pkg provides the core libraries for Medialaxis, a 2D medial axis
// skeletonizer for binary shapes.
//
// # Overview
//
// A skeleton is a graph of disks inside a shape whose union reconstructs
// the shape. Medialaxis computes it by sphere propagation with a
// guaranteed reconstruction tolerance, prunes it with the classic
// filtration operators, and measures how well it reconstructs the input.
// The pkg directory is organized into these areas:
//
//  1. [geom], [shape], [boundary] - points and disks, binary rasters, and
//     the traced outer boundary
//  2. [skeleton] - the skeleton graph, with [skeleton/propagation] building
//     it and [skeleton/pruning] simplifying it
//  3. [skinning], [evaluation] - raster reconstruction and fidelity metrics
//  4. [io], [render] - text and JSON formats, previews and diagrams
//  5. [pipeline] - orchestration (load → prepare → extract → skeletonize →
//     evaluate → prune) with caching
//  6. [cache], [errors], [observability], [buildinfo] - infrastructure
//
// # Architecture
//
// The typical data flow:
//
//	Mask image (PNG, BMP, TIFF, ...)
//	         ↓
//	    [shape] package (threshold + 3×3 closing)
//	         ↓
//	    [boundary] package (single outer loop, 8-connected)
//	         ↓
//	    [skeleton/propagation] package (sphere propagation)
//	         ↓
//	    [skeleton/pruning] package (SAT, λ, θ)
//	         ↓
//	    text files, JSON, PNG/SVG/PDF/DOT
//
// # Quick Start
//
//	s, _ := pipeline.LoadShape("hand.png", pipeline.DefaultThreshold)
//	r := pipeline.NewRunner(nil, nil, nil)
//	res, err := r.Skeletonize(ctx, s, pipeline.DefaultOptions())
//	if err != nil {
//	    return err // FIDELITY when the skeleton misses the tolerance
//	}
//	pruned, _ := r.PruneResult(ctx, res, pipeline.MethodScaleAxis, 1.3)
//
// The medialaxis command wraps the same pipeline; see cmd/medialaxis.
package pkg
