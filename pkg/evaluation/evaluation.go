// Package evaluation measures how faithfully a skeleton describes a shape.
//
// Two metrics are provided: the symmetric area difference between a
// reference raster and a reconstruction ([SymDiffArea]), and a
// Hausdorff-style distance from the skeleton's disks back to the reference
// boundary ([HausDist]). All functions are pure and never modify their
// inputs.
package evaluation

import (
	"math"

	"github.com/matzehuels/medialaxis/pkg/boundary"
	"github.com/matzehuels/medialaxis/pkg/shape"
	"github.com/matzehuels/medialaxis/pkg/skeleton"
	"github.com/matzehuels/medialaxis/pkg/skinning"
)

// SymDiffCount returns |A ∪ B| - |A ∩ B|: the number of pixels that are
// foreground in exactly one of the two shapes. Shapes of different size are
// compared over the union of their extents.
func SymDiffCount(a, b *shape.Shape) int {
	w, h := max(a.Width(), b.Width()), max(a.Height(), b.Height())
	n := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if a.At(x, y) != b.At(x, y) {
				n++
			}
		}
	}
	return n
}

// SymDiffArea returns SymDiffCount normalised by the reference area. It is
// 0 when both shapes are empty and +Inf when only the reference is empty.
// Multiply by 100 for a percentage.
func SymDiffArea(ref, cmp *shape.Shape) float64 {
	d := SymDiffCount(ref, cmp)
	area := ref.Area()
	if area == 0 {
		if d == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return float64(d) / float64(area)
}

// HausDist returns the largest distance from a point of the skeleton's
// disks to the reference boundary. For each node and each boundary vertex
// associated with it, the vertex is projected radially onto the node's
// circle and the distance from that projection to the nearest boundary
// vertex is taken.
func HausDist(g *skeleton.Graph, bnd *boundary.Boundary) float64 {
	if bnd.Len() == 0 {
		return 0
	}
	idx := newGridIndex(bnd)
	worst := 0.0
	for _, n := range g.Nodes() {
		for _, b := range n.Bounds {
			if b < 0 || b >= bnd.Len() {
				continue
			}
			q := n.Disk.Project(bnd.Point(b))
			worst = math.Max(worst, idx.nearest(q))
		}
	}
	return worst
}

// BoundaryHausDist returns the symmetric Hausdorff distance between the
// vertex sets of two boundaries. It is +Inf when exactly one of them is
// empty.
func BoundaryHausDist(a, b *boundary.Boundary) float64 {
	switch {
	case a.Len() == 0 && b.Len() == 0:
		return 0
	case a.Len() == 0 || b.Len() == 0:
		return math.Inf(1)
	}
	return math.Max(directed(a, b), directed(b, a))
}

func directed(from, to *boundary.Boundary) float64 {
	idx := newGridIndex(to)
	worst := 0.0
	for i := 0; i < from.Len(); i++ {
		worst = math.Max(worst, idx.nearest(from.Point(i)))
	}
	return worst
}

// BranchCount returns the branch count of g; see skeleton.Graph.BranchCount.
func BranchCount(g *skeleton.Graph) int { return g.BranchCount() }

// Metrics summarises the fidelity of a skeleton.
type Metrics struct {
	// AreaDiffPct is the symmetric area difference between the reference
	// and the disk-union reconstruction, in percent of the reference area.
	AreaDiffPct float64 `json:"area_diff_pct"`
	Hausdorff   float64 `json:"hausdorff"`
	Nodes       int     `json:"nodes"`
	Edges       int     `json:"edges"`
	Branches    int     `json:"branches"`
}

// Evaluate computes all metrics of g against the reference shape and its
// boundary.
func Evaluate(ref *shape.Shape, bnd *boundary.Boundary, g *skeleton.Graph) Metrics {
	filled := skinning.Fill(ref.Width(), ref.Height(), g)
	return Metrics{
		AreaDiffPct: SymDiffArea(ref, filled) * 100,
		Hausdorff:   HausDist(g, bnd),
		Nodes:       g.NodeCount(),
		Edges:       g.EdgeCount(),
		Branches:    g.BranchCount(),
	}
}
