// Package skinning reconstructs raster shapes from skeletons and
// boundaries.
//
// [Fill] rasterizes the union of a skeleton's node disks; it is the
// reconstruction the evaluator compares against the input shape.
// [FillBranches] also sweeps disks along every edge, which gives the
// smoother reconstruction used in previews. [FillBoundary] rasterizes the
// interior of a closed boundary polygon.
package skinning

import (
	"github.com/matzehuels/medialaxis/pkg/boundary"
	"github.com/matzehuels/medialaxis/pkg/geom"
	"github.com/matzehuels/medialaxis/pkg/shape"
	"github.com/matzehuels/medialaxis/pkg/skeleton"
)

// Fill returns a width×height shape in which pixel (x, y) is foreground
// iff (x-cx)² + (y-cy)² <= r² for the disk of some node.
func Fill(width, height int, g *skeleton.Graph) *shape.Shape {
	bits := make([]bool, width*height)
	for _, n := range g.Nodes() {
		paint(bits, width, height, n.Disk)
	}
	s, _ := shape.New(width, height, bits)
	return s
}

// FillBranches is Fill plus the disks interpolated along every edge,
// sampled at most one pixel apart.
func FillBranches(width, height int, g *skeleton.Graph) *shape.Shape {
	bits := make([]bool, width*height)
	for _, n := range g.Nodes() {
		paint(bits, width, height, n.Disk)
	}
	for _, e := range g.Edges() {
		sweep(bits, width, height, g.Branch(e))
	}
	s, _ := shape.New(width, height, bits)
	return s
}

func sweep(bits []bool, w, h int, br skeleton.BranchGeometry) {
	steps := int(br.Len()) + 1
	for i := 0; i <= steps; i++ {
		paint(bits, w, h, br.At(float64(i)/float64(steps)))
	}
}

func paint(bits []bool, w, h int, d geom.Disk) {
	if d.Radius < 0 {
		return
	}
	x0, y0, x1, y1 := d.Bounds()
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, w-1), min(y1, h-1)
	r2 := d.Radius * d.Radius
	for y := y0; y <= y1; y++ {
		dy := float64(y) - d.Center.Y
		for x := x0; x <= x1; x++ {
			dx := float64(x) - d.Center.X
			if dx*dx+dy*dy <= r2 {
				bits[y*w+x] = true
			}
		}
	}
}

// FillBoundary returns the shape enclosed by a closed boundary: its
// vertices plus every pixel centre strictly inside the polygon (even-odd
// rule with half-open edges).
func FillBoundary(width, height int, bnd *boundary.Boundary) *shape.Shape {
	bits := make([]bool, width*height)
	for i := 0; i < bnd.Len(); i++ {
		v := bnd.Vertex(i)
		if v.X >= 0 && v.X < width && v.Y >= 0 && v.Y < height {
			bits[v.Y*width+v.X] = true
		}
	}

	var xs []float64
	for y := 0; y < height; y++ {
		py := float64(y)
		xs = xs[:0]
		for i := 0; i < bnd.Len(); i++ {
			a, b := bnd.Point(i), bnd.Point(bnd.Next(i))
			if (a.Y > py) == (b.Y > py) {
				continue
			}
			xs = append(xs, a.X+(py-a.Y)*(b.X-a.X)/(b.Y-a.Y))
		}
		for x := 0; x < width; x++ {
			px := float64(x)
			inside := false
			for _, cx := range xs {
				if cx > px {
					inside = !inside
				}
			}
			if inside {
				bits[y*width+x] = true
			}
		}
	}
	s, _ := shape.New(width, height, bits)
	return s
}
