package boundary

import (
	"errors"
	"fmt"
	"math"

	"github.com/matzehuels/medialaxis/pkg/geom"
)

var (
	// ErrEmptyShape is returned by [Extract] when the raster has no
	// foreground pixel.
	ErrEmptyShape = errors.New("boundary: shape has no foreground pixels")

	// ErrNotSingleLoop is returned when the predecessor/successor links do
	// not form exactly one cycle covering every vertex, or when [Extract]
	// finds boundary pixels outside the traced contour (holes or several
	// components).
	ErrNotSingleLoop = errors.New("boundary: not a single closed loop")

	// ErrIndexRange is returned by [New] when a link points outside the
	// vertex table.
	ErrIndexRange = errors.New("boundary: link index out of range")
)

// Boundary is an ordered closed polygon of integer pixel coordinates.
//
// Every vertex i has explicit predecessor and successor indices. A valid
// boundary (see [Boundary.Validate]) forms one cycle through all vertices
// starting and ending at vertex 0.
//
// Boundary is immutable after construction and safe for concurrent reads.
type Boundary struct {
	pts  []geom.IPoint
	prev []int
	next []int
	area float64
}

// New builds a boundary from vertex coordinates and explicit links.
// All slices are copied. Link indices must lie in [0, len(pts)); the cycle
// structure itself is checked by Validate.
func New(pts []geom.IPoint, prev, next []int) (*Boundary, error) {
	n := len(pts)
	if len(prev) != n || len(next) != n {
		return nil, fmt.Errorf("%w: %d points, %d prev, %d next", ErrIndexRange, n, len(prev), len(next))
	}
	for i := 0; i < n; i++ {
		if prev[i] < 0 || prev[i] >= n || next[i] < 0 || next[i] >= n {
			return nil, fmt.Errorf("%w: vertex %d", ErrIndexRange, i)
		}
	}
	b := &Boundary{
		pts:  append([]geom.IPoint(nil), pts...),
		prev: append([]int(nil), prev...),
		next: append([]int(nil), next...),
	}
	b.area = b.shoelace()
	return b, nil
}

// FromPolygon builds a boundary whose links follow slice order:
// Next(i) = i+1 and Prev(i) = i-1, wrapping around.
func FromPolygon(pts []geom.IPoint) *Boundary {
	n := len(pts)
	prev := make([]int, n)
	next := make([]int, n)
	for i := range pts {
		prev[i] = (i - 1 + n) % n
		next[i] = (i + 1) % n
	}
	b, _ := New(pts, prev, next)
	return b
}

// Len returns the number of vertices.
func (b *Boundary) Len() int { return len(b.pts) }

// Vertex returns the integer coordinate of vertex i.
func (b *Boundary) Vertex(i int) geom.IPoint { return b.pts[i] }

// Point returns vertex i as a point in the plane.
func (b *Boundary) Point(i int) geom.Point { return b.pts[i].Float() }

// Points returns all vertices as points, in index order.
func (b *Boundary) Points() []geom.Point {
	out := make([]geom.Point, len(b.pts))
	for i, p := range b.pts {
		out[i] = p.Float()
	}
	return out
}

// Prev returns the predecessor of vertex i.
func (b *Boundary) Prev(i int) int { return b.prev[i] }

// Next returns the successor of vertex i.
func (b *Boundary) Next(i int) int { return b.next[i] }

// Step walks k links from vertex i: forward for k > 0, backward for k < 0.
func (b *Boundary) Step(i, k int) int {
	for ; k > 0; k-- {
		i = b.next[i]
	}
	for ; k < 0; k++ {
		i = b.prev[i]
	}
	return i
}

// Validate checks the single-cycle invariant: following Next from vertex 0
// visits every vertex exactly once before returning to 0, Prev is the
// inverse of Next, and Prev(0) is the last vertex.
func (b *Boundary) Validate() error {
	n := len(b.pts)
	if n == 0 {
		return ErrEmptyShape
	}
	if b.prev[0] != n-1 {
		return fmt.Errorf("%w: prev(0) = %d, want %d", ErrNotSingleLoop, b.prev[0], n-1)
	}
	seen := make([]bool, n)
	i := 0
	for steps := 0; steps < n; steps++ {
		if seen[i] {
			return fmt.Errorf("%w: vertex %d revisited after %d steps", ErrNotSingleLoop, i, steps)
		}
		seen[i] = true
		if b.prev[b.next[i]] != i {
			return fmt.Errorf("%w: prev(next(%d)) != %d", ErrNotSingleLoop, i, i)
		}
		i = b.next[i]
	}
	if i != 0 {
		return fmt.Errorf("%w: cycle does not return to vertex 0", ErrNotSingleLoop)
	}
	return nil
}

func (b *Boundary) shoelace() float64 {
	var s float64
	for i := range b.pts {
		p, q := b.pts[i].Float(), b.pts[b.next[i]].Float()
		s += p.Cross(q)
	}
	return s / 2
}

// SignedArea returns the shoelace area of the polygon in raster
// coordinates. Boundaries produced by [Extract] have a positive area.
func (b *Boundary) SignedArea() float64 { return b.area }

// Perimeter returns the total length of the closed polygon.
func (b *Boundary) Perimeter() float64 {
	var s float64
	for i := range b.pts {
		s += b.Point(i).Dist(b.Point(b.next[i]))
	}
	return s
}

// ArcLength returns the polygon length walked forward from vertex i to
// vertex j. It is 0 when i == j.
func (b *Boundary) ArcLength(i, j int) float64 {
	var s float64
	for k := 0; i != j && k < len(b.pts); k++ {
		n := b.next[i]
		s += b.Point(i).Dist(b.Point(n))
		i = n
	}
	return s
}

// Normal returns the inward unit normal at vertex i, estimated from the
// chord between the vertices window steps before and after it. The window
// is clamped to what the polygon size allows. At the tip of a one-pixel
// spike the chord vanishes and the normal points back along the spike.
// ok is false when no direction can be derived (single vertex).
func (b *Boundary) Normal(i, window int) (geom.Point, bool) {
	n := len(b.pts)
	w := min(window, (n-1)/2)
	if w < 1 {
		w = 1
	}
	for ; w >= 1; w-- {
		a, c := b.Point(b.Step(i, -w)), b.Point(b.Step(i, w))
		t := c.Sub(a)
		if u, ok := t.Unit(); ok {
			// Interior lies left of the walking direction when the area is positive.
			if b.area >= 0 {
				return geom.Pt(-u.Y, u.X), true
			}
			return geom.Pt(u.Y, -u.X), true
		}
		if u, ok := a.Sub(b.Point(i)).Unit(); ok {
			return u, true
		}
	}
	return geom.Point{}, false
}

// Bounds returns the axis-aligned bounding box of the vertices.
func (b *Boundary) Bounds() (lo, hi geom.Point) {
	lo = geom.Pt(math.Inf(1), math.Inf(1))
	hi = geom.Pt(math.Inf(-1), math.Inf(-1))
	for _, p := range b.pts {
		lo.X, lo.Y = math.Min(lo.X, float64(p.X)), math.Min(lo.Y, float64(p.Y))
		hi.X, hi.Y = math.Max(hi.X, float64(p.X)), math.Max(hi.Y, float64(p.Y))
	}
	return lo, hi
}

// Diagonal returns the length of the bounding box diagonal.
func (b *Boundary) Diagonal() float64 {
	if len(b.pts) == 0 {
		return 0
	}
	lo, hi := b.Bounds()
	return hi.Dist(lo)
}

// Nearest returns the index of the vertex closest to q and its distance.
// It returns -1 for an empty boundary.
func (b *Boundary) Nearest(q geom.Point) (int, float64) {
	best, bestD := -1, math.Inf(1)
	for i := range b.pts {
		if d := b.Point(i).Sub(q).Norm2(); d < bestD {
			best, bestD = i, d
		}
	}
	return best, math.Sqrt(bestD)
}
