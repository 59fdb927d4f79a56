package boundary

import (
	"fmt"

	"github.com/matzehuels/medialaxis/pkg/geom"
	"github.com/matzehuels/medialaxis/pkg/shape"
)

// moore lists the 8 neighbour offsets in clockwise order on screen
// (y grows downward), starting west.
var moore = [8]geom.IPoint{
	{X: -1, Y: 0}, {X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: -1, Y: 1},
}

func direction(d geom.IPoint) int {
	for i, m := range moore {
		if m == d {
			return i
		}
	}
	return -1
}

// Extract traces the outer contour of the shape with Moore-neighbour
// tracing and returns it as a boundary.
//
// Tracing starts at the first foreground pixel in raster order, which
// becomes vertex 0. The contour is 8-connected, so thin parts of the shape
// may be visited twice; each visit is a separate vertex. The result is
// oriented so that [Boundary.SignedArea] is non-negative.
//
// ErrEmptyShape is returned for a raster without foreground. ErrNotSingleLoop
// is returned when some foreground pixel touching the background through a
// 4-neighbour was not on the traced contour, which happens for shapes with
// holes or several components.
func Extract(s *shape.Shape) (*Boundary, error) {
	start, ok := firstPixel(s)
	if !ok {
		return nil, ErrEmptyShape
	}

	pts := []geom.IPoint{start}
	cur, back := start, start.Add(moore[0])
	var first geom.IPoint
	limit := 4*s.Area() + 8

	for step := 0; ; step++ {
		if step > limit {
			return nil, fmt.Errorf("%w: trace did not close", ErrNotSingleLoop)
		}
		next, nextBack, found := advance(s, cur, back)
		if !found {
			break // isolated pixel
		}
		if step == 0 {
			first = next
		} else if cur == start && next == first {
			break
		}
		pts = append(pts, next)
		cur, back = next, nextBack
	}
	// The walk re-enters start before the stop test fires.
	if len(pts) > 1 && pts[len(pts)-1] == start {
		pts = pts[:len(pts)-1]
	}

	b := FromPolygon(pts)
	if b.SignedArea() < 0 {
		b = FromPolygon(reversed(pts))
	}
	if err := checkCovered(s, b); err != nil {
		return nil, err
	}
	return b, nil
}

func firstPixel(s *shape.Shape) (geom.IPoint, bool) {
	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if s.At(x, y) {
				return geom.IPoint{X: x, Y: y}, true
			}
		}
	}
	return geom.IPoint{}, false
}

// advance searches the neighbours of cur clockwise, starting just after
// the background pixel back, and returns the first foreground pixel
// together with the background pixel checked before it.
func advance(s *shape.Shape, cur, back geom.IPoint) (next, nextBack geom.IPoint, found bool) {
	d := direction(back.Sub(cur))
	if d < 0 {
		d = 0
	}
	prev := back
	for k := 1; k <= 8; k++ {
		p := cur.Add(moore[(d+k)%8])
		if s.At(p.X, p.Y) {
			return p, prev, true
		}
		prev = p
	}
	return geom.IPoint{}, geom.IPoint{}, false
}

// reversed flips the walking direction while keeping vertex 0 in place.
func reversed(pts []geom.IPoint) []geom.IPoint {
	out := make([]geom.IPoint, len(pts))
	out[0] = pts[0]
	for i := 1; i < len(pts); i++ {
		out[i] = pts[len(pts)-i]
	}
	return out
}

func checkCovered(s *shape.Shape, b *Boundary) error {
	traced := make(map[geom.IPoint]bool, b.Len())
	for _, p := range b.pts {
		traced[p] = true
	}
	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if s.IsBoundary(x, y) && !traced[geom.IPoint{X: x, Y: y}] {
				return fmt.Errorf("%w: boundary pixel (%d,%d) not on the outer contour", ErrNotSingleLoop, x, y)
			}
		}
	}
	return nil
}
