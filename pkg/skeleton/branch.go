package skeleton

import (
	"errors"
	"fmt"

	"github.com/matzehuels/medialaxis/pkg/geom"
)

// ErrBadSpline is returned by [NewCurve3D] when degree, knots and control
// points are inconsistent.
var ErrBadSpline = errors.New("skeleton: invalid spline")

// BranchGeometry is the continuous shape of a skeleton branch: a family of
// disks parameterised by t in [0, 1].
type BranchGeometry interface {
	// At returns the disk at parameter t, clamped to [0, 1].
	At(t float64) geom.Disk
	// Len returns the length of the centre curve.
	Len() float64
}

// Segment2D is a straight branch between two disks; centre and radius are
// interpolated linearly.
type Segment2D struct {
	A, B geom.Disk
}

// At implements BranchGeometry.
func (s Segment2D) At(t float64) geom.Disk { return s.A.Lerp(s.B, clamp01(t)) }

// Len implements BranchGeometry.
func (s Segment2D) Len() float64 { return s.A.Center.Dist(s.B.Center) }

// Branch returns the straight branch geometry of edge e.
func (g *Graph) Branch(e Edge) Segment2D {
	return Segment2D{A: g.nodes[e.From].Disk, B: g.nodes[e.To].Disk}
}

// Curve3D is a clamped B-spline branch with (x, y, z, r) control points.
// Evaluation projects the curve to the plane by dropping z.
type Curve3D struct {
	Degree int
	Knots  []float64
	Ctrl   [][4]float64
}

// NewCurve3D validates and builds a spline. The knot vector must be
// non-decreasing with len(ctrl) + degree + 1 entries.
func NewCurve3D(degree int, knots []float64, ctrl [][4]float64) (*Curve3D, error) {
	if degree < 1 || len(ctrl) < degree+1 {
		return nil, fmt.Errorf("%w: degree %d with %d control points", ErrBadSpline, degree, len(ctrl))
	}
	if len(knots) != len(ctrl)+degree+1 {
		return nil, fmt.Errorf("%w: %d knots, want %d", ErrBadSpline, len(knots), len(ctrl)+degree+1)
	}
	for i := 1; i < len(knots); i++ {
		if knots[i] < knots[i-1] {
			return nil, fmt.Errorf("%w: knots decrease at %d", ErrBadSpline, i)
		}
	}
	if knots[degree] == knots[len(ctrl)] {
		return nil, fmt.Errorf("%w: empty parameter domain", ErrBadSpline)
	}
	return &Curve3D{
		Degree: degree,
		Knots:  append([]float64(nil), knots...),
		Ctrl:   append([][4]float64(nil), ctrl...),
	}, nil
}

// UniformCurve3D builds a clamped spline with uniform interior knots on
// [0, 1] through the given control points.
func UniformCurve3D(degree int, ctrl [][4]float64) (*Curve3D, error) {
	n := len(ctrl)
	if degree < 1 || n < degree+1 {
		return nil, fmt.Errorf("%w: degree %d with %d control points", ErrBadSpline, degree, n)
	}
	knots := make([]float64, n+degree+1)
	spans := n - degree
	for i := range knots {
		switch {
		case i <= degree:
			knots[i] = 0
		case i >= n:
			knots[i] = 1
		default:
			knots[i] = float64(i-degree) / float64(spans)
		}
	}
	return NewCurve3D(degree, knots, ctrl)
}

// Eval returns the (x, y, z, r) point at parameter t in [0, 1], mapped to
// the spline's parameter domain, using de Boor's algorithm.
func (c *Curve3D) Eval(t float64) [4]float64 {
	p := c.Degree
	lo, hi := c.Knots[p], c.Knots[len(c.Ctrl)]
	u := lo + clamp01(t)*(hi-lo)

	// Knot span k with Knots[k] <= u < Knots[k+1]; the last span is closed.
	k := p
	for k < len(c.Ctrl)-1 && u >= c.Knots[k+1] {
		k++
	}

	d := make([][4]float64, p+1)
	for j := 0; j <= p; j++ {
		d[j] = c.Ctrl[j+k-p]
	}
	for r := 1; r <= p; r++ {
		for j := p; j >= r; j-- {
			i := j + k - p
			den := c.Knots[i+p-r+1] - c.Knots[i]
			a := 0.0
			if den != 0 {
				a = (u - c.Knots[i]) / den
			}
			for m := 0; m < 4; m++ {
				d[j][m] = (1-a)*d[j-1][m] + a*d[j][m]
			}
		}
	}
	return d[p]
}

// At implements BranchGeometry.
func (c *Curve3D) At(t float64) geom.Disk {
	v := c.Eval(t)
	return geom.Disk{Center: geom.Pt(v[0], v[1]), Radius: v[3]}
}

// Len implements BranchGeometry by sampling the planar centre curve.
func (c *Curve3D) Len() float64 {
	const samples = 64
	var s float64
	prev := c.At(0).Center
	for i := 1; i <= samples; i++ {
		p := c.At(float64(i) / samples).Center
		s += p.Dist(prev)
		prev = p
	}
	return s
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
