// Package geom provides the small amount of planar geometry shared by the
// skeletonization pipeline: points, integer pixel coordinates, and disks.
//
// Coordinates follow the raster convention used everywhere in medialaxis:
// pixel (x, y) has its centre at the point (x, y), x grows to the right and
// y grows downward.
package geom

import "math"

// Point is a location in the continuous plane.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p * s.
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

// Dot returns the scalar product of p and q.
func (p Point) Dot(q Point) float64 { return p.X*q.X + p.Y*q.Y }

// Cross returns the z component of the cross product p × q.
func (p Point) Cross(q Point) float64 { return p.X*q.Y - p.Y*q.X }

// Norm returns the Euclidean length of p.
func (p Point) Norm() float64 { return math.Hypot(p.X, p.Y) }

// Norm2 returns the squared Euclidean length of p.
func (p Point) Norm2() float64 { return p.X*p.X + p.Y*p.Y }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return p.Sub(q).Norm() }

// Unit returns p scaled to unit length. The zero vector is returned unchanged
// and ok reports false.
func (p Point) Unit() (u Point, ok bool) {
	n := p.Norm()
	if n == 0 {
		return p, false
	}
	return p.Scale(1 / n), true
}

// Lerp interpolates linearly between p (t = 0) and q (t = 1).
func (p Point) Lerp(q Point, t float64) Point {
	return Point{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}

// Angle returns the unsigned angle between p and q in [0, π].
// It is 0 when either vector is zero.
func Angle(p, q Point) float64 {
	np, nq := p.Norm(), q.Norm()
	if np == 0 || nq == 0 {
		return 0
	}
	c := p.Dot(q) / (np * nq)
	return math.Acos(math.Max(-1, math.Min(1, c)))
}

// IPoint is an integer pixel coordinate.
type IPoint struct {
	X, Y int
}

// Float converts an integer coordinate to the pixel centre.
func (p IPoint) Float() Point { return Point{float64(p.X), float64(p.Y)} }

// Add returns p + q.
func (p IPoint) Add(q IPoint) IPoint { return IPoint{p.X + q.X, p.Y + q.Y} }

// Sub returns p - q.
func (p IPoint) Sub(q IPoint) IPoint { return IPoint{p.X - q.X, p.Y - q.Y} }

// Disk is a closed disk: a centre and a non-negative radius.
type Disk struct {
	Center Point
	Radius float64
}

// Contains reports whether q lies in the closed disk.
func (d Disk) Contains(q Point) bool {
	return d.Center.Sub(q).Norm2() <= d.Radius*d.Radius
}

// Lerp interpolates centre and radius between d (t = 0) and e (t = 1).
func (d Disk) Lerp(e Disk, t float64) Disk {
	return Disk{
		Center: d.Center.Lerp(e.Center, t),
		Radius: d.Radius + (e.Radius-d.Radius)*t,
	}
}

// Project returns the point of d's circle closest to q. When q is the
// centre, q itself is returned.
func (d Disk) Project(q Point) Point {
	u, ok := q.Sub(d.Center).Unit()
	if !ok {
		return q
	}
	return d.Center.Add(u.Scale(d.Radius))
}

// Bounds returns the integer pixel rectangle [x0, x1] × [y0, y1] whose centres
// may lie inside the disk.
func (d Disk) Bounds() (x0, y0, x1, y1 int) {
	return int(math.Ceil(d.Center.X - d.Radius)), int(math.Ceil(d.Center.Y - d.Radius)),
		int(math.Floor(d.Center.X + d.Radius)), int(math.Floor(d.Center.Y + d.Radius))
}
