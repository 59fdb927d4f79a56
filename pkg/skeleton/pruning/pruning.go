package pruning

import (
	"errors"
	"fmt"
	"math"

	"github.com/matzehuels/medialaxis/pkg/boundary"
	"github.com/matzehuels/medialaxis/pkg/geom"
	"github.com/matzehuels/medialaxis/pkg/skeleton"
)

var (
	// ErrBadScale is returned by ScaleAxis for a factor below 1.
	ErrBadScale = errors.New("pruning: scale factor must be >= 1")

	// ErrBadThreshold is returned by LambdaMedialAxis and ThetaMedialAxis
	// for a threshold outside the valid range.
	ErrBadThreshold = errors.New("pruning: threshold out of range")
)

// ScaleAxis applies the scale axis transform with factor s >= 1.
func ScaleAxis(g *skeleton.Graph, s float64) (*skeleton.Graph, error) {
	res, err := ScaleAxisWithResult(g, s)
	if err != nil {
		return nil, err
	}
	return res.Graph, nil
}

// ScaleAxisWithResult is ScaleAxis reporting the number of removed nodes.
func ScaleAxisWithResult(g *skeleton.Graph, s float64) (*Result, error) {
	if !(s >= 1) {
		return nil, fmt.Errorf("%w: %v", ErrBadScale, s)
	}
	return peel(g, ScaleSignificance(g), func(v float64) bool { return v <= s }), nil
}

// ScaleSignificance returns, per node, the smallest factor s at which its
// disk scaled by s lies inside the s-scaled disk of a strictly larger
// neighbour: |c_n - c_m| / (r_m - r_n), minimised over the neighbours m.
// Nodes without a larger neighbour get +Inf.
func ScaleSignificance(g *skeleton.Graph) []float64 {
	nodes := g.Nodes()
	sig := make([]float64, len(nodes))
	for i, n := range nodes {
		sig[i] = math.Inf(1)
		for _, j := range g.Neighbors(i) {
			m := nodes[j]
			if dr := m.Radius() - n.Radius(); dr > 0 {
				sig[i] = math.Min(sig[i], n.Center().Dist(m.Center())/dr)
			}
		}
	}
	return sig
}

// LambdaMedialAxis removes nodes whose generating boundary points are less
// than 2λ apart. λ must be non-negative.
func LambdaMedialAxis(g *skeleton.Graph, bnd *boundary.Boundary, lambda float64) (*skeleton.Graph, error) {
	res, err := LambdaMedialAxisWithResult(g, bnd, lambda)
	if err != nil {
		return nil, err
	}
	return res.Graph, nil
}

// LambdaMedialAxisWithResult is LambdaMedialAxis reporting the number of
// removed nodes.
func LambdaMedialAxisWithResult(g *skeleton.Graph, bnd *boundary.Boundary, lambda float64) (*Result, error) {
	if !(lambda >= 0) {
		return nil, fmt.Errorf("%w: lambda %v", ErrBadThreshold, lambda)
	}
	return peel(g, LambdaSignificance(g, bnd), func(v float64) bool { return v < lambda }), nil
}

// LambdaSignificance returns, per node, half the distance between its two
// generating boundary points. Nodes with unknown generators use half the
// diameter of their associated points; without a boundary the disk radius
// is used.
func LambdaSignificance(g *skeleton.Graph, bnd *boundary.Boundary) []float64 {
	sig := make([]float64, g.NodeCount())
	for i, n := range g.Nodes() {
		switch {
		case bnd == nil:
			sig[i] = n.Radius()
		case hasGenerators(n, bnd):
			sig[i] = bnd.Point(n.Owner).Dist(bnd.Point(n.Contact)) / 2
		default:
			sig[i] = widest(n, bnd, func(c, p, q geom.Point) float64 { return p.Dist(q) / 2 })
		}
	}
	return sig
}

// ThetaMedialAxis removes nodes whose generating boundary points are seen
// from the disk centre under an angle below θ radians. θ must lie in
// [0, π].
func ThetaMedialAxis(g *skeleton.Graph, bnd *boundary.Boundary, theta float64) (*skeleton.Graph, error) {
	res, err := ThetaMedialAxisWithResult(g, bnd, theta)
	if err != nil {
		return nil, err
	}
	return res.Graph, nil
}

// ThetaMedialAxisWithResult is ThetaMedialAxis reporting the number of
// removed nodes.
func ThetaMedialAxisWithResult(g *skeleton.Graph, bnd *boundary.Boundary, theta float64) (*Result, error) {
	if !(theta >= 0 && theta <= math.Pi) {
		return nil, fmt.Errorf("%w: theta %v", ErrBadThreshold, theta)
	}
	return peel(g, ThetaSignificance(g, bnd), func(v float64) bool { return v < theta }), nil
}

// ThetaSignificance returns, per node, the angle in [0, π] at the disk
// centre between its two generating boundary points. Nodes with unknown
// generators use the widest angle over their associated points; without a
// boundary every node gets π.
func ThetaSignificance(g *skeleton.Graph, bnd *boundary.Boundary) []float64 {
	sig := make([]float64, g.NodeCount())
	for i, n := range g.Nodes() {
		switch {
		case bnd == nil:
			sig[i] = math.Pi
		case hasGenerators(n, bnd):
			c := n.Center()
			sig[i] = geom.Angle(bnd.Point(n.Owner).Sub(c), bnd.Point(n.Contact).Sub(c))
		default:
			sig[i] = widest(n, bnd, func(c, p, q geom.Point) float64 { return geom.Angle(p.Sub(c), q.Sub(c)) })
		}
	}
	return sig
}

func hasGenerators(n skeleton.Node, bnd *boundary.Boundary) bool {
	return n.Owner >= 0 && n.Owner < bnd.Len() && n.Contact >= 0 && n.Contact < bnd.Len()
}

// widest maximises measure over all pairs of associated points.
func widest(n skeleton.Node, bnd *boundary.Boundary, measure func(c, p, q geom.Point) float64) float64 {
	c := n.Center()
	best := 0.0
	for a, i := range n.Bounds {
		if i < 0 || i >= bnd.Len() {
			continue
		}
		for _, j := range n.Bounds[a+1:] {
			if j < 0 || j >= bnd.Len() {
				continue
			}
			best = math.Max(best, measure(c, bnd.Point(i), bnd.Point(j)))
		}
	}
	return best
}
