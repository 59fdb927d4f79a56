package pruning

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/matzehuels/medialaxis/pkg/boundary"
	"github.com/matzehuels/medialaxis/pkg/geom"
	"github.com/matzehuels/medialaxis/pkg/shape"
	"github.com/matzehuels/medialaxis/pkg/skeleton"
	"github.com/matzehuels/medialaxis/pkg/skeleton/propagation"
)

func disk(x, y, r float64, bounds ...int) skeleton.Node {
	return skeleton.Node{
		Disk:    geom.Disk{Center: geom.Pt(x, y), Radius: r},
		Owner:   skeleton.NoVertex,
		Contact: skeleton.NoVertex,
		Bounds:  bounds,
	}
}

// twig builds a large disk A with a small disk B inside it and a far disk C:
// B - A - C.
func twig() *skeleton.Graph {
	g := skeleton.New(3)
	a := g.AddNode(disk(0, 0, 10, 0, 1))
	b := g.AddNode(disk(5, 0, 4, 2))
	c := g.AddNode(disk(30, 0, 9, 3, 4))
	_ = g.AddEdge(a, b)
	_ = g.AddEdge(a, c)
	return g
}

// bumpy is a rectangle with a small bump, which propagates into a skeleton
// with a spurious branch.
func bumpy(t *testing.T) (*skeleton.Graph, *boundary.Boundary) {
	t.Helper()
	s := shape.FromFunc(84, 34, func(x, y int) bool {
		body := x >= 2 && x < 82 && y >= 8 && y < 32
		bump := x >= 38 && x < 44 && y >= 3 && y < 8
		return body || bump
	})
	bnd, err := boundary.Extract(s)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	g, err := propagation.SpherePropagation(bnd, propagation.Options{Alpha: 0.5})
	if err != nil {
		t.Fatalf("SpherePropagation: %v", err)
	}
	return g, bnd
}

func TestScaleAxisTwig(t *testing.T) {
	g := twig()
	res, err := ScaleAxisWithResult(g, 1)
	if err != nil {
		t.Fatal(err)
	}
	if res.Removed != 1 || res.Graph.NodeCount() != 2 || res.Graph.EdgeCount() != 1 {
		t.Fatalf("got %d nodes %d edges (%d removed), want 2, 1, 1",
			res.Graph.NodeCount(), res.Graph.EdgeCount(), res.Removed)
	}
	if got := res.Graph.Node(0).Bounds; !slices.Equal(got, []int{0, 1, 2}) {
		t.Errorf("bounds of A = %v, want [0 1 2]", got)
	}
	if g.NodeCount() != 3 {
		t.Error("input graph was modified")
	}

	// At a huge factor everything except the largest disk goes.
	res, err = ScaleAxisWithResult(g, 100)
	if err != nil {
		t.Fatal(err)
	}
	if res.Graph.NodeCount() != 1 || res.Graph.Node(0).Radius() != 10 {
		t.Errorf("s=100 left %d nodes", res.Graph.NodeCount())
	}
	if err := res.Graph.ValidateCoverage(5); err != nil {
		t.Error(err)
	}
}

func TestScaleSignificance(t *testing.T) {
	sig := ScaleSignificance(twig())
	want := []float64{math.Inf(1), 5.0 / 6, 30}
	for i := range want {
		if math.Abs(sig[i]-want[i]) > 1e-12 && !(math.IsInf(want[i], 1) && math.IsInf(sig[i], 1)) {
			t.Errorf("sig[%d] = %v, want %v", i, sig[i], want[i])
		}
	}
}

func TestScaleSignificanceNeighboursOnly(t *testing.T) {
	// C sits inside A but is only joined to B, which is smaller than C.
	g := skeleton.New(3)
	a := g.AddNode(disk(0, 0, 10, 0))
	b := g.AddNode(disk(20, 0, 2, 1))
	c := g.AddNode(disk(1, 0, 5, 2))
	_ = g.AddEdge(a, b)
	_ = g.AddEdge(b, c)

	sig := ScaleSignificance(g)
	if !math.IsInf(sig[c], 1) {
		t.Errorf("sig[C] = %v, want +Inf without a larger neighbour", sig[c])
	}
	if want := 20.0 / 8; math.Abs(sig[b]-want) > 1e-12 {
		t.Errorf("sig[B] = %v, want %v", sig[b], want)
	}
}

func TestErrors(t *testing.T) {
	g := twig()
	tests := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{name: "ScaleBelowOne", run: func() error { _, err := ScaleAxis(g, 0.9); return err }, wantErr: ErrBadScale},
		{name: "ScaleNaN", run: func() error { _, err := ScaleAxis(g, math.NaN()); return err }, wantErr: ErrBadScale},
		{name: "NegativeLambda", run: func() error { _, err := LambdaMedialAxis(g, nil, -1); return err }, wantErr: ErrBadThreshold},
		{name: "ThetaAbovePi", run: func() error { _, err := ThetaMedialAxis(g, nil, 4); return err }, wantErr: ErrBadThreshold},
		{name: "ThetaZero", run: func() error { _, err := ThetaMedialAxis(g, nil, 0); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMonotone(t *testing.T) {
	g, bnd := bumpy(t)
	if g.NodeCount() < 3 {
		t.Fatalf("base skeleton too small: %d nodes", g.NodeCount())
	}

	sweeps := []struct {
		name   string
		params []float64
		prune  func(float64) (*skeleton.Graph, error)
	}{
		{
			name:   "ScaleAxis",
			params: []float64{1, 1.1, 1.2, 1.3, 1.5, 1.9, 3, 10},
			prune:  func(s float64) (*skeleton.Graph, error) { return ScaleAxis(g, s) },
		},
		{
			name:   "Lambda",
			params: []float64{0, 1, 2, 3, 5, 9, 20},
			prune:  func(l float64) (*skeleton.Graph, error) { return LambdaMedialAxis(g, bnd, l) },
		},
		{
			name:   "Theta",
			params: []float64{0, math.Pi / 18, math.Pi / 6, math.Pi / 3, math.Pi / 2, math.Pi},
			prune:  func(th float64) (*skeleton.Graph, error) { return ThetaMedialAxis(g, bnd, th) },
		},
	}
	for _, sw := range sweeps {
		t.Run(sw.name, func(t *testing.T) {
			prev := g.NodeCount()
			for _, p := range sw.params {
				pg, err := sw.prune(p)
				if err != nil {
					t.Fatalf("param %v: %v", p, err)
				}
				if pg.NodeCount() > prev {
					t.Errorf("param %v: %d nodes, previous %d", p, pg.NodeCount(), prev)
				}
				if pg.NodeCount() == 0 {
					t.Fatalf("param %v: empty graph", p)
				}
				if !pg.IsConnected() {
					t.Errorf("param %v: disconnected", p)
				}
				if err := pg.ValidateCoverage(bnd.Len()); err != nil {
					t.Errorf("param %v: %v", p, err)
				}
				prev = pg.NodeCount()
			}
		})
	}
}

func TestSignificanceFallback(t *testing.T) {
	bnd := boundary.FromPolygon([]geom.IPoint{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}})
	g := skeleton.New(1)
	g.AddNode(disk(5, 5, 5*math.Sqrt2, 0, 1, 2, 3))

	lam := LambdaSignificance(g, bnd)
	if math.Abs(lam[0]-5*math.Sqrt2) > 1e-12 {
		t.Errorf("lambda = %v, want half the diagonal", lam[0])
	}
	th := ThetaSignificance(g, bnd)
	if math.Abs(th[0]-math.Pi) > 1e-6 {
		t.Errorf("theta = %v, want pi", th[0])
	}

	n := g.Node(0)
	n.Owner, n.Contact = 0, 1
	h := skeleton.New(1)
	h.AddNode(n)
	if th := ThetaSignificance(h, bnd); math.Abs(th[0]-math.Pi/2) > 1e-12 {
		t.Errorf("theta with generators = %v, want pi/2", th[0])
	}
}
