package skeleton

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/matzehuels/medialaxis/pkg/geom"
)

func node(x, y, r float64, bounds ...int) Node {
	return Node{Disk: geom.Disk{Center: geom.Pt(x, y), Radius: r}, Owner: NoVertex, Contact: NoVertex, Bounds: bounds}
}

// star builds a centre node with three arms of the given lengths.
func star(arms ...int) *Graph {
	g := New(0)
	c := g.AddNode(node(0, 0, 1))
	for a, n := range arms {
		prev := c
		for i := 1; i <= n; i++ {
			v := g.AddNode(node(float64(a), float64(i), 1))
			_ = g.AddEdge(prev, v)
			prev = v
		}
	}
	return g
}

func TestAddEdge(t *testing.T) {
	g := New(2)
	a := g.AddNode(node(0, 0, 1))
	b := g.AddNode(node(1, 0, 1))

	tests := []struct {
		name    string
		from    int
		to      int
		wantErr error
	}{
		{name: "Valid", from: b, to: a},
		{name: "Duplicate", from: a, to: b, wantErr: ErrDuplicateEdge},
		{name: "SelfLoop", from: a, to: a, wantErr: ErrSelfLoop},
		{name: "Unknown", from: a, to: 7, wantErr: ErrUnknownNode},
		{name: "Negative", from: -1, to: a, wantErr: ErrUnknownNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.AddEdge(tt.from, tt.to)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AddEdge(%d,%d) = %v, want %v", tt.from, tt.to, err, tt.wantErr)
			}
		})
	}
	if e := g.Edges()[0]; e.From != a || e.To != b {
		t.Errorf("edge = %+v, want normalised %d-%d", e, a, b)
	}
	if !g.HasEdge(a, b) || !g.HasEdge(b, a) {
		t.Error("HasEdge must be symmetric")
	}
}

func TestBranchCount(t *testing.T) {
	tests := []struct {
		name string
		g    *Graph
		want int
	}{
		{name: "Empty", g: New(0), want: 0},
		{name: "Isolated", g: star(), want: 0},
		{name: "Path", g: star(2), want: 1},
		{name: "LongPath", g: star(3, 3), want: 1},
		{name: "Star3", g: star(1, 2, 3), want: 3},
		{name: "Star4", g: star(1, 1, 1, 1), want: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.g.BranchCount()
			if got != tt.want {
				t.Errorf("BranchCount = %d, want %d", got, tt.want)
			}
			// The degree sum over non-2 nodes is always even.
			s := 0
			for i := 0; i < tt.g.NodeCount(); i++ {
				if d := tt.g.Degree(i); d != 2 {
					s += d
				}
			}
			if s%2 != 0 || s/2 != got {
				t.Errorf("degree sum %d inconsistent with %d", s, got)
			}
		})
	}
}

func TestSubgraph(t *testing.T) {
	g := star(2, 1) // 0 centre; 1-2 arm; 3 arm
	keep := []bool{true, true, false, true}
	sub, remap := g.Subgraph(keep, nil)
	if sub.NodeCount() != 3 || sub.EdgeCount() != 2 {
		t.Fatalf("sub = %d nodes %d edges, want 3 and 2", sub.NodeCount(), sub.EdgeCount())
	}
	if want := []int{0, 1, -1, 2}; !slices.Equal(remap, want) {
		t.Errorf("remap = %v, want %v", remap, want)
	}
	if g.NodeCount() != 4 {
		t.Error("Subgraph modified the source graph")
	}
}

func TestComponents(t *testing.T) {
	g := New(0)
	for i := 0; i < 5; i++ {
		g.AddNode(node(float64(i), 0, 1))
	}
	_ = g.AddEdge(0, 3)
	_ = g.AddEdge(1, 4)
	comps := g.Components()
	want := [][]int{{0, 3}, {1, 4}, {2}}
	if len(comps) != len(want) {
		t.Fatalf("Components = %v, want %v", comps, want)
	}
	for i := range want {
		if !slices.Equal(comps[i], want[i]) {
			t.Errorf("component %d = %v, want %v", i, comps[i], want[i])
		}
	}
	if g.IsConnected() {
		t.Error("IsConnected = true, want false")
	}
}

func TestCloneIsDeep(t *testing.T) {
	g := New(0)
	g.AddNode(node(0, 0, 1, 0, 1, 2))
	c := g.Clone()
	c.Nodes()[0].Bounds[0] = 9
	if g.Node(0).Bounds[0] != 0 {
		t.Error("Clone shares association slices")
	}
}

func TestAssociations(t *testing.T) {
	g := New(0)
	g.AddNode(node(0, 0, 1, 3, 4, 5))
	g.AddNode(node(2, 0, 1, 0, 1, 2))
	g.AddNode(node(4, 0, 1))

	m := g.Associations()
	want := map[int][]int{0: {3, 4, 5}, 1: {0, 1, 2}, 2: nil}
	if len(m) != len(want) {
		t.Fatalf("len = %d, want %d", len(m), len(want))
	}
	for id, b := range want {
		if !slices.Equal(m[id], b) {
			t.Errorf("node %d = %v, want %v", id, m[id], b)
		}
	}

	m[0][0] = 99
	if g.Node(0).Bounds[0] != 3 {
		t.Error("Associations shares slices with the graph")
	}
}

func TestValidate(t *testing.T) {
	g := New(0)
	g.AddNode(node(0, 0, 1, 0, 1))
	g.AddNode(node(2, 0, 1, 2, 3))
	_ = g.AddEdge(0, 1)
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := g.ValidateCoverage(4); err != nil {
		t.Errorf("ValidateCoverage(4): %v", err)
	}
	if err := g.ValidateCoverage(5); !errors.Is(err, ErrAssociation) {
		t.Errorf("ValidateCoverage(5) = %v, want ErrAssociation", err)
	}

	g.AddNode(node(4, 0, -1, 1))
	if err := g.Validate(); !errors.Is(err, ErrNegativeRadius) {
		t.Errorf("Validate = %v, want ErrNegativeRadius", err)
	}
}

func TestSegment2D(t *testing.T) {
	s := Segment2D{
		A: geom.Disk{Center: geom.Pt(0, 0), Radius: 2},
		B: geom.Disk{Center: geom.Pt(4, 0), Radius: 4},
	}
	d := s.At(0.5)
	if d.Center != geom.Pt(2, 0) || d.Radius != 3 {
		t.Errorf("At(0.5) = %+v", d)
	}
	if s.At(2) != s.B {
		t.Error("At clamps t to 1")
	}
	if s.Len() != 4 {
		t.Errorf("Len = %v, want 4", s.Len())
	}
}

func TestCurve3D(t *testing.T) {
	// A degree-1 spline is the control polygon.
	c, err := UniformCurve3D(1, [][4]float64{{0, 0, 0, 1}, {2, 0, 0, 1}, {2, 2, 0, 3}})
	if err != nil {
		t.Fatal(err)
	}
	got := c.Eval(0.75)
	if math.Abs(got[0]-2) > 1e-12 || math.Abs(got[1]-1) > 1e-12 || math.Abs(got[3]-2) > 1e-12 {
		t.Errorf("Eval(0.75) = %v, want (2,1,_,2)", got)
	}
	if math.Abs(c.Len()-4) > 1e-9 {
		t.Errorf("Len = %v, want 4", c.Len())
	}

	// A clamped cubic interpolates its end points.
	q, err := UniformCurve3D(3, [][4]float64{{0, 0, 0, 1}, {1, 3, 0, 1}, {3, 3, 0, 1}, {4, 0, 0, 2}})
	if err != nil {
		t.Fatal(err)
	}
	if d := q.At(0); d.Center != geom.Pt(0, 0) {
		t.Errorf("At(0) = %+v", d)
	}
	if d := q.At(1); d.Center.Dist(geom.Pt(4, 0)) > 1e-12 || math.Abs(d.Radius-2) > 1e-12 {
		t.Errorf("At(1) = %+v", d)
	}

	if _, err := NewCurve3D(2, []float64{0, 0, 1}, [][4]float64{{}, {}, {}}); !errors.Is(err, ErrBadSpline) {
		t.Errorf("NewCurve3D = %v, want ErrBadSpline", err)
	}
}
