package io

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/medialaxis/pkg/boundary"
	"github.com/matzehuels/medialaxis/pkg/geom"
	"github.com/matzehuels/medialaxis/pkg/shape"
	"github.com/matzehuels/medialaxis/pkg/skeleton"
	"github.com/matzehuels/medialaxis/pkg/skeleton/propagation"
)

func sample(t *testing.T) (*skeleton.Graph, *boundary.Boundary) {
	t.Helper()
	s := shape.FromFunc(64, 24, func(x, y int) bool {
		return x >= 2 && x < 62 && y >= 2 && y < 22
	})
	bnd, err := boundary.Extract(s)
	if err != nil {
		t.Fatal(err)
	}
	g, err := propagation.SpherePropagation(bnd, propagation.Options{Alpha: 1})
	if err != nil {
		t.Fatal(err)
	}
	return g, bnd
}

func TestSkeletonRoundTrip(t *testing.T) {
	g, bnd := sample(t)
	path := filepath.Join(t.TempDir(), "skel.txt")
	if err := WriteSkeleton(g, path); err != nil {
		t.Fatalf("WriteSkeleton: %v", err)
	}
	pts, edg, bds := SkeletonPaths(path)
	for _, p := range []string{pts, edg, bds} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("missing %s: %v", p, err)
		}
	}
	if filepath.Base(pts) != "skelpoints_skel.txt" {
		t.Errorf("points file = %s", filepath.Base(pts))
	}

	got, err := ReadSkeleton(path)
	if err != nil {
		t.Fatalf("ReadSkeleton: %v", err)
	}
	if got.NodeCount() != g.NodeCount() || got.EdgeCount() != g.EdgeCount() {
		t.Fatalf("read %d nodes %d edges, want %d and %d", got.NodeCount(), got.EdgeCount(), g.NodeCount(), g.EdgeCount())
	}
	for _, e := range got.Edges() {
		if e.From < 0 || e.To >= got.NodeCount() {
			t.Errorf("edge %+v out of range", e)
		}
	}
	if err := got.ValidateCoverage(bnd.Len()); err != nil {
		t.Errorf("coverage: %v", err)
	}
	for i := range g.Nodes() {
		if got.Node(i).Center() != g.Node(i).Center() {
			t.Errorf("node %d centre %v, want %v", i, got.Node(i).Center(), g.Node(i).Center())
		}
	}

	restored, err := RestoreRadii(got, bnd)
	if err != nil {
		t.Fatalf("RestoreRadii: %v", err)
	}
	for i, n := range restored.Nodes() {
		if n.Radius() <= 0 {
			t.Errorf("node %d radius %v not restored", i, n.Radius())
		}
	}
}

func TestAssembleErrors(t *testing.T) {
	pts := []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}}
	tests := []struct {
		name   string
		edges  []skeleton.Edge
		bounds [][]int
		ok     bool
	}{
		{name: "Valid", edges: []skeleton.Edge{{From: 0, To: 1}}, bounds: [][]int{{0}, {1}}, ok: true},
		{name: "TrailingBlank", bounds: [][]int{{0}, {1}, {}}, ok: true},
		{name: "EmptyNode", bounds: [][]int{{0, 1}, {}}, ok: true},
		{name: "TooFewBounds", bounds: [][]int{{0}}},
		{name: "EdgeOutOfRange", edges: []skeleton.Edge{{From: 0, To: 2}}, bounds: [][]int{{0}, {1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Assemble(pts, tt.edges, tt.bounds)
			if tt.ok && err != nil {
				t.Fatalf("Assemble: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrMalformed) {
				t.Fatalf("err = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestReadPointsMalformed(t *testing.T) {
	for _, in := range []string{"1 2 3\n", "a b\n", "1\n"} {
		if _, err := ReadPoints(strings.NewReader(in)); !errors.Is(err, ErrMalformed) {
			t.Errorf("ReadPoints(%q) = %v, want ErrMalformed", in, err)
		}
	}
	pts, err := ReadPoints(strings.NewReader("1.5 2\r\n\n3 4e1\n"))
	if err != nil || len(pts) != 2 || pts[1] != geom.Pt(3, 40) {
		t.Errorf("ReadPoints = %v, %v", pts, err)
	}
}

func TestBoundaryRoundTrip(t *testing.T) {
	_, bnd := sample(t)
	var buf bytes.Buffer
	if err := WriteBoundary(&buf, bnd); err != nil {
		t.Fatal(err)
	}
	got, err := ReadBoundary(&buf)
	if err != nil {
		t.Fatalf("ReadBoundary: %v", err)
	}
	if got.Len() != bnd.Len() {
		t.Fatalf("Len = %d, want %d", got.Len(), bnd.Len())
	}
	for i := 0; i < bnd.Len(); i++ {
		if got.Vertex(i) != bnd.Vertex(i) || got.Prev(i) != bnd.Prev(i) || got.Next(i) != bnd.Next(i) {
			t.Fatalf("vertex %d differs", i)
		}
	}

	path := filepath.Join(t.TempDir(), "bnd.txt")
	if err := ExportBoundary(bnd, path); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportBoundary(path); err != nil {
		t.Errorf("ImportBoundary: %v", err)
	}
}

func TestReadBoundaryErrors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{name: "Empty", in: "", wantErr: ErrMalformed},
		{name: "CountMismatch", in: "2\n0 0 1 1\n", wantErr: ErrMalformed},
		{name: "BadField", in: "1\n0 x 0 0\n", wantErr: ErrMalformed},
		{name: "BadLink", in: "2\n0 0 5 1\n1 0 0 0\n", wantErr: boundary.ErrIndexRange},
		{name: "TwoLoops", in: "4\n0 0 1 1\n1 0 0 0\n1 1 3 3\n0 1 2 2\n", wantErr: boundary.ErrNotSingleLoop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadBoundary(strings.NewReader(tt.in))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBranchRoundTrip(t *testing.T) {
	c, err := skeleton.UniformCurve3D(3, [][4]float64{{0, 0, 0, 1}, {1, 3, 0, 1.5}, {3, 3, 1, 1}, {4, 0, 0, 2}, {6, 1, 0, 0.5}})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteBranch(&buf, c); err != nil {
		t.Fatal(err)
	}
	got, err := ReadBranch(&buf)
	if err != nil {
		t.Fatalf("ReadBranch: %v", err)
	}
	if got.Degree != c.Degree || len(got.Knots) != len(c.Knots) || len(got.Ctrl) != len(c.Ctrl) {
		t.Fatalf("got %+v", got)
	}
	for _, tv := range []float64{0, 0.3, 0.7, 1} {
		if got.Eval(tv) != c.Eval(tv) {
			t.Errorf("Eval(%v) differs", tv)
		}
	}
	if _, err := ReadBranch(strings.NewReader("3\n2\n0 1\n")); !errors.Is(err, ErrMalformed) {
		t.Errorf("truncated branch: err = %v", err)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	g, _ := sample(t)
	data, err := MarshalSkeleton(g)
	if err != nil {
		t.Fatal(err)
	}
	got, err := UnmarshalSkeleton(data)
	if err != nil {
		t.Fatalf("UnmarshalSkeleton: %v", err)
	}
	if got.NodeCount() != g.NodeCount() || got.EdgeCount() != g.EdgeCount() {
		t.Fatalf("got %d/%d nodes/edges", got.NodeCount(), got.EdgeCount())
	}
	for i := range g.Nodes() {
		a, b := g.Node(i), got.Node(i)
		if a.Disk != b.Disk || a.Owner != b.Owner || a.Contact != b.Contact || len(a.Bounds) != len(b.Bounds) {
			t.Errorf("node %d: %+v, want %+v", i, b, a)
		}
	}

	path := filepath.Join(t.TempDir(), "skel.json")
	if err := ExportJSON(g, path); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportJSON(path); err != nil {
		t.Errorf("ImportJSON: %v", err)
	}
	if _, err := UnmarshalSkeleton([]byte(`{"nodes":[{"x":0,"y":0,"r":1,"bounds":[]}],"edges":[{"from":0,"to":0}]}`)); !errors.Is(err, skeleton.ErrSelfLoop) {
		t.Errorf("self loop: err = %v", err)
	}
}

func TestExports(t *testing.T) {
	g, _ := sample(t)
	dir := t.TempDir()

	svgPath := filepath.Join(dir, "skel.svg")
	if err := ExportSVG(g, svgPath, 64, 24); err != nil {
		t.Fatal(err)
	}
	svg, _ := os.ReadFile(svgPath)
	if n := strings.Count(string(svg), "<circle"); n != g.NodeCount() {
		t.Errorf("%d circles, want %d", n, g.NodeCount())
	}
	if n := strings.Count(string(svg), "<path"); n != g.EdgeCount() {
		t.Errorf("%d paths, want %d", n, g.EdgeCount())
	}
	if !strings.Contains(string(svg), `xlink:href="./skel.png"`) || !strings.Contains(string(svg), `width="256px"`) {
		t.Error("svg header missing scaled size or background image")
	}

	var buf bytes.Buffer
	if err := WriteOCaml(&buf, g, "skel"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "let skel = create ();;") {
		t.Errorf("ocaml header = %q", strings.SplitN(out, "\n", 2)[0])
	}
	if n := strings.Count(out, "add_vertex "); n != g.NodeCount() {
		t.Errorf("%d add_vertex, want %d", n, g.NodeCount())
	}
	if n := strings.Count(out, "add_edge "); n != g.EdgeCount() {
		t.Errorf("%d add_edge, want %d", n, g.EdgeCount())
	}
}
