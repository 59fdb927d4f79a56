package boundary

import (
	"errors"
	"math"
	"testing"

	"github.com/matzehuels/medialaxis/pkg/geom"
	"github.com/matzehuels/medialaxis/pkg/shape"
)

func rectShape(w, h, x0, y0, x1, y1 int) *shape.Shape {
	return shape.FromFunc(w, h, func(x, y int) bool {
		return x >= x0 && x <= x1 && y >= y0 && y <= y1
	})
}

func diskShape(size int, r float64) *shape.Shape {
	c := float64(size-1) / 2
	return shape.FromFunc(size, size, func(x, y int) bool {
		dx, dy := float64(x)-c, float64(y)-c
		return dx*dx+dy*dy <= r*r
	})
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		shape   *shape.Shape
		wantLen int
		wantErr error
	}{
		{name: "Block3x3", shape: rectShape(5, 5, 1, 1, 3, 3), wantLen: 8},
		{name: "SinglePixel", shape: rectShape(3, 3, 1, 1, 1, 1), wantLen: 1},
		{name: "TouchesEdge", shape: rectShape(4, 3, 0, 0, 3, 2), wantLen: 10},
		{name: "Line", shape: rectShape(5, 3, 1, 1, 3, 1), wantLen: 4},
		{name: "Empty", shape: shape.FromFunc(3, 3, func(x, y int) bool { return false }), wantErr: ErrEmptyShape},
		{
			name: "Ring",
			shape: shape.FromFunc(7, 7, func(x, y int) bool {
				in := x >= 1 && x <= 5 && y >= 1 && y <= 5
				return in && !(x == 3 && y == 3)
			}),
			wantErr: ErrNotSingleLoop,
		},
		{
			name: "TwoComponents",
			shape: shape.FromFunc(9, 4, func(x, y int) bool {
				return y >= 1 && y <= 2 && (x <= 2 || x >= 6)
			}),
			wantErr: ErrNotSingleLoop,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Extract(tt.shape)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if b.Len() != tt.wantLen {
				t.Errorf("Len = %d, want %d", b.Len(), tt.wantLen)
			}
			if err := b.Validate(); err != nil {
				t.Errorf("Validate: %v", err)
			}
			if b.Prev(0) != b.Len()-1 {
				t.Errorf("Prev(0) = %d, want %d", b.Prev(0), b.Len()-1)
			}
			if b.SignedArea() < 0 {
				t.Errorf("SignedArea = %v, want >= 0", b.SignedArea())
			}
		})
	}
}

func TestExtractDisk(t *testing.T) {
	s := diskShape(41, 15)
	b, err := Extract(s)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	// Every vertex is a foreground boundary pixel.
	for i := 0; i < b.Len(); i++ {
		v := b.Vertex(i)
		if !s.IsBoundary(v.X, v.Y) && !s.At(v.X, v.Y) {
			t.Fatalf("vertex %d at %v is background", i, v)
		}
	}
	// Consecutive vertices are 8-neighbours.
	for i := 0; i < b.Len(); i++ {
		d := b.Vertex(b.Next(i)).Sub(b.Vertex(i))
		if d.X < -1 || d.X > 1 || d.Y < -1 || d.Y > 1 || d == (geom.IPoint{}) {
			t.Fatalf("step %d -> %d is %v", i, b.Next(i), d)
		}
	}
	if p := b.Perimeter(); math.Abs(p-2*math.Pi*15) > 15 {
		t.Errorf("Perimeter = %.1f, want about %.1f", p, 2*math.Pi*15)
	}
}

func TestNormalPointsInward(t *testing.T) {
	b, err := Extract(rectShape(5, 5, 1, 1, 3, 3))
	if err != nil {
		t.Fatal(err)
	}
	// Vertex 1 is the middle of the top edge at (2,1).
	if v := b.Vertex(1); v != (geom.IPoint{X: 2, Y: 1}) {
		t.Fatalf("vertex 1 = %v, want (2,1)", v)
	}
	n, ok := b.Normal(1, 3)
	if !ok {
		t.Fatal("Normal not defined")
	}
	if math.Abs(n.X) > 1e-9 || math.Abs(n.Y-1) > 1e-9 {
		t.Errorf("Normal = %v, want (0,1)", n)
	}
}

func TestNormalSpikeTip(t *testing.T) {
	b, err := Extract(rectShape(5, 3, 1, 1, 3, 1))
	if err != nil {
		t.Fatal(err)
	}
	// The right end of a horizontal line is a spike tip.
	for i := 0; i < b.Len(); i++ {
		if b.Vertex(i) != (geom.IPoint{X: 3, Y: 1}) {
			continue
		}
		n, ok := b.Normal(i, 1)
		if !ok || n.X >= 0 {
			t.Errorf("Normal at tip = %v (ok=%v), want pointing left", n, ok)
		}
	}
}

func TestValidate(t *testing.T) {
	sq := []geom.IPoint{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 4}}
	tests := []struct {
		name    string
		prev    []int
		next    []int
		wantErr bool
	}{
		{name: "Cycle", prev: []int{3, 0, 1, 2}, next: []int{1, 2, 3, 0}},
		{name: "TwoLoops", prev: []int{1, 0, 3, 2}, next: []int{1, 0, 3, 2}, wantErr: true},
		{name: "BadInverse", prev: []int{3, 2, 1, 2}, next: []int{1, 2, 3, 0}, wantErr: true},
		{name: "PrevZeroNotLast", prev: []int{2, 0, 3, 1}, next: []int{1, 3, 0, 2}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := New(sq, tt.prev, tt.next)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			err = b.Validate()
			if tt.wantErr != errors.Is(err, ErrNotSingleLoop) {
				t.Errorf("Validate = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewIndexRange(t *testing.T) {
	_, err := New([]geom.IPoint{{}, {}}, []int{1, 2}, []int{1, 0})
	if !errors.Is(err, ErrIndexRange) {
		t.Errorf("err = %v, want ErrIndexRange", err)
	}
}

func TestGeometry(t *testing.T) {
	b := FromPolygon([]geom.IPoint{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 4}})
	if got := b.SignedArea(); got != 16 {
		t.Errorf("SignedArea = %v, want 16", got)
	}
	if got := b.Perimeter(); got != 16 {
		t.Errorf("Perimeter = %v, want 16", got)
	}
	if got := b.ArcLength(1, 3); got != 8 {
		t.Errorf("ArcLength(1,3) = %v, want 8", got)
	}
	if got := b.ArcLength(2, 2); got != 0 {
		t.Errorf("ArcLength(2,2) = %v, want 0", got)
	}
	if got := b.Step(0, -1); got != 3 {
		t.Errorf("Step(0,-1) = %d, want 3", got)
	}
	i, d := b.Nearest(geom.Pt(3.6, 0.5))
	if i != 1 || math.Abs(d-math.Hypot(0.4, 0.5)) > 1e-12 {
		t.Errorf("Nearest = %d, %v", i, d)
	}
	if got := b.Diagonal(); math.Abs(got-math.Sqrt(32)) > 1e-12 {
		t.Errorf("Diagonal = %v", got)
	}
}
