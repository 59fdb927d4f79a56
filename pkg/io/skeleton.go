package io

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matzehuels/medialaxis/pkg/boundary"
	"github.com/matzehuels/medialaxis/pkg/geom"
	"github.com/matzehuels/medialaxis/pkg/skeleton"
)

// ErrMalformed is returned when a text file does not follow its format:
// wrong field counts, unparsable numbers, mismatched line counts or
// indices out of range.
var ErrMalformed = errors.New("io: malformed file")

// File name prefixes of the three-file skeleton format.
const (
	PointsPrefix = "skelpoints_"
	EdgesPrefix  = "skeledges_"
	BoundsPrefix = "skelbounds_"
)

// SkeletonPaths returns the three file paths used for a skeleton saved
// under path: the prefixes are applied to the base name, in the same
// directory.
func SkeletonPaths(path string) (points, edges, bounds string) {
	dir, base := filepath.Split(path)
	return filepath.Join(dir, PointsPrefix+base),
		filepath.Join(dir, EdgesPrefix+base),
		filepath.Join(dir, BoundsPrefix+base)
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// WritePoints writes one "x y" line per node centre, in node order.
func WritePoints(w io.Writer, g *skeleton.Graph) error {
	bw := bufio.NewWriter(w)
	for _, n := range g.Nodes() {
		fmt.Fprintf(bw, "%s %s\n", formatFloat(n.Disk.Center.X), formatFloat(n.Disk.Center.Y))
	}
	return bw.Flush()
}

// WriteEdges writes one "i j" line per edge, referencing node order.
func WriteEdges(w io.Writer, g *skeleton.Graph) error {
	bw := bufio.NewWriter(w)
	for _, e := range g.Edges() {
		fmt.Fprintf(bw, "%d %d\n", e.From, e.To)
	}
	return bw.Flush()
}

// WriteBounds writes one line per node with its associated boundary
// indices, space separated. Nodes without associations produce an empty
// line so that line i always belongs to node i.
func WriteBounds(w io.Writer, g *skeleton.Graph) error {
	bw := bufio.NewWriter(w)
	assoc := g.Associations()
	for i := range g.NodeCount() {
		for j, b := range assoc[i] {
			if j > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(strconv.Itoa(b))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteSkeleton writes the points, edges and bounds files for g under
// path; see SkeletonPaths. All three files are attempted and their errors
// joined.
func WriteSkeleton(g *skeleton.Graph, path string) error {
	pts, edg, bnd := SkeletonPaths(path)
	return errors.Join(
		writeFile(pts, func(w io.Writer) error { return WritePoints(w, g) }),
		writeFile(edg, func(w io.Writer) error { return WriteEdges(w, g) }),
		writeFile(bnd, func(w io.Writer) error { return WriteBounds(w, g) }),
	)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func readFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	f, err := os.Open(path)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	v, err := read(f)
	if err != nil {
		return v, fmt.Errorf("read %s: %w", path, err)
	}
	return v, nil
}

// lines returns the lines of r with trailing carriage returns removed.
func lines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		out = append(out, strings.TrimRight(sc.Text(), "\r"))
	}
	return out, sc.Err()
}

// ReadPoints parses a points file. Blank lines are skipped.
func ReadPoints(r io.Reader) ([]geom.Point, error) {
	ls, err := lines(r)
	if err != nil {
		return nil, err
	}
	var pts []geom.Point
	for i, l := range ls {
		f := strings.Fields(l)
		if len(f) == 0 {
			continue
		}
		if len(f) != 2 {
			return nil, fmt.Errorf("%w: line %d: want 2 fields, got %d", ErrMalformed, i+1, len(f))
		}
		x, errX := strconv.ParseFloat(f[0], 64)
		y, errY := strconv.ParseFloat(f[1], 64)
		if err := errors.Join(errX, errY); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, i+1, err)
		}
		pts = append(pts, geom.Pt(x, y))
	}
	return pts, nil
}

// ReadEdges parses an edges file. Blank lines are skipped.
func ReadEdges(r io.Reader) ([]skeleton.Edge, error) {
	ls, err := lines(r)
	if err != nil {
		return nil, err
	}
	var edges []skeleton.Edge
	for i, l := range ls {
		f := strings.Fields(l)
		if len(f) == 0 {
			continue
		}
		if len(f) != 2 {
			return nil, fmt.Errorf("%w: line %d: want 2 fields, got %d", ErrMalformed, i+1, len(f))
		}
		a, errA := strconv.Atoi(f[0])
		b, errB := strconv.Atoi(f[1])
		if err := errors.Join(errA, errB); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, i+1, err)
		}
		edges = append(edges, skeleton.Edge{From: a, To: b})
	}
	return edges, nil
}

// ReadBounds parses a bounds file: one line per node. Trailing blank
// lines are kept, since a node may have no associations.
func ReadBounds(r io.Reader) ([][]int, error) {
	ls, err := lines(r)
	if err != nil {
		return nil, err
	}
	out := make([][]int, len(ls))
	for i, l := range ls {
		f := strings.Fields(l)
		out[i] = make([]int, len(f))
		for j, s := range f {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, i+1, err)
			}
			out[i][j] = v
		}
	}
	return out, nil
}

// Assemble builds a graph from parsed points, edges and bounds. Radii are
// zero and generating vertices unknown; see RestoreRadii. Extra blank
// bound lines past the last node are ignored.
func Assemble(pts []geom.Point, edges []skeleton.Edge, bounds [][]int) (*skeleton.Graph, error) {
	for len(bounds) > len(pts) && len(bounds[len(bounds)-1]) == 0 {
		bounds = bounds[:len(bounds)-1]
	}
	if len(bounds) != len(pts) {
		return nil, fmt.Errorf("%w: %d points but %d bound lines", ErrMalformed, len(pts), len(bounds))
	}
	g := skeleton.New(len(pts))
	for i, p := range pts {
		g.AddNode(skeleton.Node{
			Disk:    geom.Disk{Center: p},
			Owner:   skeleton.NoVertex,
			Contact: skeleton.NoVertex,
			Bounds:  bounds[i],
		})
	}
	for _, e := range edges {
		if err := g.AddEdge(e.From, e.To); err != nil {
			return nil, fmt.Errorf("%w: edge %d-%d: %v", ErrMalformed, e.From, e.To, err)
		}
	}
	return g, nil
}

// ReadSkeleton reads the three files written by WriteSkeleton under path.
func ReadSkeleton(path string) (*skeleton.Graph, error) {
	ptsPath, edgPath, bndPath := SkeletonPaths(path)
	pts, err := readFile(ptsPath, ReadPoints)
	if err != nil {
		return nil, err
	}
	edges, err := readFile(edgPath, ReadEdges)
	if err != nil {
		return nil, err
	}
	bounds, err := readFile(bndPath, ReadBounds)
	if err != nil {
		return nil, err
	}
	return Assemble(pts, edges, bounds)
}

// RestoreRadii returns a copy of g in which each node's radius is the
// smallest distance from its centre to its associated boundary vertices.
// Nodes without associations keep their radius.
func RestoreRadii(g *skeleton.Graph, bnd *boundary.Boundary) (*skeleton.Graph, error) {
	out := skeleton.New(g.NodeCount())
	for i, n := range g.Nodes() {
		if len(n.Bounds) > 0 {
			r := math.Inf(1)
			for _, b := range n.Bounds {
				if b < 0 || b >= bnd.Len() {
					return nil, fmt.Errorf("%w: node %d references vertex %d of %d", ErrMalformed, i, b, bnd.Len())
				}
				r = math.Min(r, n.Disk.Center.Dist(bnd.Point(b)))
			}
			n.Disk.Radius = r
		}
		out.AddNode(n)
	}
	for _, e := range g.Edges() {
		if err := out.AddEdge(e.From, e.To); err != nil {
			return nil, err
		}
	}
	return out, nil
}
