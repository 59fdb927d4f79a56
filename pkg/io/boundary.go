package io

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/medialaxis/pkg/boundary"
	"github.com/matzehuels/medialaxis/pkg/geom"
)

// WriteBoundary writes a boundary file: the vertex count on the first line,
// then one "x y prev next" line per vertex.
func WriteBoundary(w io.Writer, bnd *boundary.Boundary) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", bnd.Len())
	for i := 0; i < bnd.Len(); i++ {
		v := bnd.Vertex(i)
		fmt.Fprintf(bw, "%d %d %d %d\n", v.X, v.Y, bnd.Prev(i), bnd.Next(i))
	}
	return bw.Flush()
}

// ReadBoundary parses a boundary file written by WriteBoundary and checks
// the single-cycle invariant.
func ReadBoundary(r io.Reader) (*boundary.Boundary, error) {
	ls, err := lines(r)
	if err != nil {
		return nil, err
	}
	var rows []string
	for _, l := range ls {
		if strings.TrimSpace(l) != "" {
			rows = append(rows, l)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty boundary file", ErrMalformed)
	}
	n, err := strconv.Atoi(strings.TrimSpace(rows[0]))
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%w: bad vertex count %q", ErrMalformed, rows[0])
	}
	if len(rows)-1 != n {
		return nil, fmt.Errorf("%w: header says %d vertices, found %d", ErrMalformed, n, len(rows)-1)
	}

	pts := make([]geom.IPoint, n)
	prev := make([]int, n)
	next := make([]int, n)
	for i, row := range rows[1:] {
		f := strings.Fields(row)
		if len(f) != 4 {
			return nil, fmt.Errorf("%w: vertex %d: want 4 fields, got %d", ErrMalformed, i, len(f))
		}
		var v [4]int
		for j := range v {
			if v[j], err = strconv.Atoi(f[j]); err != nil {
				return nil, fmt.Errorf("%w: vertex %d: %v", ErrMalformed, i, err)
			}
		}
		pts[i] = geom.IPoint{X: v[0], Y: v[1]}
		prev[i], next[i] = v[2], v[3]
	}

	bnd, err := boundary.New(pts, prev, next)
	if err != nil {
		return nil, err
	}
	if err := bnd.Validate(); err != nil {
		return nil, err
	}
	return bnd, nil
}

// ExportBoundary writes a boundary file at path.
func ExportBoundary(bnd *boundary.Boundary, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteBoundary(w, bnd) })
}

// ImportBoundary reads a boundary file at path.
func ImportBoundary(path string) (*boundary.Boundary, error) {
	return readFile(path, ReadBoundary)
}
