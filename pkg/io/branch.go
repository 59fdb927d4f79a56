package io

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/medialaxis/pkg/skeleton"
)

// WriteBranch writes a B-spline branch: the degree, the knot count and the
// knots, then the control point count and one "x y z r" line per control
// point.
func WriteBranch(w io.Writer, c *skeleton.Curve3D) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n%d\n", c.Degree, len(c.Knots))
	for i, k := range c.Knots {
		if i > 0 {
			bw.WriteByte(' ')
		}
		bw.WriteString(formatFloat(k))
	}
	fmt.Fprintf(bw, "\n%d\n", len(c.Ctrl))
	for _, p := range c.Ctrl {
		fmt.Fprintf(bw, "%s %s %s %s\n", formatFloat(p[0]), formatFloat(p[1]), formatFloat(p[2]), formatFloat(p[3]))
	}
	return bw.Flush()
}

// ReadBranch parses a branch file. The file is read as a stream of
// whitespace separated numbers, so line breaks are not significant.
func ReadBranch(r io.Reader) (*skeleton.Curve3D, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	next := func(what string) (float64, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return 0, err
			}
			return 0, fmt.Errorf("%w: missing %s", ErrMalformed, what)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(sc.Text()), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrMalformed, what, err)
		}
		return v, nil
	}
	count := func(what string) (int, error) {
		v, err := next(what)
		if err != nil {
			return 0, err
		}
		if v < 0 || v != float64(int(v)) {
			return 0, fmt.Errorf("%w: %s %v is not a count", ErrMalformed, what, v)
		}
		return int(v), nil
	}

	degree, err := count("degree")
	if err != nil {
		return nil, err
	}
	nk, err := count("knot count")
	if err != nil {
		return nil, err
	}
	knots := make([]float64, nk)
	for i := range knots {
		if knots[i], err = next("knot"); err != nil {
			return nil, err
		}
	}
	nc, err := count("control point count")
	if err != nil {
		return nil, err
	}
	ctrl := make([][4]float64, nc)
	for i := range ctrl {
		for j := 0; j < 4; j++ {
			if ctrl[i][j], err = next("control point"); err != nil {
				return nil, err
			}
		}
	}
	return skeleton.NewCurve3D(degree, knots, ctrl)
}
