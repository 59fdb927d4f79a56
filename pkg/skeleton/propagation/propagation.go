// Package propagation implements the sphere propagation skeletonizer: it
// turns a closed discrete boundary into a skeleton graph whose disks
// reconstruct the shape within a tolerance α.
//
// Every boundary vertex proposes one candidate disk, grown along its inward
// normal until it touches the opposite side. On boundaries traced from a
// raster the disk also stops before it covers a background pixel, so its
// rasterization stays inside the shape. Candidates do not depend on α.
//
// Candidates are accepted from the largest down. An accepted disk claims the
// run of boundary vertices around its two contact points that lie within
// the tolerance of its circle, so each vertex ends up associated with
// exactly one node. Tolerances are applied on a fixed ladder (steps of
// 0.1 px up to 5 px, then 10% steps); each level may only keep nodes of the
// level below, so raising α only ever removes disks. Nodes whose vertex runs
// touch along the boundary are joined, and the minimum spanning tree of
// those joins forms the skeleton's edges.
package propagation

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/emirpasic/gods/trees/binaryheap"

	"github.com/matzehuels/medialaxis/pkg/boundary"
	"github.com/matzehuels/medialaxis/pkg/geom"
	"github.com/matzehuels/medialaxis/pkg/skeleton"
	"github.com/matzehuels/medialaxis/pkg/skinning"
)

// ErrNegativeAlpha is returned when the tolerance α is negative.
var ErrNegativeAlpha = errors.New("propagation: alpha must be non-negative")

// Epsilon is the slack added to the tolerance when comparing floating-point
// distances. Callers checking reconstruction error against α should allow
// the same slack.
const Epsilon = 1e-9

const (
	// DefaultAlpha is the default reconstruction tolerance in pixels.
	DefaultAlpha = 2.1

	// DefaultNormalWindow is the default half-width of the chord used to
	// estimate boundary normals.
	DefaultNormalWindow = 3

	// ladderStep is the tolerance step up to ladderLinearTop; above it
	// each level is ladderGrowth times the previous one.
	ladderStep      = 0.1
	ladderLinearTop = 5.0
	ladderGrowth    = 1.1

	// ringMargin keeps background pixels strictly outside grown disks.
	ringMargin = 1e-6
)

// Options configures the skeletonizer.
type Options struct {
	// Alpha is the reconstruction tolerance: every boundary vertex lies
	// within Alpha of the circle of the node it is associated with.
	Alpha float64

	// TargetNodes, when positive, keeps climbing the tolerance ladder
	// above Alpha until the skeleton has at most this many nodes.
	TargetNodes int

	// NormalWindow is the chord half-width for normal estimation.
	// Zero selects DefaultNormalWindow.
	NormalWindow int
}

// DefaultOptions returns Options with α = 2.1 and the default normal window.
func DefaultOptions() Options {
	return Options{Alpha: DefaultAlpha, NormalWindow: DefaultNormalWindow}
}

// Result holds a skeleton together with the tolerance it was built with.
type Result struct {
	Graph *skeleton.Graph
	// Tolerance is Alpha, or the ladder level reached by the TargetNodes
	// search. Every vertex lies within Tolerance of its node's circle.
	Tolerance float64
	// Candidates is the number of candidate disks considered.
	Candidates int
	// Rounds is the number of ladder levels climbed above Alpha for
	// TargetNodes.
	Rounds int
}

// SpherePropagation skeletonizes a closed boundary.
func SpherePropagation(bnd *boundary.Boundary, opts Options) (*skeleton.Graph, error) {
	res, err := SpherePropagationWithResult(bnd, opts)
	if err != nil {
		return nil, err
	}
	return res.Graph, nil
}

// SpherePropagationWithResult is SpherePropagation returning the tolerance
// and search statistics alongside the graph.
func SpherePropagationWithResult(bnd *boundary.Boundary, opts Options) (*Result, error) {
	if opts.Alpha < 0 || math.IsNaN(opts.Alpha) {
		return nil, fmt.Errorf("%w: %v", ErrNegativeAlpha, opts.Alpha)
	}
	if opts.NormalWindow <= 0 {
		opts.NormalWindow = DefaultNormalWindow
	}
	if err := bnd.Validate(); err != nil {
		return nil, err
	}
	if bnd.Len() < 3 {
		return &Result{Graph: degenerate(bnd), Tolerance: opts.Alpha, Candidates: bnd.Len()}, nil
	}

	p := newPropagator(bnd, opts.NormalWindow)
	a, rounds := p.climb(opts.Alpha, opts.TargetNodes)
	g, err := p.graph(a)
	if err != nil {
		return nil, err
	}
	res := &Result{Graph: g, Tolerance: opts.Alpha, Candidates: len(p.cands), Rounds: rounds}
	if rounds > 0 {
		res.Tolerance = a.tol
	}
	return res, nil
}

// degenerate handles boundaries too small to carry normals: one node at
// the vertex mean that covers every vertex.
func degenerate(bnd *boundary.Boundary) *skeleton.Graph {
	var c geom.Point
	for _, q := range bnd.Points() {
		c = c.Add(q)
	}
	c = c.Scale(1 / float64(bnd.Len()))
	r := 0.0
	bounds := make([]int, 0, bnd.Len())
	for i, k := 0, 0; k < bnd.Len(); i, k = bnd.Next(i), k+1 {
		r = math.Max(r, c.Dist(bnd.Point(i)))
		bounds = append(bounds, i)
	}
	g := skeleton.New(1)
	g.AddNode(skeleton.Node{
		Disk:    geom.Disk{Center: c, Radius: r},
		Owner:   skeleton.NoVertex,
		Contact: skeleton.NoVertex,
		Bounds:  bounds,
	})
	return g
}

// candidate is the disk grown from one boundary vertex.
type candidate struct {
	disk    geom.Disk
	owner   int
	contact int
}

// byRadiusDesc orders candidates largest first; equal radii go to the lower
// owner index so that propagation is deterministic.
func byRadiusDesc(a, b interface{}) int {
	ca, cb := a.(*candidate), b.(*candidate)
	switch {
	case ca.disk.Radius > cb.disk.Radius:
		return -1
	case ca.disk.Radius < cb.disk.Radius:
		return 1
	case ca.owner < cb.owner:
		return -1
	case ca.owner > cb.owner:
		return 1
	}
	return 0
}

type propagator struct {
	bnd     *boundary.Boundary
	pts     []geom.Point
	normals []geom.Point
	valid   []bool
	maxR    float64
	ring    []ringPixel
	cands   []*candidate // indexed by owner vertex
	order   []int        // candidate owners, largest disk first
}

// ringPixel is a background pixel 4-adjacent to the shape, with a boundary
// vertex next to it or NoVertex.
type ringPixel struct {
	at     geom.Point
	vertex int
}

func newPropagator(bnd *boundary.Boundary, window int) *propagator {
	p := &propagator{
		bnd:     bnd,
		pts:     bnd.Points(),
		normals: make([]geom.Point, bnd.Len()),
		valid:   make([]bool, bnd.Len()),
		maxR:    bnd.Diagonal(),
		ring:    backgroundRing(bnd),
	}
	for i := range p.pts {
		p.normals[i], p.valid[i] = bnd.Normal(i, window)
	}

	heap := binaryheap.NewWith(byRadiusDesc)
	p.cands = make([]*candidate, len(p.pts))
	for i := range p.pts {
		p.cands[i] = p.grow(i)
		heap.Push(p.cands[i])
	}
	p.order = make([]int, 0, len(p.pts))
	for v, ok := heap.Pop(); ok; v, ok = heap.Pop() {
		p.order = append(p.order, v.(*candidate).owner)
	}
	return p
}

// rasterTraced reports whether consecutive vertices are 8-neighbours, as
// in a contour traced from a mask, and all coordinates are non-negative.
func rasterTraced(bnd *boundary.Boundary) bool {
	for i := 0; i < bnd.Len(); i++ {
		a, b := bnd.Vertex(i), bnd.Vertex(bnd.Next(i))
		if a.X < 0 || a.Y < 0 {
			return false
		}
		if d := a.Sub(b); max(d.X, -d.X, d.Y, -d.Y) > 1 {
			return false
		}
	}
	return true
}

// backgroundRing returns the background pixels 4-adjacent to the region
// enclosed by a raster-traced boundary. It is empty for other boundaries,
// whose vertices carry no pixel meaning.
func backgroundRing(bnd *boundary.Boundary) []ringPixel {
	if bnd.Len() < 3 || !rasterTraced(bnd) {
		return nil
	}
	_, hi := bnd.Bounds()
	w, h := int(hi.X)+1, int(hi.Y)+1
	inside := skinning.FillBoundary(w, h, bnd)

	vertexAt := make(map[geom.IPoint]int, bnd.Len())
	for i := bnd.Len() - 1; i >= 0; i-- {
		vertexAt[bnd.Vertex(i)] = i
	}
	four := [4]geom.IPoint{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}

	seen := make(map[geom.IPoint]bool)
	var ring []ringPixel
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !inside.At(x, y) {
				continue
			}
			px := geom.IPoint{X: x, Y: y}
			for _, o := range four {
				q := px.Add(o)
				if inside.At(q.X, q.Y) || seen[q] {
					continue
				}
				seen[q] = true
				v, ok := vertexAt[px]
				if !ok {
					v = skeleton.NoVertex
				}
				ring = append(ring, ringPixel{at: q.Float(), vertex: v})
			}
		}
	}
	return ring
}

// grow returns the candidate disk of vertex i.
//
// The centre moves along the inward normal n with radius t, so the disks
// are nested and all pass through p_i. A point q enters the disk once
// t >= |d|² / (2 d·n) with d = q - p_i and d·n > 0. Boundary vertices
// stop the disk at that radius; background ring pixels stop it just before.
func (p *propagator) grow(i int) *candidate {
	c := &candidate{owner: i, contact: skeleton.NoVertex}
	pi := p.pts[i]
	if !p.valid[i] {
		c.disk = geom.Disk{Center: pi}
		return c
	}
	n := p.normals[i]
	best := p.maxR
	for q, pq := range p.pts {
		if q == i {
			continue
		}
		d := pq.Sub(pi)
		if dn := d.Dot(n); dn > 0 {
			if t := d.Norm2() / (2 * dn); t < best {
				best, c.contact = t, q
			}
		}
	}
	for _, r := range p.ring {
		d := r.at.Sub(pi)
		if dn := d.Dot(n); dn > 0 {
			if t := d.Norm2()/(2*dn) - ringMargin; t < best {
				best, c.contact = t, r.vertex
			}
		}
	}
	best = math.Max(best, 0)
	c.disk = geom.Disk{Center: pi.Add(n.Scale(best)), Radius: best}
	return c
}

// assignment is the outcome of one ladder level: the accepted candidates
// and the node owning every vertex.
type assignment struct {
	tol    float64
	nodes  []int   // owner vertex of each node's candidate
	bounds [][]int // vertices of each node
	owner  []int   // node of each vertex
	node   []int   // node of each candidate, -1 if not accepted
}

func newAssignment(tol float64, n int) *assignment {
	a := &assignment{tol: tol, owner: make([]int, n), node: make([]int, n)}
	for i := range n {
		a.owner[i], a.node[i] = -1, -1
	}
	return a
}

func (a *assignment) accept(cand int) int {
	id := len(a.nodes)
	a.nodes = append(a.nodes, cand)
	a.bounds = append(a.bounds, nil)
	a.node[cand] = id
	return id
}

// nextLevel returns the ladder level above t.
func nextLevel(t float64) float64 {
	if t < ladderLinearTop-Epsilon {
		return float64(int(math.Round(t/ladderStep))+1) * ladderStep
	}
	return t * ladderGrowth
}

// climb walks the ladder from zero through every level not above alpha,
// then further while the node count exceeds target. It returns the last
// assignment and the number of levels above alpha.
func (p *propagator) climb(alpha float64, target int) (*assignment, int) {
	a := p.level(0, nil)
	top := 2*p.maxR + 1
	rounds := 0
	for t := nextLevel(0); ; t = nextLevel(t) {
		within := t <= alpha+Epsilon
		if !within && (target <= 0 || len(a.nodes) <= target || a.tol > top) {
			return a, rounds
		}
		a = p.level(t, a)
		if !within {
			rounds++
		}
	}
}

// level assigns every vertex at tolerance tol. With a previous level only
// its nodes may be accepted. A vertex left unclaimed goes back to its
// previous node, which lies within prev.tol <= tol of it.
func (p *propagator) level(tol float64, prev *assignment) *assignment {
	a := newAssignment(tol, len(p.pts))
	for _, ci := range p.order {
		if a.owner[ci] >= 0 || (prev != nil && prev.node[ci] < 0) {
			continue
		}
		c := p.cands[ci]
		id := a.accept(ci)
		run := p.claim(ci, c.disk, tol, id, a.owner)
		if c.contact >= 0 && a.owner[c.contact] < 0 && p.near(c.contact, c.disk, tol) {
			run = append(run, p.claim(c.contact, c.disk, tol, id, a.owner)...)
		}
		a.bounds[id] = run
	}
	if prev == nil {
		return a
	}
	for v, id := range a.owner {
		if id >= 0 {
			continue
		}
		ci := prev.nodes[prev.owner[v]]
		if id = a.node[ci]; id < 0 {
			id = a.accept(ci)
		}
		a.owner[v] = id
		a.bounds[id] = append(a.bounds[id], v)
	}
	return a
}

// graph builds the skeleton of an assignment.
func (p *propagator) graph(a *assignment) (*skeleton.Graph, error) {
	g := skeleton.New(len(a.nodes))
	for id, ci := range a.nodes {
		c := p.cands[ci]
		g.AddNode(skeleton.Node{Disk: c.disk, Owner: c.owner, Contact: c.contact, Bounds: a.bounds[id]})
	}
	for _, e := range spanningEdges(p.bnd, g, a.owner) {
		if err := g.AddEdge(e.From, e.To); err != nil {
			return nil, fmt.Errorf("propagation: spanning edge %d-%d: %w", e.From, e.To, err)
		}
	}
	return g, nil
}

func (p *propagator) near(b int, d geom.Disk, tol float64) bool {
	return math.Abs(d.Center.Dist(p.pts[b])-d.Radius) <= tol+Epsilon
}

// claim assigns the run of unclaimed vertices around start that lie within
// tol of the disk's circle to node id, returning them in boundary order.
func (p *propagator) claim(start int, d geom.Disk, tol float64, id int, owner []int) []int {
	owner[start] = id
	var before []int
	for b := p.bnd.Prev(start); owner[b] < 0 && p.near(b, d, tol); b = p.bnd.Prev(b) {
		owner[b] = id
		before = append(before, b)
	}
	slices.Reverse(before)
	run := append(before, start)
	for b := p.bnd.Next(start); owner[b] < 0 && p.near(b, d, tol); b = p.bnd.Next(b) {
		owner[b] = id
		run = append(run, b)
	}
	return run
}
