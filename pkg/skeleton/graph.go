package skeleton

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/medialaxis/pkg/geom"
)

var (
	// ErrUnknownNode is returned by [Graph.AddEdge] when an endpoint index
	// does not refer to a node of the graph.
	ErrUnknownNode = errors.New("skeleton: unknown node")

	// ErrSelfLoop is returned by [Graph.AddEdge] when both endpoints are the
	// same node.
	ErrSelfLoop = errors.New("skeleton: self loop")

	// ErrDuplicateEdge is returned by [Graph.AddEdge] when the two nodes are
	// already connected. Skeleton graphs are simple.
	ErrDuplicateEdge = errors.New("skeleton: duplicate edge")

	// ErrNegativeRadius is returned by [Graph.Validate] for a node whose disk
	// has a negative radius.
	ErrNegativeRadius = errors.New("skeleton: negative radius")

	// ErrAssociation is returned by [Graph.Validate] and
	// [Graph.ValidateCoverage] when association lists are inconsistent with
	// the boundary (index out of range, listed twice, or missing).
	ErrAssociation = errors.New("skeleton: inconsistent boundary association")
)

// NoVertex marks an unknown generating boundary vertex.
const NoVertex = -1

// Node is one medial disk of the skeleton.
//
// Owner is the boundary vertex whose inward normal grew the disk and Contact
// the vertex that stopped it; both are NoVertex when unknown, for example
// after reading a skeleton back from disk. Bounds lists the boundary vertex
// indices the disk accounts for, in boundary order.
type Node struct {
	Disk    geom.Disk
	Owner   int
	Contact int
	Bounds  []int
}

// Center is shorthand for n.Disk.Center.
func (n Node) Center() geom.Point { return n.Disk.Center }

// Radius is shorthand for n.Disk.Radius.
func (n Node) Radius() float64 { return n.Disk.Radius }

// Edge is an undirected connection between two nodes. Edges stored in a
// graph always have From < To.
type Edge struct {
	From int
	To   int
}

func normEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{From: a, To: b}
}

// Graph is an undirected skeleton graph stored as an arena: a flat table of
// nodes, a flat table of edges, and per-node adjacency, all addressed by
// integer index.
//
// The zero value is an empty graph ready to use. Graph is not safe for
// concurrent mutation; pipeline stages never mutate a graph they receive
// and build new ones instead.
type Graph struct {
	nodes []Node
	edges []Edge
	adj   [][]int
}

// New creates an empty graph with room for n nodes.
func New(n int) *Graph {
	return &Graph{
		nodes: make([]Node, 0, n),
		adj:   make([][]int, 0, n),
	}
}

// AddNode appends a node and returns its index. The Bounds slice is copied.
func (g *Graph) AddNode(n Node) int {
	n.Bounds = slices.Clone(n.Bounds)
	g.nodes = append(g.nodes, n)
	g.adj = append(g.adj, nil)
	return len(g.nodes) - 1
}

// AddEdge connects nodes a and b.
func (g *Graph) AddEdge(a, b int) error {
	if a < 0 || a >= len(g.nodes) || b < 0 || b >= len(g.nodes) {
		return fmt.Errorf("%w: edge %d-%d", ErrUnknownNode, a, b)
	}
	if a == b {
		return fmt.Errorf("%w: node %d", ErrSelfLoop, a)
	}
	if g.HasEdge(a, b) {
		return fmt.Errorf("%w: %d-%d", ErrDuplicateEdge, a, b)
	}
	g.edges = append(g.edges, normEdge(a, b))
	g.adj[a] = insertSorted(g.adj[a], b)
	g.adj[b] = insertSorted(g.adj[b], a)
	return nil
}

func insertSorted(s []int, v int) []int {
	i, _ := slices.BinarySearch(s, v)
	return slices.Insert(s, i, v)
}

// HasEdge reports whether nodes a and b are adjacent.
func (g *Graph) HasEdge(a, b int) bool {
	if a < 0 || a >= len(g.adj) {
		return false
	}
	_, ok := slices.BinarySearch(g.adj[a], b)
	return ok
}

// Node returns the node at index i. The returned Bounds slice must not be
// modified.
func (g *Graph) Node(i int) Node { return g.nodes[i] }

// Nodes returns the node table. The slice must not be modified.
func (g *Graph) Nodes() []Node { return g.nodes }

// Edges returns the edge table in insertion order. The slice must not be
// modified.
func (g *Graph) Edges() []Edge { return g.edges }

// Neighbors returns the sorted indices adjacent to node i.
func (g *Graph) Neighbors(i int) []int { return g.adj[i] }

// Degree returns the number of edges incident to node i.
func (g *Graph) Degree(i int) int { return len(g.adj[i]) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// BranchCount returns the number of branches: the sum of degrees over all
// nodes whose degree is not 2, halved. For a tree this counts the chains of
// degree-2 nodes between junctions and end points.
func (g *Graph) BranchCount() int {
	s := 0
	for i := range g.nodes {
		if d := len(g.adj[i]); d != 2 {
			s += d
		}
	}
	return s / 2
}

// Associations returns a fresh map from node index to its ordered boundary
// vertex indices.
func (g *Graph) Associations() map[int][]int {
	m := make(map[int][]int, len(g.nodes))
	for i, n := range g.nodes {
		m[i] = slices.Clone(n.Bounds)
	}
	return m
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes: make([]Node, len(g.nodes)),
		edges: slices.Clone(g.edges),
		adj:   make([][]int, len(g.adj)),
	}
	for i, n := range g.nodes {
		n.Bounds = slices.Clone(n.Bounds)
		c.nodes[i] = n
		c.adj[i] = slices.Clone(g.adj[i])
	}
	return c
}

// Subgraph builds a new graph from the nodes with keep[i] true, in index
// order, and the edges between them. It returns the mapping from old to
// new indices (-1 for dropped nodes). bounds, when non-nil, replaces the
// association list of each kept node (indexed by old index).
func (g *Graph) Subgraph(keep []bool, bounds [][]int) (*Graph, []int) {
	remap := make([]int, len(g.nodes))
	out := New(len(g.nodes))
	for i, n := range g.nodes {
		remap[i] = -1
		if !keep[i] {
			continue
		}
		if bounds != nil {
			n.Bounds = bounds[i]
		}
		remap[i] = out.AddNode(n)
	}
	for _, e := range g.edges {
		a, b := remap[e.From], remap[e.To]
		if a >= 0 && b >= 0 {
			_ = out.AddEdge(a, b)
		}
	}
	return out, remap
}

// Components returns the connected components as sorted index lists,
// ordered by their smallest node index.
func (g *Graph) Components() [][]int {
	seen := make([]bool, len(g.nodes))
	var comps [][]int
	for s := range g.nodes {
		if seen[s] {
			continue
		}
		seen[s] = true
		comp := []int{s}
		for q := 0; q < len(comp); q++ {
			for _, v := range g.adj[comp[q]] {
				if !seen[v] {
					seen[v] = true
					comp = append(comp, v)
				}
			}
		}
		slices.Sort(comp)
		comps = append(comps, comp)
	}
	return comps
}

// IsConnected reports whether the graph has at most one component.
func (g *Graph) IsConnected() bool { return len(g.Components()) <= 1 }

// Validate checks structural invariants: edge endpoints in range and
// normalised, adjacency symmetric, radii non-negative, and no boundary
// vertex associated with two nodes.
func (g *Graph) Validate() error {
	for _, e := range g.edges {
		if e.From < 0 || e.To >= len(g.nodes) || e.From >= e.To {
			return fmt.Errorf("%w: edge %d-%d", ErrUnknownNode, e.From, e.To)
		}
		if !g.HasEdge(e.From, e.To) || !g.HasEdge(e.To, e.From) {
			return fmt.Errorf("skeleton: adjacency missing edge %d-%d", e.From, e.To)
		}
	}
	seen := make(map[int]int)
	for i, n := range g.nodes {
		if n.Disk.Radius < 0 {
			return fmt.Errorf("%w: node %d", ErrNegativeRadius, i)
		}
		for _, b := range n.Bounds {
			if j, dup := seen[b]; dup {
				return fmt.Errorf("%w: vertex %d in nodes %d and %d", ErrAssociation, b, j, i)
			}
			seen[b] = i
		}
	}
	return nil
}

// ValidateCoverage checks that every boundary vertex index in [0, n) is
// associated with exactly one node and that no other index appears.
func (g *Graph) ValidateCoverage(n int) error {
	count := make([]int, n)
	for i, node := range g.nodes {
		for _, b := range node.Bounds {
			if b < 0 || b >= n {
				return fmt.Errorf("%w: node %d lists vertex %d of %d", ErrAssociation, i, b, n)
			}
			count[b]++
		}
	}
	for b, c := range count {
		if c != 1 {
			return fmt.Errorf("%w: vertex %d associated %d times", ErrAssociation, b, c)
		}
	}
	return nil
}
