package propagation

import (
	"cmp"
	"slices"

	"github.com/matzehuels/medialaxis/pkg/boundary"
	"github.com/matzehuels/medialaxis/pkg/skeleton"
)

type weightedEdge struct {
	skeleton.Edge
	w float64
}

// spanningEdges joins nodes whose vertex runs meet along the boundary and
// keeps a minimum spanning tree of those joins (Kruskal), weighted by the
// distance between disk centres. Equal weights are broken by node indices.
func spanningEdges(bnd *boundary.Boundary, g *skeleton.Graph, owner []int) []skeleton.Edge {
	seen := make(map[skeleton.Edge]bool)
	var cand []weightedEdge
	for i := 0; i < bnd.Len(); i++ {
		a, b := owner[i], owner[bnd.Next(i)]
		if a == b || a < 0 || b < 0 {
			continue
		}
		e := skeleton.Edge{From: min(a, b), To: max(a, b)}
		if seen[e] {
			continue
		}
		seen[e] = true
		w := g.Node(e.From).Center().Dist(g.Node(e.To).Center())
		cand = append(cand, weightedEdge{Edge: e, w: w})
	}
	slices.SortFunc(cand, func(x, y weightedEdge) int {
		if c := cmp.Compare(x.w, y.w); c != 0 {
			return c
		}
		if c := cmp.Compare(x.From, y.From); c != 0 {
			return c
		}
		return cmp.Compare(x.To, y.To)
	})

	uf := newUnionFind(g.NodeCount())
	var out []skeleton.Edge
	for _, e := range cand {
		if uf.union(e.From, e.To) {
			out = append(out, e.Edge)
		}
	}
	return out
}

type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	u := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range u.parent {
		u.parent[i] = i
	}
	return u
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

// union merges the sets of a and b and reports whether they were distinct.
func (u *unionFind) union(a, b int) bool {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return false
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
	return true
}
