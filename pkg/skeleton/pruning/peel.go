package pruning

import (
	"cmp"
	"slices"

	"github.com/emirpasic/gods/trees/binaryheap"

	"github.com/matzehuels/medialaxis/pkg/skeleton"
)

// Result reports the outcome of a pruning operator.
type Result struct {
	Graph   *skeleton.Graph
	Removed int
}

type leaf struct {
	node int
	sig  float64
}

func bySignificance(a, b interface{}) int {
	la, lb := a.(leaf), b.(leaf)
	if c := cmp.Compare(la.sig, lb.sig); c != 0 {
		return c
	}
	return cmp.Compare(la.node, lb.node)
}

// peel removes leaves for which drop reports true, smallest significance
// first, and rebuilds the graph from the survivors.
func peel(g *skeleton.Graph, sig []float64, drop func(float64) bool) *Result {
	n := g.NodeCount()
	protected := make([]bool, n)
	for _, comp := range g.Components() {
		best := comp[0]
		for _, v := range comp[1:] {
			if sig[v] > sig[best] {
				best = v
			}
		}
		protected[best] = true
	}

	deg := make([]int, n)
	removed := make([]bool, n)
	attach := make([]int, n)
	heap := binaryheap.NewWith(bySignificance)
	candidate := func(v int) bool { return !protected[v] && deg[v] <= 1 && drop(sig[v]) }
	for v := 0; v < n; v++ {
		deg[v] = g.Degree(v)
		attach[v] = -1
	}
	for v := 0; v < n; v++ {
		if candidate(v) {
			heap.Push(leaf{node: v, sig: sig[v]})
		}
	}

	count := 0
	for {
		x, ok := heap.Pop()
		if !ok {
			break
		}
		v := x.(leaf).node
		if removed[v] {
			continue
		}
		removed[v] = true
		count++
		for _, u := range g.Neighbors(v) {
			if removed[u] {
				continue
			}
			attach[v] = u
			deg[u]--
			if candidate(u) {
				heap.Push(leaf{node: u, sig: sig[u]})
			}
		}
	}

	keep := make([]bool, n)
	bounds := make([][]int, n)
	for v := 0; v < n; v++ {
		keep[v] = !removed[v]
		if keep[v] {
			bounds[v] = slices.Clone(g.Node(v).Bounds)
		}
	}
	for v := 0; v < n; v++ {
		if !removed[v] {
			continue
		}
		t := v
		for removed[t] {
			t = attach[t]
		}
		bounds[t] = append(bounds[t], g.Node(v).Bounds...)
	}
	for v := range bounds {
		if keep[v] {
			slices.Sort(bounds[v])
		}
	}

	out, _ := g.Subgraph(keep, bounds)
	return &Result{Graph: out, Removed: count}
}
