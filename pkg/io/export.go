package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/medialaxis/pkg/skeleton"
)

type graph struct {
	Nodes []node `json:"nodes"`
	Edges []edge `json:"edges"`
}

type node struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	R       float64 `json:"r"`
	Owner   *int    `json:"owner,omitempty"`
	Contact *int    `json:"contact,omitempty"`
	Bounds  []int   `json:"bounds"`
}

type edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func vertexRef(v int) *int {
	if v == skeleton.NoVertex {
		return nil
	}
	return &v
}

func toJSON(g *skeleton.Graph) graph {
	out := graph{
		Nodes: make([]node, g.NodeCount()),
		Edges: make([]edge, g.EdgeCount()),
	}
	for i, n := range g.Nodes() {
		bounds := n.Bounds
		if bounds == nil {
			bounds = []int{}
		}
		out.Nodes[i] = node{
			X:       n.Disk.Center.X,
			Y:       n.Disk.Center.Y,
			R:       n.Disk.Radius,
			Owner:   vertexRef(n.Owner),
			Contact: vertexRef(n.Contact),
			Bounds:  bounds,
		}
	}
	for i, e := range g.Edges() {
		out.Edges[i] = edge{From: e.From, To: e.To}
	}
	return out
}

// MarshalSkeleton encodes a skeleton graph as compact JSON. The encoding
// keeps disks, generating vertices, association lists and edges, so
// [UnmarshalSkeleton] restores an identical graph.
func MarshalSkeleton(g *skeleton.Graph) ([]byte, error) {
	data, err := json.Marshal(toJSON(g))
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return data, nil
}

// WriteJSON encodes a skeleton graph as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(g *skeleton.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toJSON(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a skeleton graph to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(g *skeleton.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}
