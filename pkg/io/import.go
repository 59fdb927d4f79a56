package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/medialaxis/pkg/geom"
	"github.com/matzehuels/medialaxis/pkg/skeleton"
)

func vertexOf(p *int) int {
	if p == nil {
		return skeleton.NoVertex
	}
	return *p
}

func fromJSON(data graph) (*skeleton.Graph, error) {
	g := skeleton.New(len(data.Nodes))
	for _, n := range data.Nodes {
		g.AddNode(skeleton.Node{
			Disk:    geom.Disk{Center: geom.Pt(n.X, n.Y), Radius: n.R},
			Owner:   vertexOf(n.Owner),
			Contact: vertexOf(n.Contact),
			Bounds:  n.Bounds,
		})
	}
	for _, e := range data.Edges {
		if err := g.AddEdge(e.From, e.To); err != nil {
			return nil, fmt.Errorf("edge %d-%d: %w", e.From, e.To, err)
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// UnmarshalSkeleton decodes a graph produced by [MarshalSkeleton] or
// [WriteJSON].
func UnmarshalSkeleton(data []byte) (*skeleton.Graph, error) {
	return ReadJSON(bytes.NewReader(data))
}

// ReadJSON decodes a JSON skeleton graph from r.
//
// The input must be an object with "nodes" and "edges" arrays:
//
//	{
//	  "nodes": [{"x": 5, "y": 5, "r": 7.07, "owner": 0, "contact": 2, "bounds": [0, 1, 2, 3]}],
//	  "edges": []
//	}
//
// Edges reference nodes by their position in the "nodes" array. A missing
// owner or contact means the generating vertex is unknown.
//
// ReadJSON returns an error if the JSON is malformed, an edge is invalid
// (unknown endpoint, self loop, duplicate), or the graph fails
// skeleton.Graph.Validate. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*skeleton.Graph, error) {
	var data graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return fromJSON(data)
}

// ImportJSON reads a JSON file at path and returns the decoded graph.
// Errors wrap the underlying cause with the file path for context.
func ImportJSON(path string) (*skeleton.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
