package nodelink_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/medialaxis/pkg/geom"
	"github.com/matzehuels/medialaxis/pkg/render/nodelink"
	"github.com/matzehuels/medialaxis/pkg/skeleton"
)

func ExampleToDOT() {
	g := skeleton.New(2)
	g.AddNode(skeleton.Node{Disk: geom.Disk{Center: geom.Pt(0, 0), Radius: 1}})
	g.AddNode(skeleton.Node{Disk: geom.Disk{Center: geom.Pt(3, 0), Radius: 1}})
	_ = g.AddEdge(0, 1)

	fmt.Print(nodelink.ToDOT(g, nodelink.Options{}))
	// Output:
	// graph G {
	//   layout=neato;
	//   bgcolor="transparent";
	//   node [shape=circle, style=filled, fillcolor=white, fontsize=10, width=0.3, fixedsize=false];
	//   edge [penwidth=2];
	//
	//   n0 [label="1", pos="0.00,0.00!", fillcolor=lightblue];
	//   n1 [label="2", pos="12.00,0.00!", fillcolor=lightblue];
	//
	//   n0 -- n1;
	// }
}

func ExampleRenderSVG() {
	g := skeleton.New(1)
	g.AddNode(skeleton.Node{Disk: geom.Disk{Center: geom.Pt(5, 5), Radius: 5}})

	svg, err := nodelink.RenderSVG(context.Background(), nodelink.ToDOT(g, nodelink.Options{Detailed: true}))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("Generated SVG (%d bytes)\n", len(svg))
}
