package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/medialaxis/pkg/errors"
	skelio "github.com/matzehuels/medialaxis/pkg/io"
	"github.com/matzehuels/medialaxis/pkg/render"
	"github.com/matzehuels/medialaxis/pkg/render/nodelink"
	"github.com/matzehuels/medialaxis/pkg/skeleton"
)

// Format constants for rendered artifacts.
const (
	FormatPNG  = "png"  // raster preview over the mask
	FormatSVG  = "svg"  // node-link diagram laid out by Graphviz
	FormatPDF  = "pdf"  // node-link diagram converted with rsvg-convert
	FormatDOT  = "dot"  // Graphviz source of the node-link diagram
	FormatJSON = "json" // full skeleton graph
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG:  true,
	FormatSVG:  true,
	FormatPDF:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if !ValidFormats[f] {
			return errors.New(errors.ErrCodeUnsupported, "invalid format: %q (must be one of: png, svg, pdf, dot, json)", f)
		}
	}
	return nil
}

// RenderOptions configures [Render].
type RenderOptions struct {
	Formats []string

	// Preview options (png)
	Scale int
	Fill  bool
	Disks bool

	// Diagram options (svg, pdf, dot)
	Detailed bool
}

// Render produces the requested artifacts for skeleton g of a finished run.
// g is usually res.Skeleton or a pruned version of it.
func Render(ctx context.Context, res *Result, g *skeleton.Graph, opts RenderOptions) (map[string][]byte, error) {
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}
	if res == nil || g == nil {
		return nil, errNoResult
	}

	var dot string
	diagram := func() string {
		if dot == "" {
			dot = nodelink.ToDOT(g, nodelink.Options{Detailed: opts.Detailed})
		}
		return dot
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatPNG:
			data, err = renderPreview(res, g, opts)
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, diagram())
		case FormatPDF:
			data, err = nodelink.RenderPDF(ctx, diagram())
		case FormatDOT:
			data = []byte(diagram())
		case FormatJSON:
			data, err = skelio.MarshalSkeleton(g)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func renderPreview(res *Result, g *skeleton.Graph, opts RenderOptions) ([]byte, error) {
	c, err := render.Preview(res.Shape, res.Boundary, g, render.PreviewOptions{
		Scale: opts.Scale,
		Fill:  opts.Fill,
		Disks: opts.Disks,
	})
	if err != nil {
		return nil, err
	}
	defer c.Close()

	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
