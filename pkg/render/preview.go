package render

import (
	"errors"
	"image"
	"io"

	"github.com/gogpu/gg"

	"github.com/matzehuels/medialaxis/pkg/boundary"
	"github.com/matzehuels/medialaxis/pkg/shape"
	"github.com/matzehuels/medialaxis/pkg/skeleton"
	"github.com/matzehuels/medialaxis/pkg/skinning"
)

// ErrNoShape is returned when a preview has nothing to size itself by.
var ErrNoShape = errors.New("render: preview needs a reference shape")

// DefaultPreviewScale is the number of output pixels per shape pixel.
const DefaultPreviewScale = 4

// Preview palette.
var (
	ColorBackground = gg.RGB(0.12, 0.12, 0.14)
	ColorShape      = gg.RGB(1, 1, 1)
	ColorFill       = gg.RGB(0.35, 0.75, 0.4)
	ColorOverlap    = gg.RGB(0.75, 0.92, 0.75)
	ColorBoundary   = gg.RGB(0, 0, 0)
	ColorSkeleton   = gg.RGB(0.15, 0.35, 0.9)
	ColorDisk       = gg.RGBA2(0.9, 0.45, 0.1, 0.8)
)

// PreviewOptions controls what [Preview] draws.
type PreviewOptions struct {
	// Scale is the magnification; zero means DefaultPreviewScale.
	Scale int
	// Fill shades the skinned reconstruction of the skeleton.
	Fill bool
	// Disks outlines every node disk.
	Disks bool
	// NodeRadius is the radius of node markers in output pixels. Zero
	// picks one from Scale.
	NodeRadius float64
}

func (o PreviewOptions) scale() int {
	if o.Scale <= 0 {
		return DefaultPreviewScale
	}
	return o.Scale
}

// Canvas is a rendered preview.
type Canvas struct {
	dc *gg.Context
}

// Preview draws the reference shape with the boundary and skeleton on top.
// With Fill set, pixels covered only by the reconstruction are green and
// pixels covered by both are pale green. bnd and g may be nil.
func Preview(ref *shape.Shape, bnd *boundary.Boundary, g *skeleton.Graph, opts PreviewOptions) (*Canvas, error) {
	if ref == nil {
		return nil, ErrNoShape
	}
	s := opts.scale()
	w, h := ref.Width(), ref.Height()
	dc := gg.NewContext(w*s, h*s)
	dc.ClearWithColor(ColorBackground)

	var fill *shape.Shape
	if opts.Fill && g != nil {
		fill = skinning.Fill(w, h, g)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			in, covered := ref.At(x, y), fill != nil && fill.At(x, y)
			switch {
			case in && covered:
				block(dc, x, y, s, ColorOverlap)
			case in:
				block(dc, x, y, s, ColorShape)
			case covered:
				block(dc, x, y, s, ColorFill)
			}
		}
	}

	if bnd != nil {
		for i := 0; i < bnd.Len(); i++ {
			v := bnd.Vertex(i)
			block(dc, v.X, v.Y, s, ColorBoundary)
		}
	}

	if g != nil {
		if err := drawSkeleton(dc, g, float64(s), opts); err != nil {
			dc.Close()
			return nil, err
		}
	}
	return &Canvas{dc: dc}, nil
}

func block(dc *gg.Context, x, y, s int, c gg.RGBA) {
	for dy := 0; dy < s; dy++ {
		for dx := 0; dx < s; dx++ {
			dc.SetPixel(x*s+dx, y*s+dy, c)
		}
	}
}

func drawSkeleton(dc *gg.Context, g *skeleton.Graph, s float64, opts PreviewOptions) error {
	at := func(v float64) float64 { return (v + 0.5) * s }

	if opts.Disks {
		dc.SetRGBA(ColorDisk.R, ColorDisk.G, ColorDisk.B, ColorDisk.A)
		dc.SetLineWidth(1)
		for _, n := range g.Nodes() {
			c := n.Center()
			dc.DrawCircle(at(c.X), at(c.Y), n.Radius()*s)
			if err := dc.Stroke(); err != nil {
				return err
			}
		}
	}

	dc.SetRGB(ColorSkeleton.R, ColorSkeleton.G, ColorSkeleton.B)
	dc.SetLineWidth(max(1, s/2))
	for _, e := range g.Edges() {
		a, b := g.Node(e.From).Center(), g.Node(e.To).Center()
		dc.DrawLine(at(a.X), at(a.Y), at(b.X), at(b.Y))
		if err := dc.Stroke(); err != nil {
			return err
		}
	}

	r := opts.NodeRadius
	if r <= 0 {
		r = max(1.5, s*0.6)
	}
	for _, n := range g.Nodes() {
		c := n.Center()
		dc.DrawCircle(at(c.X), at(c.Y), r)
		if err := dc.Fill(); err != nil {
			return err
		}
	}
	return nil
}

// Image returns the rendered pixels.
func (c *Canvas) Image() image.Image {
	_ = c.dc.FlushGPU()
	return c.dc.Image()
}

// EncodePNG writes the preview as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	_ = c.dc.FlushGPU()
	return c.dc.EncodePNG(w)
}

// SavePNG writes the preview to a PNG file.
func (c *Canvas) SavePNG(path string) error {
	return c.dc.SavePNG(path)
}

// Close releases the drawing context.
func (c *Canvas) Close() error {
	return c.dc.Close()
}
