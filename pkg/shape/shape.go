// Package shape defines the binary raster (DiscreteShape) at the head of the
// skeletonization pipeline.
//
// A Shape is a width×height grid of foreground/background pixels. It is
// immutable once constructed: every operation that changes pixels, such as
// [Shape.Close], returns a new Shape.
//
// # Decoding
//
// [Decode] and [FromImage] turn an image into a Shape by thresholding its gray
// value. PNG, JPEG and GIF are registered from the standard library; BMP and
// TIFF decoders come from golang.org/x/image.
package shape

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

var (
	// ErrBadSize is returned when a shape is built with non-positive
	// dimensions or a bit slice of the wrong length.
	ErrBadSize = errors.New("shape: invalid dimensions")
)

// DefaultThreshold is the gray level above which a pixel is foreground.
// Any non-black pixel except the darkest level counts as shape.
const DefaultThreshold uint8 = 1

// Shape is an immutable binary raster. The zero value is not usable; use
// [New], [FromFunc] or [FromImage].
type Shape struct {
	width, height int
	bits          []bool
}

// New builds a shape from a row-major bit slice. The slice is copied.
func New(width, height int, bits []bool) (*Shape, error) {
	if width <= 0 || height <= 0 || len(bits) != width*height {
		return nil, fmt.Errorf("%w: %dx%d with %d bits", ErrBadSize, width, height, len(bits))
	}
	return &Shape{width: width, height: height, bits: append([]bool(nil), bits...)}, nil
}

// FromFunc builds a shape by evaluating fn on every pixel.
// Dimensions must be positive; FromFunc panics otherwise.
func FromFunc(width, height int, fn func(x, y int) bool) *Shape {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("shape: invalid dimensions %dx%d", width, height))
	}
	s := &Shape{width: width, height: height, bits: make([]bool, width*height)}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			s.bits[y*width+x] = fn(x, y)
		}
	}
	return s
}

// FromImage thresholds img: a pixel is foreground when its gray value is
// strictly greater than threshold.
func FromImage(img image.Image, threshold uint8) *Shape {
	b := img.Bounds()
	return FromFunc(b.Dx(), b.Dy(), func(x, y int) bool {
		g := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
		return g.Y > threshold
	})
}

// Decode reads an image from r and thresholds it with [DefaultThreshold].
func Decode(r io.Reader) (*Shape, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return FromImage(img, DefaultThreshold), nil
}

// Load opens the image file at path and decodes it with [Decode].
func Load(path string) (*Shape, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Width returns the number of columns.
func (s *Shape) Width() int { return s.width }

// Height returns the number of rows.
func (s *Shape) Height() int { return s.height }

// InBounds reports whether (x, y) is a pixel of the raster.
func (s *Shape) InBounds(x, y int) bool {
	return x >= 0 && x < s.width && y >= 0 && y < s.height
}

// At reports whether (x, y) is foreground. Pixels outside the raster are
// background.
func (s *Shape) At(x, y int) bool {
	if !s.InBounds(x, y) {
		return false
	}
	return s.bits[y*s.width+x]
}

// Area returns the number of foreground pixels.
func (s *Shape) Area() int {
	n := 0
	for _, b := range s.bits {
		if b {
			n++
		}
	}
	return n
}

// Bits returns a copy of the row-major pixel slice.
func (s *Shape) Bits() []bool {
	return append([]bool(nil), s.bits...)
}

// IsBoundary reports whether (x, y) is a foreground pixel with at least one
// 4-neighbour in the background (pixels outside the raster count as
// background).
func (s *Shape) IsBoundary(x, y int) bool {
	if !s.At(x, y) {
		return false
	}
	return !s.At(x+1, y) || !s.At(x-1, y) || !s.At(x, y+1) || !s.At(x, y-1)
}

// Close applies a morphological closing with a 3×3 square structuring
// element (dilation followed by erosion). It fills one-pixel gaps and
// smooths notches before boundary extraction.
func (s *Shape) Close() *Shape {
	return s.dilate().erode()
}

func (s *Shape) dilate() *Shape {
	return FromFunc(s.width, s.height, func(x, y int) bool {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if s.At(x+dx, y+dy) {
					return true
				}
			}
		}
		return false
	})
}

func (s *Shape) erode() *Shape {
	return FromFunc(s.width, s.height, func(x, y int) bool {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if !s.At(x+dx, y+dy) {
					return false
				}
			}
		}
		return true
	})
}

// ToImage renders the shape as a gray image: 255 for foreground, 0 otherwise.
func (s *Shape) ToImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, s.width, s.height))
	for i, b := range s.bits {
		if b {
			img.Pix[i] = 255
		}
	}
	return img
}

// Equal reports whether two shapes have the same size and pixels.
func (s *Shape) Equal(o *Shape) bool {
	if s.width != o.width || s.height != o.height {
		return false
	}
	for i := range s.bits {
		if s.bits[i] != o.bits[i] {
			return false
		}
	}
	return true
}
