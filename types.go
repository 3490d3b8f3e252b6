package fasthdr

import (
	"fmt"
	"math"
)

// Pixel is one YUV sample triplet.
type Pixel struct {
	Y, U, V uint8
}

// RGB is a normalized RGB triplet, nominally in [0, 1].
type RGB struct {
	R, G, B float64
}

func (c RGB) each(fn func(float64) float64) RGB {
	return RGB{R: fn(c.R), G: fn(c.G), B: fn(c.B)}
}

// Geometry describes a planar 4:4:4 frame.
// Planes are stored in Y, V, U order.
type Geometry struct {
	Width  int
	Height int
}

// NewGeometry validates frame dimensions.
func NewGeometry(width, height int) (Geometry, error) {
	if width <= 0 || height <= 0 {
		return Geometry{}, fmt.Errorf("%w: %dx%d", ErrInvalidGeometry, width, height)
	}
	if width > math.MaxInt/Channels/height {
		return Geometry{}, fmt.Errorf("%w: %dx%d overflows frame size", ErrInvalidGeometry, width, height)
	}
	return Geometry{Width: width, Height: height}, nil
}

// Pixels returns the number of pixels in a frame.
func (g Geometry) Pixels() int {
	return g.Width * g.Height
}

// FrameSize returns the number of bytes in one frame.
func (g Geometry) FrameSize() int {
	return g.Width * g.Height * Channels
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d", g.Width, g.Height)
}
