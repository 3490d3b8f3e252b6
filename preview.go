package fasthdr

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/nfnt/resize"
)

// FrameImage copies a planar Y, V, U frame into a 4:4:4 image.YCbCr.
func FrameImage(frame []byte, g Geometry) (*image.YCbCr, error) {
	if len(frame) != g.FrameSize() {
		return nil, fmt.Errorf("frame has %d bytes, want %d for %s", len(frame), g.FrameSize(), g)
	}
	n := g.Pixels()
	img := image.NewYCbCr(image.Rect(0, 0, g.Width, g.Height), image.YCbCrSubsampleRatio444)
	copy(img.Y, frame[:n])
	copy(img.Cr, frame[n:2*n])
	copy(img.Cb, frame[2*n:3*n])
	return img, nil
}

// PreviewOptions controls WritePreview.
type PreviewOptions struct {
	// MaxWidth and MaxHeight bound the preview size, zero keeps the frame size.
	MaxWidth  uint
	MaxHeight uint
	Interp    resize.InterpolationFunction
}

// WritePreview encodes a frame as PNG, downscaled to fit the bounds.
func WritePreview(w io.Writer, frame []byte, g Geometry, opts ...func(o *PreviewOptions)) error {
	opt := PreviewOptions{Interp: resize.Lanczos3}
	for _, applyOpt := range opts {
		applyOpt(&opt)
	}

	img, err := FrameImage(frame, g)
	if err != nil {
		return err
	}

	var out image.Image = img
	if opt.MaxWidth > 0 || opt.MaxHeight > 0 {
		maxW, maxH := opt.MaxWidth, opt.MaxHeight
		if maxW == 0 {
			maxW = uint(g.Width)
		}
		if maxH == 0 {
			maxH = uint(g.Height)
		}
		out = resize.Thumbnail(maxW, maxH, img, opt.Interp)
	}

	if err := png.Encode(w, out); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
