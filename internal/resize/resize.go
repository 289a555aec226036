// Package resize rescales captured frames before encoding.
package resize

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/junsooki/rdpcore/internal/pixel"
)

// ErrResize is returned when either image wrapper cannot be built.
var ErrResize = errors.New("resize failed")

// Nearest rescales a 4-channel image to w x h with nearest-neighbor
// sampling. Pixels are copied byte for byte, so the channel order of src is
// kept. If w or h is zero, src is returned unchanged.
func Nearest(src *pixel.Image, w, h int) (*pixel.Image, error) {
	if w == 0 || h == 0 {
		return src, nil
	}
	if w < 0 || h < 0 {
		return nil, fmt.Errorf("%w: target %dx%d", ErrResize, w, h)
	}
	if src == nil || src.Layout.Channels() != 4 {
		return nil, fmt.Errorf("%w: source must be a 4-channel image", ErrResize)
	}
	in, err := wrap(src.Pix, src.Width, src.Height)
	if err != nil {
		return nil, fmt.Errorf("%w: source: %v", ErrResize, err)
	}
	if w == src.Width && h == src.Height {
		return src, nil
	}

	n, ok := pixel.ByteSize(w, h, 4)
	if !ok {
		return nil, fmt.Errorf("%w: target %dx%d overflows", ErrResize, w, h)
	}
	out, err := wrap(make([]byte, n), w, h)
	if err != nil {
		return nil, fmt.Errorf("%w: destination: %v", ErrResize, err)
	}

	draw.NearestNeighbor.Scale(out, out.Rect, in, in.Rect, draw.Src, nil)

	return &pixel.Image{Pix: out.Pix, Width: w, Height: h, Layout: src.Layout}, nil
}

// wrap views pix as an *image.RGBA. The image package only cares about the
// byte layout here; which byte is blue is up to the caller.
func wrap(pix []byte, w, h int) (*image.RGBA, error) {
	n, ok := pixel.ByteSize(w, h, 4)
	if !ok || w <= 0 || h <= 0 || len(pix) != n {
		return nil, fmt.Errorf("%dx%d does not match %d bytes", w, h, len(pix))
	}
	return &image.RGBA{
		Pix:    pix,
		Stride: w * 4,
		Rect:   image.Rect(0, 0, w, h),
	}, nil
}
