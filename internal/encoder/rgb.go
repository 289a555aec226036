package encoder

import (
	"fmt"
	"image"
	"image/color"

	"github.com/junsooki/rdpcore/internal/pixel"
)

// RGB is a packed 8-bit R, G, B image with no alpha.
type RGB struct {
	Pix  []byte
	Rect image.Rectangle
}

// NewRGB wraps pix, which must be exactly w*h*3 bytes.
func NewRGB(pix []byte, w, h int) (*RGB, error) {
	n, ok := pixel.ByteSize(w, h, 3)
	if !ok || w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: bad geometry %dx%d", ErrEncode, w, h)
	}
	if len(pix) != n {
		return nil, fmt.Errorf("%w: %dx%d needs %d bytes, have %d", ErrEncode, w, h, n, len(pix))
	}
	return &RGB{Pix: pix, Rect: image.Rect(0, 0, w, h)}, nil
}

func (m *RGB) ColorModel() color.Model { return color.RGBAModel }

func (m *RGB) Bounds() image.Rectangle { return m.Rect }

func (m *RGB) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(m.Rect)) {
		return color.RGBA{}
	}
	i := m.offset(x, y)
	return color.RGBA{m.Pix[i], m.Pix[i+1], m.Pix[i+2], 0xff}
}

func (m *RGB) offset(x, y int) int {
	return (y-m.Rect.Min.Y)*m.Rect.Dx()*3 + (x-m.Rect.Min.X)*3
}

// YCbCr converts m to a planar image with the given chroma subsampling.
// Chroma for a subsampled block is taken from its top-left pixel.
func (m *RGB) YCbCr(ratio image.YCbCrSubsampleRatio) *image.YCbCr {
	out := image.NewYCbCr(m.Rect, ratio)
	w, h := m.Rect.Dx(), m.Rect.Dy()
	for y := 0; y < h; y++ {
		row := m.Pix[y*w*3 : (y+1)*w*3]
		yi := y * out.YStride
		for x := 0; x < w; x++ {
			r, g, b := row[x*3], row[x*3+1], row[x*3+2]
			yy, cb, cr := color.RGBToYCbCr(r, g, b)
			out.Y[yi+x] = yy
			ci := out.COffset(x+m.Rect.Min.X, y+m.Rect.Min.Y)
			if isChromaOrigin(x, y, ratio) {
				out.Cb[ci] = cb
				out.Cr[ci] = cr
			}
		}
	}
	return out
}

func isChromaOrigin(x, y int, ratio image.YCbCrSubsampleRatio) bool {
	switch ratio {
	case image.YCbCrSubsampleRatio444:
		return true
	case image.YCbCrSubsampleRatio422:
		return x%2 == 0
	case image.YCbCrSubsampleRatio440:
		return y%2 == 0
	case image.YCbCrSubsampleRatio411:
		return x%4 == 0
	case image.YCbCrSubsampleRatio410:
		return x%4 == 0 && y%2 == 0
	}
	return x%2 == 0 && y%2 == 0
}
