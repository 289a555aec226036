package encoder

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/junsooki/rdpcore/internal/pixel"
)

const (
	// Quality is the fixed JPEG quality used for every frame.
	Quality = 70
	// Subsampling is the fixed chroma subsampling used for every frame.
	Subsampling = image.YCbCrSubsampleRatio420
)

// JPEGEncoder encodes RGB frames as baseline JPEG.
type JPEGEncoder struct {
	quality int
	ratio   image.YCbCrSubsampleRatio
}

// NewJPEGEncoder returns an encoder using Quality and Subsampling.
func NewJPEGEncoder() *JPEGEncoder {
	return &JPEGEncoder{quality: Quality, ratio: Subsampling}
}

// Encode compresses a 3-channel RGB image. The output is either a complete
// JPEG stream or nil with an error.
func (e *JPEGEncoder) Encode(img *pixel.Image) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrEncode)
	}
	if img.Layout != pixel.RGB {
		return nil, fmt.Errorf("%w: want RGB, got %v", ErrEncode, img.Layout)
	}
	rgb, err := NewRGB(img.Pix, img.Width, img.Height)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(256 * 1024) // pre-allocate 256KB
	if err := jpeg.Encode(&buf, rgb.YCbCr(e.ratio), &jpeg.Options{Quality: e.quality}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return buf.Bytes(), nil
}
