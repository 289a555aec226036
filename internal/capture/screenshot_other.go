//go:build !darwin

package capture

import (
	"fmt"
	"image"
	"time"

	"github.com/kbinani/screenshot"

	"github.com/junsooki/rdpcore/internal/pixel"
)

// ScreenshotBackend captures through github.com/kbinani/screenshot.
type ScreenshotBackend struct{}

// NewBackend returns the platform capture backend.
func NewBackend() Backend {
	return ScreenshotBackend{}
}

// Primary picks the active display whose bounds start at the origin, or
// display 0 when none does.
func (ScreenshotBackend) Primary() (Display, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays")
	}
	bounds := screenshot.GetDisplayBounds(0)
	for i := 0; i < n; i++ {
		b := screenshot.GetDisplayBounds(i)
		if b.Min.X == 0 && b.Min.Y == 0 {
			bounds = b
			break
		}
	}
	if bounds.Empty() {
		return nil, fmt.Errorf("primary display has empty bounds")
	}
	return screenDisplay{bounds: bounds}, nil
}

type screenDisplay struct {
	bounds image.Rectangle
}

func (d screenDisplay) NewProducer() (Producer, error) {
	return &screenProducer{bounds: d.bounds}, nil
}

type screenProducer struct {
	bounds image.Rectangle
}

func (p *screenProducer) Frame() (*Frame, error) {
	img, err := screenshot.CaptureRect(p.bounds)
	if err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}
	if img.Rect.Empty() {
		return nil, ErrNotReady
	}
	return &Frame{
		Data:      packRows(img),
		Width:     img.Rect.Dx(),
		Height:    img.Rect.Dy(),
		Layout:    pixel.RGBA,
		Timestamp: time.Now(),
	}, nil
}

func (p *screenProducer) Close() {}

// packRows returns the pixel bytes of img with rows back to back.
func packRows(img *image.RGBA) []byte {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	row := w * 4
	if img.Stride == row {
		start := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y)
		return img.Pix[start:]
	}
	out := make([]byte, row*h)
	for y := 0; y < h; y++ {
		src := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		copy(out[y*row:], img.Pix[src:src+row])
	}
	return out
}
