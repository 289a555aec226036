package pixel

import (
	"errors"
	"fmt"
)

// Layout identifies the channel order of a packed pixel buffer.
type Layout int

const (
	// BGRA is the native order of the capture backend on macOS.
	BGRA Layout = iota
	RGBA
	// RGB is the encoder-ready 3-channel form.
	RGB
)

// Channels returns the number of bytes per pixel.
func (l Layout) Channels() int {
	switch l {
	case BGRA, RGBA:
		return 4
	case RGB:
		return 3
	}
	return 0
}

func (l Layout) String() string {
	switch l {
	case BGRA:
		return "BGRA"
	case RGBA:
		return "RGBA"
	case RGB:
		return "RGB"
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// ErrGeometry is returned when a buffer does not match its declared size.
var ErrGeometry = errors.New("pixel: buffer does not match geometry")

// Image is a packed pixel buffer tagged with its size and channel layout.
// len(Pix) == Width*Height*Layout.Channels() always holds.
type Image struct {
	Pix    []byte
	Width  int
	Height int
	Layout Layout
}

// New wraps pix without copying.
func New(pix []byte, width, height int, layout Layout) (*Image, error) {
	ch := layout.Channels()
	if ch == 0 {
		return nil, fmt.Errorf("%w: unknown layout %v", ErrGeometry, layout)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrGeometry, width, height)
	}
	n, ok := ByteSize(width, height, ch)
	if !ok || len(pix) != n {
		return nil, fmt.Errorf("%w: %dx%d %v needs %d bytes, have %d", ErrGeometry, width, height, layout, n, len(pix))
	}
	return &Image{Pix: pix, Width: width, Height: height, Layout: layout}, nil
}
