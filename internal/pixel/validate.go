package pixel

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
)

// ErrMalformedFrame is returned when a captured frame cannot back its
// declared geometry.
var ErrMalformedFrame = errors.New("malformed frame")

// ByteSize returns width*height*channels, or false if any factor is
// negative or the product does not fit in an int.
func ByteSize(width, height, channels int) (int, bool) {
	if width < 0 || height < 0 || channels < 0 {
		return 0, false
	}
	hi, px := bits.Mul64(uint64(width), uint64(height))
	if hi != 0 {
		return 0, false
	}
	hi, n := bits.Mul64(px, uint64(channels))
	if hi != 0 || n > math.MaxInt {
		return 0, false
	}
	return int(n), true
}

// Validate checks a 4-channel frame against its declared size and returns
// an image over exactly the first width*height*4 bytes. Anything after
// that is backend padding and is dropped.
func Validate(width, height int, data []byte, layout Layout) (*Image, error) {
	if layout.Channels() != 4 {
		return nil, fmt.Errorf("%w: %v is not a capture layout", ErrMalformedFrame, layout)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: empty geometry w=%d h=%d len=%d", ErrMalformedFrame, width, height, len(data))
	}
	needed, ok := ByteSize(width, height, 4)
	if !ok {
		return nil, fmt.Errorf("%w: %dx%d overflows", ErrMalformedFrame, width, height)
	}
	if needed == 0 || len(data) < needed {
		return nil, fmt.Errorf("%w: w=%d h=%d needed=%d got=%d", ErrMalformedFrame, width, height, needed, len(data))
	}
	return &Image{
		Pix:    data[:needed:needed],
		Width:  width,
		Height: height,
		Layout: layout,
	}, nil
}
