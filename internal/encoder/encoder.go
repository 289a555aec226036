package encoder

import (
	"errors"

	"github.com/junsooki/rdpcore/internal/pixel"
)

// ErrEncode is returned when a frame cannot be compressed.
var ErrEncode = errors.New("encode failed")

// Encoder compresses an RGB image into bytes.
type Encoder interface {
	Encode(img *pixel.Image) ([]byte, error)
}
