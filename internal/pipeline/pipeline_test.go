package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junsooki/rdpcore/internal/capture"
	"github.com/junsooki/rdpcore/internal/decoder"
	"github.com/junsooki/rdpcore/internal/encoder"
	"github.com/junsooki/rdpcore/internal/pixel"
	"github.com/junsooki/rdpcore/internal/resize"
)

// screen is a fake backend serving one fixed frame after notReady polls.
type screen struct {
	frame    *capture.Frame
	notReady int
	err      error
	polls    int
}

func (s *screen) Primary() (capture.Display, error) { return s, nil }

func (s *screen) NewProducer() (capture.Producer, error) { return s, nil }

func (s *screen) Frame() (*capture.Frame, error) {
	s.polls++
	if s.polls <= s.notReady {
		return nil, capture.ErrNotReady
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.frame, nil
}

func (s *screen) Close() {}

func bgraFrame(w, h, extra int) *capture.Frame {
	data := make([]byte, w*h*4+extra)
	for i := 0; i < w*h*4; i += 4 {
		data[i], data[i+1], data[i+2], data[i+3] = 40, 80, 160, 255
	}
	for i := w * h * 4; i < len(data); i++ {
		data[i] = 0xAB
	}
	return &capture.Frame{Data: data, Width: w, Height: h, Layout: pixel.BGRA}
}

func run(t *testing.T, s *screen, target Target) ([]byte, error) {
	t.Helper()
	p := New(s, nil, capture.Options{RetryInterval: time.Millisecond})
	return p.Run(context.Background(), target)
}

func TestRunNativeResolution(t *testing.T) {
	data, err := run(t, &screen{frame: bgraFrame(1920, 1080, 0)}, Target{})
	require.NoError(t, err)

	w, h, err := decoder.Dimensions(data)
	require.NoError(t, err)
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)
}

func TestRunResized(t *testing.T) {
	data, err := run(t, &screen{frame: bgraFrame(1920, 1080, 0)}, Target{Width: 640, Height: 480})
	require.NoError(t, err)

	w, h, err := decoder.Dimensions(data)
	require.NoError(t, err)
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
}

func TestRunSingleZeroKeepsNative(t *testing.T) {
	for _, tgt := range []Target{{Width: 640}, {Height: 480}} {
		data, err := run(t, &screen{frame: bgraFrame(64, 32, 0)}, tgt)
		require.NoError(t, err)
		w, h, err := decoder.Dimensions(data)
		require.NoError(t, err)
		assert.Equal(t, [2]int{64, 32}, [2]int{w, h})
	}
}

func TestRunPaddedFrame(t *testing.T) {
	// 100x50 with 2000 bytes of padding
	f := bgraFrame(100, 50, 2000)
	require.Len(t, f.Data, 22000)

	data, err := run(t, &screen{frame: f}, Target{})
	require.NoError(t, err)

	img, err := decoder.NewJPEGDecoder().Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())

	// BGRA (40, 80, 160) must come out as RGB (160, 80, 40).
	c := img.RGBAAt(50, 49)
	assert.InDelta(t, 160, c.R, 10)
	assert.InDelta(t, 80, c.G, 10)
	assert.InDelta(t, 40, c.B, 10)
}

func TestRunShortFrame(t *testing.T) {
	f := bgraFrame(100, 50, 0)
	f.Data = f.Data[:19999]

	data, err := run(t, &screen{frame: f}, Target{})
	assert.Nil(t, data)
	assert.ErrorIs(t, err, pixel.ErrMalformedFrame)

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageValidate, se.Stage)
}

func TestRunZeroGeometry(t *testing.T) {
	_, err := run(t, &screen{frame: &capture.Frame{Data: make([]byte, 64), Layout: pixel.BGRA}}, Target{})
	assert.ErrorIs(t, err, pixel.ErrMalformedFrame)
}

func TestRunRetriesNotReady(t *testing.T) {
	s := &screen{frame: bgraFrame(8, 8, 0), notReady: 5}
	_, err := run(t, s, Target{})
	require.NoError(t, err)
	assert.Equal(t, 6, s.polls)
}

func TestRunCaptureError(t *testing.T) {
	boom := errors.New("backend exploded")
	_, err := run(t, &screen{err: boom}, Target{})
	assert.ErrorIs(t, err, boom)

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageCapture, se.Stage)
}

func TestRunResizeTooLarge(t *testing.T) {
	_, err := run(t, &screen{frame: bgraFrame(8, 8, 0)}, Target{Width: 1 << 31, Height: 1 << 31})
	assert.ErrorIs(t, err, resize.ErrResize)
}

type failingEncoder struct{}

func (failingEncoder) Encode(*pixel.Image) ([]byte, error) {
	return nil, encoder.ErrEncode
}

func TestRunEncodeError(t *testing.T) {
	p := New(&screen{frame: bgraFrame(4, 4, 0)}, failingEncoder{}, capture.Options{})
	data, err := p.Run(context.Background(), Target{})
	assert.Nil(t, data)
	assert.ErrorIs(t, err, encoder.ErrEncode)
}
