// Package pipeline turns one captured frame into one JPEG.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/junsooki/rdpcore/internal/capture"
	"github.com/junsooki/rdpcore/internal/encoder"
	"github.com/junsooki/rdpcore/internal/pixel"
	"github.com/junsooki/rdpcore/internal/resize"
)

// Stage names used in StageError and log lines.
const (
	StageCapture  = "capture"
	StageValidate = "validate"
	StageResize   = "resize"
	StageEncode   = "encode"
)

// StageError records which stage aborted a run.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return e.Stage + ": " + e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// Target is the requested output size. A zero in either field keeps the
// native size.
type Target struct {
	Width  uint32
	Height uint32
}

func (t Target) native() bool { return t.Width == 0 || t.Height == 0 }

// Pipeline runs capture, validation, resize, reorder and encode in order.
type Pipeline struct {
	backend capture.Backend
	enc     encoder.Encoder
	opts    capture.Options
	log     hclog.Logger
}

// New returns a pipeline. A nil enc selects the fixed JPEG encoder.
func New(b capture.Backend, enc encoder.Encoder, opts capture.Options) *Pipeline {
	if enc == nil {
		enc = encoder.NewJPEGEncoder()
	}
	log := opts.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Pipeline{backend: b, enc: enc, opts: opts, log: log}
}

// Run performs one capture-to-JPEG transaction.
func (p *Pipeline) Run(ctx context.Context, target Target) ([]byte, error) {
	start := time.Now()

	frame, err := capture.Grab(ctx, p.backend, p.opts)
	if err != nil {
		return nil, &StageError{Stage: StageCapture, Err: err}
	}

	src, err := pixel.Validate(frame.Width, frame.Height, frame.Data, frame.Layout)
	if err != nil {
		return nil, &StageError{Stage: StageValidate, Err: err}
	}
	if dropped := len(frame.Data) - len(src.Pix); dropped > 0 {
		p.log.Trace("dropped trailing padding", "bytes", dropped)
	}

	sized := src
	if !target.native() {
		w, h, err := targetSize(target)
		if err != nil {
			return nil, &StageError{Stage: StageResize, Err: err}
		}
		if sized, err = resize.Nearest(src, w, h); err != nil {
			return nil, &StageError{Stage: StageResize, Err: err}
		}
	}

	rgb := pixel.ToRGB(sized)

	data, err := p.enc.Encode(rgb)
	if err != nil {
		return nil, &StageError{Stage: StageEncode, Err: err}
	}

	p.log.Debug("frame encoded",
		"native", fmt.Sprintf("%dx%d", frame.Width, frame.Height),
		"output", fmt.Sprintf("%dx%d", rgb.Width, rgb.Height),
		"bytes", len(data),
		"elapsed", time.Since(start))
	return data, nil
}

// targetSize converts the requested size to ints, rejecting values a
// 4-channel buffer could never hold.
func targetSize(t Target) (int, int, error) {
	w, h := int(t.Width), int(t.Height)
	if _, ok := pixel.ByteSize(w, h, 4); !ok || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("%w: target %dx%d too large", resize.ErrResize, t.Width, t.Height)
	}
	return w, h, nil
}
