// Package capture grabs a single frame from the primary display.
//
// A Backend opens the primary display, the display hands out a Producer and
// the producer yields frames. Producers may report ErrNotReady while the OS
// is still preparing a frame; Grab retries those and nothing else.
package capture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/junsooki/rdpcore/internal/pixel"
)

var (
	// ErrNotReady reports that a frame is not available yet. It is retried
	// by Grab and never returned from it.
	ErrNotReady = errors.New("frame not ready")
	// ErrUnavailable reports that no primary display or producer exists.
	ErrUnavailable = errors.New("capture backend unavailable")
	// ErrTimeout is returned when Options.ReadyTimeout elapses while the
	// producer keeps reporting ErrNotReady.
	ErrTimeout = errors.New("timed out waiting for frame")
)

// DefaultRetryInterval is the pause between not-ready polls.
const DefaultRetryInterval = 5 * time.Millisecond

// notReadyWarnEvery controls how often a long not-ready wait is logged.
const notReadyWarnEvery = 1000

// Frame is one raw frame as produced by a backend. Rows are contiguous and
// Data holds at least Width*Height*4 bytes; anything past that is padding.
type Frame struct {
	Data      []byte
	Width     int
	Height    int
	Layout    pixel.Layout
	Timestamp time.Time
}

// Backend locates the primary display.
type Backend interface {
	Primary() (Display, error)
}

// Display is a handle to one physical display.
type Display interface {
	NewProducer() (Producer, error)
}

// Producer yields frames for the display it was created from.
type Producer interface {
	// Frame returns the next frame, or ErrNotReady.
	Frame() (*Frame, error)
	Close()
}

// Options tunes the poll loop in Grab.
type Options struct {
	// RetryInterval is the sleep after each ErrNotReady. Zero means
	// DefaultRetryInterval.
	RetryInterval time.Duration
	// ReadyTimeout bounds the total wait for a ready frame. Zero waits
	// forever.
	ReadyTimeout time.Duration
	Logger       hclog.Logger
}

// Grab opens the primary display and blocks until one frame is produced or a
// terminal error occurs.
func Grab(ctx context.Context, b Backend, opts Options) (*Frame, error) {
	log := opts.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}
	interval := opts.RetryInterval
	if interval <= 0 {
		interval = DefaultRetryInterval
	}

	disp, err := b.Primary()
	if err != nil {
		return nil, fmt.Errorf("%w: primary display: %v", ErrUnavailable, err)
	}
	prod, err := disp.NewProducer()
	if err != nil {
		return nil, fmt.Errorf("%w: producer: %v", ErrUnavailable, err)
	}
	defer prod.Close()

	if opts.ReadyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.ReadyTimeout)
		defer cancel()
	}

	timer := time.NewTimer(interval)
	timer.Stop()
	defer timer.Stop()

	for attempt := 1; ; attempt++ {
		f, err := prod.Frame()
		if err == nil {
			if attempt > 1 {
				log.Debug("frame ready", "attempts", attempt)
			}
			return f, nil
		}
		if !errors.Is(err, ErrNotReady) {
			return nil, fmt.Errorf("capture frame: %w", err)
		}
		if attempt%notReadyWarnEvery == 0 {
			log.Warn("still waiting for a ready frame", "attempts", attempt)
		}

		timer.Reset(interval)
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) && opts.ReadyTimeout > 0 {
				return nil, fmt.Errorf("%w after %s (%d attempts)", ErrTimeout, opts.ReadyTimeout, attempt)
			}
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
