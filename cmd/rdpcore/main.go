// Command rdpcore is built as a C shared library:
//
//	go build -buildmode=c-shared -o librdpcore.so ./cmd/rdpcore
//
// It exports capture_and_encode and free_image as declared in
// include/rdpcore.h.
package main

/*
#cgo CFLAGS: -I${SRCDIR}/../../include
#include "rdp_image.h"
*/
import "C"

import (
	"context"
	"fmt"
	"sync"
	"unsafe"

	"github.com/hashicorp/go-hclog"

	"github.com/junsooki/rdpcore/internal/capture"
	"github.com/junsooki/rdpcore/internal/config"
	"github.com/junsooki/rdpcore/internal/handoff"
	"github.com/junsooki/rdpcore/internal/logging"
	"github.com/junsooki/rdpcore/internal/pipeline"
)

var (
	newBackend = capture.NewBackend

	setupOnce sync.Once
	libCfg    config.Library
	logger    hclog.Logger
)

// setup reads configuration once per process. The values are immutable
// afterwards; each call still builds its own backend and pipeline.
func setup() {
	setupOnce.Do(func() {
		cfg, err := config.Load()
		logger = logging.New("rdpcore", cfg.LogLevel)
		if err != nil {
			logger.Warn("invalid configuration, using defaults", "error", err)
			cfg = config.DefaultLibrary()
		}
		libCfg = cfg
	})
}

//export capture_and_encode
func capture_and_encode(targetWidth, targetHeight C.uint32_t) (out *C.rdp_image) {
	setup()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("capture_and_encode panicked", "panic", fmt.Sprint(r))
			out = nil
		}
	}()

	p, err := captureAndEncode(uint32(targetWidth), uint32(targetHeight))
	if err != nil {
		logger.Error("capture_and_encode failed", "error", err)
		return nil
	}
	return (*C.rdp_image)(p)
}

//export free_image
func free_image(image *C.rdp_image) {
	handoff.Release(unsafe.Pointer(image))
}

func captureAndEncode(w, h uint32) (unsafe.Pointer, error) {
	p := pipeline.New(newBackend(), nil, capture.Options{
		RetryInterval: libCfg.RetryInterval,
		ReadyTimeout:  libCfg.ReadyTimeout,
		Logger:        logger,
	})
	data, err := p.Run(context.Background(), pipeline.Target{Width: w, Height: h})
	if err != nil {
		return nil, err
	}
	return handoff.Transfer(data)
}

func main() {}
