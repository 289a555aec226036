package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"

	"github.com/junsooki/rdpcore/internal/capture"
	"github.com/junsooki/rdpcore/internal/config"
	"github.com/junsooki/rdpcore/internal/decoder"
	"github.com/junsooki/rdpcore/internal/display"
	"github.com/junsooki/rdpcore/internal/logging"
	"github.com/junsooki/rdpcore/internal/pipeline"
	"github.com/junsooki/rdpcore/internal/snapshot"
)

func main() {
	cfg, err := config.ParseGrabFlags()
	if err != nil {
		hclog.Default().Error("config", "error", err)
		os.Exit(2)
	}
	log := logging.New("grab", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	data, err := grab(ctx, cfg, log)
	if err != nil {
		log.Error("capture failed", "error", err)
		os.Exit(1)
	}

	if err := write(cfg.Out, data); err != nil {
		log.Error("write output", "path", cfg.Out, "error", err)
		os.Exit(1)
	}
	if w, h, err := decoder.Dimensions(data); err == nil {
		log.Info("saved frame", "path", cfg.Out, "width", w, "height", h, "bytes", len(data))
	}

	if cfg.Preview {
		img, err := decoder.NewJPEGDecoder().Decode(data)
		if err != nil {
			log.Error("decode for preview", "error", err)
			os.Exit(1)
		}
		// Ebitengine RunGame must be on the main goroutine (macOS requirement).
		if err := display.NewPreview(img, "rdpcore grab").Run(); err != nil {
			log.Error("preview", "error", err)
			os.Exit(1)
		}
	}
}

func grab(ctx context.Context, cfg *config.GrabConfig, log hclog.Logger) ([]byte, error) {
	w, h := uint32(cfg.Width), uint32(cfg.Height)

	if cfg.Remote != "" {
		cl, err := snapshot.Dial(ctx, cfg.Remote, cfg.Code)
		if err != nil {
			return nil, err
		}
		defer cl.Close()
		log.Debug("requesting remote capture", "url", cfg.Remote)
		return cl.Capture(ctx, w, h)
	}

	p := pipeline.New(capture.NewBackend(), nil, capture.Options{
		RetryInterval: cfg.RetryInterval,
		ReadyTimeout:  cfg.ReadyTimeout,
		Logger:        log,
	})
	return p.Run(ctx, pipeline.Target{Width: w, Height: h})
}

func write(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
