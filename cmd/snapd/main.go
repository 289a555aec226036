package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/junsooki/rdpcore/internal/capture"
	"github.com/junsooki/rdpcore/internal/config"
	"github.com/junsooki/rdpcore/internal/logging"
	"github.com/junsooki/rdpcore/internal/pipeline"
	"github.com/junsooki/rdpcore/internal/snapshot"
)

func main() {
	cfg, err := config.ParseSnapdFlags()
	if err != nil {
		hclog.Default().Error("config", "error", err)
		os.Exit(2)
	}
	log := logging.New("snapd", cfg.LogLevel)

	log.Info("snapd starting", "addr", cfg.Addr, "session_code", cfg.Code != "", "ready_timeout", cfg.ReadyTimeout)

	p := pipeline.New(capture.NewBackend(), nil, capture.Options{
		RetryInterval: cfg.RetryInterval,
		ReadyTimeout:  cfg.ReadyTimeout,
		Logger:        log.Named("pipeline"),
	})

	mux := http.NewServeMux()
	mux.Handle("/capture", snapshot.NewServer(p, cfg.Code, log.Named("snapshot")))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	// Wait for interrupt.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen", "error", err)
			os.Exit(1)
		}
	}

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("shutdown", "error", err)
	}
}
