package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/olivier-w/climpd/internal/api"
	"github.com/olivier-w/climpd/internal/config"
	"github.com/olivier-w/climpd/internal/engine"
	"github.com/olivier-w/climpd/internal/media"
	"github.com/olivier-w/climpd/internal/player"
	"github.com/olivier-w/climpd/internal/tags"
	"github.com/olivier-w/climpd/internal/track"
)

const shutdownTimeout = 5 * time.Second

func runServe(cfg *config.Config, watch bool) error {
	device, err := player.NewDevice()
	if err != nil {
		return err
	}
	eng := newEngine(cfg, device)
	defer eng.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reader := tags.NewReader()
	library := func(ctx context.Context) ([]track.Track, error) {
		return media.Scan(ctx, cfg.Library.Dir, reader.Extract, nil)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewHandler(eng, library, cfg.Server.StatusInterval),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if watch {
		go watchLibrary(ctx, eng, cfg.Library.Dir)
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info().Str("addr", cfg.Server.Addr).Msg("control API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- errors.Wrap(err, "serving control API")
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		zlog.Info().Msg("shutting down")
	case <-eng.Done():
		runErr = eng.Err()
		zlog.Error().Err(runErr).Msg("playback worker stopped")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Warn().Err(err).Msg("control API shutdown")
	}
	return runErr
}

func watchLibrary(ctx context.Context, eng *engine.Engine, dir string) {
	err := media.Watch(ctx, dir, func(path string) {
		ok, err := eng.Enqueue(ctx, path)
		switch {
		case err != nil:
			zlog.Warn().Err(err).Str("path", path).Msg("auto-enqueue failed")
		case ok:
			zlog.Info().Str("path", path).Msg("auto-enqueued new file")
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		zlog.Error().Err(err).Str("dir", dir).Msg("library watch stopped")
	}
}
