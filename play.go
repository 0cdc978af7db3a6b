package main

import (
	"context"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/olivier-w/climpd/internal/config"
	"github.com/olivier-w/climpd/internal/media"
	"github.com/olivier-w/climpd/internal/player"
	"github.com/olivier-w/climpd/internal/ui"
)

func runPlay(cfg *config.Config, args []string) error {
	device, err := player.NewDevice()
	if err != nil {
		return err
	}
	eng := newEngine(cfg, device)
	defer eng.Close()

	paths := startQueue(args)
	if len(paths) > 0 {
		go func() {
			n, err := eng.EnqueueAll(context.Background(), paths)
			if err != nil {
				zlog.Error().Err(err).Msg("queueing startup tracks")
				return
			}
			zlog.Info().Int("tracks", n).Msg("startup tracks queued")
		}()
	}

	dir := cfg.Library.Dir
	if len(args) == 1 && !media.IsPlaylistExt(filepath.Ext(args[0])) {
		dir = filepath.Dir(args[0])
	}
	model := ui.New(eng, dir)
	if len(paths) == 0 {
		model = model.WithBrowser()
	}

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return errors.Wrap(err, "running terminal UI")
	}
	return nil
}

// startQueue returns what to queue at startup. A single audio file brings its
// directory along, starting from that file and continuing in name order.
func startQueue(args []string) []string {
	if len(args) != 1 || media.IsPlaylistExt(filepath.Ext(args[0])) {
		return args
	}
	siblings, start := media.Siblings(args[0])
	if siblings == nil {
		return args
	}
	return siblings[start:]
}
