package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/olivier-w/climpd/internal/config"
	"github.com/olivier-w/climpd/internal/engine"
	"github.com/olivier-w/climpd/internal/logger"
	"github.com/olivier-w/climpd/internal/tags"
)

var (
	app        = kingpin.New("climpd", "Background audio player with a terminal UI and an HTTP control API")
	configPath = app.Flag("config", "Path to config file").Default("climpd.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file").String()

	playCmd   = app.Command("play", "Play files or playlists in the terminal UI (default)").Default()
	playPaths = playCmd.Arg("paths", "Audio files or playlists to queue").Strings()

	serveCmd   = app.Command("serve", "Run the player as an HTTP-controlled daemon")
	serveWatch = serveCmd.Flag("watch", "Queue files as they appear in the library directory").Bool()

	scanCmd = app.Command("scan", "List the playable tracks in a directory")
	scanDir = scanCmd.Arg("dir", "Directory to scan (default: library dir)").String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logCloser, err := initLogger(cfg, command == playCmd.FullCommand())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	switch command {
	case playCmd.FullCommand():
		err = runPlay(cfg, *playPaths)
	case serveCmd.FullCommand():
		err = runServe(cfg, *serveWatch || cfg.Library.Watch)
	case scanCmd.FullCommand():
		dir := *scanDir
		if dir == "" {
			dir = cfg.Library.Dir
		}
		err = runScan(dir, os.Stdout)
	}
	if err != nil {
		zlog.Error().Err(err).Str("command", command).Msg("exiting")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logCloser.Close()
		os.Exit(1)
	}
}

// initLogger applies the command-line overrides to the configured logger.
// The terminal UI owns stdout and stderr, so it only ever logs to a file.
func initLogger(cfg *config.Config, tui bool) (io.Closer, error) {
	lc := logger.Config{
		Output:     cfg.Log.Output,
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}
	if *verbose {
		lc.Level = "debug"
	}
	if *logfile != "" {
		lc.Output = "file"
		lc.File = *logfile
	}
	if tui && lc.Output != "file" {
		lc.Output = "discard"
	}
	return logger.Init(lc)
}

func newEngine(cfg *config.Config, sink engine.Sink) *engine.Engine {
	return engine.New(sink,
		engine.WithTick(cfg.Engine.Tick),
		engine.WithMetadata(tags.NewReader()),
		engine.WithMetadataTimeout(cfg.Engine.MetadataTimeout),
		engine.WithVolume(cfg.StartVolume()),
	)
}
