// Package main is the entry point for the hearthd daemon.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/hearth-io/hearth/internal/config"
	"github.com/hearth-io/hearth/internal/daemon"
	"github.com/hearth-io/hearth/internal/daemon/panel"
	"github.com/hearth-io/hearth/internal/daemon/tray"
	"github.com/hearth-io/hearth/internal/logging"
)

func main() {
	foreground := flag.Bool("foreground", false, "Run without a system tray (for development and headless hosts)")
	addr := flag.String("addr", panel.DefaultAddr, "Panel listen address")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	log := logging.New(logging.Config{Debug: *debug, Console: *foreground})

	if err := config.EnsureDir(); err != nil {
		log.Fatal().Err(err).Msg("could not create config directory")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Warn().Err(err).Msg("config unreadable, starting with defaults")
	}

	if *foreground {
		runForeground(daemon.New(cfg, *addr, false, log), log)
	} else {
		runWithTray(daemon.New(cfg, *addr, true, log), cfg.TrayIconTheme, log)
	}
}

// runForeground runs the daemon without a system tray, blocking on signals.
func runForeground(app *daemon.App, log zerolog.Logger) {
	if err := app.Start(); err != nil {
		log.Fatal().Err(err).Msg("daemon failed to start")
	}
	log.Info().Int("pid", os.Getpid()).Msg("daemon started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	app.Stop()
}

// runWithTray runs the daemon with a system tray icon on the main goroutine.
// systray.Run must occupy the main goroutine on macOS (Cocoa requirement).
func runWithTray(app *daemon.App, theme string, log zerolog.Logger) {
	onStart := func() {
		if err := app.Start(); err != nil {
			log.Fatal().Err(err).Msg("daemon failed to start")
		}
		log.Info().Int("pid", os.Getpid()).Msg("daemon started")

		// Handle OS signals — quit tray on SIGINT/SIGTERM
		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			log.Info().Str("signal", sig.String()).Msg("shutting down")
			tray.Quit()
		}()
	}

	onExit := func() {
		app.Stop()
		log.Info().Msg("daemon stopped")
	}

	// This blocks the main goroutine until tray exits.
	tray.Run(app, theme, onStart, onExit)
}
