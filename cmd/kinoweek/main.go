// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

// Package main is the kinoweek command.
//
// KinoWeek collects this week's original-version film showings and the
// upcoming big concerts in Hannover, then sends one digest message to a
// Telegram chat.
//
// # Modes
//
//	kinoweek               one live run: fetch, export, deliver via Telegram
//	kinoweek -local        one dry run: write the message to output/ instead
//	kinoweek -serve        daemon: run on DIGEST_SCHEDULE and serve the HTTP API
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (see .env.example)
//   - .env file in the working directory
//   - Config file (config.yaml, or -config)
//   - Built-in defaults
//
// Live delivery needs TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID.
//
// # Exit Codes
//
// A single run exits 0 when the digest was delivered and 1 otherwise.
// Export, archive and event bus failures are logged but do not change the
// exit code.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/kinoweek/internal/config"
	"github.com/tomtom215/kinoweek/internal/logging"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

type flags struct {
	local      bool
	configPath string
	serve      bool
	runOnStart bool
	version    bool
}

func parseFlags(args []string) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("kinoweek", flag.ContinueOnError)
	fs.BoolVar(&f.local, "local", false, "dry run: write the digest to the output directory instead of Telegram")
	fs.BoolVar(&f.local, "dry-run", false, "alias for -local")
	fs.StringVar(&f.configPath, "config", "", "path to a YAML config file")
	fs.BoolVar(&f.serve, "serve", false, "run as a daemon on the configured schedule with the HTTP API")
	fs.BoolVar(&f.runOnStart, "run-on-start", false, "with -serve, run one digest immediately")
	fs.BoolVar(&f.version, "version", false, "print the version and exit")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	if fs.NArg() > 0 {
		return f, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return f, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	f, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if f.version {
		fmt.Printf("kinoweek %s (%s)\n", version, commit)
		return 0
	}

	cfg, err := config.Load(config.LoadOptions{Path: f.configPath, DryRun: f.local})
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load configuration")
		return 1
	}
	logging.Init(cfg.LogConfig())

	logging.Info().
		Str("version", version).
		Bool("dry_run", cfg.Run.DryRun).
		Bool("serve", f.serve || cfg.Server.Enabled).
		Str("output_dir", cfg.Output.Dir).
		Msg("Starting KinoWeek")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to initialize")
		return 1
	}
	defer a.close()

	if f.serve || cfg.Server.Enabled {
		if err := a.serve(ctx, f.runOnStart); err != nil {
			logging.Error().Err(err).Msg("Daemon stopped with error")
			return 1
		}
		return 0
	}

	if _, err := a.runner.Run(ctx); err != nil {
		return 1
	}
	return 0
}
