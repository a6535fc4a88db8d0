// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/kinoweek/internal/aggregator"
	"github.com/tomtom215/kinoweek/internal/api"
	"github.com/tomtom215/kinoweek/internal/archive"
	"github.com/tomtom215/kinoweek/internal/config"
	"github.com/tomtom215/kinoweek/internal/delivery"
	"github.com/tomtom215/kinoweek/internal/digest"
	"github.com/tomtom215/kinoweek/internal/eventbus"
	"github.com/tomtom215/kinoweek/internal/export"
	"github.com/tomtom215/kinoweek/internal/logging"
	"github.com/tomtom215/kinoweek/internal/scheduler"
	"github.com/tomtom215/kinoweek/internal/sources"
	"github.com/tomtom215/kinoweek/internal/sources/catalog"
	"github.com/tomtom215/kinoweek/internal/supervisor"
	"github.com/tomtom215/kinoweek/internal/supervisor/services"
)

// app owns every long-lived component of one process.
type app struct {
	cfg     *config.Config
	channel delivery.Channel
	runner  *digest.Runner
	archive *archive.Store
	bus     *eventbus.Bus
}

func newApp(cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	env := sources.Env{
		Fetcher:  sources.NewHTTPFetcher(cfg.FetcherConfig()),
		Disabled: make(map[string]bool, len(cfg.Sources.Disabled)),
	}
	for _, id := range cfg.Sources.Disabled {
		env.Disabled[id] = true
	}
	registry := catalog.Default()
	agg := aggregator.New(registry, env)

	var names []string
	for _, reg := range registry.All() {
		if env.Enabled(reg.ID) {
			names = append(names, reg.Factory(env).Name())
		}
	}
	exporter, err := export.NewManager(cfg.Output.Dir, cfg.Output.Formats, export.WithSources(names))
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	opts := []digest.Option{
		digest.WithExporter(exporter),
		digest.WithDryRun(cfg.Run.DryRun),
		digest.WithBackupDir(cfg.Output.BackupDir),
	}

	if cfg.Archive.Enabled {
		a.archive, err = archive.Open(archive.Config{Path: cfg.Archive.Path})
		if err != nil {
			return nil, fmt.Errorf("archive: %w", err)
		}
		opts = append(opts, digest.WithArchive(a.archive))
	}

	if cfg.EventBus.Enabled {
		bcfg := eventbus.DefaultConfig(cfg.EventBus.NATSURL)
		bcfg.TopicPrefix = cfg.EventBus.TopicPrefix
		a.bus, err = eventbus.NewNATS(bcfg)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("event bus: %w", err)
		}
		opts = append(opts, digest.WithPublisher(a.bus))
	}

	a.channel, err = newChannel(cfg)
	if err != nil {
		a.close()
		return nil, err
	}
	a.runner = digest.NewRunner(agg, a.channel, opts...)
	return a, nil
}

// newChannel picks the file channel for dry runs and Telegram otherwise.
// The chosen channel is validated before any source is fetched.
func newChannel(cfg *config.Config) (delivery.Channel, error) {
	var ch delivery.Channel
	if cfg.Run.DryRun {
		ch = delivery.NewFileChannel(cfg.Output.Dir)
	} else {
		ch = delivery.NewTelegramChannel(delivery.TelegramConfig{
			BotToken:  cfg.Telegram.BotToken,
			ChatID:    cfg.Telegram.ChatID,
			ParseMode: cfg.Telegram.ParseMode,
			APIURL:    cfg.Telegram.APIURL,
			Timeout:   cfg.Telegram.Timeout,
		})
	}

	channels := delivery.NewChannelRegistry(ch)
	if err := channels.ValidateAll(); err != nil {
		return nil, fmt.Errorf("delivery: %w", err)
	}
	logging.Debug().Strs("channels", channels.List()).Msg("Delivery channels validated")
	return ch, nil
}

// serve runs the digest scheduler and the HTTP API under one supervisor
// tree until ctx is cancelled.
func (a *app) serve(ctx context.Context, runOnStart bool) error {
	schedule, err := scheduler.ParseCron(a.cfg.Server.Schedule)
	if err != nil {
		return err
	}

	tree, err := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	digestSvc := services.NewDigestService(a.runner, schedule, a.cfg.Location(), services.WithRunOnStart(runOnStart))
	tree.AddDigestService(digestSvc)

	tree.AddAPIService(services.NewHTTPService(a.httpServer(digestSvc), a.cfg.Server.ListenAddr, services.DefaultShutdownTimeout))

	logging.Info().
		Str("schedule", schedule.String()).
		Str("timezone", a.cfg.Location().String()).
		Str("listen_addr", a.cfg.Server.ListenAddr).
		Msg("Supervisor tree starting")

	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (a *app) httpServer(next api.NextRunner) *http.Server {
	deps := api.Deps{Reports: a.runner, Schedule: next}
	if a.archive != nil {
		deps.Archive = a.archive
	}

	mwCfg := api.DefaultMiddlewareConfig()
	mwCfg.CORSAllowedOrigins = a.cfg.Server.CORSOrigins
	mwCfg.RateLimitRequests = a.cfg.Server.RateLimit

	return &http.Server{
		Addr:              a.cfg.Server.ListenAddr,
		Handler:           api.NewRouter(api.NewHandler(deps), api.NewMiddleware(mwCfg)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}

func (a *app) close() {
	if a.bus != nil {
		if err := a.bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}
	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing archive")
		}
	}
}
