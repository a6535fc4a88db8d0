// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

/*
Package supervisor runs KinoWeek's daemon mode under suture v4.

The tree has two layers so a crashing API server never stops the schedule
and a stuck digest never takes the API down:

	Root ("kinoweek")
	├── "digest-layer"
	│   └── DigestService (cron loop around digest.Runner)
	└── "api-layer"
	    └── HTTPService (chi router: /healthz, /metrics, /api/v1/...)

Supervisor events (service start, panic, backoff) are logged through
sutureslog into the zerolog-backed slog handler from internal/logging.

	tree, err := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDigestService(services.NewDigestService(runner, schedule, loc))
	tree.AddAPIService(services.NewHTTPService(srv, addr, 10*time.Second))
	return tree.Serve(ctx)

Return values of Serve follow suture: nil stops a service for good, an
error restarts it with backoff, and an error wrapping suture.ErrDoNotRestart
stops it without a restart.
*/
package supervisor
