// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

/*
Package middleware provides chi-compatible HTTP middleware for the daemon API.

Key Components:

  - PrometheusMetrics: request count, latency and in-flight gauge, labelled by
    chi route pattern so that /api/v1/archive/{week} is one series
  - Compression: gzip for clients that send Accept-Encoding: gzip

Middleware Stack:

	r := chi.NewRouter()
	r.Use(middleware.PrometheusMetrics)
	r.Route("/api/v1", func(r chi.Router) {
	    r.Use(middleware.Compression)
	    r.Get("/events", h.Events)
	})

Compression must not wrap /metrics: promhttp negotiates its own encoding.
*/
package middleware
