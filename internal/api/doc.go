// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

/*
Package api serves the read-only HTTP surface of daemon mode.

	GET /healthz                  liveness plus last and next run times
	GET /metrics                  Prometheus exposition
	GET /api/v1/events            last delivered CategorizedResult
	GET /api/v1/films             last delivered movies grouped by film
	GET /api/v1/status            report of the most recent run, failed or not
	GET /api/v1/archive           archived week labels, newest last
	GET /api/v1/archive/{week}    one archived week, e.g. 2025-W47

Every /api/v1 response uses the APIResponse envelope. Data endpoints answer
404 until the first digest has been delivered. The archive endpoints exist
only when an archive store is configured.

CORS (go-chi/cors) and request metrics apply to every route. Per-IP rate
limiting (go-chi/httprate) and gzip apply to /api/v1 only.
*/
package api
