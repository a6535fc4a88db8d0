// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/kinoweek/internal/digest"
	"github.com/tomtom215/kinoweek/internal/middleware"
	"github.com/tomtom215/kinoweek/internal/models"
)

// Reports exposes the outcome of past digest runs. *digest.Runner
// satisfies it.
type Reports interface {
	Last() (*digest.Report, bool)
	LastSuccessful() (*digest.Report, bool)
}

// NextRunner reports the pending scheduled run. *services.DigestService
// satisfies it.
type NextRunner interface {
	NextRun() time.Time
}

// Archive reads weekly snapshots. *archive.Store satisfies it.
type Archive interface {
	List(ctx context.Context) ([]string, error)
	Get(ctx context.Context, year, week int) (models.WeeklySnapshot, error)
}

// Deps are the collaborators of the handlers. Schedule and Archive may be nil.
type Deps struct {
	Reports  Reports
	Schedule NextRunner
	Archive  Archive
}

// Handler serves the HTTP API.
type Handler struct {
	reports  Reports
	schedule NextRunner
	archive  Archive
	started  time.Time
}

// NewHandler creates the handler set.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		reports:  deps.Reports,
		schedule: deps.Schedule,
		archive:  deps.Archive,
		started:  time.Now(),
	}
}

// NewRouter builds the chi router. Middleware order matters: the request ID
// must exist before anything logs, and Recoverer must wrap the handlers.
func NewRouter(h *Handler, mw *Middleware) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(AccessLog())
	r.Use(middleware.PrometheusMetrics)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())

	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.RateLimitByIP())
		r.Use(middleware.Compression)

		r.Get("/events", h.Events)
		r.Get("/films", h.Films)
		r.Get("/status", h.Status)

		if h.archive != nil {
			r.Get("/archive", h.ArchiveList)
			r.Get("/archive/{week}", h.ArchiveWeek)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond(w, r).fail(http.StatusNotFound, ErrCodeNotFound, "no such endpoint")
	})
	return r
}
