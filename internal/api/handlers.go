// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/kinoweek/internal/archive"
	"github.com/tomtom215/kinoweek/internal/digest"
	"github.com/tomtom215/kinoweek/internal/logging"
	"github.com/tomtom215/kinoweek/internal/models"
)

// HealthResponse is the body of /healthz. It is not wrapped in the envelope
// so that plain health checks can read it.
type HealthResponse struct {
	Status        string     `json:"status"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	LastRun       *time.Time `json:"last_run,omitempty"`
	LastStatus    string     `json:"last_status,omitempty"`
	NextRun       *time.Time `json:"next_run,omitempty"`
}

// EventsResponse is the data of /api/v1/events.
type EventsResponse struct {
	GeneratedAt    string               `json:"generated_at"`
	MoviesThisWeek []models.EventRecord `json:"movies_this_week"`
	BigEventsRadar []models.EventRecord `json:"big_events_radar"`
}

// StatusResponse is the data of /api/v1/status.
type StatusResponse struct {
	LastRun        *digest.Report `json:"last_run,omitempty"`
	LastSuccessful *time.Time     `json:"last_successful,omitempty"`
	NextRun        *time.Time     `json:"next_run,omitempty"`
}

// Health reports liveness. The process is healthy even when the last run
// failed; the failure shows up in last_status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		NextRun:       h.nextRun(),
	}
	if rep, ok := h.reports.Last(); ok {
		finished := rep.FinishedAt
		resp.LastRun = &finished
		resp.LastStatus = string(rep.Status)
	}
	respond(w, r).writeJSON(http.StatusOK, resp)
}

// Events returns the events of the last delivered digest.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.reports.LastSuccessful()
	if !ok {
		noDigest(w, r)
		return
	}
	res := rep.Result
	respond(w, r).success(EventsResponse{
		GeneratedAt:    res.GeneratedAt.Format(models.LocalISO),
		MoviesThisWeek: models.Records(res.MoviesThisWeek),
		BigEventsRadar: models.Records(res.BigEventsRadar),
	})
}

// Films returns the movies of the last delivered digest grouped by film.
func (h *Handler) Films(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.reports.LastSuccessful()
	if !ok {
		noDigest(w, r)
		return
	}
	films := rep.Films
	if films == nil {
		films = []models.GroupedFilm{}
	}
	respond(w, r).list(films, len(films))
}

// Status returns the most recent report, whether or not it was delivered.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{NextRun: h.nextRun()}
	if rep, ok := h.reports.Last(); ok {
		resp.LastRun = rep
	}
	if rep, ok := h.reports.LastSuccessful(); ok {
		finished := rep.FinishedAt
		resp.LastSuccessful = &finished
	}
	respond(w, r).success(resp)
}

// ArchiveList returns every archived week label, oldest first.
func (h *Handler) ArchiveList(w http.ResponseWriter, r *http.Request) {
	labels, err := h.archive.List(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Archive list failed")
		respond(w, r).fail(http.StatusInternalServerError, ErrCodeInternalError, "archive unavailable")
		return
	}
	if labels == nil {
		labels = []string{}
	}
	respond(w, r).list(labels, len(labels))
}

// ArchiveWeek returns one archived week.
func (h *Handler) ArchiveWeek(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "week")
	year, week, err := ParseWeekLabel(label)
	if err != nil {
		respond(w, r).fail(http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	snap, err := h.archive.Get(r.Context(), year, week)
	switch {
	case errors.Is(err, archive.ErrNotFound):
		respond(w, r).fail(http.StatusNotFound, ErrCodeNotFound, "no snapshot for "+label)
	case err != nil:
		logging.Ctx(r.Context()).Error().Err(err).Str("week", label).Msg("Archive read failed")
		respond(w, r).fail(http.StatusInternalServerError, ErrCodeInternalError, "archive unavailable")
	default:
		respond(w, r).success(snap)
	}
}

func (h *Handler) nextRun() *time.Time {
	if h.schedule == nil {
		return nil
	}
	next := h.schedule.NextRun()
	if next.IsZero() {
		return nil
	}
	return &next
}

func noDigest(w http.ResponseWriter, r *http.Request) {
	respond(w, r).fail(http.StatusNotFound, ErrCodeNoDigest, "no digest has been delivered yet")
}

// ParseWeekLabel parses "2025-W47" into ISO year and week.
func ParseWeekLabel(label string) (year, week int, err error) {
	y, w, ok := strings.Cut(label, "-W")
	if !ok {
		return 0, 0, fmt.Errorf("week %q must look like 2025-W47", label)
	}
	if year, err = strconv.Atoi(y); err != nil || len(y) != 4 {
		return 0, 0, fmt.Errorf("week %q has an invalid year", label)
	}
	if week, err = strconv.Atoi(w); err != nil || week < 1 || week > 53 {
		return 0, 0, fmt.Errorf("week %q has an invalid week number", label)
	}
	return year, week, nil
}
