// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

// Package aggregator runs every enabled source once and sorts the combined
// events into the two digest buckets: movies showing within the next seven
// days, and everything else that starts after that window.
//
// Sources are isolated from each other. A source that returns an error or
// panics is logged, counted and contributes nothing; the rest of the run is
// unaffected.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/tomtom215/kinoweek/internal/logging"
	"github.com/tomtom215/kinoweek/internal/metrics"
	"github.com/tomtom215/kinoweek/internal/models"
	"github.com/tomtom215/kinoweek/internal/sources"
)

// ErrSourcePanic wraps a panic recovered from a source's Fetch.
var ErrSourcePanic = errors.New("source panicked")

// SourceReport describes what one source contributed to a run.
type SourceReport struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Type     sources.Type  `json:"type"`
	Enabled  bool          `json:"enabled"`
	Events   int           `json:"events"`
	Duration time.Duration `json:"duration_ns"`
	Err      error         `json:"-"`
	Error    string        `json:"error,omitempty"`
}

// Aggregator fetches from a registry of sources.
type Aggregator struct {
	registry *sources.Registry
	env      sources.Env
	now      func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock replaces time.Now, the reference for both buckets.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// New builds an Aggregator over reg. env is handed to every source factory.
func New(reg *sources.Registry, env sources.Env, opts ...Option) *Aggregator {
	a := &Aggregator{registry: reg, env: env, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FetchAllEvents runs every enabled source and categorizes the result.
func (a *Aggregator) FetchAllEvents(ctx context.Context) models.CategorizedResult {
	result, _ := a.FetchAll(ctx)
	return result
}

// FetchAll is FetchAllEvents plus a per-source report in registry order.
func (a *Aggregator) FetchAll(ctx context.Context) (models.CategorizedResult, []SourceReport) {
	log := logging.Ctx(ctx)
	today := a.now()

	regs := a.registry.All()
	log.Info().Int("sources", len(regs)).Msg("Fetching events from all registered sources")

	var all []models.Event
	reports := make([]SourceReport, 0, len(regs))
	for _, reg := range regs {
		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Msg("Aggregation interrupted")
			break
		}

		src := reg.Factory(a.env)
		report := SourceReport{ID: reg.ID, Name: src.Name(), Type: src.Type(), Enabled: src.Enabled()}
		if !src.Enabled() {
			log.Debug().Str("source", reg.ID).Msg("Skipping disabled source")
			reports = append(reports, report)
			continue
		}

		start := time.Now()
		events, err := safeFetch(ctx, src)
		report.Duration = time.Since(start)
		metrics.RecordSourceFetch(reg.ID, report.Duration, len(events), err, errorReason(err))

		if err != nil {
			report.Err = err
			report.Error = err.Error()
			log.Warn().Err(err).Str("source", reg.ID).Msg("Source fetch failed")
			reports = append(reports, report)
			continue
		}

		report.Events = len(events)
		log.Info().Str("source", reg.ID).Int("count", len(events)).Msg("Source fetched events")
		all = append(all, events...)
		reports = append(reports, report)
	}

	result := Categorize(all, today)
	metrics.AggregatedEvents.WithLabelValues("movies_this_week").Set(float64(len(result.MoviesThisWeek)))
	metrics.AggregatedEvents.WithLabelValues("big_events_radar").Set(float64(len(result.BigEventsRadar)))

	log.Info().
		Int("fetched", len(all)).
		Int("movies_this_week", len(result.MoviesThisWeek)).
		Int("big_events_radar", len(result.BigEventsRadar)).
		Msg("Aggregation complete")
	return result, reports
}

// Categorize splits events into the two buckets relative to today:
// movies with today <= date <= today+7d, and non-movies with
// date > today+7d. Everything else is dropped. Both lists are stably sorted
// by date.
func Categorize(events []models.Event, today time.Time) models.CategorizedResult {
	result := models.NewCategorizedResult(today)
	horizon := models.WeekHorizon(today)

	for _, ev := range events {
		switch {
		case ev.IsMovie():
			if ev.IsThisWeek(today) {
				result.MoviesThisWeek = append(result.MoviesThisWeek, ev)
			}
		case ev.Date.After(horizon):
			result.BigEventsRadar = append(result.BigEventsRadar, ev)
		}
	}

	byDate := func(x, y models.Event) int { return x.Date.Compare(y.Date) }
	slices.SortStableFunc(result.MoviesThisWeek, byDate)
	slices.SortStableFunc(result.BigEventsRadar, byDate)
	return result
}

func safeFetch(ctx context.Context, src sources.Source) (events []models.Event, err error) {
	defer func() {
		if r := recover(); r != nil {
			events = nil
			err = fmt.Errorf("%w: %v", ErrSourcePanic, r)
		}
	}()
	return src.Fetch(ctx)
}

func errorReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSourcePanic):
		return "panic"
	case errors.Is(err, sources.ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, sources.ErrHTTPStatus):
		return "http_status"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
