// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

// Package sources defines the contract every venue implements, the registry
// that maps source IDs to constructors, and the shared plumbing sources use
// to talk to venue websites.
//
// A Source turns one venue's page or API into []models.Event. Fetch may fail
// only for transport-level problems (DNS, timeouts, non-2xx, a top-level
// document that cannot be decoded). A single record that cannot be parsed is
// skipped via Base.SkipRecord and never fails the fetch.
package sources

import (
	"context"
	"net/url"
	"strings"

	"github.com/tomtom215/kinoweek/internal/logging"
	"github.com/tomtom215/kinoweek/internal/metrics"
	"github.com/tomtom215/kinoweek/internal/models"
)

// Type is the declared kind of a source.
type Type string

const (
	TypeCinema  Type = "cinema"
	TypeConcert Type = "concert"
)

// Source is one independently fetchable provider of events.
type Source interface {
	// Name is the venue's display name, used as Event.Venue.
	Name() string
	Type() Type
	// Enabled sources are the only ones the aggregator invokes.
	Enabled() bool
	// MaxEvents caps the events a fetch returns, in document order. 0 means no cap.
	MaxEvents() int
	Fetch(ctx context.Context) ([]models.Event, error)
}

// Env carries what a Factory needs to build a Source.
type Env struct {
	Fetcher Fetcher
	// Disabled holds source IDs switched off by configuration.
	Disabled map[string]bool
}

// Enabled reports whether id is not switched off.
func (e Env) Enabled(id string) bool {
	return !e.Disabled[id]
}

// Factory builds a Source for one run.
type Factory func(env Env) Source

// Base implements the descriptive half of Source. Venue types embed it.
type Base struct {
	id        string
	name      string
	typ       Type
	enabled   bool
	maxEvents int
}

// NewBase describes a source. enabled usually comes from Env.Enabled(id).
func NewBase(id, name string, typ Type, enabled bool, maxEvents int) Base {
	return Base{id: id, name: name, typ: typ, enabled: enabled, maxEvents: maxEvents}
}

func (b Base) ID() string     { return b.id }
func (b Base) Name() string   { return b.name }
func (b Base) Type() Type     { return b.typ }
func (b Base) Enabled() bool  { return b.enabled }
func (b Base) MaxEvents() int { return b.maxEvents }

// Full reports whether n events already reach the cap.
func (b Base) Full(n int) bool {
	return b.maxEvents > 0 && n >= b.maxEvents
}

// SkipRecord logs and counts a record that could not be turned into an Event.
func (b Base) SkipRecord(ctx context.Context, reason string, err error) {
	metrics.SourceRecordsSkipped.WithLabelValues(b.id).Inc()
	ev := logging.Ctx(ctx).Debug().Str("source", b.id).Str("reason", reason)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("Skipping record")
}

// ResolveURL makes href absolute against base. Empty href yields "".
func ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		// venue links like "programm/2025-11-22/1" are relative to the site root
		ref.Path = "/" + ref.Path
	}
	return b.ResolveReference(ref).String()
}
