// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

// Package models holds the records that flow through a digest run: the
// normalized Event every source emits, the GroupedFilm derived from movie
// showtimes, and the CategorizedResult handed to delivery and export.
package models

import (
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/tomtom215/kinoweek/internal/validation"
)

// Category buckets an Event for the digest.
type Category string

const (
	CategoryMovie   Category = "movie"
	CategoryCulture Category = "culture"
	CategoryRadar   Category = "radar"
)

// ThisWeekDays is the look-ahead, in calendar days, that separates "this
// week" from "on the radar".
const ThisWeekDays = 7

// WeekHorizon returns now plus ThisWeekDays on the wall clock, so the
// boundary keeps its time of day across a daylight-saving change.
func WeekHorizon(now time.Time) time.Time {
	return now.AddDate(0, 0, ThisWeekDays)
}

// Event is one showing, concert or performance. Sources build Events with
// NewEvent and hand them on by value; nothing downstream mutates them.
type Event struct {
	Title    string    `json:"title" validate:"required"`
	Date     time.Time `json:"date"`
	Venue    string    `json:"venue"`
	URL      string    `json:"url"`
	Category Category  `json:"category" validate:"oneof=movie culture radar"`
	Metadata Metadata  `json:"metadata"`
}

// NewEvent validates and builds an Event. The metadata map is copied, and a
// nil map becomes an empty one.
func NewEvent(title string, date time.Time, venue, url string, category Category, metadata Metadata) (Event, error) {
	ev := Event{
		Title:    strings.TrimSpace(title),
		Date:     date,
		Venue:    venue,
		URL:      url,
		Category: category,
		Metadata: make(Metadata, len(metadata)),
	}
	maps.Copy(ev.Metadata, metadata)

	if verr := validation.ValidateStruct(&ev); verr != nil {
		return Event{}, fmt.Errorf("invalid event %q: %w", title, verr)
	}
	return ev, nil
}

// IsMovie reports whether the event belongs to the cinema bucket.
func (e Event) IsMovie() bool {
	return e.Category == CategoryMovie
}

// IsThisWeek reports whether the event starts within [now, now+7d].
func (e Event) IsThisWeek(now time.Time) bool {
	return !e.Date.Before(now) && !e.Date.After(WeekHorizon(now))
}

// FormatDateShort renders "Mon 02.01.".
func (e Event) FormatDateShort() string {
	return e.Date.Format("Mon 02.01.")
}

// FormatDateLong renders "02. Jan", adding the year when it is not the year of now.
func (e Event) FormatDateLong(now time.Time) string {
	if e.Date.Year() != now.Year() {
		return e.Date.Format("02. Jan 2006")
	}
	return e.Date.Format("02. Jan")
}

// FormatTime renders "Mon 15:04".
func (e Event) FormatTime() string {
	return e.Date.Format("Mon 15:04")
}

// MetaInt returns the metadata value under key as an int, or 0.
func (e Event) MetaInt(key string) int {
	return e.Metadata.Int(key)
}

// MetaString returns the metadata value under key as a string, or "".
func (e Event) MetaString(key string) string {
	return e.Metadata.String(key)
}

// MetaStringOr returns the metadata string under key, or def when it is empty.
func (e Event) MetaStringOr(key, def string) string {
	if s := e.Metadata.String(key); s != "" {
		return s
	}
	return def
}

// MetaStrings returns a copy of the string list under key.
func (e Event) MetaStrings(key string) []string {
	return e.Metadata.Strings(key)
}

// MetaCast returns a copy of the cast list under key.
func (e Event) MetaCast(key string) []CastMember {
	return e.Metadata.Cast(key)
}
