// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

package models

import "time"

// Showtime is one screening of a GroupedFilm.
type Showtime struct {
	Date         string `json:"date"` // 2006-01-02
	Time         string `json:"time"` // 15:04
	Language     string `json:"language"`
	HasSubtitles bool   `json:"has_subtitles"`
}

// GroupedFilm collapses every showing of one (title, year) into a single
// entry. Film-level fields come from the first showing seen.
type GroupedFilm struct {
	Title       string       `json:"title"`
	Year        int          `json:"year"`
	DurationMin int          `json:"duration_min"`
	Rating      int          `json:"rating"`
	Country     string       `json:"country"`
	Genres      []string     `json:"genres"`
	Synopsis    string       `json:"synopsis"`
	PosterURL   string       `json:"poster_url"`
	TrailerURL  string       `json:"trailer_url"`
	Cast        []CastMember `json:"cast"`
	TicketURL   string       `json:"ticket_url"`
	Venue       string       `json:"venue"`
	MovieID     string       `json:"movie_id,omitempty"`
	Showtimes   []Showtime   `json:"showtimes"`
}

// FirstShowDate is the date of the earliest recorded showtime, or "".
func (g GroupedFilm) FirstShowDate() string {
	if len(g.Showtimes) == 0 {
		return ""
	}
	return g.Showtimes[0].Date
}

// CategorizedResult is the output of one aggregation pass. Both lists are
// non-nil and sorted by Date ascending.
type CategorizedResult struct {
	MoviesThisWeek []Event   `json:"movies_this_week"`
	BigEventsRadar []Event   `json:"big_events_radar"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// NewCategorizedResult returns an empty result stamped with now.
func NewCategorizedResult(now time.Time) CategorizedResult {
	return CategorizedResult{
		MoviesThisWeek: []Event{},
		BigEventsRadar: []Event{},
		GeneratedAt:    now,
	}
}

// Total counts the events across both buckets.
func (r CategorizedResult) Total() int {
	return len(r.MoviesThisWeek) + len(r.BigEventsRadar)
}
