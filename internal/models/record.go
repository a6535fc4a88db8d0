// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

package models

import (
	"fmt"
	"time"
)

// LocalISO is the wall-clock timestamp layout used in every file the digest
// writes. It carries no zone offset.
const LocalISO = "2006-01-02T15:04:05"

// EventRecord is the flat, file-friendly form of an Event.
type EventRecord struct {
	Title    string   `json:"title"`
	Date     string   `json:"date"`
	Venue    string   `json:"venue"`
	URL      string   `json:"url"`
	Category Category `json:"category,omitempty"`
	Metadata Metadata `json:"metadata"`
}

// Record converts e to its file form.
func (e Event) Record() EventRecord {
	meta := e.Metadata
	if meta == nil {
		meta = Metadata{}
	}
	return EventRecord{
		Title:    e.Title,
		Date:     e.Date.Format(LocalISO),
		Venue:    e.Venue,
		URL:      e.URL,
		Category: e.Category,
		Metadata: meta,
	}
}

// Records converts a slice of events, never returning nil.
func Records(events []Event) []EventRecord {
	out := make([]EventRecord, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Record())
	}
	return out
}

// SnapshotMeta identifies the ISO week a WeeklySnapshot belongs to.
type SnapshotMeta struct {
	Week       int    `json:"week"`
	Year       int    `json:"year"`
	ArchivedAt string `json:"archived_at"`
}

// WeeklySnapshot is the archived state of one week's digest.
type WeeklySnapshot struct {
	Meta     SnapshotMeta  `json:"meta"`
	Movies   []EventRecord `json:"movies"`
	Concerts []EventRecord `json:"concerts"`
}

// NewWeeklySnapshot captures movies and concerts for the ISO week of now.
func NewWeeklySnapshot(movies, concerts []Event, now time.Time) WeeklySnapshot {
	year, week := now.ISOWeek()
	return WeeklySnapshot{
		Meta:     SnapshotMeta{Week: week, Year: year, ArchivedAt: now.Format(LocalISO)},
		Movies:   Records(movies),
		Concerts: Records(concerts),
	}
}

// WeekLabel formats an ISO week as "2025-W47".
func WeekLabel(year, week int) string {
	return fmt.Sprintf("%d-W%02d", year, week)
}

// Label is the WeekLabel of the snapshot.
func (s WeeklySnapshot) Label() string {
	return WeekLabel(s.Meta.Year, s.Meta.Week)
}
