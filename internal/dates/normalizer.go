// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

// Package dates turns the date strings found on Hannover venue pages into
// time.Time values.
//
// Every parser is pure and tolerant: input it cannot read yields ok=false,
// which callers treat as "skip this record". When a format carries no time of
// day the result is set to DefaultHour:00, the usual start of an evening event.
//
// All results are wall-clock times in time.Local.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultHour is applied when a date string has no time component.
const DefaultHour = 20

var strictLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02.01.2006",
	"02.01.2006 15:04",
}

var (
	dottedDateRe   = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(\d{4})`)
	clockRe        = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	compactDateRe  = regexp.MustCompile(`(\d{1,2})([A-Za-zÄÖÜäöüÃ¤]+)(\d{4})`)
	urlShortDateRe = regexp.MustCompile(`/(\d{2})(\d{2})(\d{2})-`)
	urlISODateRe   = regexp.MustCompile(`/(\d{4})-(\d{2})-(\d{2})`)
	longDateRe     = regexp.MustCompile(`(\d{1,2})\.\s*([A-Za-zÄÖÜäöü]+)\s*(\d{4})`)
	isoOffsetRe    = regexp.MustCompile(`([+-]\d{2}:\d{2}|Z)$`)
)

// labeledClockRes holds one compiled pattern per label passed to
// ExtractLabeledClock. Sources use a handful of fixed labels.
var labeledClockRes sync.Map // string -> *regexp.Regexp

func labeledClockRe(label string) *regexp.Regexp {
	if re, ok := labeledClockRes.Load(label); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(regexp.QuoteMeta(label) + `[:\s]*(\d{1,2})[.:](\d{2})`)
	actual, _ := labeledClockRes.LoadOrStore(label, re)
	return actual.(*regexp.Regexp)
}

// ParseGenericDate reads the dotted and ISO encodings used across venue pages.
//
// It tries, in order, "2006-01-02T15:04:05", "2006-01-02", "02.01.2006" and
// "02.01.2006 15:04" against the trimmed input, then falls back to finding a
// D.M.YYYY substring anywhere with an optional independent h:mm substring.
//
//	ParseGenericDate("20.11.2025")            // 2025-11-20 20:00
//	ParseGenericDate("Fr, 22.11.2025 19:30")  // 2025-11-22 19:30
//	ParseGenericDate("20.11.2025 | 20:00 Uhr") // 2025-11-20 20:00
func ParseGenericDate(text string) (time.Time, bool) {
	trimmed := strings.TrimSpace(text)
	for _, layout := range strictLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, time.Local); err == nil {
			if layout == "02.01.2006" {
				t = WithClock(t, DefaultHour, 0)
			}
			return t, true
		}
	}

	m := dottedDateRe.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	day, month, year := atoi(m[1]), atoi(m[2]), atoi(m[3])

	hour, minute := DefaultHour, 0
	if c := clockRe.FindStringSubmatch(text); c != nil {
		hour, minute = atoi(c[1]), atoi(c[2])
	}
	return build(year, month, day, hour, minute)
}

// ParseVenueCompactDate reads the "<day><Month><year>" encoding used by the
// HC-Kartenleger ticket cards, e.g. "AB22NOV2025". The time is always
// DefaultHour:00 since the format never carries one.
func ParseVenueCompactDate(text string) (time.Time, bool) {
	m := compactDateRe.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	month, ok := GermanMonth(m[2])
	if !ok {
		return time.Time{}, false
	}
	return build(atoi(m[3]), int(month), atoi(m[1]), DefaultHour, 0)
}

// ParseISOOffset reads an ISO-8601 timestamp such as
// "2025-11-22T20:00:00+01:00". The offset is dropped and the wall clock
// kept, so "20:00" on the page stays 20:00 locally.
func ParseISOOffset(text string) (time.Time, bool) {
	s := isoOffsetRe.ReplaceAllString(strings.TrimSpace(text), "")
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseCompactURLDate extracts a DDMMYY code from a path such as
// "/veranstaltungen/november/211125-le-fly.html". Two-digit years are
// taken as 20YY.
func ParseCompactURLDate(path string) (time.Time, bool) {
	m := urlShortDateRe.FindStringSubmatch(path)
	if m == nil {
		return time.Time{}, false
	}
	return build(2000+atoi(m[3]), atoi(m[2]), atoi(m[1]), DefaultHour, 0)
}

// ParseURLISODate extracts a /YYYY-MM-DD segment from a path such as
// "programm/2025-11-22/4711".
func ParseURLISODate(path string) (time.Time, bool) {
	m := urlISODateRe.FindStringSubmatch("/" + strings.TrimPrefix(path, "/"))
	if m == nil {
		return time.Time{}, false
	}
	return build(atoi(m[1]), atoi(m[2]), atoi(m[3]), DefaultHour, 0)
}

// ParseLongGermanDate reads "22. November 2025" (optionally preceded by a
// weekday). Unknown month names yield ok=false.
func ParseLongGermanDate(text string) (time.Time, bool) {
	m := longDateRe.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	month, ok := GermanMonth(m[2])
	if !ok {
		return time.Time{}, false
	}
	return build(atoi(m[3]), int(month), atoi(m[1]), DefaultHour, 0)
}

// FindClock returns the first h:mm in text.
func FindClock(text string) (hour, minute int, ok bool) {
	m := clockRe.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}
	hour, minute = atoi(m[1]), atoi(m[2])
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// ExtractLabeledClock finds "<label>: 19.30" or "<label> 19:30" in text.
func ExtractLabeledClock(text, label string) (hour, minute int, ok bool) {
	m := labeledClockRe(label).FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}
	hour, minute = atoi(m[1]), atoi(m[2])
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// WithClock returns t on the same day at hour:minute.
func WithClock(t time.Time, hour, minute int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
}

// build rejects out-of-range components instead of letting time.Date
// normalize "31.02." into March.
func build(year, month, day, hour, minute int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 || year < 1900 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.Local)
	if t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
