// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

// Package formatting renders a CategorizedResult as the Telegram Markdown
// digest.
package formatting

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tomtom215/kinoweek/internal/dates"
	"github.com/tomtom215/kinoweek/internal/grouping"
	"github.com/tomtom215/kinoweek/internal/models"
)

const (
	// TelegramMaxLength is the hard message ceiling, in characters.
	TelegramMaxLength = 4096

	// TruncationMarker ends every truncated message.
	TruncationMarker = "\n\n... (truncated)"

	truncateMargin = 20

	noMovies = "_No OV movies this week_"
	noRadar  = "_No upcoming events_"
)

var venueAbbreviations = map[string]string{
	"Capitol Hannover": "Capitol",
}

// FormatMessage renders the digest for the ISO week containing now, cut to
// TelegramMaxLength.
func FormatMessage(result models.CategorizedResult, now time.Time) string {
	_, week := now.ISOWeek()
	sections := []string{
		fmt.Sprintf("*Hannover Week %d*", week),
		FormatMoviesSection(result.MoviesThisWeek),
		FormatRadarSection(result.BigEventsRadar, now),
	}
	return Truncate(strings.Join(sections, "\n\n"), TelegramMaxLength)
}

// FormatMoviesSection lists showings grouped under their short date.
func FormatMoviesSection(movies []models.Event) string {
	lines := []string{"*Movies (This Week)*"}
	if len(movies) == 0 {
		return strings.Join(append(lines, noMovies), "\n")
	}

	current := ""
	for _, ev := range movies {
		if day := ev.FormatDateShort(); day != current {
			current = day
			lines = append(lines, "", "*"+day+"*")
		}
		lines = append(lines, movieEntry(ev)...)
	}
	return strings.Join(lines, "\n")
}

// FormatRadarSection lists upcoming events with their full date.
func FormatRadarSection(radar []models.Event, now time.Time) string {
	lines := []string{"*On The Radar*"}
	if len(radar) == 0 {
		return strings.Join(append(lines, noRadar), "\n")
	}
	for _, ev := range radar {
		lines = append(lines,
			"  *"+ev.Title+"*",
			fmt.Sprintf("  %s | %s @ %s", FormatConcertDate(ev, now), ev.MetaStringOr(models.MetaTime, "20:00"), AbbreviateVenue(ev.Venue)),
		)
	}
	return strings.Join(lines, "\n")
}

func movieEntry(ev models.Event) []string {
	title := ev.Title
	if year := ev.MetaInt(models.MetaYear); year > 0 {
		title += " (" + strconv.Itoa(year) + ")"
	}
	lines := []string{"  *" + title + "*"}

	if meta := MovieMetadata(ev); len(meta) > 0 {
		lines = append(lines, "  _"+strings.Join(meta, " | ")+"_")
	}
	lines = append(lines, fmt.Sprintf("  %s (%s)", ev.Date.Format("15:04"),
		grouping.AbbreviateLanguage(ev.MetaString(models.MetaLanguage))))
	return lines
}

// MovieMetadata returns the duration and FSK rating parts that are set.
func MovieMetadata(ev models.Event) []string {
	var parts []string
	if d := FormatDuration(ev.MetaInt(models.MetaDuration)); d != "" {
		parts = append(parts, d)
	}
	if r := ev.MetaInt(models.MetaRating); r > 0 {
		parts = append(parts, "FSK"+strconv.Itoa(r))
	}
	return parts
}

// FormatDuration renders minutes as "2h17m", "2h" or "45m". Non-positive
// input yields "".
func FormatDuration(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%dm", h, m)
	}
}

// AbbreviateVenue shortens the venue names that do not fit a phone line.
func AbbreviateVenue(venue string) string {
	if short, ok := venueAbbreviations[venue]; ok {
		return short
	}
	return venue
}

// FormatConcertDate renders "Sa, 29. Nov", adding the year when the event
// is not in the year of now.
func FormatConcertDate(ev models.Event, now time.Time) string {
	d := ev.Date
	s := fmt.Sprintf("%s, %d. %s", dates.GermanWeekday(d.Weekday()), d.Day(), dates.GermanMonthShort(d.Month()))
	if d.Year() != now.Year() {
		s += " " + strconv.Itoa(d.Year())
	}
	return s
}

// Truncate returns msg unchanged when it has at most limit characters.
// Otherwise it keeps the first limit-20 characters and appends
// TruncationMarker, so the result never exceeds limit.
func Truncate(msg string, limit int) string {
	if utf8.RuneCountInString(msg) <= limit {
		return msg
	}
	keep := max(limit-truncateMargin, 0)
	runes := []rune(msg)
	return string(runes[:keep]) + TruncationMarker
}
