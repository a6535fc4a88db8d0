// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

package concerts

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/tomtom215/kinoweek/internal/dates"
	"github.com/tomtom215/kinoweek/internal/models"
	"github.com/tomtom215/kinoweek/internal/sources"
)

const (
	ZAGArenaID  = "zag_arena"
	ZAGArenaURL = "https://www.zag-arena-hannover.de/veranstaltungen/"
)

// ZAGArena reads the WP Event Manager listing of the ZAG Arena.
type ZAGArena struct {
	venue
	now func() time.Time
}

// NewZAGArena is the registry factory for the ZAG Arena source.
func NewZAGArena(env sources.Env) sources.Source {
	return &ZAGArena{
		venue: newVenue(env, ZAGArenaID, "ZAG Arena", 15, ZAGArenaURL,
			"https://www.zag-arena-hannover.de", "Expo Plaza 7, 30539 Hannover"),
		now: time.Now,
	}
}

func (z *ZAGArena) Fetch(ctx context.Context) ([]models.Event, error) {
	doc, err := z.document(ctx)
	if err != nil {
		return nil, err
	}

	var events []models.Event
	doc.Find(".wpem-event-layout-wrapper").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		title := cleanText(item.Find(".wpem-heading-text").First().Text())
		if title == "" {
			z.SkipRecord(ctx, "missing title", nil)
			return true
		}
		date, timeStr, ok := z.parseDate(item)
		if !ok {
			z.SkipRecord(ctx, "unparseable date", nil)
			return true
		}
		link := item.Find("a.wpem-event-action-url").First()
		if link.Length() == 0 {
			z.SkipRecord(ctx, "missing link", nil)
			return true
		}
		url := sources.ResolveURL(z.baseURL, link.AttrOr("href", ""))

		ev, err := z.event(title, date, url, models.Metadata{
			models.MetaTime:      timeStr,
			models.MetaEventType: classifyZAGEvent(url),
			models.MetaImageURL:  z.imageURL(item),
		})
		return !z.emit(ctx, &events, ev, err)
	})

	z.found(ctx, events)
	return events, nil
}

// parseDate prefers the combined date-time text and falls back to the
// separate day and month badges, which carry no year.
func (z *ZAGArena) parseDate(item *goquery.Selection) (time.Time, string, bool) {
	timeStr := defaultClock
	hour, minute, hasClock := 0, 0, false
	text := cleanText(item.Find(".wpem-event-date-time-text").First().Text())
	if text != "" {
		if hour, minute, hasClock = dates.FindClock(text); hasClock {
			timeStr = clock(hour, minute)
		}
		if t, ok := dates.ParseGenericDate(text); ok {
			return t, timeStr, true
		}
	}

	day, err := strconv.Atoi(cleanText(item.Find(".wpem-date").First().Text()))
	if err != nil {
		return time.Time{}, "", false
	}
	month, ok := dates.GermanMonth(strings.TrimSuffix(cleanText(item.Find(".wpem-month").First().Text()), "."))
	if !ok {
		return time.Time{}, "", false
	}
	now := z.now()
	year := now.Year()
	if month < now.Month() {
		year++
	}
	t := time.Date(year, month, day, dates.DefaultHour, 0, 0, 0, time.Local)
	if t.Day() != day {
		return time.Time{}, "", false
	}
	if hasClock {
		t = dates.WithClock(t, hour, minute)
	}
	return t, timeStr, true
}

func classifyZAGEvent(url string) string {
	lower := strings.ToLower(url)
	switch {
	case strings.Contains(lower, "sport"):
		return EventTypeSport
	case strings.Contains(lower, "show"), strings.Contains(lower, "comedy"):
		return EventTypeShow
	default:
		return EventTypeConcert
	}
}
