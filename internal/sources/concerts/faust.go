// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

package concerts

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/tomtom215/kinoweek/internal/dates"
	"github.com/tomtom215/kinoweek/internal/models"
	"github.com/tomtom215/kinoweek/internal/sources"
)

const (
	FaustID  = "faust_hannover"
	FaustURL = "https://www.kulturzentrum-faust.de/veranstaltungen.html?rub=2"
)

var (
	faustLinkRe     = regexp.MustCompile(`/veranstaltungen/\w+/\d{6}-[\w-]+\.html`)
	faustDateLineRe = regexp.MustCompile(`^[A-Za-z]{2},\s*\d{1,2}\.\d{1,2}\.\d{2}`)
	faustUhrRe      = regexp.MustCompile(`(\d{1,2})[:.](\d{2})\s*Uhr`)

	// Halls inside the Faust compound.
	faustLocations = []string{"60er-Jahre Halle", "Mephisto", "Warenannahme", "Kunsthalle", "Café", "Gretchen"}
)

// Faust reads the concert listing of the Kulturzentrum Faust. Event links
// encode the date as DDMMYY; the link text carries everything else.
type Faust struct {
	venue
}

// NewFaust is the registry factory for the Faust source.
func NewFaust(env sources.Env) sources.Source {
	return &Faust{venue: newVenue(env, FaustID, "Faust", 20, FaustURL,
		"https://www.kulturzentrum-faust.de", "Zur Bettfedernfabrik 3, 30451 Hannover")}
}

func (f *Faust) Fetch(ctx context.Context) ([]models.Event, error) {
	doc, err := f.document(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var events []models.Event
	doc.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href := strings.TrimSpace(link.AttrOr("href", ""))
		if !faustLinkRe.MatchString(href) || seen[href] {
			return true
		}
		seen[href] = true

		date, ok := dates.ParseCompactURLDate(href)
		if !ok {
			f.SkipRecord(ctx, "unparseable url date", nil)
			return true
		}
		c := parseFaustLines(textLines(link))
		if c.title == "" {
			f.SkipRecord(ctx, "missing title", nil)
			return true
		}
		timeStr := defaultClock
		if c.hasClock {
			date = dates.WithClock(date, c.hour, c.minute)
			timeStr = clock(c.hour, c.minute)
		}

		ev, err := f.event(c.title, date, sources.ResolveURL(f.baseURL, href), models.Metadata{
			models.MetaTime:     timeStr,
			models.MetaLocation: c.location,
			models.MetaPrice:    c.price,
			models.MetaImageURL: f.imageURL(link),
		})
		return !f.emit(ctx, &events, ev, err)
	})

	f.found(ctx, events)
	return events, nil
}

type faustContent struct {
	title, location, price string
	hour, minute           int
	hasClock               bool
}

// parseFaustLines classifies the text lines of one event link: weekday date
// lines are dropped, "Beginn"/"Einlass" lines give the start, VVK/AK/€ lines
// the price, known hall names the location, and the first remaining line of
// more than three characters is the title.
func parseFaustLines(lines []string) faustContent {
	var c faustContent
	for _, line := range lines {
		if faustDateLineRe.MatchString(line) {
			continue
		}
		if h, m, ok := dates.ExtractLabeledClock(line, "Beginn"); ok {
			c.hour, c.minute, c.hasClock = h, m, true
			continue
		}
		if strings.Contains(line, "Einlass") || strings.Contains(line, "Beginn") {
			if m := faustUhrRe.FindStringSubmatch(line); m != nil && !c.hasClock {
				if h, mm, ok := dates.FindClock(m[1] + ":" + m[2]); ok {
					c.hour, c.minute, c.hasClock = h, mm, true
				}
			}
			continue
		}
		if strings.Contains(line, "VVK") || strings.Contains(line, "AK") || strings.Contains(line, "€") {
			c.price = line
			continue
		}
		if isFaustLocation(line) {
			c.location = line
			continue
		}
		if c.title == "" && utf8.RuneCountInString(line) > 3 {
			c.title = line
		}
	}
	return c
}

func isFaustLocation(line string) bool {
	for _, loc := range faustLocations {
		if strings.Contains(line, loc) {
			return true
		}
	}
	return false
}
