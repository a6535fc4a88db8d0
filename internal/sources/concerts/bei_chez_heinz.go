// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

package concerts

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/tomtom215/kinoweek/internal/dates"
	"github.com/tomtom215/kinoweek/internal/models"
	"github.com/tomtom215/kinoweek/internal/sources"
)

const (
	BeiChezHeinzID  = "bei_chez_heinz"
	BeiChezHeinzURL = "https://www.beichezheinz.de/programm"
)

var (
	heinzPriceRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Abendkasse[:\s]*([^|]+)`),
		regexp.MustCompile(`(?i)(\d+[,.]?\d*\s*€)`),
		regexp.MustCompile(`(?i)(Eintritt frei)`),
		regexp.MustCompile(`(?i)(Ein Hut geht rum)`),
	}
	parenRe      = regexp.MustCompile(`\(([^)]+)\)`)
	genreSplitRe = regexp.MustCompile(`[/,]`)
)

// BeiChezHeinz reads the program of the Béi Chéz Heinz club, keeping panes
// whose category heading says "Konzert".
type BeiChezHeinz struct {
	venue
}

// NewBeiChezHeinz is the registry factory for the Béi Chéz Heinz source.
func NewBeiChezHeinz(env sources.Env) sources.Source {
	return &BeiChezHeinz{venue: newVenue(env, BeiChezHeinzID, "Béi Chéz Heinz", 20, BeiChezHeinzURL,
		"https://www.beichezheinz.de", "Liepmannstraße 7b, 30453 Hannover")}
}

func (b *BeiChezHeinz) Fetch(ctx context.Context) ([]models.Event, error) {
	doc, err := b.document(ctx)
	if err != nil {
		return nil, err
	}

	var events []models.Event
	doc.Find("div.pane").EachWithBreak(func(_ int, pane *goquery.Selection) bool {
		heading := pane.Find("h3").First()
		category := pane.Find("h4").First()
		if heading.Length() == 0 || category.Length() == 0 {
			return true
		}
		if !strings.Contains(cleanText(category.Text()), "Konzert") {
			return true
		}

		title, href := cleanText(heading.Text()), ""
		if a := heading.Find("a").First(); a.Length() > 0 {
			title = cleanText(a.Text())
			href = strings.TrimSpace(a.AttrOr("href", ""))
		}
		if title == "" {
			b.SkipRecord(ctx, "missing title", nil)
			return true
		}
		url := b.pageURL
		if href != "" {
			url = sources.ResolveURL(b.baseURL, href)
		}

		info := joinedText(pane.Find("div.bch-event-info").First(), " | ")
		date, timeStr, ok := heinzDate(href, info)
		if !ok {
			b.SkipRecord(ctx, "unparseable date", nil)
			return true
		}

		ev, err := b.event(title, date, url, models.Metadata{
			models.MetaTime:  timeStr,
			models.MetaPrice: heinzPrice(info),
			models.MetaGenre: heinzGenre(title),
		})
		return !b.emit(ctx, &events, ev, err)
	})

	b.found(ctx, events)
	return events, nil
}

// heinzDate takes the day from the /YYYY-MM-DD link, or from a long German
// date in the info text. "Beginn" sets the clock; failing that, doors
// ("Einlass") plus one hour, capped at 23.
func heinzDate(href, info string) (time.Time, string, bool) {
	date, ok := dates.ParseURLISODate(href)
	if !ok {
		date, ok = dates.ParseLongGermanDate(info)
	}
	if !ok {
		return time.Time{}, "", false
	}

	if h, m, ok := dates.ExtractLabeledClock(info, "Beginn"); ok {
		return dates.WithClock(date, h, m), clock(h, m), true
	}
	if h, m, ok := dates.ExtractLabeledClock(info, "Einlass"); ok {
		h = min(h+1, 23)
		return dates.WithClock(date, h, m), clock(h, m), true
	}
	return date, defaultClock, true
}

func heinzPrice(info string) string {
	for _, re := range heinzPriceRes {
		if m := re.FindStringSubmatch(info); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// heinzGenre reads "FREUDE (Alternative / Österreich)" as "Alternative".
func heinzGenre(title string) string {
	m := parenRe.FindStringSubmatch(title)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(genreSplitRe.Split(m[1], 2)[0])
}
