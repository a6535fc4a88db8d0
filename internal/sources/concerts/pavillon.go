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
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/tomtom215/kinoweek/internal/dates"
	"github.com/tomtom215/kinoweek/internal/models"
	"github.com/tomtom215/kinoweek/internal/sources"
)

const (
	PavillonID  = "pavillon"
	PavillonURL = "https://pavillon-hannover.de/programm"

	pavillonMaxAncestors = 6
)

var (
	pavillonCategories = []string{"Konzert", "Festival", "Party"}
	pavillonCancelled  = []string{"entfällt", "wird verschoben", "abgesagt", "cancelled"}
	pavillonNonTitles  = map[string]bool{
		"Konzert": true, "Festival": true, "Party": true,
		"Lesung": true, "Comedy": true, "Börse": true, "Tickets": true,
	}

	dottedDateRe     = regexp.MustCompile(`\d{1,2}\.\d{1,2}\.\d{4}`)
	dottedDateOnlyRe = regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{4}$`)
	uhrClockRe       = regexp.MustCompile(`(\d{1,2}):(\d{2})\s*Uhr`)
)

// Pavillon reads the cultural center's program and keeps music events only.
// Listing blocks read like "Sa | 22.11.2025 | 18:30 Uhr | Konzert | Title".
type Pavillon struct {
	venue
}

// NewPavillon is the registry factory for the Pavillon source.
func NewPavillon(env sources.Env) sources.Source {
	return &Pavillon{venue: newVenue(env, PavillonID, "Pavillon", 20, PavillonURL,
		"https://pavillon-hannover.de", "Lister Meile 4, 30161 Hannover")}
}

func (p *Pavillon) Fetch(ctx context.Context) ([]models.Event, error) {
	doc, err := p.document(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var events []models.Event
	doc.Find(`a[href*="/event/details/"]`).EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href := strings.TrimSpace(link.AttrOr("href", ""))
		if href == "" || seen[href] {
			return true
		}
		seen[href] = true

		text := blockText(link)
		if text == "" || pavillonCategory(text) == "" || isCancelled(text) {
			return true
		}

		date, timeStr, ok := pavillonDate(text)
		if !ok {
			p.SkipRecord(ctx, "unparseable date", nil)
			return true
		}
		title := pavillonTitle(text)
		if title == "" {
			p.SkipRecord(ctx, "missing title", nil)
			return true
		}

		ev, err := p.event(title, date, sources.ResolveURL(p.baseURL, href), models.Metadata{
			models.MetaTime:  timeStr,
			models.MetaGenre: pavillonCategory(text),
		})
		return !p.emit(ctx, &events, ev, err)
	})

	p.found(ctx, events)
	return events, nil
}

// blockText climbs from the link to the first ancestor whose text carries a
// D.M.YYYY date and returns that text joined by " | ".
func blockText(link *goquery.Selection) string {
	parent := link.Parent()
	for i := 0; i < pavillonMaxAncestors && parent.Length() > 0; i++ {
		text := joinedText(parent, " | ")
		if dottedDateRe.MatchString(text) {
			return text
		}
		parent = parent.Parent()
	}
	return ""
}

func pavillonCategory(text string) string {
	for _, c := range pavillonCategories {
		if strings.Contains(text, c) {
			return c
		}
	}
	return ""
}

func isCancelled(text string) bool {
	lower := strings.ToLower(text)
	for _, pat := range pavillonCancelled {
		if strings.Contains(lower, pat) {
			return true
		}
	}
	return false
}

func pavillonDate(text string) (time.Time, string, bool) {
	date, ok := dates.ParseGenericDate(dottedDateRe.FindString(text))
	if !ok {
		return time.Time{}, "", false
	}
	timeStr := defaultClock
	if m := uhrClockRe.FindStringSubmatch(text); m != nil {
		if h, mm, ok := dates.FindClock(m[1] + ":" + m[2]); ok {
			date = dates.WithClock(date, h, mm)
			timeStr = clock(h, mm)
		}
	}
	return date, timeStr, true
}

// pavillonTitle returns the first substantial part after the "... Uhr" part.
func pavillonTitle(text string) string {
	afterClock := false
	for _, part := range strings.Split(text, "|") {
		part = strings.TrimSpace(part)
		if strings.Contains(part, "Uhr") {
			afterClock = true
			continue
		}
		if !afterClock || part == "" || pavillonNonTitles[part] {
			continue
		}
		if dottedDateOnlyRe.MatchString(part) || utf8.RuneCountInString(part) < 3 {
			continue
		}
		return part
	}
	return ""
}
