// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

// Package concerts holds the concert venue sources. Every venue emits
// radar-category events; the aggregator decides whether they are far enough
// out to be shown.
package concerts

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/tomtom215/kinoweek/internal/logging"
	"github.com/tomtom215/kinoweek/internal/models"
	"github.com/tomtom215/kinoweek/internal/sources"
)

// Event types recorded under models.MetaEventType.
const (
	EventTypeConcert = "concert"
	EventTypeSport   = "sport"
	EventTypeShow    = "show"
)

// Ticket status values recorded under models.MetaStatus.
const (
	StatusAvailable = "available"
	StatusSoldOut   = "sold_out"
)

const defaultClock = "20:00"

var spaceRe = regexp.MustCompile(`\s+`)

// venue is the part every HTML venue shares: where its program lives and how
// its events are stamped.
type venue struct {
	sources.Base
	fetcher sources.Fetcher
	pageURL string
	baseURL string
	address string
}

func newVenue(env sources.Env, id, name string, maxEvents int, pageURL, baseURL, address string) venue {
	return venue{
		Base:    sources.NewBase(id, name, sources.TypeConcert, env.Enabled(id), maxEvents),
		fetcher: env.Fetcher,
		pageURL: pageURL,
		baseURL: baseURL,
		address: address,
	}
}

func (v venue) document(ctx context.Context) (*goquery.Document, error) {
	logging.Ctx(ctx).Info().Str("source", v.ID()).Msg("Fetching events")
	doc, err := sources.FetchDocument(ctx, v.fetcher, v.pageURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", v.ID(), err)
	}
	return doc, nil
}

func (v venue) found(ctx context.Context, events []models.Event) {
	logging.Ctx(ctx).Info().Str("source", v.ID()).Int("events", len(events)).Msg("Found events")
}

// event builds a radar event at this venue. The venue address is filled in
// unless meta already carries one.
func (v venue) event(title string, date time.Time, url string, meta models.Metadata) (models.Event, error) {
	if meta == nil {
		meta = models.Metadata{}
	}
	if meta.String(models.MetaAddress) == "" {
		meta[models.MetaAddress] = v.address
	}
	if _, ok := meta[models.MetaEventType]; !ok {
		meta[models.MetaEventType] = EventTypeConcert
	}
	return models.NewEvent(title, date, v.Name(), url, models.CategoryRadar, meta)
}

// emit appends ev unless building it failed, and reports whether the cap has
// been reached.
func (v venue) emit(ctx context.Context, events *[]models.Event, ev models.Event, err error) bool {
	if err != nil {
		v.SkipRecord(ctx, "invalid event", err)
		return v.Full(len(*events))
	}
	*events = append(*events, ev)
	return v.Full(len(*events))
}

func (v venue) imageURL(sel *goquery.Selection) string {
	img := sel.Find("img").First()
	if img.Length() == 0 {
		return ""
	}
	src := strings.TrimSpace(img.AttrOr("src", ""))
	if src == "" {
		src = strings.TrimSpace(img.AttrOr("data-src", ""))
	}
	return sources.ResolveURL(v.baseURL, src)
}

// cleanText collapses runs of whitespace and trims.
func cleanText(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// textLines returns the trimmed, non-empty text nodes under sel in document
// order.
func textLines(sel *goquery.Selection) []string {
	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if s := strings.TrimSpace(n.Data); s != "" {
				lines = append(lines, s)
			}
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return lines
}

// joinedText is textLines joined by sep.
func joinedText(sel *goquery.Selection, sep string) string {
	return strings.Join(textLines(sel), sep)
}

func clock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
