// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

package concerts

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/kinoweek/internal/dates"
	"github.com/tomtom215/kinoweek/internal/logging"
	"github.com/tomtom215/kinoweek/internal/models"
	"github.com/tomtom215/kinoweek/internal/sources"
)

const (
	MusikZentrumID  = "musikzentrum"
	MusikZentrumURL = "https://musikzentrum-hannover.de/veranstaltungen/"

	maxDescriptionRunes = 200
)

var (
	numericEntityRe = regexp.MustCompile(`\s*&#\d+;\s*`)
	tagRe           = regexp.MustCompile(`<[^>]+>`)
)

// MusikZentrum reads the schema.org Event list the venue embeds as JSON-LD.
type MusikZentrum struct {
	venue
}

// NewMusikZentrum is the registry factory for the MusikZentrum source.
func NewMusikZentrum(env sources.Env) sources.Source {
	return &MusikZentrum{venue: newVenue(env, MusikZentrumID, "MusikZentrum", 20, MusikZentrumURL,
		"https://musikzentrum-hannover.de", "Emil-Meyer-Str. 26, 30165 Hannover")}
}

type ldEvent struct {
	Type        string          `json:"@type"`
	Name        string          `json:"name"`
	StartDate   string          `json:"startDate"`
	URL         string          `json:"url"`
	Image       json.RawMessage `json:"image"`
	Description string          `json:"description"`
	Location    struct {
		Name    string `json:"name"`
		Address struct {
			StreetAddress   string `json:"streetAddress"`
			PostalCode      string `json:"postalCode"`
			AddressLocality string `json:"addressLocality"`
		} `json:"address"`
	} `json:"location"`
}

func (mz *MusikZentrum) Fetch(ctx context.Context) ([]models.Event, error) {
	doc, err := mz.document(ctx)
	if err != nil {
		return nil, err
	}

	script := doc.Find(`script[type="application/ld+json"]`).First()
	raw := bytes.TrimSpace([]byte(script.Text()))
	if len(raw) == 0 {
		logging.Ctx(ctx).Warn().Str("source", mz.ID()).Msg("No JSON-LD data found")
		return []models.Event{}, nil
	}

	items, err := decodeLDEvents(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: decode json-ld: %w", mz.ID(), err)
	}

	var events []models.Event
	for _, item := range items {
		if item.Type != "Event" {
			continue
		}
		title := cleanText(numericEntityRe.ReplaceAllString(html.UnescapeString(item.Name), " "))
		if title == "" {
			mz.SkipRecord(ctx, "missing title", nil)
			continue
		}
		date, ok := dates.ParseISOOffset(item.StartDate)
		if !ok {
			mz.SkipRecord(ctx, "unparseable startDate", nil)
			continue
		}
		url := item.URL
		if url == "" {
			url = mz.pageURL
		}

		ev, err := mz.event(title, date, url, models.Metadata{
			models.MetaTime:     date.Format("15:04"),
			models.MetaImageURL: ldImage(item.Image),
			models.MetaDesc:     truncateRunes(cleanDescription(item.Description), maxDescriptionRunes),
			models.MetaAddress:  ldAddress(item),
		})
		if mz.emit(ctx, &events, ev, err) {
			break
		}
	}

	mz.found(ctx, events)
	return events, nil
}

// decodeLDEvents accepts either a single object or an array of objects.
func decodeLDEvents(raw []byte) ([]ldEvent, error) {
	if raw[0] == '[' {
		var items []ldEvent
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	var item ldEvent
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, err
	}
	return []ldEvent{item}, nil
}

// ldImage reads "image" given as a string or as a list of strings.
func ldImage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	return ""
}

func ldAddress(item ldEvent) string {
	a := item.Location.Address
	parts := make([]string, 0, 3)
	for _, p := range []string{a.StreetAddress, a.PostalCode, a.AddressLocality} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func cleanDescription(s string) string {
	if s == "" {
		return ""
	}
	text := html.UnescapeString(s)
	text = tagRe.ReplaceAllString(text, " ")
	text = cleanText(text)
	text = strings.ReplaceAll(text, "[&hellip;]", "...")
	return strings.ReplaceAll(text, "[…]", "...")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
