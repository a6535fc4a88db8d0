// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

package models

import (
	"fmt"
	"strconv"
)

// Metadata is the open bag of per-source details on an Event: duration,
// rating, year, genres, language, image URL, price, address and so on.
//
// Values are scalars, []string or []CastMember when built by a source, and
// their JSON-decoded equivalents (float64, []any, map[string]any) when read
// back from an archive. The accessors accept both.
type Metadata map[string]any

// Well-known metadata keys.
const (
	MetaDuration   = "duration"
	MetaRating     = "rating"
	MetaYear       = "year"
	MetaCountry    = "country"
	MetaGenres     = "genres"
	MetaLanguage   = "language"
	MetaPosterURL  = "poster_url"
	MetaSynopsis   = "synopsis"
	MetaTrailerURL = "trailer_url"
	MetaCastKey    = "cast"
	MetaMovieID    = "movie_id"
	MetaTime       = "time"
	MetaEventType  = "event_type"
	MetaStatus     = "status"
	MetaImageURL   = "image_url"
	MetaAddress    = "address"
	MetaSubtitle   = "subtitle"
	MetaPrice      = "price"
	MetaGenre      = "genre"
	MetaLocation   = "location"
	MetaDesc       = "description"
)

// CastMember is one credit of a film.
type CastMember struct {
	Function string `json:"function"`
	Name     string `json:"name"`
}

// Int returns the value under key as an int, or 0.
func (m Metadata) Int(key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// String returns the value under key as a string, or "".
func (m Metadata) String(key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case int, int64:
		return fmt.Sprintf("%d", v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Strings returns a copy of the list under key.
func (m Metadata) Strings(key string) []string {
	switch v := m[key].(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Cast returns a copy of the cast list under key.
func (m Metadata) Cast(key string) []CastMember {
	switch v := m[key].(type) {
	case []CastMember:
		out := make([]CastMember, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]CastMember, 0, len(v))
		for _, item := range v {
			if obj, ok := item.(map[string]any); ok {
				fn, _ := obj["function"].(string)
				name, _ := obj["name"].(string)
				out = append(out, CastMember{Function: fn, Name: name})
			}
		}
		return out
	default:
		return nil
	}
}
