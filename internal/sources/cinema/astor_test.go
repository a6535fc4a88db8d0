// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

package cinema

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/kinoweek/internal/models"
	"github.com/tomtom215/kinoweek/internal/sources"
	"github.com/tomtom215/kinoweek/internal/sources/sourcestest"
)

const astorFixture = `{
  "genres": [{"id": 1, "name": "Drama"}, {"id": 2, "name": "Thriller"}],
  "movies": [
    {
      "id": 101, "name": "Wicked: For Good", "slug": "wicked-for-good",
      "minutes": 137, "rating": 12, "year": 2025, "country": "USA",
      "genreIds": [1, 2, 99],
      "poster": {"src": "https://img.example/wicked.jpg"},
      "translations": [
        {"language": "en", "descShort": "English text"},
        {"language": "de", "descShort": "", "descLong": "Deutscher Text"}
      ],
      "trailers": [{"url1080": "https://t.example/1080.mp4"}, {"url720": "https://t.example/720.mp4"}],
      "casts": [{"function": "Regie", "name": "Jon M. Chu"}]
    },
    {"id": "102", "name": "Das Kanu des Manitu", "slug": "", "minutes": 88, "year": 2025}
  ],
  "performances": [
    {"movieId": 101, "language": "Sprache: Englisch", "begin": "2025-11-24T20:00:00+01:00"},
    {"movieId": 101, "language": "Sprache: Englisch, Untertitel: Deutsch", "begin": "2025-11-25T17:15:00+01:00"},
    {"movieId": 101, "language": "Sprache: Deutsch", "begin": "2025-11-24T16:00:00+01:00"},
    {"movieId": "102", "language": "Sprache: Deutsch, Untertitel: Englisch", "begin": "2025-11-26T18:00:00Z"},
    {"movieId": 999, "language": "Sprache: Englisch", "begin": "2025-11-26T18:00:00+01:00"},
    {"movieId": 101, "language": "Sprache: Englisch", "begin": ""}
  ]
}`

func TestAstorFetch(t *testing.T) {
	f := sourcestest.NewStaticFetcher(map[string]string{AstorAPIURL: astorFixture})
	src := NewAstor(sources.Env{Fetcher: f})

	events, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3: %+v", len(events), events)
	}

	first := events[0]
	if first.Title != "Wicked: For Good" || first.Category != models.CategoryMovie {
		t.Errorf("first event = %q/%q", first.Title, first.Category)
	}
	want := time.Date(2025, 11, 24, 20, 0, 0, 0, time.Local)
	if !first.Date.Equal(want) {
		t.Errorf("date = %v, want %v", first.Date, want)
	}
	if first.URL != "https://hannover.premiumkino.de/film/wicked-for-good" {
		t.Errorf("url = %q", first.URL)
	}
	if first.Venue != AstorName {
		t.Errorf("venue = %q", first.Venue)
	}

	tests := []struct {
		key  string
		want string
	}{
		{models.MetaDuration, "137"},
		{models.MetaRating, "12"},
		{models.MetaYear, "2025"},
		{models.MetaCountry, "USA"},
		{models.MetaLanguage, "Sprache: Englisch"},
		{models.MetaPosterURL, "https://img.example/wicked.jpg"},
		{models.MetaSynopsis, "Deutscher Text"},
		{models.MetaTrailerURL, "https://t.example/1080.mp4"},
		{models.MetaMovieID, "101"},
	}
	for _, tt := range tests {
		if got := first.MetaString(tt.key); got != tt.want {
			t.Errorf("metadata[%s] = %q, want %q", tt.key, got, tt.want)
		}
	}
	if got := first.MetaStrings(models.MetaGenres); len(got) != 2 || got[0] != "Drama" {
		t.Errorf("genres = %v, want [Drama Thriller]", got)
	}
	if got := first.MetaCast(models.MetaCastKey); len(got) != 1 || got[0].Name != "Jon M. Chu" {
		t.Errorf("cast = %+v", got)
	}

	manitu := events[2]
	if manitu.URL != astorHomepage {
		t.Errorf("fallback url = %q, want %q", manitu.URL, astorHomepage)
	}
	if manitu.Date.Hour() != 18 {
		t.Errorf("Z offset should keep the wall clock, got %v", manitu.Date)
	}
}

func TestAstorSendsHeaders(t *testing.T) {
	f := sourcestest.NewStaticFetcher(map[string]string{AstorAPIURL: `{}`})
	if _, err := NewAstor(sources.Env{Fetcher: f}).Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	h := f.Headers[AstorAPIURL]
	if h.Get("Referer") != astorHomepage {
		t.Errorf("Referer = %q", h.Get("Referer"))
	}
	if h.Get("Accept") == "" {
		t.Error("Accept header missing")
	}
}

func TestAstorFetchErrors(t *testing.T) {
	t.Run("http status", func(t *testing.T) {
		f := sourcestest.NewStaticFetcher(nil)
		_, err := NewAstor(sources.Env{Fetcher: f}).Fetch(context.Background())
		if !errors.Is(err, sources.ErrHTTPStatus) {
			t.Errorf("error = %v, want ErrHTTPStatus", err)
		}
	})
	t.Run("malformed json", func(t *testing.T) {
		f := sourcestest.NewStaticFetcher(map[string]string{AstorAPIURL: `{"movies": [`})
		_, err := NewAstor(sources.Env{Fetcher: f}).Fetch(context.Background())
		if err == nil {
			t.Fatal("expected decode error")
		}
		if !strings.Contains(err.Error(), "decode json from "+AstorAPIURL) {
			t.Errorf("error = %v, want the shared JSON decode error naming the API URL", err)
		}
	})
}

func TestAstorDisabled(t *testing.T) {
	src := NewAstor(sources.Env{Disabled: map[string]bool{AstorID: true}})
	if src.Enabled() {
		t.Error("source should be disabled")
	}
	if src.Type() != sources.TypeCinema {
		t.Errorf("type = %q", src.Type())
	}
}
