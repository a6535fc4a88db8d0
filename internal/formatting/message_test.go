// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

package formatting

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/tomtom215/kinoweek/internal/models"
)

// Thursday of ISO week 47.
var now = time.Date(2025, time.November, 20, 9, 0, 0, 0, time.Local)

func event(t *testing.T, title string, date time.Time, venue string, cat models.Category, meta models.Metadata) models.Event {
	t.Helper()
	ev, err := models.NewEvent(title, date, venue, "https://example.org", cat, meta)
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	return ev
}

func TestFormatMessage(t *testing.T) {
	result := models.NewCategorizedResult(now)
	result.MoviesThisWeek = []models.Event{
		event(t, "Wicked", time.Date(2025, 11, 21, 20, 0, 0, 0, time.Local), "Astor Grand Cinema", models.CategoryMovie,
			models.Metadata{models.MetaYear: 2025, models.MetaDuration: 137, models.MetaRating: 12, models.MetaLanguage: "Sprache: Englisch, Untertitel: Deutsch"}),
		event(t, "Bugonia", time.Date(2025, 11, 21, 22, 15, 0, 0, time.Local), "Astor Grand Cinema", models.CategoryMovie,
			models.Metadata{models.MetaLanguage: "Sprache: Englisch"}),
		event(t, "Perfect Days", time.Date(2025, 11, 22, 18, 0, 0, 0, time.Local), "Astor Grand Cinema", models.CategoryMovie,
			models.Metadata{models.MetaLanguage: "Sprache: Japanisch"}),
	}
	result.BigEventsRadar = []models.Event{
		event(t, "Kraftklub", time.Date(2025, 11, 29, 19, 30, 0, 0, time.Local), "Capitol Hannover", models.CategoryRadar,
			models.Metadata{models.MetaTime: "19:30"}),
		event(t, "Helene Fischer", time.Date(2026, 3, 13, 20, 0, 0, 0, time.Local), "ZAG Arena", models.CategoryRadar, nil),
	}

	want := strings.Join([]string{
		"*Hannover Week 47*",
		"",
		"*Movies (This Week)*",
		"",
		"*Fri 21.11.*",
		"  *Wicked (2025)*",
		"  _2h17m | FSK12_",
		"  20:00 (EN, UT:DE)",
		"  *Bugonia*",
		"  22:15 (EN)",
		"",
		"*Sat 22.11.*",
		"  *Perfect Days*",
		"  18:00 (JP)",
		"",
		"*On The Radar*",
		"  *Kraftklub*",
		"  Sa, 29. Nov | 19:30 @ Capitol",
		"  *Helene Fischer*",
		"  Fr, 13. Mär 2026 | 20:00 @ ZAG Arena",
	}, "\n")

	if got := FormatMessage(result, now); got != want {
		t.Errorf("FormatMessage mismatch\n got:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatMessageEmpty(t *testing.T) {
	got := FormatMessage(models.NewCategorizedResult(now), now)
	for _, want := range []string{"_No OV movies this week_", "_No upcoming events_", "*Hannover Week 47*"} {
		if !strings.Contains(got, want) {
			t.Errorf("empty digest lacks %q:\n%s", want, got)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name      string
		msg       string
		wantSame  bool
		wantRunes int
	}{
		{"short", "hello", true, 5},
		{"exactly limit", strings.Repeat("a", TelegramMaxLength), true, TelegramMaxLength},
		{"5000 ascii", strings.Repeat("a", 5000), false, TelegramMaxLength - 20 + utf8.RuneCountInString(TruncationMarker)},
		{"5000 umlauts", strings.Repeat("ü", 5000), false, TelegramMaxLength - 20 + utf8.RuneCountInString(TruncationMarker)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.msg, TelegramMaxLength)
			if (got == tt.msg) != tt.wantSame {
				t.Fatalf("unchanged = %v, want %v", got == tt.msg, tt.wantSame)
			}
			n := utf8.RuneCountInString(got)
			if n != tt.wantRunes {
				t.Errorf("runes = %d, want %d", n, tt.wantRunes)
			}
			if n > TelegramMaxLength {
				t.Errorf("result exceeds limit: %d", n)
			}
			if !tt.wantSame && !strings.HasSuffix(got, "(truncated)") {
				t.Errorf("truncated message does not end with marker: %q", got[len(got)-30:])
			}
			if !utf8.ValidString(got) {
				t.Error("truncation split a multi-byte character")
			}
		})
	}
}

func TestFormatMessageTruncatesLongDigest(t *testing.T) {
	result := models.NewCategorizedResult(now)
	for i := 0; i < 200; i++ {
		result.MoviesThisWeek = append(result.MoviesThisWeek, event(t, strings.Repeat("Long Title ", 3),
			now.Add(time.Duration(i)*time.Minute), "Astor Grand Cinema", models.CategoryMovie,
			models.Metadata{models.MetaLanguage: "Sprache: Englisch"}))
	}
	got := FormatMessage(result, now)
	if utf8.RuneCountInString(got) > TelegramMaxLength || !strings.HasSuffix(got, "(truncated)") {
		t.Errorf("long digest not truncated: %d runes", utf8.RuneCountInString(got))
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		min  int
		want string
	}{
		{137, "2h17m"},
		{120, "2h"},
		{45, "45m"},
		{0, ""},
		{-5, ""},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.min); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.min, got, tt.want)
		}
	}
}

func TestAbbreviateVenue(t *testing.T) {
	if got := AbbreviateVenue("Capitol Hannover"); got != "Capitol" {
		t.Errorf("AbbreviateVenue(Capitol Hannover) = %q", got)
	}
	if got := AbbreviateVenue("Faust"); got != "Faust" {
		t.Errorf("AbbreviateVenue(Faust) = %q", got)
	}
}
