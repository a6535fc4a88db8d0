// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

package dates

import (
	"testing"
	"time"
)

func local(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.Local)
}

func TestParseGenericDate(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   time.Time
		wantOK bool
	}{
		{"dotted date defaults to evening", "20.11.2025", local(2025, 11, 20, 20, 0), true},
		{"weekday with time", "Fr, 22.11.2025 19:30", local(2025, 11, 22, 19, 30), true},
		{"dotted date and time", "20.11.2025 18:00", local(2025, 11, 20, 18, 0), true},
		{"pipe separated with Uhr", "20.11.2025 | 21:15 Uhr", local(2025, 11, 20, 21, 15), true},
		{"iso timestamp", "2025-12-01T19:45:00", local(2025, 12, 1, 19, 45), true},
		{"iso date", "2025-12-01", local(2025, 12, 1, 0, 0), true},
		{"single digit day in text", "Sa 6.12.2025", local(2025, 12, 6, 20, 0), true},
		{"surrounding whitespace", "  20.11.2025  ", local(2025, 11, 20, 20, 0), true},
		{"not a date", "not a date", time.Time{}, false},
		{"empty", "", time.Time{}, false},
		{"impossible day", "31.02.2025", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseGenericDate(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ParseGenericDate(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseGenericDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// inBerlin runs the test with time.Local set to Europe/Berlin.
func inBerlin(t *testing.T) {
	t.Helper()
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("Europe/Berlin not available: %v", err)
	}
	prev := time.Local
	time.Local = berlin
	t.Cleanup(func() { time.Local = prev })
}

func TestParseGenericDateDaylightSavingDays(t *testing.T) {
	inBerlin(t)

	tests := []struct {
		name string
		in   string
		zone string
	}{
		{"spring forward", "29.03.2026", "CEST"},
		{"fall back", "25.10.2026", "CET"},
		{"ordinary day", "20.11.2025", "CET"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseGenericDate(tt.in)
			if !ok {
				t.Fatalf("ParseGenericDate(%q) failed", tt.in)
			}
			if got.Hour() != DefaultHour || got.Minute() != 0 {
				t.Errorf("ParseGenericDate(%q) = %s, want %02d:00 wall clock", tt.in, got.Format("2006-01-02 15:04 MST"), DefaultHour)
			}
			if zone, _ := got.Zone(); zone != tt.zone {
				t.Errorf("zone = %s, want %s", zone, tt.zone)
			}
		})
	}
}

func TestParseVenueCompactDate(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   time.Time
		wantOK bool
	}{
		{"prefixed abbreviation", "AB22NOV2025", local(2025, 11, 22, 20, 0), true},
		{"plain", "3DEZ2025", local(2025, 12, 3, 20, 0), true},
		{"umlaut", "14MÄR2026", local(2026, 3, 14, 20, 0), true},
		{"ascii maerz", "14MRZ2026", local(2026, 3, 14, 20, 0), true},
		{"mis-decoded umlaut", "14MÃ¤R2026", local(2026, 3, 14, 20, 0), true},
		{"full name", "1Januar2026", local(2026, 1, 1, 20, 0), true},
		{"unknown month", "22XYZ2025", time.Time{}, false},
		{"no match", "Heute", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseVenueCompactDate(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ParseVenueCompactDate(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseVenueCompactDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseISOOffset(t *testing.T) {
	tests := []struct {
		in     string
		want   time.Time
		wantOK bool
	}{
		{"2025-11-22T20:00:00+01:00", local(2025, 11, 22, 20, 0), true},
		{"2025-11-22T19:30:00Z", local(2025, 11, 22, 19, 30), true},
		{"2025-11-22T19:30:00", local(2025, 11, 22, 19, 30), true},
		{"2025-11-22", local(2025, 11, 22, 0, 0), true},
		{"", time.Time{}, false},
		{"tomorrow", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseISOOffset(tt.in)
			if ok != tt.wantOK || (ok && !got.Equal(tt.want)) {
				t.Errorf("ParseISOOffset(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestURLDates(t *testing.T) {
	got, ok := ParseCompactURLDate("/veranstaltungen/november/211125-le-fly.html")
	if !ok || !got.Equal(local(2025, 11, 21, 20, 0)) {
		t.Errorf("ParseCompactURLDate = %v, %v", got, ok)
	}
	if _, ok := ParseCompactURLDate("/veranstaltungen/november/le-fly.html"); ok {
		t.Error("ParseCompactURLDate accepted a path without a date code")
	}

	got, ok = ParseURLISODate("programm/2025-11-22/4711")
	if !ok || !got.Equal(local(2025, 11, 22, 20, 0)) {
		t.Errorf("ParseURLISODate = %v, %v", got, ok)
	}
}

func TestParseLongGermanDate(t *testing.T) {
	got, ok := ParseLongGermanDate("Samstag 22. November 2025")
	if !ok || !got.Equal(local(2025, 11, 22, 20, 0)) {
		t.Errorf("ParseLongGermanDate = %v, %v", got, ok)
	}
	if _, ok := ParseLongGermanDate("22. Brumaire 2025"); ok {
		t.Error("unknown month accepted")
	}
}

func TestExtractLabeledClock(t *testing.T) {
	tests := []struct {
		text, label string
		h, m        int
		ok          bool
	}{
		{"Einlass: 19.00 Uhr | Beginn: 20.00 Uhr", "Beginn", 20, 0, true},
		{"Einlass: 19.00 Uhr", "Einlass", 19, 0, true},
		{"Beginn 21:30", "Beginn", 21, 30, true},
		{"Einlass: 19.00 Uhr", "Beginn", 0, 0, false},
	}
	for _, tt := range tests {
		h, m, ok := ExtractLabeledClock(tt.text, tt.label)
		if h != tt.h || m != tt.m || ok != tt.ok {
			t.Errorf("ExtractLabeledClock(%q, %q) = %d:%d %v", tt.text, tt.label, h, m, ok)
		}
	}
}

func TestExtractLabeledClockReusesPattern(t *testing.T) {
	first := labeledClockRe("Beginn")
	if _, _, ok := ExtractLabeledClock("Beginn: 20.00", "Beginn"); !ok {
		t.Fatal("ExtractLabeledClock failed")
	}
	if labeledClockRe("Beginn") != first {
		t.Error("pattern for Beginn compiled twice")
	}
	if labeledClockRe("Einlass") == first {
		t.Error("labels share a pattern")
	}
}

func TestGermanNames(t *testing.T) {
	if got := GermanWeekday(time.Saturday); got != "Sa" {
		t.Errorf("GermanWeekday(Saturday) = %q", got)
	}
	if got := GermanMonthShort(time.March); got != "Mär" {
		t.Errorf("GermanMonthShort(March) = %q", got)
	}
	if m, ok := GermanMonth("Okt."); !ok || m != time.October {
		t.Errorf("GermanMonth(Okt.) = %v, %v", m, ok)
	}
}
