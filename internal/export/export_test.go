// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

package export

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/kinoweek/internal/models"
)

var now = time.Date(2025, time.November, 20, 9, 30, 0, 0, time.Local)

func mustEvent(t *testing.T, title string, date time.Time, venue string, cat models.Category, meta models.Metadata) models.Event {
	t.Helper()
	ev, err := models.NewEvent(title, date, venue, "https://example.org/"+strings.ReplaceAll(title, " ", "-"), cat, meta)
	if err != nil {
		t.Fatal(err)
	}
	return ev
}

func fixtures(t *testing.T) (movies, concerts []models.Event) {
	t.Helper()
	cast := []models.CastMember{}
	for _, n := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		cast = append(cast, models.CastMember{Function: "Darsteller", Name: n})
	}
	wicked := models.Metadata{
		models.MetaYear:      2025,
		models.MetaDuration:  137,
		models.MetaRating:    12,
		models.MetaCountry:   "USA",
		models.MetaGenres:    []string{"Musical", "Fantasy"},
		models.MetaLanguage:  "Sprache: Englisch, Untertitel: Deutsch",
		models.MetaSynopsis:  strings.Repeat("s", 350),
		models.MetaPosterURL: "https://img.example/wicked.jpg",
		models.MetaCastKey:   cast,
	}
	movies = []models.Event{
		mustEvent(t, "Wicked", time.Date(2025, 11, 21, 17, 0, 0, 0, time.Local), "Astor Grand Cinema", models.CategoryMovie, wicked),
		mustEvent(t, "Wicked", time.Date(2025, 11, 22, 20, 0, 0, 0, time.Local), "Astor Grand Cinema", models.CategoryMovie, wicked),
		mustEvent(t, "Perfect Days", time.Date(2025, 11, 23, 18, 0, 0, 0, time.Local), "Astor Grand Cinema", models.CategoryMovie,
			models.Metadata{models.MetaYear: 2023, models.MetaLanguage: "Sprache: Japanisch"}),
	}
	concerts = []models.Event{
		mustEvent(t, "Kraftklub", time.Date(2025, 12, 5, 19, 30, 0, 0, time.Local), "Capitol Hannover", models.CategoryRadar,
			models.Metadata{models.MetaTime: "19:30", models.MetaStatus: "sold_out", models.MetaAddress: "Schwarzer Bär 2, 30449 Hannover"}),
		mustEvent(t, "Scorpions", time.Date(2026, 1, 10, 20, 0, 0, 0, time.Local), "ZAG Arena", models.CategoryRadar, nil),
	}
	return movies, concerts
}

func TestExportAll(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir, nil, WithSources([]string{"Astor Grand Cinema", "ZAG Arena"}))
	if err != nil {
		t.Fatal(err)
	}
	movies, concerts := fixtures(t)

	paths, err := m.ExportAll(context.Background(), movies, concerts, now)
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}

	want := map[string]string{
		FormatMoviesCSV:        "movies.csv",
		FormatMoviesGroupedCSV: "movies_grouped.csv",
		FormatConcertsCSV:      "concerts.csv",
		FormatJSON:             "events.json",
		FormatMarkdown:         "weekly_digest.md",
		FormatArchive:          filepath.Join("archive", "2025-W47.json"),
	}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v", paths)
	}
	for format, rel := range want {
		if paths[format] != filepath.Join(dir, rel) {
			t.Errorf("%s path = %q, want %q", format, paths[format], filepath.Join(dir, rel))
		}
		if _, err := os.Stat(paths[format]); err != nil {
			t.Errorf("%s not written: %v", format, err)
		}
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestCSVExports(t *testing.T) {
	dir := t.TempDir()
	m, _ := NewManager(dir, []string{FormatMoviesCSV, FormatMoviesGroupedCSV, FormatConcertsCSV})
	movies, concerts := fixtures(t)
	if _, err := m.ExportAll(context.Background(), movies, concerts, now); err != nil {
		t.Fatal(err)
	}

	rows := readCSV(t, filepath.Join(dir, "movies.csv"))
	if len(rows) != 4 || strings.Join(rows[0], ",") != strings.Join(moviesHeader, ",") {
		t.Fatalf("movies.csv rows = %d header = %v", len(rows), rows[0])
	}
	if got := strings.Join(rows[1], "|"); got != "47|Wicked|2025-11-21|17:00|137|12|2025|USA|Sprache: Englisch, Untertitel: Deutsch|Musical; Fantasy|https://img.example/wicked.jpg|https://example.org/Wicked|Astor Grand Cinema" {
		t.Errorf("movies.csv row = %s", got)
	}
	if rows[3][4] != "0" || rows[3][5] != "0" {
		t.Errorf("missing duration/rating should be 0: %v", rows[3])
	}

	grouped := readCSV(t, filepath.Join(dir, "movies_grouped.csv"))
	if len(grouped) != 3 {
		t.Fatalf("movies_grouped.csv rows = %d", len(grouped))
	}
	w := grouped[1]
	if w[1] != "Wicked" || w[7] != "2" || w[8] != "2025-11-21 17:00 (EN, UT:DE); 2025-11-22 20:00 (EN, UT:DE)" {
		t.Errorf("grouped row = %v", w)
	}
	if syn := w[12]; len(syn) != 203 || !strings.HasSuffix(syn, "...") {
		t.Errorf("synopsis not cut at 200: %d", len(syn))
	}

	c := readCSV(t, filepath.Join(dir, "concerts.csv"))
	if got := strings.Join(c[1], "|"); got != "47|Kraftklub|2025-12-05|19:30|Capitol Hannover|concert|sold_out|https://example.org/Kraftklub||Schwarzer Bär 2, 30449 Hannover" {
		t.Errorf("concert row = %s", got)
	}
	if c[2][3] != "20:00" || c[2][6] != "available" {
		t.Errorf("defaults not applied: %v", c[2])
	}
}

func TestEnhancedJSON(t *testing.T) {
	dir := t.TempDir()
	m, _ := NewManager(dir, []string{FormatJSON}, WithSources([]string{"Astor Grand Cinema"}))
	movies, concerts := fixtures(t)
	if _, err := m.ExportAll(context.Background(), movies, concerts, now); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "events.json"))
	if err != nil {
		t.Fatal(err)
	}
	var doc EnhancedDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}

	if doc.Meta.Week != 47 || doc.Meta.Year != 2025 || doc.Meta.GeneratedAt != "2025-11-20T09:30:00" {
		t.Errorf("meta = %+v", doc.Meta)
	}
	if doc.Meta.TotalMovieShowtimes != 3 || doc.Meta.TotalUniqueFilms != 2 || doc.Meta.TotalConcerts != 2 {
		t.Errorf("totals = %+v", doc.Meta)
	}
	film := doc.Movies.UniqueFilms[0]
	if film.Rating != "FSK12" || len(film.Cast) != maxCast || len(film.Showtimes) != 2 {
		t.Errorf("film = %+v", film)
	}
	if doc.Movies.UniqueFilms[1].Rating != "" {
		t.Errorf("unrated film rating = %q", doc.Movies.UniqueFilms[1].Rating)
	}
	if len(doc.Movies.AllShowtimes) != 3 || doc.Movies.AllShowtimes[0].Date != "2025-11-21T17:00:00" {
		t.Errorf("all_showtimes = %+v", doc.Movies.AllShowtimes)
	}
	if sc := doc.Concerts[1]; sc.Time != "20:00" || sc.EventType != "concert" || sc.Status != "available" {
		t.Errorf("concert defaults = %+v", sc)
	}
	if !strings.Contains(string(raw), "Schwarzer Bär") {
		t.Error("non-ASCII text escaped")
	}
}

func TestRenderMarkdown(t *testing.T) {
	movies, concerts := fixtures(t)
	m, _ := NewManager(t.TempDir(), []string{FormatMarkdown}, WithSources([]string{"Astor Grand Cinema", "Capitol Hannover"}))
	if _, err := m.ExportAll(context.Background(), movies, concerts, now); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(filepath.Join(m.Dir(), "weekly_digest.md"))
	if err != nil {
		t.Fatal(err)
	}
	md := string(raw)

	for _, want := range []string{
		"# Hannover Week 47 (2025)\n\n*Generated: 2025-11-20 09:30*\n\n---\n\n## Movies (Original Version)\n\n",
		"**2 films** with **3 showtimes** this week\n\n### Wicked (2025)\n\n*2h17m | FSK12 | USA | Musical, Fantasy*\n\n> ",
		"| Date | Time | Language |\n|------|------|----------|\n| 2025-11-21 | 17:00 | EN, UT:DE |\n| 2025-11-22 | 20:00 | EN, UT:DE |\n\n[Poster](https://img.example/wicked.jpg) | [Tickets](https://example.org/Wicked)\n\n---\n\n### Perfect Days (2023)\n\n| Date",
		"[Tickets](https://example.org/Perfect-Days)\n\n---\n\n## On The Radar\n\n**2 upcoming events**\n\n",
		"| 2025-12-05 19:30 | [Kraftklub](https://example.org/Kraftklub) | Capitol Hannover | Sold Out |\n",
		"| 2026-01-10 20:00 | [Scorpions](https://example.org/Scorpions) | ZAG Arena | Available |\n\n---\n\n*Data sourced from Astor Grand Cinema, Capitol Hannover*",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown lacks %q\n---\n%s", want, md)
		}
	}
	if !strings.HasSuffix(md, "Capitol Hannover*") {
		t.Error("markdown has trailing content")
	}
	if strings.Contains(md, strings.Repeat("s", 301)) {
		t.Error("synopsis not cut at 300")
	}
}

func TestArchiveFile(t *testing.T) {
	dir := t.TempDir()
	m, _ := NewManager(dir, []string{FormatArchive})
	movies, concerts := fixtures(t)
	paths, err := m.ExportAll(context.Background(), movies, concerts, now)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(paths[FormatArchive])
	if err != nil {
		t.Fatal(err)
	}
	var snap models.WeeklySnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Label() != "2025-W47" || len(snap.Movies) != 3 || len(snap.Concerts) != 2 {
		t.Errorf("snapshot = %s movies=%d concerts=%d", snap.Label(), len(snap.Movies), len(snap.Concerts))
	}
}

func TestNewManager(t *testing.T) {
	if _, err := NewManager("", nil); err == nil {
		t.Error("empty dir accepted")
	}
	if _, err := NewManager("out", []string{"pdf"}); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("unknown format error = %v", err)
	}
	m, err := NewManager("out", []string{"json", " markdown", "json"})
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Formats(); len(got) != 2 || got[1] != FormatMarkdown {
		t.Errorf("Formats() = %v", got)
	}
}

func TestExportAllEmpty(t *testing.T) {
	m, _ := NewManager(t.TempDir(), nil)
	paths, err := m.ExportAll(context.Background(), nil, nil, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != len(AllFormats) {
		t.Errorf("paths = %v", paths)
	}
}

func TestExportAllReportsFailuresAndContinues(t *testing.T) {
	dir := t.TempDir()
	// a directory where the file should go makes that one format fail
	if err := os.Mkdir(filepath.Join(dir, "movies.csv"), 0o755); err != nil {
		t.Fatal(err)
	}
	m, _ := NewManager(dir, []string{FormatMoviesCSV, FormatJSON})
	paths, err := m.ExportAll(context.Background(), nil, nil, now)
	if err == nil || !strings.Contains(err.Error(), FormatMoviesCSV) {
		t.Fatalf("err = %v", err)
	}
	if _, ok := paths[FormatJSON]; !ok {
		t.Error("json export skipped after csv failure")
	}
}
