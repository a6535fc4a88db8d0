// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tomtom215/kinoweek/internal/models"
)

var (
	moviesHeader = []string{
		"week", "title", "date", "time", "duration_min", "rating", "year",
		"country", "language", "genres", "poster_url", "ticket_url", "venue",
	}
	moviesGroupedHeader = []string{
		"week", "title", "year", "duration_min", "rating", "country", "genres",
		"num_showtimes", "showtimes", "poster_url", "trailer_url", "ticket_url", "synopsis",
	}
	concertsHeader = []string{
		"week", "artist", "date", "time", "venue", "event_type", "status",
		"ticket_url", "image_url", "address",
	}
)

func (m *Manager) writeMoviesCSV(d weekData) (string, error) {
	week := strconv.Itoa(d.Week)
	rows := make([][]string, 0, len(d.Movies))
	for _, ev := range d.Movies {
		rows = append(rows, []string{
			week,
			ev.Title,
			ev.Date.Format("2006-01-02"),
			ev.Date.Format("15:04"),
			strconv.Itoa(ev.MetaInt(models.MetaDuration)),
			strconv.Itoa(ev.MetaInt(models.MetaRating)),
			strconv.Itoa(ev.MetaInt(models.MetaYear)),
			ev.MetaString(models.MetaCountry),
			ev.MetaString(models.MetaLanguage),
			strings.Join(ev.MetaStrings(models.MetaGenres), "; "),
			ev.MetaString(models.MetaPosterURL),
			ev.URL,
			ev.Venue,
		})
	}
	return writeCSV(filepath.Join(m.dir, "movies.csv"), moviesHeader, rows)
}

func (m *Manager) writeMoviesGroupedCSV(d weekData) (string, error) {
	week := strconv.Itoa(d.Week)
	rows := make([][]string, 0, len(d.Films))
	for _, f := range d.Films {
		showtimes := make([]string, 0, len(f.Showtimes))
		for _, st := range f.Showtimes {
			showtimes = append(showtimes, fmt.Sprintf("%s %s (%s)", st.Date, st.Time, st.Language))
		}
		rows = append(rows, []string{
			week,
			f.Title,
			strconv.Itoa(f.Year),
			strconv.Itoa(f.DurationMin),
			strconv.Itoa(f.Rating),
			f.Country,
			strings.Join(f.Genres, "; "),
			strconv.Itoa(len(f.Showtimes)),
			strings.Join(showtimes, "; "),
			f.PosterURL,
			f.TrailerURL,
			f.TicketURL,
			cut(f.Synopsis, 200),
		})
	}
	return writeCSV(filepath.Join(m.dir, "movies_grouped.csv"), moviesGroupedHeader, rows)
}

func (m *Manager) writeConcertsCSV(d weekData) (string, error) {
	week := strconv.Itoa(d.Week)
	rows := make([][]string, 0, len(d.Concerts))
	for _, ev := range d.Concerts {
		rows = append(rows, []string{
			week,
			ev.Title,
			ev.Date.Format("2006-01-02"),
			ev.MetaStringOr(models.MetaTime, "20:00"),
			ev.Venue,
			ev.MetaStringOr(models.MetaEventType, "concert"),
			ev.MetaStringOr(models.MetaStatus, "available"),
			ev.URL,
			ev.MetaString(models.MetaImageURL),
			ev.MetaString(models.MetaAddress),
		})
	}
	return writeCSV(filepath.Join(m.dir, "concerts.csv"), concertsHeader, rows)
}

func writeCSV(path string, header []string, rows [][]string) (string, error) {
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
