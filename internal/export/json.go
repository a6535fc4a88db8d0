// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

package export

import (
	"path/filepath"
	"strconv"

	"github.com/tomtom215/kinoweek/internal/models"
)

const maxCast = 5

// EnhancedDocument is the layout of events.json.
type EnhancedDocument struct {
	Meta     EnhancedMeta    `json:"meta"`
	Movies   EnhancedMovies  `json:"movies"`
	Concerts []ConcertRecord `json:"concerts"`
}

// EnhancedMeta describes the run that produced an EnhancedDocument.
type EnhancedMeta struct {
	Week                int      `json:"week"`
	Year                int      `json:"year"`
	GeneratedAt         string   `json:"generated_at"`
	Sources             []string `json:"sources"`
	TotalMovieShowtimes int      `json:"total_movie_showtimes"`
	TotalUniqueFilms    int      `json:"total_unique_films"`
	TotalConcerts       int      `json:"total_concerts"`
}

// EnhancedMovies holds both the grouped and the flat view of the week's films.
type EnhancedMovies struct {
	UniqueFilms  []FilmRecord         `json:"unique_films"`
	AllShowtimes []models.EventRecord `json:"all_showtimes"`
}

// FilmRecord is one grouped film. Rating is rendered as "FSK12", or "" when
// unknown.
type FilmRecord struct {
	Title       string              `json:"title"`
	Year        int                 `json:"year"`
	DurationMin int                 `json:"duration_min"`
	Rating      string              `json:"rating"`
	Country     string              `json:"country"`
	Genres      []string            `json:"genres"`
	Synopsis    string              `json:"synopsis"`
	PosterURL   string              `json:"poster_url"`
	TrailerURL  string              `json:"trailer_url"`
	Cast        []models.CastMember `json:"cast"`
	TicketURL   string              `json:"ticket_url"`
	Venue       string              `json:"venue"`
	Showtimes   []ShowtimeRecord    `json:"showtimes"`
}

// ShowtimeRecord is one showing of a FilmRecord.
type ShowtimeRecord struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Language string `json:"language"`
}

// ConcertRecord is one radar event with its defaults filled in.
type ConcertRecord struct {
	Artist    string `json:"artist"`
	Date      string `json:"date"`
	Venue     string `json:"venue"`
	URL       string `json:"url"`
	Time      string `json:"time"`
	EventType string `json:"event_type"`
	Status    string `json:"status"`
	ImageURL  string `json:"image_url"`
	Address   string `json:"address"`
}

func (m *Manager) writeEnhancedJSON(d weekData) (string, error) {
	path := filepath.Join(m.dir, "events.json")
	return path, writeJSON(path, buildEnhanced(d))
}

func buildEnhanced(d weekData) EnhancedDocument {
	sources := d.Sources
	if sources == nil {
		sources = []string{}
	}
	doc := EnhancedDocument{
		Meta: EnhancedMeta{
			Week:                d.Week,
			Year:                d.Year,
			GeneratedAt:         d.Now.Format(models.LocalISO),
			Sources:             sources,
			TotalMovieShowtimes: len(d.Movies),
			TotalUniqueFilms:    len(d.Films),
			TotalConcerts:       len(d.Concerts),
		},
		Movies: EnhancedMovies{
			UniqueFilms:  make([]FilmRecord, 0, len(d.Films)),
			AllShowtimes: make([]models.EventRecord, 0, len(d.Movies)),
		},
		Concerts: make([]ConcertRecord, 0, len(d.Concerts)),
	}

	for _, f := range d.Films {
		rating := ""
		if f.Rating > 0 {
			rating = "FSK" + strconv.Itoa(f.Rating)
		}
		cast := f.Cast
		if len(cast) > maxCast {
			cast = cast[:maxCast]
		}
		showtimes := make([]ShowtimeRecord, 0, len(f.Showtimes))
		for _, st := range f.Showtimes {
			showtimes = append(showtimes, ShowtimeRecord{Date: st.Date, Time: st.Time, Language: st.Language})
		}
		doc.Movies.UniqueFilms = append(doc.Movies.UniqueFilms, FilmRecord{
			Title:       f.Title,
			Year:        f.Year,
			DurationMin: f.DurationMin,
			Rating:      rating,
			Country:     f.Country,
			Genres:      f.Genres,
			Synopsis:    f.Synopsis,
			PosterURL:   f.PosterURL,
			TrailerURL:  f.TrailerURL,
			Cast:        cast,
			TicketURL:   f.TicketURL,
			Venue:       f.Venue,
			Showtimes:   showtimes,
		})
	}

	for _, ev := range d.Movies {
		rec := ev.Record()
		rec.Category = ""
		doc.Movies.AllShowtimes = append(doc.Movies.AllShowtimes, rec)
	}

	for _, ev := range d.Concerts {
		doc.Concerts = append(doc.Concerts, ConcertRecord{
			Artist:    ev.Title,
			Date:      ev.Date.Format(models.LocalISO),
			Venue:     ev.Venue,
			URL:       ev.URL,
			Time:      ev.MetaStringOr(models.MetaTime, "20:00"),
			EventType: ev.MetaStringOr(models.MetaEventType, "concert"),
			Status:    ev.MetaStringOr(models.MetaStatus, "available"),
			ImageURL:  ev.MetaString(models.MetaImageURL),
			Address:   ev.MetaString(models.MetaAddress),
		})
	}
	return doc
}
