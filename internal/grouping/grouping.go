// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

// Package grouping collapses per-showtime movie events into one entry per
// film.
package grouping

import (
	"slices"
	"strconv"
	"strings"

	"github.com/tomtom215/kinoweek/internal/models"
)

// languageAbbreviations is applied in order.
var languageAbbreviations = []struct{ full, short string }{
	{"Sprache: ", ""},
	{"Untertitel: ", "UT:"},
	{"Englisch", "EN"},
	{"Japanisch", "JP"},
	{"Italienisch", "IT"},
	{"Spanisch", "ES"},
	{"Russisch", "RU"},
	{"Deutsch", "DE"},
	{"Französisch", "FR"},
	{"Koreanisch", "KR"},
	{"Chinesisch", "ZH"},
}

// AbbreviateLanguage compacts a cinema language label:
// "Sprache: Englisch, Untertitel: Deutsch" becomes "EN, UT:DE".
func AbbreviateLanguage(label string) string {
	for _, a := range languageAbbreviations {
		label = strings.ReplaceAll(label, a.full, a.short)
	}
	return label
}

// Key identifies a film across showings.
func Key(ev models.Event) string {
	return ev.Title + "_" + strconv.Itoa(ev.MetaInt(models.MetaYear))
}

// GroupMoviesByFilm merges movie events sharing title and year. Film-level
// fields come from the first event of each film; every event adds one
// Showtime in input order. Films are sorted by the date of their first
// showtime; films sharing that date keep their arrival order.
func GroupMoviesByFilm(events []models.Event) []models.GroupedFilm {
	index := make(map[string]int)
	films := make([]models.GroupedFilm, 0)

	for _, ev := range events {
		key := Key(ev)
		i, ok := index[key]
		if !ok {
			i = len(films)
			index[key] = i
			films = append(films, seed(ev))
		}

		label := ev.MetaString(models.MetaLanguage)
		films[i].Showtimes = append(films[i].Showtimes, models.Showtime{
			Date:         ev.Date.Format("2006-01-02"),
			Time:         ev.Date.Format("15:04"),
			Language:     AbbreviateLanguage(label),
			HasSubtitles: strings.Contains(label, "Untertitel:"),
		})
	}

	slices.SortStableFunc(films, func(a, b models.GroupedFilm) int {
		return strings.Compare(a.FirstShowDate(), b.FirstShowDate())
	})
	return films
}

func seed(ev models.Event) models.GroupedFilm {
	genres := ev.MetaStrings(models.MetaGenres)
	if genres == nil {
		genres = []string{}
	}
	cast := ev.MetaCast(models.MetaCastKey)
	if cast == nil {
		cast = []models.CastMember{}
	}
	return models.GroupedFilm{
		Title:       ev.Title,
		Year:        ev.MetaInt(models.MetaYear),
		DurationMin: ev.MetaInt(models.MetaDuration),
		Rating:      ev.MetaInt(models.MetaRating),
		Country:     ev.MetaString(models.MetaCountry),
		Genres:      genres,
		Synopsis:    ev.MetaString(models.MetaSynopsis),
		PosterURL:   ev.MetaString(models.MetaPosterURL),
		TrailerURL:  ev.MetaString(models.MetaTrailerURL),
		Cast:        cast,
		TicketURL:   ev.URL,
		Venue:       ev.Venue,
		MovieID:     ev.MetaString(models.MetaMovieID),
	}
}
