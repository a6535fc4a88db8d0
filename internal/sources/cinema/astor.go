// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

// Package cinema holds the movie sources. Only original-version showings are
// emitted.
package cinema

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/tomtom215/kinoweek/internal/dates"
	"github.com/tomtom215/kinoweek/internal/logging"
	"github.com/tomtom215/kinoweek/internal/models"
	"github.com/tomtom215/kinoweek/internal/sources"
)

const (
	AstorID         = "astor_hannover"
	AstorName       = "Astor Grand Cinema"
	AstorAPIURL     = "https://backend.premiumkino.de/v1/de/hannover/program"
	astorTicketBase = "https://hannover.premiumkino.de/film/"
	astorHomepage   = "https://hannover.premiumkino.de/"
)

// Astor reads the premiumkino program API of the Astor Grand Cinema.
type Astor struct {
	sources.Base
	fetcher sources.Fetcher
}

// NewAstor is the registry factory for the Astor source.
func NewAstor(env sources.Env) sources.Source {
	return &Astor{
		Base:    sources.NewBase(AstorID, AstorName, sources.TypeCinema, env.Enabled(AstorID), 0),
		fetcher: env.Fetcher,
	}
}

// apiID tolerates ids sent as numbers or strings.
type apiID string

func (id *apiID) UnmarshalJSON(b []byte) error {
	s := string(bytes.TrimSpace(b))
	if s == "null" {
		s = ""
	}
	*id = apiID(strings.Trim(s, `"`))
	return nil
}

type astorProgram struct {
	Genres []struct {
		ID   apiID  `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
	Movies       []astorMovie       `json:"movies"`
	Performances []astorPerformance `json:"performances"`
}

type astorMovie struct {
	ID       apiID   `json:"id"`
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	Minutes  int     `json:"minutes"`
	Rating   int     `json:"rating"`
	Year     int     `json:"year"`
	Country  string  `json:"country"`
	GenreIDs []apiID `json:"genreIds"`
	Poster   *struct {
		Src string `json:"src"`
	} `json:"poster"`
	Translations []struct {
		Language  string `json:"language"`
		DescShort string `json:"descShort"`
		DescLong  string `json:"descLong"`
	} `json:"translations"`
	Trailers []struct {
		URL720  string `json:"url720"`
		URL1080 string `json:"url1080"`
	} `json:"trailers"`
	Casts []struct {
		Function string `json:"function"`
		Name     string `json:"name"`
	} `json:"casts"`
}

type astorPerformance struct {
	MovieID  apiID  `json:"movieId"`
	Language string `json:"language"`
	Begin    string `json:"begin"`
}

func (a *Astor) Fetch(ctx context.Context) ([]models.Event, error) {
	logging.Ctx(ctx).Info().Str("source", a.ID()).Msg("Fetching movies")

	header := http.Header{}
	header.Set("Accept", "application/json, text/plain, */*")
	header.Set("Content-Type", "application/json; charset=utf-8")
	header.Set("Referer", astorHomepage)

	var program astorProgram
	if err := sources.FetchJSON(ctx, a.fetcher, AstorAPIURL, header, &program); err != nil {
		return nil, err
	}

	events := a.parse(ctx, &program)
	logging.Ctx(ctx).Info().Str("source", a.ID()).Int("events", len(events)).Msg("Found OV showtimes")
	return events, nil
}

func (a *Astor) parse(ctx context.Context, program *astorProgram) []models.Event {
	genres := make(map[apiID]string, len(program.Genres))
	for _, g := range program.Genres {
		genres[g.ID] = g.Name
	}
	movies := make(map[apiID]*astorMovie, len(program.Movies))
	for i := range program.Movies {
		movies[program.Movies[i].ID] = &program.Movies[i]
	}

	events := make([]models.Event, 0, len(program.Performances))
	for _, perf := range program.Performances {
		movie, ok := movies[perf.MovieID]
		if !ok {
			a.SkipRecord(ctx, "unknown movie", nil)
			continue
		}
		if !sources.IsOriginalVersion(perf.Language) {
			continue
		}
		begin, ok := dates.ParseISOOffset(perf.Begin)
		if !ok {
			a.SkipRecord(ctx, "unparseable begin", nil)
			continue
		}

		title := movie.Name
		if title == "" {
			title = "Unknown"
		}
		ticketURL := astorHomepage
		if movie.Slug != "" {
			ticketURL = astorTicketBase + movie.Slug
		}

		ev, err := models.NewEvent(title, begin, a.Name(), ticketURL, models.CategoryMovie, movieMetadata(movie, perf, genres))
		if err != nil {
			a.SkipRecord(ctx, "invalid event", err)
			continue
		}
		events = append(events, ev)
	}
	return events
}

func movieMetadata(movie *astorMovie, perf astorPerformance, genres map[apiID]string) models.Metadata {
	genreNames := make([]string, 0, len(movie.GenreIDs))
	for _, id := range movie.GenreIDs {
		if name := genres[id]; name != "" {
			genreNames = append(genreNames, name)
		}
	}
	cast := make([]models.CastMember, 0, len(movie.Casts))
	for _, c := range movie.Casts {
		cast = append(cast, models.CastMember{Function: c.Function, Name: c.Name})
	}
	poster := ""
	if movie.Poster != nil {
		poster = movie.Poster.Src
	}

	return models.Metadata{
		models.MetaDuration:   movie.Minutes,
		models.MetaRating:     movie.Rating,
		models.MetaYear:       movie.Year,
		models.MetaCountry:    movie.Country,
		models.MetaGenres:     genreNames,
		models.MetaLanguage:   perf.Language,
		models.MetaPosterURL:  poster,
		models.MetaSynopsis:   synopsis(movie),
		models.MetaTrailerURL: trailerURL(movie),
		models.MetaCastKey:    cast,
		models.MetaMovieID:    string(movie.ID),
	}
}

// synopsis prefers the German translation and falls back to the first one.
func synopsis(movie *astorMovie) string {
	if len(movie.Translations) == 0 {
		return ""
	}
	pick := movie.Translations[0]
	for _, tr := range movie.Translations {
		if tr.Language == "de" {
			pick = tr
			break
		}
	}
	if pick.DescShort != "" {
		return pick.DescShort
	}
	return pick.DescLong
}

func trailerURL(movie *astorMovie) string {
	for _, tr := range movie.Trailers {
		if tr.URL720 != "" {
			return tr.URL720
		}
		if tr.URL1080 != "" {
			return tr.URL1080
		}
	}
	return ""
}
