// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

// Package export writes the weekly data in machine- and human-readable
// formats next to the Telegram digest.
//
// Files written to the output directory:
//
//	movies.csv             one row per showing
//	movies_grouped.csv     one row per film
//	concerts.csv           radar events
//	events.json            everything, with film grouping and run metadata
//	weekly_digest.md       Markdown digest
//	archive/YYYY-Www.json  snapshot of the week
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/kinoweek/internal/grouping"
	"github.com/tomtom215/kinoweek/internal/logging"
	"github.com/tomtom215/kinoweek/internal/metrics"
	"github.com/tomtom215/kinoweek/internal/models"
)

// Format names, also the keys of the map returned by ExportAll.
const (
	FormatMoviesCSV        = "movies_csv"
	FormatMoviesGroupedCSV = "movies_grouped_csv"
	FormatConcertsCSV      = "concerts_csv"
	FormatJSON             = "json"
	FormatMarkdown         = "markdown"
	FormatArchive          = "archive"
)

// AllFormats lists every format in write order.
var AllFormats = []string{
	FormatMoviesCSV,
	FormatMoviesGroupedCSV,
	FormatConcertsCSV,
	FormatJSON,
	FormatMarkdown,
	FormatArchive,
}

// ErrUnknownFormat is returned by NewManager for a format it cannot write.
var ErrUnknownFormat = errors.New("unknown export format")

// Manager writes the selected formats into one directory.
type Manager struct {
	dir     string
	formats []string
	sources []string
}

// Option configures a Manager.
type Option func(*Manager)

// WithSources sets the source names listed in events.json and the Markdown
// footer.
func WithSources(names []string) Option {
	return func(m *Manager) { m.sources = slices.Clone(names) }
}

// NewManager returns a Manager for dir. An empty formats list selects all.
func NewManager(dir string, formats []string, opts ...Option) (*Manager, error) {
	if dir == "" {
		return nil, errors.New("export directory is required")
	}
	selected := AllFormats
	if len(formats) > 0 {
		selected = make([]string, 0, len(formats))
		for _, f := range formats {
			f = strings.TrimSpace(f)
			if !slices.Contains(AllFormats, f) {
				return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
			}
			if !slices.Contains(selected, f) {
				selected = append(selected, f)
			}
		}
	}
	m := &Manager{dir: dir, formats: selected}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Dir returns the output directory.
func (m *Manager) Dir() string { return m.dir }

// Formats returns the selected formats in write order.
func (m *Manager) Formats() []string { return slices.Clone(m.formats) }

// weekData is everything one export pass needs.
type weekData struct {
	Week     int
	Year     int
	Now      time.Time
	Movies   []models.Event
	Concerts []models.Event
	Films    []models.GroupedFilm
	Sources  []string
}

// ExportAll writes every selected format and returns the paths written, keyed
// by format. A failing format does not stop the others; their errors are
// joined.
func (m *Manager) ExportAll(ctx context.Context, movies, concerts []models.Event, now time.Time) (map[string]string, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	year, week := now.ISOWeek()
	data := weekData{
		Week:     week,
		Year:     year,
		Now:      now,
		Movies:   movies,
		Concerts: concerts,
		Films:    grouping.GroupMoviesByFilm(movies),
		Sources:  m.sources,
	}

	writers := map[string]func(weekData) (string, error){
		FormatMoviesCSV:        m.writeMoviesCSV,
		FormatMoviesGroupedCSV: m.writeMoviesGroupedCSV,
		FormatConcertsCSV:      m.writeConcertsCSV,
		FormatJSON:             m.writeEnhancedJSON,
		FormatMarkdown:         m.writeMarkdown,
		FormatArchive:          m.writeArchive,
	}

	log := logging.Ctx(ctx)
	paths := make(map[string]string, len(m.formats))
	var errs []error
	for _, format := range m.formats {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		path, err := writers[format](data)
		if err != nil {
			log.Warn().Err(err).Str("format", format).Msg("Export failed")
			errs = append(errs, fmt.Errorf("%s: %w", format, err))
			continue
		}
		metrics.ExportFiles.WithLabelValues(format).Inc()
		paths[format] = path
		log.Debug().Str("format", format).Str("path", path).Msg("Exported")
	}

	log.Info().
		Int("movies", len(movies)).
		Int("films", len(data.Films)).
		Int("concerts", len(concerts)).
		Int("files", len(paths)).
		Str("dir", m.dir).
		Msg("Export complete")
	return paths, errors.Join(errs...)
}

func (m *Manager) writeArchive(d weekData) (string, error) {
	dir := filepath.Join(m.dir, "archive")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	snap := models.NewWeeklySnapshot(d.Movies, d.Concerts, d.Now)
	path := filepath.Join(dir, snap.Label()+".json")
	return path, writeJSON(path, snap)
}

// writeJSON writes v indented, without HTML escaping.
func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// cut keeps the first n characters of s and appends "..." when it cut.
func cut(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
