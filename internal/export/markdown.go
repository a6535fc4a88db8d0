// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/tomtom215/kinoweek/internal/formatting"
	"github.com/tomtom215/kinoweek/internal/models"
)

// digestTemplate renders weekly_digest.md. Blank lines are significant.
const digestTemplate = `# Hannover Week {{.Week}} ({{.Year}})

*Generated: {{.Now.Format "2006-01-02 15:04"}}*

---

## Movies (Original Version)

**{{len .Films}} films** with **{{showtimeCount .Films}} showtimes** this week

{{range .Films}}### {{.Title}} ({{.Year}})

{{with filmMeta .}}*{{.}}*

{{end}}{{with .Synopsis}}> {{truncate . 300}}

{{end}}| Date | Time | Language |
|------|------|----------|
{{range .Showtimes}}| {{.Date}} | {{.Time}} | {{.Language}} |
{{end}}
{{if .PosterURL}}[Poster]({{.PosterURL}}) | {{end}}[Tickets]({{.TicketURL}})

---

{{end}}## On The Radar

**{{len .Concerts}} upcoming events**

| Date | Artist | Venue | Status |
|------|--------|-------|--------|
{{range .Concerts}}| {{.Date.Format "2006-01-02"}} {{.MetaStringOr "time" "20:00"}} | [{{.Title}}]({{.URL}}) | {{.Venue}} | {{status .}} |
{{end}}
---

*Data sourced from {{join .Sources ", "}}*`

var digestTmpl = template.Must(template.New("weekly_digest").Funcs(template.FuncMap{
	"truncate": cut,
	"join":     strings.Join,
	"filmMeta": filmMeta,
	"status":   concertStatus,
	"showtimeCount": func(films []models.GroupedFilm) int {
		n := 0
		for _, f := range films {
			n += len(f.Showtimes)
		}
		return n
	},
}).Parse(digestTemplate))

func (m *Manager) writeMarkdown(d weekData) (string, error) {
	body, err := RenderMarkdown(d.Films, d.Concerts, d.Sources, d.Now)
	if err != nil {
		return "", err
	}
	path := filepath.Join(m.dir, "weekly_digest.md")
	return path, os.WriteFile(path, body, 0o644)
}

// RenderMarkdown renders the Markdown digest for the ISO week of now.
func RenderMarkdown(films []models.GroupedFilm, concerts []models.Event, sources []string, now time.Time) ([]byte, error) {
	year, week := now.ISOWeek()
	var buf bytes.Buffer
	err := digestTmpl.Execute(&buf, weekData{
		Week:     week,
		Year:     year,
		Now:      now,
		Concerts: concerts,
		Films:    films,
		Sources:  sources,
	})
	if err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// filmMeta joins duration, rating, country and genres with " | ".
func filmMeta(f models.GroupedFilm) string {
	var parts []string
	if d := formatting.FormatDuration(f.DurationMin); d != "" {
		parts = append(parts, d)
	}
	if f.Rating > 0 {
		parts = append(parts, "FSK"+strconv.Itoa(f.Rating))
	}
	if f.Country != "" {
		parts = append(parts, f.Country)
	}
	if len(f.Genres) > 0 {
		parts = append(parts, strings.Join(f.Genres, ", "))
	}
	return strings.Join(parts, " | ")
}

func concertStatus(ev models.Event) string {
	if ev.MetaStringOr(models.MetaStatus, "available") == "available" {
		return "Available"
	}
	return "Sold Out"
}
