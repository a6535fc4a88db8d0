// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

// Package scheduler parses the 5-field cron expressions used for the weekly
// digest schedule.
package scheduler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrNoMatch is returned by Next when no time within the search horizon
// satisfies the schedule (for example "0 0 31 2 *").
var ErrNoMatch = errors.New("schedule never fires")

// searchYears bounds the lookahead of Next.
const searchYears = 5

// field is a bitset of allowed values; bit n set means value n matches.
type field uint64

func (f field) has(v int) bool { return f&(1<<uint(v)) != 0 }

type bounds struct {
	name     string
	min, max int
}

var (
	minuteBounds = bounds{"minute", 0, 59}
	hourBounds   = bounds{"hour", 0, 23}
	domBounds    = bounds{"day-of-month", 1, 31}
	monthBounds  = bounds{"month", 1, 12}
	dowBounds    = bounds{"day-of-week", 0, 7}
)

// Schedule is a parsed cron expression:
//
//	minute hour day-of-month month day-of-week
//
// Day-of-week 7 is folded into 0 (Sunday). When both day fields are
// restricted, a day matches if either does.
type Schedule struct {
	expr    string
	minute  field
	hour    field
	dom     field
	month   field
	dow     field
	domStar bool
	dowStar bool
}

// ParseCron parses expr. Each field accepts *, n, n-m, comma lists, */s
// and n-m/s.
//
//	"0 9 * * 1"     Monday 09:00
//	"30 8 * * 1-5"  weekdays 08:30
//	"0 */6 * * *"   every six hours
func ParseCron(expr string) (*Schedule, error) {
	parts := strings.Fields(expr)
	if len(parts) != 5 {
		return nil, fmt.Errorf("cron expression must have 5 fields, got %d", len(parts))
	}

	s := &Schedule{expr: strings.Join(parts, " ")}
	targets := []struct {
		dst *field
		b   bounds
	}{
		{&s.minute, minuteBounds},
		{&s.hour, hourBounds},
		{&s.dom, domBounds},
		{&s.month, monthBounds},
		{&s.dow, dowBounds},
	}
	for i, t := range targets {
		f, err := parseField(parts[i], t.b)
		if err != nil {
			return nil, fmt.Errorf("invalid %s field %q: %w", t.b.name, parts[i], err)
		}
		*t.dst = f
	}

	if s.dow.has(7) {
		s.dow = (s.dow &^ (1 << 7)) | 1
	}
	s.domStar = parts[2] == "*"
	s.dowStar = parts[4] == "*"
	return s, nil
}

// String returns the normalized expression.
func (s *Schedule) String() string { return s.expr }

// Next returns the first minute strictly after t, evaluated as wall-clock
// time in loc. A nil loc means t.Location().
func (s *Schedule) Next(t time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = t.Location()
	}
	t = t.In(loc)
	t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute()+1, 0, 0, loc)
	limit := t.AddDate(searchYears, 0, 0)

	for t.Before(limit) {
		if !s.month.has(int(t.Month())) {
			t = time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, loc)
			continue
		}
		if !s.dayMatches(t) {
			t = time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, loc)
			continue
		}
		if !s.hour.has(t.Hour()) {
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour()+1, 0, 0, 0, loc)
			continue
		}
		if !s.minute.has(t.Minute()) {
			t = t.Add(time.Minute)
			continue
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %s", ErrNoMatch, s.expr)
}

func (s *Schedule) dayMatches(t time.Time) bool {
	dom := s.dom.has(t.Day())
	dow := s.dow.has(int(t.Weekday()))
	switch {
	case s.domStar && s.dowStar:
		return true
	case s.domStar:
		return dow
	case s.dowStar:
		return dom
	default:
		return dom || dow
	}
}

// NextRun parses expr and returns its next fire time after t in the named
// zone. An empty zone means UTC.
func NextRun(expr, zone string, t time.Time) (time.Time, error) {
	s, err := ParseCron(expr)
	if err != nil {
		return time.Time{}, err
	}
	loc := time.UTC
	if zone != "" {
		if loc, err = time.LoadLocation(zone); err != nil {
			return time.Time{}, fmt.Errorf("invalid timezone %q: %w", zone, err)
		}
	}
	return s.Next(t, loc)
}

func parseField(spec string, b bounds) (field, error) {
	var f field
	for _, part := range strings.Split(spec, ",") {
		pf, err := parseTerm(part, b)
		if err != nil {
			return 0, err
		}
		f |= pf
	}
	return f, nil
}

// parseTerm handles one comma-separated element: *, n, n-m, with optional /step.
func parseTerm(term string, b bounds) (field, error) {
	if term == "" {
		return 0, errors.New("empty value")
	}

	rangePart, stepPart, hasStep := strings.Cut(term, "/")
	step := 1
	if hasStep {
		n, err := strconv.Atoi(stepPart)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid step %q", stepPart)
		}
		step = n
	}

	lo, hi := b.min, b.max
	switch {
	case rangePart == "*":
	case strings.Contains(rangePart, "-"):
		from, to, _ := strings.Cut(rangePart, "-")
		var err error
		if lo, err = atoiIn(from, b); err != nil {
			return 0, err
		}
		if hi, err = atoiIn(to, b); err != nil {
			return 0, err
		}
		if lo > hi {
			return 0, fmt.Errorf("range %d-%d is reversed", lo, hi)
		}
	default:
		v, err := atoiIn(rangePart, b)
		if err != nil {
			return 0, err
		}
		lo = v
		if !hasStep {
			hi = v
		}
	}

	var f field
	for v := lo; v <= hi; v += step {
		f |= 1 << uint(v)
	}
	return f, nil
}

func atoiIn(s string, b bounds) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	if v < b.min || v > b.max {
		return 0, fmt.Errorf("%d out of range %d-%d", v, b.min, b.max)
	}
	return v, nil
}
