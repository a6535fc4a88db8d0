// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

// Package sourcestest provides fixture-backed fetchers and stub sources for
// tests of packages that sit on top of sources.
package sourcestest

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/tomtom215/kinoweek/internal/models"
	"github.com/tomtom215/kinoweek/internal/sources"
)

// StaticFetcher serves canned bodies keyed by URL. Unknown URLs yield a 404
// *sources.HTTPStatusError.
type StaticFetcher struct {
	mu      sync.Mutex
	Bodies  map[string][]byte
	Headers map[string]http.Header
	Calls   []string
}

// NewStaticFetcher returns a fetcher serving bodies.
func NewStaticFetcher(bodies map[string]string) *StaticFetcher {
	f := &StaticFetcher{Bodies: make(map[string][]byte, len(bodies)), Headers: make(map[string]http.Header)}
	for k, v := range bodies {
		f.Bodies[k] = []byte(v)
	}
	return f
}

func (f *StaticFetcher) Get(_ context.Context, rawURL string, header http.Header) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, rawURL)
	f.Headers[rawURL] = header.Clone()
	body, ok := f.Bodies[rawURL]
	if !ok {
		return nil, &sources.HTTPStatusError{URL: rawURL, StatusCode: http.StatusNotFound}
	}
	return body, nil
}

// StubSource returns fixed events or a fixed error.
type StubSource struct {
	sources.Base
	Events []models.Event
	Err    error
	Panic  bool

	mu    sync.Mutex
	calls int
}

// NewStub builds an enabled stub source named name.
func NewStub(name string, events []models.Event, err error) *StubSource {
	return &StubSource{
		Base:   sources.NewBase(name, name, sources.TypeConcert, true, 0),
		Events: events,
		Err:    err,
	}
}

// Disabled returns a copy of s that reports Enabled() == false.
func (s *StubSource) Disabled() *StubSource {
	return &StubSource{
		Base:   sources.NewBase(s.ID(), s.Name(), s.Type(), false, 0),
		Events: s.Events,
		Err:    s.Err,
	}
}

func (s *StubSource) Fetch(context.Context) ([]models.Event, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.Panic {
		panic(fmt.Sprintf("stub %s panicked", s.Name()))
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Events, nil
}

// Calls reports how often Fetch ran.
func (s *StubSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Factory wraps s so it can be registered; every run receives the same instance.
func (s *StubSource) Factory() sources.Factory {
	return func(sources.Env) sources.Source { return s }
}
