// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/kinoweek/internal/digest"
	"github.com/tomtom215/kinoweek/internal/logging"
	"github.com/tomtom215/kinoweek/internal/scheduler"
)

// DigestRunner runs one digest. *digest.Runner satisfies it.
type DigestRunner interface {
	Run(ctx context.Context) (*digest.Report, error)
}

// DigestService runs the digest on a cron schedule.
type DigestService struct {
	runner     DigestRunner
	schedule   *scheduler.Schedule
	loc        *time.Location
	runOnStart bool

	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	mu      sync.RWMutex
	nextRun time.Time
	runs    int
}

// DigestOption configures a DigestService.
type DigestOption func(*DigestService)

// WithRunOnStart runs one digest immediately when the service starts, before
// waiting for the first scheduled time.
func WithRunOnStart(enabled bool) DigestOption {
	return func(s *DigestService) { s.runOnStart = enabled }
}

// WithTimeSource replaces time.Now and time.After.
func WithTimeSource(now func() time.Time, after func(time.Duration) <-chan time.Time) DigestOption {
	return func(s *DigestService) {
		s.now = now
		s.after = after
	}
}

// NewDigestService schedules runner on schedule, evaluated in loc.
func NewDigestService(runner DigestRunner, schedule *scheduler.Schedule, loc *time.Location, opts ...DigestOption) *DigestService {
	if loc == nil {
		loc = time.Local
	}
	s := &DigestService{
		runner:   runner,
		schedule: schedule,
		loc:      loc,
		now:      time.Now,
		after:    time.After,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve implements suture.Service.
func (s *DigestService) Serve(ctx context.Context) error {
	if s.runOnStart {
		s.runOnce(ctx)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		next, err := s.schedule.Next(s.now(), s.loc)
		if err != nil {
			return fmt.Errorf("%w: %w", suture.ErrDoNotRestart, err)
		}
		s.setNext(next)
		logging.Info().
			Str("schedule", s.schedule.String()).
			Time("next_run", next).
			Msg("Next digest run scheduled")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.after(next.Sub(s.now())):
		}
		s.runOnce(ctx)
	}
}

// runOnce never returns an error: a failed week is logged and the schedule
// continues.
func (s *DigestService) runOnce(ctx context.Context) {
	runID := logging.NewRunID()
	runCtx := logging.ContextWithRunID(ctx, runID)

	_, err := s.runner.Run(runCtx)
	s.mu.Lock()
	s.runs++
	s.mu.Unlock()

	switch {
	case err == nil:
	case errors.Is(err, digest.ErrRunInProgress):
		logging.Ctx(runCtx).Warn().Msg("Skipping scheduled digest, previous run still active")
	default:
		logging.Ctx(runCtx).Error().Err(err).Msg("Scheduled digest run failed")
	}
}

func (s *DigestService) setNext(t time.Time) {
	s.mu.Lock()
	s.nextRun = t
	s.mu.Unlock()
}

// NextRun returns the pending fire time, or the zero time before Serve
// computed one.
func (s *DigestService) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextRun
}

// Runs counts completed digest attempts.
func (s *DigestService) Runs() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runs
}

func (s *DigestService) String() string {
	return "digest-scheduler"
}
