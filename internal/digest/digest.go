// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

// Package digest runs one complete weekly digest: aggregate, export,
// archive, format, deliver and publish.
//
// Only aggregation and delivery decide whether a run succeeded. Export,
// archive and publish failures are logged and recorded in the Report but do
// not fail the run.
package digest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/kinoweek/internal/aggregator"
	"github.com/tomtom215/kinoweek/internal/delivery"
	"github.com/tomtom215/kinoweek/internal/formatting"
	"github.com/tomtom215/kinoweek/internal/grouping"
	"github.com/tomtom215/kinoweek/internal/logging"
	"github.com/tomtom215/kinoweek/internal/metrics"
	"github.com/tomtom215/kinoweek/internal/models"
)

// ErrDeliveryFailed wraps the channel error of a failed delivery.
var ErrDeliveryFailed = errors.New("digest delivery failed")

// ErrRunInProgress is returned when Run is called while another run is active.
var ErrRunInProgress = errors.New("digest run already in progress")

// Status is the outcome of a run.
type Status string

const (
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
)

// Fetcher produces the categorized events for a run.
type Fetcher interface {
	FetchAll(ctx context.Context) (models.CategorizedResult, []aggregator.SourceReport)
}

// Exporter writes the export files.
type Exporter interface {
	ExportAll(ctx context.Context, movies, concerts []models.Event, now time.Time) (map[string]string, error)
}

// Archiver stores weekly snapshots.
type Archiver interface {
	Put(ctx context.Context, snap models.WeeklySnapshot) error
}

// Publisher forwards the run's events to the event bus.
type Publisher interface {
	PublishResult(ctx context.Context, result models.CategorizedResult) (int, error)
}

// Report describes one run.
type Report struct {
	RunID      string                    `json:"run_id"`
	Status     Status                    `json:"status"`
	DryRun     bool                      `json:"dry_run"`
	StartedAt  time.Time                 `json:"started_at"`
	FinishedAt time.Time                 `json:"finished_at"`
	Result     models.CategorizedResult  `json:"-"`
	Films      []models.GroupedFilm      `json:"-"`
	Sources    []aggregator.SourceReport `json:"sources"`
	Exports    map[string]string         `json:"exports,omitempty"`
	ArchiveKey string                    `json:"archive_key,omitempty"`
	Delivery   *delivery.Result          `json:"delivery,omitempty"`
	Published  int                       `json:"published"`
	Warnings   []string                  `json:"warnings,omitempty"`
	Error      string                    `json:"error,omitempty"`
}

// Duration is the wall time of the run.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r *Report) warn(ctx context.Context, step string, err error) {
	logging.Ctx(ctx).Warn().Err(err).Str("step", step).Msg("Digest step failed")
	r.Warnings = append(r.Warnings, fmt.Sprintf("%s: %v", step, err))
}

// Runner executes digest runs. It is safe for concurrent use; overlapping
// calls to Run are rejected with ErrRunInProgress.
type Runner struct {
	fetcher   Fetcher
	channel   delivery.Channel
	exporter  Exporter
	archive   Archiver
	publisher Publisher
	backupDir string
	dryRun    bool
	now       func() time.Time

	running sync.Mutex

	mu     sync.RWMutex
	last   *Report
	lastOK *Report
}

// Option configures a Runner.
type Option func(*Runner)

// WithExporter enables the export step.
func WithExporter(e Exporter) Option {
	return func(r *Runner) { r.exporter = e }
}

// WithArchive enables the snapshot step.
func WithArchive(a Archiver) Option {
	return func(r *Runner) { r.archive = a }
}

// WithPublisher enables the event bus step.
func WithPublisher(p Publisher) Option {
	return func(r *Runner) { r.publisher = p }
}

// WithBackupDir stores a copy of every live delivery in dir.
func WithBackupDir(dir string) Option {
	return func(r *Runner) { r.backupDir = dir }
}

// WithDryRun marks runs as dry runs in reports and skips the backup.
func WithDryRun(dryRun bool) Option {
	return func(r *Runner) { r.dryRun = dryRun }
}

// WithClock replaces time.Now for the week label and timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner returns a Runner that delivers through ch.
func NewRunner(f Fetcher, ch delivery.Channel, opts ...Option) *Runner {
	r := &Runner{fetcher: f, channel: ch, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one digest. The returned Report is non-nil even on error.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if !r.running.TryLock() {
		return nil, ErrRunInProgress
	}
	defer r.running.Unlock()

	runID := logging.RunIDFromContext(ctx)
	if runID == "" {
		runID = logging.NewRunID()
		ctx = logging.ContextWithRunID(ctx, runID)
	}
	log := logging.Ctx(ctx)

	rep := &Report{RunID: runID, DryRun: r.dryRun, StartedAt: r.now()}
	log.Info().Bool("dry_run", r.dryRun).Str("channel", r.channel.Name()).Msg("Starting digest run")

	err := r.run(ctx, rep)

	rep.FinishedAt = r.now()
	rep.Status = StatusDelivered
	if err != nil {
		rep.Status = StatusFailed
		rep.Error = err.Error()
	}
	metrics.RecordDigestRun(rep.Duration(), err)
	r.store(rep)

	ev := log.Info()
	if err != nil {
		ev = log.Error().Err(err)
	}
	ev.Str("status", string(rep.Status)).
		Int("movies", len(rep.Result.MoviesThisWeek)).
		Int("radar", len(rep.Result.BigEventsRadar)).
		Int("warnings", len(rep.Warnings)).
		Dur("duration", rep.Duration()).
		Msg("Digest run finished")
	return rep, err
}

func (r *Runner) run(ctx context.Context, rep *Report) error {
	result, reports := r.fetcher.FetchAll(ctx)
	rep.Result = result
	rep.Sources = reports
	rep.Films = grouping.GroupMoviesByFilm(result.MoviesThisWeek)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("aggregation interrupted: %w", err)
	}

	now := result.GeneratedAt
	if now.IsZero() {
		now = rep.StartedAt
	}

	if r.exporter != nil {
		paths, err := r.exporter.ExportAll(ctx, result.MoviesThisWeek, result.BigEventsRadar, now)
		rep.Exports = paths
		if err != nil {
			rep.warn(ctx, "export", err)
		}
	}

	if r.archive != nil {
		snap := models.NewWeeklySnapshot(result.MoviesThisWeek, result.BigEventsRadar, now)
		if err := r.archive.Put(ctx, snap); err != nil {
			rep.warn(ctx, "archive", err)
		} else {
			rep.ArchiveKey = snap.Label()
		}
	}

	msg := &delivery.Message{Text: formatting.FormatMessage(result, now), Events: result}
	if err := r.deliver(ctx, rep, msg); err != nil {
		return err
	}

	if r.publisher != nil {
		n, err := r.publisher.PublishResult(ctx, result)
		rep.Published = n
		if err != nil {
			rep.warn(ctx, "publish", err)
		}
	}
	return nil
}

func (r *Runner) deliver(ctx context.Context, rep *Report, msg *delivery.Message) error {
	res, err := r.channel.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	rep.Delivery = res
	if !res.Success {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, res.Err())
	}

	if !r.dryRun && r.backupDir != "" {
		files, err := delivery.WriteBackup(ctx, r.backupDir, msg)
		if err != nil {
			rep.warn(ctx, "backup", err)
		} else {
			res.Files = append(res.Files, files...)
		}
	}
	return nil
}

func (r *Runner) store(rep *Report) {
	r.mu.Lock()
	r.last = rep
	if rep.Status == StatusDelivered {
		r.lastOK = rep
	}
	r.mu.Unlock()
}

// Last returns the most recent report, or false before the first run.
func (r *Runner) Last() (*Report, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last, r.last != nil
}

// LastSuccessful returns the most recent delivered report. A failed run
// does not replace it.
func (r *Runner) LastSuccessful() (*Report, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastOK, r.lastOK != nil
}
