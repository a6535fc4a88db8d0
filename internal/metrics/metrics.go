// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

// Package metrics declares the Prometheus instruments for digest runs. In
// one-shot mode they are only logged in the run summary; the daemon exposes
// them on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Source metrics
	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kinoweek_source_fetch_duration_seconds",
			Help:    "Duration of one source fetch in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"source"},
	)

	SourceFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinoweek_source_fetch_errors_total",
			Help: "Source fetches that failed and contributed no events",
		},
		[]string{"source", "reason"}, // reason: http_status, circuit_open, transport, panic
	)

	SourceEventsFetched = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kinoweek_source_events",
			Help: "Events returned by each source in the latest run",
		},
		[]string{"source"},
	)

	SourceRecordsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinoweek_source_records_skipped_total",
			Help: "Records dropped by a source because they could not be parsed",
		},
		[]string{"source"},
	)

	AggregatedEvents = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kinoweek_aggregated_events",
			Help: "Events per bucket after the latest aggregation",
		},
		[]string{"bucket"}, // movies_this_week, big_events_radar
	)

	// Outbound HTTP
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinoweek_http_requests_total",
			Help: "Outbound HTTP requests by host and status code",
		},
		[]string{"host", "status"},
	)

	// Circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kinoweek_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinoweek_circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinoweek_circuit_breaker_state_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Delivery and export
	DeliveryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinoweek_delivery_attempts_total",
			Help: "Digest delivery attempts by channel and result",
		},
		[]string{"channel", "result"},
	)

	ExportFiles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinoweek_export_files_total",
			Help: "Files written by the exporter",
		},
		[]string{"format"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinoweek_eventbus_published_total",
			Help: "Events published to the event bus",
		},
		[]string{"topic", "result"},
	)

	// Runs
	DigestRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinoweek_digest_runs_total",
			Help: "Completed digest runs by result",
		},
		[]string{"result"},
	)

	DigestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kinoweek_digest_duration_seconds",
			Help:    "End-to-end duration of a digest run",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		},
	)

	// HTTP API (daemon mode)
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinoweek_api_requests_total",
			Help: "HTTP API requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kinoweek_api_request_duration_seconds",
			Help:    "HTTP API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kinoweek_api_active_requests",
			Help: "HTTP API requests currently being served",
		},
	)

	LastDigestTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kinoweek_last_digest_timestamp_seconds",
			Help: "Unix time of the last successful digest run",
		},
	)
)

// RecordSourceFetch records one source fetch. reason is ignored when err is nil.
func RecordSourceFetch(source string, duration time.Duration, events int, err error, reason string) {
	SourceFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
	if err != nil {
		SourceFetchErrors.WithLabelValues(source, reason).Inc()
		SourceEventsFetched.WithLabelValues(source).Set(0)
		return
	}
	SourceEventsFetched.WithLabelValues(source).Set(float64(events))
}

// RecordHTTPRequest counts one outbound request; status 0 means no response.
func RecordHTTPRequest(host string, status int) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	HTTPRequests.WithLabelValues(host, label).Inc()
}

// RecordDigestRun records the outcome of a digest run.
func RecordDigestRun(duration time.Duration, err error) {
	DigestDuration.Observe(duration.Seconds())
	if err != nil {
		DigestRuns.WithLabelValues("failure").Inc()
		return
	}
	DigestRuns.WithLabelValues("success").Inc()
	LastDigestTimestamp.Set(float64(time.Now().Unix()))
}

// RecordAPIRequest records one served API request. route is the matched
// route pattern, never the raw path.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight API request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}
