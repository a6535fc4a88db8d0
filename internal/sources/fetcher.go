// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/kinoweek/internal/logging"
	"github.com/tomtom215/kinoweek/internal/metrics"
)

// DefaultUserAgent is sent with every venue request unless configured otherwise.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const maxBodyBytes = 10 << 20

var (
	// ErrHTTPStatus is wrapped by *HTTPStatusError.
	ErrHTTPStatus = errors.New("unexpected HTTP status")

	// ErrCircuitOpen is returned while a host's breaker rejects requests.
	ErrCircuitOpen = errors.New("circuit breaker open")
)

// HTTPStatusError reports a non-2xx response.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
}

func (e *HTTPStatusError) Unwrap() error {
	return ErrHTTPStatus
}

// Fetcher retrieves a URL body. Sources depend on this interface so tests can
// serve fixtures without a network.
type Fetcher interface {
	Get(ctx context.Context, rawURL string, header http.Header) ([]byte, error)
}

// HTTPConfig tunes HTTPFetcher.
type HTTPConfig struct {
	UserAgent string
	Timeout   time.Duration

	// RatePerSecond paces requests per host; 0 disables pacing.
	RatePerSecond float64
	Burst         int

	Breaker BreakerConfig
}

// BreakerConfig tunes the per-host circuit breaker.
type BreakerConfig struct {
	Enabled      bool
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
}

// DefaultHTTPConfig returns the settings used when nothing is configured.
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		UserAgent:     DefaultUserAgent,
		Timeout:       30 * time.Second,
		RatePerSecond: 2,
		Burst:         2,
		Breaker: BreakerConfig{
			Enabled:      true,
			MaxRequests:  1,
			Interval:     time.Hour,
			Timeout:      10 * time.Minute,
			FailureRatio: 0.6,
			MinRequests:  3,
		},
	}
}

// HTTPFetcher issues GET requests with a fixed User-Agent and a bounded
// timeout. Each host gets its own rate limiter and circuit breaker so one
// failing venue cannot slow down or trip the others. It never retries.
type HTTPFetcher struct {
	client *http.Client
	cfg    HTTPConfig

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	breakers map[string]*gobreaker.CircuitBreaker[[]byte]
}

// NewHTTPFetcher builds a fetcher. Zero fields of cfg fall back to
// DefaultHTTPConfig.
func NewHTTPFetcher(cfg HTTPConfig) *HTTPFetcher {
	def := DefaultHTTPConfig()
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	return &HTTPFetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		cfg:      cfg,
		limiters: make(map[string]*rate.Limiter),
		breakers: make(map[string]*gobreaker.CircuitBreaker[[]byte]),
	}
}

// Get fetches rawURL and returns its body. header entries are added to the
// request; User-Agent is always set.
func (f *HTTPFetcher) Get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	host := u.Host

	if lim := f.limiter(host); lim != nil {
		if err := lim.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait for %s: %w", host, err)
		}
	}

	cb := f.breaker(host)
	if cb == nil {
		return f.do(ctx, rawURL, host, header)
	}

	body, err := cb.Execute(func() ([]byte, error) {
		return f.do(ctx, rawURL, host, header)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(host, "rejected").Inc()
		return nil, fmt.Errorf("%w for %s: %w", ErrCircuitOpen, host, err)
	case err != nil:
		metrics.CircuitBreakerRequests.WithLabelValues(host, "failure").Inc()
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(host, "success").Inc()
	return body, nil
}

func (f *HTTPFetcher) do(ctx context.Context, rawURL, host string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		metrics.RecordHTTPRequest(host, 0)
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	metrics.RecordHTTPRequest(host, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &HTTPStatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", rawURL, err)
	}
	return body, nil
}

func (f *HTTPFetcher) limiter(host string) *rate.Limiter {
	if f.cfg.RatePerSecond <= 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.limiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(f.cfg.RatePerSecond), f.cfg.Burst)
		f.limiters[host] = lim
	}
	return lim
}

func (f *HTTPFetcher) breaker(host string) *gobreaker.CircuitBreaker[[]byte] {
	bc := f.cfg.Breaker
	if !bc.Enabled {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if cb, ok := f.breakers[host]; ok {
		return cb
	}

	metrics.CircuitBreakerState.WithLabelValues(host).Set(0)
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        host,
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < bc.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= bc.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("host", name).Str("from", stateName(from)).Str("to", stateName(to)).
				Msg("Circuit breaker state changed")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateName(from), stateName(to)).Inc()
		},
	})
	f.breakers[host] = cb
	return cb
}

// BreakerState reports the breaker state for host, or "" when none exists.
func (f *HTTPFetcher) BreakerState(host string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cb, ok := f.breakers[host]; ok {
		return stateName(cb.State())
	}
	return ""
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateName(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// FetchDocument fetches rawURL and parses it as HTML.
func FetchDocument(ctx context.Context, f Fetcher, rawURL string) (*goquery.Document, error) {
	body, err := f.Get(ctx, rawURL, nil)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html from %s: %w", rawURL, err)
	}
	return doc, nil
}

// FetchJSON fetches rawURL and decodes the body into v.
func FetchJSON(ctx context.Context, f Fetcher, rawURL string, header http.Header, v any) error {
	body, err := f.Get(ctx, rawURL, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode json from %s: %w", rawURL, err)
	}
	return nil
}
