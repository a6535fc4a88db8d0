// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/kinoweek/internal/metrics"
)

const payload = `{"success":true,"data":["2025-W46","2025-W47"]}`

func jsonHandler(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, payload)
	})
}

func TestCompression(t *testing.T) {
	tests := []struct {
		name           string
		acceptEncoding string
		method         string
		wantGzip       bool
	}{
		{"gzip accepted", "gzip, deflate", http.MethodGet, true},
		{"no encoding", "", http.MethodGet, false},
		{"only br", "br", http.MethodGet, false},
		{"head request", "gzip", http.MethodHead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/archive", nil)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			rec := httptest.NewRecorder()
			Compression(jsonHandler(http.StatusOK)).ServeHTTP(rec, req)

			gotGzip := rec.Header().Get("Content-Encoding") == "gzip"
			if gotGzip != tt.wantGzip {
				t.Fatalf("Content-Encoding gzip = %v, want %v", gotGzip, tt.wantGzip)
			}
			if rec.Header().Get("Vary") != "Accept-Encoding" {
				t.Errorf("Vary = %q", rec.Header().Get("Vary"))
			}
			if !tt.wantGzip {
				return
			}

			zr, err := gzip.NewReader(rec.Body)
			if err != nil {
				t.Fatalf("gzip.NewReader: %v", err)
			}
			body, err := io.ReadAll(zr)
			if err != nil {
				t.Fatalf("read gzip body: %v", err)
			}
			if string(body) != payload {
				t.Errorf("body = %q, want %q", body, payload)
			}
		})
	}
}

func TestCompressionKeepsStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	Compression(jsonHandler(http.StatusNotFound)).ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestPrometheusMetricsUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/api/v1/archive/{week}", jsonHandler(http.StatusOK).ServeHTTP)

	counter := func(route, status string) float64 {
		return testutil.ToFloat64(metrics.APIRequests.WithLabelValues(http.MethodGet, route, status))
	}
	beforeRoute := counter("/api/v1/archive/{week}", "200")
	beforeMiss := counter(unmatchedRoute, "404")

	for _, week := range []string{"2025-W46", "2025-W47"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/archive/"+week, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s = %d", week, rec.Code)
		}
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if got := counter("/api/v1/archive/{week}", "200") - beforeRoute; got != 2 {
		t.Errorf("route counter delta = %v, want 2", got)
	}
	if got := counter(unmatchedRoute, "404") - beforeMiss; got != 1 {
		t.Errorf("unmatched counter delta = %v, want 1", got)
	}
}
