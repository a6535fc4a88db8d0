// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestRecordSourceFetch(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		events     int
		err        error
		wantEvents float64
		wantErrInc float64
	}{
		{"success", "metrics_test_ok", 12, nil, 12, 0},
		{"failure resets gauge", "metrics_test_fail", 5, errors.New("boom"), 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(SourceFetchErrors.WithLabelValues(tt.source, "transport"))
			RecordSourceFetch(tt.source, 150*time.Millisecond, tt.events, tt.err, "transport")

			if got := testutil.ToFloat64(SourceEventsFetched.WithLabelValues(tt.source)); got != tt.wantEvents {
				t.Errorf("events gauge = %v, want %v", got, tt.wantEvents)
			}
			after := testutil.ToFloat64(SourceFetchErrors.WithLabelValues(tt.source, "transport"))
			if after-before != tt.wantErrInc {
				t.Errorf("error counter delta = %v, want %v", after-before, tt.wantErrInc)
			}
		})
	}
}

func TestRecordHTTPRequestLabels(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("metrics.test", "error"))
	RecordHTTPRequest("metrics.test", 0)
	RecordHTTPRequest("metrics.test", 200)

	if got := testutil.ToFloat64(HTTPRequests.WithLabelValues("metrics.test", "error")) - before; got != 1 {
		t.Errorf("error label delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(HTTPRequests.WithLabelValues("metrics.test", "200")); got < 1 {
		t.Errorf("200 label = %v, want >= 1", got)
	}
}

func TestRecordDigestRunSetsTimestamp(t *testing.T) {
	RecordDigestRun(2*time.Second, nil)

	var m dto.Metric
	if err := LastDigestTimestamp.Write(&m); err != nil {
		t.Fatal(err)
	}
	if m.GetGauge().GetValue() <= 0 {
		t.Errorf("last digest timestamp = %v, want > 0", m.GetGauge().GetValue())
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequests.WithLabelValues("GET", "/api/v1/events", "404"))
	RecordAPIRequest("GET", "/api/v1/events", 404, 3*time.Millisecond)
	if got := testutil.ToFloat64(APIRequests.WithLabelValues("GET", "/api/v1/events", "404")) - before; got != 1 {
		t.Errorf("request counter delta = %v, want 1", got)
	}

	active := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != active+1 {
		t.Errorf("active = %v, want %v", got, active+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != active {
		t.Errorf("active = %v, want %v", got, active)
	}
}
