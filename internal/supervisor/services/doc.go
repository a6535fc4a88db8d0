// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

/*
Package services adapts the daemon's long-running parts to suture.Service.

	type Service interface {
	    Serve(ctx context.Context) error
	}

DigestService waits for the next cron fire time and runs the digest.
A failed run is logged and the loop continues with the next scheduled time;
Serve only returns when the context is canceled or the schedule can never
fire again.

HTTPService runs an *http.Server and shuts it down gracefully when the
context is canceled. A bind failure is returned so suture restarts it with
backoff.
*/
package services
