// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

package sources

import "strings"

// IsOriginalVersion reports whether a cinema language label such as
// "Sprache: Englisch, Untertitel: Deutsch" describes an original-version
// showing. A German label counts only when subtitles are listed (a foreign
// film with German subtitles); any other language always counts; an empty
// label never does.
func IsOriginalVersion(label string) bool {
	if label == "" {
		return false
	}
	if strings.Contains(label, "Deutsch") {
		return strings.Contains(label, "Untertitel")
	}
	return true
}
