// KinoWeek - Weekly Event Digest for Hannover
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinoweek

package dates

import (
	"strings"
	"time"
)

// germanMonths maps lower-cased month names to months. It covers German
// abbreviations, full names, English spellings that venue pages mix in, and
// the ASCII and mis-decoded UTF-8 variants of "März".
var germanMonths = map[string]time.Month{
	"jan": time.January, "januar": time.January, "january": time.January, "jän": time.January, "jänner": time.January,
	"feb": time.February, "februar": time.February, "february": time.February,
	"mär": time.March, "märz": time.March, "mar": time.March, "maer": time.March, "maerz": time.March,
	"mrz": time.March, "march": time.March, "mã¤r": time.March, "mã¤rz": time.March, "marz": time.March,
	"apr": time.April, "april": time.April,
	"mai": time.May, "may": time.May,
	"jun": time.June, "juni": time.June, "june": time.June,
	"jul": time.July, "juli": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"okt": time.October, "oktober": time.October, "oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dez": time.December, "dezember": time.December, "dec": time.December, "december": time.December,
}

// GermanMonth looks up a month name, ignoring case and a trailing dot.
func GermanMonth(name string) (time.Month, bool) {
	key := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(name), "."))
	m, ok := germanMonths[key]
	return m, ok
}

var germanDays = [...]string{"So", "Mo", "Di", "Mi", "Do", "Fr", "Sa"}

var germanMonthShort = [...]string{"", "Jan", "Feb", "Mär", "Apr", "Mai", "Jun", "Jul", "Aug", "Sep", "Okt", "Nov", "Dez"}

// GermanWeekday returns the two-letter German weekday ("Mo" ... "So").
func GermanWeekday(d time.Weekday) string {
	return germanDays[d]
}

// GermanMonthShort returns the three-letter German month ("Jan" ... "Dez").
func GermanMonthShort(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return germanMonthShort[m]
}
