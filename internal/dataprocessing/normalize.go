package dataprocessing

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Relative date grammar: "<integer> <unit> ago", case-insensitive.
var relativeDateRe = regexp.MustCompile(`(?i)^(\d+)\s+(day|days|week|weeks|month|months|year|years)\s+ago$`)

// Count grammar after comma stripping: "<minus><digits><.digits><ws><k|K>".
var kSuffixRe = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)\s*[kK]$`)

// Approximate unit lengths in days. Month and year are deliberate fixed
// approximations carried over from the source data format, not
// calendar-accurate conversions.
const (
	daysPerWeek  = 7
	daysPerMonth = 30
	daysPerYear  = 365
)

// ParseCount coerces a raw count field ("14.2K", "1,234", "523") into an
// integer. Thousands-separator commas are stripped, a k/K suffix multiplies
// by 1000, and the final value rounds half away from zero. The second return
// is false when the text is empty or not numeric at all; the coercion policy
// for that case belongs to the row processor.
func ParseCount(raw string) (int64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")

	if m := kSuffixRe.FindStringSubmatch(s); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		return int64(math.Round(v * 1000)), true
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int64(math.Round(v)), true
}

// ParseRelativeDate resolves a relative date like "8 days ago" against the
// supplied reference time. It returns the absolute date as YYYY-MM-DD in UTC
// plus the day count. Anything outside the grammar is a soft miss (ok=false),
// never an error.
//
// The reference time is an explicit parameter because the conversion is
// otherwise impure: production callers pass time.Now(), tests pass a fixed
// clock.
func ParseRelativeDate(raw string, now time.Time) (iso string, days int, ok bool) {
	m := relativeDateRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", 0, false
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return "", 0, false
	}

	switch strings.ToLower(m[2]) {
	case "day", "days":
		days = n
	case "week", "weeks":
		days = n * daysPerWeek
	case "month", "months":
		days = n * daysPerMonth
	case "year", "years":
		days = n * daysPerYear
	}

	u := now.UTC()
	// Discard time-of-day before subtracting so the result is a calendar date.
	midnight := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	posted := midnight.AddDate(0, 0, -days)

	return posted.Format("2006-01-02"), days, true
}
