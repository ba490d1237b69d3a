package util

import (
	"strconv"
	"strings"
	"time"
)

var layouts = []string{
	time.DateOnly,
	time.RFC3339,
	time.RFC3339Nano,
	time.DateTime,
	"01/02/2006",
	"2006/01/02",
}

// ParseTime tries the common date layouts of spreadsheet exports, then unix
// seconds. Returns (t, true) if any worked. Results are in UTC.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0).UTC(), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// DayRange returns n consecutive days starting at start's calendar day.
func DayRange(start time.Time, n int) []time.Time {
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = day.AddDate(0, 0, i)
	}
	return out
}

// IsDaily reports whether ts advances by exactly one calendar day per element.
func IsDaily(ts []time.Time) bool {
	for i := 1; i < len(ts); i++ {
		if !ts[i-1].AddDate(0, 0, 1).Equal(ts[i]) {
			return false
		}
	}
	return true
}
