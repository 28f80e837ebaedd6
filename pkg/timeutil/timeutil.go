// Package timeutil provides UTC time helpers for trailing-window
// aggregation. All engine timestamps are stored in UTC; windows are measured
// in whole days back from now. No external dependencies - uses only
// standard library.
package timeutil

import "time"

// Now returns the current time in UTC.
func Now() time.Time {
	return time.Now().UTC()
}

// StartOfDay returns the start of the day (00:00:00) in UTC for t.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// WindowStart returns the cutoff for a trailing window of the given number
// of days ending now: entries with timestamp >= the returned value are
// inside the window.
func WindowStart(days int) time.Time {
	return Now().Add(-time.Duration(days) * 24 * time.Hour)
}

// WindowStartFrom is WindowStart anchored at an explicit end time. Useful
// in tests that need deterministic windows.
func WindowStartFrom(end time.Time, days int) time.Time {
	return end.Add(-time.Duration(days) * 24 * time.Hour)
}

// DaysBetween returns the number of whole days from a to b (b after a).
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
