// Package gameday implements reset-aligned day arithmetic. The
// accounting "day" is the 24-hour window between two consecutive daily
// resets, which fire at a fixed UTC time configured once at startup.
// Day keys roll at the reset instant, so daily counters start at zero
// for the new day without explicit clearing.
package gameday

import "time"

// Clock derives day keys and reset instants from a fixed UTC reset
// time of day. The zero value resets at 00:00 UTC.
type Clock struct {
	ResetHour   int
	ResetMinute int
}

// offset is the duration between midnight UTC and the reset instant.
func (c Clock) offset() time.Duration {
	return time.Duration(c.ResetHour)*time.Hour + time.Duration(c.ResetMinute)*time.Minute
}

// Day returns the day key for t in YYYY-MM-DD form. The key is the UTC
// calendar date shifted so that it changes exactly at the reset
// instant: an event one minute before the reset belongs to the
// previous day.
func (c Clock) Day(t time.Time) string {
	return t.UTC().Add(-c.offset()).Format("2006-01-02")
}

// Today returns the current day key.
func (c Clock) Today() string {
	return c.Day(time.Now())
}

// NextReset returns the first reset instant strictly after t.
func (c Clock) NextReset(t time.Time) time.Time {
	t = t.UTC()
	next := time.Date(t.Year(), t.Month(), t.Day(), c.ResetHour, c.ResetMinute, 0, 0, time.UTC)
	if !next.After(t) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
