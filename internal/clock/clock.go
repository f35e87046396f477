// Package clock provides calendar-day arithmetic in the tracker's fixed
// display timezone. All "today" and date-window filtering goes through this
// package so that results do not depend on the server's local timezone.
package clock

import "time"

// OffsetMinutes is the fixed offset from UTC. There is no DST adjustment.
const OffsetMinutes = 540

// Zone is the fixed UTC+9 timezone used for all date computations.
var Zone = time.FixedZone("UTC+9", OffsetMinutes*60)

// DateLayout is the wire format for date query parameters.
const DateLayout = "2006-01-02"

// DateOf returns the calendar date of t as observed in UTC+9.
func DateOf(t time.Time) (int, time.Month, int) {
	return t.In(Zone).Date()
}

// StartOfDay returns midnight of t's calendar day in UTC+9.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(Zone).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, Zone)
}

// DayWindow returns the half-open instant range [from, to) covering t's
// calendar day in UTC+9.
func DayWindow(t time.Time) (time.Time, time.Time) {
	from := StartOfDay(t)
	return from, from.Add(24 * time.Hour)
}

// SameDay reports whether a and b fall on the same UTC+9 calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := DateOf(a)
	by, bm, bd := DateOf(b)
	return ay == by && am == bm && ad == bd
}

// ParseDate parses a YYYY-MM-DD string as midnight in UTC+9.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, Zone)
}

// FormatTimestamp renders an instant for human-facing output (exports) in
// UTC+9.
func FormatTimestamp(t time.Time) string {
	return t.In(Zone).Format("2006-01-02 15:04")
}
