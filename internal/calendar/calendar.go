// Package calendar provides pure date arithmetic used by the recurrence and
// payday engines. All functions are deterministic: they operate only on their
// arguments and never read the wall clock.
package calendar

import "time"

// StartOfDay returns t truncated to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfMonth returns the first instant of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// LastDayOfMonth returns the number of days in the given month.
func LastDayOfMonth(year int, month time.Month) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// EndOfMonth returns the last calendar day of t's month at t's time of day.
func EndOfMonth(t time.Time) time.Time {
	last := LastDayOfMonth(t.Year(), t.Month())
	return time.Date(t.Year(), t.Month(), last, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// AddMonthsClamped advances t by n months, clamping the day of month to the
// last day of the target month. Unlike time.AddDate, Jan 31 plus one month
// yields Feb 28/29 rather than rolling over into March.
func AddMonthsClamped(t time.Time, n int) time.Time {
	// Anchor on day 1 so the month step itself can never overflow.
	anchor := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, n, 0)

	day := t.Day()
	if last := LastDayOfMonth(anchor.Year(), anchor.Month()); day > last {
		day = last
	}
	return time.Date(anchor.Year(), anchor.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// AddYearsClamped advances t by n years with the same clamping rule, so
// Feb 29 plus one year yields Feb 28.
func AddYearsClamped(t time.Time, n int) time.Time {
	return AddMonthsClamped(t, n*12)
}

// ClampDayToMonth returns day limited to the number of days in the given month.
func ClampDayToMonth(year int, month time.Month, day int) int {
	if last := LastDayOfMonth(year, month); day > last {
		return last
	}
	return day
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// BeforeDay reports whether a's calendar day is strictly before b's,
// ignoring time of day.
func BeforeDay(a, b time.Time) bool {
	return StartOfDay(a).Before(StartOfDay(b))
}

// AfterDay reports whether a's calendar day is strictly after b's.
func AfterDay(a, b time.Time) bool {
	return StartOfDay(a).After(StartOfDay(b))
}

// DaysUntil returns the number of days from today until target, rounding
// partial days up and never going below zero.
func DaysUntil(target, today time.Time) int {
	diff := target.Sub(today)
	if diff <= 0 {
		return 0
	}
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return days
}
