package schedule

import "time"

// Day truncates a timestamp to its calendar day, anchored at midnight UTC.
// All engine arithmetic happens on Day-normalized values so timezone drift
// cannot shift a date across midnight.
func Day(ts time.Time) time.Time {
	u := ts.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// AddDays moves a day value by n calendar days (n may be negative).
func AddDays(day time.Time, n int) time.Time {
	return day.AddDate(0, 0, n)
}

// DaysBetween returns the whole calendar days from a to b. Both arguments
// must be Day-normalized; the result is negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}

func maxDay(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
