// Package dateutil provides calendar arithmetic shared by the return
// models and the report layer.
package dateutil

import "time"

// MonthsBetween returns the number of whole months from a to b. The
// final partial month does not count until b's day of month reaches
// a's, so the result only advances on the monthly anniversary.
func MonthsBetween(a, b time.Time) int {
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if b.Day() < a.Day() {
		months--
	}
	return months
}

// NextCycleDate returns the first boundary of a repeating cycle that
// falls strictly after the given time. The cycle repeats every
// cycleMonths months from anchor.
func NextCycleDate(anchor time.Time, cycleMonths int, after time.Time) time.Time {
	if cycleMonths <= 0 {
		return anchor
	}
	next := anchor
	for !next.After(after) {
		next = next.AddDate(0, cycleMonths, 0)
	}
	for {
		prev := next.AddDate(0, -cycleMonths, 0)
		if !prev.After(after) {
			return next
		}
		next = prev
	}
}
