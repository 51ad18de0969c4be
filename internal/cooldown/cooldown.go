// Package cooldown computes whether a user is inside a scheduled
// cooldown window. It is pure date arithmetic with no I/O, so the
// report pipeline can call it with any clock.
package cooldown

import "time"

// Status describes a user's position relative to a cooldown window.
// WeekNumber, TotalWeeks and EndDate are only meaningful when
// InCooldown is true.
type Status struct {
	InCooldown bool
	WeekNumber int
	TotalWeeks int
	EndDate    time.Time
}

// Compute derives the status from a schedule's start date and duration
// in weeks. The window is half-open: the start date is in cooldown, the
// end date (start + weeks*7 days) is not. A non-positive duration never
// yields an active cooldown.
//
// Week numbers are 1-based and advance at the end of each full week:
// the seventh day after the start still belongs to week 1, the eighth
// opens week 2. The result is clamped to [1, durationWeeks].
func Compute(nextStart time.Time, durationWeeks int, now time.Time) Status {
	if durationWeeks <= 0 {
		return Status{}
	}

	end := nextStart.AddDate(0, 0, durationWeeks*7)
	if now.Before(nextStart) || !now.Before(end) {
		return Status{}
	}

	days := int(now.Sub(nextStart) / (24 * time.Hour))

	week := (days + 6) / 7
	if week < 1 {
		week = 1
	}
	if week > durationWeeks {
		week = durationWeeks
	}

	return Status{
		InCooldown: true,
		WeekNumber: week,
		TotalWeeks: durationWeeks,
		EndDate:    end,
	}
}
