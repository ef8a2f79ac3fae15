package calculator

import "time"

const millisPerDay = 86_400_000

// LeaveDays counts the calendar days of a leave span, both ends included:
// ceil(|end - start| / 1 day) + 1. The result is always at least 1 and does not
// depend on the order of start and end.
func LeaveDays(start, end time.Time) int {
	ms := end.Sub(start).Milliseconds()
	if ms < 0 {
		ms = -ms
	}

	days := ms / millisPerDay
	if ms%millisPerDay != 0 {
		days++
	}
	return int(days) + 1
}
