package rules

import "time"

// DayKey formats the calendar date a run belongs to. Runs, snapshots and
// candidate listings are all addressed by this key.
func DayKey(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format("2006-01-02")
}
