// Package datetime centralizes all calendar math for the progression
// engine. Nothing else in the repo is allowed to do date arithmetic:
// streak decisions and weekly quota buckets on the client and the server
// must agree on these exact strings.
package datetime

import (
	"fmt"
	"math"
	"time"
)

const dayLayout = "2006-01-02"

// DayString formats t as a local calendar date (YYYY-MM-DD), no time
// component. Local clock on purpose: a streak day ends at the user's
// local midnight.
func DayString(t time.Time) string {
	return t.Format(dayLayout)
}

// Today returns the calendar date of now.
func Today(now time.Time) string {
	return DayString(now)
}

// Yesterday returns the calendar date of the day before now.
func Yesterday(now time.Time) string {
	return DayString(now.AddDate(0, 0, -1))
}

// WeekID returns the app-internal week identifier "YYYY-Www" for t.
//
// The formula is NOT true ISO-8601 week numbering: it divides the
// fractional day-of-year offset plus the weekday index of January 1st
// (Sunday = 0) by 7 and rounds up. Historical profiles and the mobile
// clients bucket quotas and freeze cooldowns with this exact formula,
// so it must never be "corrected".
func WeekID(t time.Time) string {
	startOfYear := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	days := t.Sub(startOfYear).Hours() / 24
	week := int(math.Ceil((days + float64(startOfYear.Weekday()) + 1) / 7))
	return fmt.Sprintf("%d-W%02d", t.Year(), week)
}

// SameWeek reports whether a stored week identifier still refers to the
// week containing now. Week-boundary detection is a pure string
// comparison, never a date-range computation.
func SameWeek(storedWeekID string, now time.Time) bool {
	return storedWeekID == WeekID(now)
}
