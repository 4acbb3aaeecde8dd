package datetime

import (
	"testing"
	"time"
)

func TestDayStrings(t *testing.T) {
	now := time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC)

	if got := Today(now); got != "2024-03-01" {
		t.Errorf("Today = %s, want 2024-03-01", got)
	}
	if got := Yesterday(now); got != "2024-02-29" {
		t.Errorf("Yesterday = %s, want 2024-02-29 (leap year)", got)
	}
}

func TestYesterdayAcrossYearBoundary(t *testing.T) {
	now := time.Date(2024, time.January, 1, 0, 5, 0, 0, time.UTC)
	if got := Yesterday(now); got != "2023-12-31" {
		t.Errorf("Yesterday = %s, want 2023-12-31", got)
	}
}

func TestWeekID(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		// Jan 1 2024 is a Monday (weekday index 1): ceil((0 + 1 + 1)/7) = 1.
		{"start of 2024", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), "2024-W01"},
		// Sep 12 2024: day offset 255, ceil((255.x + 2)/7) = 37.
		{"mid September 2024", time.Date(2024, time.September, 12, 12, 0, 0, 0, time.UTC), "2024-W37"},
		// Jan 1 2023 is a Sunday (weekday index 0): ceil((0 + 0 + 1)/7) = 1.
		{"start of 2023", time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC), "2023-W01"},
		// Dec 31 2023: offset 364, ceil((364.x + 1)/7) = 53.
		{"end of 2023", time.Date(2023, time.December, 31, 23, 0, 0, 0, time.UTC), "2023-W53"},
	}

	for _, tt := range tests {
		if got := WeekID(tt.t); got != tt.want {
			t.Errorf("%s: WeekID = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestWeekIDStableWithinDay(t *testing.T) {
	morning := time.Date(2024, time.June, 5, 1, 0, 0, 0, time.UTC)
	night := time.Date(2024, time.June, 5, 23, 59, 0, 0, time.UTC)
	if WeekID(morning) != WeekID(night) {
		t.Errorf("WeekID changed within one day: %s vs %s", WeekID(morning), WeekID(night))
	}
}

func TestSameWeek(t *testing.T) {
	now := time.Date(2024, time.September, 12, 10, 0, 0, 0, time.UTC)
	if !SameWeek("2024-W37", now) {
		t.Error("expected 2024-W37 to match")
	}
	if SameWeek("2024-W36", now) {
		t.Error("expected 2024-W36 to be a stale week")
	}
	if SameWeek("", now) {
		t.Error("empty stored week id must read as a boundary crossing")
	}
}
