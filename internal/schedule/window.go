package schedule

import (
	"fmt"
	"time"

	"fuel-planner/internal/shared"
)

// RecurringWindow is a weekly open window on one day, in whole hours.
// StartHour 0 and EndHour 24 means open all day.
type RecurringWindow struct {
	Day       Weekday `json:"day"`
	StartHour int     `json:"startHour"`
	EndHour   int     `json:"endHour"`
}

// Validate checks the day name and 0 <= start < end <= 24.
func (w RecurringWindow) Validate() error {
	if !w.Day.Valid() {
		return fmt.Errorf("%w: unknown day %q", shared.ErrValidation, w.Day)
	}
	if w.StartHour < 0 || w.EndHour > 24 || w.EndHour <= w.StartHour {
		return fmt.Errorf("%w: window %s %d-%d is out of range",
			shared.ErrValidation, w.Day, w.StartHour, w.EndHour)
	}
	return nil
}

// AllDay reports whether the window is the explicit open-24-hours case.
func (w RecurringWindow) AllDay() bool {
	return w.StartHour == 0 && w.EndHour == 24
}

// Covers reports whether iv, read in loc, fits entirely inside the window.
// Intervals crossing midnight are never covered by a single window.
func (w RecurringWindow) Covers(iv TimeInterval, loc *time.Location) bool {
	local := iv.In(loc)
	if WeekdayOf(local.Start.Weekday()) != w.Day {
		return false
	}
	y, m, d := local.Start.Date()
	open := time.Date(y, m, d, w.StartHour, 0, 0, 0, loc)
	closing := time.Date(y, m, d, w.EndHour, 0, 0, 0, loc)
	return !local.Start.Before(open) && !local.End.After(closing)
}

// AnyCovers reports whether one of windows covers iv.
func AnyCovers(windows []RecurringWindow, iv TimeInterval, loc *time.Location) bool {
	for _, w := range windows {
		if w.Covers(iv, loc) {
			return true
		}
	}
	return false
}
