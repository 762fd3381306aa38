package planner

import (
	"fmt"
	"strings"
	"time"

	"fuel-planner/internal/preferences"
	"fuel-planner/internal/schedule"
)

// Rule names a constraint a generated event broke.
type Rule string

const (
	RuleClassOverlap         Rule = "class_overlap"
	RuleNoGoLocation         Rule = "no_go_location"
	RuleLocationClosed       Rule = "location_closed"
	RuleOutsideMealWindow    Rule = "outside_meal_window"
	RuleOutsideFacilityHours Rule = "outside_facility_hours"
)

// Violation is one broken constraint.
type Violation struct {
	EventID string `json:"eventId"`
	Rule    Rule   `json:"rule"`
	Message string `json:"message"`
}

// ValidationInput is what the events are checked against.
type ValidationInput struct {
	Classes   []schedule.ClassBlock
	Dining    []schedule.DiningLocation
	Nutrition *preferences.Nutrition
	Fitness   *preferences.Fitness
	Location  *time.Location
}

// Validate checks generated events against the hard constraints the
// generator was given. Violations are listed in event order.
func Validate(events []schedule.ScheduledEvent, in ValidationInput) []Violation {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	mealTimes := preferences.DefaultMealTimes(3)
	if in.Nutrition != nil && len(in.Nutrition.PreferredMealTimes) > 0 {
		mealTimes = in.Nutrition.PreferredMealTimes
	}
	var fitness preferences.Fitness
	if in.Fitness != nil {
		fitness = *in.Fitness
	}
	facility := fitness.WithDefaults().FacilitiesOpenWindows

	var out []Violation
	add := func(e schedule.ScheduledEvent, r Rule, format string, args ...any) {
		out = append(out, Violation{EventID: e.ID, Rule: r, Message: fmt.Sprintf(format, args...)})
	}

	for _, e := range events {
		for _, c := range in.Classes {
			if e.Interval.Overlaps(c.Interval) {
				add(e, RuleClassOverlap, "%s overlaps class %q", e.Title, c.Title)
				break
			}
		}

		switch e.Kind {
		case schedule.KindMeal:
			if venue, ok := matchVenue(in.Dining, e.Location); ok {
				if venue.NoGo {
					add(e, RuleNoGoLocation, "%s is at %s, which is on the avoid list", e.Title, venue.Name)
				}
				if !schedule.AnyCovers(venue.OpenWindows, e.Interval, loc) {
					add(e, RuleLocationClosed, "%s is closed during %s", venue.Name, e.Title)
				}
			}
			if !inMealWindow(mealTimes, e.Interval, loc) {
				add(e, RuleOutsideMealWindow, "%s at %s is outside the preferred meal times",
					e.Title, e.Interval.Start.In(loc).Format("Mon 15:04"))
			}
		case schedule.KindWorkout:
			if !schedule.AnyCovers(facility, e.Interval, loc) {
				add(e, RuleOutsideFacilityHours, "%s at %s is outside facility hours",
					e.Title, e.Interval.Start.In(loc).Format("Mon 15:04"))
			}
		}
	}
	return out
}

// matchVenue finds the venue an event location refers to: an exact name
// match, else the longest venue name contained in the location (or the
// other way round).
func matchVenue(venues []schedule.DiningLocation, location string) (schedule.DiningLocation, bool) {
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" {
		return schedule.DiningLocation{}, false
	}

	best, bestLen := -1, 0
	for i, v := range venues {
		name := strings.ToLower(v.Name)
		if name == loc {
			return v, true
		}
		if (strings.Contains(loc, name) || strings.Contains(name, loc)) && len(name) > bestLen {
			best, bestLen = i, len(name)
		}
	}
	if best < 0 {
		return schedule.DiningLocation{}, false
	}
	return venues[best], true
}

func inMealWindow(times []preferences.MealTime, iv schedule.TimeInterval, loc *time.Location) bool {
	local := iv.In(loc)
	for _, mt := range times {
		w := schedule.RecurringWindow{
			Day:       schedule.WeekdayOf(local.Start.Weekday()),
			StartHour: mt.StartHour,
			EndHour:   mt.EndHour,
		}
		if w.Covers(iv, loc) {
			return true
		}
	}
	return false
}
