// Package preferences models what a student asks of the weekly plan.
package preferences

import (
	"fmt"

	"fuel-planner/internal/schedule"
	"fuel-planner/internal/shared"
)

const (
	MinMealsPerDay     = 1
	MaxMealsPerDay     = 5
	MaxWorkoutsPerWeek = 7
)

// MealTime is a daily window, in whole local hours, in which one meal
// should be placed.
type MealTime struct {
	Label     string `json:"label"`
	StartHour int    `json:"startHour"`
	EndHour   int    `json:"endHour"`
}

var defaultMealTimes = []MealTime{
	{Label: "Breakfast", StartHour: 8, EndHour: 10},
	{Label: "Lunch", StartHour: 12, EndHour: 14},
	{Label: "Dinner", StartHour: 18, EndHour: 20},
	{Label: "Snack", StartHour: 15, EndHour: 16},
	{Label: "Late Snack", StartHour: 21, EndHour: 22},
}

// DefaultMealTimes returns the first n default windows. n is clamped to
// the supported range.
func DefaultMealTimes(n int) []MealTime {
	n = max(MinMealsPerDay, min(n, MaxMealsPerDay))
	return append([]MealTime(nil), defaultMealTimes[:n]...)
}

// Nutrition preferences. Favorite and no-go entries are free text matched
// against venue names.
type Nutrition struct {
	MealsPerDay           int        `json:"mealsPerDay"`
	PreferredMealTimes    []MealTime `json:"preferredMealTimes"`
	FavoriteDiningOptions []string   `json:"favoriteDiningOptions"`
	NoGoDiningOptions     []string   `json:"noGoDiningOptions"`
	DietaryRestrictions   []string   `json:"dietaryRestrictions,omitempty"`
	Allergies             []string   `json:"allergies,omitempty"`
	NutritionGoals        []string   `json:"nutritionGoals,omitempty"`
}

// DefaultNutrition is three meals at the default times.
func DefaultNutrition() Nutrition {
	return Nutrition{
		MealsPerDay:           3,
		PreferredMealTimes:    DefaultMealTimes(3),
		FavoriteDiningOptions: []string{},
		NoGoDiningOptions:     []string{},
	}
}

// Validate returns shared.ErrValidation describing the first problem.
func (n Nutrition) Validate() error {
	if n.MealsPerDay < MinMealsPerDay || n.MealsPerDay > MaxMealsPerDay {
		return fmt.Errorf("%w: mealsPerDay must be between %d and %d, got %d",
			shared.ErrValidation, MinMealsPerDay, MaxMealsPerDay, n.MealsPerDay)
	}
	if len(n.PreferredMealTimes) != n.MealsPerDay {
		return fmt.Errorf("%w: expected %d preferred meal times, got %d",
			shared.ErrValidation, n.MealsPerDay, len(n.PreferredMealTimes))
	}
	for i, mt := range n.PreferredMealTimes {
		if mt.StartHour < 0 || mt.EndHour > 24 || mt.EndHour <= mt.StartHour {
			return fmt.Errorf("%w: meal time %d (%s) %d-%d is out of range",
				shared.ErrValidation, i, mt.Label, mt.StartHour, mt.EndHour)
		}
	}
	return nil
}

// Fitness preferences.
type Fitness struct {
	WorkoutsPerWeek       int                        `json:"workoutsPerWeek"`
	ActivityTypes         []string                   `json:"activityTypes"`
	WorkoutSplit          string                     `json:"workoutSplit,omitempty"`
	TargetMuscles         []string                   `json:"targetMuscles,omitempty"`
	FacilitiesOpenWindows []schedule.RecurringWindow `json:"facilitiesOpenWindows,omitempty"`
}

// DefaultGymWindows is the campus gym schedule.
func DefaultGymWindows() []schedule.RecurringWindow {
	windows := make([]schedule.RecurringWindow, 0, len(schedule.Week))
	for _, d := range schedule.Week {
		w := schedule.RecurringWindow{Day: d, StartHour: 6, EndHour: 23}
		if d == schedule.Saturday || d == schedule.Sunday {
			w.StartHour, w.EndHour = 8, 21
		}
		windows = append(windows, w)
	}
	return windows
}

// DefaultFitness is three workouts a week at the campus gym.
func DefaultFitness() Fitness {
	return Fitness{
		WorkoutsPerWeek:       3,
		ActivityTypes:         []string{},
		FacilitiesOpenWindows: DefaultGymWindows(),
	}
}

// WithDefaults fills in the gym schedule when no facility windows are given.
func (f Fitness) WithDefaults() Fitness {
	if len(f.FacilitiesOpenWindows) == 0 {
		f.FacilitiesOpenWindows = DefaultGymWindows()
	}
	if f.ActivityTypes == nil {
		f.ActivityTypes = []string{}
	}
	return f
}

// Validate returns shared.ErrValidation describing the first problem.
func (f Fitness) Validate() error {
	if f.WorkoutsPerWeek < 0 || f.WorkoutsPerWeek > MaxWorkoutsPerWeek {
		return fmt.Errorf("%w: workoutsPerWeek must be between 0 and %d, got %d",
			shared.ErrValidation, MaxWorkoutsPerWeek, f.WorkoutsPerWeek)
	}
	for _, w := range f.FacilitiesOpenWindows {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("facility window: %w", err)
		}
	}
	return nil
}
