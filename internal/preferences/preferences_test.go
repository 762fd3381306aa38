package preferences

import (
	"errors"
	"testing"

	"fuel-planner/internal/schedule"
	"fuel-planner/internal/shared"
)

func TestDefaultMealTimes(t *testing.T) {
	got := DefaultMealTimes(3)
	if len(got) != 3 || got[0].Label != "Breakfast" || got[2].StartHour != 18 || got[2].EndHour != 20 {
		t.Errorf("Unexpected defaults %v", got)
	}
	if len(DefaultMealTimes(9)) != MaxMealsPerDay {
		t.Error("Expected clamp to the maximum")
	}
	if len(DefaultMealTimes(0)) != MinMealsPerDay {
		t.Error("Expected clamp to the minimum")
	}

	got[0].Label = "changed"
	if DefaultMealTimes(1)[0].Label != "Breakfast" {
		t.Error("Expected defaults to be copied")
	}
}

func TestNutritionValidate(t *testing.T) {
	valid := DefaultNutrition()
	if err := valid.Validate(); err != nil {
		t.Fatalf("Expected defaults to validate, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Nutrition)
	}{
		{"TooFewMeals", func(n *Nutrition) { n.MealsPerDay = 0; n.PreferredMealTimes = nil }},
		{"TooManyMeals", func(n *Nutrition) { n.MealsPerDay = 6 }},
		{"LengthMismatch", func(n *Nutrition) { n.MealsPerDay = 2 }},
		{"ReversedWindow", func(n *Nutrition) { n.PreferredMealTimes[1] = MealTime{Label: "Lunch", StartHour: 14, EndHour: 12} }},
		{"PastMidnight", func(n *Nutrition) { n.PreferredMealTimes[2] = MealTime{Label: "Dinner", StartHour: 20, EndHour: 25} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := DefaultNutrition()
			tt.mutate(&n)
			if err := n.Validate(); !errors.Is(err, shared.ErrValidation) {
				t.Errorf("Expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestFitness(t *testing.T) {
	f := Fitness{WorkoutsPerWeek: 4}.WithDefaults()
	if len(f.FacilitiesOpenWindows) != 7 {
		t.Fatalf("Expected gym defaults, got %v", f.FacilitiesOpenWindows)
	}
	if f.FacilitiesOpenWindows[5] != (schedule.RecurringWindow{Day: schedule.Saturday, StartHour: 8, EndHour: 21}) {
		t.Errorf("Unexpected Saturday window %v", f.FacilitiesOpenWindows[5])
	}
	if err := f.Validate(); err != nil {
		t.Errorf("Expected valid fitness, got %v", err)
	}

	custom := Fitness{FacilitiesOpenWindows: []schedule.RecurringWindow{{Day: schedule.Monday, StartHour: 7, EndHour: 9}}}.WithDefaults()
	if len(custom.FacilitiesOpenWindows) != 1 {
		t.Error("Expected explicit windows to be kept")
	}

	if err := (Fitness{WorkoutsPerWeek: 8}).Validate(); !errors.Is(err, shared.ErrValidation) {
		t.Errorf("Expected ErrValidation for 8 workouts, got %v", err)
	}
	bad := Fitness{FacilitiesOpenWindows: []schedule.RecurringWindow{{Day: "Someday", StartHour: 1, EndHour: 2}}}
	if err := bad.Validate(); !errors.Is(err, shared.ErrValidation) {
		t.Errorf("Expected ErrValidation for bad window, got %v", err)
	}
}
