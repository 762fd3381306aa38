package schedule

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"fuel-planner/internal/shared"
)

func at(hour, min int) time.Time {
	// 2024-01-03 is a Wednesday.
	return time.Date(2024, 1, 3, hour, min, 0, 0, time.UTC)
}

func TestNewInterval(t *testing.T) {
	if _, err := NewInterval(at(10, 0), at(11, 0)); err != nil {
		t.Fatalf("Expected valid interval, got %v", err)
	}
	_, err := NewInterval(at(10, 0), at(10, 0))
	if !errors.Is(err, shared.ErrValidation) {
		t.Errorf("Expected ErrValidation for empty interval, got %v", err)
	}
}

func TestOverlaps(t *testing.T) {
	base := TimeInterval{Start: at(10, 0), End: at(11, 0)}
	tests := []struct {
		name string
		o    TimeInterval
		want bool
	}{
		{"Inside", TimeInterval{at(10, 15), at(10, 45)}, true},
		{"StraddleStart", TimeInterval{at(9, 30), at(10, 30)}, true},
		{"TouchBefore", TimeInterval{at(9, 0), at(10, 0)}, false},
		{"TouchAfter", TimeInterval{at(11, 0), at(12, 0)}, false},
		{"Disjoint", TimeInterval{at(13, 0), at(14, 0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.o); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			if got := tt.o.Overlaps(base); got != tt.want {
				t.Errorf("Overlaps is not symmetric")
			}
		})
	}
}

func TestParseWeekday(t *testing.T) {
	for in, want := range map[string]Weekday{"monday": Monday, "Tue": Tuesday, "th": Thursday, "SUN": Sunday} {
		got, ok := ParseWeekday(in)
		if !ok || got != want {
			t.Errorf("ParseWeekday(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseWeekday("s"); ok {
		t.Error("Expected ambiguous single letter to be rejected")
	}
	if WeekdayOf(time.Sunday) != Sunday || Sunday.Time() != time.Sunday || Wednesday.Time() != time.Wednesday {
		t.Error("Weekday conversion mismatch")
	}
}

func TestWindowCovers(t *testing.T) {
	w := RecurringWindow{Day: Wednesday, StartHour: 8, EndHour: 24}
	if !w.Covers(TimeInterval{at(8, 0), at(9, 0)}, time.UTC) {
		t.Error("Expected window to cover 08:00-09:00")
	}
	if w.Covers(TimeInterval{at(7, 30), at(8, 30)}, time.UTC) {
		t.Error("Expected window not to cover an interval starting before opening")
	}
	if !w.Covers(TimeInterval{at(23, 0), at(0, 0).AddDate(0, 0, 1)}, time.UTC) {
		t.Error("Expected an end-of-day window to cover up to midnight")
	}
	thursday := TimeInterval{at(9, 0).AddDate(0, 0, 1), at(10, 0).AddDate(0, 0, 1)}
	if w.Covers(thursday, time.UTC) {
		t.Error("Expected window not to cover another day")
	}
}

func TestWindowValidate(t *testing.T) {
	if err := (RecurringWindow{Day: Sunday, StartHour: 0, EndHour: 24}).Validate(); err != nil {
		t.Errorf("Expected 0-24 to be valid, got %v", err)
	}
	if err := (RecurringWindow{Day: Sunday, StartHour: 10, EndHour: 9}).Validate(); err == nil {
		t.Error("Expected reversed window to be invalid")
	}
}

func TestScheduledEventJSON(t *testing.T) {
	in := `{"id":"1","type":"meal","title":"Lunch","location":"X","start":"2024-01-01T12:00:00Z","end":"2024-01-01T13:00:00Z"}`
	var e ScheduledEvent
	if err := json.Unmarshal([]byte(in), &e); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if e.Kind != KindMeal || e.Interval.Duration() != time.Hour {
		t.Errorf("Unexpected event %+v", e)
	}

	out, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var back map[string]any
	_ = json.Unmarshal(out, &back)
	if back["type"] != "meal" || back["start"] != "2024-01-01T12:00:00Z" {
		t.Errorf("Unexpected wire form %s", out)
	}

	bad := `{"id":"2","type":"nap","title":"Nap","start":"2024-01-01T12:00:00Z","end":"2024-01-01T13:00:00Z"}`
	if err := json.Unmarshal([]byte(bad), &e); err == nil {
		t.Error("Expected unknown type to be rejected")
	}
}

func TestKindCategory(t *testing.T) {
	for _, k := range Kinds {
		if k.Category() == "" || k.DefaultTitle() == "" {
			t.Errorf("Kind %q lacks a category or title", k)
		}
	}
}
