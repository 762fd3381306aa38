package planner

import (
	"errors"
	"strings"
	"testing"
	"time"

	"fuel-planner/internal/schedule"
	"fuel-planner/internal/shared"
)

func TestNormalizeResponseFencedProse(t *testing.T) {
	text := "Here is the plan:\n```json\n" +
		`[{"id":"1","type":"meal","title":"Lunch","location":"X","start":"2024-01-01T12:00:00Z","end":"2024-01-01T13:00:00Z"}]` +
		"\n```\nEnjoy!"

	events, err := NormalizeResponse(text)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected exactly one event, got %d", len(events))
	}
	e := events[0]
	if e.Kind != schedule.KindMeal || e.ID != "1" || e.Title != "Lunch" || e.Location != "X" {
		t.Errorf("Unexpected event %+v", e)
	}
	if !e.Interval.Start.Equal(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)) ||
		!e.Interval.End.Equal(time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected interval %v", e.Interval)
	}
	if e.Metadata != nil {
		t.Errorf("Expected no metadata, got %v", e.Metadata)
	}
}

func TestNormalizeResponseDefaults(t *testing.T) {
	text := `[
		{"type":"Workout","start":"2024-01-02T07:00:00-05:00","end":"2024-01-02T08:00:00-05:00","notes":"legs","sets":4,"outdoor":false,"tags":["a"],"extra":null,
		 "metadata":{"calories":550,"nested":{"x":1}}},
		{"id":7,"type":"meal","title":"  ","start":"2024-01-02T12:00:00","end":"2024-01-02T12:45:00","location":null}
	]`

	events, err := NormalizeResponse(text)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}

	w := events[0]
	if w.ID == "" || w.Title != "Workout" || w.Kind != schedule.KindWorkout {
		t.Errorf("Expected generated id and default title, got %+v", w)
	}
	want := map[string]any{"notes": "legs", "sets": float64(4), "outdoor": false, "calories": float64(550)}
	if len(w.Metadata) != len(want) {
		t.Errorf("Expected metadata %v, got %v", want, w.Metadata)
	}
	for k, v := range want {
		if w.Metadata[k] != v {
			t.Errorf("Metadata[%s] = %v, want %v", k, w.Metadata[k], v)
		}
	}

	m := events[1]
	if m.ID != "7" || m.Title != "Meal" || m.Location != "" {
		t.Errorf("Unexpected meal %+v", m)
	}
	if m.Interval.Start.Location() != time.UTC || m.Interval.Start.Hour() != 12 {
		t.Errorf("Expected offset-less time read as UTC, got %v", m.Interval.Start)
	}
}

func TestNormalizeResponseSkipsBracketedProse(t *testing.T) {
	text := `Plan [draft]: [{"type":"meal","start":"2024-01-01T12:00:00Z","end":"2024-01-01T13:00:00Z"}] [end]`
	events, err := NormalizeResponse(text)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(events) != 1 {
		t.Errorf("Expected 1 event, got %d", len(events))
	}
}

func TestNormalizeResponseEmptyArray(t *testing.T) {
	events, err := NormalizeResponse("[]")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(events) != 0 {
		t.Errorf("Expected no events, got %d", len(events))
	}
}

func TestNormalizeResponseErrors(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantMsg string
	}{
		{"NoArray", "I could not build a plan.", "no JSON array"},
		{"Unclosed", `[{"type":"meal"`, "no JSON array"},
		{"InvalidJSON", `[{"type":"meal",}]`, "invalid character"},
		{"UnknownType", `[{"type":"nap","start":"2024-01-01T12:00:00Z","end":"2024-01-01T13:00:00Z"}]`, "element 0"},
		{"MissingStart", `[{"type":"meal","end":"2024-01-01T13:00:00Z"}]`, "start is required"},
		{"BadTimestamp", `[{"type":"meal","start":"noon","end":"2024-01-01T13:00:00Z"}]`, "RFC 3339"},
		{"EndBeforeStart", `[{"type":"meal","start":"2024-01-01T13:00:00Z","end":"2024-01-01T12:00:00Z"}]`, "not after"},
		{"TitleNotString", `[{"type":"meal","title":5,"start":"2024-01-01T12:00:00Z","end":"2024-01-01T13:00:00Z"}]`, "title must be a string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := NormalizeResponse(tt.text)
			if !errors.Is(err, shared.ErrResponseFormat) {
				t.Fatalf("Expected ErrResponseFormat, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Expected error to contain %q, got %q", tt.wantMsg, err)
			}
			if events != nil {
				t.Error("Expected no events on failure")
			}
		})
	}
}

func TestNormalizeResponseRenamesDuplicateIDs(t *testing.T) {
	text := `[
		{"id":"1","type":"meal","start":"2024-01-02T12:00:00Z","end":"2024-01-02T12:45:00Z"},
		{"id":"1","type":"meal","start":"2024-01-02T18:00:00Z","end":"2024-01-02T18:45:00Z"}
	]`

	events, err := NormalizeResponse(text)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if events[0].ID != "1" {
		t.Errorf("Expected the first id to be kept, got %q", events[0].ID)
	}
	if events[1].ID == "1" || events[1].ID == "" {
		t.Errorf("Expected a fresh id for the repeat, got %q", events[1].ID)
	}
}
