package schedule

import (
	"encoding/json"
	"fmt"
	"time"
)

// ClassBlock is a busy interval imported from a calendar. It is never
// mutated; a new import replaces the whole set.
type ClassBlock struct {
	ID       string
	Title    string
	Location string
	Interval TimeInterval
}

// EventKind discriminates generated events.
type EventKind string

const (
	KindMeal    EventKind = "meal"
	KindWorkout EventKind = "workout"
)

// Kinds lists every EventKind.
var Kinds = []EventKind{KindMeal, KindWorkout}

// Valid reports whether k is a known kind.
func (k EventKind) Valid() bool {
	switch k {
	case KindMeal, KindWorkout:
		return true
	}
	return false
}

// Category is the calendar CATEGORIES value for the kind.
func (k EventKind) Category() string {
	switch k {
	case KindMeal:
		return "MEAL"
	case KindWorkout:
		return "WORKOUT"
	}
	panic(fmt.Sprintf("schedule: unknown event kind %q", string(k)))
}

// DefaultTitle is used when the generator omits a title.
func (k EventKind) DefaultTitle() string {
	switch k {
	case KindMeal:
		return "Meal"
	case KindWorkout:
		return "Workout"
	}
	panic(fmt.Sprintf("schedule: unknown event kind %q", string(k)))
}

// ScheduledEvent is a meal or workout produced by plan generation.
// Metadata carries extra scalar fields from the generator and is never
// consulted by validation.
type ScheduledEvent struct {
	ID       string
	Kind     EventKind
	Title    string
	Location string
	Interval TimeInterval
	Metadata map[string]any
}

// DiningLocation is a dining venue with its derived avoid flag.
type DiningLocation struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	IsOnCampus  bool              `json:"isOnCampus"`
	NoGo        bool              `json:"noGo"`
	OpenWindows []RecurringWindow `json:"openWindows"`
}

type classBlockJSON struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Location string    `json:"location,omitempty"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

func (b ClassBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(classBlockJSON{
		ID:       b.ID,
		Title:    b.Title,
		Location: b.Location,
		Start:    b.Interval.Start,
		End:      b.Interval.End,
	})
}

func (b *ClassBlock) UnmarshalJSON(data []byte) error {
	var raw classBlockJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	iv, err := NewInterval(raw.Start, raw.End)
	if err != nil {
		return fmt.Errorf("class block %q: %w", raw.ID, err)
	}
	*b = ClassBlock{ID: raw.ID, Title: raw.Title, Location: raw.Location, Interval: iv}
	return nil
}

type scheduledEventJSON struct {
	ID       string         `json:"id"`
	Kind     EventKind      `json:"type"`
	Title    string         `json:"title"`
	Location string         `json:"location,omitempty"`
	Start    time.Time      `json:"start"`
	End      time.Time      `json:"end"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (e ScheduledEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(scheduledEventJSON{
		ID:       e.ID,
		Kind:     e.Kind,
		Title:    e.Title,
		Location: e.Location,
		Start:    e.Interval.Start,
		End:      e.Interval.End,
		Metadata: e.Metadata,
	})
}

func (e *ScheduledEvent) UnmarshalJSON(data []byte) error {
	var raw scheduledEventJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !raw.Kind.Valid() {
		return fmt.Errorf("event %q: unknown type %q", raw.ID, raw.Kind)
	}
	iv, err := NewInterval(raw.Start, raw.End)
	if err != nil {
		return fmt.Errorf("event %q: %w", raw.ID, err)
	}
	*e = ScheduledEvent{
		ID:       raw.ID,
		Kind:     raw.Kind,
		Title:    raw.Title,
		Location: raw.Location,
		Interval: iv,
		Metadata: raw.Metadata,
	}
	return nil
}
