// Package render projects classes and generated events onto a week for
// display. It never modifies its inputs.
package render

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"fuel-planner/internal/schedule"
)

// ErrNoSchedule signals there is nothing to show yet.
var ErrNoSchedule = errors.New("no schedule to render")

// ItemKind is the display category of an item.
type ItemKind string

const (
	KindClass   ItemKind = "class"
	KindMeal    ItemKind = "meal"
	KindWorkout ItemKind = "workout"
)

func kindOf(k schedule.EventKind) ItemKind {
	switch k {
	case schedule.KindMeal:
		return KindMeal
	case schedule.KindWorkout:
		return KindWorkout
	}
	panic(fmt.Sprintf("render: unknown event kind %q", string(k)))
}

// Style is the icon and color family used for a kind.
type Style struct {
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// StyleOf returns the display style for k.
func StyleOf(k ItemKind) Style {
	switch k {
	case KindClass:
		return Style{Icon: "📚", Color: "blue"}
	case KindMeal:
		return Style{Icon: "🍽️", Color: "amber"}
	case KindWorkout:
		return Style{Icon: "💪", Color: "green"}
	}
	panic(fmt.Sprintf("render: unknown item kind %q", string(k)))
}

// Item is one entry in a day list.
type Item struct {
	ID        string    `json:"id"`
	Kind      ItemKind  `json:"kind"`
	Title     string    `json:"title"`
	Location  string    `json:"location,omitempty"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	TimeLabel string    `json:"time"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
}

// Day is one column of the week.
type Day struct {
	Name  string `json:"day"`
	Items []Item `json:"items"`
}

// Week is seven days, Sunday first.
type Week []Day

// ByDay groups classes and events by the local weekday of their start and
// orders each day by start time. Ties keep input order with classes first.
func ByDay(classes []schedule.ClassBlock, events []schedule.ScheduledEvent, loc *time.Location) (Week, error) {
	items, err := collect(classes, events, loc)
	if err != nil {
		return nil, err
	}

	week := make(Week, 7)
	for i := range week {
		week[i] = Day{Name: time.Weekday(i).String(), Items: []Item{}}
	}
	for _, it := range items {
		d := it.Start.Weekday()
		week[d].Items = append(week[d].Items, it)
	}
	return week, nil
}

func collect(classes []schedule.ClassBlock, events []schedule.ScheduledEvent, loc *time.Location) ([]Item, error) {
	if len(classes) == 0 && len(events) == 0 {
		return nil, ErrNoSchedule
	}
	if loc == nil {
		loc = time.UTC
	}

	items := make([]Item, 0, len(classes)+len(events))
	for _, c := range classes {
		items = append(items, newItem(c.ID, KindClass, c.Title, c.Location, c.Interval.In(loc)))
	}
	for _, e := range events {
		items = append(items, newItem(e.ID, kindOf(e.Kind), e.Title, e.Location, e.Interval.In(loc)))
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Start.Before(items[j].Start)
	})
	return items, nil
}

func newItem(id string, kind ItemKind, title, location string, iv schedule.TimeInterval) Item {
	st := StyleOf(kind)
	return Item{
		ID:        id,
		Kind:      kind,
		Title:     title,
		Location:  location,
		Start:     iv.Start,
		End:       iv.End,
		TimeLabel: iv.Start.Format("3:04 PM"),
		Icon:      st.Icon,
		Color:     st.Color,
	}
}
