package render

import (
	"time"

	"fuel-planner/internal/schedule"
)

// GridEvent places an item on a seven-column hour grid.
type GridEvent struct {
	ID            string   `json:"id"`
	Kind          ItemKind `json:"kind"`
	Title         string   `json:"title"`
	Location      string   `json:"location,omitempty"`
	DayIndex      int      `json:"dayIndex"`
	StartHour     int      `json:"startHour"`
	StartMinute   int      `json:"startMinute"`
	EndHour       int      `json:"endHour"`
	DurationHours float64  `json:"durationHours"`
	Color         string   `json:"color"`
}

// Grid is the weekly calendar view of the same data ByDay lists. DayIndex
// 0 is Sunday.
func Grid(classes []schedule.ClassBlock, events []schedule.ScheduledEvent, loc *time.Location) ([]GridEvent, error) {
	items, err := collect(classes, events, loc)
	if err != nil {
		return nil, err
	}

	out := make([]GridEvent, 0, len(items))
	for _, it := range items {
		out = append(out, GridEvent{
			ID:            it.ID,
			Kind:          it.Kind,
			Title:         it.Title,
			Location:      it.Location,
			DayIndex:      int(it.Start.Weekday()),
			StartHour:     it.Start.Hour(),
			StartMinute:   it.Start.Minute(),
			EndHour:       endHour(it.Start, it.End),
			DurationHours: it.End.Sub(it.Start).Hours(),
			Color:         it.Color,
		})
	}
	return out, nil
}

// endHour is End's hour, except that an item running up to midnight of a
// later day ends at hour 24 of its start day's column.
func endHour(start, end time.Time) int {
	if end.Hour() == 0 && end.Minute() == 0 && end.Second() == 0 && end.After(start) {
		return 24
	}
	return end.Hour()
}
