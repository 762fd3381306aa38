package calendar

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"fuel-planner/internal/schedule"
	"fuel-planner/internal/shared"
)

// ProductID identifies documents written by this service.
const ProductID = "-//Fuel Planner//EN"

// Export renders generated events as a publishable iCalendar document.
// An empty plan is an error; there is nothing to subscribe to.
func Export(events []schedule.ScheduledEvent, now time.Time) (string, error) {
	if len(events) == 0 {
		return "", fmt.Errorf("%w: no events to export", shared.ErrExport)
	}
	for i, e := range events {
		if !e.Kind.Valid() {
			return "", fmt.Errorf("%w: event %d has unknown type %q", shared.ErrExport, i, e.Kind)
		}
	}
	return Serialize(events, now), nil
}

// Serialize writes the calendar container and one VEVENT per event.
// Times are written in UTC. Every VEVENT gets a distinct UID; events
// with an empty or repeated ID get a fresh one.
func Serialize(events []schedule.ScheduledEvent, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ics.MethodPublish)

	stamp := now.UTC()
	seen := make(map[string]bool, len(events))
	for _, e := range events {
		uid := e.ID
		if uid == "" || seen[uid] {
			uid = uuid.NewString()
		}
		seen[uid] = true
		ev := cal.AddEvent(uid)
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(e.Interval.Start.UTC())
		ev.SetEndAt(e.Interval.End.UTC())
		ev.SetSummary(e.Title)
		if e.Location != "" {
			ev.SetLocation(e.Location)
		}
		ev.AddProperty(ics.ComponentPropertyCategories, e.Kind.Category())
	}
	return cal.Serialize()
}
