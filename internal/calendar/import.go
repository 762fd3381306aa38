// Package calendar converts between iCalendar text and the schedule model.
package calendar

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"fuel-planner/internal/schedule"
	"fuel-planner/internal/shared"
)

// UntitledEvent is the title given to events without a SUMMARY.
const UntitledEvent = "Untitled Event"

var textUnescaper = strings.NewReplacer(`\n`, "\n", `\N`, "\n", `\,`, ",", `\;`, ";", `\\`, `\`)

// Import parses an iCalendar document into class blocks, one per VEVENT in
// file order. Every block gets a fresh ID. Any malformed event fails the
// whole import with shared.ErrParse and no blocks are returned.
func Import(r io.Reader) ([]schedule.ClassBlock, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read calendar: %w", shared.ErrParse, err)
	}
	if err := checkContainer(data); err != nil {
		return nil, err
	}

	cal, err := ics.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrParse, err)
	}

	events := cal.Events()
	blocks := make([]schedule.ClassBlock, 0, len(events))
	for i, ev := range events {
		if ev == nil {
			return nil, fmt.Errorf("%w: event %d is not terminated", shared.ErrParse, i)
		}
		block, err := blockFromEvent(ev)
		if err != nil {
			return nil, fmt.Errorf("%w: event %d: %v", shared.ErrParse, i, err)
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

// ImportString is Import for in-memory text.
func ImportString(s string) ([]schedule.ClassBlock, error) {
	return Import(strings.NewReader(s))
}

func checkContainer(data []byte) error {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	var first, last string
	for sc.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\ufeff"))
		if line == "" {
			continue
		}
		if first == "" {
			first = line
		}
		last = line
	}
	if !strings.EqualFold(first, "BEGIN:VCALENDAR") {
		return fmt.Errorf("%w: not an iCalendar document", shared.ErrParse)
	}
	if !strings.EqualFold(last, "END:VCALENDAR") {
		return fmt.Errorf("%w: calendar is truncated, END:VCALENDAR missing", shared.ErrParse)
	}
	return nil
}

func blockFromEvent(ev *ics.VEvent) (schedule.ClassBlock, error) {
	start, err := ev.GetStartAt()
	if err != nil {
		return schedule.ClassBlock{}, fmt.Errorf("DTSTART: %v", err)
	}
	end, err := eventEnd(ev, start)
	if err != nil {
		return schedule.ClassBlock{}, err
	}
	iv, err := schedule.NewInterval(start, end)
	if err != nil {
		return schedule.ClassBlock{}, err
	}

	title := textValue(ev, ics.ComponentPropertySummary)
	if strings.TrimSpace(title) == "" {
		title = UntitledEvent
	}
	location := textValue(ev, ics.ComponentPropertyLocation)
	if strings.TrimSpace(location) == "" {
		location = ""
	}
	return schedule.ClassBlock{
		ID:       uuid.NewString(),
		Title:    title,
		Location: location,
		Interval: iv,
	}, nil
}

func textValue(ev *ics.VEvent, prop ics.ComponentProperty) string {
	p := ev.GetProperty(prop)
	if p == nil {
		return ""
	}
	return textUnescaper.Replace(p.Value)
}

// eventEnd reads DTEND, or DTSTART plus DURATION when DTEND is absent.
func eventEnd(ev *ics.VEvent, start time.Time) (time.Time, error) {
	if ev.GetProperty(ics.ComponentPropertyDtEnd) != nil {
		end, err := ev.GetEndAt()
		if err != nil {
			return time.Time{}, fmt.Errorf("DTEND: %v", err)
		}
		return end, nil
	}
	p := ev.GetProperty(ics.ComponentProperty("DURATION"))
	if p == nil {
		return time.Time{}, errors.New("neither DTEND nor DURATION is set")
	}
	d, err := parseDuration(p.Value)
	if err != nil {
		return time.Time{}, fmt.Errorf("DURATION: %v", err)
	}
	return start.Add(d), nil
}

var durationRe = regexp.MustCompile(`^([+-])?P(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseDuration reads an RFC 5545 dur-value such as PT1H30M or P1DT2H.
func parseDuration(s string) (time.Duration, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	m := durationRe.FindStringSubmatch(s)
	if m == nil || s == "P" || s == "PT" || strings.HasSuffix(s, "T") {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	units := []time.Duration{7 * 24 * time.Hour, 24 * time.Hour, time.Hour, time.Minute, time.Second}
	var d time.Duration
	for i, unit := range units {
		if m[i+2] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+2])
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		d += time.Duration(n) * unit
	}
	if m[1] == "-" {
		d = -d
	}
	return d, nil
}
