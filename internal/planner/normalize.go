package planner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fuel-planner/internal/schedule"
	"fuel-planner/internal/shared"
)

var coreFields = map[string]bool{
	"id": true, "type": true, "title": true, "location": true, "start": true, "end": true, "metadata": true,
}

// NormalizeResponse extracts the JSON array of events from generator
// output. Timestamps without an offset are read as UTC.
func NormalizeResponse(text string) ([]schedule.ScheduledEvent, error) {
	return NormalizeResponseIn(text, time.UTC)
}

// NormalizeResponseIn is NormalizeResponse with offset-less timestamps
// read in loc.
func NormalizeResponseIn(text string, loc *time.Location) ([]schedule.ScheduledEvent, error) {
	raw, err := extractArray(text)
	if err != nil {
		return nil, err
	}

	events := make([]schedule.ScheduledEvent, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, obj := range raw {
		ev, err := eventFromRaw(obj, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", shared.ErrResponseFormat, i, err)
		}
		// IDs must be unique within a plan; later repeats are renamed.
		if seen[ev.ID] {
			ev.ID = uuid.NewString()
		}
		seen[ev.ID] = true
		events = append(events, ev)
	}
	return events, nil
}

// extractArray decodes the first JSON array of objects found in text,
// ignoring whatever surrounds it.
func extractArray(text string) ([]map[string]json.RawMessage, error) {
	first := strings.IndexByte(text, '[')
	if first < 0 || !strings.Contains(text[first:], "]") {
		return nil, fmt.Errorf("%w: no JSON array found in response", shared.ErrResponseFormat)
	}

	var firstErr error
	for i := first; i >= 0; {
		var raw []map[string]json.RawMessage
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		dec.UseNumber()
		err := dec.Decode(&raw)
		if err == nil {
			return raw, nil
		}
		if firstErr == nil {
			firstErr = err
		}
		next := strings.IndexByte(text[i+1:], '[')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return nil, fmt.Errorf("%w: %v", shared.ErrResponseFormat, firstErr)
}

func eventFromRaw(obj map[string]json.RawMessage, loc *time.Location) (schedule.ScheduledEvent, error) {
	kindStr, err := stringField(obj, "type")
	if err != nil {
		return schedule.ScheduledEvent{}, err
	}
	kind := schedule.EventKind(strings.ToLower(strings.TrimSpace(kindStr)))
	if !kind.Valid() {
		return schedule.ScheduledEvent{}, fmt.Errorf("unknown type %q", kindStr)
	}

	start, err := timeField(obj, "start", loc)
	if err != nil {
		return schedule.ScheduledEvent{}, err
	}
	end, err := timeField(obj, "end", loc)
	if err != nil {
		return schedule.ScheduledEvent{}, err
	}
	iv, err := schedule.NewInterval(start, end)
	if err != nil {
		return schedule.ScheduledEvent{}, err
	}

	id, err := idField(obj)
	if err != nil {
		return schedule.ScheduledEvent{}, err
	}
	if id == "" {
		id = uuid.NewString()
	}
	title, err := stringField(obj, "title")
	if err != nil {
		return schedule.ScheduledEvent{}, err
	}
	if title = strings.TrimSpace(title); title == "" {
		title = kind.DefaultTitle()
	}
	location, err := stringField(obj, "location")
	if err != nil {
		return schedule.ScheduledEvent{}, err
	}

	return schedule.ScheduledEvent{
		ID:       id,
		Kind:     kind,
		Title:    title,
		Location: strings.TrimSpace(location),
		Interval: iv,
		Metadata: metadata(obj),
	}, nil
}

// stringField returns "" for absent or null fields.
func stringField(obj map[string]json.RawMessage, key string) (string, error) {
	raw, ok := obj[key]
	if !ok || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%s must be a string", key)
	}
	return s, nil
}

func idField(obj map[string]json.RawMessage) (string, error) {
	raw, ok := obj["id"]
	if !ok || string(raw) == "null" {
		return "", nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return stringField(obj, "id")
}

func timeField(obj map[string]json.RawMessage, key string, loc *time.Location) (time.Time, error) {
	s, err := stringField(obj, key)
	if err != nil {
		return time.Time{}, err
	}
	if s == "" {
		return time.Time{}, fmt.Errorf("%s is required", key)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%s %q is not an RFC 3339 timestamp", key, s)
}

// metadata collects scalar values from fields outside the core schema,
// plus scalar entries of an explicit "metadata" object.
func metadata(obj map[string]json.RawMessage) map[string]any {
	md := map[string]any{}
	if raw, ok := obj["metadata"]; ok {
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(raw, &nested); err == nil {
			for k, v := range nested {
				if s, ok := scalar(v); ok {
					md[k] = s
				}
			}
		}
	}
	for k, v := range obj {
		if coreFields[k] {
			continue
		}
		if s, ok := scalar(v); ok {
			md[k] = s
		}
	}
	if len(md) == 0 {
		return nil
	}
	return md
}

func scalar(raw json.RawMessage) (any, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, false
	}
	switch raw[0] {
	case '{', '[', 'n':
		return nil, false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	return v, true
}
