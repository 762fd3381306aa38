package calendar

import (
	"errors"
	"sort"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"fuel-planner/internal/schedule"
	"fuel-planner/internal/shared"
)

const sampleICS = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//Test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:a@example.com\r\n" +
	"DTSTART:20240108T140000Z\r\n" +
	"DTEND:20240108T152000Z\r\n" +
	"SUMMARY:15-112 Lecture\r\n" +
	"LOCATION:Doherty Hall 2210\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:b@example.com\r\n" +
	"DTSTART;TZID=America/New_York:20240109T100000\r\n" +
	"DTEND;TZID=America/New_York:20240109T115000\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestImport(t *testing.T) {
	blocks, err := ImportString(sampleICS)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d", len(blocks))
	}

	first := blocks[0]
	if first.Title != "15-112 Lecture" || first.Location != "Doherty Hall 2210" {
		t.Errorf("Unexpected first block: %+v", first)
	}
	want := time.Date(2024, 1, 8, 14, 0, 0, 0, time.UTC)
	if !first.Interval.Start.Equal(want) {
		t.Errorf("Expected start %v, got %v", want, first.Interval.Start)
	}
	if first.Interval.Duration() != 80*time.Minute {
		t.Errorf("Expected 80 minute block, got %v", first.Interval.Duration())
	}

	second := blocks[1]
	if second.Title != UntitledEvent {
		t.Errorf("Expected default title, got %q", second.Title)
	}
	if second.Location != "" {
		t.Errorf("Expected no location, got %q", second.Location)
	}
	wantUTC := time.Date(2024, 1, 9, 15, 0, 0, 0, time.UTC)
	if !second.Interval.Start.Equal(wantUTC) {
		t.Errorf("Expected TZID start %v, got %v", wantUTC, second.Interval.Start.UTC())
	}
}

func TestImportAssignsFreshIDs(t *testing.T) {
	a, err := ImportString(sampleICS)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ImportString(sampleICS)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	for _, blk := range append(a, b...) {
		if blk.ID == "" || blk.ID == "a@example.com" || seen[blk.ID] {
			t.Errorf("Expected a fresh unique ID, got %q", blk.ID)
		}
		seen[blk.ID] = true
	}
}

func TestImportFailures(t *testing.T) {
	missingEnd := strings.Replace(sampleICS, "DTEND:20240108T152000Z\r\n", "", 1)
	reversed := strings.Replace(sampleICS, "DTEND:20240108T152000Z", "DTEND:20240108T130000Z", 1)
	truncatedEvent := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//Test//EN\r\n" +
		"BEGIN:VEVENT\r\nDTSTART:20240108T140000Z\r\nDTEND:20240108T150000Z\r\nSUMMARY:X\r\n"
	noEnd := strings.TrimSuffix(sampleICS, "END:VCALENDAR\r\n")
	badDuration := strings.Replace(sampleICS, "DTEND:20240108T152000Z", "DURATION:soon", 1)

	tests := []struct {
		name  string
		input string
	}{
		{"Empty", ""},
		{"Whitespace", "  \r\n"},
		{"NotCalendar", "hello world"},
		{"MissingEnd", missingEnd},
		{"EndBeforeStart", reversed},
		{"TruncatedEvent", truncatedEvent},
		{"MissingEndCalendar", noEnd},
		{"BadDuration", badDuration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks, err := ImportString(tt.input)
			if !errors.Is(err, shared.ErrParse) {
				t.Errorf("Expected ErrParse, got %v", err)
			}
			if blocks != nil {
				t.Errorf("Expected no blocks on failure, got %d", len(blocks))
			}
		})
	}
}

func testEvents() []schedule.ScheduledEvent {
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	return []schedule.ScheduledEvent{
		{
			ID: "m1", Kind: schedule.KindMeal, Title: "Lunch at Schatz", Location: "Schatz Dining Room",
			Interval: schedule.TimeInterval{Start: day.Add(17 * time.Hour), End: day.Add(17*time.Hour + 45*time.Minute)},
		},
		{
			ID: "w1", Kind: schedule.KindWorkout, Title: "Upper body",
			Interval: schedule.TimeInterval{Start: day.Add(22 * time.Hour), End: day.Add(23 * time.Hour)},
		},
		{
			ID: "m2", Kind: schedule.KindMeal, Title: "Breakfast",
			Interval: schedule.TimeInterval{Start: day.Add(13 * time.Hour), End: day.Add(13*time.Hour + 30*time.Minute)},
		},
	}
}

func TestExport(t *testing.T) {
	now := time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC)
	out, err := Export(testEvents(), now)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + ProductID,
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"UID:m1",
		"DTSTAMP:20240107T120000Z",
		"DTSTART:20240110T170000Z",
		"DTEND:20240110T174500Z",
		"CATEGORIES:MEAL",
		"CATEGORIES:WORKOUT",
		"END:VCALENDAR",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q", want)
		}
	}
	if n := strings.Count(out, "BEGIN:VEVENT"); n != 3 {
		t.Errorf("Expected 3 VEVENT blocks, got %d", n)
	}
	if strings.Count(out, "LOCATION:") != 1 {
		t.Error("Expected LOCATION only for the event that has one")
	}
}

func TestExportEmpty(t *testing.T) {
	_, err := Export(nil, time.Now())
	if !errors.Is(err, shared.ErrExport) {
		t.Errorf("Expected ErrExport, got %v", err)
	}
}

func TestSerializeEmptyContainer(t *testing.T) {
	out := Serialize(nil, time.Now())
	if !strings.Contains(out, "BEGIN:VCALENDAR") || !strings.Contains(out, "END:VCALENDAR") {
		t.Errorf("Expected a complete container, got %q", out)
	}
	if strings.Contains(out, "BEGIN:VEVENT") {
		t.Error("Expected no events")
	}
}

func TestRoundTrip(t *testing.T) {
	events := testEvents()
	out, err := Export(events, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	blocks, err := ImportString(out)
	if err != nil {
		t.Fatalf("Import of exported calendar failed: %v", err)
	}

	key := func(title string, iv schedule.TimeInterval) string {
		return title + "|" + iv.Start.UTC().Format(time.RFC3339) + "|" + iv.End.UTC().Format(time.RFC3339)
	}
	var want, got []string
	for _, e := range events {
		want = append(want, key(e.Title, e.Interval))
	}
	for _, b := range blocks {
		got = append(got, key(b.Title, b.Interval))
	}
	sort.Strings(want)
	sort.Strings(got)
	if strings.Join(want, ",") != strings.Join(got, ",") {
		t.Errorf("Round trip mismatch:\nwant %v\ngot  %v", want, got)
	}
}

func TestImportDuration(t *testing.T) {
	input := strings.Replace(sampleICS, "DTEND:20240108T152000Z", "DURATION:PT1H30M", 1)
	blocks, err := ImportString(input)
	if err != nil {
		t.Fatalf("Expected DURATION to stand in for DTEND, got %v", err)
	}
	want := time.Date(2024, 1, 8, 15, 30, 0, 0, time.UTC)
	if !blocks[0].Interval.End.Equal(want) {
		t.Errorf("Expected end %s, got %s", want, blocks[0].Interval.End)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"PT1H", time.Hour, true},
		{"PT50M", 50 * time.Minute, true},
		{"P1DT2H", 26 * time.Hour, true},
		{"P1W", 7 * 24 * time.Hour, true},
		{"-PT15M", -15 * time.Minute, true},
		{"PT", 0, false},
		{"P", 0, false},
		{"1H", 0, false},
	}
	for _, tt := range tests {
		got, err := parseDuration(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("parseDuration(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestImportKeepsTextVerbatim(t *testing.T) {
	events := []schedule.ScheduledEvent{{
		ID: "m1", Kind: schedule.KindMeal, Title: "Long title ", Location: "Schatz Dining Room",
		Interval: schedule.TimeInterval{
			Start: time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 1, 10, 13, 0, 0, 0, time.UTC),
		},
	}}
	blocks, err := ImportString(Serialize(events, time.Now()))
	if err != nil {
		t.Fatal(err)
	}
	if blocks[0].Title != "Long title " || blocks[0].Location != "Schatz Dining Room" {
		t.Errorf("Expected text to survive the round trip, got %q at %q", blocks[0].Title, blocks[0].Location)
	}

	blank, err := ImportString(strings.Replace(sampleICS, "SUMMARY:15-112 Lecture", "SUMMARY:   ", 1))
	if err != nil {
		t.Fatal(err)
	}
	if blank[0].Title != UntitledEvent {
		t.Errorf("Expected a blank summary to count as missing, got %q", blank[0].Title)
	}
}

func TestSerializeUniqueUIDs(t *testing.T) {
	iv := schedule.TimeInterval{
		Start: time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 10, 13, 0, 0, 0, time.UTC),
	}
	events := []schedule.ScheduledEvent{
		{Kind: schedule.KindMeal, Interval: iv},
		{Kind: schedule.KindMeal, Interval: iv},
		{ID: "1", Kind: schedule.KindWorkout, Interval: iv},
		{ID: "1", Kind: schedule.KindWorkout, Interval: iv},
	}

	seen := map[string]bool{}
	for _, line := range strings.Split(Serialize(events, time.Now()), "\r\n") {
		uid, ok := strings.CutPrefix(line, "UID:")
		if !ok {
			continue
		}
		if uid == "" || seen[uid] {
			t.Errorf("Expected a distinct non-empty UID, got %q", uid)
		}
		seen[uid] = true
	}
	if len(seen) != 4 || !seen["1"] {
		t.Errorf("Expected 4 UIDs keeping the first \"1\", got %v", seen)
	}
}
