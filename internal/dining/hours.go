package dining

import (
	"regexp"
	"strconv"
	"strings"

	"fuel-planner/internal/schedule"
)

var (
	dayRangeRe  = regexp.MustCompile(`^(\w+)\s*[-–—]\s*(\w+)$`)
	timeRangeRe = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*(AM|PM)\s*[-–—]\s*(\d{1,2}):(\d{2})\s*(AM|PM)`)
)

// ParseHours reads an opening-hours description such as
//
//	Saturday–Sunday: 10:30 AM - 2:30 PM, 4:30 PM - 8:30 PM; Monday–Friday: 7:00 AM - 9:00 PM
//
// into weekly windows. Entries that cannot be read are skipped.
func ParseHours(s string) []schedule.RecurringWindow {
	var windows []schedule.RecurringWindow
	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" || strings.Contains(strings.ToUpper(entry), "CLOSED") {
			continue
		}
		dayPart, timePart, ok := strings.Cut(entry, ":")
		if !ok {
			continue
		}
		days := parseDays(strings.TrimSpace(dayPart))
		if len(days) == 0 {
			continue
		}

		if strings.Contains(strings.ToLower(timePart), "open 24 hours") {
			for _, d := range days {
				windows = append(windows, schedule.RecurringWindow{Day: d, StartHour: 0, EndHour: 24})
			}
			continue
		}

		for _, r := range strings.Split(timePart, ",") {
			m := timeRangeRe.FindStringSubmatch(r)
			if m == nil {
				continue
			}
			start := toHour(m[1], m[2], m[3])
			end := toHour(m[4], m[5], m[6])
			if end == 0 || (m[4] == "11" && m[5] == "59" && strings.EqualFold(m[6], "PM")) {
				end = 24
			}
			if end <= start {
				continue
			}
			for _, d := range days {
				windows = append(windows, schedule.RecurringWindow{Day: d, StartHour: start, EndHour: end})
			}
		}
	}
	return windows
}

func parseDays(s string) []schedule.Weekday {
	lower := strings.ToLower(s)
	if strings.Contains(lower, "daily") || strings.Contains(lower, "every day") {
		return append([]schedule.Weekday(nil), schedule.Week...)
	}

	if m := dayRangeRe.FindStringSubmatch(s); m != nil {
		from, ok1 := schedule.ParseWeekday(m[1])
		to, ok2 := schedule.ParseWeekday(m[2])
		if !ok1 || !ok2 {
			return nil
		}
		i, j := indexOf(from), indexOf(to)
		var days []schedule.Weekday
		for k := i; ; k = (k + 1) % len(schedule.Week) {
			days = append(days, schedule.Week[k])
			if k == j {
				break
			}
		}
		return days
	}

	if d, ok := schedule.ParseWeekday(s); ok {
		return []schedule.Weekday{d}
	}
	return nil
}

func indexOf(d schedule.Weekday) int {
	for i, w := range schedule.Week {
		if w == d {
			return i
		}
	}
	return -1
}

// toHour converts a 12-hour clock reading to a whole 24-hour value.
// Half past or later rounds up.
func toHour(h, m, period string) int {
	hour, _ := strconv.Atoi(h)
	min, _ := strconv.Atoi(m)
	pm := strings.EqualFold(period, "PM")
	switch {
	case pm && hour != 12:
		hour += 12
	case !pm && hour == 12:
		hour = 0
	}
	if min >= 30 {
		hour++
	}
	return hour
}
