package schedule

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Weekday is one of the seven day names used by recurring windows.
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// Week lists the days Monday first, the order hours tables are authored in.
var Week = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseWeekday matches a full or abbreviated day name, case-insensitively.
func ParseWeekday(s string) (Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 2 {
		return "", false
	}
	for _, d := range Week {
		if strings.HasPrefix(strings.ToLower(string(d)), s) {
			return d, true
		}
	}
	return "", false
}

// WeekdayOf converts a time.Weekday.
func WeekdayOf(d time.Weekday) Weekday {
	if d == time.Sunday {
		return Sunday
	}
	return Week[int(d)-1]
}

// Time converts back to time.Weekday.
func (d Weekday) Time() time.Weekday {
	for i, w := range Week {
		if w == d {
			return time.Weekday((i + 1) % 7)
		}
	}
	return time.Sunday
}

// Valid reports whether d is one of the seven names.
func (d Weekday) Valid() bool {
	for _, w := range Week {
		if w == d {
			return true
		}
	}
	return false
}

func (d *Weekday) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	w, ok := ParseWeekday(s)
	if !ok {
		return fmt.Errorf("unknown weekday %q", s)
	}
	*d = w
	return nil
}
