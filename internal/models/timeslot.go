package models

import (
	"fmt"
	"strings"
	"time"
)

// DayOfWeek identifies a schedule day using lowercase English names.
type DayOfWeek string

const (
	Monday    DayOfWeek = "monday"
	Tuesday   DayOfWeek = "tuesday"
	Wednesday DayOfWeek = "wednesday"
	Thursday  DayOfWeek = "thursday"
	Friday    DayOfWeek = "friday"
	Saturday  DayOfWeek = "saturday"
	Sunday    DayOfWeek = "sunday"
)

// SchoolDays lists the days a weekly timetable may use, in display order.
var SchoolDays = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

var dayLabels = map[DayOfWeek]string{
	Monday:    "Senin",
	Tuesday:   "Selasa",
	Wednesday: "Rabu",
	Thursday:  "Kamis",
	Friday:    "Jumat",
	Saturday:  "Sabtu",
	Sunday:    "Minggu",
}

// DayFromTime maps a calendar date onto its DayOfWeek value.
func DayFromTime(t time.Time) DayOfWeek {
	switch t.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

// ParseDayOfWeek normalises user input into a DayOfWeek.
func ParseDayOfWeek(raw string) (DayOfWeek, error) {
	day := DayOfWeek(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := dayLabels[day]; !ok {
		return "", fmt.Errorf("unknown day of week %q", raw)
	}
	return day, nil
}

// Label returns the Indonesian display name for the day.
func (d DayOfWeek) Label() string {
	if label, ok := dayLabels[d]; ok {
		return label
	}
	return string(d)
}

// IsWeekend reports whether the date falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// TimeSlot is an ordered time-of-day interval in the timetable catalog.
// Entries are immutable once referenced by schedules; non-overlap within a
// day is the catalog maintainer's responsibility.
type TimeSlot struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	SlotOrder int       `db:"slot_order" json:"slot_order"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Validate checks the start < end invariant.
func (s TimeSlot) Validate() error {
	start, err := ParseClock(s.StartTime)
	if err != nil {
		return fmt.Errorf("invalid start time: %w", err)
	}
	end, err := ParseClock(s.EndTime)
	if err != nil {
		return fmt.Errorf("invalid end time: %w", err)
	}
	if start >= end {
		return fmt.Errorf("start time %s must be before end time %s", s.StartTime, s.EndTime)
	}
	return nil
}

// FormattedTime renders the slot interval for display.
func (s TimeSlot) FormattedTime() string {
	return s.StartTime + " - " + s.EndTime
}

// ParseClock converts an HH:MM string into minutes since midnight.
func ParseClock(raw string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", raw, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ClockDiffMinutes returns end minus start in minutes. Negative when the
// range is inverted; callers validate ordering separately.
func ClockDiffMinutes(start, end string) (int, error) {
	s, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return 0, err
	}
	return e - s, nil
}

// ClockRangesOverlap reports whether two HH:MM intervals intersect.
func ClockRangesOverlap(startA, endA, startB, endB string) (bool, error) {
	sa, err := ParseClock(startA)
	if err != nil {
		return false, err
	}
	ea, err := ParseClock(endA)
	if err != nil {
		return false, err
	}
	sb, err := ParseClock(startB)
	if err != nil {
		return false, err
	}
	eb, err := ParseClock(endB)
	if err != nil {
		return false, err
	}
	return sa < eb && sb < ea, nil
}

// DateOnly truncates a timestamp to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDate compares two timestamps by calendar date.
func SameDate(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}
