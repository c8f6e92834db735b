package dining

import (
	"fmt"
	"time"
)

// =============================================================================
// WEEKDAY - 1=Monday .. 7=Sunday
// =============================================================================

type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// WeekdayOf numbers the weekday of t with Monday as 1.
func WeekdayOf(t time.Time) Weekday {
	return Weekday((int(t.Weekday())+6)%7 + 1)
}

func (d Weekday) Valid() bool { return d >= Monday && d <= Sunday }

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return time.Weekday(int(d) % 7).String()
}

// =============================================================================
// CLOCK TIME - minutes since midnight, written "HH:MM"
// =============================================================================

type ClockTime int

const clockLayout = "15:04"

// ParseClockTime parses a 24-hour "HH:MM" time of day.
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil || len(s) != len(clockLayout) {
		return 0, &ValidationError{Field: "time", Message: fmt.Sprintf("%q is not a valid HH:MM time", s)}
	}
	return NewClockTime(t.Hour(), t.Minute()), nil
}

func NewClockTime(hour, minute int) ClockTime { return ClockTime(hour*60 + minute) }

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

func (c ClockTime) Add(d time.Duration) ClockTime { return c + ClockTime(d/time.Minute) }

// OnSlot reports whether c sits on the reservation granularity.
func (c ClockTime) OnSlot() bool { return int(c)%int(SlotGranularity/time.Minute) == 0 }

// On places the time of day on the calendar day of date in loc.
func (c ClockTime) On(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour(), c.Minute(), 0, 0, loc)
}

// ClockOf returns the time of day of t in loc.
func ClockOf(t time.Time, loc *time.Location) ClockTime {
	t = t.In(loc)
	return NewClockTime(t.Hour(), t.Minute())
}

func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute()) }

// =============================================================================
// DATES
// =============================================================================

const dateLayout = "2006-01-02"

// ParseDate parses a "YYYY-MM-DD" calendar date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "date", Message: fmt.Sprintf("%q is not a valid YYYY-MM-DD date", s)}
	}
	return t, nil
}

// StartOfDay truncates t to midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func FormatDate(t time.Time) string { return t.Format(dateLayout) }
