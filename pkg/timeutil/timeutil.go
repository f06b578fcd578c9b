package timeutil

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	DateLayout = "2006-01-02"

	// MinutesPerDay bounds every clock value: valid minute offsets are [0, MinutesPerDay).
	MinutesPerDay = 24 * 60
)

// ErrInvalidFormat is returned for malformed clock or date strings
var ErrInvalidFormat = errors.New("invalid format")

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// TimeToMinutes converts a strict 24-hour "HH:mm" string to minutes from midnight
func TimeToMinutes(clock string) (int, error) {
	m := clockPattern.FindStringSubmatch(clock)
	if m == nil {
		return 0, fmt.Errorf("time %q must be HH:mm: %w", clock, ErrInvalidFormat)
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	return hours*60 + minutes, nil
}

// MinutesToTime converts minutes from midnight to "HH:mm".
// Callers must pass a value in [0, 1439]; anything else is a programming error.
func MinutesToTime(minutes int) string {
	if minutes < 0 || minutes >= MinutesPerDay {
		panic(fmt.Sprintf("timeutil: minute offset %d out of range", minutes))
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// IsValidClock reports whether s is a strict "HH:mm" clock string
func IsValidClock(s string) bool {
	return clockPattern.MatchString(s)
}

// ParseDate parses a "YYYY-MM-DD" calendar date at midnight UTC
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q must be YYYY-MM-DD: %w", s, ErrInvalidFormat)
	}
	return d, nil
}

// FormatDate formats the calendar part of t as "YYYY-MM-DD"
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateOf strips the clock part of t, keeping its calendar fields.
// All dates are naive, so the result is always expressed in UTC.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayOfWeek returns 0=Sunday .. 6=Saturday
func DayOfWeek(date time.Time) int {
	return int(date.Weekday())
}

// IsPastDate reports whether date falls strictly before the calendar day of now
func IsPastDate(date, now time.Time) bool {
	return DateOf(date).Before(DateOf(now))
}
