package scheduling

import (
	"fmt"

	"go-medical-appointment/internal/domain/entity"
	"go-medical-appointment/pkg/timeutil"
)

// ReasonDoctorUnavailable is returned alongside an empty slot list when the
// doctor has no active window on the requested weekday.
const ReasonDoctorUnavailable = "Doctor is not available on this day"

// Interval is a half-open [Start, End) range in minutes from midnight
type Interval struct {
	Start int
	End   int
}

// ParseInterval builds an Interval from two "HH:mm" strings
func ParseInterval(start, end string) (Interval, error) {
	s, err := timeutil.TimeToMinutes(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := timeutil.TimeToMinutes(end)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: s, End: e}, nil
}

// Overlaps is the half-open intersection test
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && i.End > other.Start
}

// Window is one day's working window with its slot size, in minutes
type Window struct {
	Start        int
	End          int
	SlotDuration int
}

// WindowFromAvailability converts a stored weekday record into a Window
func WindowFromAvailability(a *entity.WeeklyAvailability) (Window, error) {
	iv, err := ParseInterval(a.StartTime, a.EndTime)
	if err != nil {
		return Window{}, err
	}
	return Window{Start: iv.Start, End: iv.End, SlotDuration: a.SlotDuration}, nil
}

// Slot is a derived candidate appointment interval. It is never persisted.
type Slot struct {
	StartTime   string
	EndTime     string
	IsAvailable bool
}

// GenerateSlots splits the window into consecutive slots of SlotDuration
// minutes. Partial trailing slots are dropped.
//
// A slot is unavailable only when its start minute equals the start minute of
// a booked interval. A booking that straddles a slot boundary without sharing
// its start leaves that slot marked available; booking requests are still
// guarded by HasConflict.
func GenerateSlots(window Window, booked []Interval) []Slot {
	if window.SlotDuration <= 0 {
		panic(fmt.Sprintf("scheduling: slot duration must be positive, got %d", window.SlotDuration))
	}

	bookedStarts := make(map[int]struct{}, len(booked))
	for _, b := range booked {
		bookedStarts[b.Start] = struct{}{}
	}

	slots := make([]Slot, 0)
	for current := window.Start; current+window.SlotDuration <= window.End; current += window.SlotDuration {
		_, taken := bookedStarts[current]
		slots = append(slots, Slot{
			StartTime:   timeutil.MinutesToTime(current),
			EndTime:     timeutil.MinutesToTime(current + window.SlotDuration),
			IsAvailable: !taken,
		})
	}
	return slots
}

// SlotsForDay derives the slot list for a doctor's day from the stored
// availability and that day's appointments. A missing or inactive window
// yields no slots and a human-readable reason, not an error.
func SlotsForDay(availability *entity.WeeklyAvailability, appointments []entity.Appointment) ([]Slot, string, error) {
	if availability == nil || !availability.IsActive {
		return []Slot{}, ReasonDoctorUnavailable, nil
	}

	window, err := WindowFromAvailability(availability)
	if err != nil {
		return nil, "", err
	}

	booked := make([]Interval, 0, len(appointments))
	for _, appt := range appointments {
		if !appt.Status.IsBlocking() {
			continue
		}
		iv, err := ParseInterval(appt.StartTime, appt.EndTime)
		if err != nil {
			return nil, "", err
		}
		booked = append(booked, iv)
	}

	return GenerateSlots(window, booked), "", nil
}
