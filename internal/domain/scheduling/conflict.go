package scheduling

import (
	"fmt"
	"time"

	"go-medical-appointment/internal/domain/entity"
	"go-medical-appointment/pkg/timeutil"
)

// BookedInterval is an existing appointment's interval and status on the
// same doctor and date as the candidate
type BookedInterval struct {
	Interval
	Status entity.AppointmentStatus
}

// BookedIntervalsFrom extracts intervals from stored appointments
func BookedIntervalsFrom(appointments []entity.Appointment) ([]BookedInterval, error) {
	out := make([]BookedInterval, 0, len(appointments))
	for _, appt := range appointments {
		iv, err := ParseInterval(appt.StartTime, appt.EndTime)
		if err != nil {
			return nil, fmt.Errorf("appointment %s: %w", appt.ID, err)
		}
		out = append(out, BookedInterval{Interval: iv, Status: appt.Status})
	}
	return out, nil
}

// HasConflict reports whether the candidate overlaps any PENDING or ACCEPTED
// interval. Intervals in other statuses never block.
func HasConflict(candidate Interval, existing []BookedInterval) bool {
	for _, e := range existing {
		if !e.Status.IsBlocking() {
			continue
		}
		if overlapsByCase(candidate, e.Interval) {
			return true
		}
	}
	return false
}

// overlapsByCase decomposes the overlap test into the three ways a candidate
// can collide with an existing booking. For non-empty intervals it agrees with
// Interval.Overlaps.
func overlapsByCase(candidate, existing Interval) bool {
	startsInside := existing.Start <= candidate.Start && existing.End > candidate.Start
	endsInside := existing.Start < candidate.End && existing.End >= candidate.End
	contains := existing.Start >= candidate.Start && existing.End <= candidate.End
	return startsInside || endsInside || contains
}

// ValidateBooking checks a candidate against the calendar and the doctor's
// weekday window. The date check runs first so a past date is reported even
// when the interval would otherwise fit.
func ValidateBooking(date time.Time, candidate Interval, availability *entity.WeeklyAvailability, now time.Time) error {
	if timeutil.IsPastDate(date, now) {
		return ErrPastDate
	}

	if availability == nil || !availability.IsActive {
		return fmt.Errorf("doctor is not available on %s: %w", entity.DayOfWeek(timeutil.DayOfWeek(date)), ErrOutsideAvailability)
	}

	window, err := ParseInterval(availability.StartTime, availability.EndTime)
	if err != nil {
		return err
	}
	if candidate.Start < window.Start || candidate.End > window.End {
		return fmt.Errorf("%s-%s is outside %s-%s: %w",
			timeutil.MinutesToTime(candidate.Start), timeutil.MinutesToTime(candidate.End),
			availability.StartTime, availability.EndTime, ErrOutsideAvailability)
	}
	return nil
}
