package scheduling

import (
	"errors"
	"fmt"

	"go-medical-appointment/internal/domain/entity"
	"go-medical-appointment/pkg/timeutil"
)

// Error kinds surfaced to callers. Every kind is recoverable; the delivery
// layer maps them to responses. Usecases wrap these with more specific
// sentinels, so match with errors.Is.
var (
	ErrInvalidFormat       = timeutil.ErrInvalidFormat
	ErrNotFound            = errors.New("not found")
	ErrOutsideAvailability = errors.New("outside doctor availability")
	ErrPastDate            = errors.New("appointment date is in the past")
	ErrConflict            = errors.New("time slot is already booked")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidTransition   = errors.New("invalid status transition")
)

// TransitionError names the rejected status change
type TransitionError struct {
	From entity.AppointmentStatus
	To   entity.AppointmentStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot change status from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
