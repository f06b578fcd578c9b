package scheduling

import (
	"fmt"

	"go-medical-appointment/internal/domain/entity"

	"github.com/google/uuid"
)

// Actor is the authenticated user requesting an operation
type Actor struct {
	UserID uuid.UUID
	Role   string
}

func (a Actor) IsAdmin() bool   { return a.Role == entity.RoleAdmin }
func (a Actor) IsDoctor() bool  { return a.Role == entity.RoleDoctor }
func (a Actor) IsPatient() bool { return a.Role == entity.RolePatient }

// CanAccess reports whether the actor may see the appointment
func CanAccess(appt *entity.Appointment, actor Actor) bool {
	switch actor.Role {
	case entity.RoleAdmin:
		return true
	case entity.RoleDoctor:
		return appt.IsOwnedByDoctor(actor.UserID)
	case entity.RolePatient:
		return appt.IsOwnedByPatient(actor.UserID)
	}
	return false
}

// statuses each role may request; admins are not restricted by role
var roleRequestable = map[string][]entity.AppointmentStatus{
	entity.RolePatient: {entity.AppointmentStatusCancelled},
	entity.RoleDoctor: {
		entity.AppointmentStatusAccepted,
		entity.AppointmentStatusRejected,
		entity.AppointmentStatusCompleted,
	},
}

func roleMayRequest(role string, to entity.AppointmentStatus) bool {
	if role == entity.RoleAdmin {
		return true
	}
	for _, s := range roleRequestable[role] {
		if s == to {
			return true
		}
	}
	return false
}

// AuthorizeTransition validates a requested status change.
//
// Order: ownership (ErrForbidden), transition table (*TransitionError), then
// role permission (ErrForbidden). A pair missing from the table is always
// an invalid transition, whatever the role.
func AuthorizeTransition(appt *entity.Appointment, actor Actor, to entity.AppointmentStatus) error {
	if !CanAccess(appt, actor) {
		return fmt.Errorf("appointment %s does not belong to %s %s: %w", appt.ID, actor.Role, actor.UserID, ErrForbidden)
	}

	if !appt.Status.CanTransitionTo(to) {
		return &TransitionError{From: appt.Status, To: to}
	}

	if !roleMayRequest(actor.Role, to) {
		return fmt.Errorf("%s cannot set status %s: %w", actor.Role, to, ErrForbidden)
	}
	return nil
}

// Recipient identifies who is told about a successful transition
type Recipient int

const (
	RecipientNone Recipient = iota
	RecipientPatient
	RecipientDoctor
)

// NotificationRecipient decides who hears about a transition: doctor
// decisions go to the patient, patient cancellations go to the doctor.
func NotificationRecipient(actorRole string, to entity.AppointmentStatus) Recipient {
	switch {
	case actorRole == entity.RoleDoctor && (to == entity.AppointmentStatusAccepted ||
		to == entity.AppointmentStatusRejected || to == entity.AppointmentStatusCompleted):
		return RecipientPatient
	case actorRole == entity.RolePatient && to == entity.AppointmentStatusCancelled:
		return RecipientDoctor
	}
	return RecipientNone
}

// ApplyTransition sets the new status and keeps prior notes unless new ones are given
func ApplyTransition(appt *entity.Appointment, to entity.AppointmentStatus, notes *string) {
	appt.Status = to
	if notes != nil && *notes != "" {
		n := *notes
		appt.Notes = &n
	}
}
