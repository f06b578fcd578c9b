package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "PENDING"
	AppointmentStatusAccepted  AppointmentStatus = "ACCEPTED"
	AppointmentStatusRejected  AppointmentStatus = "REJECTED"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
)

// AppointmentStatuses lists every status in lifecycle order
var AppointmentStatuses = []AppointmentStatus{
	AppointmentStatusPending,
	AppointmentStatusAccepted,
	AppointmentStatusRejected,
	AppointmentStatusCompleted,
	AppointmentStatusCancelled,
}

// allowedTransitions is the appointment state machine
var allowedTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusPending:   {AppointmentStatusAccepted, AppointmentStatusRejected, AppointmentStatusCancelled},
	AppointmentStatusAccepted:  {AppointmentStatusCompleted, AppointmentStatusCancelled},
	AppointmentStatusRejected:  {},
	AppointmentStatusCompleted: {},
	AppointmentStatusCancelled: {},
}

// IsValid reports whether s is one of the known statuses
func (s AppointmentStatus) IsValid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// IsBlocking reports whether an appointment in this status occupies its interval
func (s AppointmentStatus) IsBlocking() bool {
	return s == AppointmentStatusPending || s == AppointmentStatusAccepted
}

// IsTerminal reports whether no further transitions are possible
func (s AppointmentStatus) IsTerminal() bool {
	return s.IsValid() && len(allowedTransitions[s]) == 0
}

// CanTransitionTo checks the transition table
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// BlockingStatuses are the statuses that participate in conflict checks
var BlockingStatuses = []AppointmentStatus{AppointmentStatusPending, AppointmentStatusAccepted}

// Appointment is a booking between one patient and one doctor for one
// contiguous interval on one calendar date. Times are naive "HH:mm".
type Appointment struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DoctorID        uuid.UUID         `gorm:"type:uuid;not null;index:idx_appointments_doctor_date" json:"doctor_id"`
	PatientID       uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	AppointmentDate time.Time         `gorm:"type:date;not null;index:idx_appointments_doctor_date" json:"appointment_date"`
	StartTime       string            `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime         string            `gorm:"type:varchar(5);not null" json:"end_time"`
	Status          AppointmentStatus `gorm:"type:appointment_status;not null;default:'PENDING';index" json:"status"`
	Reason          string            `gorm:"type:text;not null" json:"reason"`
	Notes           *string           `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Doctor  DoctorProfile  `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Patient PatientProfile `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsOwnedByPatient checks if the patient booked this appointment
func (a *Appointment) IsOwnedByPatient(patientID uuid.UUID) bool {
	return a.PatientID == patientID
}

// IsOwnedByDoctor checks if the appointment is with this doctor
func (a *Appointment) IsOwnedByDoctor(doctorID uuid.UUID) bool {
	return a.DoctorID == doctorID
}
