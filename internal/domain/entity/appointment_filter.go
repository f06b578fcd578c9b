package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentFilter is a domain-level filter for querying appointments.
// Used by repository layer to avoid coupling with delivery DTOs.
type AppointmentFilter struct {
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
	Statuses  []AppointmentStatus
	StartDate *time.Time // inclusive
	EndDate   *time.Time // inclusive
	SortBy    string     // appointmentDate, createdAt, status
	SortOrder string     // asc, desc
	Limit     int
	Offset    int
}

// DoctorFilter is a domain-level filter for listing doctors
type DoctorFilter struct {
	Search         string // name, email or specialization (ILIKE)
	Specialization string // ILIKE
	Limit          int
	Offset         int
}
