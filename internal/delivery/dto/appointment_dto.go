package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateAppointmentRequest struct {
	DoctorID        uuid.UUID `json:"doctor_id" validate:"required"`
	AppointmentDate string    `json:"appointment_date" validate:"required,ymd"`
	StartTime       string    `json:"start_time" validate:"required,hhmm"`
	EndTime         string    `json:"end_time" validate:"required,hhmm"`
	Reason          string    `json:"reason" validate:"required,min=5,max=500"`
}

type UpdateAppointmentStatusRequest struct {
	Status string  `json:"status" validate:"required,oneof=PENDING ACCEPTED REJECTED COMPLETED CANCELLED"`
	Notes  *string `json:"notes" validate:"omitempty,max=1000"`
}

// AppointmentListRequest carries query-string filters; dates are YYYY-MM-DD
type AppointmentListRequest struct {
	Statuses  []string
	StartDate string
	EndDate   string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// Response DTOs

type AppointmentParticipant struct {
	ID             uuid.UUID `json:"id"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email,omitempty"`
	Specialization string    `json:"specialization,omitempty"`
	PhoneNumber    string    `json:"phone_number,omitempty"`
}

type AppointmentResponse struct {
	ID              uuid.UUID               `json:"id"`
	DoctorID        uuid.UUID               `json:"doctor_id"`
	PatientID       uuid.UUID               `json:"patient_id"`
	AppointmentDate string                  `json:"appointment_date"`
	StartTime       string                  `json:"start_time"`
	EndTime         string                  `json:"end_time"`
	Status          string                  `json:"status"`
	Reason          string                  `json:"reason"`
	Notes           *string                 `json:"notes,omitempty"`
	Doctor          *AppointmentParticipant `json:"doctor,omitempty"`
	Patient         *AppointmentParticipant `json:"patient,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int64                 `json:"total"`
	Page         int                   `json:"page"`
	Limit        int                   `json:"limit"`
}
