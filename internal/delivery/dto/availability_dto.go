package dto

import (
	"github.com/google/uuid"
)

// Request DTOs

type SetAvailabilityRequest struct {
	DayOfWeek    *int   `json:"day_of_week" validate:"required,gte=0,lte=6"`
	StartTime    string `json:"start_time" validate:"required,hhmm"`
	EndTime      string `json:"end_time" validate:"required,hhmm"`
	SlotDuration int    `json:"slot_duration" validate:"omitempty,min=15,max=120"`
	IsActive     *bool  `json:"is_active" validate:"omitempty"`
}

type SetBulkAvailabilityRequest struct {
	Availability []SetAvailabilityRequest `json:"availability" validate:"required,min=1,max=7,dive"`
}

// Response DTOs

type WeeklyAvailabilityResponse struct {
	ID           int       `json:"id"`
	DoctorID     uuid.UUID `json:"doctor_id"`
	DayOfWeek    int       `json:"day_of_week"`
	DayName      string    `json:"day_name"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	SlotDuration int       `json:"slot_duration"`
	IsActive     bool      `json:"is_active"`
}

type SlotResponse struct {
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsAvailable bool   `json:"is_available"`
}

type AvailableSlotsResponse struct {
	DoctorID     uuid.UUID      `json:"doctor_id"`
	Date         string         `json:"date"`
	DayOfWeek    int            `json:"day_of_week"`
	SlotDuration int            `json:"slot_duration,omitempty"`
	Slots        []SlotResponse `json:"slots"`
	Message      string         `json:"message,omitempty"`
}
