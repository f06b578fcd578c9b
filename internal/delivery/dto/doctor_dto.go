package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DoctorProfileResponse is the doctor part of a user profile
type DoctorProfileResponse struct {
	STRNumber       string          `json:"str_number"`
	Specialization  string          `json:"specialization"`
	Biography       string          `json:"biography,omitempty"`
	ConsultationFee decimal.Decimal `json:"consultation_fee"`
	ExperienceYears int             `json:"experience_years"`
}

type DoctorResponse struct {
	ID              uuid.UUID                    `json:"id"`
	Email           string                       `json:"email"`
	FullName        string                       `json:"full_name"`
	STRNumber       string                       `json:"str_number"`
	Specialization  string                       `json:"specialization"`
	Biography       string                       `json:"biography,omitempty"`
	ConsultationFee decimal.Decimal              `json:"consultation_fee"`
	ExperienceYears int                          `json:"experience_years"`
	IsActive        *bool                        `json:"is_active"`
	Availability    []WeeklyAvailabilityResponse `json:"availability,omitempty"`
}

// UpdateDoctorProfileRequest carries the fields a doctor may edit; nil
// fields are left unchanged.
type UpdateDoctorProfileRequest struct {
	FullName        *string          `json:"full_name" validate:"omitempty,min=2"`
	Specialization  *string          `json:"specialization" validate:"omitempty,min=2"`
	Biography       *string          `json:"biography" validate:"omitempty"`
	ConsultationFee *decimal.Decimal `json:"consultation_fee" validate:"omitempty"`
	ExperienceYears *int             `json:"experience_years" validate:"omitempty,gte=0,lte=70"`
}

type DoctorListRequest struct {
	Search         string
	Specialization string
	Page           int
	Limit          int
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	Limit   int              `json:"limit"`
}
