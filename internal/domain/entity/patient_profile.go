package entity

import (
	"time"

	"github.com/google/uuid"
)

// Gender codes stored on patient profiles
const (
	GenderMale   = "M"
	GenderFemale = "F"
)

// PatientProfile holds the patient half of a user account, keyed by the
// user's ID. NIK is the 16 digit national identity number.
type PatientProfile struct {
	UserID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	NIK         string    `gorm:"type:char(16);uniqueIndex;not null" json:"nik"`
	PhoneNumber string    `gorm:"type:varchar(20);index" json:"phone_number,omitempty"`
	DateOfBirth time.Time `gorm:"type:date;not null" json:"date_of_birth"`
	Gender      string    `gorm:"type:char(1);not null" json:"gender"`
	Address     string    `gorm:"type:text" json:"address,omitempty"`

	User         User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Appointments []Appointment `gorm:"foreignKey:PatientID" json:"appointments,omitempty"`
}

func (PatientProfile) TableName() string {
	return "patient_profiles"
}

// AgeOn returns the patient's age in whole years on the given day
func (p *PatientProfile) AgeOn(day time.Time) int {
	if p.DateOfBirth.IsZero() {
		return 0
	}
	age := day.Year() - p.DateOfBirth.Year()
	if day.Month() < p.DateOfBirth.Month() ||
		(day.Month() == p.DateOfBirth.Month() && day.Day() < p.DateOfBirth.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}
