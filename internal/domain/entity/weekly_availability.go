package entity

import (
	"time"

	"github.com/google/uuid"
)

// DayOfWeek is a weekday number, 0=Sunday .. 6=Saturday
type DayOfWeek int

const (
	Sunday DayOfWeek = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var dayNames = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// IsValid reports whether d is within 0..6
func (d DayOfWeek) IsValid() bool {
	return d >= Sunday && d <= Saturday
}

func (d DayOfWeek) String() string {
	if !d.IsValid() {
		return "Unknown"
	}
	return dayNames[d]
}

// DefaultSlotDuration is used when a window is declared without a slot size
const DefaultSlotDuration = 30

// WeeklyAvailability is a doctor's declared working window for one weekday.
// (DoctorID, DayOfWeek) is unique; writes are insert-or-replace.
// No gorm defaults on SlotDuration or IsActive: a false flag must reach the insert.
type WeeklyAvailability struct {
	ID           int       `gorm:"primaryKey;autoIncrement" json:"id"`
	DoctorID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_weekly_availability_doctor_day" json:"doctor_id"`
	DayOfWeek    DayOfWeek `gorm:"type:smallint;not null;uniqueIndex:idx_weekly_availability_doctor_day" json:"day_of_week"`
	StartTime    string    `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime      string    `gorm:"type:varchar(5);not null" json:"end_time"`
	SlotDuration int       `gorm:"not null" json:"slot_duration"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WeeklyAvailability) TableName() string {
	return "weekly_availabilities"
}
