package entity

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions recorded by the scheduling service
const (
	AuditActionUserRegister       = "user.register"
	AuditActionAppointmentCreate  = "appointment.create"
	AuditActionAppointmentStatus  = "appointment.status"
	AuditActionAvailabilityUpsert = "availability.upsert"
	AuditActionProfileUpdate      = "profile.update"
	AuditActionPasswordChange     = "user.password_change"
	AuditActionUserStatus         = "user.status"
)

// AuditLog is an append-only record of a state change. UserID is nil for
// entries written by the system itself.
type AuditLog struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action    string     `gorm:"type:varchar(100);not null;index" json:"action"`
	Metadata  JSON       `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
