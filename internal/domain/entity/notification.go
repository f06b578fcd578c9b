package entity

import (
	"time"

	"github.com/google/uuid"
)

// Notification categories
const (
	NotificationTypeAppointment = "appointment"
	NotificationTypeSystem      = "system"
)

// Notification is an in-app message addressed to a single user
type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Type      string    `gorm:"type:varchar(50);not null;default:'system'" json:"type"`
	Metadata  JSON      `gorm:"type:jsonb" json:"metadata,omitempty"`
	IsRead    bool      `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
