package repository

import (
	"go-medical-appointment/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(db *gorm.DB, notification *entity.Notification) error
	FindByUserID(db *gorm.DB, userID uuid.UUID, limit, offset int) ([]entity.Notification, error)
	CountByUserID(db *gorm.DB, userID uuid.UUID) (int64, error)
	CountUnread(db *gorm.DB, userID uuid.UUID) (int64, error)
	MarkAsRead(db *gorm.DB, id, userID uuid.UUID) (int64, error)
	MarkAllAsRead(db *gorm.DB, userID uuid.UUID) (int64, error)
	Delete(db *gorm.DB, id, userID uuid.UUID) (int64, error)
	DeleteAllByUserID(db *gorm.DB, userID uuid.UUID) (int64, error)
}
