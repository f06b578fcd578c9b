package service

import (
	"context"

	"go-medical-appointment/internal/domain/entity"
	"go-medical-appointment/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// NotificationSink delivers an in-app message to a user.
// Delivery is best effort: failures are logged and never reach the caller.
type NotificationSink interface {
	Notify(ctx context.Context, userID uuid.UUID, title, message, category string, metadata entity.JSON)
}

type notificationService struct {
	db               *gorm.DB
	log              *logrus.Logger
	notificationRepo repository.NotificationRepository
}

func NewNotificationService(db *gorm.DB, log *logrus.Logger, notificationRepo repository.NotificationRepository) NotificationSink {
	return &notificationService{
		db:               db,
		log:              log,
		notificationRepo: notificationRepo,
	}
}

func (s *notificationService) Notify(ctx context.Context, userID uuid.UUID, title, message, category string, metadata entity.JSON) {
	if category == "" {
		category = entity.NotificationTypeSystem
	}

	notification := &entity.Notification{
		UserID:   userID,
		Title:    title,
		Message:  message,
		Type:     category,
		Metadata: metadata,
	}

	if err := s.notificationRepo.Create(s.db.WithContext(ctx), notification); err != nil {
		s.log.WithFields(logrus.Fields{
			"user_id": userID,
			"title":   title,
		}).Warnf("Failed to create notification: %+v", err)
		return
	}

	s.log.Debugf("Notification %s sent to user %s", notification.ID, userID)
}
