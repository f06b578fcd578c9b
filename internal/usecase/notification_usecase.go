package usecase

import (
	"context"
	"fmt"

	"go-medical-appointment/internal/converter"
	"go-medical-appointment/internal/delivery/dto"
	"go-medical-appointment/internal/domain/repository"
	"go-medical-appointment/internal/domain/scheduling"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	ErrNotificationNotFound = fmt.Errorf("notification %w", scheduling.ErrNotFound)
)

// NotificationUsecase reads and manages a user's own notifications. Every
// operation is scoped to userID; other users' rows are reported as not found.
type NotificationUsecase interface {
	GetNotifications(ctx context.Context, userID uuid.UUID, page, limit int) (*dto.NotificationListResponse, error)
	GetUnreadCount(ctx context.Context, userID uuid.UUID) (*dto.UnreadCountResponse, error)
	MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteNotification(ctx context.Context, userID, notificationID uuid.UUID) error
	ClearAll(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	notificationRepo repository.NotificationRepository
}

func NewNotificationUsecase(db *gorm.DB, log *logrus.Logger, notificationRepo repository.NotificationRepository) NotificationUsecase {
	return &notificationUsecase{
		db:               db,
		log:              log,
		notificationRepo: notificationRepo,
	}
}

func (u *notificationUsecase) GetNotifications(ctx context.Context, userID uuid.UUID, page, limit int) (*dto.NotificationListResponse, error) {
	page, limit, offset := normalizePage(page, limit)

	response := &dto.NotificationListResponse{Page: page, Limit: limit}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := u.notificationRepo.FindByUserID(u.db.WithContext(gctx), userID, limit, offset)
		if err != nil {
			return err
		}
		response.Notifications = converter.NotificationsToResponses(list)
		return nil
	})
	g.Go(func() error {
		var err error
		response.Total, err = u.notificationRepo.CountByUserID(u.db.WithContext(gctx), userID)
		return err
	})
	g.Go(func() error {
		var err error
		response.Unread, err = u.notificationRepo.CountUnread(u.db.WithContext(gctx), userID)
		return err
	})
	if err := g.Wait(); err != nil {
		u.log.Warnf("Failed to find notifications for user %s: %+v", userID, err)
		return nil, err
	}
	return response, nil
}

func (u *notificationUsecase) GetUnreadCount(ctx context.Context, userID uuid.UUID) (*dto.UnreadCountResponse, error) {
	count, err := u.notificationRepo.CountUnread(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to count unread notifications for user %s: %+v", userID, err)
		return nil, err
	}
	return &dto.UnreadCountResponse{Count: count}, nil
}

func (u *notificationUsecase) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	affected, err := u.notificationRepo.MarkAsRead(u.db.WithContext(ctx), notificationID, userID)
	if err != nil {
		u.log.Warnf("Failed to mark notification %s as read: %+v", notificationID, err)
		return err
	}
	if affected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (u *notificationUsecase) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	affected, err := u.notificationRepo.MarkAllAsRead(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to mark notifications as read for user %s: %+v", userID, err)
		return 0, err
	}
	return affected, nil
}

func (u *notificationUsecase) DeleteNotification(ctx context.Context, userID, notificationID uuid.UUID) error {
	affected, err := u.notificationRepo.Delete(u.db.WithContext(ctx), notificationID, userID)
	if err != nil {
		u.log.Warnf("Failed to delete notification %s: %+v", notificationID, err)
		return err
	}
	if affected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (u *notificationUsecase) ClearAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	affected, err := u.notificationRepo.DeleteAllByUserID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to clear notifications for user %s: %+v", userID, err)
		return 0, err
	}
	return affected, nil
}
