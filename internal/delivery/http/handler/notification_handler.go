package handler

import (
	"net/http"

	"go-medical-appointment/internal/delivery/http/middleware"
	"go-medical-appointment/internal/usecase"
	"go-medical-appointment/pkg/response"

	"github.com/sirupsen/logrus"
)

type NotificationHandler struct {
	notificationUsecase usecase.NotificationUsecase
	log                 *logrus.Logger
}

func NewNotificationHandler(notificationUsecase usecase.NotificationUsecase, log *logrus.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationUsecase: notificationUsecase,
		log:                 log,
	}
}

func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	result, err := h.notificationUsecase.GetNotifications(r.Context(), userID, queryInt(r, "page", 1), queryInt(r, "limit", 10))
	if err != nil {
		writeError(w, h.log, "Failed to get notifications", err)
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Notifications retrieved successfully", result,
		response.NewMeta(result.Page, result.Limit, result.Total))
}

func (h *NotificationHandler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	count, err := h.notificationUsecase.GetUnreadCount(r.Context(), userID)
	if err != nil {
		writeError(w, h.log, "Failed to get unread count", err)
		return
	}

	response.Success(w, http.StatusOK, "Unread count retrieved successfully", count)
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	notificationID, ok := pathUUID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid notification ID", nil)
		return
	}

	if err := h.notificationUsecase.MarkAsRead(r.Context(), userID, notificationID); err != nil {
		writeError(w, h.log, "Failed to mark notification as read", err)
		return
	}

	response.Success(w, http.StatusOK, "Notification marked as read", nil)
}

func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	updated, err := h.notificationUsecase.MarkAllAsRead(r.Context(), userID)
	if err != nil {
		writeError(w, h.log, "Failed to mark notifications as read", err)
		return
	}

	response.Success(w, http.StatusOK, "All notifications marked as read", map[string]int64{"updated": updated})
}

func (h *NotificationHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	notificationID, ok := pathUUID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid notification ID", nil)
		return
	}

	if err := h.notificationUsecase.DeleteNotification(r.Context(), userID, notificationID); err != nil {
		writeError(w, h.log, "Failed to delete notification", err)
		return
	}

	response.Success(w, http.StatusOK, "Notification deleted successfully", nil)
}

func (h *NotificationHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	deleted, err := h.notificationUsecase.ClearAll(r.Context(), userID)
	if err != nil {
		writeError(w, h.log, "Failed to clear notifications", err)
		return
	}

	response.Success(w, http.StatusOK, "Notifications cleared", map[string]int64{"deleted": deleted})
}
