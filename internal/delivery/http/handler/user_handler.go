package handler

import (
	"errors"
	"net/http"

	"go-medical-appointment/internal/delivery/http/middleware"
	"go-medical-appointment/internal/usecase"
	"go-medical-appointment/pkg/response"

	"github.com/sirupsen/logrus"
)

type UserHandler struct {
	userUsecase usecase.UserUsecase
	log         *logrus.Logger
}

func NewUserHandler(userUsecase usecase.UserUsecase, log *logrus.Logger) *UserHandler {
	return &UserHandler{
		userUsecase: userUsecase,
		log:         log,
	}
}

// ToggleStatus enables or disables the account in {id}. With a role, only
// accounts of that role match.
func (h *UserHandler) ToggleStatus(role string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			response.Unauthorized(w, "Invalid token")
			return
		}

		userID, ok := pathUUID(r, "id")
		if !ok {
			response.Error(w, http.StatusBadRequest, "Invalid user ID", nil)
			return
		}

		user, err := h.userUsecase.ToggleStatus(r.Context(), actorID, userID, role)
		if err != nil {
			if errors.Is(err, usecase.ErrUserNotFound) {
				response.NotFound(w, "User not found")
				return
			}
			writeError(w, h.log, "Failed to update user status", err)
			return
		}

		message := "User deactivated successfully"
		if user.IsActive {
			message = "User activated successfully"
		}
		response.Success(w, http.StatusOK, message, user)
	}
}
