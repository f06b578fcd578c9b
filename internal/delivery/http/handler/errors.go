package handler

import (
	"errors"
	"net/http"
	"strconv"

	"go-medical-appointment/internal/domain/scheduling"
	"go-medical-appointment/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// writeError maps usecase errors onto HTTP responses. Unknown errors are
// logged and reported as 500 without leaking their text.
func writeError(w http.ResponseWriter, log *logrus.Logger, fallback string, err error) {
	var te *scheduling.TransitionError
	switch {
	case errors.As(err, &te):
		response.BadRequest(w, te.Error())
	case errors.Is(err, scheduling.ErrInvalidFormat),
		errors.Is(err, scheduling.ErrOutsideAvailability),
		errors.Is(err, scheduling.ErrPastDate):
		response.BadRequest(w, err.Error())
	case errors.Is(err, scheduling.ErrNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, scheduling.ErrConflict):
		response.Conflict(w, err.Error())
	case errors.Is(err, scheduling.ErrForbidden):
		response.Forbidden(w, err.Error())
	default:
		log.Errorf("%s: %+v", fallback, err)
		response.InternalServerError(w, fallback)
	}
}

func pathUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	return id, err == nil
}

// queryInt returns def when the parameter is absent or not a number
func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}
