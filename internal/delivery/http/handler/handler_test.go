package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-medical-appointment/internal/delivery/dto"
	"go-medical-appointment/internal/delivery/http/middleware"
	"go-medical-appointment/internal/domain/entity"
	"go-medical-appointment/internal/domain/scheduling"
	"go-medical-appointment/internal/usecase"
	"go-medical-appointment/pkg/response"
	"go-medical-appointment/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAppointmentUsecase struct {
	err         error
	lastActor   scheduling.Actor
	lastList    *dto.AppointmentListRequest
	lastStatus  *dto.UpdateAppointmentStatusRequest
	lastPatient uuid.UUID
}

func (s *stubAppointmentUsecase) CreateAppointment(_ context.Context, patientID uuid.UUID, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	s.lastPatient = patientID
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AppointmentResponse{ID: uuid.New(), PatientID: patientID, DoctorID: req.DoctorID, Status: string(entity.AppointmentStatusPending)}, nil
}

func (s *stubAppointmentUsecase) UpdateAppointmentStatus(_ context.Context, actor scheduling.Actor, id uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error) {
	s.lastActor, s.lastStatus = actor, req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AppointmentResponse{ID: id, Status: req.Status}, nil
}

func (s *stubAppointmentUsecase) GetAppointment(_ context.Context, actor scheduling.Actor, id uuid.UUID) (*dto.AppointmentResponse, error) {
	s.lastActor = actor
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AppointmentResponse{ID: id}, nil
}

func (s *stubAppointmentUsecase) GetAppointments(_ context.Context, actor scheduling.Actor, req *dto.AppointmentListRequest) (*dto.AppointmentListResponse, error) {
	s.lastActor, s.lastList = actor, req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AppointmentListResponse{Appointments: []dto.AppointmentResponse{}, Total: 21, Page: req.Page, Limit: req.Limit}, nil
}

func (s *stubAppointmentUsecase) GetUpcomingAppointments(_ context.Context, actor scheduling.Actor, _ int) ([]dto.AppointmentResponse, error) {
	s.lastActor = actor
	return []dto.AppointmentResponse{}, s.err
}

type stubAvailabilityUsecase struct {
	err      error
	lastDate string
}

func (s *stubAvailabilityUsecase) GetAvailability(context.Context, uuid.UUID) ([]dto.WeeklyAvailabilityResponse, error) {
	return []dto.WeeklyAvailabilityResponse{}, s.err
}

func (s *stubAvailabilityUsecase) SetAvailability(_ context.Context, doctorID uuid.UUID, req *dto.SetAvailabilityRequest) (*dto.WeeklyAvailabilityResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.WeeklyAvailabilityResponse{DoctorID: doctorID, DayOfWeek: *req.DayOfWeek, StartTime: req.StartTime, EndTime: req.EndTime}, nil
}

func (s *stubAvailabilityUsecase) SetBulkAvailability(context.Context, uuid.UUID, *dto.SetBulkAvailabilityRequest) ([]dto.WeeklyAvailabilityResponse, error) {
	return []dto.WeeklyAvailabilityResponse{}, s.err
}

func (s *stubAvailabilityUsecase) GetAvailableSlots(_ context.Context, doctorID uuid.UUID, date string) (*dto.AvailableSlotsResponse, error) {
	s.lastDate = date
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AvailableSlotsResponse{DoctorID: doctorID, Date: date, Slots: []dto.SlotResponse{}}, nil
}

func newLogger() (*logrus.Logger, *test.Hook) {
	return test.NewNullLogger()
}

// serve routes req through a mux router so path variables resolve
func serve(pattern, method string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc(pattern, h).Methods(method)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func asActor(req *http.Request, userID uuid.UUID, roleID int) *http.Request {
	return req.WithContext(middleware.WithActor(req.Context(), userID, roleID))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid format", err: usecase.ErrInvalidTimeRange, want: http.StatusBadRequest},
		{name: "outside availability", err: fmt.Errorf("x: %w", scheduling.ErrOutsideAvailability), want: http.StatusBadRequest},
		{name: "past date", err: scheduling.ErrPastDate, want: http.StatusBadRequest},
		{name: "transition", err: &scheduling.TransitionError{From: entity.AppointmentStatusCompleted, To: entity.AppointmentStatusAccepted}, want: http.StatusBadRequest},
		{name: "not found", err: usecase.ErrAppointmentNotFound, want: http.StatusNotFound},
		{name: "conflict", err: scheduling.ErrConflict, want: http.StatusConflict},
		{name: "stale status", err: usecase.ErrStatusChanged, want: http.StatusConflict},
		{name: "forbidden", err: usecase.ErrNotParticipant, want: http.StatusForbidden},
		{name: "unknown", err: errors.New("connection refused"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, hook := newLogger()
			rec := httptest.NewRecorder()
			writeError(rec, log, "Failed", tt.err)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusInternalServerError {
				assert.Equal(t, "Failed", decode(t, rec).Message)
				require.Len(t, hook.AllEntries(), 1)
				assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
			} else {
				assert.Empty(t, hook.AllEntries())
			}
		})
	}
}

func TestCreateAppointment(t *testing.T) {
	log, _ := newLogger()
	uc := &stubAppointmentUsecase{}
	h := NewAppointmentHandler(uc, validator.NewValidator(), log)
	patientID := uuid.New()

	valid := fmt.Sprintf(`{"doctor_id":%q,"appointment_date":"2026-10-26","start_time":"10:00","end_time":"10:30","reason":"Routine checkup"}`, uuid.New())

	t.Run("created", func(t *testing.T) {
		req := asActor(httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(valid)), patientID, entity.RoleIDPatient)
		rec := serve("/appointments", http.MethodPost, h.CreateAppointment, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, patientID, uc.lastPatient)
	})

	t.Run("validation", func(t *testing.T) {
		body := `{"doctor_id":"` + uuid.NewString() + `","appointment_date":"26-10-2026","start_time":"9am","end_time":"10:30","reason":"x"}`
		req := asActor(httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body)), patientID, entity.RoleIDPatient)
		rec := serve("/appointments", http.MethodPost, h.CreateAppointment, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		errs, ok := decode(t, rec).Error.(map[string]interface{})
		require.True(t, ok)
		assert.Contains(t, errs, "appointment_date")
		assert.Contains(t, errs, "start_time")
		assert.Contains(t, errs, "reason")
	})

	t.Run("malformed body", func(t *testing.T) {
		req := asActor(httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader("{")), patientID, entity.RoleIDPatient)
		rec := serve("/appointments", http.MethodPost, h.CreateAppointment, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("slot taken", func(t *testing.T) {
		uc.err = fmt.Errorf("10:00-10:30: %w", scheduling.ErrConflict)
		defer func() { uc.err = nil }()

		req := asActor(httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(valid)), patientID, entity.RoleIDPatient)
		rec := serve("/appointments", http.MethodPost, h.CreateAppointment, req)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		rec := serve("/appointments", http.MethodPost, h.CreateAppointment,
			httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(valid)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestUpdateAppointmentStatus(t *testing.T) {
	log, _ := newLogger()
	uc := &stubAppointmentUsecase{}
	h := NewAppointmentHandler(uc, validator.NewValidator(), log)
	doctorID := uuid.New()
	const pattern = "/appointments/{id}/status"

	t.Run("normalizes status and passes actor", func(t *testing.T) {
		path := "/appointments/" + uuid.NewString() + "/status"
		req := asActor(httptest.NewRequest(http.MethodPatch, path, strings.NewReader(`{"status":" accepted "}`)), doctorID, entity.RoleIDDoctor)
		rec := serve(pattern, http.MethodPatch, h.UpdateAppointmentStatus, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, scheduling.Actor{UserID: doctorID, Role: entity.RoleDoctor}, uc.lastActor)
		assert.Equal(t, "ACCEPTED", uc.lastStatus.Status)
	})

	t.Run("unknown status", func(t *testing.T) {
		path := "/appointments/" + uuid.NewString() + "/status"
		req := asActor(httptest.NewRequest(http.MethodPatch, path, strings.NewReader(`{"status":"DONE"}`)), doctorID, entity.RoleIDDoctor)
		rec := serve(pattern, http.MethodPatch, h.UpdateAppointmentStatus, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		req := asActor(httptest.NewRequest(http.MethodPatch, "/appointments/42/status", strings.NewReader(`{"status":"ACCEPTED"}`)), doctorID, entity.RoleIDDoctor)
		rec := serve(pattern, http.MethodPatch, h.UpdateAppointmentStatus, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid transition", func(t *testing.T) {
		uc.err = &scheduling.TransitionError{From: entity.AppointmentStatusCompleted, To: entity.AppointmentStatusAccepted}
		defer func() { uc.err = nil }()

		path := "/appointments/" + uuid.NewString() + "/status"
		req := asActor(httptest.NewRequest(http.MethodPatch, path, strings.NewReader(`{"status":"ACCEPTED"}`)), doctorID, entity.RoleIDDoctor)
		rec := serve(pattern, http.MethodPatch, h.UpdateAppointmentStatus, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "cannot change status from COMPLETED to ACCEPTED", decode(t, rec).Message)
	})

	t.Run("not owner", func(t *testing.T) {
		uc.err = fmt.Errorf("x: %w", scheduling.ErrForbidden)
		defer func() { uc.err = nil }()

		path := "/appointments/" + uuid.NewString() + "/status"
		req := asActor(httptest.NewRequest(http.MethodPatch, path, strings.NewReader(`{"status":"ACCEPTED"}`)), doctorID, entity.RoleIDDoctor)
		rec := serve(pattern, http.MethodPatch, h.UpdateAppointmentStatus, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestGetAppointments_QueryParsing(t *testing.T) {
	log, _ := newLogger()
	uc := &stubAppointmentUsecase{}
	h := NewAppointmentHandler(uc, validator.NewValidator(), log)

	url := "/appointments?status=pending,%20ACCEPTED&status=cancelled&start_date=2026-10-01&end_date=2026-10-31&sort_by=appointment_date&sort_order=asc&page=3&limit=10"
	req := asActor(httptest.NewRequest(http.MethodGet, url, nil), uuid.New(), entity.RoleIDPatient)
	rec := serve("/appointments", http.MethodGet, h.GetAppointments, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"pending", "ACCEPTED", "cancelled"}, uc.lastList.Statuses)
	assert.Equal(t, "2026-10-01", uc.lastList.StartDate)
	assert.Equal(t, "2026-10-31", uc.lastList.EndDate)
	assert.Equal(t, "asc", uc.lastList.SortOrder)
	assert.Equal(t, 3, uc.lastList.Page)

	body := decode(t, rec)
	require.NotNil(t, body.Meta)
	assert.Equal(t, int64(21), body.Meta.Total)
	assert.Equal(t, 3, body.Meta.TotalPages)
}

func TestGetAppointments_UnknownRole(t *testing.T) {
	log, _ := newLogger()
	h := NewAppointmentHandler(&stubAppointmentUsecase{}, validator.NewValidator(), log)

	req := asActor(httptest.NewRequest(http.MethodGet, "/appointments", nil), uuid.New(), 99)
	rec := serve("/appointments", http.MethodGet, h.GetAppointments, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetAvailableSlots(t *testing.T) {
	log, _ := newLogger()
	uc := &stubAvailabilityUsecase{}
	h := NewAvailabilityHandler(uc, validator.NewValidator(), log)
	const pattern = "/doctors/{id}/slots"
	path := "/doctors/" + uuid.NewString() + "/slots"

	rec := serve(pattern, http.MethodGet, h.GetAvailableSlots, httptest.NewRequest(http.MethodGet, path+"?date=2026-10-26", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2026-10-26", uc.lastDate)

	rec = serve(pattern, http.MethodGet, h.GetAvailableSlots, httptest.NewRequest(http.MethodGet, path, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	uc.err = usecase.ErrDoctorNotFound
	rec = serve(pattern, http.MethodGet, h.GetAvailableSlots, httptest.NewRequest(http.MethodGet, path+"?date=2026-10-26", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetAvailability(t *testing.T) {
	log, _ := newLogger()
	uc := &stubAvailabilityUsecase{}
	h := NewAvailabilityHandler(uc, validator.NewValidator(), log)
	doctorID := uuid.New()

	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{name: "saved", body: `{"day_of_week":1,"start_time":"09:00","end_time":"17:00"}`, want: http.StatusOK},
		{name: "sunday is a valid day", body: `{"day_of_week":0,"start_time":"09:00","end_time":"12:00"}`, want: http.StatusOK},
		{name: "missing day", body: `{"start_time":"09:00","end_time":"17:00"}`, want: http.StatusBadRequest},
		{name: "day out of range", body: `{"day_of_week":7,"start_time":"09:00","end_time":"17:00"}`, want: http.StatusBadRequest},
		{name: "bad clock", body: `{"day_of_week":1,"start_time":"24:00","end_time":"17:00"}`, want: http.StatusBadRequest},
		{name: "inverted range", body: `{"day_of_week":1,"start_time":"17:00","end_time":"09:00"}`, err: usecase.ErrInvalidTimeRange, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc.err = tt.err
			req := asActor(httptest.NewRequest(http.MethodPost, "/doctors/me/availability", strings.NewReader(tt.body)), doctorID, entity.RoleIDDoctor)
			rec := serve("/doctors/me/availability", http.MethodPost, h.SetAvailability, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
