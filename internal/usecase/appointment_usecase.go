package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-medical-appointment/internal/converter"
	"go-medical-appointment/internal/delivery/dto"
	"go-medical-appointment/internal/domain/entity"
	"go-medical-appointment/internal/domain/repository"
	"go-medical-appointment/internal/domain/scheduling"
	"go-medical-appointment/internal/observability/metrics"
	"go-medical-appointment/internal/service"
	"go-medical-appointment/pkg/timeutil"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	ErrPatientNotFound     = fmt.Errorf("patient %w", scheduling.ErrNotFound)
	ErrAppointmentNotFound = fmt.Errorf("appointment %w", scheduling.ErrNotFound)
	ErrInvalidStatus       = fmt.Errorf("unknown appointment status: %w", scheduling.ErrInvalidFormat)
	ErrStatusChanged       = fmt.Errorf("appointment status changed concurrently, reload and retry: %w", scheduling.ErrConflict)
	ErrNotParticipant      = fmt.Errorf("not authorized to view this appointment: %w", scheduling.ErrForbidden)
)

const defaultUpcomingLimit = 5

// slotUniqueIndex backs the conflict check at the database level
const slotUniqueIndex = "idx_appointments_active_slot"

var statusVerbs = map[entity.AppointmentStatus]string{
	entity.AppointmentStatusAccepted:  "accepted",
	entity.AppointmentStatusRejected:  "rejected",
	entity.AppointmentStatusCompleted: "marked as completed",
	entity.AppointmentStatusCancelled: "cancelled",
}

type AppointmentUsecase interface {
	CreateAppointment(ctx context.Context, patientID uuid.UUID, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	UpdateAppointmentStatus(ctx context.Context, actor scheduling.Actor, appointmentID uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error)
	GetAppointment(ctx context.Context, actor scheduling.Actor, appointmentID uuid.UUID) (*dto.AppointmentResponse, error)
	GetAppointments(ctx context.Context, actor scheduling.Actor, req *dto.AppointmentListRequest) (*dto.AppointmentListResponse, error)
	GetUpcomingAppointments(ctx context.Context, actor scheduling.Actor, limit int) ([]dto.AppointmentResponse, error)
}

type appointmentUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	appointmentRepo  repository.AppointmentRepository
	availabilityRepo repository.WeeklyAvailabilityRepository
	doctorRepo       repository.DoctorProfileRepository
	patientRepo      repository.PatientProfileRepository
	locker           *service.BookingLocker
	notifier         service.NotificationSink
	auditService     service.AuditService
	metrics          *metrics.BookingMetrics

	// Now is the clock; tests replace it
	Now func() time.Time
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	availabilityRepo repository.WeeklyAvailabilityRepository,
	doctorRepo repository.DoctorProfileRepository,
	patientRepo repository.PatientProfileRepository,
	locker *service.BookingLocker,
	notifier service.NotificationSink,
	auditService service.AuditService,
	bookingMetrics *metrics.BookingMetrics,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:               db,
		log:              log,
		appointmentRepo:  appointmentRepo,
		availabilityRepo: availabilityRepo,
		doctorRepo:       doctorRepo,
		patientRepo:      patientRepo,
		locker:           locker,
		notifier:         notifier,
		auditService:     auditService,
		metrics:          bookingMetrics,
		Now:              time.Now,
	}
}

// CreateAppointment books [start, end) with a doctor on a date.
//
// Flow:
// 1. Resolve patient and doctor profiles
// 2. Parse and validate the request against the calendar and the doctor's weekday window
// 3. Under the (doctor, date) lock: list blocking appointments, detect overlap, insert
// 4. Audit, notify the doctor, reload with participants
func (u *appointmentUsecase) CreateAppointment(ctx context.Context, patientID uuid.UUID, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	appointment, err := u.book(ctx, patientID, req)
	u.metrics.ObserveBooking(bookingResult(err))
	if err != nil {
		return nil, err
	}

	metadata := entity.JSON{"appointment_id": appointment.ID.String()}
	if err := u.auditService.LogCreate(ctx, u.db, &patientID, entity.AuditActionAppointmentCreate, "appointment", appointment.ID.String(), converter.AppointmentToResponse(appointment)); err != nil {
		u.log.Warnf("Failed to audit appointment %s: %+v", appointment.ID, err)
	}

	u.notifier.Notify(ctx, appointment.DoctorID,
		"New Appointment Request",
		fmt.Sprintf("%s has requested an appointment on %s at %s", appointment.Patient.User.FullName, req.AppointmentDate, req.StartTime),
		entity.NotificationTypeAppointment, metadata)

	full, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointment.ID)
	if err != nil || full == nil {
		u.log.Warnf("Failed to reload appointment %s: %+v", appointment.ID, err)
		return converter.AppointmentToResponse(appointment), nil
	}

	u.log.Infof("Appointment created: id=%s, doctor=%s, date=%s, %s-%s", appointment.ID, appointment.DoctorID, req.AppointmentDate, req.StartTime, req.EndTime)
	return converter.AppointmentToResponse(full), nil
}

func (u *appointmentUsecase) book(ctx context.Context, patientID uuid.UUID, req *dto.CreateAppointmentRequest) (*entity.Appointment, error) {
	patient, err := u.patientRepo.FindByUserID(u.db.WithContext(ctx), patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", patientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	doctor, err := u.doctorRepo.FindByUserID(u.db.WithContext(ctx), req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", req.DoctorID, err)
		return nil, err
	}
	if doctor == nil || !doctor.User.Active() {
		return nil, ErrDoctorNotFound
	}

	date, err := timeutil.ParseDate(req.AppointmentDate)
	if err != nil {
		return nil, err
	}
	candidate, err := scheduling.ParseInterval(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if candidate.Start >= candidate.End {
		return nil, ErrInvalidTimeRange
	}

	weekday := entity.DayOfWeek(timeutil.DayOfWeek(date))
	availability, err := u.availabilityRepo.FindByDoctorAndDay(u.db.WithContext(ctx), doctor.UserID, weekday)
	if err != nil {
		u.log.Warnf("Failed to find availability for doctor %s on %s: %+v", doctor.UserID, weekday, err)
		return nil, err
	}
	if err := scheduling.ValidateBooking(date, candidate, availability, u.Now()); err != nil {
		return nil, err
	}

	waitStart := time.Now()
	unlock := u.locker.Lock(doctor.UserID, date)
	defer unlock()
	u.metrics.ObserveLockWait(time.Since(waitStart).Seconds())

	existing, err := u.appointmentRepo.FindActiveByDoctorAndDate(u.db.WithContext(ctx), doctor.UserID, date)
	if err != nil {
		u.log.Warnf("Failed to find appointments for doctor %s on %s: %+v", doctor.UserID, req.AppointmentDate, err)
		return nil, err
	}
	booked, err := scheduling.BookedIntervalsFrom(existing)
	if err != nil {
		u.log.Errorf("Corrupt appointment data for doctor %s on %s: %+v", doctor.UserID, req.AppointmentDate, err)
		return nil, err
	}
	if scheduling.HasConflict(candidate, booked) {
		return nil, scheduling.ErrConflict
	}

	appointment := &entity.Appointment{
		DoctorID:        doctor.UserID,
		PatientID:       patient.UserID,
		AppointmentDate: date,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Status:          entity.AppointmentStatusPending,
		Reason:          strings.TrimSpace(req.Reason),
	}
	if err := u.appointmentRepo.Create(u.db.WithContext(ctx), appointment); err != nil {
		if isDuplicateKeyError(err, slotUniqueIndex) {
			return nil, scheduling.ErrConflict
		}
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}

	appointment.Doctor = *doctor
	appointment.Patient = *patient
	return appointment, nil
}

// UpdateAppointmentStatus applies a lifecycle transition requested by actor.
// The write is conditional on the status read, so concurrent transitions of
// the same appointment cannot both succeed.
func (u *appointmentUsecase) UpdateAppointmentStatus(ctx context.Context, actor scheduling.Actor, appointmentID uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error) {
	to := entity.AppointmentStatus(req.Status)
	if !to.IsValid() {
		return nil, ErrInvalidStatus
	}

	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	if err := scheduling.AuthorizeTransition(appointment, actor, to); err != nil {
		return nil, err
	}

	from := appointment.Status
	affected, err := u.appointmentRepo.UpdateStatus(u.db.WithContext(ctx), appointmentID, from, to, req.Notes)
	if err != nil {
		u.log.Warnf("Failed to update appointment %s status: %+v", appointmentID, err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrStatusChanged
	}

	scheduling.ApplyTransition(appointment, to, req.Notes)
	u.metrics.ObserveTransition(string(from), string(to))

	if err := u.auditService.LogUpdate(ctx, u.db, &actor.UserID, entity.AuditActionAppointmentStatus, "appointment", appointmentID.String(),
		entity.JSON{"status": from}, entity.JSON{"status": to, "notes": appointment.Notes}); err != nil {
		u.log.Warnf("Failed to audit appointment %s status change: %+v", appointmentID, err)
	}

	u.notifyTransition(ctx, actor, appointment)

	u.log.Infof("Appointment %s: %s -> %s by %s %s", appointmentID, from, to, actor.Role, actor.UserID)
	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) notifyTransition(ctx context.Context, actor scheduling.Actor, appointment *entity.Appointment) {
	metadata := entity.JSON{"appointment_id": appointment.ID.String(), "status": string(appointment.Status)}

	switch scheduling.NotificationRecipient(actor.Role, appointment.Status) {
	case scheduling.RecipientPatient:
		verb := statusVerbs[appointment.Status]
		u.notifier.Notify(ctx, appointment.PatientID,
			"Appointment "+verb,
			fmt.Sprintf("Your appointment with Dr. %s on %s at %s has been %s.",
				appointment.Doctor.User.FullName, timeutil.FormatDate(appointment.AppointmentDate), appointment.StartTime, verb),
			entity.NotificationTypeAppointment, metadata)
	case scheduling.RecipientDoctor:
		u.notifier.Notify(ctx, appointment.DoctorID,
			"Appointment Cancelled",
			fmt.Sprintf("%s has cancelled their appointment on %s at %s.",
				appointment.Patient.User.FullName, timeutil.FormatDate(appointment.AppointmentDate), appointment.StartTime),
			entity.NotificationTypeAppointment, metadata)
	}
}

func (u *appointmentUsecase) GetAppointment(ctx context.Context, actor scheduling.Actor, appointmentID uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if !scheduling.CanAccess(appointment, actor) {
		return nil, ErrNotParticipant
	}
	return converter.AppointmentToResponse(appointment), nil
}

// GetAppointments lists appointments visible to actor: patients and doctors see
// their own, admins see all.
func (u *appointmentUsecase) GetAppointments(ctx context.Context, actor scheduling.Actor, req *dto.AppointmentListRequest) (*dto.AppointmentListResponse, error) {
	filter, err := appointmentFilterFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := scopeFilter(filter, actor); err != nil {
		return nil, err
	}

	page, limit, offset := normalizePage(req.Page, req.Limit)
	filter.Limit, filter.Offset = limit, offset

	var (
		appointments []entity.Appointment
		total        int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		appointments, err = u.appointmentRepo.FindAll(u.db.WithContext(gctx), filter)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = u.appointmentRepo.Count(u.db.WithContext(gctx), filter)
		return err
	})
	if err := g.Wait(); err != nil {
		u.log.Warnf("Failed to list appointments for %s %s: %+v", actor.Role, actor.UserID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        total,
		Page:         page,
		Limit:        limit,
	}, nil
}

// GetUpcomingAppointments returns the next PENDING or ACCEPTED appointments from today on
func (u *appointmentUsecase) GetUpcomingAppointments(ctx context.Context, actor scheduling.Actor, limit int) ([]dto.AppointmentResponse, error) {
	if limit < 1 || limit > maxPageLimit {
		limit = defaultUpcomingLimit
	}

	today := timeutil.DateOf(u.Now())
	filter := &entity.AppointmentFilter{
		Statuses:  entity.BlockingStatuses,
		StartDate: &today,
		SortBy:    "appointmentDate",
		SortOrder: "asc",
		Limit:     limit,
	}
	if err := scopeFilter(filter, actor); err != nil {
		return nil, err
	}

	appointments, err := u.appointmentRepo.FindAll(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to list upcoming appointments for %s %s: %+v", actor.Role, actor.UserID, err)
		return nil, err
	}
	return converter.AppointmentsToResponses(appointments), nil
}

func scopeFilter(filter *entity.AppointmentFilter, actor scheduling.Actor) error {
	switch actor.Role {
	case entity.RoleAdmin:
	case entity.RoleDoctor:
		filter.DoctorID = &actor.UserID
	case entity.RolePatient:
		filter.PatientID = &actor.UserID
	default:
		return fmt.Errorf("role %q cannot list appointments: %w", actor.Role, scheduling.ErrForbidden)
	}
	return nil
}

func appointmentFilterFromRequest(req *dto.AppointmentListRequest) (*entity.AppointmentFilter, error) {
	filter := &entity.AppointmentFilter{
		SortBy:    req.SortBy,
		SortOrder: strings.ToLower(req.SortOrder),
	}

	for _, s := range req.Statuses {
		status := entity.AppointmentStatus(strings.ToUpper(strings.TrimSpace(s)))
		if status == "" {
			continue
		}
		if !status.IsValid() {
			return nil, fmt.Errorf("%q: %w", s, ErrInvalidStatus)
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	if req.StartDate != "" {
		d, err := timeutil.ParseDate(req.StartDate)
		if err != nil {
			return nil, err
		}
		filter.StartDate = &d
	}
	if req.EndDate != "" {
		d, err := timeutil.ParseDate(req.EndDate)
		if err != nil {
			return nil, err
		}
		filter.EndDate = &d
	}
	return filter, nil
}

func bookingResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultCreated
	case errors.Is(err, scheduling.ErrConflict):
		return metrics.ResultConflict
	case errors.Is(err, scheduling.ErrOutsideAvailability):
		return metrics.ResultOutsideAvailability
	case errors.Is(err, scheduling.ErrPastDate):
		return metrics.ResultPastDate
	case errors.Is(err, scheduling.ErrInvalidFormat), errors.Is(err, scheduling.ErrNotFound):
		return metrics.ResultInvalid
	}
	return metrics.ResultError
}
