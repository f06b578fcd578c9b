package usecase

import (
	"context"
	"fmt"

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
	ErrDoctorNotFound   = fmt.Errorf("doctor %w", scheduling.ErrNotFound)
	ErrInvalidDayOfWeek = fmt.Errorf("day of week must be between 0 (Sunday) and 6 (Saturday): %w", scheduling.ErrInvalidFormat)
	ErrInvalidTimeRange = fmt.Errorf("start time must be before end time: %w", scheduling.ErrInvalidFormat)
	ErrDuplicateDay     = fmt.Errorf("each day of week may appear only once: %w", scheduling.ErrInvalidFormat)
)

// maxBulkWorkers bounds concurrent upserts in SetBulkAvailability
const maxBulkWorkers = 4

type AvailabilityUsecase interface {
	GetAvailability(ctx context.Context, doctorID uuid.UUID) ([]dto.WeeklyAvailabilityResponse, error)
	SetAvailability(ctx context.Context, doctorID uuid.UUID, req *dto.SetAvailabilityRequest) (*dto.WeeklyAvailabilityResponse, error)
	SetBulkAvailability(ctx context.Context, doctorID uuid.UUID, req *dto.SetBulkAvailabilityRequest) ([]dto.WeeklyAvailabilityResponse, error)
	GetAvailableSlots(ctx context.Context, doctorID uuid.UUID, date string) (*dto.AvailableSlotsResponse, error)
}

type availabilityUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	availabilityRepo repository.WeeklyAvailabilityRepository
	appointmentRepo  repository.AppointmentRepository
	doctorRepo       repository.DoctorProfileRepository
	auditService     service.AuditService
	metrics          *metrics.BookingMetrics
}

func NewAvailabilityUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	availabilityRepo repository.WeeklyAvailabilityRepository,
	appointmentRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorProfileRepository,
	auditService service.AuditService,
	bookingMetrics *metrics.BookingMetrics,
) AvailabilityUsecase {
	return &availabilityUsecase{
		db:               db,
		log:              log,
		availabilityRepo: availabilityRepo,
		appointmentRepo:  appointmentRepo,
		doctorRepo:       doctorRepo,
		auditService:     auditService,
		metrics:          bookingMetrics,
	}
}

func (u *availabilityUsecase) GetAvailability(ctx context.Context, doctorID uuid.UUID) ([]dto.WeeklyAvailabilityResponse, error) {
	if err := u.ensureDoctor(ctx, doctorID); err != nil {
		return nil, err
	}

	list, err := u.availabilityRepo.FindByDoctorID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find availability for doctor %s: %+v", doctorID, err)
		return nil, err
	}
	return converter.WeeklyAvailabilitiesToResponses(list), nil
}

func (u *availabilityUsecase) SetAvailability(ctx context.Context, doctorID uuid.UUID, req *dto.SetAvailabilityRequest) (*dto.WeeklyAvailabilityResponse, error) {
	availability, err := availabilityFromRequest(doctorID, req)
	if err != nil {
		return nil, err
	}

	if err := u.ensureDoctor(ctx, doctorID); err != nil {
		return nil, err
	}

	if err := u.upsert(ctx, availability); err != nil {
		return nil, err
	}
	return converter.WeeklyAvailabilityToResponse(availability), nil
}

// SetBulkAvailability upserts each day independently and concurrently.
// It is not atomic: when one day fails, days already written stay written.
func (u *availabilityUsecase) SetBulkAvailability(ctx context.Context, doctorID uuid.UUID, req *dto.SetBulkAvailabilityRequest) ([]dto.WeeklyAvailabilityResponse, error) {
	list := make([]*entity.WeeklyAvailability, len(req.Availability))
	seen := make(map[entity.DayOfWeek]bool, len(req.Availability))
	for i := range req.Availability {
		availability, err := availabilityFromRequest(doctorID, &req.Availability[i])
		if err != nil {
			return nil, err
		}
		if seen[availability.DayOfWeek] {
			return nil, fmt.Errorf("%s: %w", availability.DayOfWeek, ErrDuplicateDay)
		}
		seen[availability.DayOfWeek] = true
		list[i] = availability
	}

	if err := u.ensureDoctor(ctx, doctorID); err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxBulkWorkers)
	for _, availability := range list {
		g.Go(func() error {
			return u.upsert(gctx, availability)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	responses := make([]dto.WeeklyAvailabilityResponse, len(list))
	for i, availability := range list {
		responses[i] = *converter.WeeklyAvailabilityToResponse(availability)
	}
	return responses, nil
}

// GetAvailableSlots lists the doctor's slots for date. A day without an active
// window returns no slots and an explanatory message.
func (u *availabilityUsecase) GetAvailableSlots(ctx context.Context, doctorID uuid.UUID, date string) (*dto.AvailableSlotsResponse, error) {
	day, err := timeutil.ParseDate(date)
	if err != nil {
		return nil, err
	}

	if err := u.ensureDoctor(ctx, doctorID); err != nil {
		return nil, err
	}

	weekday := entity.DayOfWeek(timeutil.DayOfWeek(day))
	availability, err := u.availabilityRepo.FindByDoctorAndDay(u.db.WithContext(ctx), doctorID, weekday)
	if err != nil {
		u.log.Warnf("Failed to find availability for doctor %s on %s: %+v", doctorID, weekday, err)
		return nil, err
	}

	var appointments []entity.Appointment
	if availability != nil && availability.IsActive {
		appointments, err = u.appointmentRepo.FindActiveByDoctorAndDate(u.db.WithContext(ctx), doctorID, day)
		if err != nil {
			u.log.Warnf("Failed to find appointments for doctor %s on %s: %+v", doctorID, date, err)
			return nil, err
		}
	}

	slots, message, err := scheduling.SlotsForDay(availability, appointments)
	if err != nil {
		u.log.Errorf("Corrupt schedule data for doctor %s on %s: %+v", doctorID, date, err)
		return nil, err
	}
	u.metrics.ObserveSlotQuery(message == "")

	response := &dto.AvailableSlotsResponse{
		DoctorID:  doctorID,
		Date:      timeutil.FormatDate(day),
		DayOfWeek: int(weekday),
		Slots:     converter.SlotsToResponses(slots),
		Message:   message,
	}
	if message == "" {
		response.SlotDuration = availability.SlotDuration
	}
	return response, nil
}

func (u *availabilityUsecase) ensureDoctor(ctx context.Context, doctorID uuid.UUID) error {
	doctor, err := u.doctorRepo.FindByUserID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return err
	}
	if doctor == nil || !doctor.User.Active() {
		return ErrDoctorNotFound
	}
	return nil
}

func (u *availabilityUsecase) upsert(ctx context.Context, availability *entity.WeeklyAvailability) error {
	if err := u.availabilityRepo.Upsert(u.db.WithContext(ctx), availability); err != nil {
		u.log.Warnf("Failed to upsert availability for doctor %s on %s: %+v", availability.DoctorID, availability.DayOfWeek, err)
		return err
	}

	actorID := availability.DoctorID
	entityID := fmt.Sprintf("%s:%d", availability.DoctorID, availability.DayOfWeek)
	if err := u.auditService.LogUpdate(ctx, u.db, &actorID, entity.AuditActionAvailabilityUpsert, "weekly_availability", entityID, nil, converter.WeeklyAvailabilityToResponse(availability)); err != nil {
		u.log.Warnf("Failed to audit availability change %s: %+v", entityID, err)
	}
	return nil
}

// availabilityFromRequest validates a weekday window. Slot duration defaults
// to entity.DefaultSlotDuration and IsActive to true.
func availabilityFromRequest(doctorID uuid.UUID, req *dto.SetAvailabilityRequest) (*entity.WeeklyAvailability, error) {
	if req.DayOfWeek == nil || !entity.DayOfWeek(*req.DayOfWeek).IsValid() {
		return nil, ErrInvalidDayOfWeek
	}

	window, err := scheduling.ParseInterval(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if window.Start >= window.End {
		return nil, ErrInvalidTimeRange
	}

	slotDuration := req.SlotDuration
	if slotDuration <= 0 {
		slotDuration = entity.DefaultSlotDuration
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	return &entity.WeeklyAvailability{
		DoctorID:     doctorID,
		DayOfWeek:    entity.DayOfWeek(*req.DayOfWeek),
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		SlotDuration: slotDuration,
		IsActive:     isActive,
	}, nil
}
