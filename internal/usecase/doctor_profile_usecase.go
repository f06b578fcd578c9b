package usecase

import (
	"context"
	"fmt"
	"strings"

	"go-medical-appointment/internal/converter"
	"go-medical-appointment/internal/delivery/dto"
	"go-medical-appointment/internal/domain/entity"
	"go-medical-appointment/internal/domain/repository"
	"go-medical-appointment/internal/domain/scheduling"
	"go-medical-appointment/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var ErrInvalidConsultationFee = fmt.Errorf("consultation fee must not be negative: %w", scheduling.ErrInvalidFormat)

type DoctorProfileUsecase interface {
	GetDoctors(ctx context.Context, req *dto.DoctorListRequest) (*dto.DoctorListResponse, error)
	GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error)
	GetSpecializations(ctx context.Context) ([]string, error)
	GetMyProfile(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error)
	UpdateMyProfile(ctx context.Context, doctorID uuid.UUID, req *dto.UpdateDoctorProfileRequest) (*dto.DoctorResponse, error)
}

type doctorProfileUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	userRepo          repository.UserRepository
	doctorProfileRepo repository.DoctorProfileRepository
	auditService      service.AuditService
}

func NewDoctorProfileUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	auditService service.AuditService,
) DoctorProfileUsecase {
	return &doctorProfileUsecase{
		db:                db,
		log:               log,
		userRepo:          userRepo,
		doctorProfileRepo: doctorProfileRepo,
		auditService:      auditService,
	}
}

// GetDoctors lists active doctors, optionally filtered by a free-text search
// and a specialization.
func (u *doctorProfileUsecase) GetDoctors(ctx context.Context, req *dto.DoctorListRequest) (*dto.DoctorListResponse, error) {
	page, limit, offset := normalizePage(req.Page, req.Limit)
	filter := &entity.DoctorFilter{
		Search:         strings.TrimSpace(req.Search),
		Specialization: strings.TrimSpace(req.Specialization),
		Limit:          limit,
		Offset:         offset,
	}

	var (
		doctors []entity.DoctorProfile
		total   int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		doctors, err = u.doctorProfileRepo.FindAllActive(u.db.WithContext(gctx), filter)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = u.doctorProfileRepo.CountActive(u.db.WithContext(gctx), filter)
		return err
	})
	if err := g.Wait(); err != nil {
		u.log.Warnf("Failed to find doctors: %+v", err)
		return nil, err
	}

	return &dto.DoctorListResponse{
		Doctors: converter.DoctorProfilesToResponses(doctors),
		Total:   total,
		Page:    page,
		Limit:   limit,
	}, nil
}

func (u *doctorProfileUsecase) GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error) {
	doctor, err := u.doctorProfileRepo.FindByUserID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil || !doctor.User.Active() {
		return nil, ErrDoctorNotFound
	}

	return converter.DoctorProfileToResponse(doctor), nil
}

func (u *doctorProfileUsecase) GetSpecializations(ctx context.Context) ([]string, error) {
	specializations, err := u.doctorProfileRepo.FindSpecializations(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to find specializations: %+v", err)
		return nil, err
	}
	if specializations == nil {
		specializations = []string{}
	}
	return specializations, nil
}

// GetMyProfile returns the caller's own profile, active or not
func (u *doctorProfileUsecase) GetMyProfile(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error) {
	doctor, err := u.doctorProfileRepo.FindByUserID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	return converter.DoctorProfileToResponse(doctor), nil
}

// UpdateMyProfile applies the non-nil fields of req. The STR number is a
// licence and cannot be changed here.
func (u *doctorProfileUsecase) UpdateMyProfile(ctx context.Context, doctorID uuid.UUID, req *dto.UpdateDoctorProfileRequest) (*dto.DoctorResponse, error) {
	if req.ConsultationFee != nil && req.ConsultationFee.IsNegative() {
		return nil, ErrInvalidConsultationFee
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	doctor, err := u.doctorProfileRepo.FindByUserID(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	oldValue := converter.DoctorProfileToResponse(doctor)

	if req.FullName != nil {
		if name := strings.TrimSpace(*req.FullName); name != "" && name != doctor.User.FullName {
			if err := u.userRepo.UpdateFullName(tx, doctorID, name); err != nil {
				u.log.Warnf("Failed to update user: %+v", err)
				return nil, err
			}
			doctor.User.FullName = name
		}
	}

	if req.Specialization != nil {
		if specialization := strings.TrimSpace(*req.Specialization); specialization != "" {
			doctor.Specialization = specialization
		}
	}
	if req.Biography != nil {
		doctor.Biography = strings.TrimSpace(*req.Biography)
	}
	if req.ConsultationFee != nil {
		doctor.ConsultationFee = req.ConsultationFee.Round(2)
	}
	if req.ExperienceYears != nil {
		doctor.ExperienceYears = *req.ExperienceYears
	}

	if err := u.doctorProfileRepo.Update(tx, doctor); err != nil {
		u.log.Warnf("Failed to update doctor profile: %+v", err)
		return nil, err
	}

	newValue := converter.DoctorProfileToResponse(doctor)
	if err := u.auditService.LogUpdate(ctx, tx, &doctorID, entity.AuditActionProfileUpdate, "doctor_profile", doctorID.String(), oldValue, newValue); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return newValue, nil
}
