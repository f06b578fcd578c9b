package usecase

import (
	"context"
	"strings"

	"go-medical-appointment/internal/converter"
	"go-medical-appointment/internal/delivery/dto"
	"go-medical-appointment/internal/domain/entity"
	"go-medical-appointment/internal/domain/repository"
	"go-medical-appointment/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type PatientProfileUsecase interface {
	GetMyProfile(ctx context.Context, patientID uuid.UUID) (*dto.UserResponse, error)
	UpdateMyProfile(ctx context.Context, patientID uuid.UUID, req *dto.UpdatePatientProfileRequest) (*dto.UserResponse, error)
}

type patientProfileUsecase struct {
	db                 *gorm.DB
	log                *logrus.Logger
	userRepo           repository.UserRepository
	patientProfileRepo repository.PatientProfileRepository
	auditService       service.AuditService
}

func NewPatientProfileUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	patientProfileRepo repository.PatientProfileRepository,
	auditService service.AuditService,
) PatientProfileUsecase {
	return &patientProfileUsecase{
		db:                 db,
		log:                log,
		userRepo:           userRepo,
		patientProfileRepo: patientProfileRepo,
		auditService:       auditService,
	}
}

func (u *patientProfileUsecase) GetMyProfile(ctx context.Context, patientID uuid.UUID) (*dto.UserResponse, error) {
	profile, err := u.patientProfileRepo.FindByUserID(u.db.WithContext(ctx), patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrPatientNotFound
	}
	return patientToResponse(profile), nil
}

// UpdateMyProfile updates the patient's own profile.
//
// Editable: full_name, phone_number, address. NIK, gender and date of birth
// identify the patient and stay as registered.
func (u *patientProfileUsecase) UpdateMyProfile(ctx context.Context, patientID uuid.UUID, req *dto.UpdatePatientProfileRequest) (*dto.UserResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	profile, err := u.patientProfileRepo.FindByUserID(tx, patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrPatientNotFound
	}

	oldValue := patientToResponse(profile)

	if name := strings.TrimSpace(req.FullName); name != "" && name != profile.User.FullName {
		if err := u.userRepo.UpdateFullName(tx, patientID, name); err != nil {
			u.log.Warnf("Failed to update user: %+v", err)
			return nil, err
		}
		profile.User.FullName = name
	}

	contactChanged := false
	if phone := strings.TrimSpace(req.PhoneNumber); phone != "" && phone != profile.PhoneNumber {
		profile.PhoneNumber = phone
		contactChanged = true
	}
	if address := strings.TrimSpace(req.Address); address != "" && address != profile.Address {
		profile.Address = address
		contactChanged = true
	}
	if contactChanged {
		if err := u.patientProfileRepo.Update(tx, profile); err != nil {
			u.log.Warnf("Failed to update patient profile: %+v", err)
			return nil, err
		}
	}

	newValue := patientToResponse(profile)
	if err := u.auditService.LogUpdate(ctx, tx, &patientID, entity.AuditActionProfileUpdate, "patient_profile", patientID.String(), oldValue, newValue); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return newValue, nil
}

func patientToResponse(profile *entity.PatientProfile) *dto.UserResponse {
	user := profile.User
	p := *profile
	p.User = entity.User{}
	user.PatientProfile = &p
	return converter.UserToResponse(&user)
}
