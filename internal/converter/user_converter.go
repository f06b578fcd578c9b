package converter

import (
	"time"

	"go-medical-appointment/internal/delivery/dto"
	"go-medical-appointment/internal/domain/entity"
	"go-medical-appointment/pkg/timeutil"
)

// UserToResponse converts a User entity to UserResponse DTO.
// Includes DoctorProfile and PatientProfile if they are loaded.
// When Role is not preloaded the name is derived from RoleID.
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	role := user.Role.RoleName
	if role == "" {
		role = entity.RoleNameFromID(user.RoleID)
	}

	response := &dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      role,
		IsActive:  user.Active(),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}

	if user.DoctorProfile != nil {
		response.DoctorProfile = &dto.DoctorProfileResponse{
			STRNumber:       user.DoctorProfile.STRNumber,
			Specialization:  user.DoctorProfile.Specialization,
			Biography:       user.DoctorProfile.Biography,
			ConsultationFee: user.DoctorProfile.ConsultationFee,
			ExperienceYears: user.DoctorProfile.ExperienceYears,
		}
	}

	if p := user.PatientProfile; p != nil {
		response.PatientProfile = &dto.PatientProfileResponse{
			NIK:         p.NIK,
			PhoneNumber: p.PhoneNumber,
			DateOfBirth: timeutil.FormatDate(p.DateOfBirth),
			Age:         p.AgeOn(time.Now()),
			Gender:      p.Gender,
			Address:     p.Address,
		}
	}

	return response
}

// UserToStatusResponse reports the account flag after a status change
func UserToStatusResponse(user *entity.User) *dto.UserStatusResponse {
	role := user.Role.RoleName
	if role == "" {
		role = entity.RoleNameFromID(user.RoleID)
	}
	return &dto.UserStatusResponse{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     role,
		IsActive: user.Active(),
	}
}
