package repository

import (
	"errors"

	"go-medical-appointment/internal/domain/entity"
	domainRepo "go-medical-appointment/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type doctorProfileRepository struct{}

func NewDoctorProfileRepository() domainRepo.DoctorProfileRepository {
	return &doctorProfileRepository{}
}

func (r *doctorProfileRepository) Create(db *gorm.DB, profile *entity.DoctorProfile) error {
	return db.Omit("User", "Availability").Create(profile).Error
}

// Update writes the editable profile columns; STR number and owner stay fixed
func (r *doctorProfileRepository) Update(db *gorm.DB, profile *entity.DoctorProfile) error {
	return db.Model(profile).
		Select("specialization", "biography", "consultation_fee", "experience_years").
		Updates(profile).Error
}

func (r *doctorProfileRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
	var profile entity.DoctorProfile
	err := db.Preload("User").
		Preload("Availability", func(tx *gorm.DB) *gorm.DB { return tx.Order("day_of_week ASC") }).
		Where("user_id = ?", userID).
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// FindAllActive returns doctors whose user account is active.
// Search matches name, email or specialization; Specialization narrows further.
func (r *doctorProfileRepository) FindAllActive(db *gorm.DB, filter *entity.DoctorFilter) ([]entity.DoctorProfile, error) {
	var profiles []entity.DoctorProfile
	query := activeDoctorsQuery(db, filter).Preload("User").Order("users.full_name ASC")
	if filter != nil && filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := query.Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *doctorProfileRepository) CountActive(db *gorm.DB, filter *entity.DoctorFilter) (int64, error) {
	var total int64
	err := activeDoctorsQuery(db, filter).Count(&total).Error
	return total, err
}

func (r *doctorProfileRepository) FindSpecializations(db *gorm.DB) ([]string, error) {
	var specializations []string
	err := db.Model(&entity.DoctorProfile{}).
		Joins("JOIN users ON users.id = doctor_profiles.user_id").
		Where("users.is_active = ?", true).
		Distinct().
		Order("doctor_profiles.specialization ASC").
		Pluck("doctor_profiles.specialization", &specializations).Error
	if err != nil {
		return nil, err
	}
	return specializations, nil
}

func activeDoctorsQuery(db *gorm.DB, filter *entity.DoctorFilter) *gorm.DB {
	query := db.Model(&entity.DoctorProfile{}).
		Joins("JOIN users ON users.id = doctor_profiles.user_id").
		Where("users.is_active = ?", true)

	if filter == nil {
		return query
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("users.full_name ILIKE ? OR users.email ILIKE ? OR doctor_profiles.specialization ILIKE ?", like, like, like)
	}
	if filter.Specialization != "" {
		query = query.Where("doctor_profiles.specialization ILIKE ?", "%"+filter.Specialization+"%")
	}
	return query
}
