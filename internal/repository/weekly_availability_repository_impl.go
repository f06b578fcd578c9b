package repository

import (
	"errors"

	"go-medical-appointment/internal/domain/entity"
	domainRepo "go-medical-appointment/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type weeklyAvailabilityRepository struct{}

func NewWeeklyAvailabilityRepository() domainRepo.WeeklyAvailabilityRepository {
	return &weeklyAvailabilityRepository{}
}

func (r *weeklyAvailabilityRepository) FindByDoctorAndDay(db *gorm.DB, doctorID uuid.UUID, day entity.DayOfWeek) (*entity.WeeklyAvailability, error) {
	var availability entity.WeeklyAvailability
	err := db.Where("doctor_id = ? AND day_of_week = ?", doctorID, day).First(&availability).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &availability, nil
}

func (r *weeklyAvailabilityRepository) FindByDoctorID(db *gorm.DB, doctorID uuid.UUID) ([]entity.WeeklyAvailability, error) {
	var availability []entity.WeeklyAvailability
	err := db.Where("doctor_id = ?", doctorID).Order("day_of_week ASC").Find(&availability).Error
	if err != nil {
		return nil, err
	}
	return availability, nil
}

// Upsert inserts the weekday window or replaces the existing one for (doctor_id, day_of_week).
func (r *weeklyAvailabilityRepository) Upsert(db *gorm.DB, availability *entity.WeeklyAvailability) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "doctor_id"}, {Name: "day_of_week"}},
		DoUpdates: clause.AssignmentColumns([]string{"start_time", "end_time", "slot_duration", "is_active", "updated_at"}),
	}).Create(availability).Error
}
