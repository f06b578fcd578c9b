package repository

import (
	"errors"
	"fmt"
	"time"

	"go-medical-appointment/internal/domain/entity"
	domainRepo "go-medical-appointment/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

// sortable columns accepted from AppointmentFilter.SortBy
var appointmentSortColumns = map[string]string{
	"appointmentDate": "appointment_date",
	"createdAt":       "created_at",
	"status":          "status",
}

func (r *appointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Omit("Doctor", "Patient").Create(appointment).Error
}

func (r *appointmentRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Preload("Doctor.User").Preload("Patient.User").Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

// FindActiveByDoctorAndDate returns the doctor's PENDING and ACCEPTED appointments on date, ordered by start time.
func (r *appointmentRepository) FindActiveByDoctorAndDate(db *gorm.DB, doctorID uuid.UUID, date time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.
		Where("doctor_id = ? AND appointment_date = ? AND status IN ?", doctorID, date.Format("2006-01-02"), entity.BlockingStatuses).
		Order("start_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindAll(db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	query := applyAppointmentFilter(db.Model(&entity.Appointment{}), filter)

	column, order := "appointment_date", "DESC"
	if filter != nil {
		if c, ok := appointmentSortColumns[filter.SortBy]; ok {
			column = c
		}
		if filter.SortOrder == "asc" {
			order = "ASC"
		}
	}
	query = query.Order(fmt.Sprintf("%s %s", column, order)).Order("start_time " + order)

	if filter != nil && filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	err := query.Preload("Doctor.User").Preload("Patient.User").Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) Count(db *gorm.DB, filter *entity.AppointmentFilter) (int64, error) {
	var total int64
	err := applyAppointmentFilter(db.Model(&entity.Appointment{}), filter).Count(&total).Error
	return total, err
}

// UpdateStatus moves an appointment from one status to another only if it is still in the expected status.
// Returns affected rows: 1 = success, 0 = status changed concurrently or appointment gone.
func (r *appointmentRepository) UpdateStatus(db *gorm.DB, id uuid.UUID, from, to entity.AppointmentStatus, notes *string) (int64, error) {
	updates := map[string]interface{}{"status": to}
	if notes != nil && *notes != "" {
		updates["notes"] = *notes
	}

	result := db.Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func applyAppointmentFilter(query *gorm.DB, filter *entity.AppointmentFilter) *gorm.DB {
	if filter == nil {
		return query
	}
	if filter.DoctorID != nil {
		query = query.Where("doctor_id = ?", *filter.DoctorID)
	}
	if filter.PatientID != nil {
		query = query.Where("patient_id = ?", *filter.PatientID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.StartDate != nil {
		query = query.Where("appointment_date >= ?", filter.StartDate.Format("2006-01-02"))
	}
	if filter.EndDate != nil {
		query = query.Where("appointment_date <= ?", filter.EndDate.Format("2006-01-02"))
	}
	return query
}
