package converter

import (
	"go-medical-appointment/internal/delivery/dto"
	"go-medical-appointment/internal/domain/entity"
	"go-medical-appointment/pkg/timeutil"

	"github.com/google/uuid"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO.
// Doctor and patient summaries are included when their users were preloaded.
func AppointmentToResponse(appt *entity.Appointment) *dto.AppointmentResponse {
	if appt == nil {
		return nil
	}

	response := &dto.AppointmentResponse{
		ID:              appt.ID,
		DoctorID:        appt.DoctorID,
		PatientID:       appt.PatientID,
		AppointmentDate: timeutil.FormatDate(appt.AppointmentDate),
		StartTime:       appt.StartTime,
		EndTime:         appt.EndTime,
		Status:          string(appt.Status),
		Reason:          appt.Reason,
		Notes:           appt.Notes,
		CreatedAt:       appt.CreatedAt,
		UpdatedAt:       appt.UpdatedAt,
	}

	if appt.Doctor.User.ID != uuid.Nil {
		response.Doctor = &dto.AppointmentParticipant{
			ID:             appt.Doctor.UserID,
			FullName:       appt.Doctor.User.FullName,
			Email:          appt.Doctor.User.Email,
			Specialization: appt.Doctor.Specialization,
		}
	}

	if appt.Patient.User.ID != uuid.Nil {
		response.Patient = &dto.AppointmentParticipant{
			ID:          appt.Patient.UserID,
			FullName:    appt.Patient.User.FullName,
			Email:       appt.Patient.User.Email,
			PhoneNumber: appt.Patient.PhoneNumber,
		}
	}

	return response
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}
