package converter

import (
	"go-medical-appointment/internal/delivery/dto"
	"go-medical-appointment/internal/domain/entity"
	"go-medical-appointment/internal/domain/scheduling"
)

func WeeklyAvailabilityToResponse(a *entity.WeeklyAvailability) *dto.WeeklyAvailabilityResponse {
	if a == nil {
		return nil
	}

	return &dto.WeeklyAvailabilityResponse{
		ID:           a.ID,
		DoctorID:     a.DoctorID,
		DayOfWeek:    int(a.DayOfWeek),
		DayName:      a.DayOfWeek.String(),
		StartTime:    a.StartTime,
		EndTime:      a.EndTime,
		SlotDuration: a.SlotDuration,
		IsActive:     a.IsActive,
	}
}

func WeeklyAvailabilitiesToResponses(list []entity.WeeklyAvailability) []dto.WeeklyAvailabilityResponse {
	responses := make([]dto.WeeklyAvailabilityResponse, len(list))
	for i := range list {
		responses[i] = *WeeklyAvailabilityToResponse(&list[i])
	}
	return responses
}

func SlotsToResponses(slots []scheduling.Slot) []dto.SlotResponse {
	responses := make([]dto.SlotResponse, len(slots))
	for i, s := range slots {
		responses[i] = dto.SlotResponse{
			StartTime:   s.StartTime,
			EndTime:     s.EndTime,
			IsAvailable: s.IsAvailable,
		}
	}
	return responses
}
