package handler

import (
	"encoding/json"
	"net/http"

	"go-medical-appointment/internal/delivery/dto"
	"go-medical-appointment/internal/delivery/http/middleware"
	"go-medical-appointment/internal/usecase"
	"go-medical-appointment/pkg/response"
	"go-medical-appointment/pkg/validator"

	"github.com/sirupsen/logrus"
)

type DoctorHandler struct {
	doctorUsecase usecase.DoctorProfileUsecase
	validator     *validator.CustomValidator
	log           *logrus.Logger
}

func NewDoctorHandler(doctorUsecase usecase.DoctorProfileUsecase, validator *validator.CustomValidator, log *logrus.Logger) *DoctorHandler {
	return &DoctorHandler{
		doctorUsecase: doctorUsecase,
		validator:     validator,
		log:           log,
	}
}

// GetDoctors lists active doctors, filtered by ?search= and ?specialization=
func (h *DoctorHandler) GetDoctors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &dto.DoctorListRequest{
		Search:         q.Get("search"),
		Specialization: q.Get("specialization"),
		Page:           queryInt(r, "page", 1),
		Limit:          queryInt(r, "limit", 10),
	}

	result, err := h.doctorUsecase.GetDoctors(r.Context(), req)
	if err != nil {
		writeError(w, h.log, "Failed to get doctors", err)
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Doctors retrieved successfully", result.Doctors,
		response.NewMeta(result.Page, result.Limit, result.Total))
}

func (h *DoctorHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathUUID(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	doctor, err := h.doctorUsecase.GetDoctor(r.Context(), doctorID)
	if err != nil {
		writeError(w, h.log, "Failed to get doctor", err)
		return
	}

	response.Success(w, http.StatusOK, "Doctor retrieved successfully", doctor)
}

func (h *DoctorHandler) GetSpecializations(w http.ResponseWriter, r *http.Request) {
	specializations, err := h.doctorUsecase.GetSpecializations(r.Context())
	if err != nil {
		writeError(w, h.log, "Failed to get specializations", err)
		return
	}

	response.Success(w, http.StatusOK, "Specializations retrieved successfully", specializations)
}

func (h *DoctorHandler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	doctor, err := h.doctorUsecase.GetMyProfile(r.Context(), doctorID)
	if err != nil {
		writeError(w, h.log, "Failed to get profile", err)
		return
	}

	response.Success(w, http.StatusOK, "Profile retrieved successfully", doctor)
}

// UpdateMyProfile edits the calling doctor's profile; omitted fields are kept
func (h *DoctorHandler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	var req dto.UpdateDoctorProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	doctor, err := h.doctorUsecase.UpdateMyProfile(r.Context(), doctorID, &req)
	if err != nil {
		writeError(w, h.log, "Failed to update profile", err)
		return
	}

	response.Success(w, http.StatusOK, "Profile updated successfully", doctor)
}
