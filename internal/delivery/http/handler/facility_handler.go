package handler

import (
	"encoding/json"
	"net/http"

	"census-gateway/internal/delivery/dto"
	"census-gateway/internal/delivery/http/middleware"
	"census-gateway/internal/usecase"
	"census-gateway/pkg/response"
	"census-gateway/pkg/validator"
)

type FacilityHandler struct {
	facilityUsecase usecase.FacilityUsecase
	validator       *validator.CustomValidator
}

func NewFacilityHandler(facilityUsecase usecase.FacilityUsecase, validator *validator.CustomValidator) *FacilityHandler {
	return &FacilityHandler{
		facilityUsecase: facilityUsecase,
		validator:       validator,
	}
}

// ListFacilities handles listing accessible facilities
// @Summary List facilities
// @Description List facilities the current user may view
// @Tags Facilities
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /facilities [get]
func (h *FacilityHandler) ListFacilities(w http.ResponseWriter, r *http.Request) {
	_, roleID, ok := actorFromContext(r)
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}
	assigned := middleware.GetFacilitiesFromContext(r.Context())

	facilities, err := h.facilityUsecase.ListFacilities(r.Context(), roleID, assigned)
	if err != nil {
		response.Error(w, http.StatusBadGateway, "Failed to fetch facilities", nil)
		return
	}

	response.Success(w, http.StatusOK, "Facilities retrieved successfully", facilities)
}

// GetSelection handles reading the current facility selection
// @Summary Get facility selection
// @Description Get the current user's facility selection and available facilities
// @Tags Facilities
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /facilities/selection [get]
func (h *FacilityHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	userID, roleID, ok := actorFromContext(r)
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}
	assigned := middleware.GetFacilitiesFromContext(r.Context())

	selection, err := h.facilityUsecase.GetSelection(r.Context(), userID, roleID, assigned)
	if err != nil {
		response.Error(w, http.StatusBadGateway, "Failed to fetch facility selection", nil)
		return
	}

	response.Success(w, http.StatusOK, "Facility selection retrieved successfully", selection)
}

// SetSelection handles changing the facility selection
// @Summary Set facility selection
// @Description Select a facility, or pass null to view all facilities (admin only)
// @Tags Facilities
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.SelectFacilityRequest true "Select Facility Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /facilities/selection [put]
func (h *FacilityHandler) SetSelection(w http.ResponseWriter, r *http.Request) {
	userID, roleID, ok := actorFromContext(r)
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}
	assigned := middleware.GetFacilitiesFromContext(r.Context())

	var req dto.SelectFacilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	if err := h.facilityUsecase.SetSelection(r.Context(), userID, roleID, assigned, req.FacilityID); err != nil {
		switch err {
		case usecase.ErrFacilityNotFound:
			response.NotFound(w, "Facility not found")
		case usecase.ErrFacilityNotAllowed:
			response.Forbidden(w, "Facility is not assigned to this user")
		default:
			response.InternalServerError(w, "Failed to set facility selection")
		}
		return
	}

	response.Success(w, http.StatusOK, "Facility selection updated successfully", nil)
}
