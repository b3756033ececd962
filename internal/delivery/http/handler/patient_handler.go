package handler

import (
	"net/http"
	"strconv"
	"strings"

	"census-gateway/internal/delivery/http/middleware"
	"census-gateway/internal/scope"
	"census-gateway/internal/usecase"
	"census-gateway/pkg/response"

	"github.com/gorilla/mux"
)

type PatientHandler struct {
	patientUsecase   usecase.PatientUsecase
	dashboardUsecase usecase.DashboardUsecase
	facilityUsecase  usecase.FacilityUsecase
}

func NewPatientHandler(
	patientUsecase usecase.PatientUsecase,
	dashboardUsecase usecase.DashboardUsecase,
	facilityUsecase usecase.FacilityUsecase,
) *PatientHandler {
	return &PatientHandler{
		patientUsecase:   patientUsecase,
		dashboardUsecase: dashboardUsecase,
		facilityUsecase:  facilityUsecase,
	}
}

// ListPatients handles listing the scoped census
// @Summary List patients
// @Description List census patients within the current facility scope
// @Tags Patients
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /patients [get]
func (h *PatientHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	sc, ok := resolveScopeWith(h.facilityUsecase, w, r)
	if !ok {
		return
	}

	patients, err := h.patientUsecase.ListPatients(r.Context(), sc)
	if err != nil {
		response.Error(w, http.StatusBadGateway, "Failed to fetch patients", nil)
		return
	}

	response.Success(w, http.StatusOK, "Patients retrieved successfully", patients)
}

// GetPatientDetail handles the patient drawer payload
// @Summary Get patient detail
// @Description Get a patient with coverage, ADT history and recent events
// @Tags Patients
// @Security BearerAuth
// @Produce json
// @Param id path int true "Patient ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /patients/{id} [get]
func (h *PatientHandler) GetPatientDetail(w http.ResponseWriter, r *http.Request) {
	sc, ok := resolveScopeWith(h.facilityUsecase, w, r)
	if !ok {
		return
	}

	patientID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || patientID <= 0 {
		response.Error(w, http.StatusBadRequest, "Invalid patient ID", nil)
		return
	}

	detail, err := h.patientUsecase.GetPatientDetail(r.Context(), sc, patientID)
	if err != nil {
		switch err {
		case usecase.ErrPatientNotFound:
			response.NotFound(w, "Patient not found")
		default:
			response.Error(w, http.StatusBadGateway, "Failed to fetch patient", nil)
		}
		return
	}

	response.Success(w, http.StatusOK, "Patient retrieved successfully", detail)
}

// GetAdtRecords handles the ADT history tab
// @Summary Get ADT records
// @Description Get a patient's admission/discharge/transfer history
// @Tags Patients
// @Security BearerAuth
// @Produce json
// @Param id path int true "Patient ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /patients/{id}/adt [get]
func (h *PatientHandler) GetAdtRecords(w http.ResponseWriter, r *http.Request) {
	sc, ok := resolveScopeWith(h.facilityUsecase, w, r)
	if !ok {
		return
	}

	patientID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || patientID <= 0 {
		response.Error(w, http.StatusBadRequest, "Invalid patient ID", nil)
		return
	}

	records, err := h.patientUsecase.GetAdtRecords(r.Context(), sc, patientID)
	if err != nil {
		switch err {
		case usecase.ErrPatientNotFound:
			response.NotFound(w, "Patient not found")
		default:
			response.Error(w, http.StatusBadGateway, "Failed to fetch ADT records", nil)
		}
		return
	}

	response.Success(w, http.StatusOK, "ADT records retrieved successfully", records)
}

// GetCoverage handles batched coverage lookups
// @Summary Get coverage for multiple patients
// @Description Get coverage keyed by patient id; missing coverage maps to null
// @Tags Patients
// @Security BearerAuth
// @Produce json
// @Param patientIds query string true "Comma-separated patient IDs"
// @Success 200 {object} response.Response
// @Router /coverage [get]
func (h *PatientHandler) GetCoverage(w http.ResponseWriter, r *http.Request) {
	idsParam := r.URL.Query().Get("patientIds")
	if strings.TrimSpace(idsParam) == "" {
		response.Error(w, http.StatusBadRequest, "patientIds query parameter is required", nil)
		return
	}

	patientIDs := make([]int, 0)
	for _, part := range strings.Split(idsParam, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || id <= 0 {
			response.Error(w, http.StatusBadRequest, "Invalid patient ID in patientIds", nil)
			return
		}
		patientIDs = append(patientIDs, id)
	}

	coverage := h.dashboardUsecase.GetCoverageMap(r.Context(), patientIDs)

	response.Success(w, http.StatusOK, "Coverage retrieved successfully", coverage)
}

// resolveScopeWith resolves the caller's facility scope, writing the error
// response itself when the user still has to pick a facility
func resolveScopeWith(facilityUsecase usecase.FacilityUsecase, w http.ResponseWriter, r *http.Request) (scope.Scope, bool) {
	userID, roleID, ok := actorFromContext(r)
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return scope.Scope{}, false
	}
	assigned := middleware.GetFacilitiesFromContext(r.Context())

	resolved, err := facilityUsecase.ScopeFor(r.Context(), userID, roleID, assigned)
	if err != nil {
		if err == usecase.ErrSelectionRequired {
			response.Error(w, http.StatusConflict, "A facility must be selected first", nil)
			return scope.Scope{}, false
		}
		response.InternalServerError(w, "Failed to resolve facility scope")
		return scope.Scope{}, false
	}
	return resolved, true
}
