package handler

import (
	"fmt"
	"net/http"
	"time"

	"census-gateway/internal/delivery/dto"
	"census-gateway/internal/scope"
	"census-gateway/internal/service"
	"census-gateway/internal/usecase"
	"census-gateway/pkg/response"
	"census-gateway/pkg/validator"
)

type DashboardHandler struct {
	dashboardUsecase usecase.DashboardUsecase
	facilityUsecase  usecase.FacilityUsecase
	auditUsecase     usecase.AuditUsecase
	exportService    service.ExportService
	validator        *validator.CustomValidator
}

func NewDashboardHandler(
	dashboardUsecase usecase.DashboardUsecase,
	facilityUsecase usecase.FacilityUsecase,
	auditUsecase usecase.AuditUsecase,
	exportService service.ExportService,
	validator *validator.CustomValidator,
) *DashboardHandler {
	return &DashboardHandler{
		dashboardUsecase: dashboardUsecase,
		facilityUsecase:  facilityUsecase,
		auditUsecase:     auditUsecase,
		exportService:    exportService,
		validator:        validator,
	}
}

// GetCensusRows handles the main dashboard table
// @Summary Get census rows
// @Description Get merged patient/event/coverage rows for the census table
// @Tags Census
// @Security BearerAuth
// @Produce json
// @Param status query string false "Status filter (all|active|discharged)"
// @Param eventType query string false "Event type filter"
// @Param q query string false "Search term"
// @Param range query string false "Date range (all|24h|7d|30d)"
// @Success 200 {object} response.Response
// @Router /census/rows [get]
func (h *DashboardHandler) GetCensusRows(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.resolveScope(w, r)
	if !ok {
		return
	}

	filter := censusFilterFromQuery(r)
	if err := h.validator.Validate(&filter); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	rows, err := h.dashboardUsecase.GetCensusRows(r.Context(), sc, filter)
	if err != nil {
		response.Error(w, http.StatusBadGateway, "Failed to build census rows", nil)
		return
	}

	response.Success(w, http.StatusOK, "Census rows retrieved successfully", rows)
}

// GetLiveUpdates handles the live-updates feed
// @Summary Get live updates
// @Description Get recent important events (room changes, insurance updates, deaths)
// @Tags Census
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /census/live-updates [get]
func (h *DashboardHandler) GetLiveUpdates(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.resolveScope(w, r)
	if !ok {
		return
	}

	updates, err := h.dashboardUsecase.GetLiveUpdates(r.Context(), sc)
	if err != nil {
		response.Error(w, http.StatusBadGateway, "Failed to fetch live updates", nil)
		return
	}

	response.Success(w, http.StatusOK, "Live updates retrieved successfully", updates)
}

// ExportCensus handles census export downloads
// @Summary Export census
// @Description Download the current census view as an xlsx workbook
// @Tags Census
// @Security BearerAuth
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Router /census/export [get]
func (h *DashboardHandler) ExportCensus(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.resolveScope(w, r)
	if !ok {
		return
	}

	filter := censusFilterFromQuery(r)
	rows, err := h.dashboardUsecase.GetCensusRows(r.Context(), sc, filter)
	if err != nil {
		response.Error(w, http.StatusBadGateway, "Failed to build census rows", nil)
		return
	}

	workbook, err := h.exportService.CensusWorkbook(rows.Rows)
	if err != nil {
		response.InternalServerError(w, "Failed to render export")
		return
	}

	if userID, _, ok := actorFromContext(r); ok {
		h.auditUsecase.RecordExport(r.Context(), userID)
	}

	filename := fmt.Sprintf("census-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	workbook.WriteTo(w)
}

func (h *DashboardHandler) resolveScope(w http.ResponseWriter, r *http.Request) (scope.Scope, bool) {
	return resolveScopeWith(h.facilityUsecase, w, r)
}

func censusFilterFromQuery(r *http.Request) dto.CensusFilter {
	query := r.URL.Query()
	return dto.CensusFilter{
		Status:    query.Get("status"),
		EventType: query.Get("eventType"),
		Search:    query.Get("q"),
		DateRange: query.Get("range"),
	}
}
