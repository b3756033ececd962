package handler

import (
	"net/http"
	"strconv"

	"census-gateway/internal/usecase"
	"census-gateway/pkg/response"
)

type AuditLogHandler struct {
	auditUsecase usecase.AuditUsecase
}

func NewAuditLogHandler(auditUsecase usecase.AuditUsecase) *AuditLogHandler {
	return &AuditLogHandler{auditUsecase: auditUsecase}
}

// ListAuditLogs handles listing the audit trail
// @Summary List audit logs
// @Description List recent audit trail entries (admin only)
// @Tags Audit
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Maximum entries to return"
// @Success 200 {object} response.Response
// @Router /admin/audit-logs [get]
func (h *AuditLogHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	logs, err := h.auditUsecase.ListAuditLogs(r.Context(), limit)
	if err != nil {
		response.InternalServerError(w, "Failed to list audit logs")
		return
	}

	response.Success(w, http.StatusOK, "Audit logs retrieved successfully", logs)
}
