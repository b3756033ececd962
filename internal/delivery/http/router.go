package http

import (
	"net/http"

	"census-gateway/internal/delivery/http/handler"
	"census-gateway/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router           *mux.Router
	authHandler      *handler.AuthHandler
	userHandler      *handler.UserHandler
	facilityHandler  *handler.FacilityHandler
	dashboardHandler *handler.DashboardHandler
	patientHandler   *handler.PatientHandler
	auditLogHandler  *handler.AuditLogHandler
	authMiddleware   *middleware.AuthMiddleware
	corsMiddleware   *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	facilityHandler *handler.FacilityHandler,
	dashboardHandler *handler.DashboardHandler,
	patientHandler *handler.PatientHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:           mux.NewRouter(),
		authHandler:      authHandler,
		userHandler:      userHandler,
		facilityHandler:  facilityHandler,
		dashboardHandler: dashboardHandler,
		patientHandler:   patientHandler,
		auditLogHandler:  auditLogHandler,
		authMiddleware:   authMiddleware,
		corsMiddleware:   corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)
	authProtected.HandleFunc("/password", r.authHandler.ChangePassword).Methods(http.MethodPut)

	// Census and patient routes (protected)
	protected := api.PathPrefix("").Subrouter()
	protected.Use(r.authMiddleware.Authenticate)

	protected.HandleFunc("/census/rows", r.dashboardHandler.GetCensusRows).Methods(http.MethodGet)
	protected.HandleFunc("/census/live-updates", r.dashboardHandler.GetLiveUpdates).Methods(http.MethodGet)

	protected.HandleFunc("/patients", r.patientHandler.ListPatients).Methods(http.MethodGet)
	protected.HandleFunc("/patients/{id}", r.patientHandler.GetPatientDetail).Methods(http.MethodGet)
	protected.HandleFunc("/patients/{id}/adt", r.patientHandler.GetAdtRecords).Methods(http.MethodGet)
	protected.HandleFunc("/coverage", r.patientHandler.GetCoverage).Methods(http.MethodGet)

	protected.HandleFunc("/facilities", r.facilityHandler.ListFacilities).Methods(http.MethodGet)
	protected.HandleFunc("/facilities/selection", r.facilityHandler.GetSelection).Methods(http.MethodGet)
	protected.HandleFunc("/facilities/selection", r.facilityHandler.SetSelection).Methods(http.MethodPut)

	// Export is gated by role, not just authentication
	export := api.PathPrefix("/census").Subrouter()
	export.Use(r.authMiddleware.Authenticate)
	export.Use(middleware.RequireAdmin)
	export.HandleFunc("/export", r.dashboardHandler.ExportCensus).Methods(http.MethodGet)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/users", r.userHandler.CreateUser).Methods(http.MethodPost)
	admin.HandleFunc("/users", r.userHandler.ListUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}", r.userHandler.GetUser).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}", r.userHandler.UpdateUser).Methods(http.MethodPut)
	admin.HandleFunc("/users/{id}", r.userHandler.DeleteUser).Methods(http.MethodDelete)

	admin.HandleFunc("/audit-logs", r.auditLogHandler.ListAuditLogs).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
