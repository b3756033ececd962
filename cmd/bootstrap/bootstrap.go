package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"census-gateway/config"
	deliveryHttp "census-gateway/internal/delivery/http"
	"census-gateway/internal/delivery/http/handler"
	"census-gateway/internal/delivery/http/middleware"
	"census-gateway/internal/domain/entity"
	"census-gateway/internal/infrastructure/cache"
	"census-gateway/internal/infrastructure/database"
	"census-gateway/internal/infrastructure/upstream"
	"census-gateway/internal/repository"
	"census-gateway/internal/service"
	"census-gateway/internal/usecase"
	"census-gateway/pkg/jwt"
	"census-gateway/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Setup logger
	setupLogger()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg
	logrus.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient

	// Initialize all layers
	server := initializeServer(cfg, db, redisClient)
	app.Server = server

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

// migrate applies the schema and seeds the fixed role set
func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.UserFacility{},
		&entity.AuditLog{},
	); err != nil {
		return err
	}

	roleRepo := repository.NewRoleRepository()
	roles := []entity.Role{
		{ID: entity.RoleIDSuperAdmin, RoleName: entity.RoleSuperAdmin, Description: "Full access including admin management"},
		{ID: entity.RoleIDAdmin, RoleName: entity.RoleAdmin, Description: "All facilities, user management, export"},
		{ID: entity.RoleIDUser, RoleName: entity.RoleUser, Description: "Census access for assigned facilities"},
	}
	for i := range roles {
		if err := roleRepo.Upsert(db, &roles[i]); err != nil {
			return err
		}
	}
	return nil
}

// initializeServer creates and configures the HTTP server
func initializeServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *http.Server {
	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize logger
	log := logrus.StandardLogger()

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize upstream client and services
	upstreamClient := upstream.NewClient(cfg.Upstream)
	censusService := service.NewCensusService(upstreamClient)
	kvStore := service.NewRedisKVStore(redisClient)
	auditService := service.NewAuditService(db, log, auditLogRepo)
	exportService := service.NewExportService()
	coverageBatcher := service.NewCoverageBatcher(
		censusService.Coverage,
		kvStore,
		log,
		cfg.Census.CoverageBatchSize,
		cfg.Census.CoverageCacheTTL,
	)

	// A failed first login is not fatal: the client re-authenticates on demand
	loginCtx, cancel := context.WithTimeout(context.Background(), cfg.Upstream.Timeout)
	defer cancel()
	if err := upstreamClient.Login(loginCtx); err != nil {
		logrus.Warnf("Initial upstream login failed: %+v", err)
	}

	// Initialize usecases
	facilityUsecase := usecase.NewFacilityUsecase(log, censusService, kvStore, auditService, cfg.Census.FacilityFetchTimeout)
	authUsecase := usecase.NewAuthUsecase(db, log, userRepo, jwtService, redisClient, facilityUsecase, auditService)
	userUsecase := usecase.NewUserUsecase(db, log, userRepo, auditService)
	dashboardUsecase := usecase.NewDashboardUsecase(log, censusService, coverageBatcher, cfg.Census.LiveUpdatesLimit)
	patientUsecase := usecase.NewPatientUsecase(log, censusService, coverageBatcher)
	auditUsecase := usecase.NewAuditUsecase(db, log, auditLogRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator, jwtService)
	userHandler := handler.NewUserHandler(userUsecase, customValidator)
	facilityHandler := handler.NewFacilityHandler(facilityUsecase, customValidator)
	dashboardHandler := handler.NewDashboardHandler(dashboardUsecase, facilityUsecase, auditUsecase, exportService, customValidator)
	patientHandler := handler.NewPatientHandler(patientUsecase, dashboardUsecase, facilityUsecase)
	auditLogHandler := handler.NewAuditLogHandler(auditUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, redisClient)
	corsMiddleware := middleware.NewCORSMiddleware()

	// Initialize router
	router := deliveryHttp.NewRouter(authHandler, userHandler, facilityHandler, dashboardHandler, patientHandler, auditLogHandler, authMiddleware, corsMiddleware)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:    serverAddr,
		Handler: httpRouter,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
