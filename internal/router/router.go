package router

import (
	"database/sql"
	"time"

	"supervisor_settings_backend/internal/handlers"
	"supervisor_settings_backend/internal/models"
	"supervisor_settings_backend/internal/repositories"
	"supervisor_settings_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Config carries the environment-derived settings the router's services need.
type Config struct {
	AuthClientID         string
	AuthClientSecretHash string
	AuthClientRole       string
	TokenTTL             time.Duration
	ImageFreeze          func() bool
}

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB, cfg Config) {
	registerValidators()

	// Initialize Repositories
	settingRepo := repositories.NewSettingRepository(db)
	jobRepo := repositories.NewJobRepository(db)
	runRepo := repositories.NewRunRepository(db)

	// Initialize Services
	settingService := services.NewSettingService(settingRepo, db)
	jobService := services.NewJobService(jobRepo, db, cfg.ImageFreeze)
	runService := services.NewRunService(runRepo, db)
	tokenService := services.NewTokenService(cfg.AuthClientID, cfg.AuthClientSecretHash, cfg.AuthClientRole, cfg.TokenTTL)

	// Initialize Handlers
	settingHandler := handlers.NewSettingHandler(settingService)
	jobHandler := handlers.NewJobHandler(jobService)
	runHandler := handlers.NewRunHandler(runService)
	authHandler := handlers.NewAuthHandler(tokenService)

	apiV1 := engine.Group("/api/v1")

	SetupAuthRoutes(apiV1, authHandler)
	SetupSettingRoutes(apiV1, settingHandler)
	SetupJobRoutes(apiV1, jobHandler)
	SetupRunRoutes(apiV1, runHandler)
}

// registerValidators adds custom binding rules to gin's validator engine.
func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("imageversion", models.ImageVersionValidator)
	}
}
