package router

import (
	"supervisor_settings_backend/internal/handlers"
	"supervisor_settings_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up the token issuance route.
func SetupAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/token", authHandler.IssueToken)
	}
}

// SetupSettingRoutes sets up the configuration setting routes.
// Reads are public; writes require a valid token and deletes the admin role.
func SetupSettingRoutes(apiGroup *gin.RouterGroup, settingHandler *handlers.SettingHandler) {
	settingRoutes := apiGroup.Group("/settings")
	{
		settingRoutes.GET("", settingHandler.GetSettings)
		settingRoutes.GET("/:key", settingHandler.GetSettingByKey)
	}

	settingWriteRoutes := apiGroup.Group("/settings")
	settingWriteRoutes.Use(middleware.AuthMiddleware())
	{
		settingWriteRoutes.POST("", settingHandler.UpsertSetting)
		settingWriteRoutes.DELETE("/:key", middleware.RoleAuthMiddleware("admin"), settingHandler.DeleteSettingByKey)
	}
}

// SetupJobRoutes sets up the supervisor job configuration routes.
func SetupJobRoutes(apiGroup *gin.RouterGroup, jobHandler *handlers.JobHandler) {
	jobRoutes := apiGroup.Group("/jobs")
	{
		jobRoutes.GET("/defs", jobHandler.GetJobDefinitions)
		jobRoutes.GET("/order", jobHandler.GetJobOrder)
	}

	jobWriteRoutes := apiGroup.Group("/jobs")
	jobWriteRoutes.Use(middleware.AuthMiddleware())
	{
		jobWriteRoutes.PUT("/order/reset", jobHandler.ResetJobOrder)
		jobWriteRoutes.PUT("/:job_type/next/:next_job_type", jobHandler.SetNextJob)
		jobWriteRoutes.PUT("/:job_type/image-version", jobHandler.UpdateImageVersion)
	}
}

// SetupRunRoutes sets up the supervisor run routes.
func SetupRunRoutes(apiGroup *gin.RouterGroup, runHandler *handlers.RunHandler) {
	runRoutes := apiGroup.Group("/runs")
	{
		runRoutes.GET("", runHandler.GetRunList)
		runRoutes.GET("/:instance_id/:uid", runHandler.GetRun)
	}

	runWriteRoutes := apiGroup.Group("/runs")
	runWriteRoutes.Use(middleware.AuthMiddleware())
	{
		runWriteRoutes.POST("", runHandler.IngestRun)
		runWriteRoutes.PUT("/:instance_id/:uid/status/:status", runHandler.UpdateRunStatus)
	}
}
