package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	"supervisor_settings_backend/internal/database"
	router_pkg "supervisor_settings_backend/internal/router"
	"supervisor_settings_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize Logger
	utils.InitLogger() // Initialize zerolog

	// Load database configuration from environment variables
	dbHost := utils.Getenv("DB_HOST", "localhost")
	dbPort := utils.Getenv("DB_PORT", "5432")
	dbUser := utils.Getenv("DB_USER", "supervisor_settings_user")
	dbPassword := utils.Getenv("DB_PASSWORD", "supervisor_settings_password")
	dbName := utils.Getenv("DB_NAME", "supervisor_settings_db")
	dbSSLMode := utils.Getenv("DB_SSLMODE", "disable")

	// Initialize Database (applies embedded migrations)
	database.InitDB(dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode)
	utils.LogInfo("Database initialized", map[string]interface{}{"configured_from_env": true})

	// JWT signing secret for token issuance and verification
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}
	utils.InitJWT(jwtSecret)

	router := gin.Default()

	// Add GinLogger middleware for request logging
	router.Use(utils.GinLogger())

	// CORS configuration
	corsAllowedOriginsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	var allowedOrigins []string
	if corsAllowedOriginsEnv != "" {
		allowedOrigins = strings.Split(corsAllowedOriginsEnv, ",")
	} else {
		allowedOrigins = []string{"*"}
	}

	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}

	router.Use(cors.New(config))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Setup all application routes
	dbConn := database.GetDB()
	router_pkg.Setup(router, dbConn, router_pkg.Config{
		AuthClientID:         utils.Getenv("AUTH_CLIENT_ID", "supervisor"),
		AuthClientSecretHash: os.Getenv("AUTH_CLIENT_SECRET_HASH"),
		AuthClientRole:       utils.Getenv("AUTH_CLIENT_ROLE", "admin"),
		TokenTTL:             utils.DefaultTokenTTL,
		ImageFreeze:          imageFreezeCheck,
	})

	// Server port configuration
	port := utils.Getenv("PORT", "4000")
	utils.LogInfo("Server starting", map[string]interface{}{"port": port, "configured_from_env": true})

	if err := router.Run(":" + port); err != nil {
		utils.LogError(err, "Failed to start server")
		log.Fatalf("Failed to start server: %v", err)
	}
}

// imageFreezeCheck reports whether image version updates are frozen, either
// by the IMAGE_FREEZE env flag or by the presence of a freeze marker file.
func imageFreezeCheck() bool {
	if utils.Getenv("IMAGE_FREEZE", "") == "true" {
		return true
	}
	_, err := os.Stat(utils.Getenv("IMAGE_FREEZE_PATH", "freeze"))
	return err == nil
}
