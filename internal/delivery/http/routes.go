package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/cardscan/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *slog.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.Server.MaxUploadBytes

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	limited := router.Group("/", RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		// Paths used by the scanner frontend
		limited.POST("/ocr", handler.ScanCard)
		limited.POST("/api/ebay-search", handler.SearchListings)

		// API v1 routes
		cards := limited.Group("/api/v1/cards")
		{
			cards.POST("/scan", handler.ScanCard)
			cards.POST("/search", handler.SearchListings)
		}
	}

	return router
}
