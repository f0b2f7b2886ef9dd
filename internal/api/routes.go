package api

import (
	"context"
	"time"

	"github.com/RishiKendai/quill/internal/config"
	"github.com/RishiKendai/quill/internal/metrics"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(ctx context.Context, cfg *config.Config, deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	handler := NewHandler(cfg, deps)

	rateLimiter := NewRateLimiter(cfg.RateLimitRPS, int(cfg.RateLimitRPS*2))
	go rateLimiter.RunSweeper(ctx, 10*time.Minute)

	router.Use(metrics.GinMiddleware())
	router.Use(ErrorHandlerMiddleware())

	// Health endpoint (no auth)
	router.GET("/health", handler.Health)

	api := router.Group("/api/v1")
	api.Use(JWTAuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	api.Use(RateLimitMiddleware(rateLimiter))
	{
		api.POST("/fingerprints", handler.Fingerprint)
		api.POST("/compare", handler.Compare)
		api.POST("/documents", handler.IngestDocument)
		api.POST("/scan", handler.Scan)
		api.GET("/scan/:documentId/status", handler.ScanStatus)
		api.GET("/scan/:documentId", handler.ScanReport)
	}

	return router
}
