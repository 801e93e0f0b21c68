package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/labstack/echo/v4"

	"github.com/Mj26111999/pern-saas-api-builder/internal/caching"
	"github.com/Mj26111999/pern-saas-api-builder/internal/config"
	"github.com/Mj26111999/pern-saas-api-builder/internal/handlers"
	"github.com/Mj26111999/pern-saas-api-builder/internal/jobs"
	"github.com/Mj26111999/pern-saas-api-builder/internal/middleware"
	"github.com/Mj26111999/pern-saas-api-builder/internal/models"
	"github.com/Mj26111999/pern-saas-api-builder/internal/realtime"
	"github.com/Mj26111999/pern-saas-api-builder/internal/repositories"
	"github.com/Mj26111999/pern-saas-api-builder/internal/services"
	"github.com/Mj26111999/pern-saas-api-builder/pkg/database"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	pool, err := database.NewPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	// Create repositories
	tenantRepo := repositories.NewTenantRepository(pool)
	apiKeyRepo := repositories.NewAPIKeyRepository(pool)
	usageRepo := repositories.NewUsageRepository(pool)
	connRepo := repositories.NewConnectionRepository(pool)

	// Create services
	tokenSvc := services.NewTokenService(cacheSvc, cfg.JWTSecret,
		int(cfg.SessionTokenTTL.Seconds()), int(cfg.RefreshTokenTTL.Seconds()))
	authSvc := services.NewAuthService(tenantRepo, apiKeyRepo, tokenSvc)
	quotaSvc := services.NewQuotaService(usageRepo)
	apiKeySvc := services.NewAPIKeyService(apiKeyRepo)

	recorder := services.NewUsageRecorder(usageRepo, 256)
	recorder.Start()

	// Realtime coordinator
	coordinator := realtime.NewCoordinator(authSvc, connRepo, realtime.NewStoreExecutor(pool))

	// Background jobs
	scheduler := jobs.NewJobScheduler(connRepo, usageRepo,
		cfg.SweepInterval(), cfg.StaleThreshold(), cfg.UsageRetention())
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	// Create handlers
	authHandlers := handlers.NewAuthHandlers(tokenSvc, tenantRepo)
	keyHandlers := handlers.NewKeyHandlers(apiKeySvc)
	usageHandlers := handlers.NewUsageHandlers(quotaSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, scheduler)

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	versionMiddleware := middleware.NewVersionMiddleware()
	e.Use(versionMiddleware.APIVersionResolver())

	capabilityMiddleware := middleware.NewCapabilityMiddleware()

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)
	e.GET("/metrics", healthHandlers.GetMetrics)

	// API routes
	v1 := e.Group("/v1")
	v1.Use(versionMiddleware.VersionHeader("v1"))

	// The refresh exchange authenticates with the refresh token itself
	v1.POST("/auth/refresh", authHandlers.Refresh)

	// Protected routes: resolve credential, enforce quota, record usage
	protected := v1.Group("")
	protected.Use(middleware.Authenticate(authSvc))
	protected.Use(middleware.EnforceQuota(quotaSvc))
	protected.Use(middleware.RecordUsage(recorder))

	protected.POST("/auth/token", authHandlers.IssueToken)
	protected.POST("/auth/revoke", authHandlers.Revoke)
	protected.GET("/me", authHandlers.Me)
	protected.GET("/usage", usageHandlers.Get, capabilityMiddleware.RequirePermission(models.CapabilityViewUsage))

	keys := protected.Group("/keys", capabilityMiddleware.RequirePermission(models.CapabilityManageKeys))
	keys.POST("", keyHandlers.Create)
	keys.GET("", keyHandlers.List)
	keys.DELETE("/:id", keyHandlers.Delete)

	// Realtime channel: credential exchange happens on the channel itself
	v1.GET("/realtime", coordinator.ServeWS)

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		log.Printf("Server v%s starting on port %s", version, cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if err := scheduler.Stop(); err != nil {
		log.Printf("Scheduler shutdown error: %v", err)
	}
	recorder.Close()
}
