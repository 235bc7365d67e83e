package main

import (
	"context"
	"fmt"
	"log"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"authhub/internal/caching"
	"authhub/internal/config"
	"authhub/internal/handlers"
	"authhub/internal/jobs/background"
	"authhub/internal/middleware"
	"authhub/internal/repositories"
	"authhub/internal/services"
	"authhub/pkg/database"
)

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

	// Create repositories
	userRepo := repositories.NewUserRepository(pool)
	tenantRepo := repositories.NewTenantRepository(pool)
	tokenRepo := repositories.NewTokenRepository(pool)
	attemptRepo := repositories.NewAttemptRepository(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	// Object storage is optional; without it tenants serve raw logo values.
	var assetSvc services.AssetService
	if cfg.MinioEndpoint != "" {
		assetSvc, err = services.NewAssetService(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("Failed to initialize asset service: %v", err)
		}
		if err := assetSvc.EnsureBucket(context.Background()); err != nil {
			log.Fatalf("Failed to ensure logo bucket: %v", err)
		}
	}

	// Create services
	tokenSvc := services.NewTokenService(tokenRepo, []byte(cfg.JWTAccessSecret), []byte(cfg.JWTRefreshSecret), 0, 0)
	tenantSvc := services.NewTenantService(tenantRepo, cacheSvc, assetSvc)
	authSvc := services.NewAuthService(
		userRepo,
		tenantRepo,
		services.NewPasswordHasher(),
		services.NewAttemptLedger(attemptRepo),
		tokenSvc,
		services.NewCodeVerifier(cfg.MFAMode),
		services.NewLogMailer(),
	)

	// Create handlers
	authHandlers := handlers.NewAuthHandlers(authSvc)
	tenantHandlers := handlers.NewTenantHandlers(tenantSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	// Background maintenance jobs
	scheduler, err := background.NewJobScheduler(tokenRepo, tenantSvc)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)

	api := e.Group("/api")

	// Tenant branding is public; login screens fetch it pre-session.
	api.GET("/tenant/:tenantId", tenantHandlers.GetTenant)

	// Authentication routes (no session required)
	auth := api.Group("/auth")
	auth.POST("/login", authHandlers.Login)
	auth.POST("/register", authHandlers.Register)
	auth.POST("/mfa/verify", authHandlers.VerifyMFA)
	auth.POST("/refresh", authHandlers.Refresh)
	auth.POST("/forgot-password", authHandlers.ForgotPassword)

	// Protected routes
	requireAuth := middleware.RequireAuth(tokenSvc, userRepo)
	auth.GET("/user", authHandlers.Me, requireAuth)
	auth.POST("/logout", authHandlers.Logout, requireAuth)

	tenants := api.Group("/tenants", requireAuth)
	tenants.GET("", tenantHandlers.ListTenants)
	tenants.POST("", tenantHandlers.CreateTenant)
	tenants.PUT("/:tenantId", tenantHandlers.UpdateTenant)
	tenants.POST("/:tenantId/logo", tenantHandlers.UploadLogo)

	log.Printf("Server starting on port %d", cfg.Port)
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", cfg.Port)))
}
