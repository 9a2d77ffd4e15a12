package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/assadsharif/chatkit-widget-implementation/internal/config"
	"github.com/assadsharif/chatkit-widget-implementation/internal/controllers"
	"github.com/assadsharif/chatkit-widget-implementation/internal/database"
	"github.com/assadsharif/chatkit-widget-implementation/internal/fixtures"
	"github.com/assadsharif/chatkit-widget-implementation/internal/logging"
	"github.com/assadsharif/chatkit-widget-implementation/internal/middleware"
	"github.com/assadsharif/chatkit-widget-implementation/internal/repositories"
	"github.com/assadsharif/chatkit-widget-implementation/internal/routes"
	"github.com/assadsharif/chatkit-widget-implementation/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.NewJSONLogger(cfg.Logging.Service, cfg.Logging.Level)
	ctx := context.Background()

	if err := database.Connect(&cfg.Database); err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Printf("error closing database: %v", err)
		}
	}()

	if err := database.RunMigrations(&cfg.Database); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	db := database.GetDB()

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	tokenRepo := repositories.NewVerificationTokenRepository(db)
	rateLimitRepo := repositories.NewRateLimitRepository(db)
	savedChatRepo := repositories.NewSavedChatRepository(db)
	anonRepo := repositories.NewAnonymousSessionRepository(db)
	analyticsRepo := repositories.NewAnalyticsRepository(db)

	if cfg.IntegrationTest {
		logger.Info(ctx, "integration_test_mode_enabled",
			"rate_limit_window_seconds", cfg.RateLimit.WindowSeconds,
			"email_enabled", cfg.Email.Enabled,
		)
		// Fresh analytics and deterministic credentials for each suite run
		if err := analyticsRepo.DeleteAll(ctx); err != nil {
			logger.Warn(ctx, "analytics_clear_failed", "error", err.Error())
		}
		if err := fixtures.Setup(db); err != nil {
			log.Fatalf("failed to seed test fixtures: %v", err)
		}
	}

	// Services
	authService := services.NewAuthService(userRepo, sessionRepo, tokenRepo, cfg, logger)
	rateLimitService := services.NewRateLimitService(rateLimitRepo, &cfg.RateLimit, logger)
	emailService := services.NewEmailService(cfg, logger)
	chatService := services.NewChatService(savedChatRepo, anonRepo, logger)
	personalizeService := services.NewPersonalizeService(logger)
	analyticsService := services.NewAnalyticsService(analyticsRepo, userRepo, logger)

	// Controllers
	ctrl := routes.Controllers{
		Auth:      controllers.NewAuthController(authService, emailService, chatService, analyticsService, logger),
		Chat:      controllers.NewChatController(chatService, analyticsService, logger),
		User:      controllers.NewUserController(chatService, personalizeService, analyticsService, logger),
		Analytics: controllers.NewAnalyticsController(analyticsService),
		RateLimit: controllers.NewRateLimitController(rateLimitService),
	}

	mw := routes.Middleware{
		RequireAuth:       middleware.RequireAuth(authService),
		OptionalAuth:      middleware.OptionalAuth(authService, logger),
		RateLimitDefault:  middleware.RateLimit(rateLimitService, services.ActionDefault),
		RateLimitSave:     middleware.RateLimit(rateLimitService, services.ActionSaveChat),
		RateLimitPersonal: middleware.RateLimit(rateLimitService, services.ActionPersonalize),
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup router
	router := gin.Default()
	router.Use(middleware.RequestID())
	routes.SetupRoutes(router, ctrl, mw, cfg.IntegrationTest)

	addr := cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}
	go func() {
		logger.Info(ctx, "server_started", "addr", addr, "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to run server: %v", err)
		}
	}()

	waitForSignal()

	// In-flight requests get shutdown_timeout to finish before the
	// listener is torn down.
	timeout, err := cfg.Server.GetShutdownTimeout()
	if err != nil || timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "server_shutdown_error", "error", err.Error())
	}
	logger.Info(ctx, "server_stopped")
}

func waitForSignal() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("Shutting down server...")
}
