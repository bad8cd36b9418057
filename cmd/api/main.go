package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contact-manager-backend/config"
	_ "contact-manager-backend/docs" // Important for Swagger
	"contact-manager-backend/internal/delivery/http/middleware"
	v1 "contact-manager-backend/internal/delivery/http/v1"
	"contact-manager-backend/internal/domain"
	"contact-manager-backend/internal/repository/memory"
	"contact-manager-backend/internal/repository/postgres"
	"contact-manager-backend/internal/usecase"
	"contact-manager-backend/pkg/audit"
	"contact-manager-backend/pkg/database"
	"contact-manager-backend/pkg/logger"
	"contact-manager-backend/pkg/redis"
	"contact-manager-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// @title           Contact Manager API
// @version         1.0
// @description     CRUD API over contacts with case-insensitive unique names.
// @host            localhost:8080
// @BasePath        /api
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Init("info")
		logger.Log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting contact manager backend", "port", cfg.Port, "store", cfg.StoreDriver)

	if err := run(cfg); err != nil {
		logger.Log.Error("Server stopped", "error", err)
		os.Exit(1)
	}
	logger.Log.Info("Server exiting")
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	// 3. Setup Store
	var contactRepo domain.ContactRepository
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		contactRepo = memory.NewContactRepository()
	default:
		pc := database.DefaultPoolConfig()
		pc.MaxConns = int32(cfg.DBMaxConns)
		pc.MinConns = int32(cfg.DBMinConns)

		dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl, pc)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer dbPool.Close()

		if cfg.AutoMigrate {
			if err := postgres.Migrate(ctx, dbPool); err != nil {
				return fmt.Errorf("migrate database: %w", err)
			}
		}
		contactRepo = postgres.NewContactRepository(dbPool)
	}

	// 4. Setup Rate Limit Store (optional)
	var rateLimitStore goredis.Scripter
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(ctx, redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
		if err != nil {
			logger.Log.Warn("Redis unavailable, rate limiting in memory", "error", err)
		} else {
			defer redisClient.Close()
			rateLimitStore = redisClient
		}
	}

	// 5. Setup Audit Log
	auditLog := audit.Nop()
	if cfg.AuditLog {
		auditLog = audit.New("contact-manager", cfg.AppEnv)
	}
	defer auditLog.Sync()

	// 6. Setup UseCases
	contactUC := usecase.NewContactUsecase(contactRepo, validation.New(), usecase.WithAudit(auditLog))
	healthUC := usecase.NewHealthUsecase(contactRepo)
	exportUC := usecase.NewExportUsecase(contactRepo, auditLog)

	// 7. Setup Router
	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	rateLimit := middleware.DefaultRateLimitConfig()
	rateLimit.Limit = cfg.RateLimitThreshold
	rateLimit.Window = time.Duration(cfg.RateLimitWindowSeconds) * time.Second
	rateLimit.Audit = auditLog

	router := v1.NewRouter(v1.RouterDeps{
		ContactUC:      contactUC,
		HealthUC:       healthUC,
		ExportUC:       exportUC,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      rateLimit,
		RateLimitStore: rateLimitStore,
		AccessLog:      true,
	})

	// 8. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	return serve(srv, quit, cfg.ShutdownTimeout)
}

// serve runs srv until a signal arrives on quit, then shuts it down
// gracefully. A listener failure is returned as soon as it happens.
func serve(srv *http.Server, quit <-chan os.Signal, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	case <-quit:
	}
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
