package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq" // PostgreSQL driver

	httpadapter "github.com/opsboard/opsboard/internal/adapter/http"
	"github.com/opsboard/opsboard/internal/adapter/http/middleware"
	"github.com/opsboard/opsboard/internal/adapter/persistence"
	"github.com/opsboard/opsboard/internal/adapter/storage"
	"github.com/opsboard/opsboard/internal/config"
	jwtservice "github.com/opsboard/opsboard/internal/service/jwt"
	"github.com/opsboard/opsboard/internal/service/logger"
	"github.com/opsboard/opsboard/internal/service/notify"
	"github.com/opsboard/opsboard/internal/service/password"
	"github.com/opsboard/opsboard/internal/service/ratelimit"
	"github.com/opsboard/opsboard/internal/usecase"

	"github.com/sirupsen/logrus"
)

const bcryptCost = 10

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLogger := logger.NewStructuredLogger(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		ServiceName: "opsboard",
	})

	ctx := context.Background()
	appLogger.Info(ctx, "Starting opsboard", map[string]interface{}{
		"environment": cfg.Server.Environment,
	})

	// Database
	db, err := sql.Open("postgres", cfg.GetDatabaseURL())
	if err != nil {
		appLogger.Error(ctx, "Failed to open database", err, nil)
		os.Exit(1)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxConnections)
	db.SetConnMaxIdleTime(cfg.Database.MaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		appLogger.Error(ctx, "Failed to ping database", err, nil)
		os.Exit(1)
	}

	// Rate limiter (Redis-backed, noop when disabled)
	limiterLogger := logrus.New()
	limiter, err := ratelimit.NewRateLimitService(ratelimit.Config{
		Enabled:  cfg.Security.RateLimitEnabled,
		RedisURL: cfg.GetRedisURL(),
	}, limiterLogger)
	if err != nil {
		appLogger.Error(ctx, "Failed to initialize rate limiter", err, nil)
		os.Exit(1)
	}

	// File storage
	fileStore, err := storage.NewLocalStore(cfg.Storage.Dir)
	if err != nil {
		appLogger.Error(ctx, "Failed to initialize file store", err, nil)
		os.Exit(1)
	}

	// Repositories
	taskRepo := persistence.NewPostgresTaskRepository(db)
	incidentRepo := persistence.NewPostgresIncidentRepository(db)
	commentRepo := persistence.NewPostgresCommentRepository(db)
	attachmentRepo := persistence.NewPostgresAttachmentRepository(db)
	userRepo := persistence.NewPostgresUserRepository(db)

	// Services
	tokenService, err := jwtservice.NewTokenService(cfg.Security.JWTSecret, cfg.Security.JWTExpiration)
	if err != nil {
		appLogger.Error(ctx, "Failed to initialize token service", err, nil)
		os.Exit(1)
	}
	passwordService := password.NewBcryptPasswordService(bcryptCost)
	notifier := notify.NewLogNotifier(appLogger)

	// Use cases
	taskUseCase := usecase.NewTaskUseCase(taskRepo, notifier)
	incidentUseCase := usecase.NewIncidentUseCase(incidentRepo, notifier)
	commentUseCase := usecase.NewCommentUseCase(commentRepo, taskRepo, incidentRepo, notifier)
	attachmentUseCase := usecase.NewAttachmentUseCase(
		attachmentRepo, taskRepo, incidentRepo, fileStore,
		cfg.Storage.MaxUploadBytes, cfg.Storage.AllowedTypes,
	)
	authUseCase := usecase.NewAuthUseCase(userRepo, passwordService, tokenService)

	// HTTP server
	authMiddleware := middleware.NewAuthMiddleware(tokenService)
	server := httpadapter.NewServer(
		httpadapter.ServerConfig{
			Port:            cfg.Server.Port,
			ReadTimeout:     cfg.Server.ReadTimeout,
			WriteTimeout:    cfg.Server.WriteTimeout,
			IdleTimeout:     cfg.Server.IdleTimeout,
			MaxUploadBytes:  cfg.Storage.MaxUploadBytes,
			IngestAPIKeys:   cfg.Ingest.APIKeys,
			RateLimit:       cfg.Security.RateLimitRequests,
			RateLimitWindow: cfg.Security.RateLimitWindow,
		},
		appLogger,
		taskUseCase,
		incidentUseCase,
		commentUseCase,
		attachmentUseCase,
		authUseCase,
		authMiddleware,
		limiter,
	)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			appLogger.Error(ctx, "HTTP server failed", err, nil)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, "Shutdown error", err, nil)
		os.Exit(1)
	}

	appLogger.Info(ctx, "Server stopped", nil)
}
