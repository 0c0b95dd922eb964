package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio-backend/config"
	_ "portfolio-backend/docs" // Important for Swagger
	v1 "portfolio-backend/internal/delivery/http/v1"
	"portfolio-backend/internal/usecase"
	"portfolio-backend/pkg/email"
	"portfolio-backend/pkg/logger"
	"portfolio-backend/pkg/redis"
	"portfolio-backend/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// @title           Portfolio Backend API
// @version         1.0
// @description     Contact form dispatch for the portfolio site.
// @host            localhost:8080
// @BasePath        /v1
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting portfolio backend", "port", cfg.Port, "email_provider", cfg.EmailProvider)

	zapLogger := logger.NewZap()
	defer func() { _ = zapLogger.Sync() }()
	securityLogger := security.NewSecurityLogger(zapLogger, "portfolio-backend", cfg.GinMode)

	// 3. Setup Redis (optional)
	var redisClient *goredis.Client
	if cfg.UpstashRedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err = redis.Connect(ctx, redis.Config{
			URL:      cfg.UpstashRedisURL,
			Password: cfg.UpstashRedisPassword,
		})
		cancel()
		if err != nil {
			logger.Log.Warn("Redis unavailable - rate limiting falls back to memory", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// 4. Setup Email Provider
	provider, err := email.NewProvider(cfg, logger.Log)
	if err != nil {
		logger.Log.Error("Failed to create email provider", "error", err)
		os.Exit(1)
	}
	emailConfigured := email.IsConfigured(cfg)
	if !emailConfigured {
		logger.Log.Warn("Email provider not fully configured - contact form will report failures", "provider", provider.Name())
	}

	// 5. Setup UseCases
	contactUC := usecase.NewContactUsecase(provider, usecase.ContactConfig{
		FromEmail:     cfg.ContactFromEmail,
		FromName:      cfg.ContactFromName,
		ToEmail:       cfg.ContactEmailTo,
		SubjectPrefix: cfg.ContactSubjectPrefix,
		SendTimeout:   cfg.EmailSendTimeout,
	}, logger.Log, securityLogger)
	healthUC := usecase.NewHealthUsecase(provider.Name(), emailConfigured, redisClient)

	// 6. Setup Router
	gin.SetMode(cfg.GinMode)
	router := v1.NewRouter(v1.RouterDeps{
		ContactUC:   contactUC,
		HealthUC:    healthUC,
		Redis:       redisClient,
		Logger:      logger.Log,
		AccessLog:   zapLogger,
		SecurityLog: securityLogger,
		Config:      cfg,
	})

	// 7. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// Allow an in-flight provider call to finish.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.EmailSendTimeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
