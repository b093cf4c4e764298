package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"job-tracker-backend/config"
	_ "job-tracker-backend/docs" // Important for Swagger
	"job-tracker-backend/internal/delivery/http/middleware"
	v1 "job-tracker-backend/internal/delivery/http/v1"
	"job-tracker-backend/internal/repository/store"
	"job-tracker-backend/internal/usecase"
	"job-tracker-backend/pkg/logger"
	"job-tracker-backend/pkg/redis"
	"job-tracker-backend/pkg/security"
	"job-tracker-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// @title           Job Tracker API
// @version         1.0
// @description     Personal job-application tracker backend.
// @host            localhost:5000
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting job tracker backend", "port", cfg.Port, "db_driver", cfg.DBDriver, "auth_mode", cfg.AuthMode)

	env := gin.Mode()
	secLog := security.NewSecurityLogger("job-tracker", env)
	defer func() { _ = secLog.Sync() }()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 3. Setup Database; schema failure is fatal
	st, err := store.Open(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	// 4. Setup Redis (optional)
	var cache usecase.Pinger
	redisClient, err := redis.NewClient(ctx, redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
	switch {
	case err == nil:
		defer redisClient.Close()
		cache = redis.Health{Client: redisClient}
		logger.Log.Info("Redis connected, rate limiting uses Redis")
	case errors.Is(err, redis.ErrNotConfigured):
		redisClient = nil
	default:
		redisClient = nil
		logger.Log.Warn("Redis unavailable, rate limiting uses in-memory fallback", "error", err)
	}

	// 5. Setup Security
	tokens, err := security.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		logger.Log.Error("Failed to create token manager", "error", err)
		os.Exit(1)
	}
	hasher := security.NewPasswordHasher(cfg.BcryptCost)

	// 6. Setup UseCases
	validate := validator.New()
	validation.RegisterValidators(validate)

	authUC := usecase.NewAuthUsecase(st.Credentials, hasher, tokens, secLog, cfg.SharedSecret())
	jobUC := usecase.NewJobUsecase(st.Jobs, validate)
	healthUC := usecase.NewHealthUsecase(st.Schema, cache)

	// 7. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:      authUC,
		JobUC:       jobUC,
		HealthUC:    healthUC,
		Tokens:      tokens,
		SecLog:      secLog,
		RateLimiter: middleware.NewRateLimiter(ctx, redisClient, secLog),
		Config:      cfg,
	})

	// 8. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
			stop()
		}
	}()
	logger.Log.Info("Server is running", "addr", srv.Addr)

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
