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

	"github.com/Baaaki/trail-catalog/internal/assets"
	"github.com/Baaaki/trail-catalog/internal/cache"
	"github.com/Baaaki/trail-catalog/internal/config"
	"github.com/Baaaki/trail-catalog/internal/database"
	"github.com/Baaaki/trail-catalog/internal/handler"
	"github.com/Baaaki/trail-catalog/internal/journal"
	"github.com/Baaaki/trail-catalog/internal/middleware"
	"github.com/Baaaki/trail-catalog/internal/repository"
	"github.com/Baaaki/trail-catalog/internal/service"
	"github.com/Baaaki/trail-catalog/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(!cfg.IsProduction(), zap.String("app", "trail-server")); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.JWTSecret == "" {
		logger.Log.Fatal("JWT_SECRET is required")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}

	store, err := assets.NewStore(cfg.UploadBaseDir)
	if err != nil {
		logger.Log.Fatal("Failed to open asset store", zap.String("dir", cfg.UploadBaseDir), zap.Error(err))
	}

	orphans, err := journal.Open(cfg.AssetJournalPath)
	if err != nil {
		logger.Log.Fatal("Failed to open asset journal", zap.String("path", cfg.AssetJournalPath), zap.Error(err))
	}
	defer orphans.Close()

	// Redis is optional: without it there is no trail cache and no rate limiting.
	var redisClient *redis.Client
	var trailCache cache.TrailCache = cache.NopTrailCache{}
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewRedisClient(context.Background(), cfg.RedisURL)
		if err != nil {
			logger.Log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		trailCache = cache.NewRedisTrailCache(redisClient, cfg.CacheTTL)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	trailRepo := repository.NewTrailRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// Services
	refs := service.NewReferenceChecker(userRepo, trailRepo)
	cascader := service.NewCascader(userRepo, feedbackRepo, reportRepo)

	var verifier service.IdentityVerifier
	if cfg.GoogleClientID != "" {
		verifier = service.NewGoogleVerifier(cfg.GoogleClientID)
	}

	authService := service.NewAuthService(userRepo, verifier, cfg.JWTSecret, cfg.JWTExpiry)
	userService := service.NewUserService(db, userRepo, trailRepo, cascader)
	trailService := service.NewTrailService(db, trailRepo, refs, cascader, store, orphans, trailCache)
	feedbackService := service.NewFeedbackService(feedbackRepo, userRepo, trailRepo, refs)
	reportService := service.NewReportService(reportRepo, userRepo, trailRepo, refs)

	if _, err := trailService.SweepOrphans(context.Background()); err != nil {
		logger.Log.Warn("Startup asset sweep failed", zap.Error(err))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CorsOrigins))
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.HSTSMiddleware(cfg.IsProduction()))
	if redisClient != nil {
		limiter := middleware.NewRateLimiter(redisClient, middleware.RateLimiterConfig{
			MaxRequests: cfg.RateLimitMaxRequests,
			Window:      cfg.RateLimitWindow,
		})
		router.Use(limiter.Middleware())
	}

	handler.RegisterRoutes(router, handler.Handlers{
		Users:     handler.NewUserHandler(authService, userService),
		Trails:    handler.NewTrailHandler(trailService),
		Feedbacks: handler.NewFeedbackHandler(feedbackService),
		Reports:   handler.NewReportHandler(reportService),
	}, cfg.JWTSecret)

	srv := &http.Server{
		Addr:              cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Server starting", zap.String("addr", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Graceful shutdown failed", zap.Error(err))
	}
}
