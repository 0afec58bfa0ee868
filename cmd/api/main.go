package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ejtx16/shrink-iq-web-app/internal/auth"
	"github.com/ejtx16/shrink-iq-web-app/internal/config"
	"github.com/ejtx16/shrink-iq-web-app/internal/handler"
	"github.com/ejtx16/shrink-iq-web-app/internal/logger"
	"github.com/ejtx16/shrink-iq-web-app/internal/middleware"
	"github.com/ejtx16/shrink-iq-web-app/internal/repository/postgres"
	redisRepo "github.com/ejtx16/shrink-iq-web-app/internal/repository/redis"
	"github.com/ejtx16/shrink-iq-web-app/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if err := logger.Initialize(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		OutputPath: cfg.Log.OutputPath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	log := logger.Get()
	log.Info("Starting ShrinkIQ service",
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
		"log_level", cfg.Log.Level,
	)

	if err := postgres.Migrate(cfg.Database.URL); err != nil {
		log.Error("Failed to apply migrations", "error", err)
		os.Exit(1)
	}

	dbPool, err := setupDatabase(cfg)
	if err != nil {
		log.Error("Failed to setup database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	redisClient, err := setupRedis(cfg)
	if err != nil {
		log.Error("Failed to setup redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	linkRepo := postgres.NewLinkRepository(dbPool)
	userRepo := postgres.NewUserRepository(dbPool)
	linkCache := redisRepo.NewLinkCache(redisClient)

	tokenManager := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)

	shortenerService := service.NewShortenerService(linkRepo, linkCache, cfg.Server.BaseURL)
	analyticsService := service.NewAnalyticsService(linkRepo, cfg.Server.BaseURL)
	authService := service.NewAuthService(userRepo, tokenManager)

	linkHandler := handler.NewLinkHandler(shortenerService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
	authHandler := handler.NewAuthHandler(authService)
	healthHandler := handler.NewHealthHandler(dbPool, redisClient)

	rateLimiter := middleware.NewRateLimiter(redisClient, cfg.RateLimit.Enabled)

	router := setupRouter(linkHandler, analyticsHandler, authHandler, healthHandler, tokenManager, rateLimiter)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("Server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	gracefulShutdown(srv, cfg.Server.ShutdownTimeout, dbPool, redisClient, log)
}

func setupDatabase(cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	return pgxpool.NewWithConfig(context.Background(), poolConfig)
}

func setupRedis(cfg *config.Config) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
	})

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return redisClient, nil
}

func setupRouter(
	linkHandler *handler.LinkHandler,
	analyticsHandler *handler.AnalyticsHandler,
	authHandler *handler.AuthHandler,
	healthHandler *handler.HealthHandler,
	tokenManager *auth.TokenManager,
	rateLimiter *middleware.RateLimiter,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(rateLimiter.Limit("general", 1000, time.Hour))

	router.GET("/healthz", healthHandler.Healthz)
	router.GET("/readyz", healthHandler.Readyz)

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", rateLimiter.Limit("auth", 5, 15*time.Minute), authHandler.Register)
			authGroup.POST("/login", rateLimiter.Limit("auth", 5, 15*time.Minute), authHandler.Login)
			authGroup.GET("/profile", middleware.AuthRequired(tokenManager), authHandler.Profile)
		}

		urls := api.Group("/urls")
		{
			urls.POST("/shorten",
				middleware.AuthOptional(tokenManager),
				rateLimiter.Limit("shorten", 100, time.Hour),
				linkHandler.Shorten,
			)
			urls.GET("/my", middleware.AuthRequired(tokenManager), linkHandler.List)
			urls.GET("/:id", middleware.AuthRequired(tokenManager), linkHandler.Get)
			urls.DELETE("/:id", middleware.AuthRequired(tokenManager), linkHandler.Delete)
		}

		analytics := api.Group("/analytics", middleware.AuthRequired(tokenManager))
		{
			analytics.GET("/dashboard", analyticsHandler.Dashboard)
			analytics.GET("/url/:id", analyticsHandler.LinkReport)
		}
	}

	router.GET("/:shortCode", linkHandler.Redirect)

	return router
}

func gracefulShutdown(srv *http.Server, timeout time.Duration, dbPool *pgxpool.Pool, redisClient *redis.Client, log *slog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Info("Shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", "error", err)
	}

	dbPool.Close()
	log.Info("Database connection closed")

	if err := redisClient.Close(); err != nil {
		log.Error("Error closing Redis", "error", err)
	}

	log.Info("Graceful shutdown completed")
}
