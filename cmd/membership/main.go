package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/membership/internal/app"
	"github.com/odyssey-erp/membership/internal/auth"
	"github.com/odyssey-erp/membership/internal/observability"
	"github.com/odyssey-erp/membership/internal/platform/cache"
	"github.com/odyssey-erp/membership/internal/platform/db"
	"github.com/odyssey-erp/membership/internal/rbac"
	"github.com/odyssey-erp/membership/internal/users"
	"github.com/odyssey-erp/membership/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if cfg.DBAutoMigrate {
		if err := db.Migrate(ctx, cfg.PGDSN); err != nil {
			logger.Error("migrate database", slog.Any("error", err))
			os.Exit(1)
		}
	}

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	var redisClient *redis.Client
	var store cache.Store
	switch cfg.CacheDriver {
	case app.CacheDriverMemory:
		memory, err := cache.NewMemoryStore(cfg.CacheMemorySize)
		if err != nil {
			logger.Error("init memory cache", slog.Any("error", err))
			os.Exit(1)
		}
		store = memory
	default:
		redisClient, err = cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Error("connect redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		store = cache.NewRedisStore(redisClient, "membership")
	}

	metrics := observability.NewMetrics()

	userRepo := users.NewRepository(dbpool)
	userService := users.NewService(userRepo, store, users.ServiceConfig{
		ListingTTL: cfg.CacheTTL,
		Logger:     logger,
		Recorder:   metrics,
	})

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL, cfg.JWTIssuer)
	authService := auth.NewService(userRepo, tokens)
	authHandler := auth.NewHandler(logger, authService, userService, !cfg.IsProduction())
	authenticator := auth.Authenticator{Tokens: tokens, Users: userService, Logger: logger}

	rbacService := rbac.NewService(dbpool)
	rbacMiddleware := rbac.Middleware{Roles: rbacService, Logger: logger}
	usersHandler := users.NewHandler(logger, userService, rbacMiddleware)

	var jobHandler *jobs.Handler
	if redisClient != nil {
		inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		jobHandler = jobs.NewHandler(inspector, logger)
	}

	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		AuthHandler:   authHandler,
		Authenticator: authenticator,
		UsersHandler:  usersHandler,
		JobHandler:    jobHandler,
		Metrics:       metrics,
		Readiness: map[string]app.Pinger{
			"postgres": userRepo,
			"cache":    store,
		},
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("cache", cfg.CacheDriver))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
