package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/asset-atlas/atlas/internal/app"
	"github.com/asset-atlas/atlas/internal/assets"
	"github.com/asset-atlas/atlas/internal/audit"
	"github.com/asset-atlas/atlas/internal/auth"
	"github.com/asset-atlas/atlas/internal/bootstrap"
	"github.com/asset-atlas/atlas/internal/platform/db"
	"github.com/asset-atlas/atlas/internal/rbac"
	"github.com/asset-atlas/atlas/internal/shared"
	"github.com/asset-atlas/atlas/internal/users"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)

	seeder := bootstrap.NewSeeder(pool, logger, auditLogger, auth.HashPassword)
	if err := seeder.Seed(ctx, cfg.AdminDefaultPassword); err != nil {
		logger.Error("bootstrap seed", slog.Any("error", err))
		os.Exit(1)
	}

	tokens, err := auth.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL, nil)
	if err != nil {
		logger.Error("token issuer", slog.Any("error", err))
		os.Exit(1)
	}
	throttle := auth.NewThrottle(redisClient, logger, cfg.LoginAttemptLimit, cfg.LoginAttemptWindow)
	authService := auth.NewService(auth.NewRepository(pool), tokens, auditLogger, throttle)
	authMiddleware := auth.Middleware{Service: authService, Logger: logger}
	rbacMiddleware := rbac.Middleware{Service: rbac.NewService(), Logger: logger}

	assetsService := assets.NewService(assets.NewRepository(pool, auditLogger))
	usersService := users.NewService(users.NewRepository(pool, auditLogger), auth.HashPassword)
	auditService := audit.NewService(audit.NewRepository(pool))

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		AuthMiddleware: authMiddleware,
		AuthHandler:    auth.NewHandler(logger, authService),
		AssetsHandler:  assets.NewHandler(logger, assetsService, rbacMiddleware),
		UsersHandler:   users.NewHandler(logger, usersService, rbacMiddleware),
		AuditHandler:   audit.NewHandler(logger, auditService, rbacMiddleware),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("server exit", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
