package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/store-admin/internal/api/http"
	"github.com/spec-kit/store-admin/internal/api/http/handlers"
	"github.com/spec-kit/store-admin/internal/auth"
	"github.com/spec-kit/store-admin/internal/config"
	"github.com/spec-kit/store-admin/internal/events"
	"github.com/spec-kit/store-admin/internal/observability"
	"github.com/spec-kit/store-admin/internal/persistence"
	"github.com/spec-kit/store-admin/internal/repository"
	"github.com/spec-kit/store-admin/internal/service"
	"github.com/spec-kit/store-admin/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := observability.InitSentry(cfg.Sentry, cfg.App); err != nil {
		logger.Warn("sentry disabled", zap.Error(err))
	}
	defer observability.FlushSentry()

	if cfg.Auth.JWTSecret == "" {
		logger.Warn("AUTH_JWT_SECRET is not set; token operations will fail with a configuration error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(cfg.Postgres.DSN, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	repos := repository.NewSet(pg.PoolHandle())
	if repos.InMemory() {
		logger.Warn("using in-memory repositories; data is lost on restart")
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	sessionService := service.NewSessionService(service.SessionDependencies{
		AccountRepo:  repos.Accounts,
		TokenManager: tokens,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	accountService := service.NewAccountService(repos.Accounts, cfg.Auth.BcryptCost)
	productService := service.NewProductService(repos.Products)
	storeService := service.NewStoreService(repos.Stores)

	metrics := observability.NewMetrics()
	dependencies := map[string]handlers.Pinger{"redis": redis}
	if !repos.InMemory() {
		dependencies["postgres"] = pg
	}

	app := httptransport.NewServer(httptransport.ServerConfig{
		AppName:        cfg.App.Name,
		BodyLimit:      cfg.App.BodyLimitBytes,
		RequestTimeout: cfg.App.RequestTimeout(),
		ExposeDetails:  cfg.App.IsDevelopment(),
		Logger:         logger,
		Metrics:        metrics,
	}, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Sessions:       handlers.NewSessionHandler(sessionService, metrics),
		Accounts:       handlers.NewAccountsHandler(accountService),
		Products:       handlers.NewProductsHandler(productService),
		Store:          handlers.NewStoreHandler(storeService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
		LoginLimiter:   auth.NewLoginLimiter(redis.Handle(), cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow, logger),
		AccountLookup:  repos.Accounts,
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
