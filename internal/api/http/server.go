package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/store-admin/internal/observability"
)

// ServerConfig configures the fiber application.
type ServerConfig struct {
	AppName        string
	BodyLimit      int
	RequestTimeout time.Duration
	ExposeDetails  bool
	Logger         *zap.Logger
	Metrics        *observability.Metrics
}

// NewServer builds the fiber app with the global middleware chain and routes.
func NewServer(cfg ServerConfig, routes RouteConfig) *fiber.App {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		BodyLimit:             cfg.BodyLimit,
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, MiddlewareConfig{
		Logger:        logger,
		Metrics:       cfg.Metrics,
		Timeout:       cfg.RequestTimeout,
		ExposeDetails: cfg.ExposeDetails,
	})
	if routes.Metrics == nil {
		routes.Metrics = cfg.Metrics
	}
	RegisterRoutes(app, routes)
	return app
}
