package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/store-admin/internal/api/http/handlers"
	"github.com/spec-kit/store-admin/internal/auth"
	"github.com/spec-kit/store-admin/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Sessions       *handlers.SessionHandler
	Accounts       *handlers.AccountsHandler
	Products       *handlers.ProductsHandler
	Store          *handlers.StoreHandler
	AuthMiddleware *auth.AuthMiddleware
	LoginLimiter   *auth.LoginLimiter
	AccountLookup  auth.AccountLookup
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authenticated := cfg.AuthMiddleware.Handle
	management := auth.RequireManagement(cfg.AccountLookup)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/login", cfg.LoginLimiter.Handle, cfg.Sessions.Login)
	authGroup.Post("/refresh-token", cfg.Sessions.Refresh)
	authGroup.Post("/logout", authenticated, cfg.Sessions.Logout)

	accounts := api.Group("/accounts")
	accounts.Post("/", cfg.AuthMiddleware.Optional, cfg.Accounts.Register)
	accounts.Get("/", authenticated, management, cfg.Accounts.List)
	accounts.Get("/:id", authenticated, cfg.Accounts.Get)
	accounts.Put("/:id", authenticated, management, cfg.Accounts.Update)
	accounts.Delete("/:id", authenticated, management, cfg.Accounts.Delete)

	products := api.Group("/products", authenticated)
	products.Get("/", cfg.Products.List)
	products.Post("/", cfg.Products.Create)
	products.Get("/:id", cfg.Products.Get)
	products.Put("/:id", cfg.Products.Update)
	products.Delete("/:id", cfg.Products.Delete)

	store := api.Group("/store", authenticated)
	store.Get("/", cfg.Store.Get)
	store.Post("/", management, cfg.Store.Create)
	store.Put("/:id", management, cfg.Store.Update)
	store.Delete("/:id", management, cfg.Store.Delete)
}
