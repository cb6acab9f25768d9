package http

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/store-admin/internal/observability"
	apperrors "github.com/spec-kit/store-admin/pkg/util/errorutil"
)

// MiddlewareConfig configures the global middleware chain.
type MiddlewareConfig struct {
	Logger        *zap.Logger
	Metrics       *observability.Metrics
	Timeout       time.Duration
	ExposeDetails bool
}

// RegisterMiddlewares attaches global middlewares. The request logger wraps
// the error handler so it observes the final status.
func RegisterMiddlewares(app *fiber.App, cfg MiddlewareConfig) {
	app.Use(observability.RequestLogger(cfg.Logger, cfg.Metrics))
	if cfg.Timeout > 0 {
		app.Use(requestTimeoutMiddleware(cfg.Timeout))
	}
	app.Use(errorHandlingMiddleware(cfg.Logger, cfg.Metrics, cfg.ExposeDetails))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics, exposeDetails bool) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(fmt.Errorf("panic: %v", r))
			}
			if err != nil {
				err = writeError(c, err, logger, metrics, exposeDetails)
			}
		}()
		return c.Next()
	}
}

// writeError renders err as {success:false, message, code, details?}.
func writeError(c *fiber.Ctx, err error, logger *zap.Logger, metrics *observability.Metrics, exposeDetails bool) error {
	domainErr := apperrors.ToDomainError(err)
	route := c.Path()
	if r := c.Route(); r != nil && r.Path != "" {
		route = r.Path
	}
	metrics.RecordError(route, c.Method(), domainErr.Code)

	response := fiber.Map{
		"success": false,
		"message": domainErr.Message,
		"code":    domainErr.Code,
	}
	if len(domainErr.Details) > 0 {
		response["details"] = domainErr.Details
	}
	if exposeDetails && domainErr.Err != nil {
		response["error"] = domainErr.Err.Error()
	}

	if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
		requestID := observability.RequestID(c)
		logger.Error("request failed",
			zap.String("request_id", requestID),
			zap.String("code", domainErr.Code),
			zap.Error(domainErr))
		observability.CaptureError(domainErr, requestID, c.Method(), route)
	}

	return c.Status(domainErr.HTTPStatus).JSON(response)
}
