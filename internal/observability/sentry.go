package observability

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/spec-kit/store-admin/internal/config"
)

// InitSentry enables error reporting when a DSN is configured.
func InitSentry(cfg config.SentryConfig, app config.AppConfig) error {
	if cfg.DSN == "" {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      app.Env,
		Release:          app.Version,
		AttachStacktrace: true,
	})
}

// FlushSentry waits for buffered events to be sent.
func FlushSentry() {
	sentry.Flush(2 * time.Second)
}

// CaptureError reports err with request metadata. It is a no-op when Sentry
// was not initialised.
func CaptureError(err error, requestID, method, route string) {
	hub := sentry.CurrentHub()
	if hub.Client() == nil || err == nil {
		return
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("request_id", requestID)
		scope.SetTag("method", method)
		scope.SetTag("route", route)
		hub.CaptureException(err)
	})
}
