package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/store-admin/pkg/util/errorutil"
)

func newLimiterApp(limiter *LoginLimiter) *fiber.App {
	app := fiber.New(fiber.Config{
		ProxyHeader: fiber.HeaderXForwardedFor,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"code": domainErr.Code})
		},
	})
	app.Post("/login", limiter.Handle, func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNoContent) })
	return app
}

func attempt(t *testing.T, app *fiber.App, ip, email string) *http.Response {
	t.Helper()
	payload, err := json.Marshal(map[string]string{"email": email, "password": "x"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(fiber.HeaderXForwardedFor, ip)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestLoginLimiterCountsAttemptsPerWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	const maxAttempts = 3
	app := newLimiterApp(NewLoginLimiter(client, maxAttempts, time.Minute, zap.NewNop()))

	for i := 0; i < maxAttempts; i++ {
		resp := attempt(t, app, "10.0.0.1", "Ana@X.com")
		require.Equal(t, http.StatusNoContent, resp.StatusCode, "attempt %d", i+1)
	}

	key := "login_attempts:10.0.0.1:ana@x.com"
	require.Equal(t, time.Minute, mr.TTL(key))
	count, err := mr.Get(key)
	require.NoError(t, err)
	require.Equal(t, "3", count)

	resp := attempt(t, app, "10.0.0.1", "ana@x.com")
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.Equal(t, "60", resp.Header.Get(fiber.HeaderRetryAfter))
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, apperrors.CodeTooManyAttempts, body["code"])

	// Other emails and other clients keep their own budget.
	require.Equal(t, http.StatusNoContent, attempt(t, app, "10.0.0.1", "bia@x.com").StatusCode)
	require.Equal(t, http.StatusNoContent, attempt(t, app, "10.0.0.2", "ana@x.com").StatusCode)

	mr.FastForward(30 * time.Second)
	resp = attempt(t, app, "10.0.0.1", "ana@x.com")
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.Equal(t, "30", resp.Header.Get(fiber.HeaderRetryAfter))
	require.Equal(t, 30*time.Second, mr.TTL(key), "later hits must not extend the window")

	mr.FastForward(31 * time.Second)
	require.False(t, mr.Exists(key))
	require.Equal(t, http.StatusNoContent, attempt(t, app, "10.0.0.1", "ana@x.com").StatusCode)
	require.Equal(t, time.Minute, mr.TTL(key))
}
