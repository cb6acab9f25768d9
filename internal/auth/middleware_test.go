package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/store-admin/internal/domain"
	apperrors "github.com/spec-kit/store-admin/pkg/util/errorutil"
)

type fakeLookup map[string]*domain.Account

func (f fakeLookup) GetByID(_ context.Context, id string) (*domain.Account, error) {
	account, ok := f[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return account, nil
}

func newTestApp(handlers ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"code": domainErr.Code})
		},
	})
	handlers = append(handlers, func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return c.SendStatus(http.StatusTeapot)
		}
		fromStd, ok := IdentityFromStdContext(c.UserContext())
		if !ok || fromStd.AccountID != identity.AccountID {
			return c.SendStatus(http.StatusTeapot)
		}
		return c.JSON(fiber.Map{"id": identity.AccountID, "role": identity.Role})
	})
	app.Get("/protected", handlers...)
	return app
}

func call(t *testing.T, app *fiber.App, header string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set(fiber.HeaderAuthorization, header)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}

func TestAuthMiddleware(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Minute, time.Hour)
	account := testAccount()
	pair, err := tm.IssuePair(account)
	require.NoError(t, err)

	app := newTestApp(NewAuthMiddleware(tm).Handle)

	status, body := call(t, app, "")
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, apperrors.CodeNoToken, body["code"])

	status, body = call(t, app, "Token "+pair.Access.Value)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, apperrors.CodeInvalidToken, body["code"])

	status, body = call(t, app, "Bearer garbage")
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, apperrors.CodeInvalidToken, body["code"])

	status, body = call(t, app, "Bearer "+pair.Refresh.Value)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, apperrors.CodeInvalidTokenType, body["code"])

	status, body = call(t, app, "Bearer "+pair.Access.Value)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, account.ID, body["id"])
	require.Equal(t, string(domain.RoleManager), body["role"])
}

func TestAuthMiddlewareExpiredAndMisconfigured(t *testing.T) {
	now := time.Now()
	tm := NewTokenManager(testSecret, time.Minute, time.Hour).WithClock(func() time.Time { return now })
	access, err := tm.IssueAccessToken(testAccount())
	require.NoError(t, err)

	app := newTestApp(NewAuthMiddleware(tm).Handle)
	now = now.Add(2 * time.Minute)
	status, body := call(t, app, "Bearer "+access.Value)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, apperrors.CodeTokenExpired, body["code"])

	unconfigured := newTestApp(NewAuthMiddleware(NewTokenManager("", 0, 0)).Handle)
	status, body = call(t, unconfigured, "Bearer "+access.Value)
	require.Equal(t, http.StatusInternalServerError, status)
	require.Equal(t, apperrors.CodeConfiguration, body["code"])
}

func TestRequireManagement(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Minute, time.Hour)

	manager := testAccount()
	collaborator := &domain.Account{ID: "c1", Email: "c@x.com", Role: domain.RoleCollaborator, Active: true}
	demoted := &domain.Account{ID: "d1", Email: "d@x.com", Role: domain.RoleIntern, Active: true}
	inactive := &domain.Account{ID: "i1", Email: "i@x.com", Role: domain.RoleAdministrator, Active: false}
	ghost := &domain.Account{ID: "g1", Email: "g@x.com", Role: domain.RoleAdministrator, Active: true}

	lookup := fakeLookup{
		manager.ID:      manager,
		collaborator.ID: collaborator,
		demoted.ID:      demoted,
		inactive.ID:     inactive,
	}
	app := newTestApp(NewAuthMiddleware(tm).Handle, RequireManagement(lookup))

	token := func(a *domain.Account) string {
		issued, err := tm.IssueAccessToken(a)
		require.NoError(t, err)
		return "Bearer " + issued.Value
	}

	status, _ := call(t, app, token(manager))
	require.Equal(t, http.StatusOK, status)

	status, body := call(t, app, token(collaborator))
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, apperrors.CodeForbidden, body["code"])

	// Token still claims administrator but the stored role was lowered.
	stale, err := tm.IssueAccessToken(&domain.Account{ID: demoted.ID, Role: domain.RoleAdministrator})
	require.NoError(t, err)
	status, _ = call(t, app, "Bearer "+stale.Value)
	require.Equal(t, http.StatusForbidden, status)

	status, body = call(t, app, token(inactive))
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, apperrors.CodeAccountInactive, body["code"])

	status, body = call(t, app, token(ghost))
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, apperrors.CodeNotFound, body["code"])
}

func TestLoginLimiterFailsOpen(t *testing.T) {
	newApp := func(limiter *LoginLimiter) *fiber.App {
		app := fiber.New()
		app.Post("/login", limiter.Handle, func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNoContent) })
		return app
	}

	disabled := NewLoginLimiter(nil, 1, time.Minute, zap.NewNop())
	unreachable := NewLoginLimiter(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	}), 1, time.Minute, zap.NewNop())

	for _, limiter := range []*LoginLimiter{disabled, unreachable} {
		app := newApp(limiter)
		for i := 0; i < 3; i++ {
			resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil), -1)
			require.NoError(t, err)
			require.Equal(t, http.StatusNoContent, resp.StatusCode)
		}
	}
}
