package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/store-admin/internal/api/dto"
	"github.com/spec-kit/store-admin/internal/auth"
	"github.com/spec-kit/store-admin/internal/observability"
	"github.com/spec-kit/store-admin/internal/service"
	apperrors "github.com/spec-kit/store-admin/pkg/util/errorutil"
)

// SessionHandler exposes login, refresh and logout.
type SessionHandler struct {
	sessions *service.SessionService
	metrics  *observability.Metrics
}

// NewSessionHandler constructs handler.
func NewSessionHandler(sessions *service.SessionService, metrics *observability.Metrics) *SessionHandler {
	return &SessionHandler{sessions: sessions, metrics: metrics}
}

// Login handles POST /api/auth/login.
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return h.record("login", err)
	}

	result, err := h.sessions.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return h.record("login", err)
	}
	h.record("login", nil)

	return c.Status(http.StatusOK).JSON(dto.OK("login successful", dto.LoginResponse{
		Account:           dto.NewAccountSummary(result.Account),
		TokenPairResponse: dto.NewTokenPairResponse(result.Tokens),
	}))
}

// Refresh handles POST /api/auth/refresh-token.
func (h *SessionHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return h.record("refresh", err)
		}
	}

	pair, err := h.sessions.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return h.record("refresh", err)
	}
	h.record("refresh", nil)

	return c.JSON(dto.OK("token refreshed", dto.NewTokenPairResponse(pair)))
}

// Logout handles POST /api/auth/logout.
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return h.record("logout", apperrors.NewUnauthorized(apperrors.CodeNoToken, "authentication required"))
	}
	if err := h.sessions.Logout(c.UserContext(), identity.AccountID); err != nil {
		return h.record("logout", err)
	}
	h.record("logout", nil)

	return c.JSON(dto.OK("logged out", nil))
}

func (h *SessionHandler) record(operation string, err error) error {
	if err == nil {
		h.metrics.RecordAuth(operation, "ok")
		return nil
	}
	h.metrics.RecordAuth(operation, apperrors.ToDomainError(err).Code)
	return err
}
