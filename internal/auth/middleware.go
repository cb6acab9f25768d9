package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/store-admin/internal/domain"
	apperrors "github.com/spec-kit/store-admin/pkg/util/errorutil"
)

const identityKey = "auth_identity"

type identityCtxKey struct{}

// AuthMiddleware validates bearer access tokens. It trusts the signed claims
// and does not query the credential store.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if authHeader == "" {
		return apperrors.NewUnauthorized(apperrors.CodeNoToken, "no token provided")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return apperrors.NewUnauthorized(apperrors.CodeInvalidToken, "invalid authorization header")
	}

	claims, err := m.tokens.Verify(strings.TrimSpace(parts[1]))
	if err != nil {
		return VerifyError(err, "access token")
	}
	if claims.Type != domain.TokenTypeAccess {
		return apperrors.NewUnauthorized(apperrors.CodeInvalidTokenType, "use the access token to reach protected resources")
	}

	identity := &domain.Identity{
		AccountID: claims.AccountID,
		Email:     claims.Email,
		Role:      claims.Role,
	}
	c.Locals(identityKey, identity)
	c.SetUserContext(context.WithValue(c.UserContext(), identityCtxKey{}, identity))
	return c.Next()
}

// Optional authenticates the caller when an Authorization header is present
// and lets anonymous requests through. A header that fails verification is
// still rejected.
func (m *AuthMiddleware) Optional(c *fiber.Ctx) error {
	if strings.TrimSpace(c.Get(fiber.HeaderAuthorization)) == "" {
		return c.Next()
	}
	return m.Handle(c)
}

// VerifyError maps TokenManager failures onto the error taxonomy.
func VerifyError(err error, what string) error {
	switch {
	case errors.Is(err, ErrMissingSecret):
		return apperrors.NewConfigurationError(err)
	case errors.Is(err, ErrTokenExpired):
		return apperrors.NewUnauthorized(apperrors.CodeTokenExpired, what+" expired")
	default:
		return apperrors.NewUnauthorized(apperrors.CodeInvalidToken, "invalid "+what)
	}
}

// IdentityFromContext retrieves the authenticated caller.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	identity, ok := c.Locals(identityKey).(*domain.Identity)
	return identity, ok && identity != nil
}

// IdentityFromStdContext retrieves the caller from a context derived from the request.
func IdentityFromStdContext(ctx context.Context) (*domain.Identity, bool) {
	identity, ok := ctx.Value(identityCtxKey{}).(*domain.Identity)
	return identity, ok && identity != nil
}
