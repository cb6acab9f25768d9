package auth

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/store-admin/internal/domain"
	apperrors "github.com/spec-kit/store-admin/pkg/util/errorutil"
)

// AccountLookup is the slice of the account repository the role gate needs.
type AccountLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
}

// RequireRole re-reads the caller's account so role or active changes made
// after the access token was issued take effect immediately. Must run after
// AuthMiddleware.Handle.
func RequireRole(accounts AccountLookup, allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized(apperrors.CodeNoToken, "authentication required")
		}

		account, err := accounts.GetByID(c.UserContext(), identity.AccountID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("account", nil)
			}
			return apperrors.MapError(err)
		}
		if !account.Active {
			return apperrors.NewAccountInactive()
		}
		if _, exists := allowedSet[account.Role]; !exists {
			return apperrors.NewForbidden("access denied, administrators and managers only")
		}

		identity.Role = account.Role
		return c.Next()
	}
}

// RequireManagement allows administrators and managers.
func RequireManagement(accounts AccountLookup) fiber.Handler {
	return RequireRole(accounts, domain.RoleAdministrator, domain.RoleManager)
}
