package handlers

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/store-admin/pkg/util/errorutil"
)

// parseBody decodes the JSON request body into out.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}
