package middleware

import (
	"trxflow/models"

	"github.com/gofiber/fiber/v2"
)

// RequireRole returns a middleware that checks the authenticated user holds
// the given role. Only routes with no transaction to look up use it.
func RequireRole(role models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return unauthorized(c, "Could not validate credentials")
		}

		if !user.Role.Valid() {
			return JsonResponse(c, fiber.StatusForbidden, false, "User has no role assigned; contact an administrator", nil)
		}
		if user.Role != role {
			return JsonResponse(c, fiber.StatusForbidden, false, string(role)+" role is required for this action", nil)
		}

		return c.Next()
	}
}
