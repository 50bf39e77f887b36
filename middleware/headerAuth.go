package middleware

import (
	"strings"

	"trxflow/models"
	"trxflow/services"

	"github.com/gofiber/fiber/v2"
)

const (
	HeaderUserRole = "X-User-Role"
	HeaderUserID   = "X-User-Id"
)

// HeaderRole reads the caller's role from X-User-Role. The value is matched
// case-insensitively; a missing or unknown role is a 400.
func HeaderRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := headerRole(c)
		if !ok {
			return nil
		}
		c.Locals("caller", services.Caller{Role: role})
		return c.Next()
	}
}

// HeaderIdentity reads both X-User-Role and X-User-Id.
func HeaderIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := headerRole(c)
		if !ok {
			return nil
		}

		id := strings.TrimSpace(c.Get(HeaderUserID))
		if id == "" {
			return JsonResponse(c, fiber.StatusBadRequest, false, HeaderUserID+" header is required", nil)
		}

		c.Locals("caller", services.Caller{ID: id, Role: role})
		return c.Next()
	}
}

// headerRole writes the 400 response itself and reports false when the header
// is unusable.
func headerRole(c *fiber.Ctx) (models.UserRole, bool) {
	raw := c.Get(HeaderUserRole)
	if strings.TrimSpace(raw) == "" {
		_ = JsonResponse(c, fiber.StatusBadRequest, false, HeaderUserRole+" header is required", nil)
		return "", false
	}

	role, ok := models.ParseRole(raw)
	if !ok {
		_ = JsonResponse(c, fiber.StatusBadRequest, false, "Invalid role; allowed values: OPERADOR, APROBADOR", nil)
		return "", false
	}
	return role, true
}
