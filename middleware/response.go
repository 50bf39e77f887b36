package middleware

import (
	"trxflow/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

// ServiceErrorResponse writes err with the status code matching its kind.
// Anything that is not a services.Error is logged and reported as a 500.
func ServiceErrorResponse(c *fiber.Ctx, log *zap.Logger, err error) error {
	code := StatusForKind(services.KindOf(err))
	if code == fiber.StatusInternalServerError {
		if log != nil {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}
		return JsonResponse(c, code, false, "Failed to process your request!", nil)
	}
	return JsonResponse(c, code, false, err.Error(), nil)
}

func StatusForKind(kind services.Kind) int {
	switch kind {
	case services.KindValidation:
		return fiber.StatusBadRequest
	case services.KindPermission:
		return fiber.StatusForbidden
	case services.KindNotFound:
		return fiber.StatusNotFound
	case services.KindConflict, services.KindDuplicate:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
