package transactionValidator

import (
	"trxflow/middleware"
	"trxflow/validators"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// CreateRequest is the body of a create with a caller-chosen reference.
// Amount and currency rules are enforced by the service, not here.
type CreateRequest struct {
	Reference string           `json:"reference" validate:"required,max=100"`
	Amount    *decimal.Decimal `json:"amount" validate:"required"`
	Currency  string           `json:"currency" validate:"required"`
}

// CreateAutoRequest is the body of a create whose reference is generated.
type CreateAutoRequest struct {
	Amount   *decimal.Decimal `json:"amount" validate:"required"`
	Currency string           `json:"currency" validate:"required"`
}

type ListRequest struct {
	Skip  int  `json:"skip" query:"skip" validate:"gte=0"`
	Limit *int `json:"limit" query:"limit" validate:"omitempty,gte=1,lte=1000"`
}

const DefaultListLimit = 100

// PageLimit returns the requested limit or the default page size.
func (r *ListRequest) PageLimit() int {
	if r.Limit == nil {
		return DefaultListLimit
	}
	return *r.Limit
}

// CreateTransaction validates the v1 create body
func CreateTransaction() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedTransaction", reqData)
		return c.Next()
	}
}

// CreateTransactionAuto validates the v2 create body
func CreateTransactionAuto() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateAutoRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedTransaction", reqData)
		return c.Next()
	}
}

// ListTransactions validates the pagination query
func ListTransactions() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ListRequest)

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedList", reqData)
		return c.Next()
	}
}
