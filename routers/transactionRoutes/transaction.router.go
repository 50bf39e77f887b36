package transactionRoutes

import (
	transactionController "trxflow/controllers/transaction"
	"trxflow/middleware"
	"trxflow/models"
	transactionValidator "trxflow/validators/transaction"

	"github.com/gofiber/fiber/v2"
)

// SetupV1Routes mounts the header-identified surface. Callers state their
// role in X-User-Role and their id in X-User-Id.
func SetupV1Routes(app *fiber.App, ctl *transactionController.Controller) {
	v1 := app.Group("/api/v1/transactions")

	v1.Post("/", middleware.HeaderIdentity(), transactionValidator.CreateTransaction(), ctl.Create)
	v1.Get("/", transactionValidator.ListTransactions(), ctl.List)

	v1.Post("/:id/submit", middleware.HeaderRole(), ctl.Submit)
	v1.Post("/:id/approve", middleware.HeaderIdentity(), ctl.Approve)
	v1.Post("/:id/reject", middleware.HeaderRole(), ctl.Reject)
	v1.Post("/:id/execute", ctl.Execute)

	v1.Get("/:id", ctl.Get)
}

// SetupV2Routes mounts the token-authenticated surface. Identity is the
// user's email and the role is read from the store on every request.
// Transition roles are checked by the service after the lookup.
func SetupV2Routes(app *fiber.App, ctl *transactionController.Controller, users middleware.UserLookup) {
	v2 := app.Group("/api/v2/transactions", middleware.JWTMiddleware(users))

	v2.Post("/", middleware.RequireRole(models.RoleOperador), transactionValidator.CreateTransactionAuto(), ctl.CreateAuto)
	v2.Get("/", transactionValidator.ListTransactions(), ctl.ListForUser)

	// MUST come before /:id
	v2.Get("/next-reference/preview", ctl.PreviewReference)

	v2.Post("/:id/submit", ctl.Submit)
	v2.Post("/:id/approve", ctl.Approve)
	v2.Post("/:id/reject", ctl.Reject)
	v2.Post("/:id/execute", ctl.Execute)

	v2.Get("/:id", ctl.Get)
}
