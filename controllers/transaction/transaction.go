package transactionController

import (
	"fmt"

	"trxflow/middleware"
	"trxflow/models"
	"trxflow/repository"
	"trxflow/services"
	transactionValidator "trxflow/validators/transaction"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Controller serves both transaction surfaces. The caller identity has
// already been placed in Locals by the header or JWT middleware.
type Controller struct {
	transactions *services.TransactionService
	references   *services.ReferenceService
	log          *zap.Logger
}

func New(transactions *services.TransactionService, references *services.ReferenceService, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{transactions: transactions, references: references, log: log}
}

type statusResponse struct {
	TransactionID string                   `json:"transaction_id"`
	Status        models.TransactionStatus `json:"status"`
}

func (ctl *Controller) fail(c *fiber.Ctx, err error) error {
	return middleware.ServiceErrorResponse(c, ctl.log, err)
}

func (ctl *Controller) statusResult(c *fiber.Ctx, message string, trx *models.Transaction) error {
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, statusResponse{
		TransactionID: trx.TransactionID,
		Status:        trx.Status,
	})
}

// Create drafts a transaction with the reference from the request body.
func (ctl *Controller) Create(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedTransaction").(*transactionValidator.CreateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	trx, err := ctl.transactions.Create(c.UserContext(), services.CreateTransactionInput{
		Reference: reqData.Reference,
		Amount:    *reqData.Amount,
		Currency:  reqData.Currency,
	}, middleware.CallerFrom(c))
	if err != nil {
		return ctl.fail(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Transaction created successfully.", trx)
}

// CreateAuto drafts a transaction with the next generated TRX reference.
func (ctl *Controller) CreateAuto(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedTransaction").(*transactionValidator.CreateAutoRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	trx, err := ctl.transactions.CreateWithGeneratedReference(c.UserContext(), services.CreateTransactionInput{
		Amount:   *reqData.Amount,
		Currency: reqData.Currency,
	}, middleware.CallerFrom(c))
	if err != nil {
		return ctl.fail(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Transaction created successfully.", trx)
}

func (ctl *Controller) Submit(c *fiber.Ctx) error {
	trx, err := ctl.transactions.Submit(c.UserContext(), c.Params("id"), middleware.CallerFrom(c))
	if err != nil {
		return ctl.fail(c, err)
	}
	return ctl.statusResult(c, "Transaction submitted for approval.", trx)
}

func (ctl *Controller) Approve(c *fiber.Ctx) error {
	trx, err := ctl.transactions.Approve(c.UserContext(), c.Params("id"), middleware.CallerFrom(c))
	if err != nil {
		return ctl.fail(c, err)
	}
	return ctl.statusResult(c, actionMessage(c, "Transaction approved"), trx)
}

func (ctl *Controller) Reject(c *fiber.Ctx) error {
	trx, err := ctl.transactions.Reject(c.UserContext(), c.Params("id"), middleware.CallerFrom(c))
	if err != nil {
		return ctl.fail(c, err)
	}
	return ctl.statusResult(c, actionMessage(c, "Transaction rejected"), trx)
}

// Execute simulates execution; nothing leaves the service.
func (ctl *Controller) Execute(c *fiber.Ctx) error {
	trx, err := ctl.transactions.Execute(c.UserContext(), c.Params("id"))
	if err != nil {
		return ctl.fail(c, err)
	}
	return ctl.statusResult(c, actionMessage(c, "Transaction executed")+" (simulated)", trx)
}

func (ctl *Controller) Get(c *fiber.Ctx) error {
	trx, err := ctl.transactions.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return ctl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Transaction fetched successfully.", trx)
}

// List returns every transaction, paginated.
func (ctl *Controller) List(c *fiber.Ctx) error {
	return ctl.list(c, "")
}

// ListForUser limits operators to the transactions they created. Approvers
// see everything.
func (ctl *Controller) ListForUser(c *fiber.Ctx) error {
	caller := middleware.CallerFrom(c)
	if caller.Role == models.RoleOperador {
		return ctl.list(c, caller.ID)
	}
	return ctl.list(c, "")
}

func (ctl *Controller) list(c *fiber.Ctx, createdBy string) error {
	reqData, ok := c.Locals("validatedList").(*transactionValidator.ListRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	transactions, err := ctl.transactions.List(c.UserContext(), repository.ListOptions{
		Skip:      reqData.Skip,
		Limit:     reqData.PageLimit(),
		CreatedBy: createdBy,
	})
	if err != nil {
		return ctl.fail(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Transactions fetched successfully.", transactions)
}

// PreviewReference shows the reference the next auto-referenced create would
// receive. The value is not reserved.
func (ctl *Controller) PreviewReference(c *fiber.Ctx) error {
	next, err := ctl.references.Next(c.UserContext())
	if err != nil {
		return ctl.fail(c, err)
	}
	last, err := ctl.references.Peek(c.UserContext())
	if err != nil {
		return ctl.fail(c, err)
	}

	var lastReference *string
	if last != "" {
		lastReference = &last
	}

	message := fmt.Sprintf("The next transaction will use reference %s", next)
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, fiber.Map{
		"last_reference": lastReference,
		"next_reference": next,
		"message":        message,
	})
}

// actionMessage names the acting user when the request was authenticated
// with a token.
func actionMessage(c *fiber.Ctx, action string) string {
	if user, ok := middleware.CurrentUser(c); ok {
		return fmt.Sprintf("%s by %s", action, user.Name)
	}
	return action
}
