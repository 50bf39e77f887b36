package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"trxflow/metrics"
	"trxflow/models"
	"trxflow/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Caller is the resolved identity behind a request, whichever way it was
// authenticated.
type Caller struct {
	ID   string
	Role models.UserRole
}

// Amounts are stored as numeric(18,2).
const amountScale = 2

var maxAmount = decimal.New(1, 18-amountScale)

type CreateTransactionInput struct {
	Reference string
	Amount    decimal.Decimal
	Currency  string
}

// operation describes one edge of the state machine as exposed to callers.
type operation struct {
	name     string
	role     models.UserRole // empty: any caller
	to       models.TransactionStatus
	denied   string
	conflict string
}

var (
	opSubmit = operation{
		name:     "submit",
		role:     models.RoleOperador,
		to:       models.StatusPendingApproval,
		denied:   "only OPERADOR users can submit transactions for approval",
		conflict: "only DRAFT transactions can be submitted for approval",
	}
	opApprove = operation{
		name:     "approve",
		role:     models.RoleAprobador,
		to:       models.StatusApproved,
		denied:   "only APROBADOR users can approve transactions",
		conflict: "only PENDING_APPROVAL transactions can be approved",
	}
	opReject = operation{
		name:     "reject",
		role:     models.RoleAprobador,
		to:       models.StatusRejected,
		denied:   "only APROBADOR users can reject transactions",
		conflict: "only PENDING_APPROVAL transactions can be rejected",
	}
	opExecute = operation{
		name:     "execute",
		to:       models.StatusExecuted,
		conflict: "only APPROVED transactions can be executed",
	}
)

// TransactionService owns transition legality and timestamps. Every call reads
// the current record and issues at most one write; nothing is cached.
type TransactionService struct {
	repo  repository.TransactionRepository
	refs  SequenceGenerator
	log   *zap.Logger
	now   func() time.Time
	newID func() string
}

func NewTransactionService(repo repository.TransactionRepository, refs SequenceGenerator, log *zap.Logger) *TransactionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TransactionService{
		repo:  repo,
		refs:  refs,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// Create drafts a transaction with a caller-supplied reference.
func (s *TransactionService) Create(ctx context.Context, in CreateTransactionInput, caller Caller) (*models.Transaction, error) {
	if err := s.checkCreate(in, caller); err != nil {
		return nil, s.refused("create", err)
	}
	return s.insert(ctx, in, caller)
}

// CreateWithGeneratedReference drafts a transaction whose reference comes from
// the reference sequence. A concurrent creator may take the same reference
// first, in which case the duplicate error is returned as is.
func (s *TransactionService) CreateWithGeneratedReference(ctx context.Context, in CreateTransactionInput, caller Caller) (*models.Transaction, error) {
	if err := s.checkCreate(in, caller); err != nil {
		return nil, s.refused("create", err)
	}
	if s.refs == nil {
		return nil, errors.New("no reference generator configured")
	}

	reference, err := s.refs.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate reference: %w", err)
	}
	in.Reference = reference
	return s.insert(ctx, in, caller)
}

func (s *TransactionService) checkCreate(in CreateTransactionInput, caller Caller) error {
	if caller.Role != models.RoleOperador {
		return permissionError("only OPERADOR users can create transactions")
	}
	if !in.Amount.IsPositive() {
		return validationError("amount must be greater than zero")
	}
	if !in.Amount.Equal(in.Amount.Round(amountScale)) {
		return validationError("amount must have at most 2 decimal places")
	}
	if in.Amount.GreaterThanOrEqual(maxAmount) {
		return validationError("amount must have at most 16 integer digits")
	}
	if utf8.RuneCountInString(in.Currency) != 3 {
		return validationError("currency must be exactly 3 characters")
	}
	return nil
}

func (s *TransactionService) insert(ctx context.Context, in CreateTransactionInput, caller Caller) (*models.Transaction, error) {
	now := s.now()
	trx := &models.Transaction{
		TransactionID: s.newID(),
		Reference:     in.Reference,
		Amount:        in.Amount,
		Currency:      strings.ToUpper(in.Currency),
		Status:        models.StatusDraft,
		CreatedBy:     caller.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, trx); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, s.refused("create", duplicateError(fmt.Sprintf("a transaction with reference '%s' already exists", in.Reference)))
		}
		return nil, err
	}

	metrics.TransactionsCreated.Inc()
	s.log.Info("transaction created",
		zap.String("transaction_id", trx.TransactionID),
		zap.String("reference", trx.Reference),
		zap.String("created_by", trx.CreatedBy),
	)
	return trx, nil
}

// Submit moves a DRAFT transaction to PENDING_APPROVAL.
func (s *TransactionService) Submit(ctx context.Context, id string, caller Caller) (*models.Transaction, error) {
	return s.transition(ctx, id, &caller, opSubmit, nil)
}

// Approve moves a PENDING_APPROVAL transaction to APPROVED and records the approver.
func (s *TransactionService) Approve(ctx context.Context, id string, caller Caller) (*models.Transaction, error) {
	approvedBy := caller.ID
	return s.transition(ctx, id, &caller, opApprove, &approvedBy)
}

// Reject moves a PENDING_APPROVAL transaction to REJECTED.
func (s *TransactionService) Reject(ctx context.Context, id string, caller Caller) (*models.Transaction, error) {
	return s.transition(ctx, id, &caller, opReject, nil)
}

// Execute marks an APPROVED transaction as EXECUTED. No payment is performed.
func (s *TransactionService) Execute(ctx context.Context, id string) (*models.Transaction, error) {
	return s.transition(ctx, id, nil, opExecute, nil)
}

// transition checks existence, then role, then state, and writes the new status.
func (s *TransactionService) transition(ctx context.Context, id string, caller *Caller, op operation, approvedBy *string) (*models.Transaction, error) {
	trx, err := s.Get(ctx, id)
	if err != nil {
		return nil, s.refused(op.name, err)
	}

	if op.role != "" && (caller == nil || caller.Role != op.role) {
		return nil, s.refused(op.name, permissionError(op.denied))
	}

	if !CanTransition(trx.Status, op.to) {
		return nil, s.refused(op.name, conflictError(op.conflict, trx.Status))
	}

	from, now := trx.Status, s.now()
	updated, err := s.repo.UpdateStatus(ctx, id, from, op.to, approvedBy, now)
	if err != nil {
		return nil, err
	}
	if !updated {
		// Another request moved the record between our read and write.
		current, err := s.Get(ctx, id)
		if err != nil {
			return nil, s.refused(op.name, err)
		}
		return nil, s.refused(op.name, conflictError(op.conflict, current.Status))
	}

	trx.Status = op.to
	trx.UpdatedAt = now
	if approvedBy != nil {
		trx.ApprovedBy = approvedBy
	}

	metrics.TransitionsTotal.WithLabelValues(string(from), string(op.to)).Inc()
	s.log.Info("transaction status changed",
		zap.String("transaction_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(op.to)),
	)
	return trx, nil
}

func (s *TransactionService) Get(ctx context.Context, id string) (*models.Transaction, error) {
	trx, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return trx, nil
}

func (s *TransactionService) List(ctx context.Context, opts repository.ListOptions) ([]models.Transaction, error) {
	return s.repo.List(ctx, opts)
}

// Delete removes a transaction for administrative cleanup. It bypasses the
// state machine and is not reachable over HTTP.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrTransactionNotFound
	}
	s.log.Warn("transaction deleted", zap.String("transaction_id", id))
	return nil
}

func (s *TransactionService) refused(operation string, err error) error {
	if kind := KindOf(err); kind != 0 {
		metrics.RejectedOperations.WithLabelValues(operation, kind.String()).Inc()
		s.log.Debug("operation refused",
			zap.String("operation", operation),
			zap.String("kind", kind.String()),
			zap.Error(err),
		)
	}
	return err
}
