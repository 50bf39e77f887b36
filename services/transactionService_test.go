package services

import (
	"context"
	"testing"

	"trxflow/models"
	"trxflow/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	operator = Caller{ID: "op-001", Role: models.RoleOperador}
	approver = Caller{ID: "ap-001", Role: models.RoleAprobador}
)

func newTransactionService(t *testing.T) (*TransactionService, testStore) {
	t.Helper()
	store := newTestStore(t)
	svc := NewTransactionService(store.transactions, NewReferenceService(store.transactions), nil)
	svc.now = stepClock()
	return svc, store
}

func createDraft(t *testing.T, svc *TransactionService, reference string) *models.Transaction {
	t.Helper()
	trx, err := svc.Create(context.Background(), CreateTransactionInput{
		Reference: reference,
		Amount:    decimal.RequireFromString("250.00"),
		Currency:  "mxn",
	}, operator)
	require.NoError(t, err)
	return trx
}

func assertKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, KindOf(err), "unexpected error: %v", err)
}

func TestTransactionLifecycleToExecuted(t *testing.T) {
	svc, _ := newTransactionService(t)
	ctx := context.Background()

	trx, err := svc.Create(ctx, CreateTransactionInput{
		Reference: "PAY-001",
		Amount:    decimal.RequireFromString("1000.50"),
		Currency:  "usd",
	}, operator)
	require.NoError(t, err)
	assert.Equal(t, "USD", trx.Currency)
	assert.Equal(t, models.StatusDraft, trx.Status)
	assert.Equal(t, "op-001", trx.CreatedBy)
	assert.Nil(t, trx.ApprovedBy)
	assert.NotEmpty(t, trx.TransactionID)

	trx, err = svc.Submit(ctx, trx.TransactionID, operator)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingApproval, trx.Status)
	assert.Nil(t, trx.ApprovedBy)

	trx, err = svc.Approve(ctx, trx.TransactionID, approver)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, trx.Status)
	require.NotNil(t, trx.ApprovedBy)
	assert.Equal(t, "ap-001", *trx.ApprovedBy)

	trx, err = svc.Execute(ctx, trx.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusExecuted, trx.Status)

	_, err = svc.Execute(ctx, trx.TransactionID)
	assertKind(t, err, KindConflict)
	assert.Contains(t, err.Error(), "current status: EXECUTED")

	stored, err := svc.Get(ctx, trx.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusExecuted, stored.Status)
	assert.Equal(t, "USD", stored.Currency)
	assert.True(t, decimal.RequireFromString("1000.50").Equal(stored.Amount))
	require.NotNil(t, stored.ApprovedBy)
	assert.Equal(t, "ap-001", *stored.ApprovedBy)
	assert.True(t, stored.UpdatedAt.After(stored.CreatedAt))
}

func TestRejectIsTerminalAndLeavesApproverEmpty(t *testing.T) {
	svc, _ := newTransactionService(t)
	ctx := context.Background()
	trx := createDraft(t, svc, "PAY-002")

	_, err := svc.Submit(ctx, trx.TransactionID, operator)
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, trx.TransactionID, approver)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, rejected.Status)
	assert.Nil(t, rejected.ApprovedBy)

	_, err = svc.Submit(ctx, trx.TransactionID, operator)
	assertKind(t, err, KindConflict)
	_, err = svc.Approve(ctx, trx.TransactionID, approver)
	assertKind(t, err, KindConflict)
	_, err = svc.Reject(ctx, trx.TransactionID, approver)
	assertKind(t, err, KindConflict)
	_, err = svc.Execute(ctx, trx.TransactionID)
	assertKind(t, err, KindConflict)

	stored, err := svc.Get(ctx, trx.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, stored.Status)
	assert.Nil(t, stored.ApprovedBy)
}

func TestCreateRequiresOperator(t *testing.T) {
	svc, _ := newTransactionService(t)

	_, err := svc.Create(context.Background(), CreateTransactionInput{
		Reference: "PAY-001",
		Amount:    decimal.NewFromInt(-5),
		Currency:  "US",
	}, approver)

	assertKind(t, err, KindPermission)
	assert.EqualError(t, err, "only OPERADOR users can create transactions")
}

func TestCreateValidatesBeforePersistence(t *testing.T) {
	repo := new(mockTransactionRepository)
	svc := NewTransactionService(repo, nil, nil)

	_, err := svc.Create(context.Background(), CreateTransactionInput{
		Reference: "PAY-001",
		Amount:    decimal.NewFromInt(-5),
		Currency:  "USD",
	}, operator)
	assertKind(t, err, KindValidation)
	assert.EqualError(t, err, "amount must be greater than zero")

	_, err = svc.Create(context.Background(), CreateTransactionInput{
		Reference: "PAY-001",
		Amount:    decimal.Zero,
		Currency:  "USD",
	}, operator)
	assertKind(t, err, KindValidation)

	_, err = svc.Create(context.Background(), CreateTransactionInput{
		Reference: "PAY-001",
		Amount:    decimal.NewFromInt(5),
		Currency:  "EURO",
	}, operator)
	assertKind(t, err, KindValidation)
	assert.EqualError(t, err, "currency must be exactly 3 characters")

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateRejectsAmountsTheColumnCannotHold(t *testing.T) {
	repo := new(mockTransactionRepository)
	svc := NewTransactionService(repo, nil, nil)

	_, err := svc.Create(context.Background(), CreateTransactionInput{
		Reference: "PAY-001",
		Amount:    decimal.RequireFromString("0.001"),
		Currency:  "USD",
	}, operator)
	assertKind(t, err, KindValidation)
	assert.EqualError(t, err, "amount must have at most 2 decimal places")

	_, err = svc.Create(context.Background(), CreateTransactionInput{
		Reference: "PAY-001",
		Amount:    decimal.New(1, 16),
		Currency:  "USD",
	}, operator)
	assertKind(t, err, KindValidation)
	assert.EqualError(t, err, "amount must have at most 16 integer digits")

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateAcceptsAmountsAtTheColumnLimits(t *testing.T) {
	svc, _ := newTransactionService(t)

	trx, err := svc.Create(context.Background(), CreateTransactionInput{
		Reference: "PAY-001",
		Amount:    decimal.RequireFromString("9999999999999999.99"),
		Currency:  "USD",
	}, operator)
	require.NoError(t, err)
	assert.Equal(t, "9999999999999999.99", trx.Amount.StringFixed(2))

	trx, err = svc.Create(context.Background(), CreateTransactionInput{
		Reference: "PAY-002",
		Amount:    decimal.RequireFromString("0.010"),
		Currency:  "USD",
	}, operator)
	require.NoError(t, err)
	assert.True(t, trx.Amount.Equal(decimal.RequireFromString("0.01")))
}

func TestCreateDuplicateReference(t *testing.T) {
	svc, store := newTransactionService(t)
	ctx := context.Background()
	first := createDraft(t, svc, "PAY-001")

	_, err := svc.Create(ctx, CreateTransactionInput{
		Reference: "PAY-001",
		Amount:    decimal.NewFromInt(1),
		Currency:  "USD",
	}, operator)
	assertKind(t, err, KindDuplicate)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), "'PAY-001'")

	second := createDraft(t, svc, "PAY-002")
	assert.NotEqual(t, first.TransactionID, second.TransactionID)

	all, err := store.transactions.List(ctx, repository.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSubmitOnPendingReportsCurrentStatus(t *testing.T) {
	svc, _ := newTransactionService(t)
	ctx := context.Background()
	trx := createDraft(t, svc, "PAY-001")

	_, err := svc.Submit(ctx, trx.TransactionID, operator)
	require.NoError(t, err)

	_, err = svc.Submit(ctx, trx.TransactionID, operator)
	assertKind(t, err, KindConflict)
	assert.Contains(t, err.Error(), "current status: PENDING_APPROVAL")

	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, models.StatusPendingApproval, svcErr.Status)
}

func TestApproveAndRejectRequirePending(t *testing.T) {
	svc, _ := newTransactionService(t)
	ctx := context.Background()
	trx := createDraft(t, svc, "PAY-001")

	_, err := svc.Approve(ctx, trx.TransactionID, approver)
	assertKind(t, err, KindConflict)
	assert.Contains(t, err.Error(), "current status: DRAFT")

	_, err = svc.Reject(ctx, trx.TransactionID, approver)
	assertKind(t, err, KindConflict)

	_, err = svc.Execute(ctx, trx.TransactionID)
	assertKind(t, err, KindConflict)
	assert.Contains(t, err.Error(), "only APPROVED transactions can be executed")
}

func TestPermissionCheckedBeforeState(t *testing.T) {
	svc, _ := newTransactionService(t)
	ctx := context.Background()

	draft := createDraft(t, svc, "PAY-001")
	executed := createDraft(t, svc, "PAY-002")
	for _, step := range []func() (*models.Transaction, error){
		func() (*models.Transaction, error) { return svc.Submit(ctx, executed.TransactionID, operator) },
		func() (*models.Transaction, error) { return svc.Approve(ctx, executed.TransactionID, approver) },
		func() (*models.Transaction, error) { return svc.Execute(ctx, executed.TransactionID) },
	} {
		_, err := step()
		require.NoError(t, err)
	}

	for _, id := range []string{draft.TransactionID, executed.TransactionID} {
		_, err := svc.Approve(ctx, id, operator)
		assertKind(t, err, KindPermission)
		assert.EqualError(t, err, "only APROBADOR users can approve transactions")

		_, err = svc.Reject(ctx, id, operator)
		assertKind(t, err, KindPermission)

		_, err = svc.Submit(ctx, id, approver)
		assertKind(t, err, KindPermission)
	}
}

func TestNotFoundCheckedFirst(t *testing.T) {
	svc, _ := newTransactionService(t)
	ctx := context.Background()
	missing := "00000000-0000-0000-0000-000000000000"

	_, err := svc.Approve(ctx, missing, operator)
	assertKind(t, err, KindNotFound)
	assert.EqualError(t, err, "transaction not found")
	assert.ErrorIs(t, err, ErrTransactionNotFound)

	_, err = svc.Submit(ctx, missing, approver)
	assertKind(t, err, KindNotFound)

	_, err = svc.Reject(ctx, missing, operator)
	assertKind(t, err, KindNotFound)

	_, err = svc.Execute(ctx, missing)
	assertKind(t, err, KindNotFound)

	_, err = svc.Get(ctx, missing)
	assertKind(t, err, KindNotFound)
}

func TestApprovedByOnlyAfterApproval(t *testing.T) {
	svc, _ := newTransactionService(t)
	ctx := context.Background()
	trx := createDraft(t, svc, "PAY-001")

	check := func(wantApprover bool) {
		stored, err := svc.Get(ctx, trx.TransactionID)
		require.NoError(t, err)
		if wantApprover {
			assert.NotNil(t, stored.ApprovedBy, stored.Status)
		} else {
			assert.Nil(t, stored.ApprovedBy, stored.Status)
		}
	}

	check(false)
	_, err := svc.Submit(ctx, trx.TransactionID, operator)
	require.NoError(t, err)
	check(false)
	_, err = svc.Approve(ctx, trx.TransactionID, approver)
	require.NoError(t, err)
	check(true)
	_, err = svc.Execute(ctx, trx.TransactionID)
	require.NoError(t, err)
	check(true)
}

func TestLostRaceReportsNewStatus(t *testing.T) {
	repo := new(mockTransactionRepository)
	svc := NewTransactionService(repo, nil, nil)
	ctx := context.Background()

	pending := &models.Transaction{TransactionID: "t-1", Status: models.StatusPendingApproval}
	rejected := &models.Transaction{TransactionID: "t-1", Status: models.StatusRejected}

	repo.On("FindByID", ctx, "t-1").Return(pending, nil).Once()
	repo.On("UpdateStatus", ctx, "t-1", models.StatusPendingApproval, models.StatusApproved, mock.Anything, mock.Anything).Return(false, nil).Once()
	repo.On("FindByID", ctx, "t-1").Return(rejected, nil).Once()

	_, err := svc.Approve(ctx, "t-1", approver)
	assertKind(t, err, KindConflict)
	assert.Contains(t, err.Error(), "current status: REJECTED")
	repo.AssertExpectations(t)
}

func TestCreateWithGeneratedReference(t *testing.T) {
	svc, _ := newTransactionService(t)
	ctx := context.Background()
	in := CreateTransactionInput{Amount: decimal.NewFromInt(10), Currency: "usd"}

	first, err := svc.CreateWithGeneratedReference(ctx, in, operator)
	require.NoError(t, err)
	assert.Equal(t, "TRX-001", first.Reference)

	second, err := svc.CreateWithGeneratedReference(ctx, in, operator)
	require.NoError(t, err)
	assert.Equal(t, "TRX-002", second.Reference)

	_, err = svc.CreateWithGeneratedReference(ctx, in, approver)
	assertKind(t, err, KindPermission)
}

// Two creators that read the sequence before either inserts compute the same
// reference; the second insert is refused rather than retried.
func TestConcurrentCreatorsMayCollide(t *testing.T) {
	svc, store := newTransactionService(t)
	ctx := context.Background()
	refs := NewReferenceService(store.transactions)

	refA, err := refs.Next(ctx)
	require.NoError(t, err)
	refB, err := refs.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, refA, refB)

	_, err = svc.Create(ctx, CreateTransactionInput{Reference: refA, Amount: decimal.NewFromInt(1), Currency: "USD"}, operator)
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateTransactionInput{Reference: refB, Amount: decimal.NewFromInt(1), Currency: "USD"}, operator)
	assertKind(t, err, KindDuplicate)
}

func TestListAndDelete(t *testing.T) {
	svc, _ := newTransactionService(t)
	ctx := context.Background()
	trx := createDraft(t, svc, "PAY-001")
	createDraft(t, svc, "PAY-002")

	all, err := svc.List(ctx, repository.ListOptions{Limit: 100})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, svc.Delete(ctx, trx.TransactionID))
	assert.ErrorIs(t, svc.Delete(ctx, trx.TransactionID), ErrTransactionNotFound)

	all, err = svc.List(ctx, repository.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
