package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"trxflow/database"
	"trxflow/models"
	"trxflow/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testStore struct {
	transactions *repository.GormTransactionRepository
	users        *repository.GormUserRepository
}

func newTestStore(t *testing.T) testStore {
	t.Helper()
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "services.db"))
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	return testStore{
		transactions: repository.NewTransactionRepository(db),
		users:        repository.NewUserRepository(db),
	}
}

// stepClock returns strictly increasing instants so created_at ordering is
// deterministic.
func stepClock() func() time.Time {
	var mu sync.Mutex
	current := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

func seedTransaction(t *testing.T, repo repository.TransactionRepository, reference string, at time.Time) *models.Transaction {
	t.Helper()
	trx := &models.Transaction{
		TransactionID: uuid.NewString(),
		Reference:     reference,
		Amount:        decimal.RequireFromString("1.00"),
		Currency:      "USD",
		Status:        models.StatusDraft,
		CreatedBy:     "op-001",
		CreatedAt:     at,
		UpdatedAt:     at,
	}
	require.NoError(t, repo.Create(context.Background(), trx))
	return trx
}

type mockTransactionRepository struct {
	mock.Mock
}

var _ repository.TransactionRepository = (*mockTransactionRepository)(nil)

func (m *mockTransactionRepository) Create(ctx context.Context, trx *models.Transaction) error {
	return m.Called(ctx, trx).Error(0)
}

func (m *mockTransactionRepository) FindByID(ctx context.Context, id string) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	trx, _ := args.Get(0).(*models.Transaction)
	return trx, args.Error(1)
}

func (m *mockTransactionRepository) UpdateStatus(ctx context.Context, id string, from, to models.TransactionStatus, approvedBy *string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, from, to, approvedBy, at)
	return args.Bool(0), args.Error(1)
}

func (m *mockTransactionRepository) List(ctx context.Context, opts repository.ListOptions) ([]models.Transaction, error) {
	args := m.Called(ctx, opts)
	trxs, _ := args.Get(0).([]models.Transaction)
	return trxs, args.Error(1)
}

func (m *mockTransactionRepository) LatestByReferencePrefix(ctx context.Context, prefix string) (*models.Transaction, error) {
	args := m.Called(ctx, prefix)
	trx, _ := args.Get(0).(*models.Transaction)
	return trx, args.Error(1)
}

func (m *mockTransactionRepository) CountByReferencePrefix(ctx context.Context, prefix string) (int64, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTransactionRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
